package strategy

import "github.com/derekprior/fixturegen/internal/schedule"

// RoundRobin plays every pair once at the first team's venue.
type RoundRobin struct{}

func (s *RoundRobin) Generate(in Input) (*Output, error) {
	if err := requireTeams(in, 2); err != nil {
		return nil, err
	}
	sched, err := newScheduler(in)
	if err != nil {
		return nil, err
	}

	b, err := sched.Schedule(schedule.Call{
		Stage: "League",
		Pairs: roundRobinPairs(schedule.Teams(in.Teams)),
		Venue: schedule.VenueHome,
	})
	if err != nil {
		return nil, err
	}

	out := &Output{}
	out.add(b)
	return out, nil
}

// DoubleRoundRobin plays every pair twice, the second leg with home and
// away swapped. Both legs share one slot pool so leg 2 respects the rest
// days of leg 1.
type DoubleRoundRobin struct{}

func (s *DoubleRoundRobin) Generate(in Input) (*Output, error) {
	if err := requireTeams(in, 2); err != nil {
		return nil, err
	}
	sched, err := newScheduler(in)
	if err != nil {
		return nil, err
	}

	leg1 := roundRobinPairs(schedule.Teams(in.Teams))
	leg2 := make([]schedule.Pair, len(leg1))
	for i, p := range leg1 {
		leg2[i] = schedule.Pair{Team1: p.Team2, Team2: p.Team1}
	}

	out := &Output{}
	for _, leg := range []struct {
		stage string
		pairs []schedule.Pair
	}{
		{"League (Leg 1)", leg1},
		{"League (Leg 2)", leg2},
	} {
		b, err := sched.Schedule(schedule.Call{Stage: leg.stage, Pairs: leg.pairs, Venue: schedule.VenueHome})
		if err != nil {
			return nil, err
		}
		out.add(b)
	}

	schedule.Renumber(out.Fixtures)
	return out, nil
}

// roundRobinPairs returns every unordered pair, first team hosting.
func roundRobinPairs(teams []schedule.Participant) []schedule.Pair {
	pairs := make([]schedule.Pair, 0, len(teams)*(len(teams)-1)/2)
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			pairs = append(pairs, schedule.Pair{Team1: teams[i], Team2: teams[j]})
		}
	}
	return pairs
}
