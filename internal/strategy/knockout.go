package strategy

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/derekprior/fixturegen/internal/config"
	"github.com/derekprior/fixturegen/internal/schedule"
)

// SingleElimination builds a knockout bracket padded to a power of two with
// byes into round 2.
type SingleElimination struct{}

func (s *SingleElimination) Generate(in Input) (*Output, error) {
	if err := requireTeams(in, 2); err != nil {
		return nil, err
	}
	sched, err := newScheduler(in)
	if err != nil {
		return nil, err
	}

	out := &Output{}
	if err := knockout(sched, out, schedule.Teams(in.Teams), time.Time{}, in.Rules, in.Rand, in.logger()); err != nil {
		return nil, err
	}
	return out, nil
}

// DoubleElimination is not a real double-elimination bracket: it plays the
// single-elimination bracket and says so in a warning.
type DoubleElimination struct{}

func (s *DoubleElimination) Generate(in Input) (*Output, error) {
	if len(in.Teams) < 4 {
		return nil, schedule.Invalidf("double elimination requires at least 4 teams, got %d", len(in.Teams))
	}
	in.logger().Warn("double elimination requested, using single elimination bracket")

	out, err := (&SingleElimination{}).Generate(in)
	if err != nil {
		return nil, err
	}
	out.Notices = append([]schedule.Notice{
		schedule.Warnf("Double Elimination generation is currently simplified (uses Single Elimination structure)."),
	}, out.Notices...)
	return out, nil
}

// knockout schedules a full bracket for entrants into out. The first round
// starts no earlier than notBefore; every later round starts after the
// previous one ends plus the rest gap.
func knockout(sched *schedule.Scheduler, out *Output, entrants []schedule.Participant, notBefore time.Time, rules config.Rules, rng schedule.Rand, logger *zap.Logger) error {
	n := len(entrants)
	size := nextPowerOfTwo(n)
	byes := size - n

	shuffled := make([]schedule.Participant, n)
	copy(shuffled, entrants)
	rng.Shuffle(n, func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	logger.Info("knockout bracket",
		zap.Int("entrants", n),
		zap.Int("bracket_size", size),
		zap.Int("byes", byes),
		zap.Time("not_before", notBefore))

	advanced := shuffled[:byes]
	participants := shuffled[byes:]
	for round := 1; ; round++ {
		if round > 1 {
			rng.Shuffle(len(participants), func(i, j int) {
				participants[i], participants[j] = participants[j], participants[i]
			})
		}
		pairs, err := pairUp(participants)
		if err != nil {
			return err
		}

		b, err := sched.Schedule(schedule.Call{
			Stage:     "Knockout",
			Round:     round,
			Pairs:     pairs,
			Venue:     schedule.VenueRandom,
			NotBefore: notBefore,
		})
		if err != nil {
			return err
		}
		out.add(b)

		next := make([]schedule.Participant, 0, len(advanced)+len(b.Fixtures))
		next = append(next, advanced...)
		for _, f := range b.Fixtures {
			next = append(next, schedule.Placeholder(fmt.Sprintf("Winner R%dM%d", round, f.MatchNumber)))
		}
		advanced = nil

		if len(next) <= 1 {
			return nil
		}
		participants = next
		notBefore = b.LastDate.AddDate(0, 0, rules.RestGap())
	}
}

// pairUp pairs participants in order. An odd count cannot arise from a
// power-of-two bracket.
func pairUp(participants []schedule.Participant) ([]schedule.Pair, error) {
	if len(participants)%2 != 0 {
		return nil, &schedule.InternalError{
			Msg: fmt.Sprintf("odd number of participants (%d) in knockout round", len(participants)),
		}
	}
	pairs := make([]schedule.Pair, 0, len(participants)/2)
	for i := 0; i < len(participants); i += 2 {
		pairs = append(pairs, schedule.Pair{Team1: participants[i], Team2: participants[i+1]})
	}
	return pairs, nil
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
