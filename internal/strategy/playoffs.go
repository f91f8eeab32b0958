package strategy

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/derekprior/fixturegen/internal/schedule"
)

const playoffStage = "Playoffs"

type playoffMatch struct {
	matchType string
	pair      schedule.Pair
	involved  []string
}

// Top4Playoffs schedules Qualifier 1, Eliminator, Qualifier 2 and the Final
// after a league stage that ended on lastLeague. top4 is in seed order; any
// other length is a no-op. The playoffs get their own slot pool and daily
// counts, opening PlayoffStartGapDays after the league and running for
// PlayoffWindowDays. The Final is placed on the first Sunday it can legally
// be played, or on the next available day after that Sunday with a warning.
func Top4Playoffs(top4 []string, lastLeague time.Time, in Input) (*Output, error) {
	out := &Output{}
	if len(top4) != 4 {
		return out, nil
	}
	logger := in.logger()
	rules := in.Rules

	base := lastLeague
	if base.IsZero() {
		base = in.Start
	}
	floor := base.AddDate(0, 0, rules.PlayoffStartGapDays)
	windowEnd := floor.AddDate(0, 0, rules.PlayoffWindowDays)
	logger.Info("playoffs", zap.Strings("top4", top4), zap.Time("not_before", floor))

	slots := schedule.GenerateSlots(in.Venues, floor, windowEnd, rules)
	if len(slots) == 0 {
		return nil, schedule.Invalidf("no slots found for playoffs starting from %s", floor.Format("2006-01-02"))
	}
	sched := schedule.New(slots, in.TeamVenues, rules, in.Rand, schedule.WithLogger(logger))
	if !lastLeague.IsZero() {
		for _, team := range top4 {
			sched.Tracker().SetLastPlayed(team, lastLeague)
		}
	}

	t1, t2, t3, t4 := top4[0], top4[1], top4[2], top4[3]
	matches := []playoffMatch{
		{"Qualifier 1", schedule.Pair{Team1: schedule.Team(t1), Team2: schedule.Team(t2)}, []string{t1, t2}},
		{"Eliminator", schedule.Pair{Team1: schedule.Team(t3), Team2: schedule.Team(t4)}, []string{t3, t4}},
		{"Qualifier 2", schedule.Pair{Team1: schedule.Placeholder("Loser(Q1)"), Team2: schedule.Placeholder("Winner(Elim.)")}, top4},
	}
	final := playoffMatch{"Final", schedule.Pair{Team1: schedule.Placeholder("Winner(Q1)"), Team2: schedule.Placeholder("Winner(Q2)")}, top4}

	var prev time.Time
	for _, m := range matches {
		notBefore := floor
		if !prev.IsZero() {
			if d := prev.AddDate(0, 0, rules.RestGap()); d.After(notBefore) {
				notBefore = d
			}
		}
		b, err := sched.Schedule(m.call(notBefore))
		if err != nil {
			return nil, err
		}
		out.add(b)
		prev = b.LastDate
	}

	target := prev.AddDate(0, 0, rules.RestGap())
	for target.Weekday() != time.Sunday {
		target = target.AddDate(0, 0, 1)
	}
	logger.Info("targeting Sunday for the final", zap.Time("target", target))

	c := final.call(target)
	c.On = target
	b, err := sched.Schedule(c)
	var ue *schedule.UnschedulableError
	if errors.As(err, &ue) {
		logger.Warn("final does not fit on target Sunday", zap.Time("target", target))
		b, err = sched.Schedule(final.call(target.AddDate(0, 0, 1)))
		if err == nil {
			out.Notices = append(out.Notices, schedule.Warnf(
				"Could not schedule Final on target Sunday (%s). Scheduled on next available day: %s.",
				target.Format("2006-01-02"), b.LastDate.Format("2006-01-02")))
		}
	}
	if err != nil {
		return nil, err
	}
	out.add(b)

	schedule.Renumber(out.Fixtures)
	return out, nil
}

func (m playoffMatch) call(notBefore time.Time) schedule.Call {
	return schedule.Call{
		Stage:     playoffStage,
		MatchType: m.matchType,
		Pairs:     []schedule.Pair{m.pair},
		Venue:     schedule.VenueRandom,
		NotBefore: notBefore,
		Involved:  m.involved,
	}
}
