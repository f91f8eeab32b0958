package strategy

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/derekprior/fixturegen/internal/config"
	"github.com/derekprior/fixturegen/internal/schedule"
)

// GroupKnockout splits a shuffled roster into equal groups, plays a round
// robin in each, then a knockout between the top finishers of every group.
// Unset groups settings take config.DefaultGroups.
type GroupKnockout struct{}

func (s *GroupKnockout) Generate(in Input) (*Output, error) {
	if in.Groups == (config.Groups{}) {
		in.Groups = config.DefaultGroups()
	}
	size, advance := in.Groups.Size, in.Groups.Advance
	if err := requireTeams(in, 4); err != nil {
		return nil, err
	}
	if size <= 1 {
		return nil, schedule.Invalidf("teams per group must be greater than 1, got %d", size)
	}
	if len(in.Teams)%size != 0 {
		return nil, schedule.Invalidf("team count (%d) is not divisible by group size %d", len(in.Teams), size)
	}
	if advance > size {
		return nil, schedule.Invalidf("cannot advance %d teams from groups of %d", advance, size)
	}

	numGroups := len(in.Teams) / size
	qualifiers := numGroups * advance
	out := &Output{}
	if qualifiers < 2 && advance > 0 {
		out.Notices = append(out.Notices, schedule.Warnf("Not enough teams advancing for knockout."))
	}

	sched, err := newScheduler(in)
	if err != nil {
		return nil, err
	}

	teams := make([]string, len(in.Teams))
	copy(teams, in.Teams)
	in.Rand.Shuffle(len(teams), func(i, j int) { teams[i], teams[j] = teams[j], teams[i] })

	logger := in.logger()
	groupEnd := groupStageEnd(in, qualifiers)
	logger.Info("group stage",
		zap.Int("groups", numGroups),
		zap.Int("group_size", size),
		zap.Time("planned_end", groupEnd))

	var lastGroupDate time.Time
	for g := 0; g < numGroups; g++ {
		members := teams[g*size : (g+1)*size]
		b, err := sched.Schedule(schedule.Call{
			Stage: "Group " + groupName(g),
			Pairs: roundRobinPairs(schedule.Teams(members)),
			Venue: schedule.VenueHome,
		})
		if err != nil {
			return nil, err
		}
		out.add(b)
		if b.LastDate.After(lastGroupDate) {
			lastGroupDate = b.LastDate
		}
	}

	if qualifiers < 2 {
		logger.Info("not enough teams for knockout", zap.Int("qualifiers", qualifiers))
		return out, nil
	}

	floor := groupEnd
	if lastGroupDate.After(floor) {
		floor = lastGroupDate
	}
	floor = floor.AddDate(0, 0, in.Rules.RestGap())
	if floor.After(in.End) {
		out.Notices = append(out.Notices, schedule.Warnf("No time left for knockout stage."))
		logger.Warn("no time left for knockout",
			zap.Time("knockout_start", floor),
			zap.Time("end", in.End))
		return out, nil
	}

	entrants := make([]schedule.Participant, 0, qualifiers)
	for g := 0; g < numGroups; g++ {
		for rank := 1; rank <= advance; rank++ {
			entrants = append(entrants, schedule.Placeholder(fmt.Sprintf("Rank %d Group %s", rank, groupName(g))))
		}
	}
	if err := knockout(sched, out, entrants, floor, in.Rules, in.Rand, logger); err != nil {
		return nil, err
	}
	return out, nil
}

// groupStageEnd estimates when the group stage should finish so that the
// knockout rounds still fit before the end date.
func groupStageEnd(in Input, qualifiers int) time.Time {
	totalDays := max(1, schedule.DaysBetween(in.Start, in.End))
	groupDays := max(7, totalDays*2/3)

	koRounds := 0
	if qualifiers >= 2 {
		koRounds = int(math.Ceil(math.Log2(float64(qualifiers))))
	}
	minKnockoutDays := koRounds*in.Rules.RestGap() + 1

	end := in.Start.AddDate(0, 0, groupDays)
	if latest := in.End.AddDate(0, 0, -minKnockoutDays); latest.Before(end) {
		end = latest
	}
	if end.Before(in.Start) {
		end = in.Start
	}
	return end
}

// groupName returns A, B, ... Z, then AA, AB, ...
func groupName(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return groupName(i/26-1) + groupName(i%26)
}
