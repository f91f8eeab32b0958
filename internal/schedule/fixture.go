package schedule

import (
	"sort"
	"time"
)

// Fixture is a match bound to a specific slot.
type Fixture struct {
	Stage       string
	Round       int    // 0 when the stage has no rounds
	MatchNumber int
	MatchType   string // e.g. "Qualifier 1"; empty for ordinary matches
	Date        time.Time
	Venue       string
	TimeSlot    int
	Team1       Participant
	Team2       Participant
}

// Involves reports whether the named team plays in this fixture.
func (f Fixture) Involves(team string) bool {
	return f.Team1.Name() == team || f.Team2.Name() == team
}

// SortFixtures orders fixtures by date then time slot. Fixtures sharing both
// keep their relative order.
func SortFixtures(fixtures []Fixture) {
	sort.SliceStable(fixtures, func(i, j int) bool {
		if !fixtures[i].Date.Equal(fixtures[j].Date) {
			return fixtures[i].Date.Before(fixtures[j].Date)
		}
		return fixtures[i].TimeSlot < fixtures[j].TimeSlot
	})
}

// Renumber sorts fixtures and assigns match numbers 1..n in that order.
func Renumber(fixtures []Fixture) {
	SortFixtures(fixtures)
	for i := range fixtures {
		fixtures[i].MatchNumber = i + 1
	}
}

// LastDate returns the latest fixture date, or the zero time for none.
func LastDate(fixtures []Fixture) time.Time {
	var last time.Time
	for _, f := range fixtures {
		if f.Date.After(last) {
			last = f.Date
		}
	}
	return last
}

// StageFixtures is the fixture list of one stage.
type StageFixtures struct {
	Stage    string
	Fixtures []Fixture
}

// GroupByStage splits fixtures by stage, keeping stages in order of first
// appearance and fixtures in their given order.
func GroupByStage(fixtures []Fixture) []StageFixtures {
	index := make(map[string]int)
	var stages []StageFixtures
	for _, f := range fixtures {
		i, ok := index[f.Stage]
		if !ok {
			i = len(stages)
			index[f.Stage] = i
			stages = append(stages, StageFixtures{Stage: f.Stage})
		}
		stages[i].Fixtures = append(stages[i].Fixtures, f)
	}
	return stages
}

// FilterByTeam returns the fixtures the named team plays in.
func FilterByTeam(fixtures []Fixture, team string) []Fixture {
	var out []Fixture
	for _, f := range fixtures {
		if f.Involves(team) {
			out = append(out, f)
		}
	}
	return out
}
