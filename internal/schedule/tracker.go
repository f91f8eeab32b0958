package schedule

import (
	"time"

	"github.com/derekprior/fixturegen/internal/config"
)

// Tracker records when each team last played and how many matches each date
// already holds across all venues.
type Tracker struct {
	rules      config.Rules
	lastPlayed map[string]time.Time
	daily      map[time.Time]int
}

func NewTracker(rules config.Rules) *Tracker {
	return &Tracker{
		rules:      rules,
		lastPlayed: make(map[string]time.Time),
		daily:      make(map[time.Time]int),
	}
}

// LastPlayed returns a team's most recent match date, if any.
func (t *Tracker) LastPlayed(team string) (time.Time, bool) {
	d, ok := t.lastPlayed[team]
	return d, ok
}

// SetLastPlayed seeds a team's last match date.
func (t *Tracker) SetLastPlayed(team string, d time.Time) {
	t.lastPlayed[team] = d
}

// Rested reports whether team may play on d: it has never played, or at
// least MinRestDays full days separate d from its last match.
func (t *Tracker) Rested(team string, d time.Time) bool {
	last, ok := t.lastPlayed[team]
	if !ok {
		return true
	}
	return DaysBetween(last, d) >= t.rules.RestGap()
}

// RestedPair applies Rested to the concrete sides of a pair.
func (t *Tracker) RestedPair(p Pair, d time.Time) bool {
	for _, side := range []Participant{p.Team1, p.Team2} {
		if side.IsPlaceholder() {
			continue
		}
		if !t.Rested(side.Name(), d) {
			return false
		}
	}
	return true
}

// MatchesOn returns the number of matches already placed on d.
func (t *Tracker) MatchesOn(d time.Time) int {
	return t.daily[d]
}

// HasCapacity reports whether d is still below its daily cap.
func (t *Tracker) HasCapacity(d time.Time) bool {
	return t.daily[d] < t.rules.DailyLimit(d)
}

// Record counts a match on d and marks the given teams as having played.
func (t *Tracker) Record(d time.Time, teams ...string) {
	t.daily[d]++
	for _, team := range teams {
		t.lastPlayed[team] = d
	}
}

// concreteNames returns the names of the non-placeholder sides of a pair.
func concreteNames(p Pair) []string {
	var names []string
	for _, side := range []Participant{p.Team1, p.Team2} {
		if !side.IsPlaceholder() {
			names = append(names, side.Name())
		}
	}
	return names
}
