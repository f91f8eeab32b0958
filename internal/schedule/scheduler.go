package schedule

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/derekprior/fixturegen/internal/config"
)

// Rand is the source of randomness used for pair order and venue fallback.
// *math/rand.Rand satisfies it.
type Rand interface {
	Shuffle(n int, swap func(i, j int))
	Intn(n int) int
}

// VenueRule selects which venue a pair prefers.
type VenueRule string

const (
	VenueHome      VenueRule = "home"      // Team1's venue
	VenueAway      VenueRule = "away"      // Team2's venue
	VenueAlternate VenueRule = "alternate" // Team1, Team2, Team1, ... across the call
	VenueRandom    VenueRule = "random"    // any venue
)

// Call is one batch of pairs to place: a round, a leg, or a group.
type Call struct {
	Stage     string
	Round     int
	MatchType string
	Pairs     []Pair
	Venue     VenueRule

	// NotBefore excludes slots dated before it.
	NotBefore time.Time
	// On, when set, restricts placement to that single date.
	On time.Time
	// Involved lists extra teams that must be rested and are marked as
	// playing, for matches whose sides are placeholders.
	Involved []string
}

// Batch is the outcome of a successful Call.
type Batch struct {
	Fixtures []Fixture
	LastDate time.Time
}

// Scheduler greedily binds pairs to the earliest feasible slot. It owns its
// slot pool and tracker; chained calls see every earlier assignment.
type Scheduler struct {
	slots      []Slot
	teamVenues map[string]string
	fallback   []string
	rules      config.Rules
	rng        Rand
	tracker    *Tracker
	next       int
	logger     *zap.Logger
}

type Option func(*Scheduler)

func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFirstMatchNumber sets the number given to the first placed fixture.
func WithFirstMatchNumber(n int) Option {
	return func(s *Scheduler) { s.next = n }
}

func New(slots []Slot, teamVenues map[string]string, rules config.Rules, rng Rand, opts ...Option) *Scheduler {
	seen := make(map[string]bool)
	var fallback []string
	for _, v := range teamVenues {
		if !seen[v] {
			seen[v] = true
			fallback = append(fallback, v)
		}
	}
	sort.Strings(fallback)

	s := &Scheduler{
		slots:      slots,
		teamVenues: teamVenues,
		fallback:   fallback,
		rules:      rules,
		rng:        rng,
		tracker:    NewTracker(rules),
		next:       1,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tracker exposes the rest/capacity state, e.g. to seed last-played dates.
func (s *Scheduler) Tracker() *Tracker { return s.tracker }

// NextMatchNumber is the number the next placed fixture will receive.
func (s *Scheduler) NextMatchNumber() int { return s.next }

// FreeSlots counts the slots still unassigned in the pool.
func (s *Scheduler) FreeSlots() int { return FreeSlots(s.slots) }

// Schedule places every pair of the call, in random order. The first pair
// that fits no slot aborts the call with an *UnschedulableError; fixtures
// placed before it remain assigned in the pool.
func (s *Scheduler) Schedule(c Call) (*Batch, error) {
	pairs := make([]Pair, len(c.Pairs))
	copy(pairs, c.Pairs)
	s.rng.Shuffle(len(pairs), func(i, j int) {
		pairs[i], pairs[j] = pairs[j], pairs[i]
	})

	rule := c.Venue
	if rule == "" {
		rule = VenueHome
	}

	s.logger.Info("scheduling pairs",
		zap.String("stage", c.Stage),
		zap.Int("round", c.Round),
		zap.Int("pairs", len(pairs)),
		zap.String("venue_rule", string(rule)),
		zap.Int("weekday_limit", s.rules.WeekdayMatchesLimit),
		zap.Int("weekend_limit", s.rules.WeekendMatchesLimit))

	batch := &Batch{}
	alternate := 0
	for _, p := range pairs {
		venue, err := s.preferredVenue(p, rule, &alternate)
		if err != nil {
			return nil, err
		}

		i := s.findSlot(p, venue, c)
		if i < 0 {
			err := &UnschedulableError{Pair: p, Stage: c.Stage, Round: c.Round, FreeSlots: s.FreeSlots()}
			s.logger.Warn("pair unschedulable",
				zap.Stringer("pair", p),
				zap.String("stage", c.Stage),
				zap.Int("free_slots", err.FreeSlots))
			return nil, err
		}

		f := s.assign(i, p, c)
		batch.Fixtures = append(batch.Fixtures, f)
		if f.Date.After(batch.LastDate) {
			batch.LastDate = f.Date
		}
	}

	s.logger.Debug("stage scheduled",
		zap.String("stage", c.Stage),
		zap.Int("round", c.Round),
		zap.Int("fixtures", len(batch.Fixtures)),
		zap.Time("last_date", batch.LastDate))
	return batch, nil
}

// preferredVenue resolves the venue rule for a pair. An empty result means
// any venue is acceptable.
func (s *Scheduler) preferredVenue(p Pair, rule VenueRule, alternate *int) (string, error) {
	var team Participant
	switch rule {
	case VenueRandom:
		return "", nil
	case VenueAway:
		team = p.Team2
	case VenueAlternate:
		team = p.Team1
		if *alternate%2 == 1 {
			team = p.Team2
		}
		*alternate++
	default:
		team = p.Team1
	}

	if !team.IsPlaceholder() {
		if v, ok := s.teamVenues[team.Name()]; ok && v != "" {
			return v, nil
		}
	}
	if len(s.fallback) == 0 {
		return "", Invalidf("no venues found for fallback %s", p)
	}
	return s.fallback[s.rng.Intn(len(s.fallback))], nil
}

// findSlot returns the index of the first slot satisfying every constraint,
// or -1.
func (s *Scheduler) findSlot(p Pair, venue string, c Call) int {
	for i, slot := range s.slots {
		if slot.Assigned {
			continue
		}
		if slot.Date.Before(c.NotBefore) {
			continue
		}
		if !c.On.IsZero() && !slot.Date.Equal(c.On) {
			continue
		}
		if !s.tracker.HasCapacity(slot.Date) {
			continue
		}
		if venue != "" && slot.Venue != venue {
			continue
		}
		if !s.tracker.RestedPair(p, slot.Date) {
			continue
		}
		if !s.restedAll(c.Involved, slot.Date) {
			continue
		}
		return i
	}
	return -1
}

func (s *Scheduler) restedAll(teams []string, d time.Time) bool {
	for _, t := range teams {
		if !s.tracker.Rested(t, d) {
			return false
		}
	}
	return true
}

func (s *Scheduler) assign(i int, p Pair, c Call) Fixture {
	slot := &s.slots[i]
	slot.Assigned = true

	f := Fixture{
		Stage:       c.Stage,
		Round:       c.Round,
		MatchNumber: s.next,
		MatchType:   c.MatchType,
		Date:        slot.Date,
		Venue:       slot.Venue,
		TimeSlot:    slot.TimeSlot,
		Team1:       p.Team1,
		Team2:       p.Team2,
	}
	s.next++

	teams := append(concreteNames(p), c.Involved...)
	s.tracker.Record(slot.Date, teams...)
	return f
}
