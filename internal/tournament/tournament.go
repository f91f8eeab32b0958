package tournament

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/derekprior/fixturegen/internal/config"
	"github.com/derekprior/fixturegen/internal/schedule"
	"github.com/derekprior/fixturegen/internal/strategy"
)

const defaultName = "Unnamed Tournament"

// Input describes one generation request.
type Input struct {
	Name       string
	Format     string
	Teams      []string
	Venues     []string // derived from TeamVenues when empty
	TeamVenues map[string]string
	Start      time.Time
	End        time.Time
	Groups     config.Groups
	Playoffs   bool
	Top4       []string
}

// FromConfig builds an Input from a loaded config file.
func FromConfig(cfg *config.Config) Input {
	return Input{
		Name:       cfg.Tournament.Name,
		Format:     cfg.Tournament.Format,
		Teams:      cfg.TeamNames(),
		Venues:     cfg.Venues(),
		TeamVenues: cfg.TeamVenues(),
		Start:      cfg.Tournament.StartDate.Time,
		End:        cfg.Tournament.EndDate.Time,
		Groups:     cfg.Groups,
		Playoffs:   cfg.Playoffs.Enabled,
		Top4:       cfg.Playoffs.Top4,
	}
}

// Result is a generated schedule. Fixtures are ordered by date and time
// slot and numbered 1..n in that order.
type Result struct {
	ID       string
	Name     string
	Format   string
	Start    time.Time
	End      time.Time
	Teams    []string
	Fixtures []schedule.Fixture
	Stages   []schedule.StageFixtures
	Notices  []schedule.Notice
	Gaps     *schedule.GapReport
}

// LastDate is the date of the final fixture.
func (r *Result) LastDate() time.Time {
	return schedule.LastDate(r.Fixtures)
}

type options struct {
	rng    schedule.Rand
	logger *zap.Logger
}

type Option func(*options)

// WithRand injects the source used for every shuffle and random pick.
func WithRand(r schedule.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithSeed makes generation reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewSource(seed)) }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Generate validates the input, runs the format and optional playoffs, then
// checks utilization and renumbers the whole event. Validation, scheduling
// and internal failures abort with no partial result.
func Generate(in Input, rules config.Rules, opts ...Option) (*Result, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	if len(in.Venues) == 0 {
		in.Venues = venuesOf(in.Teams, in.TeamVenues)
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	strat, err := strategy.Get(in.Format)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ID:     uuid.NewString(),
		Name:   in.Name,
		Format: in.Format,
		Start:  in.Start,
		End:    in.End,
		Teams:  in.Teams,
	}
	if res.Name == "" {
		res.Name = defaultName
	}
	logger := o.logger.With(zap.String("run_id", res.ID))
	logger.Info("starting generation",
		zap.String("tournament", res.Name),
		zap.String("format", in.Format),
		zap.Int("teams", len(in.Teams)),
		zap.Bool("playoffs", in.Playoffs))

	sin := strategy.Input{
		Teams:      in.Teams,
		Venues:     in.Venues,
		TeamVenues: in.TeamVenues,
		Start:      in.Start,
		End:        in.End,
		Groups:     in.Groups,
		Rules:      rules,
		Rand:       o.rng,
		Logger:     logger,
	}
	out, err := strat.Generate(sin)
	if err != nil {
		logger.Error("generation failed", zap.Error(err))
		return nil, fmt.Errorf("generating %s fixtures: %w", in.Format, err)
	}
	fixtures := out.Fixtures
	res.Notices = append(res.Notices, out.Notices...)

	if in.Playoffs && strategy.SupportsPlayoffs(in.Format) {
		po, err := strategy.Top4Playoffs(in.Top4, out.LastDate, sin)
		if err != nil {
			logger.Error("playoff generation failed", zap.Error(err))
			return nil, fmt.Errorf("generating playoffs: %w", err)
		}
		fixtures = append(fixtures, po.Fixtures...)
		res.Notices = append(res.Notices, po.Notices...)
	}

	if len(fixtures) == 0 {
		res.Notices = append(res.Notices, schedule.Warnf("No fixtures could be generated. Check constraints or date range."))
		return res, nil
	}

	res.Notices = append(res.Notices, schedule.Successf("Fixtures generated successfully for '%s'!", res.Name))
	logger.Info("generated fixtures", zap.Int("fixtures", len(fixtures)))

	res.Gaps = schedule.CheckGaps(fixtures, in.Start, schedule.LastDate(fixtures), rules, logger)
	res.Notices = append(res.Notices, res.Gaps.Notices()...)

	schedule.Renumber(fixtures)
	res.Fixtures = fixtures
	res.Stages = schedule.GroupByStage(fixtures)
	return res, nil
}

func validate(in Input) error {
	if len(in.Teams) < 2 {
		return schedule.Invalidf("at least two teams are required")
	}
	seen := make(map[string]bool, len(in.Teams))
	for _, t := range in.Teams {
		if t == "" {
			return schedule.Invalidf("team name cannot be empty")
		}
		if seen[t] {
			return schedule.Invalidf("duplicate team name: %q", t)
		}
		seen[t] = true
		if in.TeamVenues[t] == "" {
			return schedule.Invalidf("team %q has no venue", t)
		}
	}
	if len(in.Venues) == 0 {
		return schedule.Invalidf("at least one venue is required")
	}
	known := make(map[string]bool, len(in.Venues))
	for _, v := range in.Venues {
		known[v] = true
	}
	for _, t := range in.Teams {
		if v := in.TeamVenues[t]; !known[v] {
			return schedule.Invalidf("venue %q of team %q is not in the venue list", v, t)
		}
	}

	if in.Start.IsZero() || in.End.IsZero() {
		return schedule.Invalidf("start and end dates are required")
	}
	if in.End.Before(in.Start) {
		return schedule.Invalidf("end date %s cannot be before start date %s",
			in.End.Format("2006-01-02"), in.Start.Format("2006-01-02"))
	}

	if in.Playoffs && strategy.SupportsPlayoffs(in.Format) {
		if len(in.Teams) < 4 {
			return schedule.Invalidf("at least 4 teams are required for Top 4 playoffs")
		}
		if len(in.Top4) != 4 {
			return schedule.Invalidf("must select all Top 4 teams when playoffs are enabled, got %d", len(in.Top4))
		}
		picked := make(map[string]bool, 4)
		for _, t := range in.Top4 {
			if t == "" {
				return schedule.Invalidf("must select all Top 4 teams when playoffs are enabled")
			}
			if picked[t] {
				return schedule.Invalidf("Top 4 selections must be unique: %q picked twice", t)
			}
			picked[t] = true
			if !seen[t] {
				return schedule.Invalidf("Top 4 team %q is not in the team list", t)
			}
		}
	}
	return nil
}

func venuesOf(teams []string, teamVenues map[string]string) []string {
	seen := make(map[string]bool)
	var venues []string
	for _, t := range teams {
		v := teamVenues[t]
		if v != "" && !seen[v] {
			seen[v] = true
			venues = append(venues, v)
		}
	}
	return venues
}
