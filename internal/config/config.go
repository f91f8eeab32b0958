package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Date is a wrapper around time.Time for YAML date parsing.
type Date struct {
	Time time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse("2006-01-02", value.Value)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value.Value, err)
	}
	d.Time = t
	return nil
}

// IsZero reports whether the date was never set.
func (d Date) IsZero() bool {
	return d.Time.IsZero()
}

type Tournament struct {
	Name      string `yaml:"name"`
	Format    string `yaml:"format" validate:"required,oneof=round_robin double_round_robin single_elimination double_elimination group_knockout"`
	StartDate Date   `yaml:"start_date"`
	EndDate   Date   `yaml:"end_date"`
	Seed      int64  `yaml:"seed"`
}

type Team struct {
	Name  string `yaml:"name" validate:"required"`
	Venue string `yaml:"venue" validate:"required"`
}

type Groups struct {
	Size    int `yaml:"size" validate:"gte=0"`
	Advance int `yaml:"advance" validate:"gte=0"`
}

type Playoffs struct {
	Enabled bool     `yaml:"enabled"`
	Top4    []string `yaml:"top4"`
}

// Rules are the scheduling policy constants. They are passed explicitly to
// every engine entry point.
type Rules struct {
	MinRestDays         int `yaml:"min_rest_days" validate:"gte=0"`
	WeekdayMatchesLimit int `yaml:"weekday_matches_limit" validate:"gte=0"`
	WeekendMatchesLimit int `yaml:"weekend_matches_limit" validate:"gte=0"`
	PlayoffStartGapDays int `yaml:"playoff_start_gap_days" validate:"gte=0"`
	PlayoffWindowDays   int `yaml:"playoff_window_days" validate:"gte=1"`
}

// DefaultRules returns the standard policy: two rest days, one match a day
// on weekdays and two on weekends, playoffs three days after the league.
func DefaultRules() Rules {
	return Rules{
		MinRestDays:         2,
		WeekdayMatchesLimit: 1,
		WeekendMatchesLimit: 2,
		PlayoffStartGapDays: 3,
		PlayoffWindowDays:   21,
	}
}

// DailyLimit returns the tournament-wide match cap for the given date.
func (r Rules) DailyLimit(d time.Time) int {
	if IsWeekend(d) {
		return r.WeekendMatchesLimit
	}
	return r.WeekdayMatchesLimit
}

// SlotsPerVenue is the physical number of time slots each venue offers per day.
func (r Rules) SlotsPerVenue() int {
	return max(r.WeekdayMatchesLimit, r.WeekendMatchesLimit)
}

// RestGap is the minimum number of calendar days between two matches of the
// same team.
func (r Rules) RestGap() int {
	return r.MinRestDays + 1
}

func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

type Config struct {
	Tournament Tournament `yaml:"tournament"`
	Teams      []Team     `yaml:"teams" validate:"dive"`
	TeamsFile  string     `yaml:"teams_file"`
	Groups     Groups     `yaml:"groups"`
	Playoffs   Playoffs   `yaml:"playoffs"`
	Rules      Rules      `yaml:"rules"`
}

// TeamNames returns team names in file order.
func (c *Config) TeamNames() []string {
	names := make([]string, 0, len(c.Teams))
	for _, t := range c.Teams {
		names = append(names, t.Name)
	}
	return names
}

// Venues returns the unique venues in first-seen order.
func (c *Config) Venues() []string {
	seen := make(map[string]bool)
	var venues []string
	for _, t := range c.Teams {
		if !seen[t.Venue] {
			seen[t.Venue] = true
			venues = append(venues, t.Venue)
		}
	}
	return venues
}

// TeamVenues maps each team to its home venue.
func (c *Config) TeamVenues() map[string]string {
	m := make(map[string]string, len(c.Teams))
	for _, t := range c.Teams {
		m[t.Name] = t.Venue
	}
	return m
}

// DefaultGroups is four teams per group with the top two advancing.
func DefaultGroups() Groups {
	return Groups{Size: 4, Advance: 2}
}

func defaults() Config {
	return Config{
		Tournament: Tournament{Name: "Unnamed Tournament"},
		Groups:     DefaultGroups(),
		Rules:      DefaultRules(),
	}
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
// A teams_file entry is resolved relative to the working directory.
func LoadFromBytes(data []byte) (*Config, error) {
	return load(data, "")
}

// LoadFromFile reads and parses a YAML config file. A teams_file entry is
// resolved relative to the config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return load(data, filepath.Dir(path))
}

func load(data []byte, baseDir string) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.TeamsFile != "" {
		path := cfg.TeamsFile
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("reading teams file: %w", err)
		}
		teams, err := ParseTeamVenues(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("teams file %s: %w", cfg.TeamsFile, err)
		}
		cfg.Teams = append(cfg.Teams, teams...)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) validate() error {
	if err := structValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describeFieldError(fe))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Tournament.StartDate.IsZero() || c.Tournament.EndDate.IsZero() {
		return fmt.Errorf("start_date and end_date are required")
	}
	if c.Tournament.EndDate.Time.Before(c.Tournament.StartDate.Time) {
		return fmt.Errorf("end date %s cannot be before start date %s",
			c.Tournament.EndDate.Time.Format("2006-01-02"),
			c.Tournament.StartDate.Time.Format("2006-01-02"))
	}

	if len(c.Teams) < 2 {
		return fmt.Errorf("at least two teams are required")
	}

	seen := make(map[string]bool)
	for _, t := range c.Teams {
		if seen[t.Name] {
			return fmt.Errorf("duplicate team name: %q", t.Name)
		}
		seen[t.Name] = true
	}

	if c.Rules.WeekdayMatchesLimit == 0 && c.Rules.WeekendMatchesLimit == 0 {
		return fmt.Errorf("weekday_matches_limit and weekend_matches_limit cannot both be zero")
	}

	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Namespace(), fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Namespace(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q check", fe.Namespace(), fe.Tag())
	}
}
