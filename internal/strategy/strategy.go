package strategy

import (
	"time"

	"go.uber.org/zap"

	"github.com/derekprior/fixturegen/internal/config"
	"github.com/derekprior/fixturegen/internal/schedule"
)

// Format names accepted by Get.
const (
	RoundRobinFormat        = "round_robin"
	DoubleRoundRobinFormat  = "double_round_robin"
	SingleEliminationFormat = "single_elimination"
	DoubleEliminationFormat = "double_elimination"
	GroupKnockoutFormat     = "group_knockout"
)

// Input is everything a format needs to produce its fixtures. Each call
// builds its own slot pool; nothing is shared between calls.
type Input struct {
	Teams      []string
	Venues     []string
	TeamVenues map[string]string
	Start      time.Time
	End        time.Time
	Groups     config.Groups
	Rules      config.Rules
	Rand       schedule.Rand
	Logger     *zap.Logger
}

func (in Input) logger() *zap.Logger {
	if in.Logger == nil {
		return zap.NewNop()
	}
	return in.Logger
}

// Output is a format's fixtures, the last date they use, and any advisory
// notices raised along the way.
type Output struct {
	Fixtures []schedule.Fixture
	LastDate time.Time
	Notices  []schedule.Notice
}

func (o *Output) add(b *schedule.Batch) {
	o.Fixtures = append(o.Fixtures, b.Fixtures...)
	if b.LastDate.After(o.LastDate) {
		o.LastDate = b.LastDate
	}
}

// Strategy generates the fixtures of one tournament format.
type Strategy interface {
	Generate(in Input) (*Output, error)
}

// Get returns a Strategy by name.
func Get(name string) (Strategy, error) {
	switch name {
	case RoundRobinFormat:
		return &RoundRobin{}, nil
	case DoubleRoundRobinFormat:
		return &DoubleRoundRobin{}, nil
	case SingleEliminationFormat:
		return &SingleElimination{}, nil
	case DoubleEliminationFormat:
		return &DoubleElimination{}, nil
	case GroupKnockoutFormat:
		return &GroupKnockout{}, nil
	default:
		return nil, schedule.Invalidf("unknown tournament format: %q", name)
	}
}

// SupportsPlayoffs reports whether Top-4 playoffs may follow the format.
func SupportsPlayoffs(name string) bool {
	return name == RoundRobinFormat || name == DoubleRoundRobinFormat
}

func requireTeams(in Input, n int) error {
	if len(in.Teams) < n {
		if n == 2 {
			return schedule.Invalidf("at least two teams are required")
		}
		return schedule.Invalidf("at least %d teams are required, got %d", n, len(in.Teams))
	}
	if len(in.Venues) == 0 {
		return schedule.Invalidf("at least one venue is required")
	}
	return nil
}

// newScheduler builds the slot pool for the whole window and a scheduler
// that owns it.
func newScheduler(in Input) (*schedule.Scheduler, error) {
	slots := schedule.GenerateSlots(in.Venues, in.Start, in.End, in.Rules)
	if len(slots) == 0 {
		return nil, schedule.Invalidf("no slots available between %s and %s",
			in.Start.Format("2006-01-02"), in.End.Format("2006-01-02"))
	}
	in.logger().Info("generated slots",
		zap.Int("venues", len(in.Venues)),
		zap.Int("slots", len(slots)),
		zap.Time("start", in.Start),
		zap.Time("end", in.End))
	return schedule.New(slots, in.TeamVenues, in.Rules, in.Rand, schedule.WithLogger(in.logger())), nil
}
