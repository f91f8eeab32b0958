package schedule

import (
	"time"

	"go.uber.org/zap"

	"github.com/derekprior/fixturegen/internal/config"
)

// DayUsage compares the matches placed on a date with its cap.
type DayUsage struct {
	Date     time.Time
	Matches  int
	Capacity int
}

func (u DayUsage) Gap() bool           { return u.Matches == 0 && u.Capacity > 0 }
func (u DayUsage) Underutilized() bool { return u.Matches > 0 && u.Matches < u.Capacity }

// GapReport is the per-day utilization of a finished schedule.
type GapReport struct {
	Days          []DayUsage
	Gaps          int
	Underutilized int
}

// CheckGaps sweeps every date from start to end against the daily caps. It
// only reads the fixtures. An empty fixture list yields an empty report.
func CheckGaps(fixtures []Fixture, start, end time.Time, rules config.Rules, logger *zap.Logger) *GapReport {
	report := &GapReport{}
	if len(fixtures) == 0 {
		return report
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	counts := make(map[time.Time]int)
	for _, f := range fixtures {
		counts[f.Date]++
	}

	for _, d := range DateRange(start, end) {
		u := DayUsage{Date: d, Matches: counts[d], Capacity: rules.DailyLimit(d)}
		switch {
		case u.Gap():
			report.Gaps++
			logger.Warn("schedule gap", zap.String("date", formatDay(d)))
		case u.Underutilized():
			report.Underutilized++
			logger.Warn("schedule under-utilization",
				zap.String("date", formatDay(d)),
				zap.Int("matches", u.Matches),
				zap.Int("capacity", u.Capacity))
		}
		report.Days = append(report.Days, u)
	}
	return report
}

// Notices renders one notice per gap or under-used day followed by a
// summary line.
func (r *GapReport) Notices() []Notice {
	var notices []Notice
	for _, u := range r.Days {
		switch {
		case u.Gap():
			notices = append(notices, Warnf("No matches on %s.", formatDay(u.Date)))
		case u.Underutilized():
			notices = append(notices, Infof("%d/%d matches on %s.", u.Matches, u.Capacity, formatDay(u.Date)))
		}
	}

	total := len(r.Days)
	switch {
	case r.Gaps > 0:
		notices = append(notices, Warnf("Scheduling resulted in %d/%d days having no matches due to constraints.", r.Gaps, total))
	case r.Underutilized > 0:
		notices = append(notices, Infof("%d/%d days had fewer matches than the maximum allowed due to constraints.", r.Underutilized, total))
	}
	return notices
}

func formatDay(d time.Time) string {
	return d.Format("2006-01-02 (Mon)")
}
