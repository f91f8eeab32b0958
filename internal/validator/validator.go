package validator

import (
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/fixturegen/internal/config"
	"github.com/derekprior/fixturegen/internal/excel"
	"github.com/derekprior/fixturegen/internal/schedule"
)

// Violation represents a constraint violation found during validation.
type Violation struct {
	Row     int
	Type    string // "error" or "warning"
	Message string
	Days    int // for rest violations: days between matches (0 = not applicable)
}

// Validate reads a schedule Excel file and checks it against the config rules.
func Validate(cfg *config.Config, path string) ([]Violation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	rows, err := excel.ReadMaster(f, cfg.TeamNames())
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}
	return Check(cfg, rows), nil
}

// Check runs every rule against rows already read from a workbook.
func Check(cfg *config.Config, rows []excel.Row) []Violation {
	var violations []Violation

	// Hard constraints
	violations = append(violations, checkSlotClashes(rows)...)
	violations = append(violations, checkDailyLimits(cfg, rows)...)
	violations = append(violations, checkRestDays(cfg, rows)...)
	violations = append(violations, checkDateRange(cfg, rows)...)
	violations = append(violations, checkNumbering(rows)...)

	// Completeness
	violations = append(violations, checkTeamsScheduled(cfg, rows)...)

	return violations
}

func checkSlotClashes(rows []excel.Row) []Violation {
	type slotKey struct {
		date  time.Time
		venue string
		slot  int
	}
	seen := make(map[slotKey]int)
	var violations []Violation
	for _, r := range rows {
		k := slotKey{r.Fixture.Date, r.Fixture.Venue, r.Fixture.TimeSlot}
		if first, ok := seen[k]; ok {
			violations = append(violations, Violation{
				Row:  r.Number,
				Type: "error",
				Message: fmt.Sprintf("%s slot %d at %s is used by rows %d and %d",
					k.date.Format("01/02"), k.slot, k.venue, first, r.Number),
			})
			continue
		}
		seen[k] = r.Number
	}
	return violations
}

func checkDailyLimits(cfg *config.Config, rows []excel.Row) []Violation {
	counts := make(map[time.Time][]int)
	for _, r := range rows {
		counts[r.Fixture.Date] = append(counts[r.Fixture.Date], r.Number)
	}

	var violations []Violation
	for _, d := range sortedDates(counts) {
		limit := cfg.Rules.DailyLimit(d)
		if n := len(counts[d]); n > limit {
			violations = append(violations, Violation{
				Row:     counts[d][limit],
				Type:    "error",
				Message: fmt.Sprintf("%d matches on %s (max %d)", n, d.Format("01/02"), limit),
			})
		}
	}
	return violations
}

// checkRestDays reports consecutive matches of a roster team that are closer
// than the rest gap. Placeholders are not tracked.
func checkRestDays(cfg *config.Config, rows []excel.Row) []Violation {
	type played struct {
		date time.Time
		row  int
	}
	byTeam := make(map[string][]played)
	for _, r := range rows {
		for _, p := range []schedule.Participant{r.Fixture.Team1, r.Fixture.Team2} {
			if p.IsPlaceholder() {
				continue
			}
			byTeam[p.Name()] = append(byTeam[p.Name()], played{r.Fixture.Date, r.Number})
		}
	}

	gap := cfg.Rules.RestGap()
	var violations []Violation
	for _, team := range cfg.TeamNames() {
		ps := byTeam[team]
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].date.Before(ps[j].date) })
		for i := 1; i < len(ps); i++ {
			days := schedule.DaysBetween(ps[i-1].date, ps[i].date)
			if days < gap {
				violations = append(violations, Violation{
					Row:  ps[i].row,
					Type: "error",
					Days: days,
					Message: fmt.Sprintf("%s plays %s and %s (needs %d rest days)",
						team, ps[i-1].date.Format("01/02"), ps[i].date.Format("01/02"), cfg.Rules.MinRestDays),
				})
			}
		}
	}
	// Tightest turnarounds first
	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Days < violations[j].Days
	})
	return violations
}

// checkDateRange warns about matches outside the configured tournament dates.
// Playoffs legitimately run past the end date, so only earlier matches are
// errors.
func checkDateRange(cfg *config.Config, rows []excel.Row) []Violation {
	start, end := cfg.Tournament.StartDate.Time, cfg.Tournament.EndDate.Time
	var violations []Violation
	for _, r := range rows {
		d := r.Fixture.Date
		switch {
		case !start.IsZero() && d.Before(start):
			violations = append(violations, Violation{
				Row:     r.Number,
				Type:    "error",
				Message: fmt.Sprintf("match %d on %s is before the start date", r.Fixture.MatchNumber, d.Format("01/02")),
			})
		case !end.IsZero() && d.After(end) && r.Fixture.Stage != "Playoffs":
			violations = append(violations, Violation{
				Row:     r.Number,
				Type:    "warning",
				Message: fmt.Sprintf("match %d on %s is after the end date", r.Fixture.MatchNumber, d.Format("01/02")),
			})
		}
	}
	return violations
}

// checkNumbering expects match numbers 1..n following date and slot order.
func checkNumbering(rows []excel.Row) []Violation {
	ordered := make([]excel.Row, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].Fixture, ordered[j].Fixture
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.TimeSlot < b.TimeSlot
	})

	var violations []Violation
	for i, r := range ordered {
		if r.Fixture.MatchNumber != i+1 {
			violations = append(violations, Violation{
				Row:     r.Number,
				Type:    "warning",
				Message: fmt.Sprintf("match numbered %d is match %d in date order", r.Fixture.MatchNumber, i+1),
			})
		}
	}
	return violations
}

func checkTeamsScheduled(cfg *config.Config, rows []excel.Row) []Violation {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.Fixture.Team1.Name()]++
		counts[r.Fixture.Team2.Name()]++
	}

	var violations []Violation
	for _, team := range cfg.TeamNames() {
		if counts[team] == 0 {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("%s has no matches scheduled", team),
			})
		}
	}
	return violations
}

func sortedDates[V any](m map[time.Time]V) []time.Time {
	dates := make([]time.Time, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
