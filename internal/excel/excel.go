package excel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/fixturegen/internal/schedule"
	"github.com/derekprior/fixturegen/internal/tournament"
)

const (
	MasterSheet  = "Master Schedule"
	NoticesSheet = "Notices"
	SummarySheet = "Summary"

	dateLayout = "01/02/2006"
)

var masterHeaders = []string{"Match", "Date", "Day", "Slot", "Venue", "Stage", "Round", "Type", "Team 1", "Team 2"}

// Generate creates an Excel workbook with the master schedule, one sheet per
// stage and per team, the notices and a run summary.
func Generate(res *tournament.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	// Set default font for the workbook
	f.SetDefaultFont("Arial")

	st := newStyles(f)
	names := newSheetNamer()

	if err := writeFixtureSheet(f, st, MasterSheet, res.Fixtures); err != nil {
		return nil, fmt.Errorf("writing master sheet: %w", err)
	}
	for _, stage := range res.Stages {
		if err := writeFixtureSheet(f, st, names.name(stage.Stage), stage.Fixtures); err != nil {
			return nil, fmt.Errorf("writing %s sheet: %w", stage.Stage, err)
		}
	}
	if err := writeTeamSheets(f, st, names, res.Teams, res.Fixtures); err != nil {
		return nil, fmt.Errorf("writing team sheets: %w", err)
	}
	if err := writeNoticesSheet(f, st, res.Notices); err != nil {
		return nil, fmt.Errorf("writing notices: %w", err)
	}
	if err := writeSummarySheet(f, st, res); err != nil {
		return nil, fmt.Errorf("writing summary: %w", err)
	}

	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(MasterSheet); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// UpdateTeamSheets rebuilds the per-team sheets of a saved workbook from its
// Master Schedule, so manual edits to the master flow through.
func UpdateTeamSheets(path string, teams []string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	rows, err := ReadMaster(f, teams)
	if err != nil {
		return err
	}
	fixtures := make([]schedule.Fixture, len(rows))
	for i, r := range rows {
		fixtures[i] = r.Fixture
	}

	names := newSheetNamer()
	for _, s := range schedule.GroupByStage(fixtures) {
		names.name(s.Stage)
	}
	for _, team := range teams {
		sheet := names.peek(team)
		if idx, _ := f.GetSheetIndex(sheet); idx >= 0 {
			f.DeleteSheet(sheet)
		}
	}

	if err := writeTeamSheets(f, newStyles(f), names, teams, fixtures); err != nil {
		return fmt.Errorf("writing team sheets: %w", err)
	}
	return f.Save()
}

// Row is one fixture read back from the Master Schedule.
type Row struct {
	Number  int // spreadsheet row, 1-based
	Fixture schedule.Fixture
}

// ReadMaster parses the Master Schedule. Names found in teams are read as
// concrete teams, anything else as a placeholder.
func ReadMaster(f *excelize.File, teams []string) ([]Row, error) {
	rows, err := f.GetRows(MasterSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", MasterSheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", MasterSheet)
	}

	roster := make(map[string]bool, len(teams))
	for _, t := range teams {
		roster[t] = true
	}
	participant := func(name string) schedule.Participant {
		if roster[name] {
			return schedule.Team(name)
		}
		return schedule.Placeholder(name)
	}

	var out []Row
	for i, row := range rows {
		if i == 0 || len(row) == 0 || row[0] == "" {
			continue
		}
		for len(row) < len(masterHeaders) {
			row = append(row, "")
		}

		num, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid match number %q", i+1, row[0])
		}
		d, err := time.Parse(dateLayout, row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q", i+1, row[1])
		}
		slot, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid slot %q", i+1, row[3])
		}
		round := 0
		if row[6] != "" {
			if round, err = strconv.Atoi(row[6]); err != nil {
				return nil, fmt.Errorf("row %d: invalid round %q", i+1, row[6])
			}
		}

		out = append(out, Row{
			Number: i + 1,
			Fixture: schedule.Fixture{
				MatchNumber: num,
				Date:        d,
				TimeSlot:    slot,
				Venue:       row[4],
				Stage:       row[5],
				Round:       round,
				MatchType:   row[7],
				Team1:       participant(row[8]),
				Team2:       participant(row[9]),
			},
		})
	}
	return out, nil
}

type styles struct {
	header int
	cell   int
	center int
}

func newStyles(f *excelize.File) styles {
	var st styles
	st.header, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 12, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	st.cell, _ = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 12, Family: "Arial"},
	})
	st.center, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 12, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return st
}

func writeHeaders(f *excelize.File, st styles, sheet string, headers []string) {
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}
	if st.header != 0 {
		f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), st.header)
	}
}

func writeFixtureSheet(f *excelize.File, st styles, sheet string, fixtures []schedule.Fixture) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	writeHeaders(f, st, sheet, masterHeaders)

	for i, fx := range fixtures {
		row := i + 2
		var round any
		if fx.Round > 0 {
			round = fx.Round
		}
		values := []any{
			fx.MatchNumber,
			fx.Date.Format(dateLayout),
			fx.Date.Format("Mon"),
			fx.TimeSlot,
			fx.Venue,
			fx.Stage,
			round,
			fx.MatchType,
			fx.Team1.Name(),
			fx.Team2.Name(),
		}
		if err := f.SetSheetRow(sheet, cellRef(1, row), &values); err != nil {
			return err
		}
		if st.cell != 0 {
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(values), row), st.cell)
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(1, row), st.center)
			f.SetCellStyle(sheet, cellRef(4, row), cellRef(4, row), st.center)
			f.SetCellStyle(sheet, cellRef(7, row), cellRef(7, row), st.center)
		}
	}

	widths := map[string]float64{"A": 8, "B": 14, "C": 8, "D": 6, "E": 24, "F": 18, "G": 8, "H": 14, "I": 24, "J": 24}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	return nil
}

func writeTeamSheets(f *excelize.File, st styles, names *sheetNamer, teams []string, fixtures []schedule.Fixture) error {
	headers := []string{"Match", "Date", "Day", "Slot", "Venue", "Stage", "Type", "Opponent"}
	for _, team := range teams {
		sheet := names.name(team)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("sheet for %s: %w", team, err)
		}
		writeHeaders(f, st, sheet, headers)

		for i, fx := range schedule.FilterByTeam(fixtures, team) {
			row := i + 2
			opponent := fx.Team2.Name()
			if opponent == team {
				opponent = fx.Team1.Name()
			}
			values := []any{
				fx.MatchNumber,
				fx.Date.Format(dateLayout),
				fx.Date.Format("Mon"),
				fx.TimeSlot,
				fx.Venue,
				fx.Stage,
				fx.MatchType,
				opponent,
			}
			if err := f.SetSheetRow(sheet, cellRef(1, row), &values); err != nil {
				return err
			}
			if st.cell != 0 {
				f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(values), row), st.cell)
			}
		}

		widths := map[string]float64{"A": 8, "B": 14, "C": 8, "D": 6, "E": 24, "F": 18, "G": 14, "H": 24}
		for col, w := range widths {
			f.SetColWidth(sheet, col, col, w)
		}
	}
	return nil
}

func writeNoticesSheet(f *excelize.File, st styles, notices []schedule.Notice) error {
	if _, err := f.NewSheet(NoticesSheet); err != nil {
		return err
	}
	writeHeaders(f, st, NoticesSheet, []string{"Severity", "Message"})
	for i, n := range notices {
		f.SetCellValue(NoticesSheet, cellRef(1, i+2), string(n.Severity))
		f.SetCellValue(NoticesSheet, cellRef(2, i+2), n.Message)
	}
	f.SetColWidth(NoticesSheet, "A", "A", 12)
	f.SetColWidth(NoticesSheet, "B", "B", 90)
	return nil
}

func writeSummarySheet(f *excelize.File, st styles, res *tournament.Result) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	lastMatch := ""
	if d := res.LastDate(); !d.IsZero() {
		lastMatch = d.Format(dateLayout)
	}
	gaps, under := 0, 0
	if res.Gaps != nil {
		gaps, under = res.Gaps.Gaps, res.Gaps.Underutilized
	}

	rows := [][]any{
		{"Run ID", res.ID},
		{"Tournament", res.Name},
		{"Format", res.Format},
		{"Start Date", res.Start.Format(dateLayout)},
		{"End Date", res.End.Format(dateLayout)},
		{"Last Match", lastMatch},
		{"Teams", len(res.Teams)},
		{"Fixtures", len(res.Fixtures)},
		{"Days Without Matches", gaps},
		{"Under-used Days", under},
	}
	for i, r := range rows {
		f.SetSheetRow(SummarySheet, cellRef(1, i+1), &r)
	}
	if st.header != 0 {
		f.SetCellStyle(SummarySheet, "A1", cellRef(1, len(rows)), st.header)
	}
	f.SetColWidth(SummarySheet, "A", "A", 24)
	f.SetColWidth(SummarySheet, "B", "B", 40)
	return nil
}

// sheetNamer hands out valid, unique sheet names. Excel limits names to 31
// characters, forbids a few punctuation marks and compares case-insensitively.
type sheetNamer struct {
	used map[string]bool
}

func newSheetNamer() *sheetNamer {
	n := &sheetNamer{used: make(map[string]bool)}
	// Sheet1 is the blank default sheet, deleted once the workbook is built.
	for _, s := range []string{MasterSheet, NoticesSheet, SummarySheet, "Sheet1"} {
		n.used[strings.ToLower(s)] = true
	}
	return n
}

func (n *sheetNamer) name(s string) string {
	name := n.peek(s)
	n.used[strings.ToLower(name)] = true
	return name
}

// peek returns the name s would get without reserving it.
func (n *sheetNamer) peek(s string) string {
	base := sanitizeSheetName(s)
	name := base
	for i := 2; n.used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		name = truncate(base, 31-len(suffix)) + suffix
	}
	return name
}

func sanitizeSheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, s)
	s = strings.Trim(s, "'")
	if s == "" {
		s = "Sheet"
	}
	return truncate(s, 31)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
