package strategy

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/derekprior/fixturegen/internal/config"
	"github.com/derekprior/fixturegen/internal/schedule"
)

// fixedRand never permutes and always picks the first candidate.
type fixedRand struct{}

func (fixedRand) Shuffle(int, func(i, j int)) {}
func (fixedRand) Intn(int) int                { return 0 }

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func teamNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = string(rune('A' + i))
	}
	return names
}

// testInput puts every team at the same venue.
func testInput(teams []string, start, end time.Time) Input {
	venues := make(map[string]string, len(teams))
	for _, t := range teams {
		venues[t] = "V1"
	}
	return Input{
		Teams:      teams,
		Venues:     []string{"V1"},
		TeamVenues: venues,
		Start:      start,
		End:        end,
		Groups:     config.Groups{Size: 4, Advance: 2},
		Rules:      config.DefaultRules(),
		Rand:       fixedRand{},
	}
}

func countBy[K comparable](fixtures []schedule.Fixture, key func(schedule.Fixture) K) map[K]int {
	m := make(map[K]int)
	for _, f := range fixtures {
		m[key(f)]++
	}
	return m
}

func pairKey(f schedule.Fixture) string {
	return f.Team1.Name() + "-" + f.Team2.Name()
}

func TestGet(t *testing.T) {
	for _, name := range []string{
		RoundRobinFormat, DoubleRoundRobinFormat, SingleEliminationFormat,
		DoubleEliminationFormat, GroupKnockoutFormat,
	} {
		if _, err := Get(name); err != nil {
			t.Errorf("Get(%q) error: %v", name, err)
		}
	}

	_, err := Get("swiss")
	var ve *schedule.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for unknown format, got %v", err)
	}

	if !SupportsPlayoffs(RoundRobinFormat) || SupportsPlayoffs(SingleEliminationFormat) {
		t.Error("only league formats support playoffs")
	}
}

func TestRoundRobin(t *testing.T) {
	t.Run("four teams over two weeks", func(t *testing.T) {
		out, err := (&RoundRobin{}).Generate(testInput(teamNames(4), date(2026, 1, 5), date(2026, 1, 18)))
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if len(out.Fixtures) != 6 {
			t.Fatalf("fixtures = %d, want 6", len(out.Fixtures))
		}
		played := make(map[string][]time.Time)
		for _, f := range out.Fixtures {
			played[f.Team1.Name()] = append(played[f.Team1.Name()], f.Date)
			played[f.Team2.Name()] = append(played[f.Team2.Name()], f.Date)
			if f.Stage != "League" {
				t.Errorf("stage = %q, want League", f.Stage)
			}
		}
		for team, dates := range played {
			if len(dates) != 3 {
				t.Errorf("%s plays %d matches, want 3", team, len(dates))
			}
			for i := 1; i < len(dates); i++ {
				if schedule.DaysBetween(dates[i-1], dates[i]) < 3 {
					t.Errorf("%s plays %s and %s", team, dates[i-1].Format("01/02"), dates[i].Format("01/02"))
				}
			}
		}
		if !out.LastDate.Equal(date(2026, 1, 17)) {
			t.Errorf("LastDate = %s, want 2026-01-17", out.LastDate.Format("2006-01-02"))
		}
	})

	t.Run("each pair exactly once", func(t *testing.T) {
		in := testInput(teamNames(6), date(2026, 3, 2), date(2026, 6, 29))
		in.Rand = rand.New(rand.NewSource(7))
		out, err := (&RoundRobin{}).Generate(in)
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if len(out.Fixtures) != 15 {
			t.Errorf("fixtures = %d, want 15", len(out.Fixtures))
		}
		seen := make(map[string]bool)
		for _, f := range out.Fixtures {
			a, b := f.Team1.Name(), f.Team2.Name()
			if a > b {
				a, b = b, a
			}
			if seen[a+b] {
				t.Errorf("%s vs %s played twice", a, b)
			}
			seen[a+b] = true
		}
	})

	t.Run("one team is a validation error", func(t *testing.T) {
		_, err := (&RoundRobin{}).Generate(testInput([]string{"A"}, date(2026, 1, 5), date(2026, 1, 18)))
		var ve *schedule.ValidationError
		if !errors.As(err, &ve) || !strings.Contains(err.Error(), "at least two teams") {
			t.Errorf("expected at least two teams error, got %v", err)
		}
	})

	t.Run("short window names the unplaceable pair", func(t *testing.T) {
		_, err := (&RoundRobin{}).Generate(testInput(teamNames(4), date(2026, 1, 5), date(2026, 1, 7)))
		var ue *schedule.UnschedulableError
		if !errors.As(err, &ue) {
			t.Fatalf("expected UnschedulableError, got %v", err)
		}
		if ue.Pair.String() != "A vs C" {
			t.Errorf("pair = %s, want A vs C", ue.Pair)
		}
	})
}

func TestDoubleRoundRobin(t *testing.T) {
	in := testInput(teamNames(4), date(2026, 1, 5), date(2026, 3, 31))
	out, err := (&DoubleRoundRobin{}).Generate(in)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	t.Run("n(n-1) fixtures", func(t *testing.T) {
		if len(out.Fixtures) != 12 {
			t.Errorf("fixtures = %d, want 12", len(out.Fixtures))
		}
	})

	t.Run("each ordered pair once", func(t *testing.T) {
		for k, n := range countBy(out.Fixtures, pairKey) {
			if n != 1 {
				t.Errorf("%s played %d times", k, n)
			}
		}
		if len(countBy(out.Fixtures, pairKey)) != 12 {
			t.Error("expected 12 distinct ordered pairs")
		}
	})

	t.Run("legs are labelled", func(t *testing.T) {
		stages := countBy(out.Fixtures, func(f schedule.Fixture) string { return f.Stage })
		if stages["League (Leg 1)"] != 6 || stages["League (Leg 2)"] != 6 {
			t.Errorf("stages = %v", stages)
		}
	})

	t.Run("renumbered by date and slot", func(t *testing.T) {
		for i, f := range out.Fixtures {
			if f.MatchNumber != i+1 {
				t.Errorf("fixture %d numbered %d", i, f.MatchNumber)
			}
			if i > 0 && f.Date.Before(out.Fixtures[i-1].Date) {
				t.Errorf("fixture %d out of date order", i)
			}
		}
	})
}

func TestSingleElimination(t *testing.T) {
	t.Run("eight teams, no byes", func(t *testing.T) {
		out, err := (&SingleElimination{}).Generate(testInput(teamNames(8), date(2026, 1, 5), date(2026, 3, 31)))
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		rounds := countBy(out.Fixtures, func(f schedule.Fixture) int { return f.Round })
		if rounds[1] != 4 || rounds[2] != 2 || rounds[3] != 1 || len(rounds) != 3 {
			t.Errorf("round sizes = %v, want 4/2/1", rounds)
		}
		if len(out.Fixtures) != 7 {
			t.Errorf("fixtures = %d, want 7", len(out.Fixtures))
		}
	})

	t.Run("byes skip round one", func(t *testing.T) {
		out, err := (&SingleElimination{}).Generate(testInput(teamNames(6), date(2026, 1, 5), date(2026, 3, 31)))
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		rounds := countBy(out.Fixtures, func(f schedule.Fixture) int { return f.Round })
		if rounds[1] != 2 || rounds[2] != 2 || rounds[3] != 1 {
			t.Errorf("round sizes = %v, want 2/2/1", rounds)
		}
		if len(out.Fixtures) != 5 {
			t.Errorf("fixtures = %d, want 5", len(out.Fixtures))
		}
		for _, f := range out.Fixtures {
			if f.Round == 1 && (f.Involves("A") || f.Involves("B")) {
				t.Errorf("bye team plays in round 1: %s vs %s", f.Team1, f.Team2)
			}
		}
	})

	t.Run("later rounds use winner placeholders", func(t *testing.T) {
		out, err := (&SingleElimination{}).Generate(testInput(teamNames(4), date(2026, 1, 5), date(2026, 3, 31)))
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		var final schedule.Fixture
		for _, f := range out.Fixtures {
			if f.Round == 2 {
				final = f
			}
		}
		if !final.Team1.IsPlaceholder() || !strings.HasPrefix(final.Team1.Name(), "Winner R1M") {
			t.Errorf("final team1 = %q", final.Team1.Name())
		}
	})

	t.Run("rounds do not overlap", func(t *testing.T) {
		in := testInput(teamNames(8), date(2026, 1, 5), date(2026, 3, 31))
		in.Rand = rand.New(rand.NewSource(3))
		out, err := (&SingleElimination{}).Generate(in)
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		last := make(map[int]time.Time)
		first := make(map[int]time.Time)
		for _, f := range out.Fixtures {
			if f.Date.After(last[f.Round]) {
				last[f.Round] = f.Date
			}
			if first[f.Round].IsZero() || f.Date.Before(first[f.Round]) {
				first[f.Round] = f.Date
			}
		}
		for r := 2; r <= 3; r++ {
			if schedule.DaysBetween(last[r-1], first[r]) < in.Rules.RestGap() {
				t.Errorf("round %d starts %s, round %d ends %s", r, first[r].Format("01/02"), r-1, last[r-1].Format("01/02"))
			}
		}
	})

	t.Run("n-1 fixtures and ceil(log2 n) rounds", func(t *testing.T) {
		for n, wantRounds := range map[int]int{2: 1, 3: 2, 5: 3, 9: 4, 12: 4} {
			in := testInput(teamNames(n), date(2026, 1, 5), date(2026, 6, 30))
			in.Rand = rand.New(rand.NewSource(int64(n)))
			out, err := (&SingleElimination{}).Generate(in)
			if err != nil {
				t.Fatalf("n=%d: %v", n, err)
			}
			if len(out.Fixtures) != n-1 {
				t.Errorf("n=%d: fixtures = %d, want %d", n, len(out.Fixtures), n-1)
			}
			if got := len(countBy(out.Fixtures, func(f schedule.Fixture) int { return f.Round })); got != wantRounds {
				t.Errorf("n=%d: rounds = %d, want %d", n, got, wantRounds)
			}
		}
	})
}

func TestPairUp(t *testing.T) {
	t.Run("odd participant count is an internal error", func(t *testing.T) {
		_, err := pairUp(schedule.Teams([]string{"A", "B", "C"}))
		var ie *schedule.InternalError
		if !errors.As(err, &ie) {
			t.Errorf("expected InternalError, got %v", err)
		}
	})

	t.Run("pairs in order", func(t *testing.T) {
		pairs, err := pairUp(schedule.Teams([]string{"A", "B", "C", "D"}))
		if err != nil {
			t.Fatal(err)
		}
		if len(pairs) != 2 || pairs[1].String() != "C vs D" {
			t.Errorf("pairs = %v", pairs)
		}
	})

	t.Run("next power of two", func(t *testing.T) {
		for n, want := range map[int]int{1: 1, 2: 2, 3: 4, 8: 8, 9: 16} {
			if got := nextPowerOfTwo(n); got != want {
				t.Errorf("nextPowerOfTwo(%d) = %d, want %d", n, got, want)
			}
		}
	})
}

func TestDoubleElimination(t *testing.T) {
	t.Run("needs four teams", func(t *testing.T) {
		_, err := (&DoubleElimination{}).Generate(testInput(teamNames(3), date(2026, 1, 5), date(2026, 3, 31)))
		var ve *schedule.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("single elimination with a warning", func(t *testing.T) {
		out, err := (&DoubleElimination{}).Generate(testInput(teamNames(4), date(2026, 1, 5), date(2026, 3, 31)))
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if len(out.Fixtures) != 3 {
			t.Errorf("fixtures = %d, want 3", len(out.Fixtures))
		}
		if len(out.Notices) == 0 || out.Notices[0].Severity != schedule.SeverityWarning ||
			!strings.Contains(out.Notices[0].Message, "Single Elimination structure") {
			t.Errorf("notices = %v", out.Notices)
		}
	})
}

func TestGroupKnockout(t *testing.T) {
	t.Run("two groups of four then a four-team knockout", func(t *testing.T) {
		in := testInput(teamNames(8), date(2026, 1, 5), date(2026, 4, 30))
		in.Venues = []string{"V1", "V2"}
		for _, team := range []string{"E", "F", "G", "H"} {
			in.TeamVenues[team] = "V2"
		}
		out, err := (&GroupKnockout{}).Generate(in)
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}

		stages := countBy(out.Fixtures, func(f schedule.Fixture) string { return f.Stage })
		if stages["Group A"] != 6 || stages["Group B"] != 6 || stages["Knockout"] != 3 {
			t.Errorf("stages = %v", stages)
		}

		var lastGroup, firstKO time.Time
		for _, f := range out.Fixtures {
			if f.Stage == "Knockout" {
				if firstKO.IsZero() || f.Date.Before(firstKO) {
					firstKO = f.Date
				}
			} else if f.Date.After(lastGroup) {
				lastGroup = f.Date
			}
		}
		if schedule.DaysBetween(lastGroup, firstKO) < in.Rules.RestGap() {
			t.Errorf("knockout starts %s, groups end %s", firstKO.Format("01/02"), lastGroup.Format("01/02"))
		}
		// groups end no earlier than the planned group stage end
		if firstKO.Before(groupStageEnd(in, 4).AddDate(0, 0, in.Rules.RestGap())) {
			t.Errorf("knockout starts %s before planned floor", firstKO.Format("01/02"))
		}

		for _, f := range out.Fixtures {
			if f.Stage == "Knockout" && f.Round == 1 && !strings.HasPrefix(f.Team1.Name(), "Rank ") {
				t.Errorf("round 1 entrant = %q", f.Team1.Name())
			}
		}
		if len(out.Notices) != 0 {
			t.Errorf("unexpected notices: %v", out.Notices)
		}
	})

	t.Run("no time left for knockout", func(t *testing.T) {
		out, err := (&GroupKnockout{}).Generate(testInput(teamNames(4), date(2026, 1, 5), date(2026, 1, 18)))
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if len(out.Fixtures) != 6 {
			t.Errorf("fixtures = %d, want 6", len(out.Fixtures))
		}
		if len(out.Notices) != 1 || out.Notices[0].Message != "No time left for knockout stage." {
			t.Errorf("notices = %v", out.Notices)
		}
	})

	t.Run("too few advancing teams", func(t *testing.T) {
		in := testInput(teamNames(4), date(2026, 1, 5), date(2026, 3, 31))
		in.Groups.Advance = 1
		out, err := (&GroupKnockout{}).Generate(in)
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if len(out.Fixtures) != 6 {
			t.Errorf("fixtures = %d, want 6", len(out.Fixtures))
		}
		if len(out.Notices) != 1 || out.Notices[0].Severity != schedule.SeverityWarning {
			t.Errorf("notices = %v", out.Notices)
		}
	})

	t.Run("unset groups use four per group and two advancing", func(t *testing.T) {
		in := testInput(teamNames(8), date(2026, 1, 5), date(2026, 6, 30))
		in.Groups = config.Groups{}
		out, err := (&GroupKnockout{}).Generate(in)
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		stages := countBy(out.Fixtures, func(f schedule.Fixture) string { return f.Stage })
		if stages["Group A"] != 6 || stages["Group B"] != 6 || stages["Knockout"] != 3 {
			t.Errorf("stages = %v", stages)
		}
	})

	t.Run("no advancing teams is not a warning", func(t *testing.T) {
		in := testInput(teamNames(4), date(2026, 1, 5), date(2026, 3, 31))
		in.Groups.Advance = 0
		out, err := (&GroupKnockout{}).Generate(in)
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if len(out.Fixtures) != 6 {
			t.Errorf("fixtures = %d, want 6", len(out.Fixtures))
		}
		if len(out.Notices) != 0 {
			t.Errorf("notices = %v", out.Notices)
		}
	})

	t.Run("input checks", func(t *testing.T) {
		tests := []struct {
			name    string
			teams   int
			size    int
			advance int
		}{
			{"fewer than four teams", 3, 3, 1},
			{"group size of one", 4, 1, 1},
			{"not divisible", 6, 4, 2},
			{"advance larger than group", 4, 4, 5},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := testInput(teamNames(tt.teams), date(2026, 1, 5), date(2026, 3, 31))
				in.Groups = config.Groups{Size: tt.size, Advance: tt.advance}
				_, err := (&GroupKnockout{}).Generate(in)
				var ve *schedule.ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("expected ValidationError, got %v", err)
				}
			})
		}
	})

	t.Run("group names", func(t *testing.T) {
		for i, want := range map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB"} {
			if got := groupName(i); got != want {
				t.Errorf("groupName(%d) = %q, want %q", i, got, want)
			}
		}
	})
}

func TestTop4Playoffs(t *testing.T) {
	top4 := []string{"A", "B", "C", "D"}
	friday := date(2026, 1, 9)

	playoffInput := func(rules config.Rules) Input {
		in := testInput(teamNames(6), date(2025, 12, 1), friday)
		in.Rules = rules
		return in
	}

	t.Run("Sunday final", func(t *testing.T) {
		out, err := Top4Playoffs(top4, friday, playoffInput(config.DefaultRules()))
		if err != nil {
			t.Fatalf("Top4Playoffs() error: %v", err)
		}
		want := []struct {
			matchType string
			date      time.Time
			t1, t2    string
		}{
			{"Qualifier 1", date(2026, 1, 12), "A", "B"},
			{"Eliminator", date(2026, 1, 15), "C", "D"},
			{"Qualifier 2", date(2026, 1, 18), "Loser(Q1)", "Winner(Elim.)"},
			{"Final", date(2026, 1, 25), "Winner(Q1)", "Winner(Q2)"},
		}
		if len(out.Fixtures) != len(want) {
			t.Fatalf("fixtures = %d, want 4", len(out.Fixtures))
		}
		for i, w := range want {
			f := out.Fixtures[i]
			if f.MatchType != w.matchType || !f.Date.Equal(w.date) ||
				f.Team1.Name() != w.t1 || f.Team2.Name() != w.t2 {
				t.Errorf("fixture %d = %s %s %s vs %s", i, f.MatchType, f.Date.Format("2006-01-02"), f.Team1, f.Team2)
			}
			if f.MatchNumber != i+1 || f.Stage != "Playoffs" {
				t.Errorf("fixture %d: number %d stage %q", i, f.MatchNumber, f.Stage)
			}
		}
		if out.Fixtures[3].Date.Weekday() != time.Sunday {
			t.Error("final should be on a Sunday")
		}
		if len(out.Notices) != 0 {
			t.Errorf("unexpected notices: %v", out.Notices)
		}
		if !out.LastDate.Equal(date(2026, 1, 25)) {
			t.Errorf("LastDate = %s", out.LastDate.Format("2006-01-02"))
		}
	})

	t.Run("final falls back when the Sunday is closed", func(t *testing.T) {
		rules := config.DefaultRules()
		rules.WeekendMatchesLimit = 0
		out, err := Top4Playoffs(top4, friday, playoffInput(rules))
		if err != nil {
			t.Fatalf("Top4Playoffs() error: %v", err)
		}
		q2, final := out.Fixtures[2], out.Fixtures[3]
		if !q2.Date.Equal(date(2026, 1, 19)) {
			t.Errorf("Q2 = %s, want 2026-01-19", q2.Date.Format("2006-01-02"))
		}
		if !final.Date.Equal(date(2026, 1, 26)) {
			t.Errorf("Final = %s, want 2026-01-26", final.Date.Format("2006-01-02"))
		}
		if len(out.Notices) != 1 || out.Notices[0].Severity != schedule.SeverityWarning ||
			!strings.Contains(out.Notices[0].Message, "2026-01-25") {
			t.Errorf("notices = %v", out.Notices)
		}
	})

	t.Run("nothing before the start gap", func(t *testing.T) {
		rules := config.DefaultRules()
		rules.MinRestDays = 0
		out, err := Top4Playoffs(top4, friday, playoffInput(rules))
		if err != nil {
			t.Fatalf("Top4Playoffs() error: %v", err)
		}
		for _, f := range out.Fixtures {
			if f.Date.Before(friday.AddDate(0, 0, rules.PlayoffStartGapDays)) {
				t.Errorf("%s on %s is before the start gap", f.MatchType, f.Date.Format("2006-01-02"))
			}
		}
	})

	t.Run("not four teams is a no-op", func(t *testing.T) {
		out, err := Top4Playoffs([]string{"A", "B"}, friday, playoffInput(config.DefaultRules()))
		if err != nil || len(out.Fixtures) != 0 {
			t.Errorf("got %v, %v", out, err)
		}
	})

	t.Run("no window for the final", func(t *testing.T) {
		rules := config.DefaultRules()
		rules.PlayoffWindowDays = 7
		_, err := Top4Playoffs(top4, friday, playoffInput(rules))
		var ue *schedule.UnschedulableError
		if !errors.As(err, &ue) {
			t.Errorf("expected UnschedulableError, got %v", err)
		}
	})
}
