package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseTeamVenues reads newline-separated "Team Name, Venue Name" lines.
// Blank lines are skipped and only the first comma separates team from venue,
// so venue names may themselves contain commas.
func ParseTeamVenues(r io.Reader) ([]Team, error) {
	var teams []Team
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		name, venue, ok := strings.Cut(line, ",")
		name = strings.TrimSpace(name)
		venue = strings.TrimSpace(venue)
		if !ok || name == "" || venue == "" {
			return nil, fmt.Errorf("invalid format on line %d: %q; use 'Team Name, Venue Name'", lineNum, line)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate team name %q on line %d", name, lineNum)
		}
		seen[name] = true
		teams = append(teams, Team{Name: name, Venue: venue})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading teams: %w", err)
	}

	if len(teams) == 0 {
		return nil, fmt.Errorf("no valid team/venue pairs entered")
	}
	if len(teams) < 2 {
		return nil, fmt.Errorf("at least two teams are required")
	}
	return teams, nil
}
