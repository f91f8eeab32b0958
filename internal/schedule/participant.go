package schedule

// Participant is one side of a match: either a concrete team from the
// roster or a placeholder such as "Winner R1M3" or "Rank 2 Group B" that
// stands in for a team not yet decided. Placeholders are never subject to
// rest-day tracking.
type Participant struct {
	name        string
	placeholder bool
}

// Team returns a concrete roster team.
func Team(name string) Participant {
	return Participant{name: name}
}

// Placeholder returns an unresolved bracket or group participant.
func Placeholder(description string) Participant {
	return Participant{name: description, placeholder: true}
}

// Teams wraps roster names as concrete participants.
func Teams(names []string) []Participant {
	ps := make([]Participant, len(names))
	for i, n := range names {
		ps[i] = Team(n)
	}
	return ps
}

func (p Participant) Name() string       { return p.name }
func (p Participant) IsPlaceholder() bool { return p.placeholder }
func (p Participant) String() string      { return p.name }

// Pair is an ordered matchup. Under the home venue rule Team1 hosts.
type Pair struct {
	Team1 Participant
	Team2 Participant
}

func (p Pair) String() string {
	return p.Team1.name + " vs " + p.Team2.name
}
