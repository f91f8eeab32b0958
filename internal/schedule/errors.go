package schedule

import "fmt"

// ValidationError reports malformed or insufficient input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// UnschedulableError reports a match that no remaining slot could host.
type UnschedulableError struct {
	Pair      Pair
	Stage     string
	Round     int
	FreeSlots int
}

func (e *UnschedulableError) Error() string {
	stage := e.Stage
	if e.Round > 0 {
		stage = fmt.Sprintf("%s, round %d", e.Stage, e.Round)
	}
	return fmt.Sprintf("could not schedule %s (stage: %s): constraints too tight, %d potential slots remain; try extending the dates",
		e.Pair, stage, e.FreeSlots)
}

// InternalError reports a state that should be structurally unreachable.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string { return "internal error: " + e.Msg }
