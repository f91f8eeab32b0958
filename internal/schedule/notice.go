package schedule

import "fmt"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Notice is an advisory message attached to a generation result.
type Notice struct {
	Severity Severity
	Message  string
}

func (n Notice) String() string {
	return string(n.Severity) + ": " + n.Message
}

func Infof(format string, args ...any) Notice {
	return Notice{Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)}
}

func Successf(format string, args ...any) Notice {
	return Notice{Severity: SeveritySuccess, Message: fmt.Sprintf(format, args...)}
}

func Warnf(format string, args ...any) Notice {
	return Notice{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}
