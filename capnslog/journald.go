//go:build linux

package capnslog

import (
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
)

// JournaldFormatter writes log entries to the systemd journal via
// sd_journal_send, preserving package name and severity as journal fields
// instead of formatting them into the message text.
type JournaldFormatter struct{}

// NewJournaldFormatter creates a Formatter backed by the local systemd
// journal. It is only buildable on linux, where the journal exists.
func NewJournaldFormatter() *JournaldFormatter {
	return &JournaldFormatter{}
}

func (j *JournaldFormatter) Format(pkg string, level LogLevel, _ int, entries ...LogEntry) {
	var msg strings.Builder
	for i, e := range entries {
		if i > 0 {
			msg.WriteByte(' ')
		}
		msg.WriteString(e.LogString())
	}
	journal.Send(msg.String(), levelToPriority(level), map[string]string{
		"SYSLOG_IDENTIFIER": pkg,
	})
}

func levelToPriority(l LogLevel) journal.Priority {
	switch l {
	case CRITICAL:
		return journal.PriCrit
	case ERROR:
		return journal.PriErr
	case WARNING:
		return journal.PriWarning
	case NOTICE:
		return journal.PriNotice
	case INFO:
		return journal.PriInfo
	default: // DEBUG, TRACE
		return journal.PriDebug
	}
}
