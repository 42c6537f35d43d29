// evtship/agent/internal/eventlog/query.go

package eventlog

import "strings"

// DefaultLogfiles is the channel set watched when the configuration
// names none.
var DefaultLogfiles = []string{"Application", "Security", "System"}

// BuildNotificationQuery assembles the WQL notification query for new
// Win32_NTLogEvent instances in the given logfiles. Each name appears
// verbatim exactly once, OR-combined in configuration order. An empty
// slice falls back to DefaultLogfiles.
func BuildNotificationQuery(logfiles []string) string {
	if len(logfiles) == 0 {
		logfiles = DefaultLogfiles
	}

	var b strings.Builder
	b.WriteString("SELECT * FROM __InstanceCreationEvent WHERE TargetInstance ISA 'Win32_NTLogEvent' AND (")
	for i, name := range logfiles {
		if i > 0 {
			b.WriteString(" OR ")
		}
		b.WriteString("TargetInstance.Logfile = '")
		b.WriteString(escapeWQL(name))
		b.WriteString("'")
	}
	b.WriteString(")")
	return b.String()
}

// escapeWQL escapes a string literal for embedding in single quotes.
// Backslashes must be doubled before quotes are escaped.
func escapeWQL(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return s
}
