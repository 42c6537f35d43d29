// evtship/agent/internal/eventlog/query_test.go

package eventlog

import (
	"strings"
	"testing"
)

func TestBuildNotificationQuerySingle(t *testing.T) {
	got := BuildNotificationQuery([]string{"Application"})
	want := "SELECT * FROM __InstanceCreationEvent WHERE TargetInstance ISA 'Win32_NTLogEvent' AND (TargetInstance.Logfile = 'Application')"
	if got != want {
		t.Errorf("query = %q, want %q", got, want)
	}
}

func TestBuildNotificationQueryMultiple(t *testing.T) {
	logfiles := []string{"Application", "Security", "System", "Directory Service"}
	got := BuildNotificationQuery(logfiles)

	for _, name := range logfiles {
		clause := "TargetInstance.Logfile = '" + name + "'"
		if c := strings.Count(got, clause); c != 1 {
			t.Errorf("clause for %q appears %d times, want 1", name, c)
		}
	}
	if c := strings.Count(got, " OR "); c != len(logfiles)-1 {
		t.Errorf("OR count = %d, want %d", c, len(logfiles)-1)
	}
	if !strings.HasSuffix(got, ")") {
		t.Errorf("query not parenthesized: %q", got)
	}
}

func TestBuildNotificationQueryDefaults(t *testing.T) {
	got := BuildNotificationQuery(nil)
	for _, name := range []string{"Application", "Security", "System"} {
		if !strings.Contains(got, "TargetInstance.Logfile = '"+name+"'") {
			t.Errorf("default query missing %q: %s", name, got)
		}
	}
	if c := strings.Count(got, " OR "); c != 2 {
		t.Errorf("OR count = %d, want 2", c)
	}
}

func TestBuildNotificationQueryEscaping(t *testing.T) {
	got := BuildNotificationQuery([]string{`O'Brien\Log`})
	if !strings.Contains(got, `TargetInstance.Logfile = 'O\'Brien\\Log'`) {
		t.Errorf("literal not escaped: %s", got)
	}
}
