// evtship/agent/internal/eventlog/timestamp.go

package eventlog

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// WMI datetime wire format: YYYYMMDDhhmmss.ffffff±UUU. The trailing
// field is the UTC offset in minutes, not hours:minutes, so +060 means
// one hour east of UTC. This layout is an external contract and must
// be preserved exactly.
var wmiTimeRe = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})(\d{2})(\d{2})(\d{2})\.\d{6}([+-])(\d{3})$`)

// ParseWMITimestamp converts a WMI datetime string into an absolute
// instant plus its signed UTC offset in minutes. Fractional seconds
// are discarded. A zero offset yields UTC; otherwise the instant
// carries a fixed zone named sign+hhmm so formatting keeps the source
// offset visible.
func ParseWMITimestamp(s string) (time.Time, int, error) {
	m := wmiTimeRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, 0, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	sec, _ := strconv.Atoi(m[6])

	offset, _ := strconv.Atoi(m[8])
	if m[7] == "-" {
		offset = -offset
	}

	loc := time.UTC
	if offset != 0 {
		mag := offset
		if mag < 0 {
			mag = -mag
		}
		name := fmt.Sprintf("%s%02d%02d", m[7], mag/60, mag%60)
		loc = time.FixedZone(name, offset*60)
	}

	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc)

	// time.Date normalizes out-of-range components (month 13 becomes
	// January); the source system never emits those, so treat them as
	// malformed rather than silently shifting the instant.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != sec {
		return time.Time{}, 0, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}

	return t, offset, nil
}
