// evtship/agent/internal/eventlog/timestamp_test.go

package eventlog

import (
	"errors"
	"testing"
	"time"
)

func TestParseWMITimestamp(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantUTC    time.Time
		wantOffset int
		wantZone   string
	}{
		{
			name:       "positive one hour offset",
			in:         "20140115093000.000000+060",
			wantUTC:    time.Date(2014, 1, 15, 8, 30, 0, 0, time.UTC),
			wantOffset: 60,
			wantZone:   "+0100",
		},
		{
			name:       "negative zero offset is utc",
			in:         "20140115093000.000000-000",
			wantUTC:    time.Date(2014, 1, 15, 9, 30, 0, 0, time.UTC),
			wantOffset: 0,
			wantZone:   "+0000",
		},
		{
			name:       "positive zero offset is utc",
			in:         "20140115093000.000000+000",
			wantUTC:    time.Date(2014, 1, 15, 9, 30, 0, 0, time.UTC),
			wantOffset: 0,
			wantZone:   "+0000",
		},
		{
			name:       "half hour offset",
			in:         "20230610120000.123456+330",
			wantUTC:    time.Date(2023, 6, 10, 6, 30, 0, 0, time.UTC),
			wantOffset: 330,
			wantZone:   "+0530",
		},
		{
			name:       "negative offset",
			in:         "20230610120000.000000-480",
			wantUTC:    time.Date(2023, 6, 10, 20, 0, 0, 0, time.UTC),
			wantOffset: -480,
			wantZone:   "-0800",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, offset, err := ParseWMITimestamp(tt.in)
			if err != nil {
				t.Fatalf("ParseWMITimestamp(%q) error = %v", tt.in, err)
			}
			if offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", offset, tt.wantOffset)
			}
			if !got.Equal(tt.wantUTC) {
				t.Errorf("instant = %s, want %s", got.UTC(), tt.wantUTC)
			}
			if zone := got.Format("-0700"); zone != tt.wantZone {
				t.Errorf("zone = %s, want %s", zone, tt.wantZone)
			}
			if got.Nanosecond() != 0 {
				t.Errorf("fractional seconds survived: %d ns", got.Nanosecond())
			}
		})
	}
}

func TestParseWMITimestampMalformed(t *testing.T) {
	inputs := []string{
		"",
		"not a timestamp",
		"20140115093000+060",         // no fraction
		"20140115093000.000+060",     // short fraction
		"20140115093000.000000+06",   // short offset
		"20140115093000.000000*060",  // bad sign
		"20140115093000.000000+060x", // trailing junk
		"20141315093000.000000+060",  // month 13
		"20140132093000.000000+060",  // day 32
		"20140115253000.000000+060",  // hour 25
	}
	for _, in := range inputs {
		if _, _, err := ParseWMITimestamp(in); !errors.Is(err, ErrMalformedTimestamp) {
			t.Errorf("ParseWMITimestamp(%q) error = %v, want ErrMalformedTimestamp", in, err)
		}
	}
}
