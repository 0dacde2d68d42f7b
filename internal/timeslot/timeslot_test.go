package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock(h, m int) time.Time {
	return time.Date(0, 1, 1, h, m, 0, 0, time.UTC)
}

func TestParseAndFormat(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", FormatDate(d))

	c, err := ParseClock("18:30")
	require.NoError(t, err)
	assert.Equal(t, "18:30", FormatClock(c))

	_, err = ParseDate("15/03/2026")
	assert.Error(t, err)
}

func TestCombine(t *testing.T) {
	d, _ := ParseDate("2026-03-15")
	c, _ := ParseClock("18:30")

	combined := Combine(d, c)
	assert.Equal(t, 2026, combined.Year())
	assert.Equal(t, time.March, combined.Month())
	assert.Equal(t, 15, combined.Day())
	assert.Equal(t, 18, combined.Hour())
	assert.Equal(t, 30, combined.Minute())
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		expected       bool
	}{
		{"identical", clock(10, 0), clock(11, 0), clock(10, 0), clock(11, 0), true},
		{"partial overlap", clock(10, 0), clock(12, 0), clock(11, 0), clock(13, 0), true},
		{"contained", clock(10, 0), clock(14, 0), clock(11, 0), clock(12, 0), true},
		{"touching does not overlap", clock(10, 0), clock(11, 0), clock(11, 0), clock(12, 0), false},
		{"touching reversed", clock(11, 0), clock(12, 0), clock(10, 0), clock(11, 0), false},
		{"disjoint", clock(8, 0), clock(9, 0), clock(12, 0), clock(13, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
		})
	}
}

func TestOverlaps_IgnoresReferenceDate(t *testing.T) {
	// A TIME column scanned by the driver carries a different reference date
	// than a freshly parsed clock; the predicate must still line up.
	fromDB := time.Date(1, 1, 1, 10, 0, 0, 0, time.UTC)
	fromParse := clock(10, 30)

	assert.True(t, Overlaps(fromDB, fromDB.Add(2*time.Hour), fromParse, clock(11, 30)))
}

func TestClockMinutes(t *testing.T) {
	assert.Equal(t, 630, ClockMinutes(clock(10, 30)))
	assert.Equal(t, 0, ClockMinutes(clock(0, 0)))
}
