package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayCode(t *testing.T) {
	assert.Equal(t, "MON", DayCode("2026-01-05"))
	assert.Equal(t, "FRI", DayCode("2026-01-09"))
	assert.Equal(t, "SUN", DayCode("2026-01-04"))
	assert.Equal(t, "", DayCode("not-a-date"))
}

func TestNextDateForWeekday(t *testing.T) {
	monday := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	date, ok := NextDateForWeekday("MON", monday)
	require.True(t, ok)
	assert.Equal(t, "2026-01-05", date) // same day, never next week

	date, ok = NextDateForWeekday("wed", monday)
	require.True(t, ok)
	assert.Equal(t, "2026-01-07", date)

	// From a Friday, MON wraps into the following week.
	friday := time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC)
	date, ok = NextDateForWeekday("MON", friday)
	require.True(t, ok)
	assert.Equal(t, "2026-01-12", date)

	_, ok = NextDateForWeekday("SAT", monday)
	assert.False(t, ok)
	_, ok = NextDateForWeekday("", monday)
	assert.False(t, ok)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{"identical", "10:00", "11:00", "10:00", "11:00", true},
		{"partial", "10:00", "11:00", "10:30", "11:30", true},
		{"containing", "09:00", "12:00", "10:00", "11:00", true},
		{"touching end to start", "10:00", "11:00", "11:00", "12:00", false},
		{"touching start to end", "11:00", "12:00", "10:00", "11:00", false},
		{"disjoint", "09:00", "10:00", "14:00", "15:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			assert.Equal(t, tt.want, Overlaps(tt.s2, tt.e2, tt.s1, tt.e1))
		})
	}
}

func TestAddOneHour(t *testing.T) {
	assert.Equal(t, "10:00", AddOneHour("09:00"))
	assert.Equal(t, "00:30", AddOneHour("23:30"))
	assert.Equal(t, "garbage", AddOneHour("garbage"))
}

func TestSlotStart(t *testing.T) {
	start, err := SlotStart("2026-01-07", "14:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 7, 14, 30, 0, 0, time.UTC), start)

	_, err = SlotStart("2026-01-07", "bad", time.UTC)
	assert.Error(t, err)
}
