package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for dates (ISO calendar date).
const DateLayout = "2006-01-02"

// weekdays maps the three-letter day codes used on the wire to time.Weekday.
// Weekend codes are intentionally absent; sessions run Monday through Friday.
var weekdays = map[string]time.Weekday{
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
}

// DayCode returns the uppercase three-letter weekday code for an ISO date,
// or "" when the date does not parse.
func DayCode(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return strings.ToUpper(t.Format("Mon"))
}

// NextDateForWeekday computes the nearest calendar date (0-6 days ahead of
// from, never behind) that falls on the given day code. ok is false for
// unknown codes.
func NextDateForWeekday(day string, from time.Time) (date string, ok bool) {
	target, known := weekdays[strings.ToUpper(day)]
	if !known {
		return "", false
	}
	ahead := (int(target) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, ahead).Format(DateLayout), true
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. HH:MM strings compare correctly as strings.
func Overlaps(s1, e1, s2, e2 string) bool {
	return s1 < e2 && s2 < e1
}

// AddOneHour returns the HH:MM time one hour after t, wrapping past midnight.
// Used for the default duration of virtual waitlist slots.
func AddOneHour(t string) string {
	var h, m int
	if _, err := fmt.Sscanf(t, "%d:%d", &h, &m); err != nil {
		return t
	}
	h = (h + 1) % 24
	return fmt.Sprintf("%02d:%02d", h, m)
}

// SlotStart parses a slot's date and start time into a wall-clock instant in
// loc. Used to refuse completing future slots.
func SlotStart(date, startTime string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" 15:04", date+" "+startTime, loc)
}
