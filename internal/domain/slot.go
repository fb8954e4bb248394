package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SessionTimes is the fixed catalog of bookable hours for one session day.
// A session runs from the evening into the small hours of the next
// calendar date.
var SessionTimes = []string{"19:00", "20:00", "21:00", "22:00", "23:00", "00:00", "01:00", "02:00"}

const slotDateLayout = "2006-01-02"

// MakeSlotID builds the canonical slot identifier "YYYY-MM-DD-HH:MM" for a
// session date and a wall-clock time. Times before 05:00 belong to the next
// calendar date but are still part of the session that started the evening
// of sessionDate, so the stored date is shifted forward by one day.
func MakeSlotID(sessionDate time.Time, hhmm string) (string, error) {
	hour, _, err := parseClock(hhmm)
	if err != nil {
		return "", err
	}
	d := sessionDate
	if hour < 5 {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format(slotDateLayout) + "-" + hhmm, nil
}

// ParseSlotID converts a slot identifier back into a concrete local
// date-time. The stored date already reflects the session rollover, so no
// re-adjustment happens here.
func ParseSlotID(id string) (time.Time, error) {
	parts := strings.SplitN(id, "-", 4)
	if len(parts) != 4 {
		return time.Time{}, fmt.Errorf("malformed slot id %q", id)
	}
	date, err := time.ParseInLocation(slotDateLayout, strings.Join(parts[:3], "-"), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed slot id %q: %w", id, err)
	}
	hour, minute, err := parseClock(parts[3])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed slot id %q: %w", id, err)
	}
	return date.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), nil
}

// ValidSlotID reports whether id parses as a slot identifier.
func ValidSlotID(id string) bool {
	_, err := ParseSlotID(id)
	return err == nil
}

// SortSlotIDs sorts identifiers lexicographically in place and drops
// duplicates. For the zero-padded "YYYY-MM-DD-HH:MM" format lexicographic
// order is chronological order, which the cancellation window check relies
// on: after sorting, index 0 is the earliest slot.
func SortSlotIDs(ids []string) []string {
	sort.Strings(ids)
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			out = append(out, id)
		}
	}
	return out
}

func parseClock(hhmm string) (hour, minute int, err error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("malformed time %q", hhmm)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed time %q", hhmm)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed time %q", hhmm)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q out of range", hhmm)
	}
	return hour, minute, nil
}
