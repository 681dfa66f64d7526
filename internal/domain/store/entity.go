package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultTimezone = "America/Chicago"

type PollObservation struct {
	StoreID      uuid.UUID
	TimestampUTC time.Time
	Active       bool
}

// BusinessHourRule is one open/close pair in the store's local time.
// DayOfWeek is 0 for Monday through 6 for Sunday.
type BusinessHourRule struct {
	StoreID    uuid.UUID
	DayOfWeek  int
	StartLocal TimeOfDay
	EndLocal   TimeOfDay
}

type StoreTimezone struct {
	StoreID  uuid.UUID
	Timezone string
}

type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	vals := [3]int{}
	limits := [3]int{23, 59, 59}
	for i, p := range parts {
		// fractional seconds are dropped
		if i == 2 {
			p, _, _ = strings.Cut(p, ".")
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > limits[i] {
			return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
		}
		vals[i] = v
	}
	return TimeOfDay{Hour: vals[0], Minute: vals[1], Second: vals[2]}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.seconds() < o.seconds()
}

func (t TimeOfDay) seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// DayOfWeek maps a time to the 0=Monday index used by business hour rules.
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func ValidDayOfWeek(d int) bool {
	return d >= 0 && d <= 6
}
