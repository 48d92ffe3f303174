package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a wall-clock time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ClockOf returns the time of day of t in t's location.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

// ParseClock accepts 24-hour ("21:30", "9:05") and 12-hour ("9:00 AM", "9pm")
// forms as well as "noon" and "midnight".
func ParseClock(s string) (Clock, error) {
	raw := s
	s = strings.ToLower(strings.Join(strings.Fields(s), ""))
	switch s {
	case "noon":
		return Clock{Hour: 12}, nil
	case "midnight":
		return Clock{}, nil
	}

	var meridiem string
	if strings.HasSuffix(s, "am") || strings.HasSuffix(s, "pm") {
		meridiem = s[len(s)-2:]
		s = s[:len(s)-2]
	}

	hourText, minuteText := s, "0"
	if h, m, ok := strings.Cut(s, ":"); ok {
		hourText, minuteText = h, m
	}

	hour, err := strconv.Atoi(hourText)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time %q", raw)
	}
	minute, err := strconv.Atoi(minuteText)
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("invalid time %q", raw)
	}

	if meridiem != "" {
		if hour < 1 || hour > 12 {
			return Clock{}, fmt.Errorf("invalid time %q", raw)
		}
		hour %= 12
		if meridiem == "pm" {
			hour += 12
		}
	} else if hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("invalid time %q", raw)
	}

	return Clock{Hour: hour, Minute: minute}, nil
}

// On returns the instant on t's calendar day, in t's location, at this time of day.
func (c Clock) On(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), c.Hour, c.Minute, 0, 0, t.Location())
}

// Minutes returns the number of minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Before reports whether c is earlier in the day than o.
func (c Clock) Before(o Clock) bool {
	return c.Minutes() < o.Minutes()
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Kitchen renders the clock as "9:00 AM".
func (c Clock) Kitchen() string {
	return time.Date(2000, 1, 1, c.Hour, c.Minute, 0, 0, time.UTC).Format("3:04 PM")
}

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
