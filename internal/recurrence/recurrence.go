package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Recurrence is the rule describing how often a chore becomes due again.
// The concrete types are Daily, Weekly, Monthly, Yearly and Once.
type Recurrence interface {
	// String serializes the rule to its storage form, e.g. "FREQ=DAILY;TIME=09:00".
	String() string
	// Describe returns a human-readable description of the rule.
	Describe() string

	isRecurrence()
}

// Daily is due every day at a fixed time of day.
type Daily struct {
	At Clock
}

// Weekly is due at midnight on a weekday.
type Weekly struct {
	Day time.Weekday
}

// Monthly is due on a day of the month at a fixed time of day.
type Monthly struct {
	Day int
	At  Clock
}

// Yearly is due once a year on a month/day at a fixed time of day.
type Yearly struct {
	Month time.Month
	Day   int
	At    Clock
}

// Once is a one-time chore due at a fixed instant.
type Once struct {
	At time.Time
}

func (Daily) isRecurrence()   {}
func (Weekly) isRecurrence()  {}
func (Monthly) isRecurrence() {}
func (Yearly) isRecurrence()  {}
func (Once) isRecurrence()    {}

var dayNames = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

var dayAbbrev = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

func (r Daily) String() string {
	return "FREQ=DAILY;TIME=" + r.At.String()
}

func (r Weekly) String() string {
	return "FREQ=WEEKLY;BYDAY=" + dayAbbrev[r.Day]
}

func (r Monthly) String() string {
	return fmt.Sprintf("FREQ=MONTHLY;BYMONTHDAY=%d;TIME=%s", r.Day, r.At)
}

func (r Yearly) String() string {
	return fmt.Sprintf("FREQ=YEARLY;BYMONTH=%d;BYMONTHDAY=%d;TIME=%s", int(r.Month), r.Day, r.At)
}

func (r Once) String() string {
	return "FREQ=ONCE;AT=" + r.At.Format(time.RFC3339)
}

func (r Daily) Describe() string {
	return "daily @ " + r.At.Kitchen()
}

func (r Weekly) Describe() string {
	return "weekly on " + r.Day.String()
}

func (r Monthly) Describe() string {
	return fmt.Sprintf("monthly on the %s @ %s", ordinal(r.Day), r.At.Kitchen())
}

func (r Yearly) Describe() string {
	return fmt.Sprintf("yearly on %s %d @ %s", r.Month, r.Day, r.At.Kitchen())
}

func (r Once) Describe() string {
	return "once on " + r.At.Format("Mon Jan 2 2006") + " @ " + ClockOf(r.At).Kitchen()
}

// Parse parses the storage form produced by String, e.g.
// "FREQ=MONTHLY;BYMONTHDAY=5;TIME=09:00".
func Parse(rule string) (Recurrence, error) {
	if rule == "" {
		return nil, fmt.Errorf("empty rule")
	}

	var (
		freq     string
		at       Clock
		weekday  time.Weekday
		hasDay   bool
		monthDay int
		month    int
		instant  time.Time
		hasAt    bool
	)

	parts := strings.Split(rule, ";")
	for _, part := range parts {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid rule part: %q", part)
		}
		key, val := kv[0], kv[1]

		switch key {
		case "FREQ":
			freq = val

		case "TIME":
			c, err := ParseClock(val)
			if err != nil {
				return nil, fmt.Errorf("invalid TIME: %q", val)
			}
			at = c

		case "BYDAY":
			wd, ok := dayNames[strings.TrimSpace(val)]
			if !ok {
				return nil, fmt.Errorf("unknown day: %q", val)
			}
			weekday = wd
			hasDay = true

		case "BYMONTHDAY":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 || n > 31 {
				return nil, fmt.Errorf("invalid BYMONTHDAY: %q", val)
			}
			monthDay = n

		case "BYMONTH":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 || n > 12 {
				return nil, fmt.Errorf("invalid BYMONTH: %q", val)
			}
			month = n

		case "AT":
			t, err := time.Parse(time.RFC3339, val)
			if err != nil {
				return nil, fmt.Errorf("invalid AT: %q", val)
			}
			instant = t
			hasAt = true

		default:
			return nil, fmt.Errorf("unsupported rule key: %q", key)
		}
	}

	switch freq {
	case "":
		return nil, fmt.Errorf("FREQ is required")
	case "DAILY":
		return Daily{At: at}, nil
	case "WEEKLY":
		if !hasDay {
			return nil, fmt.Errorf("BYDAY is required for WEEKLY")
		}
		return Weekly{Day: weekday}, nil
	case "MONTHLY":
		if monthDay == 0 {
			return nil, fmt.Errorf("BYMONTHDAY is required for MONTHLY")
		}
		return Monthly{Day: monthDay, At: at}, nil
	case "YEARLY":
		if month == 0 || monthDay == 0 {
			return nil, fmt.Errorf("BYMONTH and BYMONTHDAY are required for YEARLY")
		}
		return Yearly{Month: time.Month(month), Day: monthDay, At: at}, nil
	case "ONCE":
		if !hasAt {
			return nil, fmt.Errorf("AT is required for ONCE")
		}
		return Once{At: instant}, nil
	}
	return nil, fmt.Errorf("unknown frequency: %q", freq)
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}
