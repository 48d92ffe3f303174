package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnrecognized is returned by ParseText for frequencies it cannot read.
var ErrUnrecognized = errors.New("unrecognized frequency")

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// filler words carry no meaning in a frequency ("every day", "on the 5th").
var filler = map[string]bool{
	"on":    true,
	"the":   true,
	"every": true,
	"of":    true,
}

// ParseText reads a user-entered frequency such as "daily @ 9:00 AM",
// "weekly on monday", "monthly on the 5th @ 18:00", "yearly on march 3",
// "once on 2026-10-20 @ 9am" or "tomorrow @ noon". Dates without a year and
// relative days are resolved against now, in now's location.
func ParseText(text string, now time.Time) (Recurrence, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.ReplaceAll(s, " at ", " @ ")

	body, clockText, hasClock := strings.Cut(s, "@")
	var at Clock
	if hasClock {
		c, err := ParseClock(clockText)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognized, err)
		}
		at = c
	}

	var words []string
	for _, w := range strings.Fields(strings.ReplaceAll(body, ",", " ")) {
		if !filler[w] {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnrecognized, text)
	}

	head, rest := words[0], words[1:]
	switch head {
	case "daily", "day", "everyday":
		return Daily{At: at}, nil

	case "weekly", "week":
		if len(rest) == 0 {
			return Weekly{Day: now.Weekday()}, nil
		}
		day, ok := parseWeekday(rest[0])
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrUnrecognized, rest[0])
		}
		return Weekly{Day: day}, nil

	case "monthly", "month":
		if len(rest) == 0 {
			return Monthly{Day: now.Day(), At: at}, nil
		}
		day, ok := parseOrdinal(rest[0])
		if !ok {
			return nil, fmt.Errorf("%w: unknown day of month %q", ErrUnrecognized, rest[0])
		}
		return Monthly{Day: day, At: at}, nil

	case "yearly", "annually", "year":
		if len(rest) == 0 {
			return Yearly{Month: now.Month(), Day: now.Day(), At: at}, nil
		}
		month, day, _, ok := parseMonthDay(rest)
		if !ok {
			return nil, fmt.Errorf("%w: unknown date %q", ErrUnrecognized, strings.Join(rest, " "))
		}
		return Yearly{Month: month, Day: day, At: at}, nil

	case "today":
		return Once{At: at.On(now)}, nil

	case "tomorrow":
		return Once{At: at.On(now.AddDate(0, 0, 1))}, nil

	case "once":
		if len(rest) == 0 {
			return nil, fmt.Errorf("%w: once needs a date", ErrUnrecognized)
		}
		return parseOnce(rest, at, now)
	}

	if day, ok := parseWeekday(head); ok && len(rest) == 0 {
		return Weekly{Day: day}, nil
	}
	return parseOnce(words, at, now)
}

func parseOnce(words []string, at Clock, now time.Time) (Recurrence, error) {
	switch words[0] {
	case "today":
		return Once{At: at.On(now)}, nil
	case "tomorrow":
		return Once{At: at.On(now.AddDate(0, 0, 1))}, nil
	}

	if len(words) == 1 {
		d, err := time.ParseInLocation("2006-01-02", words[0], now.Location())
		if err == nil {
			return Once{At: at.On(d)}, nil
		}
	}

	month, day, year, ok := parseMonthDay(words)
	if !ok {
		return nil, fmt.Errorf("%w: unknown date %q", ErrUnrecognized, strings.Join(words, " "))
	}
	if year == 0 {
		year = now.Year()
	}
	d := time.Date(year, month, day, at.Hour, at.Minute, 0, 0, now.Location())
	return Once{At: d}, nil
}

// parseMonthDay reads "march 3", "mar 3rd" or "march 3 2027". year is 0 when
// absent.
func parseMonthDay(words []string) (time.Month, int, int, bool) {
	if len(words) < 2 {
		return 0, 0, 0, false
	}
	month, ok := months[words[0]]
	if !ok {
		return 0, 0, 0, false
	}
	day, ok := parseOrdinal(words[1])
	if !ok {
		return 0, 0, 0, false
	}
	year := 0
	if len(words) > 2 {
		y, err := strconv.Atoi(words[2])
		if err != nil || y < 1970 {
			return 0, 0, 0, false
		}
		year = y
	}
	return month, day, year, true
}

func parseWeekday(w string) (time.Weekday, bool) {
	if d, ok := weekdays[w]; ok {
		return d, true
	}
	d, ok := weekdays[strings.TrimSuffix(w, "s")]
	return d, ok
}

func parseOrdinal(w string) (int, bool) {
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		w = strings.TrimSuffix(w, suffix)
	}
	n, err := strconv.Atoi(w)
	if err != nil || n < 1 || n > 31 {
		return 0, false
	}
	return n, true
}
