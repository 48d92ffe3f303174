package recurrence

import "time"

// Epoch is the due date reported for a recurring chore that has never been
// completed: it is always already due.
var Epoch = time.Unix(0, 0).UTC()

// DueDate returns when a chore with rule r is next due given its most recent
// completion. It returns nil when the chore will never be due again.
func DueDate(r Recurrence, last *time.Time) *time.Time {
	if last == nil {
		if once, ok := r.(Once); ok {
			at := once.At
			return &at
		}
		epoch := Epoch
		return &epoch
	}

	var due time.Time
	switch r := r.(type) {
	case Daily:
		// Increment the calendar day and then set the clock directly; adding
		// 24h would drift by an hour across a DST transition.
		due = r.At.On(last.AddDate(0, 0, 1))
	case Weekly:
		due = nextWeekday(*last, r.Day)
	case Monthly:
		due = time.Date(last.Year(), last.Month()+1, r.Day, r.At.Hour, r.At.Minute, 0, 0, last.Location())
	case Yearly:
		due = time.Date(last.Year()+1, r.Month, r.Day, r.At.Hour, r.At.Minute, 0, 0, last.Location())
	default:
		// Once, after any completion.
		return nil
	}
	return &due
}

// IsOverdue reports whether now is past the due date.
func IsOverdue(r Recurrence, last *time.Time, now time.Time) bool {
	due := DueDate(r, last)
	if due == nil {
		return false
	}
	return now.After(*due)
}

// nextWeekday walks forward a day at a time until the next week has started
// (Sunday), then on to the target weekday. The result is midnight and always
// lands in a later week than t.
func nextWeekday(t time.Time, day time.Weekday) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	for {
		d = d.AddDate(0, 0, 1)
		if d.Weekday() == time.Sunday {
			break
		}
	}
	for d.Weekday() != day {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
