package plan

import (
	"time"
)

// DueDate computes when the installment with the given 1-based sequence falls
// due, relative to the anchor date. With a down payment the first installment
// is due immediately and the rest start one month out; without one the first
// installment is due a month after the anchor.
func DueDate(sequence int, hasDownPayment bool, anchor time.Time) time.Time {
	if hasDownPayment && sequence == 1 {
		return anchor
	}

	months := sequence
	if hasDownPayment {
		months = sequence - 1
	}

	return addMonths(anchor, months)
}

// addMonths advances t by the given number of calendar months, clamping the
// day of month to the last valid day of the target month (Jan 31 + 1 month is
// Feb 28/29, not Mar 2/3).
func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	target := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := lastDayOfMonth(target.Year(), target.Month()); day > last {
		day = last
	}

	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	// Day zero of the following month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
