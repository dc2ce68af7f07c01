// Package age converts a birth date and an explicit "now" into whole weeks
// and months. Results are never negative: a now before the birth date
// (clock skew or bad input) yields zero.
package age

import "time"

// InWeeks returns floor(elapsed whole days / 7)
func InWeeks(birth, now time.Time) int {
	return InDays(birth, now) / 7
}

// InDays returns the number of whole calendar days between birth and now,
// measured in birth's location.
func InDays(birth, now time.Time) int {
	loc := birth.Location()
	b := dateOnly(birth, loc)
	n := dateOnly(now, loc)
	if n.Before(b) {
		return 0
	}
	// Dates are at UTC midnight so every day is exactly 24h.
	return int(n.Sub(b).Hours() / 24)
}

// InMonths returns the calendar month difference, minus one while the
// day-of-month has not been reached yet.
func InMonths(birth, now time.Time) int {
	now = now.In(birth.Location())
	if now.Before(birth) {
		return 0
	}
	by, bm, bd := birth.Date()
	ny, nm, nd := now.Date()

	months := (ny-by)*12 + int(nm-bm)
	if nd < bd && !lastDayOfMonth(now, bd) {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// AddMonths moves t forward by months, clamping the day to the end of a
// shorter target month: Dec 31 plus two months is the last day of February.
// It agrees with InMonths, which counts that day as two months old.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := m + time.Month(months)
	last := time.Date(y, target+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return time.Date(y, target, min(d, last), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// lastDayOfMonth treats the final day of a short month as reaching a
// later birth day-of-month (born Jan 31 is one month old on Feb 28).
func lastDayOfMonth(t time.Time, day int) bool {
	y, m, d := t.Date()
	last := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return d == last && day > last
}

func dateOnly(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
