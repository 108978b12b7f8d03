package validity

import "time"

// AddMonths adds n calendar months to t, keeping the time of day. When the
// target month is shorter than t's day, the result is clamped to the last
// day of the target month (Jan 31 + 1 month = Feb 28, or Feb 29 in leap
// years).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	ns, loc := t.Nanosecond(), t.Location()

	naive := time.Date(y, m+time.Month(n), d, hh, mm, ss, ns, loc)
	if naive.Day() != d {
		// Overflowed into the following month: day 0 of it is the target's last day.
		return time.Date(naive.Year(), naive.Month(), 0, hh, mm, ss, ns, loc)
	}
	return naive
}

// truncateDay drops the time of day in t's location.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
