package budget

import "time"

// PeriodWindow derives the [start, end) window containing now for the
// given period. Weeks are ISO weeks starting Monday, months and years are
// calendar months and years. All boundaries are midnight UTC.
func PeriodWindow(period string, now time.Time) (time.Time, time.Time) {
	now = now.UTC()

	switch period {
	case PeriodWeekly:
		// time.Weekday puts Sunday at 0; shift so Monday is day 0.
		offset := (int(now.Weekday()) + 6) % 7
		start := time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 0, 7)
	case PeriodYearly:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	default:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
}
