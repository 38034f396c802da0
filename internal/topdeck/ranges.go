package topdeck

import "time"

// WeekRange is a half-open [Start, End) window in unix seconds.
type WeekRange struct {
	Start int64
	End   int64
	Label string
}

// WeeklyRanges splits [start, end) into contiguous seven-day windows. The
// final window is clipped at end. Returns nil when start is not before end.
func WeeklyRanges(start, end time.Time) []WeekRange {
	const week = 7 * 24 * time.Hour

	var ranges []WeekRange
	for current := start; current.Before(end); {
		weekEnd := current.Add(week)
		if weekEnd.After(end) {
			weekEnd = end
		}
		ranges = append(ranges, WeekRange{
			Start: current.Unix(),
			End:   weekEnd.Unix(),
			Label: current.UTC().Format("2006-01-02") + " to " + weekEnd.UTC().Format("2006-01-02"),
		})
		current = weekEnd
	}
	return ranges
}

// WeekStart returns the UTC Monday 00:00:00 of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := int(t.Weekday())
	diff := day - 1
	if day == 0 { // Sunday belongs to the week starting the previous Monday
		diff = 6
	}
	return time.Date(t.Year(), t.Month(), t.Day()-diff, 0, 0, 0, 0, time.UTC)
}
