// Package streak counts consecutive calendar days with journal activity.
package streak

import (
	"sort"
	"time"
)

type Result struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// Day truncates t to its calendar day in loc. The returned value is midnight UTC
// of that date so day arithmetic is not affected by DST shifts.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Compute returns the current and longest streaks for the given timestamps.
// The current streak counts back from today, or from yesterday when today has
// no entry yet; older gaps reset it to zero.
func Compute(timestamps []time.Time, now time.Time, loc *time.Location) Result {
	if len(timestamps) == 0 {
		return Result{}
	}
	set := make(map[time.Time]struct{}, len(timestamps))
	for _, ts := range timestamps {
		set[Day(ts, loc)] = struct{}{}
	}
	days := make([]time.Time, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	return Result{
		Current: current(set, Day(now, loc)),
		Longest: longest(days),
	}
}

func current(set map[time.Time]struct{}, today time.Time) int {
	cursor := today
	if _, ok := set[cursor]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
		if _, ok := set[cursor]; !ok {
			return 0
		}
	}
	n := 0
	for {
		if _, ok := set[cursor]; !ok {
			return n
		}
		n++
		cursor = cursor.AddDate(0, 0, -1)
	}
}

func longest(sorted []time.Time) int {
	best, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Sub(sorted[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}
