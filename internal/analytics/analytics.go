// Package analytics reduces a user's journal entries into the overview, trends,
// calendar, stats and activity views. Every view is a pure function of the
// entries passed in; fetching them is the caller's job.
package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/limbo/zenjournal/internal/mood"
	"github.com/limbo/zenjournal/internal/streak"
	"github.com/limbo/zenjournal/pkg/entity"
)

const (
	DefaultWindowDays = 30
	MaxWindowDays     = 365
	dateLayout        = "2006-01-02"
)

// Distribution holds a count for every mood label, zeros included.
type Distribution map[mood.Label]int

func newDistribution() Distribution {
	d := make(Distribution, len(mood.All()))
	for _, l := range mood.All() {
		d[l] = 0
	}
	return d
}

// Dominant returns the label with the highest count. Labels are scanned in
// canonical order and only a strictly greater count replaces the current pick,
// so ties resolve to the earlier label and an empty distribution to neutral.
func (d Distribution) Dominant() mood.Label {
	best, bestCount := mood.Neutral, 0
	for _, l := range mood.All() {
		if d[l] > bestCount {
			best, bestCount = l, d[l]
		}
	}
	return best
}

type Aggregator struct {
	classifier *mood.Classifier
	loc        *time.Location
	now        func() time.Time
}

type Option func(*Aggregator)

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

func New(classifier *mood.Classifier, loc *time.Location, opts ...Option) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	a := &Aggregator{
		classifier: classifier,
		loc:        loc,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) Location() *time.Location {
	return a.loc
}

func (a *Aggregator) Classify(content string) mood.Label {
	return a.classifier.Classify(content)
}

// NormalizeDays maps a missing or out of range window to a usable one.
func NormalizeDays(days int) int {
	if days <= 0 {
		return DefaultWindowDays
	}
	if days > MaxWindowDays {
		return MaxWindowDays
	}
	return days
}

// Window is the range covering the last `days` calendar days, today included.
func (a *Aggregator) Window(days int) entity.DateRange {
	days = NormalizeDays(days)
	y, m, d := a.now().In(a.loc).Date()
	from := time.Date(y, m, d-(days-1), 0, 0, 0, 0, a.loc)
	return entity.DateRange{From: from}
}

// MonthRange returns the range of the given month. ok is false when month or
// year are out of range, in which case no filter should be applied.
func (a *Aggregator) MonthRange(month, year int) (entity.DateRange, bool) {
	if month < 1 || month > 12 || year < 1970 || year > 9999 {
		return entity.DateRange{}, false
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, a.loc)
	return entity.DateRange{From: from, To: from.AddDate(0, 1, 0)}, true
}

func (a *Aggregator) dayKey(t time.Time) string {
	return t.In(a.loc).Format(dateLayout)
}

// Distribution classifies every entry and counts labels.
func (a *Aggregator) Distribution(entries []*entity.Entry) Distribution {
	dist := newDistribution()
	for _, e := range entries {
		dist[a.classifier.Classify(e.Content)]++
	}
	return dist
}

func WordCount(content string) int {
	return len(strings.Fields(content))
}

type Overview struct {
	TotalEntries          int          `json:"total_entries"`
	MoodDistribution      Distribution `json:"mood_distribution"`
	CurrentStreak         int          `json:"current_streak"`
	LongestStreak         int          `json:"longest_streak"`
	AverageWords          int          `json:"average_words"`
	MostProductiveDay     int          `json:"most_productive_day"`
	MostProductiveDayName string       `json:"most_productive_day_name"`
	WeekdayCounts         [7]int       `json:"weekday_counts"`
}

func (a *Aggregator) Overview(entries []*entity.Entry) Overview {
	ov := Overview{
		TotalEntries:     len(entries),
		MoodDistribution: newDistribution(),
	}
	timestamps := make([]time.Time, 0, len(entries))
	words := 0
	for _, e := range entries {
		ov.MoodDistribution[a.classifier.Classify(e.Content)]++
		ov.WeekdayCounts[e.CreatedAt.In(a.loc).Weekday()]++
		words += WordCount(e.Content)
		timestamps = append(timestamps, e.CreatedAt)
	}
	st := streak.Compute(timestamps, a.now(), a.loc)
	ov.CurrentStreak, ov.LongestStreak = st.Current, st.Longest
	if len(entries) > 0 {
		ov.AverageWords = int(math.Round(float64(words) / float64(len(entries))))
	}
	best := 0
	for wd := 1; wd < len(ov.WeekdayCounts); wd++ {
		if ov.WeekdayCounts[wd] > ov.WeekdayCounts[best] {
			best = wd
		}
	}
	ov.MostProductiveDay = best
	ov.MostProductiveDayName = time.Weekday(best).String()
	return ov
}

type TrendBucket struct {
	Date  string       `json:"date"`
	Moods Distribution `json:"moods"`
	Total int          `json:"total"`
}

type Trends struct {
	Days    int           `json:"days"`
	Buckets []TrendBucket `json:"buckets"`
}

// Trends returns exactly `days` daily buckets, oldest first, ending today.
// Entries outside the window are ignored.
func (a *Aggregator) Trends(entries []*entity.Entry, days int) Trends {
	days = NormalizeDays(days)
	from := a.Window(days).From
	buckets := make([]TrendBucket, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		key := from.AddDate(0, 0, i).Format(dateLayout)
		buckets[i] = TrendBucket{Date: key, Moods: newDistribution()}
		index[key] = i
	}
	for _, e := range entries {
		i, ok := index[a.dayKey(e.CreatedAt)]
		if !ok {
			continue
		}
		buckets[i].Moods[a.classifier.Classify(e.Content)]++
		buckets[i].Total++
	}
	return Trends{Days: days, Buckets: buckets}
}

type CalendarDay struct {
	Date     string     `json:"date"`
	Mood     mood.Label `json:"mood"`
	EntryID  string     `json:"entry_id"`
	Title    string     `json:"title"`
	HasEntry bool       `json:"has_entry"`
}

type Calendar struct {
	Days         []CalendarDay `json:"days"`
	TotalEntries int           `json:"total_entries"`
}

// Calendar assigns one mood per day. Entries are walked newest first and the
// first entry seen for a day sets that day's mood, so a day shows the mood of
// its latest entry rather than an aggregate.
func (a *Aggregator) Calendar(entries []*entity.Entry) Calendar {
	sorted := sortedCopy(entries, false)
	cal := Calendar{Days: make([]CalendarDay, 0), TotalEntries: len(entries)}
	seen := make(map[string]bool)
	for _, e := range sorted {
		key := a.dayKey(e.CreatedAt)
		if seen[key] {
			continue
		}
		seen[key] = true
		cal.Days = append(cal.Days, CalendarDay{
			Date:     key,
			Mood:     a.classifier.Classify(e.Content),
			EntryID:  e.ID,
			Title:    e.Title,
			HasEntry: true,
		})
	}
	return cal
}

type DailyMoods struct {
	Date  string       `json:"date"`
	Moods Distribution `json:"moods"`
}

type StatsRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Stats struct {
	Days             int          `json:"days"`
	TotalEntries     int          `json:"total_entries"`
	MoodDistribution Distribution `json:"mood_distribution"`
	DominantMood     mood.Label   `json:"dominant_mood"`
	DailyMoods       []DailyMoods `json:"daily_moods"`
	DateRange        StatsRange   `json:"date_range"`
}

// Stats summarizes the entries of the last `days` days. Only dates having at
// least one entry appear in DailyMoods, oldest first.
func (a *Aggregator) Stats(entries []*entity.Entry, days int) Stats {
	days = NormalizeDays(days)
	window := a.Window(days)
	st := Stats{
		Days:             days,
		MoodDistribution: newDistribution(),
		DailyMoods:       make([]DailyMoods, 0),
		DateRange: StatsRange{
			Start: window.From.Format(dateLayout),
			End:   a.dayKey(a.now()),
		},
	}
	perDay := make(map[string]int)
	for _, e := range sortedCopy(entries, true) {
		if !window.Contains(e.CreatedAt) {
			continue
		}
		label := a.classifier.Classify(e.Content)
		st.TotalEntries++
		st.MoodDistribution[label]++
		key := a.dayKey(e.CreatedAt)
		i, ok := perDay[key]
		if !ok {
			i = len(st.DailyMoods)
			perDay[key] = i
			st.DailyMoods = append(st.DailyMoods, DailyMoods{Date: key, Moods: newDistribution()})
		}
		st.DailyMoods[i].Moods[label]++
	}
	st.DominantMood = st.MoodDistribution.Dominant()
	return st
}

type ActivityDay struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	WordCount int    `json:"word_count"`
}

// Activity returns per-day entry and word counts, oldest first.
func (a *Aggregator) Activity(entries []*entity.Entry) []ActivityDay {
	days := make([]ActivityDay, 0)
	index := make(map[string]int)
	for _, e := range sortedCopy(entries, true) {
		key := a.dayKey(e.CreatedAt)
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, ActivityDay{Date: key})
		}
		days[i].Count++
		days[i].WordCount += WordCount(e.Content)
	}
	return days
}

func sortedCopy(entries []*entity.Entry, ascending bool) []*entity.Entry {
	out := make([]*entity.Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
