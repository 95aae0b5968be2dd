package analysis

import (
	"sort"

	"github.com/JonnyWalker81/lifeline/internal/eventstore"
	"github.com/JonnyWalker81/lifeline/internal/models"
	"github.com/JonnyWalker81/lifeline/internal/stats"
)

const (
	monthLayout = "2006-01"
	topLabels   = 5
)

// BuildDailyTimeline summarizes every date that has events, in date order.
func BuildDailyTimeline(store *eventstore.Store) []models.DailyAggregate {
	byDate := make(map[models.Date][]models.ActivityEvent)
	for _, e := range store.Events() {
		d := eventstore.DateOf(e)
		byDate[d] = append(byDate[d], e)
	}

	timeline := make([]models.DailyAggregate, 0, len(byDate))
	for _, d := range sortedDates(byDate) {
		timeline = append(timeline, dailyAggregate(d, byDate[d]))
	}
	return timeline
}

func dailyAggregate(date models.Date, events []models.ActivityEvent) models.DailyAggregate {
	agg := models.DailyAggregate{
		Date:              date,
		EventCount:        len(events),
		FirstHour:         hoursPerDay,
		LastHour:          -1,
		ActivityHistogram: make(map[string]int),
		HourlyBreakdown:   make(map[int][]string),
	}

	for _, e := range events {
		hour := eventstore.Hour(e)
		if hour < agg.FirstHour {
			agg.FirstHour = hour
		}
		if hour > agg.LastHour {
			agg.LastHour = hour
		}
		agg.ActivityHistogram[e.Label]++
		agg.HourlyBreakdown[hour] = append(agg.HourlyBreakdown[hour], e.Label)
	}
	agg.ActiveHourCount = len(agg.HourlyBreakdown)

	return agg
}

// BuildWeeklyPatterns reports label counts by weekday, ISO week volume
// statistics and a weekend versus weekday comparison.
func BuildWeeklyPatterns(store *eventstore.Store) models.WeeklyPatterns {
	events := store.Events()
	patterns := models.WeeklyPatterns{
		ActivityByDay: make(map[string]map[string]int),
		WeekendVsWeekday: models.WeekendComparison{
			WeekendActivities: make(map[string]int),
			WeekdayActivities: make(map[string]int),
		},
	}
	if len(events) == 0 {
		return patterns
	}

	weekendDays := make(map[models.Date]bool)
	weekdayDays := make(map[models.Date]bool)
	var weekendTotal, weekdayTotal int

	for _, e := range events {
		day := eventstore.Weekday(e)
		if patterns.ActivityByDay[day] == nil {
			patterns.ActivityByDay[day] = make(map[string]int)
		}
		patterns.ActivityByDay[day][e.Label]++

		if eventstore.IsWeekend(e) {
			patterns.WeekendVsWeekday.WeekendActivities[e.Label]++
			weekendDays[eventstore.DateOf(e)] = true
			weekendTotal++
		} else {
			patterns.WeekendVsWeekday.WeekdayActivities[e.Label]++
			weekdayDays[eventstore.DateOf(e)] = true
			weekdayTotal++
		}
	}

	patterns.WeekendVsWeekday.WeekendAvgPerDay = float64(weekendTotal) / float64(max(len(weekendDays), 1))
	patterns.WeekendVsWeekday.WeekdayAvgPerDay = float64(weekdayTotal) / float64(max(len(weekdayDays), 1))

	_, weekly := WeeklyCounts(events)
	patterns.WeeklyVolume = models.WeeklyVolume{
		Weeks:   len(weekly),
		Average: stats.Mean(weekly),
		Std:     stats.SampleStdDev(weekly),
	}
	if slope, ok := stats.OLSSlope(weekly); ok {
		patterns.WeeklyVolume.Trend = slope
	}

	return patterns
}

// BuildMonthlyOverview summarizes each calendar month that has events, in
// chronological order.
func BuildMonthlyOverview(store *eventstore.Store) []models.MonthlyOverview {
	byMonth := make(map[string][]models.ActivityEvent)
	for _, e := range store.Events() {
		m := e.Timestamp.Format(monthLayout)
		byMonth[m] = append(byMonth[m], e)
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	overview := make([]models.MonthlyOverview, 0, len(months))
	for _, m := range months {
		overview = append(overview, monthlyOverview(m, byMonth[m]))
	}
	return overview
}

func monthlyOverview(month string, events []models.ActivityEvent) models.MonthlyOverview {
	daily := DailyCounts(events)

	busiest, quietest := daily[0], daily[0]
	for _, dc := range daily[1:] {
		if dc.Count > busiest.Count {
			busiest = dc
		}
		if dc.Count < quietest.Count {
			quietest = dc
		}
	}

	counts := labelCounts(events)
	top := counts
	if len(top) > topLabels {
		top = top[:topLabels]
	}

	return models.MonthlyOverview{
		Month:                month,
		TotalActivities:      len(events),
		UniqueDays:           len(daily),
		AvgActivitiesPerDay:  float64(len(events)) / float64(len(daily)),
		TopActivities:        top,
		ActivityDistribution: labelDistribution(events, counts),
		BusiestDay:           busiest.Date,
		QuietestDay:          quietest.Date,
	}
}

// labelCounts counts events per label, ordered by count descending and then
// label ascending.
func labelCounts(events []models.ActivityEvent) []models.LabelCount {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.Label]++
	}

	out := make([]models.LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, models.LabelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func labelDistribution(events []models.ActivityEvent, counts []models.LabelCount) map[string]models.LabelShare {
	confidences := make(map[string][]float64)
	for _, e := range events {
		if e.Scored {
			confidences[e.Label] = append(confidences[e.Label], e.Confidence)
		}
	}

	dist := make(map[string]models.LabelShare, len(counts))
	for _, lc := range counts {
		share := models.LabelShare{
			Count:      lc.Count,
			Percentage: float64(lc.Count) / float64(len(events)) * 100,
		}
		if c := confidences[lc.Label]; len(c) > 0 {
			avg := stats.Mean(c)
			share.AvgConfidence = &avg
		}
		dist[lc.Label] = share
	}
	return dist
}
