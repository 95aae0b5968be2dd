package analysis

import (
	"sort"

	"github.com/JonnyWalker81/lifeline/internal/eventstore"
	"github.com/JonnyWalker81/lifeline/internal/models"
	"github.com/JonnyWalker81/lifeline/internal/stats"
)

const hoursPerDay = 24

// extremeHourCount is how many peak and quiet hours are reported.
const extremeHourCount = 3

// AnalyzeDailyRoutine computes wake and sleep hour statistics across dates and
// the hour-of-day histogram. An empty store yields an empty result.
func AnalyzeDailyRoutine(store *eventstore.Store) models.DailyPatterns {
	events := store.Events()
	if len(events) == 0 {
		return models.DailyPatterns{
			Empty:          true,
			HourlyActivity: map[int]int{},
			PeakHours:      []int{},
			QuietHours:     []int{},
		}
	}

	type bounds struct{ first, last int }
	byDate := make(map[models.Date]*bounds)
	hourly := make(map[int]int, hoursPerDay)
	for h := 0; h < hoursPerDay; h++ {
		hourly[h] = 0
	}

	for _, e := range events {
		hour := eventstore.Hour(e)
		hourly[hour]++

		date := eventstore.DateOf(e)
		b, ok := byDate[date]
		if !ok {
			byDate[date] = &bounds{first: hour, last: hour}
			continue
		}
		if hour < b.first {
			b.first = hour
		}
		if hour > b.last {
			b.last = hour
		}
	}

	dates := sortedDates(byDate)
	wake := make([]int, len(dates))
	sleep := make([]int, len(dates))
	for i, d := range dates {
		wake[i] = byDate[d].first
		sleep[i] = byDate[d].last
	}

	return models.DailyPatterns{
		DaysObserved:   len(dates),
		WakeUpTime:     hourStats(wake),
		SleepTime:      hourStats(sleep),
		HourlyActivity: hourly,
		PeakHours:      extremeHours(hourly, true),
		QuietHours:     extremeHours(hourly, false),
	}
}

func hourStats(hours []int) models.HourStats {
	if len(hours) == 0 {
		return models.HourStats{}
	}
	values := stats.Ints(hours)
	avg := stats.Mean(values)
	std := stats.SampleStdDev(values)
	mode, _ := stats.Mode(hours)
	return models.HourStats{Average: &avg, Std: &std, MostCommon: &mode}
}

// extremeHours returns the hours with the largest (or smallest) counts. Ties
// are broken by ascending hour.
func extremeHours(hourly map[int]int, largest bool) []int {
	hours := make([]int, 0, len(hourly))
	for h := range hourly {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool {
		ci, cj := hourly[hours[i]], hourly[hours[j]]
		if ci != cj {
			if largest {
				return ci > cj
			}
			return ci < cj
		}
		return hours[i] < hours[j]
	})
	if len(hours) > extremeHourCount {
		hours = hours[:extremeHourCount]
	}
	return hours
}

func sortedDates[V any](m map[models.Date]V) []models.Date {
	dates := make([]models.Date, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
