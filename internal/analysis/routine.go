package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/JonnyWalker81/lifeline/internal/eventstore"
	"github.com/JonnyWalker81/lifeline/internal/models"
	"github.com/JonnyWalker81/lifeline/internal/stats"
)

// Routine windows, inclusive hour bounds. Work overlaps morning.
var (
	morningHours = [2]int{6, 11}
	workHours    = [2]int{9, 17}
	eveningHours = [2]int{18, 23}
)

const patternShiftType = "activity_pattern_change"

// DetectPatternShifts compares the label mix of each ISO week with the
// previous week that has events. A week whose summed absolute share change
// exceeds opts.ShiftThreshold is reported, dated at its Monday.
func DetectPatternShifts(store *eventstore.Store, opts Options) []models.PatternShift {
	shifts := []models.PatternShift{}

	byWeek := make(map[models.WeekKey]map[string]int)
	totals := make(map[models.WeekKey]int)
	for _, e := range store.Events() {
		w := eventstore.ISOWeek(e)
		if byWeek[w] == nil {
			byWeek[w] = make(map[string]int)
		}
		byWeek[w][e.Label]++
		totals[w]++
	}

	weeks := make([]models.WeekKey, 0, len(byWeek))
	for w := range byWeek {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Less(weeks[j]) })

	for i := 1; i < len(weeks); i++ {
		prev, cur := weeks[i-1], weeks[i]

		labels := make(map[string]bool)
		for l := range byWeek[prev] {
			labels[l] = true
		}
		for l := range byWeek[cur] {
			labels[l] = true
		}

		var change float64
		for l := range labels {
			prevShare := float64(byWeek[prev][l]) / float64(totals[prev])
			curShare := float64(byWeek[cur][l]) / float64(totals[cur])
			change += math.Abs(curShare - prevShare)
		}

		if change > opts.ShiftThreshold {
			shifts = append(shifts, models.PatternShift{
				Date:        cur.Monday(),
				Week:        cur.String(),
				Type:        patternShiftType,
				Severity:    change,
				Description: fmt.Sprintf("Significant change in activity patterns detected in week %s", cur),
			})
		}
	}

	return shifts
}

// DetectRoutines finds labels that recur within the morning, work, evening
// and weekend windows.
func DetectRoutines(store *eventstore.Store, opts Options) models.Routines {
	var morning, work, evening, weekend []models.ActivityEvent
	for _, e := range store.Events() {
		hour := eventstore.Hour(e)
		if inWindow(hour, morningHours) {
			morning = append(morning, e)
		}
		if inWindow(hour, workHours) {
			work = append(work, e)
		}
		if inWindow(hour, eveningHours) {
			evening = append(evening, e)
		}
		if eventstore.IsWeekend(e) {
			weekend = append(weekend, e)
		}
	}

	return models.Routines{
		Morning: commonActivities(morning, opts.MinRoutineFrequency),
		Work:    commonActivities(work, opts.MinRoutineFrequency),
		Evening: commonActivities(evening, opts.MinRoutineFrequency),
		Weekend: commonActivities(weekend, opts.MinRoutineFrequency),
	}
}

func inWindow(hour int, window [2]int) bool {
	return hour >= window[0] && hour <= window[1]
}

func commonActivities(events []models.ActivityEvent, minFrequency int) []models.RoutineActivity {
	out := []models.RoutineActivity{}
	if len(events) == 0 {
		return out
	}

	confidences := make(map[string][]float64)
	for _, e := range events {
		if e.Scored {
			confidences[e.Label] = append(confidences[e.Label], e.Confidence)
		}
	}

	// labelCounts is already ordered by frequency, then label.
	for _, lc := range labelCounts(events) {
		if lc.Count < minFrequency {
			continue
		}
		out = append(out, models.RoutineActivity{
			Activity:          lc.Label,
			Frequency:         lc.Count,
			AverageConfidence: stats.Mean(confidences[lc.Label]),
			Percentage:        float64(lc.Count) / float64(len(events)) * 100,
		})
	}
	return out
}
