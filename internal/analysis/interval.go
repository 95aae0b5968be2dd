package analysis

import (
	"fmt"
	"strings"

	"github.com/JonnyWalker81/lifeline/internal/eventstore"
	"github.com/JonnyWalker81/lifeline/internal/models"
)

// MergeQualifyingDays collapses runs of consecutive calendar days that carry
// the given label into interval events. Runs shorter than
// opts.MinIntervalDays are dropped. The label comparison is exact.
func MergeQualifyingDays(store *eventstore.Store, label string, opts Options) []models.IntervalEvent {
	intervals := []models.IntervalEvent{}
	if label == "" {
		return intervals
	}

	days := make(map[models.Date]bool)
	for _, e := range store.Events() {
		if e.Label == label {
			days[eventstore.DateOf(e)] = true
		}
	}
	if len(days) == 0 {
		return intervals
	}

	minDays := opts.MinIntervalDays
	if minDays < 1 {
		minDays = 1
	}

	dates := sortedDates(days)
	runStart := 0
	for i := 1; i <= len(dates); i++ {
		// A gap of more than one day, or the end of input, closes the run.
		if i < len(dates) && dates[i-1].DaysUntil(dates[i]) <= 1 {
			continue
		}

		run := dates[runStart:i]
		if len(run) >= minDays {
			intervals = append(intervals, newIntervalEvent(run, label))
		}
		runStart = i
	}

	return intervals
}

func newIntervalEvent(run []models.Date, label string) models.IntervalEvent {
	lower := strings.ToLower(label)
	return models.IntervalEvent{
		StartDate:       run[0],
		EndDate:         run[len(run)-1],
		Type:            strings.ReplaceAll(lower, " ", "_") + "_period",
		QualifyingLabel: label,
		Description:     fmt.Sprintf("%d-day %s period", len(run), lower),
		DurationDays:    len(run),
	}
}
