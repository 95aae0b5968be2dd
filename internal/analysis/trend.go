package analysis

import (
	"math"
	"sort"

	"github.com/JonnyWalker81/lifeline/internal/eventstore"
	"github.com/JonnyWalker81/lifeline/internal/models"
	"github.com/JonnyWalker81/lifeline/internal/stats"
)

// slopeEpsilon absorbs floating point noise so that flat series read as stable.
const slopeEpsilon = 1e-12

// WeeklyCounts buckets events by ISO week. Only weeks that contain events are
// returned, in chronological order.
func WeeklyCounts(events []models.ActivityEvent) ([]models.WeekKey, []float64) {
	counts := make(map[models.WeekKey]int)
	for _, e := range events {
		counts[eventstore.ISOWeek(e)]++
	}

	weeks := make([]models.WeekKey, 0, len(counts))
	for w := range counts {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Less(weeks[j]) })

	values := make([]float64, len(weeks))
	for i, w := range weeks {
		values[i] = float64(counts[w])
	}
	return weeks, values
}

// EstimateTrends fits a least-squares slope to weekly event counts, first for
// all events and then per label in ascending label order. Series with fewer
// than opts.MinTrendPoints weeks are omitted.
func EstimateTrends(store *eventstore.Store, opts Options) []models.TrendResult {
	results := []models.TrendResult{}

	events := store.Select(opts.IncludeUnscored)
	if len(events) == 0 {
		return results
	}

	if r, ok := fitTrend(events, models.TrendScope{Kind: models.TrendScopeOverall}, opts); ok {
		results = append(results, r)
	}

	byLabel := make(map[string][]models.ActivityEvent)
	for _, e := range events {
		byLabel[e.Label] = append(byLabel[e.Label], e)
	}
	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		scope := models.TrendScope{Kind: models.TrendScopePerLabel, Label: label}
		if r, ok := fitTrend(byLabel[label], scope, opts); ok {
			results = append(results, r)
		}
	}

	return results
}

func fitTrend(events []models.ActivityEvent, scope models.TrendScope, opts Options) (models.TrendResult, bool) {
	_, values := WeeklyCounts(events)
	if len(values) < opts.MinTrendPoints {
		return models.TrendResult{}, false
	}

	slope, ok := stats.OLSSlope(values)
	if !ok {
		return models.TrendResult{}, false
	}

	return models.TrendResult{
		Scope:     scope,
		Slope:     slope,
		Direction: directionOf(slope),
		Points:    len(values),
	}, true
}

func directionOf(slope float64) models.TrendDirection {
	switch {
	case math.Abs(slope) < slopeEpsilon:
		return models.TrendStable
	case slope > 0:
		return models.TrendIncreasing
	default:
		return models.TrendDecreasing
	}
}
