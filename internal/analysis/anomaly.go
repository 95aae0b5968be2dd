package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/JonnyWalker81/lifeline/internal/eventstore"
	"github.com/JonnyWalker81/lifeline/internal/models"
	"github.com/JonnyWalker81/lifeline/internal/stats"
)

// DailyCount is the number of events on one date
type DailyCount struct {
	Date  models.Date
	Count int
}

// DailyCounts returns per-date event counts for the dates that have events,
// in ascending date order.
func DailyCounts(events []models.ActivityEvent) []DailyCount {
	counts := make(map[models.Date]int)
	for _, e := range events {
		counts[eventstore.DateOf(e)]++
	}

	dates := sortedDates(counts)
	out := make([]DailyCount, len(dates))
	for i, d := range dates {
		out[i] = DailyCount{Date: d, Count: counts[d]}
	}
	return out
}

// DetectVolumeAnomalies flags dates whose event count deviates from a centered
// rolling mean by more than opts.Sigma population standard deviations of the
// whole daily series. Unscored events are ignored unless opts.IncludeUnscored.
func DetectVolumeAnomalies(store *eventstore.Store, opts Options) []models.AnomalyRecord {
	anomalies := []models.AnomalyRecord{}

	events := store.Select(opts.IncludeUnscored)
	if len(events) == 0 || len(events) < opts.MinEvents {
		return anomalies
	}

	daily := DailyCounts(events)
	series := make([]float64, len(daily))
	for i, dc := range daily {
		series[i] = float64(dc.Count)
	}

	std := stats.PopulationStdDev(series)
	if std == 0 {
		return anomalies
	}
	threshold := opts.Sigma * std
	baselines := stats.CenteredRollingMean(series, opts.RollingWindow)

	for i, dc := range daily {
		baseline := baselines[i]
		if math.IsNaN(baseline) {
			continue
		}

		deviation := math.Abs(series[i] - baseline)
		if deviation <= threshold {
			continue
		}

		kind := models.AnomalyLowActivity
		if series[i] > baseline {
			kind = models.AnomalyHighActivity
		}

		severity := deviation / std
		confidence := 1.0
		if opts.ConfidenceDivisor > 0 {
			confidence = math.Min(severity/opts.ConfidenceDivisor, 1)
		}

		anomalies = append(anomalies, models.AnomalyRecord{
			Date:             dc.Date,
			Kind:             kind,
			Description:      fmt.Sprintf("Unusual %s detected", strings.ReplaceAll(string(kind), "_", " ")),
			ObservedCount:    dc.Count,
			ExpectedBaseline: baseline,
			Severity:         severity,
			Confidence:       confidence,
		})
	}

	return anomalies
}
