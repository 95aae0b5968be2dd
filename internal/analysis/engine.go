package analysis

import (
	"context"

	"github.com/JonnyWalker81/lifeline/internal/eventstore"
	"github.com/JonnyWalker81/lifeline/internal/models"
	"golang.org/x/sync/errgroup"
)

// Analyze runs every analyzer over the same snapshot and assembles a report.
// The independent analyses run concurrently; insights are derived afterwards
// from the routine statistics and anomalies. ID, Fingerprint and GeneratedAt
// are left for the caller to fill.
func Analyze(ctx context.Context, store *eventstore.Store, opts Options) (*models.Report, error) {
	var (
		patterns  models.DailyPatterns
		anomalies []models.AnomalyRecord
		intervals []models.IntervalEvent
		trends    []models.TrendResult
		timeline  []models.DailyAggregate
		weekly    models.WeeklyPatterns
		monthly   []models.MonthlyOverview
		shifts    []models.PatternShift
		routines  models.Routines
	)

	g, gctx := errgroup.WithContext(ctx)
	run := func(fn func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	run(func() { patterns = AnalyzeDailyRoutine(store) })
	run(func() { anomalies = DetectVolumeAnomalies(store, opts) })
	run(func() { intervals = MergeQualifyingDays(store, opts.QualifyingLabel, opts) })
	run(func() { trends = EstimateTrends(store, opts) })
	run(func() { timeline = BuildDailyTimeline(store) })
	run(func() { weekly = BuildWeeklyPatterns(store) })
	run(func() { monthly = BuildMonthlyOverview(store) })
	run(func() { shifts = DetectPatternShifts(store, opts) })
	run(func() { routines = DetectRoutines(store, opts) })

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rejected := store.Rejected()
	report := &models.Report{
		EventCount:      store.Len(),
		RejectedCount:   len(rejected),
		Rejected:        rejected,
		WakeUpTime:      patterns.WakeUpTime,
		SleepTime:       patterns.SleepTime,
		HourlyActivity:  patterns.HourlyActivity,
		PeakHours:       patterns.PeakHours,
		QuietHours:      patterns.QuietHours,
		LifeEvents:      anomalies,
		IntervalEvents:  intervals,
		Trends:          models.NewTrendsSummary(trends, hourlyDistribution(store, opts)),
		Insights:        GenerateInsights(patterns, anomalies),
		DailyTimeline:   timeline,
		WeeklyPatterns:  weekly,
		MonthlyOverview: monthly,
		PatternShifts:   shifts,
		Routines:        routines,
	}
	report.Normalize()

	return report, nil
}

// hourlyDistribution counts the events the trend estimator saw by hour.
func hourlyDistribution(store *eventstore.Store, opts Options) map[int]int {
	dist := make(map[int]int)
	for _, e := range store.Select(opts.IncludeUnscored) {
		dist[eventstore.Hour(e)]++
	}
	return dist
}
