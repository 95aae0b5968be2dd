package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonnyWalker81/lifeline/internal/analysis"
	"github.com/JonnyWalker81/lifeline/internal/eventstore"
	"github.com/JonnyWalker81/lifeline/internal/logger"
	"github.com/JonnyWalker81/lifeline/internal/metrics"
	"github.com/JonnyWalker81/lifeline/internal/models"
	"github.com/JonnyWalker81/lifeline/internal/repository"
)

type analysisService struct {
	defaults analysis.Options
	location *time.Location
	// reports is nil when the report cache is disabled.
	reports repository.ReportRepository
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewAnalysisService creates a new analysis service. reports and m may be nil.
func NewAnalysisService(defaults analysis.Options, location *time.Location, reports repository.ReportRepository, m *metrics.Metrics) AnalysisService {
	if location == nil {
		location = time.UTC
	}
	return &analysisService{
		defaults: defaults,
		location: location,
		reports:  reports,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *analysisService) Analyze(ctx context.Context, records []models.RawRecord, overrides *models.AnalyzeOptions) (*models.Report, error) {
	opts, loc, err := s.resolveOptions(overrides)
	if err != nil {
		return nil, err
	}

	store, err := eventstore.Ingest(records, eventstore.Options{Location: loc})
	if err != nil {
		return nil, err
	}

	fingerprint := store.Fingerprint()
	key := cacheKey(fingerprint, store.Rejected(), opts, loc)
	log := logger.Ctx(ctx).With(
		logger.Int("events", store.Len()),
		logger.Int("rejected", len(store.Rejected())),
	)

	if cached := s.lookup(ctx, key); cached != nil {
		s.metrics.RecordCache(true)
		log.Info("serving cached report", logger.String("report_id", cached.ID))
		return cached, nil
	}

	start := time.Now()
	report, err := analysis.Analyze(ctx, store, opts)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	elapsed := time.Since(start)
	s.metrics.ObserveAnalysis(elapsed, store.Len(), len(store.Rejected()))
	s.metrics.RecordCache(false)
	for _, a := range report.LifeEvents {
		s.metrics.RecordAnomaly(string(a.Kind))
	}

	id, err := NewReportID()
	if err != nil {
		return nil, err
	}
	report.ID = id
	report.Fingerprint = fingerprint
	report.CacheKey = key
	report.GeneratedAt = s.now().UTC()

	log.Info("analysis completed",
		logger.String("report_id", report.ID),
		logger.Duration("duration", elapsed),
		logger.Int("anomalies", len(report.LifeEvents)),
	)

	if s.reports == nil {
		return report, nil
	}

	saved, err := s.reports.Save(ctx, report)
	if err != nil {
		// The report is still valid; it just cannot be fetched by id later.
		log.Warn("failed to store report", logger.String("report_id", report.ID), logger.Err(err))
		return report, nil
	}
	return saved, nil
}

func (s *analysisService) GetReport(ctx context.Context, id string) (*models.Report, error) {
	if s.reports == nil {
		return nil, repository.ErrNotFound
	}
	return s.reports.GetByID(ctx, id)
}

func (s *analysisService) lookup(ctx context.Context, key string) *models.Report {
	if s.reports == nil {
		return nil
	}
	report, err := s.reports.GetByCacheKey(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Ctx(ctx).Warn("report cache lookup failed", logger.Err(err))
		}
		return nil
	}
	return report
}

func (s *analysisService) resolveOptions(overrides *models.AnalyzeOptions) (analysis.Options, *time.Location, error) {
	opts := s.defaults
	loc := s.location
	if overrides == nil {
		return opts, loc, nil
	}

	if overrides.QualifyingLabel != nil {
		label := strings.TrimSpace(*overrides.QualifyingLabel)
		if label == "" {
			return opts, nil, &eventstore.ValidationError{Field: "qualifying_label", Reason: "must not be empty"}
		}
		opts.QualifyingLabel = label
	}
	if overrides.IncludeUnscored != nil {
		opts.IncludeUnscored = *overrides.IncludeUnscored
	}
	if overrides.Timezone != nil {
		tz, err := time.LoadLocation(*overrides.Timezone)
		if err != nil {
			return opts, nil, &eventstore.ValidationError{Field: "timezone", Reason: err.Error()}
		}
		loc = tz
	}
	return opts, loc, nil
}

// cacheKey identifies a report by the events it was computed from and every
// setting that can change its content.
func cacheKey(fingerprint string, rejected []models.RejectedRecord, opts analysis.Options, loc *time.Location) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%g|%g|%d|%d|%d|%s|%g|%d|%t|%s",
		fingerprint,
		opts.RollingWindow,
		opts.Sigma,
		opts.ConfidenceDivisor,
		opts.MinEvents,
		opts.MinTrendPoints,
		opts.MinIntervalDays,
		opts.QualifyingLabel,
		opts.ShiftThreshold,
		opts.MinRoutineFrequency,
		opts.IncludeUnscored,
		loc.String(),
	)
	// Rejected records are part of the report, so two batches that differ
	// only in what was rejected must not share one.
	for _, r := range rejected {
		fmt.Fprintf(h, "|%d:%s", r.Index, r.Reason)
	}
	return hex.EncodeToString(h.Sum(nil))
}
