package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JonnyWalker81/lifeline/internal/models"
)

func newTestRepository(t *testing.T) ReportRepository {
	t.Helper()
	db, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewReportRepository(db)
}

func sampleReport(id, key string) *models.Report {
	report := &models.Report{
		ID:          id,
		CacheKey:    key,
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		EventCount:  3,
		IntervalEvents: []models.IntervalEvent{{
			StartDate:       models.NewDate(2024, time.January, 1),
			EndDate:         models.NewDate(2024, time.January, 3),
			Type:            "travel_period",
			QualifyingLabel: "Travel",
			Description:     "3-day travel period",
			DurationDays:    3,
		}},
	}
	report.Normalize()
	return report
}

func TestReportRepository_SaveAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, sampleReport("id-1", "key-1"))
	if err != nil {
		t.Fatalf("Save error = %v", err)
	}
	if saved.ID != "id-1" {
		t.Errorf("saved ID = %s, want id-1", saved.ID)
	}

	byID, err := repo.GetByID(ctx, "id-1")
	if err != nil {
		t.Fatalf("GetByID error = %v", err)
	}
	if byID.EventCount != 3 || len(byID.IntervalEvents) != 1 {
		t.Errorf("report = %+v", byID)
	}
	if !byID.IntervalEvents[0].EndDate.Equal(models.NewDate(2024, time.January, 3)) {
		t.Errorf("EndDate = %s", byID.IntervalEvents[0].EndDate)
	}
	if byID.PeakHours == nil || byID.LifeEvents == nil {
		t.Error("loaded report has nil containers")
	}

	byKey, err := repo.GetByCacheKey(ctx, "key-1")
	if err != nil {
		t.Fatalf("GetByCacheKey error = %v", err)
	}
	if byKey.ID != "id-1" {
		t.Errorf("ID = %s, want id-1", byKey.ID)
	}
}

func TestReportRepository_SaveKeepsFirstReportForCacheKey(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if _, err := repo.Save(ctx, sampleReport("id-1", "key-1")); err != nil {
		t.Fatalf("Save error = %v", err)
	}
	saved, err := repo.Save(ctx, sampleReport("id-2", "key-1"))
	if err != nil {
		t.Fatalf("second Save error = %v", err)
	}
	if saved.ID != "id-1" {
		t.Errorf("ID = %s, want the first stored id-1", saved.ID)
	}
	if _, err := repo.GetByID(ctx, "id-2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(id-2) error = %v, want ErrNotFound", err)
	}
}

func TestReportRepository_NotFound(t *testing.T) {
	repo := newTestRepository(t)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByCacheKey(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByCacheKey error = %v, want ErrNotFound", err)
	}
}
