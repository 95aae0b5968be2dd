package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/lifeline/internal/models"
)

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Save(ctx context.Context, report *models.Report) (*models.Report, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (id, cache_key, created_at, event_count, payload)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO NOTHING`,
		report.ID,
		report.CacheKey,
		report.GeneratedAt.UTC().Format(time.RFC3339Nano),
		report.EventCount,
		string(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if inserted == 0 {
		return r.GetByCacheKey(ctx, report.CacheKey)
	}

	return report, nil
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	return r.getOne(ctx, "SELECT payload FROM reports WHERE id = ?", id)
}

func (r *reportRepository) GetByCacheKey(ctx context.Context, key string) (*models.Report, error) {
	return r.getOne(ctx, "SELECT payload FROM reports WHERE cache_key = ?", key)
}

func (r *reportRepository) getOne(ctx context.Context, query, arg string) (*models.Report, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	var report models.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	report.Normalize()

	return &report, nil
}
