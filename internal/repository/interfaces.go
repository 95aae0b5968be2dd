package repository

import (
	"context"
	"errors"

	"github.com/JonnyWalker81/lifeline/internal/models"
)

// ErrNotFound is returned when no stored report matches the lookup key.
var ErrNotFound = errors.New("report not found")

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// Save stores a report. When a report with the same cache key already
	// exists the stored one is returned unchanged.
	Save(ctx context.Context, report *models.Report) (*models.Report, error)
	GetByID(ctx context.Context, id string) (*models.Report, error)
	GetByCacheKey(ctx context.Context, key string) (*models.Report, error)
}
