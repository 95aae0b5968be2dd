package service

import (
	"context"

	"github.com/JonnyWalker81/lifeline/internal/models"
)

// AnalysisService defines the interface for report business logic
type AnalysisService interface {
	// Analyze ingests records and returns their report, reusing a stored
	// report when the same snapshot was analyzed with the same options.
	Analyze(ctx context.Context, records []models.RawRecord, overrides *models.AnalyzeOptions) (*models.Report, error)
	GetReport(ctx context.Context, id string) (*models.Report, error)
}

// ClassificationService defines the interface for text classification
type ClassificationService interface {
	ClassifyText(ctx context.Context, text, category string) (*models.Classification, error)
	ClassifyBatch(ctx context.Context, req *models.ClassifyRequest) (*models.ClassificationBatch, error)
}
