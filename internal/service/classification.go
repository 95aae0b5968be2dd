package service

import (
	"context"
	"fmt"

	"github.com/JonnyWalker81/lifeline/internal/classifier"
	"github.com/JonnyWalker81/lifeline/internal/eventstore"
	"github.com/JonnyWalker81/lifeline/internal/logger"
	"github.com/JonnyWalker81/lifeline/internal/models"
)

// MaxBatchSize caps the number of texts classified in one request.
const MaxBatchSize = 500

type classificationService struct {
	classifier *classifier.ActivityClassifier
}

// NewClassificationService creates a new classification service
func NewClassificationService(c *classifier.ActivityClassifier) ClassificationService {
	return &classificationService{classifier: c}
}

func (s *classificationService) ClassifyText(ctx context.Context, text, category string) (*models.Classification, error) {
	cat, err := models.ParseCategory(category)
	if err != nil {
		return nil, &eventstore.ValidationError{Field: "category", Reason: err.Error()}
	}
	return s.classifier.ClassifyText(ctx, text, cat)
}

func (s *classificationService) ClassifyBatch(ctx context.Context, req *models.ClassifyRequest) (*models.ClassificationBatch, error) {
	if len(req.Items) > MaxBatchSize {
		return nil, &eventstore.ValidationError{
			Field:  "items",
			Reason: fmt.Sprintf("at most %d items per request, got %d", MaxBatchSize, len(req.Items)),
		}
	}

	// Without an explicit category the label set follows the time of day.
	var cat models.Category
	if req.Category != "" {
		parsed, err := models.ParseCategory(req.Category)
		if err != nil {
			return nil, &eventstore.ValidationError{Field: "category", Reason: err.Error()}
		}
		cat = parsed
	}

	batch, err := s.classifier.ClassifyBatch(ctx, req.Items, cat)
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info("classified batch",
		logger.Int("items", len(req.Items)),
		logger.Int("records", len(batch.Records)),
		logger.Int("failures", len(batch.Failures)),
	)
	return batch, nil
}
