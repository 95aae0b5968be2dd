package classifier

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/JonnyWalker81/lifeline/internal/eventstore"
	"github.com/JonnyWalker81/lifeline/internal/logger"
	"github.com/JonnyWalker81/lifeline/internal/models"
)

// DefaultConfidenceThreshold is the score above which a prediction counts as
// high confidence.
const DefaultConfidenceThreshold = 0.5

// ActivityOptions tunes an ActivityClassifier.
type ActivityOptions struct {
	ConfidenceThreshold float64
	MaxTextLength       int
	// Location places timestamps without an offset. Nil means UTC.
	Location *time.Location
}

// ActivityClassifier prepares texts for a Classifier and turns its answers
// into classifications and event records.
type ActivityClassifier struct {
	client Classifier
	opts   ActivityOptions
}

// NewActivityClassifier wraps client. Zero options take their defaults.
func NewActivityClassifier(client Classifier, opts ActivityOptions) *ActivityClassifier {
	if opts.ConfidenceThreshold <= 0 {
		opts.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if opts.MaxTextLength <= 0 {
		opts.MaxTextLength = DefaultMaxTextLength
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &ActivityClassifier{client: client, opts: opts}
}

// ClassifyText labels a single text against the category's label set.
func (a *ActivityClassifier) ClassifyText(ctx context.Context, text string, category models.Category) (*models.Classification, error) {
	cleaned := Preprocess(text, a.opts.MaxTextLength)
	if cleaned == "" {
		return nil, ErrEmptyText
	}

	pred, err := a.client.Classify(ctx, cleaned, category.Labels())
	if err != nil {
		return nil, err
	}
	return a.classification(pred, text), nil
}

// ClassifyBatch classifies timestamped texts. Each text gets a time-of-day
// prefix; when category is empty the label set is chosen by hour. Texts
// that cannot be classified are reported in Failures and never become
// records. An open circuit or a cancelled context aborts the batch.
func (a *ActivityClassifier) ClassifyBatch(ctx context.Context, items []models.TextItem, category models.Category) (*models.ClassificationBatch, error) {
	batch := &models.ClassificationBatch{
		Records:  []models.RawRecord{},
		Failures: []models.ClassificationFailure{},
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fail := func(reason string) {
			batch.Failures = append(batch.Failures, models.ClassificationFailure{
				Index:     i,
				Timestamp: item.Timestamp,
				Text:      item.Text,
				Reason:    reason,
			})
		}

		ts, err := eventstore.ParseTimestamp(item.Timestamp, a.opts.Location)
		if err != nil {
			fail(err.Error())
			continue
		}

		cleaned := Preprocess(item.Text, a.opts.MaxTextLength)
		if cleaned == "" {
			fail(ErrEmptyText.Error())
			continue
		}

		cat := category
		if cat == "" {
			cat = CategoryForHour(ts.Hour())
		}

		pred, err := a.client.Classify(ctx, WithTemporalContext(cleaned, ts), cat.Labels())
		if err != nil {
			if errors.Is(err, ErrCircuitOpen) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			logger.Ctx(ctx).Warn("classification failed",
				logger.Int("index", i),
				logger.Err(err),
			)
			fail(err.Error())
			continue
		}

		batch.Records = append(batch.Records, models.RawRecord{
			Timestamp:  models.NewString(item.Timestamp),
			Label:      models.NewString(pred.Label),
			Confidence: models.NewFloat64(pred.Score),
			Text:       models.NewString(item.Text),
		})
	}

	return batch, nil
}

func (a *ActivityClassifier) classification(pred *Prediction, original string) *models.Classification {
	return &models.Classification{
		Label:           pred.Label,
		Confidence:      pred.Score,
		AllPredictions:  pred.AllPredictions,
		HighConfidence:  pred.Score > a.opts.ConfidenceThreshold,
		ConfidenceLevel: models.ConfidenceLevelOf(pred.Score),
		ActivityType:    models.ActivityTypeOf(pred.Label),
		KeywordsFound:   keywordsIn(original, pred.Label),
	}
}

func keywordsIn(text, label string) []string {
	lower := strings.ToLower(text)
	found := []string{}
	for _, kw := range models.Keywords(label) {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}
