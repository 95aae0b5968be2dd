// Package classifier turns free text into activity labels using a hosted
// zero-shot classification model.
package classifier

import (
	"context"
	"errors"
)

var (
	// ErrEmptyText is returned when nothing is left to classify after preprocessing.
	ErrEmptyText = errors.New("text is empty after preprocessing")
	// ErrCircuitOpen is returned while the circuit breaker rejects calls.
	ErrCircuitOpen = errors.New("classifier circuit is open")
	// ErrInvalidResponse is returned when the service answers with an unusable body.
	ErrInvalidResponse = errors.New("invalid classifier response")
)

// Prediction is the model's answer for one text.
type Prediction struct {
	Label          string
	Score          float64
	AllPredictions map[string]float64
}

// Classifier labels a text with one of the candidate labels.
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string) (*Prediction, error)
}
