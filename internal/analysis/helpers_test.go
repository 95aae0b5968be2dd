package analysis

import (
	"fmt"
	"testing"
	"time"

	"github.com/JonnyWalker81/lifeline/internal/eventstore"
	"github.com/JonnyWalker81/lifeline/internal/models"
)

// jan1 is a Monday, the first day of ISO week 2024-W01.
var jan1 = models.NewDate(2024, time.January, 1)

func rawAt(date models.Date, hour int, label string, confidence float64) models.RawRecord {
	ts := fmt.Sprintf("%sT%02d:00:00Z", date, hour)
	return models.RawRecord{
		Timestamp:  models.NewString(ts),
		Label:      models.NewString(label),
		Confidence: models.NewFloat64(confidence),
	}
}

func unscoredAt(date models.Date, hour int, label string) models.RawRecord {
	rec := rawAt(date, hour, label, 0)
	rec.Confidence = models.NullableFloat64{}
	return rec
}

// dailySeries emits counts[i] events on the i-th day after start.
func dailySeries(start models.Date, counts []int, label string) []models.RawRecord {
	var records []models.RawRecord
	for i, n := range counts {
		for j := 0; j < n; j++ {
			records = append(records, rawAt(start.AddDays(i), 8+j%12, label, 0.9))
		}
	}
	return records
}

// weeklySeries emits counts[i] events on the Monday of the i-th week after start.
func weeklySeries(start models.Date, counts []int, label string) []models.RawRecord {
	var records []models.RawRecord
	for i, n := range counts {
		for j := 0; j < n; j++ {
			records = append(records, rawAt(start.AddDays(7*i), 9, label, 0.9))
		}
	}
	return records
}

func mustStore(t *testing.T, records []models.RawRecord) *eventstore.Store {
	t.Helper()
	store, err := eventstore.Ingest(records, eventstore.Options{})
	if err != nil {
		t.Fatalf("Ingest error = %v", err)
	}
	return store
}
