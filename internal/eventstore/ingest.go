package eventstore

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/JonnyWalker81/lifeline/internal/models"
)

// offsetLayouts carry their own UTC offset. Fractional seconds are accepted
// by time.Parse even when the layout omits them.
var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
}

// naiveLayouts are interpreted in Options.Location.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO 8601 timestamp. Values without an offset are
// placed in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// Ingest validates raw records and builds a Store. Records with a missing
// timestamp or label, an unparsable timestamp, an out-of-range confidence or
// conflicting duplicate fields are skipped and reported by Store.Rejected.
// A *ValidationError is returned only when no record carries a value for a
// required field. An empty input yields an empty store.
func Ingest(records []models.RawRecord, opts Options) (*Store, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	store := &Store{loc: loc}
	if len(records) == 0 {
		return store, nil
	}

	if err := checkRequiredFields(records); err != nil {
		return nil, err
	}

	events := make([]models.ActivityEvent, 0, len(records))
	for i, rec := range records {
		event, reason := canonicalize(rec, loc)
		if reason != "" {
			store.rejected = append(store.rejected, models.RejectedRecord{Index: i, Reason: reason})
			continue
		}
		events = append(events, event)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	store.events = events

	return store, nil
}

func checkRequiredFields(records []models.RawRecord) error {
	var hasTimestamp, hasLabel bool
	for _, rec := range records {
		// null or a wrongly typed value is no value at all
		hasTimestamp = hasTimestamp || rec.Timestamp.Valid
		hasLabel = hasLabel || rec.Label.Valid
	}

	if !hasTimestamp {
		return &ValidationError{Field: models.FieldTimestamp, Reason: "required field is missing from every record"}
	}
	if !hasLabel {
		return &ValidationError{Field: models.FieldLabel, Reason: "required field is missing from every record"}
	}
	return nil
}

// canonicalize converts one record. A non-empty reason means the record is
// rejected.
func canonicalize(rec models.RawRecord, loc *time.Location) (models.ActivityEvent, string) {
	if len(rec.Conflicts) > 0 {
		return models.ActivityEvent{}, fmt.Sprintf("ambiguous duplicate field %q", rec.Conflicts[0])
	}
	if len(rec.Malformed) > 0 {
		return models.ActivityEvent{}, fmt.Sprintf("malformed field %q", rec.Malformed[0])
	}

	if !rec.Timestamp.Valid || strings.TrimSpace(rec.Timestamp.Value) == "" {
		return models.ActivityEvent{}, "missing timestamp"
	}
	label := strings.TrimSpace(rec.Label.Value)
	if !rec.Label.Valid || label == "" {
		return models.ActivityEvent{}, "missing label"
	}

	ts, err := ParseTimestamp(rec.Timestamp.Value, loc)
	if err != nil {
		return models.ActivityEvent{}, err.Error()
	}

	event := models.ActivityEvent{
		Timestamp: ts,
		Label:     label,
		RawText:   rec.Text.Value,
	}

	if rec.Confidence.Valid {
		c := rec.Confidence.Value
		if math.IsNaN(c) || c < 0 || c > 1 {
			return models.ActivityEvent{}, fmt.Sprintf("confidence %v outside [0, 1]", c)
		}
		event.Confidence = c
		event.Scored = true
	}

	return event, ""
}
