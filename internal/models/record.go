package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Canonical input field names.
const (
	FieldTimestamp  = "timestamp"
	FieldLabel      = "label"
	FieldConfidence = "confidence"
	FieldText       = "text"
)

// fieldAliases maps every accepted spelling of an input key to its canonical
// field. Producers that emit both spellings for the same record create a
// duplicate field definition.
var fieldAliases = map[string]string{
	"timestamp":          FieldTimestamp,
	"datetime":           FieldTimestamp,
	"label":              FieldLabel,
	"predicted_activity": FieldLabel,
	"activity":           FieldLabel,
	"confidence":         FieldConfidence,
	"score":              FieldConfidence,
	"text":               FieldText,
	"raw_text":           FieldText,
	"original_text":      FieldText,
}

// CanonicalField returns the canonical name for an input key, or false if
// the key is not one the ingestion layer understands.
func CanonicalField(key string) (string, bool) {
	name, ok := fieldAliases[strings.ToLower(strings.TrimSpace(key))]
	return name, ok
}

// RawRecord is one input record as supplied by a producer, before
// canonicalization by the event store.
type RawRecord struct {
	Timestamp  NullableString  `json:"timestamp"`
	Label      NullableString  `json:"label"`
	Confidence NullableFloat64 `json:"confidence"`
	Text       NullableString  `json:"text"`

	// Conflicts lists canonical fields that were defined more than once
	// with different values.
	Conflicts []string `json:"-"`
	// Malformed lists canonical fields whose value had the wrong type.
	Malformed []string `json:"-"`
}

// UnmarshalJSON decodes a record while tracking duplicate keys, which
// encoding/json would otherwise resolve silently by keeping the last one.
// A field of the wrong type is noted in Malformed rather than failing the
// whole batch; the event store rejects that single record.
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object")
	}

	*r = RawRecord{}
	seen := make(map[string]json.RawMessage)
	conflicted := make(map[string]bool)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}

		field, ok := CanonicalField(key)
		if !ok {
			continue
		}

		if prev, exists := seen[field]; exists {
			if !sameJSON(prev, value) && !conflicted[field] {
				conflicted[field] = true
				r.Conflicts = append(r.Conflicts, field)
			}
			continue
		}
		seen[field] = value
	}

	for field, value := range seen {
		var target json.Unmarshaler
		switch field {
		case FieldTimestamp:
			target = &r.Timestamp
		case FieldLabel:
			target = &r.Label
		case FieldConfidence:
			target = &r.Confidence
		case FieldText:
			target = &r.Text
		}
		if err := target.UnmarshalJSON(value); err != nil {
			r.Malformed = append(r.Malformed, field)
		}
	}
	sort.Strings(r.Malformed)

	return nil
}

func sameJSON(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

// ActivityEvent is one classified occurrence. Values are copied out of the
// event store, so holders cannot mutate the store's snapshot.
type ActivityEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	// Scored is false when the producing classifier did not report a confidence.
	Scored  bool   `json:"scored"`
	RawText string `json:"raw_text,omitempty"`
}

// RejectedRecord describes an input record the event store did not accept.
type RejectedRecord struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}
