// Package eventstore canonicalizes classified activity records into an
// immutable, chronologically ordered snapshot that the analyzers read from.
package eventstore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/JonnyWalker81/lifeline/internal/models"
)

// ValidationError reports input that cannot be analyzed at all. It is fatal
// for the call that produced it; per-record problems are reported through
// Store.Rejected instead.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// Options control how raw records are interpreted.
type Options struct {
	// Location is applied to timestamps that carry no UTC offset.
	// Nil means UTC.
	Location *time.Location
}

// Store is an immutable snapshot of ingested events ordered by timestamp.
// It is safe for concurrent readers.
type Store struct {
	events   []models.ActivityEvent
	rejected []models.RejectedRecord
	loc      *time.Location
}

// Len returns the number of accepted events.
func (s *Store) Len() int {
	return len(s.events)
}

// Events returns a copy of every accepted event in chronological order.
func (s *Store) Events() []models.ActivityEvent {
	out := make([]models.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Scored returns a copy of the events that carry a classifier confidence.
func (s *Store) Scored() []models.ActivityEvent {
	out := make([]models.ActivityEvent, 0, len(s.events))
	for _, e := range s.events {
		if e.Scored {
			out = append(out, e)
		}
	}
	return out
}

// Select returns Events when includeUnscored is set and Scored otherwise.
func (s *Store) Select(includeUnscored bool) []models.ActivityEvent {
	if includeUnscored {
		return s.Events()
	}
	return s.Scored()
}

// Rejected returns the records that were skipped during ingestion.
func (s *Store) Rejected() []models.RejectedRecord {
	out := make([]models.RejectedRecord, len(s.rejected))
	copy(out, s.rejected)
	return out
}

// Location returns the zone used for timestamps without an offset.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Labels returns the distinct labels in ascending order.
func (s *Store) Labels() []string {
	seen := make(map[string]bool)
	var labels []string
	for _, e := range s.events {
		if !seen[e.Label] {
			seen[e.Label] = true
			labels = append(labels, e.Label)
		}
	}
	sort.Strings(labels)
	return labels
}

// Fingerprint identifies the snapshot by content. Stores holding the same
// events in the same order share a fingerprint.
func (s *Store) Fingerprint() string {
	h := sha256.New()
	for _, e := range s.events {
		h.Write([]byte(e.Timestamp.Format(time.RFC3339Nano)))
		h.Write([]byte{0})
		h.Write([]byte(e.Label))
		h.Write([]byte{0})
		if e.Scored {
			h.Write([]byte(strconv.FormatFloat(e.Confidence, 'g', -1, 64)))
		}
		h.Write([]byte{0})
		h.Write([]byte(e.RawText))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Hour returns the wall-clock hour of the event in its own zone.
func Hour(e models.ActivityEvent) int {
	return e.Timestamp.Hour()
}

// DateOf returns the calendar date of the event in its own zone.
func DateOf(e models.ActivityEvent) models.Date {
	return models.DateOf(e.Timestamp)
}

// Weekday returns the English day name of the event, e.g. "Monday".
func Weekday(e models.ActivityEvent) string {
	return e.Timestamp.Weekday().String()
}

// ISOWeek returns the ISO 8601 week of the event.
func ISOWeek(e models.ActivityEvent) models.WeekKey {
	return models.WeekOf(e.Timestamp)
}

// IsWeekend reports whether the event fell on a Saturday or Sunday.
func IsWeekend(e models.ActivityEvent) bool {
	wd := e.Timestamp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
