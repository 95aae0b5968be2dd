package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// NullableString represents a string field that can distinguish between:
// - Field absent in JSON: Set=false, Valid=false, Value=""
// - Field present with null: Set=true, Valid=false, Value=""
// - Field present with value: Set=true, Valid=true, Value="the value"
//
// Ingestion needs this to tell "the producer never sent a label" apart from
// "the producer sent label: null".
type NullableString struct {
	Value string
	Valid bool // true if Value is not null
	Set   bool // true if field was present in the input
}

// NewString returns a NullableString holding s.
func NewString(s string) NullableString {
	return NullableString{Value: s, Valid: true, Set: true}
}

// UnmarshalJSON implements custom JSON unmarshaling for NullableString.
func (ns *NullableString) UnmarshalJSON(data []byte) error {
	ns.Set = true

	if string(data) == "null" {
		ns.Valid = false
		ns.Value = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	ns.Value = s
	ns.Valid = true
	return nil
}

// MarshalJSON implements custom JSON marshaling for NullableString.
func (ns NullableString) MarshalJSON() ([]byte, error) {
	if !ns.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(ns.Value)
}

// ToPtr converts NullableString to *string.
// Returns nil if Valid is false, otherwise returns pointer to Value.
func (ns NullableString) ToPtr() *string {
	if !ns.Valid {
		return nil
	}
	return &ns.Value
}

// NullableFloat64 is the numeric counterpart of NullableString. A classifier
// that failed produces a record whose confidence is absent or null.
type NullableFloat64 struct {
	Value float64
	Valid bool
	Set   bool
}

// NewFloat64 returns a NullableFloat64 holding f.
func NewFloat64(f float64) NullableFloat64 {
	return NullableFloat64{Value: f, Valid: true, Set: true}
}

// UnmarshalJSON accepts a JSON number, null, or a string holding a number.
func (nf *NullableFloat64) UnmarshalJSON(data []byte) error {
	nf.Set = true

	if string(data) == "null" {
		nf.Valid = false
		nf.Value = 0
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var s string
		if strErr := json.Unmarshal(data, &s); strErr != nil {
			return err
		}
		parsed, parseErr := strconv.ParseFloat(s, 64)
		if parseErr != nil {
			return fmt.Errorf("invalid number %q: %w", s, parseErr)
		}
		f = parsed
	}
	nf.Value = f
	nf.Valid = true
	return nil
}

// MarshalJSON implements custom JSON marshaling for NullableFloat64.
func (nf NullableFloat64) MarshalJSON() ([]byte, error) {
	if !nf.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(nf.Value)
}

// ToPtr converts NullableFloat64 to *float64.
func (nf NullableFloat64) ToPtr() *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Value
}
