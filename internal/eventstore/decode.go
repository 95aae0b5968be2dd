package eventstore

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/JonnyWalker81/lifeline/internal/models"
)

// DecodeJSON reads a JSON array of records. Duplicate keys inside a record are
// tracked by models.RawRecord rather than silently resolved.
func DecodeJSON(r io.Reader) ([]models.RawRecord, error) {
	var records []models.RawRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}

// DecodeCSV reads records from CSV with a header row. Header names are
// matched case-insensitively and aliases such as predicted_activity or
// datetime are accepted. An empty cell is treated as null.
func DecodeCSV(r io.Reader) ([]models.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ValidationError{Field: "header", Reason: "CSV input has no header row"}
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		if field, ok := models.CanonicalField(name); ok {
			columns[i] = field
		}
	}

	var records []models.RawRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		records = append(records, recordFromRow(columns, row))
	}

	return records, nil
}

func recordFromRow(columns, row []string) models.RawRecord {
	var rec models.RawRecord
	values := make(map[string]string)
	conflicted := make(map[string]bool)

	for i, field := range columns {
		if field == "" {
			continue
		}
		cell := ""
		if i < len(row) {
			cell = strings.TrimSpace(row[i])
		}

		if prev, seen := values[field]; seen {
			if prev != cell && !conflicted[field] {
				conflicted[field] = true
				rec.Conflicts = append(rec.Conflicts, field)
			}
			continue
		}
		values[field] = cell
	}

	for field, cell := range values {
		switch field {
		case models.FieldTimestamp:
			rec.Timestamp = cellString(cell)
		case models.FieldLabel:
			rec.Label = cellString(cell)
		case models.FieldText:
			rec.Text = cellString(cell)
		case models.FieldConfidence:
			rec.Confidence = models.NullableFloat64{Set: true}
			if cell == "" {
				continue
			}
			f, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				rec.Malformed = append(rec.Malformed, field)
				continue
			}
			rec.Confidence = models.NewFloat64(f)
		}
	}
	sort.Strings(rec.Malformed)

	return rec
}

func cellString(cell string) models.NullableString {
	if cell == "" {
		return models.NullableString{Set: true}
	}
	return models.NewString(cell)
}
