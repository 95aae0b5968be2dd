package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// uuidV7At builds a UUIDv7 whose 48-bit millisecond prefix encodes t.
func uuidV7At(t time.Time) uuid.UUID {
	var id uuid.UUID
	ms := uint64(t.UnixMilli())
	for i := 0; i < 6; i++ {
		id[i] = byte(ms >> (40 - 8*i))
	}
	id[6] = 0x70
	id[8] = 0x80
	id[15] = 0x01
	return id
}

func TestNewReportID(t *testing.T) {
	id, err := NewReportID()
	if err != nil {
		t.Fatalf("NewReportID error = %v", err)
	}
	if err := ValidateReportID(id); err != nil {
		t.Errorf("ValidateReportID(%s) = %v, want nil", id, err)
	}

	diff := time.Since(ReportIDTime(id))
	if diff < -time.Second || diff > time.Second {
		t.Errorf("embedded time is %v away from now", diff)
	}
}

func TestValidateReportID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"past v7", uuidV7At(time.Now().Add(-24 * time.Hour)).String(), nil},
		{"slightly ahead", uuidV7At(time.Now().Add(30 * time.Second)).String(), nil},
		{"far future", uuidV7At(time.Now().Add(5 * time.Minute)).String(), ErrFutureTimestamp},
		{"v4", uuid.New().String(), ErrNotUUIDv7},
		{"garbage", "not-a-uuid", ErrInvalidReportID},
		{"empty", "", ErrInvalidReportID},
		{"truncated", "019471a0-0000-7000-8000-", ErrInvalidReportID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReportID(tt.id)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateReportID(%q) = %v, want nil", tt.id, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateReportID(%q) = %v, want %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestReportIDTime(t *testing.T) {
	at := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	if got := ReportIDTime(uuidV7At(at).String()); got.UnixMilli() != at.UnixMilli() {
		t.Errorf("ReportIDTime = %v, want %v", got, at)
	}
	if got := ReportIDTime("not-a-uuid"); !got.IsZero() {
		t.Errorf("ReportIDTime(invalid) = %v, want zero", got)
	}
}
