package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidReportID indicates the id is not a UUID at all
	ErrInvalidReportID = errors.New("invalid report id")
	// ErrNotUUIDv7 indicates the id is a UUID of another version
	ErrNotUUIDv7 = errors.New("report id must be a UUIDv7")
	// ErrFutureTimestamp indicates the id claims to be created in the future
	ErrFutureTimestamp = errors.New("report id timestamp is in the future")
)

// maxClockSkew is how far ahead of the local clock a report id may be.
const maxClockSkew = time.Minute

// NewReportID returns a time-ordered id for a new report.
func NewReportID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate report id: %w", err)
	}
	return id.String(), nil
}

// ValidateReportID checks that id could have been issued by NewReportID.
func ValidateReportID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReportID, err)
	}

	if parsed.Version() != 7 {
		return fmt.Errorf("%w: got version %d", ErrNotUUIDv7, parsed.Version())
	}

	created := ReportIDTime(id)
	if created.After(time.Now().Add(maxClockSkew)) {
		return fmt.Errorf("%w: %s", ErrFutureTimestamp, created.Format(time.RFC3339))
	}

	return nil
}

// ReportIDTime returns the creation time embedded in a report id, or the
// zero time if id does not parse.
func ReportIDTime(id string) time.Time {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return time.Time{}
	}
	sec, nsec := parsed.Time().UnixTime()
	return time.Unix(sec, nsec)
}
