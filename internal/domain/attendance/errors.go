package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// Input errors
	ErrMalformedRecord      = errors.New("malformed attendance record")
	ErrInvalidDate          = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidDateRange     = errors.New("end_date must not be before start_date")
	ErrDateRangeTooLarge    = errors.New("date range must not exceed 62 days")
	ErrInvalidRatePerMinute = errors.New("rate_per_minute must not be negative")

	// Lookup errors
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrNoEmployeesFound = errors.New("no active employees found")
)

// MalformedRecordError identifies the record that made reconciliation impossible.
type MalformedRecordError struct {
	Kind string // "log", "schedule", "leave", "overtime"
	ID   string
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record %q: %v", e.Kind, e.ID, e.Err)
}

func (e *MalformedRecordError) Unwrap() []error {
	return []error{ErrMalformedRecord, e.Err}
}

func malformed(kind, id string, err error) error {
	return &MalformedRecordError{Kind: kind, ID: id, Err: err}
}

// NewMalformedLogError reports an unusable punch log.
func NewMalformedLogError(id string, err error) error {
	return malformed("log", id, err)
}

// NewMalformedScheduleError reports an unusable work schedule.
func NewMalformedScheduleError(id string, err error) error {
	return malformed("schedule", id, err)
}

// NewMalformedLeaveError reports an unusable leave record.
func NewMalformedLeaveError(id string, err error) error {
	return malformed("leave", id, err)
}

// NewMalformedOvertimeError reports an unusable overtime record.
func NewMalformedOvertimeError(id string, err error) error {
	return malformed("overtime", id, err)
}
