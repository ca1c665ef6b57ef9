package attendance

import (
	"context"
	"time"
)

// All repository methods take companyID to prevent cross-company data access.
// Read repositories return plain records; the resolver never touches storage.

type EmployeeRepository interface {
	// GetByID returns ErrEmployeeNotFound when the employee does not exist.
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)

	// ListActive returns active employees, optionally restricted to ids.
	ListActive(ctx context.Context, companyID string, ids []string) ([]Employee, error)

	// ListCompanyIDs returns every company that has active employees.
	ListCompanyIDs(ctx context.Context) ([]string, error)
}

type WorkScheduleRepository interface {
	// ListByEmployeeIDs returns schedules per employee, newest start_date first.
	ListByEmployeeIDs(ctx context.Context, employeeIDs []string, companyID string) (map[string][]WorkSchedule, error)

	// ListByBatchIDs returns batch-wide schedules per batch, newest start_date first.
	ListByBatchIDs(ctx context.Context, batchIDs []string, companyID string) (map[string][]WorkSchedule, error)
}

type AttendanceLogRepository interface {
	// ListByEmployeesAndRange returns punches with start <= timestamp < end.
	ListByEmployeesAndRange(ctx context.Context, employeeIDs []string, start, end time.Time, companyID string) ([]AttendanceLog, error)
}

type LeaveRepository interface {
	// ListApproved returns approved leaves overlapping [start, end).
	ListApproved(ctx context.Context, employeeIDs []string, start, end time.Time, companyID string) ([]LeaveOverride, error)
}

type OvertimeRepository interface {
	// ListApproved returns approved overtime requests dated within [start, end).
	ListApproved(ctx context.Context, employeeIDs []string, start, end time.Time, companyID string) ([]OvertimeOverride, error)
}

type SummaryRepository interface {
	// BulkUpsert stores one row per (employee, date), replacing earlier runs.
	BulkUpsert(ctx context.Context, summaries []AttendanceSummary) error
}
