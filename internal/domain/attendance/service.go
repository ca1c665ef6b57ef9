package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance reconciliation
type AttendanceService interface {
	// ResolveDaily reconciles records supplied by the caller, without storage
	ResolveDaily(ctx context.Context, req ResolveDailyRequest) (DailyAttendanceResult, error)

	// GetDailyAttendance fetches one employee's records for a date and reconciles them
	GetDailyAttendance(ctx context.Context, req DailyAttendanceRequest) (DailyAttendanceResult, error)

	// GetBatchAttendance reconciles every (date, employee) pair in a range
	GetBatchAttendance(ctx context.Context, req BatchAttendanceRequest) (BatchAttendanceResponse, error)

	// ExportBatchAttendance renders GetBatchAttendance as an XLSX workbook
	ExportBatchAttendance(ctx context.Context, req BatchAttendanceRequest) ([]byte, error)

	// Reconcile resolves a date for the caller's company and stores the summaries
	Reconcile(ctx context.Context, req ReconcileRequest) (ReconcileResponse, error)

	// ReconcileCompany is Reconcile without request claims, used by the nightly job
	ReconcileCompany(ctx context.Context, companyID string, date string) (ReconcileResponse, error)
}
