package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type overtimeRepositoryImpl struct {
	db *database.DB
}

// ListApproved implements attendance.OvertimeRepository.
func (o *overtimeRepositoryImpl) ListApproved(ctx context.Context, employeeIDs []string, start, end time.Time, companyID string) ([]attendance.OvertimeOverride, error) {
	q := GetQuerier(ctx, o.db)

	query := `
		SELECT id, employee_id, requested_mins, timestamp
		FROM overtime_requests
		WHERE employee_id = ANY($1)
		  AND company_id = $2
		  AND status = 'approved'
		  AND timestamp >= $3
		  AND timestamp < $4
		ORDER BY employee_id, timestamp`

	rows, err := q.Query(ctx, query, employeeIDs, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved overtime: %w", err)
	}

	overtimes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (attendance.OvertimeOverride, error) {
		var ot attendance.OvertimeOverride
		err := row.Scan(&ot.ID, &ot.EmployeeID, &ot.RequestedMins, &ot.Timestamp)
		return ot, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan approved overtime: %w", err)
	}
	return overtimes, nil
}

func NewOvertimeRepository(db *database.DB) attendance.OvertimeRepository {
	return &overtimeRepositoryImpl{db: db}
}
