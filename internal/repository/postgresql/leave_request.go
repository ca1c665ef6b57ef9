package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRepositoryImpl struct {
	db *database.DB
}

// ListApproved implements attendance.LeaveRepository.
func (l *leaveRepositoryImpl) ListApproved(ctx context.Context, employeeIDs []string, start, end time.Time, companyID string) ([]attendance.LeaveOverride, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		SELECT id, employee_id, start_timestamp, end_timestamp
		FROM leave_requests
		WHERE employee_id = ANY($1)
		  AND company_id = $2
		  AND status = 'approved'
		  AND start_timestamp < $4
		  AND end_timestamp > $3
		ORDER BY employee_id, start_timestamp`

	rows, err := q.Query(ctx, query, employeeIDs, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved leaves: %w", err)
	}

	leaves, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (attendance.LeaveOverride, error) {
		var leave attendance.LeaveOverride
		err := row.Scan(&leave.ID, &leave.EmployeeID, &leave.StartTimestamp, &leave.EndTimestamp)
		return leave, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan approved leaves: %w", err)
	}
	return leaves, nil
}

func NewLeaveRepository(db *database.DB) attendance.LeaveRepository {
	return &leaveRepositoryImpl{db: db}
}
