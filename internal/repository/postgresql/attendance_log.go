package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type attendanceLogRepositoryImpl struct {
	db *database.DB
}

// ListByEmployeesAndRange implements attendance.AttendanceLogRepository.
func (a *attendanceLogRepositoryImpl) ListByEmployeesAndRange(ctx context.Context, employeeIDs []string, start, end time.Time, companyID string) ([]attendance.AttendanceLog, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, timestamp, punch
		FROM attendance_logs
		WHERE employee_id = ANY($1)
		  AND company_id = $2
		  AND timestamp >= $3
		  AND timestamp < $4
		ORDER BY employee_id, timestamp, id`

	rows, err := q.Query(ctx, query, employeeIDs, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance logs: %w", err)
	}
	defer rows.Close()

	var logs []attendance.AttendanceLog
	for rows.Next() {
		var log attendance.AttendanceLog
		var punch int16
		if err := rows.Scan(&log.ID, &log.EmployeeID, &log.Timestamp, &punch); err != nil {
			return nil, fmt.Errorf("failed to scan attendance log: %w", err)
		}
		log.Punch = attendance.Punch(punch)
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance logs: %w", err)
	}
	return logs, nil
}

func NewAttendanceLogRepository(db *database.DB) attendance.AttendanceLogRepository {
	return &attendanceLogRepositoryImpl{db: db}
}
