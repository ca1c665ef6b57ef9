package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type workScheduleRepositoryImpl struct {
	db *database.DB
}

// Newest start_date first; the resolver keeps the first open-ended match.
const workScheduleSelect = `
	SELECT
		id,
		COALESCE(employee_id::text, ''),
		batch_id,
		to_char(clock_in, 'HH24:MI:SS'),
		to_char(clock_out, 'HH24:MI:SS'),
		break_min,
		days_json,
		start_date,
		end_date
	FROM work_schedules`

func (w *workScheduleRepositoryImpl) list(ctx context.Context, query string, key func(attendance.WorkSchedule) string, args ...interface{}) (map[string][]attendance.WorkSchedule, error) {
	q := GetQuerier(ctx, w.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query work schedules: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]attendance.WorkSchedule)
	for rows.Next() {
		var s attendance.WorkSchedule
		var daysRaw []byte
		if err := rows.Scan(
			&s.ID,
			&s.EmployeeID,
			&s.BatchID,
			&s.ClockIn,
			&s.ClockOut,
			&s.BreakMin,
			&daysRaw,
			&s.StartDate,
			&s.EndDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan work schedule: %w", err)
		}
		if len(daysRaw) > 0 {
			if err := json.Unmarshal(daysRaw, &s.DaysJSON); err != nil {
				return nil, attendance.NewMalformedScheduleError(s.ID, fmt.Errorf("days_json: %w", err))
			}
		}
		k := key(s)
		result[k] = append(result[k], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work schedules: %w", err)
	}
	return result, nil
}

// ListByEmployeeIDs implements attendance.WorkScheduleRepository.
func (w *workScheduleRepositoryImpl) ListByEmployeeIDs(ctx context.Context, employeeIDs []string, companyID string) (map[string][]attendance.WorkSchedule, error) {
	query := workScheduleSelect + `
		WHERE employee_id = ANY($1) AND company_id = $2 AND deleted_at IS NULL
		ORDER BY start_date DESC, created_at DESC`

	return w.list(ctx, query, func(s attendance.WorkSchedule) string { return s.EmployeeID }, employeeIDs, companyID)
}

// ListByBatchIDs implements attendance.WorkScheduleRepository.
func (w *workScheduleRepositoryImpl) ListByBatchIDs(ctx context.Context, batchIDs []string, companyID string) (map[string][]attendance.WorkSchedule, error) {
	query := workScheduleSelect + `
		WHERE employee_id IS NULL AND batch_id = ANY($1) AND company_id = $2 AND deleted_at IS NULL
		ORDER BY start_date DESC, created_at DESC`

	return w.list(ctx, query, func(s attendance.WorkSchedule) string { return *s.BatchID }, batchIDs, companyID)
}

func NewWorkScheduleRepository(db *database.DB) attendance.WorkScheduleRepository {
	return &workScheduleRepositoryImpl{db: db}
}
