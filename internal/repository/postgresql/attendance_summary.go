package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceSummaryRepositoryImpl struct {
	db *database.DB
}

const upsertSummaryQuery = `
	INSERT INTO attendance_summaries (
		id, company_id, employee_id, date,
		am_in_status, am_out_status, pm_in_status, pm_out_status,
		rendered_shift, rendered_undertime, rendered_leave, rendered_overtime,
		paid_shift, deducted_undertime, paid_leave, paid_overtime,
		detail, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8,
		$9, $10, $11, $12,
		$13::numeric, $14::numeric, $15::numeric, $16::numeric,
		$17, NOW(), NOW()
	)
	ON CONFLICT (employee_id, date) DO UPDATE SET
		am_in_status       = EXCLUDED.am_in_status,
		am_out_status      = EXCLUDED.am_out_status,
		pm_in_status       = EXCLUDED.pm_in_status,
		pm_out_status      = EXCLUDED.pm_out_status,
		rendered_shift     = EXCLUDED.rendered_shift,
		rendered_undertime = EXCLUDED.rendered_undertime,
		rendered_leave     = EXCLUDED.rendered_leave,
		rendered_overtime  = EXCLUDED.rendered_overtime,
		paid_shift         = EXCLUDED.paid_shift,
		deducted_undertime = EXCLUDED.deducted_undertime,
		paid_leave         = EXCLUDED.paid_leave,
		paid_overtime      = EXCLUDED.paid_overtime,
		detail             = EXCLUDED.detail,
		updated_at         = NOW()
	WHERE attendance_summaries.company_id = EXCLUDED.company_id`

// BulkUpsert implements attendance.SummaryRepository.
func (a *attendanceSummaryRepositoryImpl) BulkUpsert(ctx context.Context, summaries []attendance.AttendanceSummary) error {
	if len(summaries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range summaries {
		detail, err := json.Marshal(s.Detail)
		if err != nil {
			return fmt.Errorf("failed to encode summary detail for employee %s: %w", s.EmployeeID, err)
		}
		batch.Queue(upsertSummaryQuery,
			s.ID, s.CompanyID, s.EmployeeID, s.Date,
			string(s.AmInStatus), string(s.AmOutStatus), string(s.PmInStatus), string(s.PmOutStatus),
			s.RenderedShift, s.RenderedUndertime, s.RenderedLeave, s.RenderedOvertime,
			s.PaidShift.String(), s.DeductedUndertime.String(), s.PaidLeave.String(), s.PaidOvertime.String(),
			detail,
		)
	}

	return WithTransaction(ctx, a.db, func(ctx context.Context, tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for i := range summaries {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to upsert summary for employee %s: %w", summaries[i].EmployeeID, err)
			}
		}
		return results.Close()
	})
}

func NewAttendanceSummaryRepository(db *database.DB) attendance.SummaryRepository {
	return &attendanceSummaryRepositoryImpl{db: db}
}
