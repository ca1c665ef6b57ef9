package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/utils"
)

type AttendanceJobs struct {
	attendanceSvc attendance.AttendanceService
	employeeRepo  attendance.EmployeeRepository
	loc           *time.Location
	runHour       int
	interval      time.Duration
	now           func() time.Time

	mu          sync.Mutex
	lastRunDate string
}

func NewAttendanceJobs(
	attendanceSvc attendance.AttendanceService,
	employeeRepo attendance.EmployeeRepository,
	loc *time.Location,
	runHour int,
	interval time.Duration,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		employeeRepo:  employeeRepo,
		loc:           loc,
		runHour:       runHour,
		interval:      interval,
		now:           time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("reconcile_previous_day", j.interval, j.ReconcilePreviousDay)
}

// ReconcilePreviousDay stores yesterday's summaries for every company. It only
// acts during runHour in the reference zone and at most once per day.
func (j *AttendanceJobs) ReconcilePreviousDay(ctx context.Context) error {
	now := j.now().In(j.loc)
	if now.Hour() != j.runHour {
		return nil
	}

	today := now.Format(utils.DateLayout)
	j.mu.Lock()
	if j.lastRunDate == today {
		j.mu.Unlock()
		return nil
	}
	j.mu.Unlock()

	date := utils.DateOnly(now, j.loc).AddDate(0, 0, -1).Format(utils.DateLayout)
	slog.Info("Cron: Starting attendance reconciliation", "date", date)

	companyIDs, err := j.employeeRepo.ListCompanyIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	reconciled, failed := 0, 0
	for _, companyID := range companyIDs {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := j.attendanceSvc.ReconcileCompany(ctx, companyID, date)
		if err != nil {
			slog.Error("Cron: Failed to reconcile company attendance",
				"company_id", companyID,
				"date", date,
				"error", err)
			failed++
			continue
		}
		reconciled += res.Reconciled
	}

	if failed == 0 {
		j.mu.Lock()
		j.lastRunDate = today
		j.mu.Unlock()
	}

	slog.Info("Cron: Attendance reconciliation finished",
		"date", date,
		"companies", len(companyIDs),
		"failed", failed,
		"summaries", reconciled)

	if failed > 0 {
		return fmt.Errorf("reconciliation failed for %d of %d companies", failed, len(companyIDs))
	}
	return nil
}
