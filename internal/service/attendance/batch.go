package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// ResolveBatch runs Resolve once per (date, employee) pair. Pairs are
// independent and run concurrently; logs are grouped by their date in the
// reference zone first.
func (r *Resolver) ResolveBatch(ctx context.Context, in attendance.BatchInput) (attendance.BatchResult, error) {
	days := make([]time.Time, len(in.Dates))
	for i, date := range in.Dates {
		day, err := utils.ParseDate(date, r.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", attendance.ErrInvalidDate, date)
		}
		days[i] = day
	}

	logsByDate := make([]map[string][]attendance.AttendanceLog, len(in.Employees))
	for i, emp := range in.Employees {
		grouped, err := r.groupLogsByDate(emp.Logs)
		if err != nil {
			return nil, fmt.Errorf("employee %s: %w", emp.EmployeeID, err)
		}
		logsByDate[i] = grouped
	}

	nEmployees := len(in.Employees)
	results := make([]attendance.DailyAttendanceResult, len(days)*nEmployees)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for di, day := range days {
		for ei := range in.Employees {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				emp := &in.Employees[ei]
				date := day.Format(utils.DateLayout)
				input := attendance.DailyInput{
					EmployeeID:    emp.EmployeeID,
					Date:          date,
					Schedules:     schedulesFor(*emp, in.BatchSchedules, day),
					Logs:          logsByDate[ei][date],
					RatePerMinute: emp.RatePerMinute,
					Leave:         r.leaveOn(emp.Leaves, day),
					Overtime:      r.overtimeOn(emp.Overtimes, day),
				}

				res, err := r.Resolve(input)
				if err != nil {
					return fmt.Errorf("employee %s on %s: %w", emp.EmployeeID, date, err)
				}
				results[di*nEmployees+ei] = res
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(attendance.BatchResult, len(days))
	for di, day := range days {
		date := day.Format(utils.DateLayout)
		byEmployee := make(map[string]attendance.DailyAttendanceResult, nEmployees)
		for ei, emp := range in.Employees {
			byEmployee[emp.EmployeeID] = results[di*nEmployees+ei]
		}
		out[date] = byEmployee
	}
	return out, nil
}

func (r *Resolver) groupLogsByDate(logs []attendance.AttendanceLog) (map[string][]attendance.AttendanceLog, error) {
	grouped := make(map[string][]attendance.AttendanceLog)
	for _, log := range logs {
		if err := validateLog(log); err != nil {
			return nil, err
		}
		date := log.Timestamp.In(r.loc).Format(utils.DateLayout)
		grouped[date] = append(grouped[date], log)
	}
	return grouped, nil
}

// schedulesFor prefers the employee's own assignments and falls back to the
// schedules of the employee's batch.
func schedulesFor(emp attendance.EmployeeBatchInput, batchSchedules map[string][]attendance.WorkSchedule, day time.Time) []attendance.WorkSchedule {
	if SelectSchedule(emp.Schedules, day) != nil || emp.BatchID == nil {
		return emp.Schedules
	}
	return batchSchedules[*emp.BatchID]
}

// leaveOn returns the first leave overlapping day.
func (r *Resolver) leaveOn(leaves []attendance.LeaveOverride, day time.Time) *attendance.LeaveOverride {
	next := day.AddDate(0, 0, 1)
	for i := range leaves {
		l := &leaves[i]
		if l.StartTimestamp.IsZero() || l.EndTimestamp.IsZero() {
			// Let Resolve report it.
			return l
		}
		if l.StartTimestamp.Before(next) && l.EndTimestamp.After(day) {
			return l
		}
	}
	return nil
}

// overtimeOn returns the first overtime request dated day.
func (r *Resolver) overtimeOn(overtimes []attendance.OvertimeOverride, day time.Time) *attendance.OvertimeOverride {
	for i := range overtimes {
		o := &overtimes[i]
		if utils.DateOnly(o.Timestamp, r.loc).Equal(day) {
			return o
		}
	}
	return nil
}
