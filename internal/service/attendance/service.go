package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/utils"
	"github.com/google/uuid"
)

type AttendanceServiceImpl struct {
	employeeRepo attendance.EmployeeRepository
	scheduleRepo attendance.WorkScheduleRepository
	logRepo      attendance.AttendanceLogRepository
	leaveRepo    attendance.LeaveRepository
	overtimeRepo attendance.OvertimeRepository
	summaryRepo  attendance.SummaryRepository
	resolver     *Resolver
}

func NewAttendanceService(
	employeeRepo attendance.EmployeeRepository,
	scheduleRepo attendance.WorkScheduleRepository,
	logRepo attendance.AttendanceLogRepository,
	leaveRepo attendance.LeaveRepository,
	overtimeRepo attendance.OvertimeRepository,
	summaryRepo attendance.SummaryRepository,
	resolver *Resolver,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		employeeRepo: employeeRepo,
		scheduleRepo: scheduleRepo,
		logRepo:      logRepo,
		leaveRepo:    leaveRepo,
		overtimeRepo: overtimeRepo,
		summaryRepo:  summaryRepo,
		resolver:     resolver,
	}
}

// ResolveDaily implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ResolveDaily(ctx context.Context, req attendance.ResolveDailyRequest) (attendance.DailyAttendanceResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyAttendanceResult{}, err
	}

	in, err := req.ToInput(a.resolver.Location())
	if err != nil {
		return attendance.DailyAttendanceResult{}, err
	}

	return a.resolver.Resolve(in)
}

// GetDailyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetDailyAttendance(ctx context.Context, req attendance.DailyAttendanceRequest) (attendance.DailyAttendanceResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyAttendanceResult{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.DailyAttendanceResult{}, err
	}

	emp, err := a.employeeRepo.GetByID(ctx, req.EmployeeID, claims.CompanyID)
	if err != nil {
		return attendance.DailyAttendanceResult{}, err
	}

	day, err := utils.ParseDate(req.Date, a.resolver.Location())
	if err != nil {
		return attendance.DailyAttendanceResult{}, fmt.Errorf("%w: %q", attendance.ErrInvalidDate, req.Date)
	}

	result, err := a.resolveRange(ctx, claims.CompanyID, []attendance.Employee{emp}, day, day)
	if err != nil {
		return attendance.DailyAttendanceResult{}, err
	}

	return result[req.Date][emp.ID], nil
}

// GetBatchAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetBatchAttendance(ctx context.Context, req attendance.BatchAttendanceRequest) (attendance.BatchAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.BatchAttendanceResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.BatchAttendanceResponse{}, err
	}

	loc := a.resolver.Location()
	start, err := utils.ParseDate(req.StartDate, loc)
	if err != nil {
		return attendance.BatchAttendanceResponse{}, fmt.Errorf("%w: %q", attendance.ErrInvalidDate, req.StartDate)
	}
	end, err := utils.ParseDate(req.EndDate, loc)
	if err != nil {
		return attendance.BatchAttendanceResponse{}, fmt.Errorf("%w: %q", attendance.ErrInvalidDate, req.EndDate)
	}

	employees, err := a.employeeRepo.ListActive(ctx, claims.CompanyID, req.EmployeeIDs)
	if err != nil {
		return attendance.BatchAttendanceResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}
	if len(employees) == 0 {
		return attendance.BatchAttendanceResponse{}, attendance.ErrNoEmployeesFound
	}

	result, err := a.resolveRange(ctx, claims.CompanyID, employees, start, end)
	if err != nil {
		return attendance.BatchAttendanceResponse{}, err
	}

	return attendance.BatchAttendanceResponse{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Employees: len(employees),
		Statuses:  result,
	}, nil
}

// Reconcile implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Reconcile(ctx context.Context, req attendance.ReconcileRequest) (attendance.ReconcileResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ReconcileResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.ReconcileResponse{}, err
	}
	if !claims.Role.CanReconcile() {
		return attendance.ReconcileResponse{}, auth.ErrManagerAccessRequired
	}

	return a.ReconcileCompany(ctx, claims.CompanyID, req.Date)
}

// ReconcileCompany implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ReconcileCompany(ctx context.Context, companyID string, date string) (attendance.ReconcileResponse, error) {
	day, err := utils.ParseDate(date, a.resolver.Location())
	if err != nil {
		return attendance.ReconcileResponse{}, fmt.Errorf("%w: %q", attendance.ErrInvalidDate, date)
	}

	employees, err := a.employeeRepo.ListActive(ctx, companyID, nil)
	if err != nil {
		return attendance.ReconcileResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	response := attendance.ReconcileResponse{CompanyID: companyID, Date: date}
	if len(employees) == 0 {
		return response, nil
	}

	result, err := a.resolveRange(ctx, companyID, employees, day, day)
	if err != nil {
		return attendance.ReconcileResponse{}, err
	}

	summaries := make([]attendance.AttendanceSummary, 0, len(employees))
	for _, emp := range employees {
		res, ok := result[date][emp.ID]
		if !ok {
			continue
		}
		summaries = append(summaries, newSummary(companyID, emp.ID, day, res))
	}

	if err := a.summaryRepo.BulkUpsert(ctx, summaries); err != nil {
		return attendance.ReconcileResponse{}, fmt.Errorf("failed to store attendance summaries: %w", err)
	}

	slog.Info("Attendance reconciled", "company_id", companyID, "date", date, "count", len(summaries))
	response.Reconciled = len(summaries)
	return response, nil
}

// resolveRange loads every record the resolver needs for employees across
// [start, end] and runs the batch resolution.
func (a *AttendanceServiceImpl) resolveRange(ctx context.Context, companyID string, employees []attendance.Employee, start, end time.Time) (attendance.BatchResult, error) {
	ids := make([]string, len(employees))
	batchSet := make(map[string]struct{})
	for i, emp := range employees {
		ids[i] = emp.ID
		if emp.BatchID != nil {
			batchSet[*emp.BatchID] = struct{}{}
		}
	}
	batchIDs := make([]string, 0, len(batchSet))
	for id := range batchSet {
		batchIDs = append(batchIDs, id)
	}

	rangeEnd := end.AddDate(0, 0, 1)

	schedules, err := a.scheduleRepo.ListByEmployeeIDs(ctx, ids, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work schedules: %w", err)
	}

	batchSchedules := map[string][]attendance.WorkSchedule{}
	if len(batchIDs) > 0 {
		batchSchedules, err = a.scheduleRepo.ListByBatchIDs(ctx, batchIDs, companyID)
		if err != nil {
			return nil, fmt.Errorf("failed to list batch schedules: %w", err)
		}
	}

	logs, err := a.logRepo.ListByEmployeesAndRange(ctx, ids, start, rangeEnd, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance logs: %w", err)
	}

	leaves, err := a.leaveRepo.ListApproved(ctx, ids, start, rangeEnd, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leaves: %w", err)
	}

	overtimes, err := a.overtimeRepo.ListApproved(ctx, ids, start, rangeEnd, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved overtime: %w", err)
	}

	logsByEmployee := make(map[string][]attendance.AttendanceLog)
	for _, l := range logs {
		logsByEmployee[l.EmployeeID] = append(logsByEmployee[l.EmployeeID], l)
	}
	leavesByEmployee := make(map[string][]attendance.LeaveOverride)
	for _, l := range leaves {
		leavesByEmployee[l.EmployeeID] = append(leavesByEmployee[l.EmployeeID], l)
	}
	overtimesByEmployee := make(map[string][]attendance.OvertimeOverride)
	for _, o := range overtimes {
		overtimesByEmployee[o.EmployeeID] = append(overtimesByEmployee[o.EmployeeID], o)
	}

	input := attendance.BatchInput{
		Dates:          utils.DateRange(start, end),
		Employees:      make([]attendance.EmployeeBatchInput, len(employees)),
		BatchSchedules: batchSchedules,
	}
	for i, emp := range employees {
		input.Employees[i] = attendance.EmployeeBatchInput{
			EmployeeID:    emp.ID,
			BatchID:       emp.BatchID,
			RatePerMinute: emp.RatePerMinute,
			Schedules:     schedules[emp.ID],
			Logs:          logsByEmployee[emp.ID],
			Leaves:        leavesByEmployee[emp.ID],
			Overtimes:     overtimesByEmployee[emp.ID],
		}
	}

	result, err := a.resolver.ResolveBatch(ctx, input)
	if err != nil {
		var malformed *attendance.MalformedRecordError
		if errors.As(err, &malformed) {
			slog.Warn("Malformed attendance record", "company_id", companyID, "kind", malformed.Kind, "id", malformed.ID)
		}
		return nil, err
	}
	return result, nil
}

func newSummary(companyID, employeeID string, day time.Time, res attendance.DailyAttendanceResult) attendance.AttendanceSummary {
	return attendance.AttendanceSummary{
		ID:                uuid.Must(uuid.NewV7()).String(),
		EmployeeID:        employeeID,
		CompanyID:         companyID,
		Date:              day,
		AmInStatus:        res.AmIn.Status,
		AmOutStatus:       res.AmOut.Status,
		PmInStatus:        res.PmIn.Status,
		PmOutStatus:       res.PmOut.Status,
		RenderedShift:     res.RenderedShift,
		RenderedUndertime: res.RenderedUndertime,
		RenderedLeave:     res.RenderedLeave,
		RenderedOvertime:  res.RenderedOvertime,
		PaidShift:         res.PaidShift,
		DeductedUndertime: res.DeductedUndertime,
		PaidLeave:         res.PaidLeave,
		PaidOvertime:      res.PaidOvertime,
		Detail:            res,
	}
}
