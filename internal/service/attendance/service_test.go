package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCompanyID = "0190d2c4-7f3a-7b1e-9c41-2f7a1d9b3e10"
	testEmpA      = "0190d2c4-7f3a-7b1e-9c41-2f7a1d9b3e11"
	testEmpB      = "0190d2c4-7f3a-7b1e-9c41-2f7a1d9b3e12"
)

type fakeEmployeeRepo struct {
	employees []attendance.Employee
	err       error
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string, companyID string) (attendance.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id && e.CompanyID == companyID {
			return e, nil
		}
	}
	return attendance.Employee{}, attendance.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) ListActive(ctx context.Context, companyID string, ids []string) ([]attendance.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []attendance.Employee
	for _, e := range f.employees {
		if e.CompanyID != companyID {
			continue
		}
		if len(ids) > 0 && !contains(ids, e.ID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEmployeeRepo) ListCompanyIDs(ctx context.Context) ([]string, error) {
	return []string{testCompanyID}, nil
}

type fakeScheduleRepo struct {
	byEmployee map[string][]attendance.WorkSchedule
	byBatch    map[string][]attendance.WorkSchedule
	batchCalls int
}

func (f *fakeScheduleRepo) ListByEmployeeIDs(ctx context.Context, employeeIDs []string, companyID string) (map[string][]attendance.WorkSchedule, error) {
	return f.byEmployee, nil
}

func (f *fakeScheduleRepo) ListByBatchIDs(ctx context.Context, batchIDs []string, companyID string) (map[string][]attendance.WorkSchedule, error) {
	f.batchCalls++
	return f.byBatch, nil
}

type fakeLogRepo struct {
	logs       []attendance.AttendanceLog
	start, end time.Time
}

func (f *fakeLogRepo) ListByEmployeesAndRange(ctx context.Context, employeeIDs []string, start, end time.Time, companyID string) ([]attendance.AttendanceLog, error) {
	f.start, f.end = start, end
	return f.logs, nil
}

type fakeLeaveRepo struct {
	leaves []attendance.LeaveOverride
}

func (f *fakeLeaveRepo) ListApproved(ctx context.Context, employeeIDs []string, start, end time.Time, companyID string) ([]attendance.LeaveOverride, error) {
	return f.leaves, nil
}

type fakeOvertimeRepo struct {
	overtimes []attendance.OvertimeOverride
}

func (f *fakeOvertimeRepo) ListApproved(ctx context.Context, employeeIDs []string, start, end time.Time, companyID string) ([]attendance.OvertimeOverride, error) {
	return f.overtimes, nil
}

type fakeSummaryRepo struct {
	stored []attendance.AttendanceSummary
	err    error
}

func (f *fakeSummaryRepo) BulkUpsert(ctx context.Context, summaries []attendance.AttendanceSummary) error {
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, summaries...)
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type serviceFixture struct {
	employees *fakeEmployeeRepo
	schedules *fakeScheduleRepo
	logs      *fakeLogRepo
	leaves    *fakeLeaveRepo
	overtimes *fakeOvertimeRepo
	summaries *fakeSummaryRepo
	svc       attendance.AttendanceService
}

func newServiceFixture() *serviceFixture {
	office := officeSchedule()
	f := &serviceFixture{
		employees: &fakeEmployeeRepo{employees: []attendance.Employee{
			{ID: testEmpA, CompanyID: testCompanyID, FullName: "Ayu", RatePerMinute: decimal.NewFromInt(2)},
			{ID: testEmpB, CompanyID: testCompanyID, FullName: "Budi", BatchID: ptr("batch-1"), RatePerMinute: decimal.NewFromInt(1)},
		}},
		schedules: &fakeScheduleRepo{
			byEmployee: map[string][]attendance.WorkSchedule{testEmpA: {office}},
			byBatch:    map[string][]attendance.WorkSchedule{"batch-1": {office}},
		},
		logs:      &fakeLogRepo{},
		leaves:    &fakeLeaveRepo{},
		overtimes: &fakeOvertimeRepo{},
		summaries: &fakeSummaryRepo{},
	}
	for _, l := range mondayLogs() {
		l.EmployeeID = testEmpA
		f.logs.logs = append(f.logs.logs, l)
	}
	f.svc = NewAttendanceService(f.employees, f.schedules, f.logs, f.leaves, f.overtimes, f.summaries, newTestResolver())
	return f
}

func claimsContext(t *testing.T, role auth.Role) context.Context {
	t.Helper()
	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := tokenAuth.Encode(map[string]interface{}{
		"user_id":    "user-1",
		"company_id": testCompanyID,
		"role":       string(role),
		"type":       "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func TestResolveDaily(t *testing.T) {
	f := newServiceFixture()

	req := attendance.ResolveDailyRequest{
		EmployeeID:    "emp-1",
		Date:          testMonday,
		RatePerMinute: decimal.RequireFromString("2.5"),
		Schedules: []attendance.WorkScheduleRequest{{
			ID: "ws-1", ClockIn: ptr("08:00"), ClockOut: ptr("17:00"), BreakMin: ptr(60),
			DaysJSON: []string{"mon", "tue", "wed", "thu", "fri"}, StartDate: "2024-01-01",
		}},
		Logs: []attendance.AttendanceLogRequest{
			{ID: "log-4", Timestamp: "2024-03-04T09:10:00Z", Punch: 1},
			{ID: "log-1", Timestamp: "2024-03-04 08:03:00", Punch: 0},
			{ID: "log-2", Timestamp: "2024-03-04T12:00:00+08:00", Punch: 1},
			{ID: "log-3", Timestamp: "2024-03-04T13:00:00", Punch: 0},
		},
	}

	res, err := f.svc.ResolveDaily(context.Background(), req)
	require.NoError(t, err)
	assertStatuses(t, res, attendance.StatusOntime, attendance.StatusLunch, attendance.StatusOntime, attendance.StatusOvertime)
	assert.Equal(t, 480, res.RenderedShift)
	assert.Equal(t, 10, res.RenderedOvertime)
	assertDecimal(t, "1200", res.PaidShift, "paidShift")

	req.Date = "yesterday"
	_, err = f.svc.ResolveDaily(context.Background(), req)
	var validationErr validator.ValidationErrors
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.ToMap(), "date")

	req.Date = testMonday
	req.Logs = append(req.Logs, attendance.AttendanceLogRequest{ID: "log-bad", Timestamp: "04/03/2024 08:00"})
	_, err = f.svc.ResolveDaily(context.Background(), req)
	var malformed *attendance.MalformedRecordError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "log-bad", malformed.ID)
}

func TestGetDailyAttendance(t *testing.T) {
	f := newServiceFixture()
	ctx := claimsContext(t, auth.RoleEmployee)

	res, err := f.svc.GetDailyAttendance(ctx, attendance.DailyAttendanceRequest{EmployeeID: testEmpA, Date: testMonday})
	require.NoError(t, err)
	assert.Equal(t, testEmpA, res.EmployeeID)
	assert.Equal(t, 480, res.RenderedShift)
	assertDecimal(t, "960", res.PaidShift, "paidShift")

	// Logs are fetched for the whole reference-zone day.
	assert.True(t, f.logs.start.Equal(at(testMonday, 0, 0)))
	assert.True(t, f.logs.end.Equal(at("2024-03-05", 0, 0)))

	_, err = f.svc.GetDailyAttendance(ctx, attendance.DailyAttendanceRequest{EmployeeID: "0190d2c4-7f3a-7b1e-9c41-000000000000", Date: testMonday})
	assert.ErrorIs(t, err, attendance.ErrEmployeeNotFound)

	_, err = f.svc.GetDailyAttendance(context.Background(), attendance.DailyAttendanceRequest{EmployeeID: testEmpA, Date: testMonday})
	assert.Error(t, err)
}

func TestGetBatchAttendance(t *testing.T) {
	f := newServiceFixture()
	ctx := claimsContext(t, auth.RoleManager)

	res, err := f.svc.GetBatchAttendance(ctx, attendance.BatchAttendanceRequest{StartDate: testSunday, EndDate: "2024-03-05"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Employees)
	require.Len(t, res.Statuses, 3)

	assert.Equal(t, attendance.StatusNoWork, res.Statuses[testSunday][testEmpA].AmIn.Status)
	assert.Equal(t, attendance.StatusOvertime, res.Statuses[testMonday][testEmpA].PmOut.Status)
	// Budi has no own schedule and falls back to the batch.
	assert.Equal(t, attendance.StatusAbsent, res.Statuses[testMonday][testEmpB].AmIn.Status)
	assert.Equal(t, 480, res.Statuses[testMonday][testEmpB].RenderedUndertime)
	assert.Equal(t, 1, f.schedules.batchCalls)

	res, err = f.svc.GetBatchAttendance(ctx, attendance.BatchAttendanceRequest{StartDate: testMonday, EndDate: testMonday, EmployeeIDs: []string{testEmpA}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Employees)
	assert.Equal(t, 1, f.schedules.batchCalls, "no batch lookup without batch members")

	_, err = f.svc.GetBatchAttendance(ctx, attendance.BatchAttendanceRequest{StartDate: "2024-03-05", EndDate: testMonday})
	assert.Error(t, err)

	_, err = f.svc.GetBatchAttendance(ctx, attendance.BatchAttendanceRequest{StartDate: "2024-01-01", EndDate: "2024-06-01"})
	assert.Error(t, err)

	f.employees.employees = nil
	_, err = f.svc.GetBatchAttendance(ctx, attendance.BatchAttendanceRequest{StartDate: testMonday, EndDate: testMonday})
	assert.ErrorIs(t, err, attendance.ErrNoEmployeesFound)
}

func TestGetBatchAttendance_MalformedRecord(t *testing.T) {
	f := newServiceFixture()
	f.logs.logs = append(f.logs.logs, attendance.AttendanceLog{ID: "log-zero", EmployeeID: testEmpA})

	_, err := f.svc.GetBatchAttendance(claimsContext(t, auth.RoleManager), attendance.BatchAttendanceRequest{StartDate: testMonday, EndDate: testMonday})
	assert.ErrorIs(t, err, attendance.ErrMalformedRecord)
}

func TestReconcile(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.Reconcile(claimsContext(t, auth.RoleEmployee), attendance.ReconcileRequest{Date: testMonday})
	assert.ErrorIs(t, err, auth.ErrManagerAccessRequired)
	assert.Empty(t, f.summaries.stored)

	res, err := f.svc.Reconcile(claimsContext(t, auth.RoleManager), attendance.ReconcileRequest{Date: testMonday})
	require.NoError(t, err)
	assert.Equal(t, testCompanyID, res.CompanyID)
	assert.Equal(t, 2, res.Reconciled)
	require.Len(t, f.summaries.stored, 2)

	for _, s := range f.summaries.stored {
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, testCompanyID, s.CompanyID)
		assert.True(t, s.Date.Equal(at(testMonday, 0, 0)))
		assert.Equal(t, s.Detail.AmIn.Status, s.AmInStatus)
		assert.Equal(t, s.Detail.RenderedShift, s.RenderedShift)
	}
}

func TestReconcileCompany(t *testing.T) {
	f := newServiceFixture()

	f.summaries.err = errors.New("connection reset")
	_, err := f.svc.ReconcileCompany(context.Background(), testCompanyID, testMonday)
	assert.ErrorContains(t, err, "connection reset")

	f.summaries.err = nil
	res, err := f.svc.ReconcileCompany(context.Background(), "other-company", testMonday)
	require.NoError(t, err)
	assert.Zero(t, res.Reconciled)
	assert.Empty(t, f.summaries.stored)

	_, err = f.svc.ReconcileCompany(context.Background(), testCompanyID, "2024-3-4")
	assert.ErrorIs(t, err, attendance.ErrInvalidDate)
}
