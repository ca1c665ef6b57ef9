package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret    = "test-secret-key-for-jwt"
	handlerTestAccessExp = "1h"
	handlerTestCompanyID = "0190d2c4-7f3a-7b1e-9c41-2f7a1d9b3e10"
)

type fakeAttendanceService struct {
	lastDaily     attendance.DailyAttendanceRequest
	lastBatch     attendance.BatchAttendanceRequest
	lastReconcile attendance.ReconcileRequest
	err           error
}

func (f *fakeAttendanceService) ResolveDaily(ctx context.Context, req attendance.ResolveDailyRequest) (attendance.DailyAttendanceResult, error) {
	if f.err != nil {
		return attendance.DailyAttendanceResult{}, f.err
	}
	return attendance.DailyAttendanceResult{Date: req.Date, EmployeeID: req.EmployeeID, RenderedShift: 480}, nil
}

func (f *fakeAttendanceService) GetDailyAttendance(ctx context.Context, req attendance.DailyAttendanceRequest) (attendance.DailyAttendanceResult, error) {
	f.lastDaily = req
	if f.err != nil {
		return attendance.DailyAttendanceResult{}, f.err
	}
	return attendance.DailyAttendanceResult{Date: req.Date, EmployeeID: req.EmployeeID}, nil
}

func (f *fakeAttendanceService) GetBatchAttendance(ctx context.Context, req attendance.BatchAttendanceRequest) (attendance.BatchAttendanceResponse, error) {
	f.lastBatch = req
	if f.err != nil {
		return attendance.BatchAttendanceResponse{}, f.err
	}
	return attendance.BatchAttendanceResponse{StartDate: req.StartDate, EndDate: req.EndDate, Employees: len(req.EmployeeIDs)}, nil
}

func (f *fakeAttendanceService) ExportBatchAttendance(ctx context.Context, req attendance.BatchAttendanceRequest) ([]byte, error) {
	f.lastBatch = req
	if f.err != nil {
		return nil, f.err
	}
	return []byte("xlsx-bytes"), nil
}

func (f *fakeAttendanceService) Reconcile(ctx context.Context, req attendance.ReconcileRequest) (attendance.ReconcileResponse, error) {
	f.lastReconcile = req
	if f.err != nil {
		return attendance.ReconcileResponse{}, f.err
	}
	return attendance.ReconcileResponse{CompanyID: handlerTestCompanyID, Date: req.Date, Reconciled: 3}, nil
}

func (f *fakeAttendanceService) ReconcileCompany(ctx context.Context, companyID string, date string) (attendance.ReconcileResponse, error) {
	return attendance.ReconcileResponse{CompanyID: companyID, Date: date}, nil
}

type testResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func setupAttendanceRouter(svc attendance.AttendanceService) (http.Handler, jwt.Service) {
	jwtService := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(logger, jwtService, nil, NewAttendanceHandler(svc))
	return router, jwtService
}

func bearer(t *testing.T, jwtService jwt.Service, role auth.Role) string {
	t.Helper()
	token, _, err := jwtService.GenerateAccessToken("user-1", nil, handlerTestCompanyID, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(t *testing.T, h http.Handler, method, target, authorization string, body []byte) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp testResponse
	if w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestAttendanceRoutes_RequireToken(t *testing.T) {
	router, _ := setupAttendanceRouter(&fakeAttendanceService{})

	w, resp := doRequest(t, router, http.MethodGet, "/api/v1/attendance/daily?date=2024-03-04", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)

	w, _ = doRequest(t, router, http.MethodGet, "/api/v1/attendance/daily", "Bearer not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Signed with another key.
	other := jwt.NewJWTService("another-secret", handlerTestAccessExp)
	w, _ = doRequest(t, router, http.MethodGet, "/api/v1/attendance/daily", bearer(t, other, auth.RoleOwner), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAttendanceHandler_Resolve(t *testing.T) {
	svc := &fakeAttendanceService{}
	router, jwtService := setupAttendanceRouter(svc)
	token := bearer(t, jwtService, auth.RoleEmployee)

	body, _ := json.Marshal(map[string]interface{}{
		"employee_id": "emp-1",
		"date":        "2024-03-04",
		"logs":        []map[string]interface{}{{"id": "log-1", "timestamp": "2024-03-04T08:00:00", "punch": 0}},
	})
	w, resp := doRequest(t, router, http.MethodPost, "/api/v1/attendance/resolve", token, body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	var result attendance.DailyAttendanceResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, "2024-03-04", result.Date)
	assert.Equal(t, 480, result.RenderedShift)
	assert.Contains(t, string(resp.Data), `"renderedShift":480`)

	w, resp = doRequest(t, router, http.MethodPost, "/api/v1/attendance/resolve", token, []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
}

func TestAttendanceHandler_Resolve_RejectsNonJSON(t *testing.T) {
	router, jwtService := setupAttendanceRouter(&fakeAttendanceService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/resolve", bytes.NewReader([]byte("date=2024-03-04")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", bearer(t, jwtService, auth.RoleEmployee))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestAttendanceHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{name: "validation", err: validator.ValidationErrors{{Field: "date", Message: "date is required"}}, code: http.StatusUnprocessableEntity, kind: "VALIDATION_ERROR"},
		{name: "malformed record", err: attendance.NewMalformedLogError("log-9", errors.New("missing timestamp")), code: http.StatusBadRequest, kind: "BAD_REQUEST"},
		{name: "employee not found", err: attendance.ErrEmployeeNotFound, code: http.StatusNotFound, kind: "NOT_FOUND"},
		{name: "invalid date", err: attendance.ErrInvalidDate, code: http.StatusBadRequest, kind: "BAD_REQUEST"},
		{name: "unexpected", err: errors.New("db down"), code: http.StatusInternalServerError, kind: "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, jwtService := setupAttendanceRouter(&fakeAttendanceService{err: tt.err})
			w, resp := doRequest(t, router, http.MethodGet, "/api/v1/attendance/daily?date=2024-03-04", bearer(t, jwtService, auth.RoleEmployee), nil)
			assert.Equal(t, tt.code, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.kind, resp.Error.Code)
		})
	}

	router, jwtService := setupAttendanceRouter(&fakeAttendanceService{err: attendance.NewMalformedLogError("log-9", errors.New("missing timestamp"))})
	_, resp := doRequest(t, router, http.MethodGet, "/api/v1/attendance/daily", bearer(t, jwtService, auth.RoleEmployee), nil)
	assert.Equal(t, map[string]string{"kind": "log", "id": "log-9", "reason": "missing timestamp"}, resp.Error.Details)
}

func TestAttendanceHandler_GetDaily(t *testing.T) {
	svc := &fakeAttendanceService{}
	router, jwtService := setupAttendanceRouter(svc)

	w, resp := doRequest(t, router, http.MethodGet, "/api/v1/attendance/daily?employee_id=emp-1&date=2024-03-04", bearer(t, jwtService, auth.RoleEmployee), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, attendance.DailyAttendanceRequest{EmployeeID: "emp-1", Date: "2024-03-04"}, svc.lastDaily)
}

func TestAttendanceHandler_GetBatch(t *testing.T) {
	svc := &fakeAttendanceService{}
	router, jwtService := setupAttendanceRouter(svc)

	target := "/api/v1/attendance/batch?start_date=2024-03-01&end_date=2024-03-31&employee_id=a,b&employee_id=c&employee_id="
	w, resp := doRequest(t, router, http.MethodGet, target, bearer(t, jwtService, auth.RoleManager), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a", "b", "c"}, svc.lastBatch.EmployeeIDs)

	var data attendance.BatchAttendanceResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "2024-03-01", data.StartDate)
	assert.Equal(t, 3, data.Employees)
}

func TestAttendanceHandler_ExportBatch(t *testing.T) {
	svc := &fakeAttendanceService{}
	router, jwtService := setupAttendanceRouter(svc)

	w, _ := doRequest(t, router, http.MethodGet, "/api/v1/attendance/batch/export?start_date=2024-03-01&end_date=2024-03-07", bearer(t, jwtService, auth.RoleManager), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="attendance_2024-03-01_2024-03-07.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "xlsx-bytes", w.Body.String())

	svc.err = attendance.ErrNoEmployeesFound
	w, resp := doRequest(t, router, http.MethodGet, "/api/v1/attendance/batch/export?start_date=2024-03-01&end_date=2024-03-07", bearer(t, jwtService, auth.RoleManager), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestAttendanceHandler_Reconcile(t *testing.T) {
	svc := &fakeAttendanceService{}
	router, jwtService := setupAttendanceRouter(svc)

	w, resp := doRequest(t, router, http.MethodPost, "/api/v1/attendance/reconcile?date=2024-03-04", bearer(t, jwtService, auth.RoleEmployee), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
	assert.Empty(t, svc.lastReconcile.Date)

	for _, role := range []auth.Role{auth.RoleManager, auth.RoleOwner} {
		w, resp = doRequest(t, router, http.MethodPost, "/api/v1/attendance/reconcile?date=2024-03-04", bearer(t, jwtService, role), nil)
		require.Equal(t, http.StatusOK, w.Code, role)
		assert.Equal(t, "Attendance reconciled", resp.Message)
		assert.Equal(t, "2024-03-04", svc.lastReconcile.Date)
	}
}

func TestRouter_Heartbeat(t *testing.T) {
	router, _ := setupAttendanceRouter(&fakeAttendanceService{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
