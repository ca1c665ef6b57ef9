package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/utils"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// MaxBatchDays bounds the date range of a batch request.
const MaxBatchDays = 62

var validWeekdays = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// NormaliseWeekday lowercases a weekday and cuts it to its three-letter
// abbreviation, so "Monday" and "MON" both become "mon".
func NormaliseWeekday(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if len(d) > 3 {
		d = d[:3]
	}
	return d
}

// ========================================
// STATELESS RESOLVE DTOs
// ========================================

type WorkScheduleRequest struct {
	ID        string   `json:"id"`
	ClockIn   *string  `json:"clock_in"`
	ClockOut  *string  `json:"clock_out"`
	BreakMin  *int     `json:"break_min"`
	DaysJSON  []string `json:"days_json"`
	StartDate string   `json:"start_date"`
	EndDate   *string  `json:"end_date,omitempty"`
}

type AttendanceLogRequest struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Punch     int    `json:"punch"`
}

type LeaveOverrideRequest struct {
	ID             string `json:"id"`
	StartTimestamp string `json:"start_timestamp"`
	EndTimestamp   string `json:"end_timestamp"`
}

type OvertimeOverrideRequest struct {
	ID            string `json:"id"`
	RequestedMins int    `json:"requested_mins"`
	Timestamp     string `json:"timestamp"`
}

// ResolveDailyRequest carries already-fetched records for one employee and date.
type ResolveDailyRequest struct {
	EmployeeID    string                   `json:"employee_id"`
	Date          string                   `json:"date"`
	RatePerMinute decimal.Decimal          `json:"rate_per_minute"`
	Schedules     []WorkScheduleRequest    `json:"schedules"`
	Logs          []AttendanceLogRequest   `json:"logs"`
	OnLeave       *LeaveOverrideRequest    `json:"on_leave,omitempty"`
	Overtime      *OvertimeOverrideRequest `json:"overtime,omitempty"`
}

func (r *ResolveDailyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if r.RatePerMinute.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "rate_per_minute",
			Message: "rate_per_minute must not be negative",
		})
	}

	for i, s := range r.Schedules {
		field := fmt.Sprintf("schedules[%d]", i)

		start, validStart := validator.IsValidDate(s.StartDate)
		if !validStart {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
		if s.EndDate != nil {
			end, validEnd := validator.IsValidDate(*s.EndDate)
			if !validEnd {
				errs = append(errs, validator.ValidationError{
					Field:   field + ".end_date",
					Message: "end_date must be in YYYY-MM-DD format",
				})
			} else if validStart && end.Before(start) {
				errs = append(errs, validator.ValidationError{
					Field:   field + ".end_date",
					Message: "end_date must not be before start_date",
				})
			}
		}
		if s.ClockIn != nil && !validator.IsValidClock(*s.ClockIn) {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".clock_in",
				Message: "clock_in must be in HH:MM or HH:MM:SS format",
			})
		}
		if s.ClockOut != nil && !validator.IsValidClock(*s.ClockOut) {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".clock_out",
				Message: "clock_out must be in HH:MM or HH:MM:SS format",
			})
		}
		for _, d := range s.DaysJSON {
			if !validator.IsInSlice(NormaliseWeekday(d), validWeekdays) {
				errs = append(errs, validator.ValidationError{
					Field:   field + ".days_json",
					Message: "days_json must only contain: mon, tue, wed, thu, fri, sat, sun",
				})
				break
			}
		}
	}

	if r.OnLeave != nil && validator.IsEmpty(r.OnLeave.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "on_leave.id",
			Message: "on_leave.id is required",
		})
	}

	if r.Overtime != nil {
		if validator.IsEmpty(r.Overtime.ID) {
			errs = append(errs, validator.ValidationError{
				Field:   "overtime.id",
				Message: "overtime.id is required",
			})
		}
		if r.Overtime.RequestedMins < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "overtime.requested_mins",
				Message: "requested_mins must be a non-negative number",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ToInput converts the request into resolver input with every timestamp in
// loc. Unparseable timestamps are reported against the record's id.
func (r *ResolveDailyRequest) ToInput(loc *time.Location) (DailyInput, error) {
	in := DailyInput{
		EmployeeID:    r.EmployeeID,
		Date:          r.Date,
		RatePerMinute: r.RatePerMinute,
	}

	for _, s := range r.Schedules {
		start, err := utils.ParseDate(s.StartDate, loc)
		if err != nil {
			return DailyInput{}, NewMalformedScheduleError(s.ID, fmt.Errorf("start_date: %w", err))
		}
		schedule := WorkSchedule{
			ID:         s.ID,
			EmployeeID: r.EmployeeID,
			ClockIn:    s.ClockIn,
			ClockOut:   s.ClockOut,
			BreakMin:   s.BreakMin,
			DaysJSON:   s.DaysJSON,
			StartDate:  start,
		}
		if s.EndDate != nil {
			end, err := utils.ParseDate(*s.EndDate, loc)
			if err != nil {
				return DailyInput{}, NewMalformedScheduleError(s.ID, fmt.Errorf("end_date: %w", err))
			}
			schedule.EndDate = &end
		}
		in.Schedules = append(in.Schedules, schedule)
	}

	for _, l := range r.Logs {
		ts, err := utils.ParseTimestamp(l.Timestamp, loc)
		if err != nil {
			return DailyInput{}, NewMalformedLogError(l.ID, err)
		}
		in.Logs = append(in.Logs, AttendanceLog{
			ID:         l.ID,
			EmployeeID: r.EmployeeID,
			Timestamp:  ts,
			Punch:      Punch(l.Punch),
		})
	}

	if r.OnLeave != nil {
		start, err := utils.ParseTimestamp(r.OnLeave.StartTimestamp, loc)
		if err != nil {
			return DailyInput{}, NewMalformedLeaveError(r.OnLeave.ID, fmt.Errorf("start_timestamp: %w", err))
		}
		end, err := utils.ParseTimestamp(r.OnLeave.EndTimestamp, loc)
		if err != nil {
			return DailyInput{}, NewMalformedLeaveError(r.OnLeave.ID, fmt.Errorf("end_timestamp: %w", err))
		}
		in.Leave = &LeaveOverride{
			ID:             r.OnLeave.ID,
			EmployeeID:     r.EmployeeID,
			StartTimestamp: start,
			EndTimestamp:   end,
		}
	}

	if r.Overtime != nil {
		ts, err := utils.ParseTimestamp(r.Overtime.Timestamp, loc)
		if err != nil {
			return DailyInput{}, NewMalformedOvertimeError(r.Overtime.ID, err)
		}
		in.Overtime = &OvertimeOverride{
			ID:            r.Overtime.ID,
			EmployeeID:    r.EmployeeID,
			RequestedMins: r.Overtime.RequestedMins,
			Timestamp:     ts,
		}
	}

	return in, nil
}

// ========================================
// STORED ATTENDANCE DTOs
// ========================================

type DailyAttendanceRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"` // YYYY-MM-DD
}

func (r *DailyAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type BatchAttendanceRequest struct {
	StartDate   string   `json:"start_date"` // YYYY-MM-DD
	EndDate     string   `json:"end_date"`   // YYYY-MM-DD
	EmployeeIDs []string `json:"employee_ids,omitempty"`
}

func (r *BatchAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	start, validStart := validator.IsValidDate(r.StartDate)
	if !validStart {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	end, validEnd := validator.IsValidDate(r.EndDate)
	if !validEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if validStart && validEnd {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: ErrInvalidDateRange.Error(),
			})
		} else if int(end.Sub(start).Hours()/24)+1 > MaxBatchDays {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: ErrDateRangeTooLarge.Error(),
			})
		}
	}

	for _, id := range r.EmployeeIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "employee_id",
				Message: fmt.Sprintf("employee_id %q must be a valid UUID", id),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type BatchAttendanceResponse struct {
	StartDate string      `json:"start_date"`
	EndDate   string      `json:"end_date"`
	Employees int         `json:"employees"`
	Statuses  BatchResult `json:"statuses"`
}

type ReconcileRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
}

func (r *ReconcileRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ReconcileResponse struct {
	CompanyID  string `json:"company_id"`
	Date       string `json:"date"`
	Reconciled int    `json:"reconciled"`
}
