package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Punch is the direction of a clock event recorded by the terminal.
type Punch int

const (
	PunchIn  Punch = 0
	PunchOut Punch = 1
)

func (p Punch) Valid() bool {
	return p == PunchIn || p == PunchOut
}

// Status is the classification of one attendance slot.
type Status string

const (
	StatusOntime      Status = "ontime"
	StatusLate        Status = "late"
	StatusAbsent      Status = "absent"
	StatusNoBreak     Status = "no break"
	StatusLunch       Status = "lunch"
	StatusEarlyOut    Status = "early-out"
	StatusOvertime    Status = "overtime"
	StatusOnLeave     Status = "on leave"
	StatusUnscheduled Status = "unscheduled"
	StatusNoWork      Status = "no work"
)

// DefaultGracePeriodMinutes is the tolerance before a punch is late or early.
const DefaultGracePeriodMinutes = 5

// WorkSchedule is an employee's assigned work pattern for a date range.
// ClockIn and ClockOut are time-of-day strings ("HH:MM" or "HH:MM:SS").
type WorkSchedule struct {
	ID         string
	EmployeeID string
	BatchID    *string
	ClockIn    *string
	ClockOut   *string
	BreakMin   *int
	DaysJSON   []string // mon, tue, wed, thu, fri, sat, sun
	StartDate  time.Time
	EndDate    *time.Time // nil = open-ended
}

// AttendanceLog is one punch event.
type AttendanceLog struct {
	ID         string
	EmployeeID string
	Timestamp  time.Time
	Punch      Punch
}

// LeaveOverride is an approved leave covering part of (or the whole of) a day.
type LeaveOverride struct {
	ID             string
	EmployeeID     string
	StartTimestamp time.Time
	EndTimestamp   time.Time
}

// OvertimeOverride is an approved overtime request.
type OvertimeOverride struct {
	ID            string
	EmployeeID    string
	RequestedMins int
	Timestamp     time.Time
}

// Employee carries the fields the reconciliation needs from the employee master.
type Employee struct {
	ID            string
	CompanyID     string
	FullName      string
	BatchID       *string
	RatePerMinute decimal.Decimal
}

// SlotStatus is one of the four daily checkpoints.
type SlotStatus struct {
	ID     *string    `json:"id"`
	Time   *time.Time `json:"time"`
	Status Status     `json:"status"`
}

// Filled reports whether the slot is backed by a timestamp.
func (s SlotStatus) Filled() bool {
	return s.Time != nil
}

// Slots holds the four checkpoints of a day.
type Slots struct {
	AmIn  SlotStatus
	AmOut SlotStatus
	PmIn  SlotStatus
	PmOut SlotStatus
}

// UniformSlots returns four empty slots carrying the same status.
func UniformSlots(status Status) Slots {
	s := SlotStatus{Status: status}
	return Slots{AmIn: s, AmOut: s, PmIn: s, PmOut: s}
}

// DailyAttendanceResult is the reconciled attendance of one employee on one date.
type DailyAttendanceResult struct {
	Date       string `json:"date"`
	EmployeeID string `json:"employeeId,omitempty"`

	AmIn  SlotStatus `json:"amIn"`
	AmOut SlotStatus `json:"amOut"`
	PmIn  SlotStatus `json:"pmIn"`
	PmOut SlotStatus `json:"pmOut"`

	ClockIn  *string `json:"clockIn"`
	ClockOut *string `json:"clockOut"`

	RenderedShift     int `json:"renderedShift"`
	RenderedUndertime int `json:"renderedUndertime"`
	RenderedLeave     int `json:"renderedLeave"`
	RenderedOvertime  int `json:"renderedOvertime"` // signed, negative when leaving early

	PaidShift         decimal.Decimal `json:"paidShift"`
	DeductedUndertime decimal.Decimal `json:"deductedUndertime"`
	PaidLeave         decimal.Decimal `json:"paidLeave"`
	PaidOvertime      decimal.Decimal `json:"paidOvertime"`
}

// Slots returns the four checkpoints of the result.
func (r DailyAttendanceResult) Slots() Slots {
	return Slots{AmIn: r.AmIn, AmOut: r.AmOut, PmIn: r.PmIn, PmOut: r.PmOut}
}

// DailyInput is everything the resolver needs for one (employee, date) pair.
type DailyInput struct {
	EmployeeID    string
	Date          string // YYYY-MM-DD
	Schedules     []WorkSchedule
	Logs          []AttendanceLog
	RatePerMinute decimal.Decimal
	Leave         *LeaveOverride
	Overtime      *OvertimeOverride
}

// EmployeeBatchInput is one employee's records over a batch date range.
type EmployeeBatchInput struct {
	EmployeeID    string
	BatchID       *string
	RatePerMinute decimal.Decimal
	Schedules     []WorkSchedule
	Logs          []AttendanceLog
	Leaves        []LeaveOverride
	Overtimes     []OvertimeOverride
}

// BatchInput fans the resolver out over dates x employees.
// BatchSchedules is keyed by batch id and is consulted when an employee's
// own schedules match nothing for a date.
type BatchInput struct {
	Dates          []string
	Employees      []EmployeeBatchInput
	BatchSchedules map[string][]WorkSchedule
}

// BatchResult maps date -> employee id -> result.
type BatchResult map[string]map[string]DailyAttendanceResult

// AttendanceSummary is the persisted form of a DailyAttendanceResult.
type AttendanceSummary struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Date       time.Time

	AmInStatus  Status
	AmOutStatus Status
	PmInStatus  Status
	PmOutStatus Status

	RenderedShift     int
	RenderedUndertime int
	RenderedLeave     int
	RenderedOvertime  int

	PaidShift         decimal.Decimal
	DeductedUndertime decimal.Decimal
	PaidLeave         decimal.Decimal
	PaidOvertime      decimal.Decimal

	Detail DailyAttendanceResult // stored as JSONB

	CreatedAt time.Time
	UpdatedAt time.Time
}
