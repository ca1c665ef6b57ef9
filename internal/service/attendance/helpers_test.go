package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var testLoc = utils.ReferenceZone(8 * time.Hour)

// Monday 2024-03-04 and the Sunday before it.
const (
	testMonday = "2024-03-04"
	testSunday = "2024-03-03"
)

func ptr[T any](v T) *T {
	return &v
}

func newTestResolver() *Resolver {
	// "Today" is well after every test date so lunch outs are final.
	return NewResolver(testLoc, attendance.DefaultGracePeriodMinutes, 4).
		WithClock(func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, testLoc) })
}

func at(date string, hour, minute int) time.Time {
	d, err := utils.ParseDate(date, testLoc)
	if err != nil {
		panic(err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, testLoc)
}

func officeSchedule() attendance.WorkSchedule {
	return attendance.WorkSchedule{
		ID:        "ws-office",
		ClockIn:   ptr("08:00"),
		ClockOut:  ptr("17:00"),
		BreakMin:  ptr(60),
		DaysJSON:  []string{"mon", "tue", "wed", "thu", "fri"},
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, testLoc),
	}
}

func punch(id string, ts time.Time, p attendance.Punch) attendance.AttendanceLog {
	return attendance.AttendanceLog{ID: id, EmployeeID: "emp-1", Timestamp: ts, Punch: p}
}

func mondayLogs() []attendance.AttendanceLog {
	return []attendance.AttendanceLog{
		punch("log-1", at(testMonday, 8, 3), attendance.PunchIn),
		punch("log-2", at(testMonday, 12, 0), attendance.PunchOut),
		punch("log-3", at(testMonday, 13, 0), attendance.PunchIn),
		punch("log-4", at(testMonday, 17, 10), attendance.PunchOut),
	}
}

func assertStatuses(t *testing.T, res attendance.DailyAttendanceResult, amIn, amOut, pmIn, pmOut attendance.Status) {
	t.Helper()
	assert.Equal(t, amIn, res.AmIn.Status, "amIn")
	assert.Equal(t, amOut, res.AmOut.Status, "amOut")
	assert.Equal(t, pmIn, res.PmIn.Status, "pmIn")
	assert.Equal(t, pmOut, res.PmOut.Status, "pmOut")
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "%s: want %s, got %s", field, want, got)
}
