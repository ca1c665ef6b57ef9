package attendance

import (
	"bytes"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportBatchAttendance(t *testing.T) {
	f := newServiceFixture()

	content, err := f.svc.ExportBatchAttendance(claimsContext(t, auth.RoleManager), attendance.BatchAttendanceRequest{
		StartDate: testSunday,
		EndDate:   testMonday,
	})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{exportSheet}, wb.GetSheetList())

	rows, err := wb.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, exportHeaders, rows[0])

	// Sorted by date, then employee id.
	assert.Equal(t, []string{testSunday, testEmpA}, rows[1][:2])
	assert.Equal(t, []string{testSunday, testEmpB}, rows[2][:2])
	assert.Equal(t, []string{testMonday, testEmpA}, rows[3][:2])

	monday := rows[3]
	assert.Equal(t, "08:00", monday[2])
	assert.Equal(t, "ontime 08:03", monday[4])
	assert.Equal(t, "lunch 12:00", monday[5])
	assert.Equal(t, "overtime 17:10", monday[7])
	assert.Equal(t, "480", monday[8])
	assert.Equal(t, "960.00", monday[12])

	assert.Equal(t, "no work", rows[1][4])
}

func TestExportBatchAttendance_PropagatesErrors(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.ExportBatchAttendance(claimsContext(t, auth.RoleManager), attendance.BatchAttendanceRequest{
		StartDate: testMonday,
		EndDate:   testSunday,
	})
	assert.Error(t, err)
}

func TestSlotCell(t *testing.T) {
	assert.Equal(t, "absent", slotCell(attendance.SlotStatus{Status: attendance.StatusAbsent}))

	ts := at(testMonday, 7, 5)
	assert.Equal(t, "ontime 07:05", slotCell(attendance.SlotStatus{Time: &ts, Status: attendance.StatusOntime}))
}
