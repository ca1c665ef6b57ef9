package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Attendance"

var exportHeaders = []string{
	"Date", "Employee ID", "Clock In", "Clock Out",
	"AM In", "AM Out", "PM In", "PM Out",
	"Rendered Shift (min)", "Rendered Undertime (min)", "Rendered Leave (min)", "Rendered Overtime (min)",
	"Paid Shift", "Deducted Undertime", "Paid Leave", "Paid Overtime",
}

// ExportBatchAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ExportBatchAttendance(ctx context.Context, req attendance.BatchAttendanceRequest) ([]byte, error) {
	batch, err := a.GetBatchAttendance(ctx, req)
	if err != nil {
		return nil, err
	}
	return buildWorkbook(batch.Statuses)
}

// buildWorkbook writes one row per (date, employee), ordered by date then
// employee id.
func buildWorkbook(result attendance.BatchResult) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("Failed to close workbook", "error", err)
		}
	}()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, err
	}

	dates := make([]string, 0, len(result))
	for date := range result {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	row := 2
	for _, date := range dates {
		byEmployee := result[date]
		employeeIDs := make([]string, 0, len(byEmployee))
		for id := range byEmployee {
			employeeIDs = append(employeeIDs, id)
		}
		sort.Strings(employeeIDs)

		for _, id := range employeeIDs {
			res := byEmployee[id]
			values := []interface{}{
				date, id, stringOrEmpty(res.ClockIn), stringOrEmpty(res.ClockOut),
				slotCell(res.AmIn), slotCell(res.AmOut), slotCell(res.PmIn), slotCell(res.PmOut),
				res.RenderedShift, res.RenderedUndertime, res.RenderedLeave, res.RenderedOvertime,
				res.PaidShift.StringFixed(2), res.DeductedUndertime.StringFixed(2),
				res.PaidLeave.StringFixed(2), res.PaidOvertime.StringFixed(2),
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "B", 38); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "C", "H", 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// slotCell renders "status HH:MM", or just the status for unfilled slots.
func slotCell(s attendance.SlotStatus) string {
	if !s.Filled() {
		return string(s.Status)
	}
	return fmt.Sprintf("%s %s", s.Status, s.Time.Format("15:04"))
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
