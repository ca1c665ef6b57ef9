package attendance

import "github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"

// FillGaps labels the slots classify left without a punch. The rules run in a
// fixed order and each one sees the slots as already filled by the previous
// rules. A gap is "no break" only when a punch on the other side of the break
// shows the employee was at work.
func FillGaps(s attendance.Slots) attendance.Slots {
	if !s.AmIn.Filled() {
		s.AmIn.Status = attendance.StatusAbsent
	}

	if !s.AmOut.Filled() {
		if !s.AmIn.Filled() || !s.PmOut.Filled() {
			s.AmOut.Status = attendance.StatusAbsent
		} else {
			s.AmOut.Status = attendance.StatusNoBreak
		}
	}

	if !s.PmIn.Filled() {
		if !s.AmIn.Filled() {
			s.PmIn.Status = attendance.StatusAbsent
		} else {
			s.PmIn.Status = attendance.StatusNoBreak
		}
	}

	if !s.PmOut.Filled() {
		s.PmOut.Status = attendance.StatusAbsent
	}

	return s
}
