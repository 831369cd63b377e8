package utils

import "time"

// BusinessDayCutoffHour is the local hour at which a new business day
// begins. Anything recorded between midnight and 04:59 belongs to the
// previous calendar day's shift.
const BusinessDayCutoffHour = 5

// BusinessDayStart returns midnight of the business day the given moment
// belongs to. A moment before 05:00 local time is attributed to the
// previous calendar day.
func BusinessDayStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	if t.Hour() < BusinessDayCutoffHour {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// BusinessShiftStart returns the exact opening moment (05:00) of the
// business day the given moment belongs to.
func BusinessShiftStart(t time.Time) time.Time {
	day := BusinessDayStart(t)
	return time.Date(day.Year(), day.Month(), day.Day(), BusinessDayCutoffHour, 0, 0, 0, day.Location())
}

// BusinessShiftEnd returns the closing moment of the shift: one
// nanosecond before 05:00 of the following calendar day.
func BusinessShiftEnd(t time.Time) time.Time {
	return BusinessShiftStart(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
