// Package scoring fuses a wind forecast with tide predictions and ranks the
// resulting two-hour sailing sessions.
//
// Everything in this package is pure: no I/O, no clocks other than the one
// injected into Engine, and no errors. Samples that do not qualify are simply
// dropped.
package scoring

import "time"

// IsSummerTime approximates whether daylight saving time applies in the given
// month (April to September).
func IsSummerTime(month time.Month) bool {
	return month >= time.April && month <= time.September
}

// DaylightWindow returns the inclusive local hour range in which sessions may
// start for the given month.
func DaylightWindow(month time.Month, dst bool) (startHour, endHour int) {
	switch {
	case month >= time.May && month <= time.August:
		if dst {
			return 7, 21
		}
		return 7, 20
	case month >= time.March && month <= time.April, month >= time.September && month <= time.October:
		if dst {
			return 8, 20
		}
		return 8, 19
	default:
		return 9, 18
	}
}

// InDaylight reports whether t, already converted to the spot's local time,
// falls inside the navigable window for its month.
func InDaylight(t time.Time) bool {
	start, end := DaylightWindow(t.Month(), IsSummerTime(t.Month()))
	hour := t.Hour()
	return hour >= start && hour <= end
}
