package passes

import (
	"fmt"
	"time"
)

// Symbolic visit-date selections.
const (
	DateToday    = "today"
	DateTomorrow = "tomorrow"
	DateDayAfter = "day_after"
)

// Symbolic start-of-day selections. StartNow is only offered when the
// visit date is today.
const (
	StartNow       = "now"
	StartMorning   = "morning"
	StartAfternoon = "afternoon"
	StartEvening   = "evening"
)

// Duration selections.
const (
	Duration1h     = "1h"
	Duration2h     = "2h"
	Duration4h     = "4h"
	Duration8h     = "8h"
	DurationAllDay = "allday"
)

// All-day passes cover a fixed civil-time range instead of adding
// hours to a start.
const (
	allDayStartHour = 7
	allDayEndHour   = 23
)

var startHours = map[string]int{
	StartMorning:   8,
	StartAfternoon: 12,
	StartEvening:   17,
}

var durationHours = map[string]int{
	Duration1h: 1,
	Duration2h: 2,
	Duration4h: 4,
	Duration8h: 8,
}

// ComputeWindow turns the wizard's time-zone-naive selections into
// absolute valid-from/valid-until instants in the property's civil
// time zone.
func ComputeWindow(dateSel, startSel, durationSel string, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	local := now.In(loc)

	var dayOffset int
	switch dateSel {
	case DateToday:
		dayOffset = 0
	case DateTomorrow:
		dayOffset = 1
	case DateDayAfter:
		dayOffset = 2
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown visit date %q", dateSel)
	}
	day := local.AddDate(0, 0, dayOffset)

	if durationSel == DurationAllDay {
		from := time.Date(day.Year(), day.Month(), day.Day(), allDayStartHour, 0, 0, 0, loc)
		until := time.Date(day.Year(), day.Month(), day.Day(), allDayEndHour, 0, 0, 0, loc)
		return from, until, nil
	}

	hours, ok := durationHours[durationSel]
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("unknown duration %q", durationSel)
	}

	var from time.Time
	switch {
	case startSel == StartNow:
		if dateSel != DateToday {
			return time.Time{}, time.Time{}, fmt.Errorf("start %q requires visit date today", startSel)
		}
		from = now
	default:
		hour, ok := startHours[startSel]
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("unknown start %q", startSel)
		}
		from = time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, loc)
	}

	return from, from.Add(time.Duration(hours) * time.Hour), nil
}

// SingleUse derives the single-use classification from visitor type
// and requested duration. Deliveries and contractor visits are always
// single-entry; so is any short visit of two hours or less. Residents
// are never asked.
func SingleUse(visitorType, durationSel string) bool {
	switch visitorType {
	case "delivery", "contractor":
		return true
	}
	if hours, ok := durationHours[durationSel]; ok && hours <= 2 {
		return true
	}
	return false
}

// DurationsForType returns the duration options offered for a visitor
// type. Deliveries get short windows only; contractors and service
// staff can stay the working day.
func DurationsForType(visitorType string) []string {
	switch visitorType {
	case "delivery":
		return []string{Duration1h, Duration2h}
	case "contractor", "service":
		return []string{Duration2h, Duration4h, Duration8h, DurationAllDay}
	default:
		return []string{Duration1h, Duration2h, Duration4h, DurationAllDay}
	}
}
