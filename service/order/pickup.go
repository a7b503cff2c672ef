package order

import (
	"time"

	"posbridge.GO/core/apperr"
	"posbridge.GO/model/entity"
)

const clockLayout = "15:04"

// resolvePickupTime validates an explicit pickup timestamp or computes the
// first slot at least lead after now that falls inside the location's
// business hours. Both paths are bounded by horizon ahead of now. Violations
// are ValidationFailure; no remote call has been made yet when they surface.
func resolvePickupTime(loc *entity.Location, explicit *time.Time, now time.Time, lead, horizon time.Duration) (time.Time, error) {
	tz, err := time.LoadLocation(loc.Timezone)
	if err != nil {
		tz = time.UTC
	}
	earliest := now.Add(lead)
	latest := now.Add(horizon)

	if explicit != nil {
		t := explicit.In(tz)
		if t.Before(earliest) {
			return time.Time{}, apperr.New(apperr.KindValidation, "pickup %s is inside the %s preparation window", t.Format(time.RFC3339), lead)
		}
		if t.After(latest) {
			return time.Time{}, apperr.New(apperr.KindValidation, "pickup %s is more than %s ahead", t.Format(time.RFC3339), horizon)
		}
		if !withinHours(loc.Hours, t) {
			return time.Time{}, apperr.New(apperr.KindValidation, "pickup %s is outside business hours of %s", t.Format(time.RFC3339), loc.Name)
		}
		return t, nil
	}

	if len(loc.Hours) == 0 {
		return time.Time{}, apperr.New(apperr.KindValidation, "location %s has no business hours", loc.Name)
	}

	// Walk forward from the earliest slot: the slot itself if open, else the
	// next opening of the scanned day.
	t := earliest.In(tz)
	for !t.After(latest) {
		if withinHours(loc.Hours, t) {
			return t, nil
		}
		next, ok := nextOpening(loc.Hours, t, tz)
		if !ok {
			break
		}
		t = next
	}
	return time.Time{}, apperr.New(apperr.KindValidation, "no pickup slot within %s at %s", horizon, loc.Name)
}

// withinHours reports whether t falls inside one of the location's open
// periods for its weekday.
func withinHours(hours []entity.BusinessHoursPeriod, t time.Time) bool {
	day := int(t.Weekday())
	minute := t.Hour()*60 + t.Minute()
	for _, h := range hours {
		if h.DayOfWeek != day {
			continue
		}
		open, closeM, ok := periodMinutes(h)
		if !ok {
			continue
		}
		if minute >= open && minute < closeM {
			return true
		}
	}
	return false
}

// nextOpening returns the earliest period start strictly after t, scanning up
// to a week ahead.
func nextOpening(hours []entity.BusinessHoursPeriod, t time.Time, tz *time.Location) (time.Time, bool) {
	for addDays := 0; addDays <= 7; addDays++ {
		day := t.AddDate(0, 0, addDays)
		dow := int(day.Weekday())
		best := -1
		for _, h := range hours {
			if h.DayOfWeek != dow {
				continue
			}
			open, _, ok := periodMinutes(h)
			if !ok {
				continue
			}
			candidate := open
			if addDays == 0 && candidate <= t.Hour()*60+t.Minute() {
				continue
			}
			if best == -1 || candidate < best {
				best = candidate
			}
		}
		if best >= 0 {
			return time.Date(day.Year(), day.Month(), day.Day(), best/60, best%60, 0, 0, tz), true
		}
	}
	return time.Time{}, false
}

func periodMinutes(h entity.BusinessHoursPeriod) (int, int, bool) {
	open, err := time.Parse(clockLayout, h.OpensAt)
	if err != nil {
		return 0, 0, false
	}
	closeT, err := time.Parse(clockLayout, h.ClosesAt)
	if err != nil {
		return 0, 0, false
	}
	return open.Hour()*60 + open.Minute(), closeT.Hour()*60 + closeT.Minute(), true
}
