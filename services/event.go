package services

import (
	"time"

	"github.com/jinzhu/now"

	"genesis-events/models"
)

// ValidateEventSchedule enforces the schedule invariants on create/update:
// the registration window must not extend past the event date, and the
// window start must precede its end.
func ValidateEventSchedule(e *models.Event) error {
	eventDay, err := time.ParseInLocation(dateLayout, e.Date, time.Local)
	if err != nil {
		return invariantf("event date must be %s formatted", dateLayout)
	}

	var start, end time.Time
	if e.RegistrationStartDate != "" {
		start, err = combineDateTime(e.RegistrationStartDate, e.RegistrationStartTime, "00:00")
		if err != nil {
			return invariantf("invalid registration start date or time")
		}
	}
	if e.RegistrationEndDate != "" {
		end, err = combineDateTime(e.RegistrationEndDate, e.RegistrationEndTime, "23:59")
		if err != nil {
			return invariantf("invalid registration end date or time")
		}
		if end.After(now.With(eventDay).EndOfDay()) {
			return invariantf("registration must close on or before the event date")
		}
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		return invariantf("registration start must precede its end")
	}

	if e.OnSpotStartTime != "" {
		if _, err := minuteOfDay(e.OnSpotStartTime); err != nil {
			return invariantf("invalid on-the-spot start time")
		}
	}
	if e.OnSpotEndTime != "" {
		if _, err := minuteOfDay(e.OnSpotEndTime); err != nil {
			return invariantf("invalid on-the-spot end time")
		}
	}
	if e.OnSpotStartTime != "" && e.OnSpotEndTime != "" {
		s, _ := minuteOfDay(e.OnSpotStartTime)
		en, _ := minuteOfDay(e.OnSpotEndTime)
		if s > en {
			return invariantf("on-the-spot start must not be after its end")
		}
	}
	return nil
}
