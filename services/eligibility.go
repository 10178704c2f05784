package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"genesis-events/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// CheckPoint says where an eligibility check runs. The write-time check
// additionally honors the per-event deadline overrides; the UI check is
// therefore never more permissive than the write path.
type CheckPoint int

const (
	AtUI CheckPoint = iota
	AtWrite
)

type EligibilityResult struct {
	CanRegister      bool                    `json:"can_register"`
	Reason           string                  `json:"reason"`
	RegistrationType models.RegistrationType `json:"registration_type,omitempty"`
	TimeRemaining    string                  `json:"time_remaining,omitempty"`
}

func allowed(t models.RegistrationType, reason string) EligibilityResult {
	return EligibilityResult{CanRegister: true, Reason: reason, RegistrationType: t}
}

func denied(reason string) EligibilityResult {
	return EligibilityResult{Reason: reason}
}

// CheckRegistration is the single authoritative eligibility decision for a
// user registering for an event at instant ts. First matching rule wins:
//
//  1. anonymous users are rejected
//  2. deadline-override roles are accepted unconditionally
//  3. inactive events are rejected
//  4. the regular window, unless closed for today's date
//  5. the on-the-spot window on the event day
//  6. at write time, the per-event after-deadline overrides
//  7. offline-registration roles (volunteers at the desk)
//  8. rejection with the specific reason
func CheckRegistration(e *models.Event, email string, role models.Role, at CheckPoint, ts time.Time) EligibilityResult {
	if strings.TrimSpace(email) == "" {
		return denied("sign-in required to register")
	}
	perms := role.Permissions()
	if perms.CanOverrideDeadlines {
		return allowed(models.RegistrationRegular, "registration open (deadline override)")
	}
	if !e.IsActive {
		return denied("this event is no longer active")
	}

	win := regularWindow(e, ts)
	if win.open {
		return allowed(models.RegistrationRegular, "registration open")
	}

	if onSpotOpen(e, ts) {
		return allowed(models.RegistrationOnSpot, "on-the-spot registration available")
	}

	if at == AtWrite && win.pastDeadline {
		c := e.RegistrationControls
		override := c.AllowAfterDeadline || e.AllowLateRegistration ||
			(c.AllowAfterDeadlineForAdmins && role == models.RoleAdmin) ||
			(c.AllowAfterDeadlineForVolunteers && role == models.RoleVolunteer)
		if override {
			reason := "registration open (after-deadline override)"
			if c.DeadlineOverrideReason != "" {
				reason = c.DeadlineOverrideReason
			}
			return allowed(models.RegistrationRegular, reason)
		}
	}

	if perms.CanRegisterOffline {
		return allowed(models.RegistrationRegular, "offline registration available")
	}

	if win.notStarted {
		res := denied("registration has not started yet")
		res.TimeRemaining = FormatTimeRemaining(win.start.Sub(ts))
		return res
	}
	if win.pastDeadline {
		return denied("registration deadline has passed")
	}
	return denied("registration is closed for today")
}

type windowState struct {
	open         bool
	notStarted   bool
	pastDeadline bool
	start        time.Time
}

// regularWindow evaluates the regular registration path only. A daily
// closure for today's date makes the path unavailable without marking it
// past-deadline, so the on-the-spot path can still apply.
func regularWindow(e *models.Event, ts time.Time) windowState {
	if e.DailyRegistrationClosure[ts.Format(dateLayout)] {
		return windowState{}
	}
	if e.RegistrationStartDate == "" && e.RegistrationEndDate == "" {
		return windowState{open: true}
	}

	if e.RegistrationStartDate != "" {
		start, err := combineDateTime(e.RegistrationStartDate, e.RegistrationStartTime, "00:00")
		if err == nil && ts.Before(start) {
			return windowState{notStarted: true, start: start}
		}
	}
	if e.RegistrationEndDate != "" {
		end, err := combineDateTime(e.RegistrationEndDate, e.RegistrationEndTime, "23:59")
		// The end minute is inclusive.
		if err == nil && !ts.Before(end.Add(time.Minute)) {
			return windowState{pastDeadline: true}
		}
	}
	return windowState{open: true}
}

// onSpotOpen reports whether the on-the-spot path is available at ts. The
// date match ignores time of day; the optional start/end times compare
// minute-of-day inclusively.
func onSpotOpen(e *models.Event, ts time.Time) bool {
	if !e.AllowOnSpotRegistration {
		return false
	}
	eventDay, err := time.ParseInLocation(dateLayout, e.Date, ts.Location())
	if err != nil || !sameCalendarDay(ts, eventDay) {
		return false
	}
	if e.OnSpotStartTime == "" && e.OnSpotEndTime == "" {
		return true
	}
	minute := ts.Hour()*60 + ts.Minute()
	if e.OnSpotStartTime != "" {
		if start, err := minuteOfDay(e.OnSpotStartTime); err == nil && minute < start {
			return false
		}
	}
	if e.OnSpotEndTime != "" {
		if end, err := minuteOfDay(e.OnSpotEndTime); err == nil && minute > end {
			return false
		}
	}
	return true
}

// ResolveEntryFee projects the fee actually charged for a registration type.
func ResolveEntryFee(e *models.Event, t models.RegistrationType) int {
	if t == models.RegistrationOnSpot && e.OnSpotEntryFee != nil {
		return *e.OnSpotEntryFee
	}
	return e.EntryFee
}

// ResolvePaymentMethod projects the payment channel for a registration type.
func ResolvePaymentMethod(e *models.Event, t models.RegistrationType) string {
	if t == models.RegistrationOnSpot && e.OnSpotPaymentMethod != "" {
		return e.OnSpotPaymentMethod
	}
	return e.PaymentMethod
}

// FormatTimeRemaining renders a duration as its largest two non-zero units
// out of days, hours and minutes.
func FormatTimeRemaining(d time.Duration) string {
	if d < time.Minute {
		return "less than a minute"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, pluralize(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, pluralize(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, pluralize(minutes, "minute"))
	}
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, ", ")
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func combineDateTime(date, tod, defaultTod string) (time.Time, error) {
	if tod == "" {
		tod = defaultTod
	}
	return time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+tod, time.Local)
}

func minuteOfDay(tod string) (int, error) {
	t, err := time.Parse(timeLayout, tod)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func sameCalendarDay(a, b time.Time) bool {
	return now.With(a).BeginningOfDay().Equal(now.With(b).BeginningOfDay())
}
