package models

// RegistrationControls are per-event overrides that let privileged roles
// register participants after the regular deadline has passed.
type RegistrationControls struct {
	AllowAfterDeadline              bool   `json:"allow_after_deadline"`
	AllowAfterDeadlineForAdmins     bool   `json:"allow_after_deadline_for_admins"`
	AllowAfterDeadlineForVolunteers bool   `json:"allow_after_deadline_for_volunteers"`
	DeadlineOverrideReason          string `json:"deadline_override_reason,omitempty"`
}

// Event describes one registrable event. Dates are "2006-01-02" strings and
// times of day are "15:04" strings, both in server-local time.
type Event struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Venue       string `json:"venue,omitempty"`
	Date        string `json:"date"`
	EventDay    string `json:"event_day"` // day1 | day2

	EntryFee            int    `json:"entry_fee"`
	OnSpotEntryFee      *int   `json:"on_spot_entry_fee,omitempty"`
	PaymentMethod       string `json:"payment_method"` // online | offline | both
	OnSpotPaymentMethod string `json:"on_spot_payment_method,omitempty"`

	IsTeamEvent    bool `json:"is_team_event"`
	MembersPerTeam int  `json:"members_per_team,omitempty"`
	MaxTeams       int  `json:"max_teams,omitempty"`

	RegistrationStartDate string `json:"registration_start_date,omitempty"`
	RegistrationStartTime string `json:"registration_start_time,omitempty"`
	RegistrationEndDate   string `json:"registration_end_date,omitempty"`
	RegistrationEndTime   string `json:"registration_end_time,omitempty"`
	AllowLateRegistration bool   `json:"allow_late_registration"`

	AllowOnSpotRegistration bool   `json:"allow_on_spot_registration"`
	OnSpotStartTime         string `json:"on_spot_start_time,omitempty"`
	OnSpotEndTime           string `json:"on_spot_end_time,omitempty"`

	// DailyRegistrationClosure disables the regular registration path for
	// specific dates without touching the configured window. It never
	// affects the on-the-spot path.
	DailyRegistrationClosure map[string]bool      `json:"daily_registration_closure,omitempty"`
	RegistrationControls     RegistrationControls `json:"registration_controls"`

	CurrentParticipants int    `json:"current_participants"`
	IsActive            bool   `json:"is_active"`
	CreatedBy           string `json:"created_by,omitempty"`
	CreatedAt           string `json:"created_at,omitempty"`
	UpdatedAt           string `json:"updated_at,omitempty"`
}
