package models

// Role of an authenticated identity. Anyone with no staff record is a
// participant.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleVolunteer   Role = "volunteer"
	RoleParticipant Role = "participant"
)

type Permissions struct {
	CanOverrideDeadlines  bool
	CanRegisterOffline    bool
	CanManageEvents       bool
	CanVerifyPayments     bool
	CanVerifyParticipants bool
}

func (r Role) Permissions() Permissions {
	switch r {
	case RoleAdmin:
		return Permissions{
			CanOverrideDeadlines:  true,
			CanRegisterOffline:    true,
			CanManageEvents:       true,
			CanVerifyPayments:     true,
			CanVerifyParticipants: true,
		}
	case RoleVolunteer:
		return Permissions{
			CanRegisterOffline:    true,
			CanVerifyParticipants: true,
		}
	default:
		return Permissions{}
	}
}

// StaffUser is an admin or volunteer account for the dashboard. Attendees
// never get one; they sign in through the external identity provider.
type StaffUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Role     Role   `json:"role"`
}
