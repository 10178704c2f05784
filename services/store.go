package services

import (
	"time"

	"genesis-events/models"
)

// Store is the persistence collaborator for the registration core. The SQL
// implementation lives in SQLStore; tests use an in-memory version.
type Store interface {
	GetEvent(id string) (*models.Event, error)
	ListEvents(activeOnly bool) ([]models.Event, error)
	CreateEvent(e *models.Event) error
	UpdateEvent(e *models.Event) error
	DeleteEvent(id string, hard bool) error
	SetDailyClosure(eventID, date string, closed bool) error

	GetParticipant(id string) (*models.Participant, error)
	FindParticipantByQRCode(code string) (*models.Participant, error)
	FindParticipantByTransactionID(txnID string) (*models.Participant, error)
	FindParticipantByEmail(eventID, email string) (*models.Participant, error)
	ListParticipantsByEvent(eventID string) ([]models.Participant, error)
	ListTeamMembers(teamID string) ([]models.Participant, error)
	CountTeams(eventID string) (int, error)
	UpdateParticipant(p *models.Participant) error

	// MarkVerified flips a participant to verified unless they already are.
	// Returns true only for the call that performed the first verification,
	// so the stored verification time survives concurrent scans.
	MarkVerified(participantID string, ts time.Time, room string) (bool, error)

	// CreateParticipants inserts every participant and bumps the event's
	// current_participants by len(ps) as one atomic unit. Either all rows
	// land and the counter moves, or nothing changes.
	CreateParticipants(eventID string, ps []*models.Participant) error

	CreateVerificationRecord(rec *models.VerificationRecord) error

	GetStaffByEmail(email string) (*models.StaffUser, error)
	CreateStaff(u *models.StaffUser) error
}
