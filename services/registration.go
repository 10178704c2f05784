package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"genesis-events/models"
)

// RegistrationInput is one registrant's details.
type RegistrationInput struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	College  string `json:"college,omitempty"`
	Standard string `json:"standard,omitempty"`
	Stream   string `json:"stream,omitempty"`
}

// RegistrationService creates participant records and enforces the
// one-registration and team invariants.
type RegistrationService struct {
	store Store
	roles RoleResolver
	Now   func() time.Time
}

func NewRegistrationService(store Store, roles RoleResolver) *RegistrationService {
	return &RegistrationService{store: store, roles: roles, Now: time.Now}
}

// CheckEligibility is the UI-facing preview. It never consults the
// after-deadline overrides, so it can only be stricter than the write path.
func (s *RegistrationService) CheckEligibility(eventID, email string) (EligibilityResult, error) {
	e, err := s.store.GetEvent(eventID)
	if err != nil {
		return EligibilityResult{}, err
	}
	return CheckRegistration(e, email, s.roles.Resolve(email), AtUI, s.Now()), nil
}

// RegisterParticipant registers one individual for a non-team event.
func (s *RegistrationService) RegisterParticipant(eventID string, in RegistrationInput) (*models.Participant, error) {
	e, err := s.store.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	if !e.IsActive {
		return nil, invariantf("event %q is no longer active", e.Name)
	}
	if e.IsTeamEvent {
		return nil, invariantf("event %q is a team event; register as a team", e.Name)
	}
	if _, err := s.store.FindParticipantByEmail(eventID, in.Email); err == nil {
		return nil, invariantf("%s is already registered for this event", in.Email)
	} else if err != ErrNotFound {
		return nil, err
	}

	ts := s.Now()
	res := CheckRegistration(e, in.Email, s.roles.Resolve(in.Email), AtWrite, ts)
	if !res.CanRegister {
		return nil, &EligibilityError{Reason: res.Reason}
	}

	p := s.newParticipant(e, in, res.RegistrationType, ts)
	if err := s.store.CreateParticipants(eventID, []*models.Participant{p}); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"event_id":       eventID,
		"participant_id": p.ID,
		"type":           p.RegistrationType,
	}).Info("participant registered")
	return p, nil
}

// RegisterTeam registers every member as one unit: either all members land
// together with the counter bump, or none do.
func (s *RegistrationService) RegisterTeam(eventID, teamName string, members []RegistrationInput) ([]*models.Participant, error) {
	e, err := s.store.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	if !e.IsActive {
		return nil, invariantf("event %q is no longer active", e.Name)
	}
	if !e.IsTeamEvent {
		return nil, invariantf("event %q is not a team event", e.Name)
	}
	if len(members) == 0 {
		return nil, invariantf("a team needs at least one member")
	}
	if e.MembersPerTeam > 0 && len(members) > e.MembersPerTeam {
		return nil, invariantf("team size %d exceeds the limit of %d for %q", len(members), e.MembersPerTeam, e.Name)
	}
	if e.MaxTeams > 0 {
		teams, err := s.store.CountTeams(eventID)
		if err != nil {
			return nil, err
		}
		if teams >= e.MaxTeams {
			return nil, &EligibilityError{Reason: "all team slots for this event are taken"}
		}
	}

	ts := s.Now()
	lead := members[0]
	res := CheckRegistration(e, lead.Email, s.roles.Resolve(lead.Email), AtWrite, ts)
	if !res.CanRegister {
		return nil, &EligibilityError{Reason: res.Reason}
	}

	teamID := uuid.NewString()
	ps := make([]*models.Participant, 0, len(members))
	for i, in := range members {
		p := s.newParticipant(e, in, res.RegistrationType, ts)
		p.TeamID = teamID
		p.TeamName = teamName
		p.IsTeamLead = i == 0
		ps = append(ps, p)
	}
	if err := s.store.CreateParticipants(eventID, ps); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"event_id": eventID,
		"team_id":  teamID,
		"members":  len(ps),
	}).Info("team registered")
	return ps, nil
}

func (s *RegistrationService) newParticipant(e *models.Event, in RegistrationInput, t models.RegistrationType, ts time.Time) *models.Participant {
	return &models.Participant{
		ID:               uuid.NewString(),
		EventID:          e.ID,
		FullName:         in.FullName,
		Email:            in.Email,
		Phone:            in.Phone,
		College:          in.College,
		Standard:         in.Standard,
		Stream:           in.Stream,
		QRCode:           GenerateTicketCode(),
		PaymentStatus:    models.PaymentPending,
		RegistrationType: t,
		EntryFeePaid:     ResolveEntryFee(e, t),
		RegisteredAt:     ts,
	}
}
