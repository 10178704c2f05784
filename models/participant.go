package models

import "time"

// PaymentStatus is the participant payment lifecycle state.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentUnderVerification PaymentStatus = "under_verification"
	PaymentPaid              PaymentStatus = "paid"
	PaymentOfflinePaid       PaymentStatus = "offline_paid"
	PaymentFailed            PaymentStatus = "failed"
)

// paymentTransitions is the only place transitions are defined. failed may
// return to under_verification when a participant re-uploads a receipt.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:           {PaymentUnderVerification, PaymentPaid, PaymentOfflinePaid, PaymentFailed},
	PaymentUnderVerification: {PaymentPaid, PaymentOfflinePaid, PaymentFailed},
	PaymentFailed:            {PaymentUnderVerification},
}

// CanTransition reports whether from -> to is a legal payment transition.
// A transition to the current state is not listed here; callers treat it as
// an idempotent repeat, not a transition.
func CanTransition(from, to PaymentStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsFinalNotifiable reports whether entering this status should notify the
// participant.
func (s PaymentStatus) IsFinalNotifiable() bool {
	return s == PaymentPaid || s == PaymentOfflinePaid || s == PaymentFailed
}

type RegistrationType string

const (
	RegistrationRegular RegistrationType = "regular"
	RegistrationOnSpot  RegistrationType = "on_spot"
)

// ParticipantPaymentMethod is how a single participant pays, once chosen.
type ParticipantPaymentMethod string

const (
	PayOnline  ParticipantPaymentMethod = "online"
	PayOffline ParticipantPaymentMethod = "offline"
)

type Participant struct {
	ID      string `json:"id"`
	EventID string `json:"event_id"`

	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	College  string `json:"college,omitempty"`
	Standard string `json:"standard,omitempty"`
	Stream   string `json:"stream,omitempty"`

	// QRCode is the sole credential presented at check-in. It carries no
	// participant identity, only an opaque token.
	QRCode string `json:"qr_code"`

	PaymentStatus PaymentStatus            `json:"payment_status"`
	PaymentMethod ParticipantPaymentMethod `json:"payment_method,omitempty"`
	ReceiptURL    string                   `json:"receipt_url,omitempty"`
	TransactionID string                   `json:"transaction_id,omitempty"`

	RegistrationType RegistrationType `json:"registration_type"`
	EntryFeePaid     int              `json:"entry_fee_paid"`

	TeamID     string `json:"team_id,omitempty"`
	TeamName   string `json:"team_name,omitempty"`
	IsTeamLead bool   `json:"is_team_lead,omitempty"`

	IsVerified       bool       `json:"is_verified"`
	VerificationTime *time.Time `json:"verification_time,omitempty"`
	AssignedRoom     string     `json:"assigned_room,omitempty"`

	RegisteredAt time.Time `json:"registered_at"`

	// Enrichment for API responses.
	EventName string `json:"event_name,omitempty"`
}
