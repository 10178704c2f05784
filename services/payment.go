package services

import (
	"github.com/sirupsen/logrus"

	"genesis-events/models"
)

// PaymentService tracks the participant payment lifecycle and fires
// notifications on distinct transitions into a notifiable state.
type PaymentService struct {
	store    Store
	notifier Notifier

	// dispatch runs notification delivery off the caller's goroutine so a
	// slow provider never stalls the request that committed the transition.
	dispatch func(func())
}

func NewPaymentService(store Store, notifier Notifier) *PaymentService {
	return &PaymentService{
		store:    store,
		notifier: notifier,
		dispatch: func(fn func()) { go fn() },
	}
}

// UpdateStatus moves a participant to a new payment status. Repeating the
// current status is an idempotent no-op: no write, no notification. An
// illegal transition leaves the record unchanged and returns an
// InvariantError.
//
// evidence is a receipt URL when method is offline, a transaction id when
// online. Either may be empty.
func (s *PaymentService) UpdateStatus(participantID string, status models.PaymentStatus, method models.ParticipantPaymentMethod, evidence string) (*models.Participant, error) {
	p, err := s.store.GetParticipant(participantID)
	if err != nil {
		return nil, err
	}
	if p.PaymentStatus == status {
		return p, nil
	}
	if !models.CanTransition(p.PaymentStatus, status) {
		return nil, invariantf("payment status cannot move from %s to %s", p.PaymentStatus, status)
	}

	if method != "" {
		p.PaymentMethod = method
	}
	if evidence != "" {
		if method == models.PayOffline {
			p.ReceiptURL = evidence
		} else {
			if err := s.guardTransactionID(p, evidence); err != nil {
				return nil, err
			}
			p.TransactionID = evidence
		}
	}
	p.PaymentStatus = status

	if err := s.store.UpdateParticipant(p); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"participant_id": p.ID,
		"status":         status,
	}).Info("payment status updated")

	if status.IsFinalNotifiable() {
		snapshot := *p
		s.dispatch(func() { s.notify(&snapshot, status) })
	}
	return p, nil
}

// AttachTransactionID records a UPI transaction id on a participant, for
// admins matching bank statements by hand. Rejected when another participant
// already claims the same id.
func (s *PaymentService) AttachTransactionID(participantID, txnID string) (*models.Participant, error) {
	if txnID == "" {
		return nil, invariantf("transaction id is required")
	}
	p, err := s.store.GetParticipant(participantID)
	if err != nil {
		return nil, err
	}
	if err := s.guardTransactionID(p, txnID); err != nil {
		return nil, err
	}
	p.TransactionID = txnID
	if err := s.store.UpdateParticipant(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ResubmitReceipt moves a failed payment back to under_verification with the
// new receipt as evidence. No notification: the record awaits re-review.
func (s *PaymentService) ResubmitReceipt(participantID, receiptURL string) (*models.Participant, error) {
	if receiptURL == "" {
		return nil, invariantf("receipt is required")
	}
	p, err := s.store.GetParticipant(participantID)
	if err != nil {
		return nil, err
	}
	switch p.PaymentStatus {
	case models.PaymentFailed, models.PaymentPending:
	default:
		return nil, invariantf("receipt can only be submitted while payment is pending or failed, not %s", p.PaymentStatus)
	}
	p.ReceiptURL = receiptURL
	p.PaymentMethod = models.PayOffline
	p.PaymentStatus = models.PaymentUnderVerification
	if err := s.store.UpdateParticipant(p); err != nil {
		return nil, err
	}
	logrus.WithField("participant_id", p.ID).Info("receipt submitted for verification")
	return p, nil
}

// guardTransactionID enforces the uniqueness pre-check. The unique index on
// participants.transaction_id is the authority if two admins race past it.
func (s *PaymentService) guardTransactionID(p *models.Participant, txnID string) error {
	other, err := s.store.FindParticipantByTransactionID(txnID)
	if err == ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ID != p.ID {
		return ErrDuplicateTransaction
	}
	return nil
}

// notify delivers to the participant, and to the team lead when the
// participant is a team member. Failures are logged, never propagated.
func (s *PaymentService) notify(p *models.Participant, status models.PaymentStatus) {
	e, err := s.store.GetEvent(p.EventID)
	if err != nil {
		logrus.WithError(err).WithField("participant_id", p.ID).Error("notification skipped: event lookup failed")
		return
	}
	if err := s.notifier.NotifyPaymentStatus(p, e, status); err != nil {
		logrus.WithError(err).WithField("participant_id", p.ID).Error("participant notification failed")
	}
	if p.TeamID == "" || p.IsTeamLead {
		return
	}
	members, err := s.store.ListTeamMembers(p.TeamID)
	if err != nil {
		logrus.WithError(err).WithField("team_id", p.TeamID).Error("team lead notification skipped")
		return
	}
	for i := range members {
		if members[i].IsTeamLead {
			if err := s.notifier.NotifyPaymentStatus(&members[i], e, status); err != nil {
				logrus.WithError(err).WithField("team_id", p.TeamID).Error("team lead notification failed")
			}
			return
		}
	}
}
