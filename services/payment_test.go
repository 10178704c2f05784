package services

import (
	"testing"
	"time"

	"genesis-events/models"
)

// newPaymentSvc delivers notifications inline so tests can count them
// without waiting on goroutines.
func newPaymentSvc(store Store, n Notifier) *PaymentService {
	svc := NewPaymentService(store, n)
	svc.dispatch = func(fn func()) { fn() }
	return svc
}

func paymentFixture(t *testing.T) (*memStore, *recordingNotifier, *PaymentService, *models.Participant) {
	t.Helper()
	store := newMemStore()
	e := openEvent(store)
	reg := newRegSvc(store, at(2026, 3, 10, 10, 0))
	p, err := reg.RegisterParticipant(e.ID, input("payer@x.y"))
	if err != nil {
		t.Fatal(err)
	}
	notifier := &recordingNotifier{}
	svc := newPaymentSvc(store, notifier)
	return store, notifier, svc, p
}

func TestUpdateStatusPaidNotifiesOnce(t *testing.T) {
	_, notifier, svc, p := paymentFixture(t)

	got, err := svc.UpdateStatus(p.ID, models.PaymentPaid, models.PayOnline, "TXN100")
	if err != nil {
		t.Fatal(err)
	}
	if got.PaymentStatus != models.PaymentPaid {
		t.Fatalf("status %s", got.PaymentStatus)
	}
	if got.TransactionID != "TXN100" {
		t.Fatalf("transaction id %q", got.TransactionID)
	}
	if notifier.count() != 1 {
		t.Fatalf("want 1 notification, got %d", notifier.count())
	}

	// Identical repeat: no write, no second notification.
	again, err := svc.UpdateStatus(p.ID, models.PaymentPaid, models.PayOnline, "TXN100")
	if err != nil {
		t.Fatal(err)
	}
	if again.PaymentStatus != models.PaymentPaid {
		t.Fatalf("status %s", again.PaymentStatus)
	}
	if notifier.count() != 1 {
		t.Fatalf("repeat fired a notification: %d", notifier.count())
	}
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	_, notifier, svc, p := paymentFixture(t)

	if _, err := svc.UpdateStatus(p.ID, models.PaymentPaid, models.PayOnline, ""); err != nil {
		t.Fatal(err)
	}
	_, err := svc.UpdateStatus(p.ID, models.PaymentFailed, "", "")
	if _, ok := err.(*InvariantError); !ok {
		t.Fatalf("paid -> failed should be illegal, got %v", err)
	}
	if notifier.count() != 1 {
		t.Fatalf("illegal transition must not notify, got %d", notifier.count())
	}
}

func TestReceiptLifecycle(t *testing.T) {
	store, notifier, svc, p := paymentFixture(t)

	// Receipt upload queues verification; no notification yet.
	if _, err := svc.ResubmitReceipt(p.ID, "https://s3/receipt1.jpg"); err != nil {
		t.Fatal(err)
	}
	got, _ := store.GetParticipant(p.ID)
	if got.PaymentStatus != models.PaymentUnderVerification {
		t.Fatalf("status %s", got.PaymentStatus)
	}
	if got.PaymentMethod != models.PayOffline {
		t.Fatalf("method %s", got.PaymentMethod)
	}
	if notifier.count() != 0 {
		t.Fatal("receipt upload must not notify")
	}

	// Admin rejects: notification fires.
	if _, err := svc.UpdateStatus(p.ID, models.PaymentFailed, "", ""); err != nil {
		t.Fatal(err)
	}
	if notifier.count() != 1 {
		t.Fatalf("rejection should notify, got %d", notifier.count())
	}

	// Re-upload returns to under_verification.
	if _, err := svc.ResubmitReceipt(p.ID, "https://s3/receipt2.jpg"); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetParticipant(p.ID)
	if got.PaymentStatus != models.PaymentUnderVerification {
		t.Fatalf("status after re-upload %s", got.PaymentStatus)
	}
	if got.ReceiptURL != "https://s3/receipt2.jpg" {
		t.Fatalf("receipt url %q", got.ReceiptURL)
	}

	// Admin confirms the second attempt.
	if _, err := svc.UpdateStatus(p.ID, models.PaymentOfflinePaid, models.PayOffline, ""); err != nil {
		t.Fatal(err)
	}
	if notifier.count() != 2 {
		t.Fatalf("confirmation should notify, got %d", notifier.count())
	}
}

func TestResubmitReceiptRejectedWhilePaid(t *testing.T) {
	_, _, svc, p := paymentFixture(t)
	if _, err := svc.UpdateStatus(p.ID, models.PaymentPaid, models.PayOnline, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ResubmitReceipt(p.ID, "https://s3/r.jpg"); err == nil {
		t.Fatal("receipt on a paid registration should be rejected")
	}
}

func TestDuplicateTransactionID(t *testing.T) {
	store := newMemStore()
	e := openEvent(store)
	reg := newRegSvc(store, at(2026, 3, 10, 10, 0))
	a, err := reg.RegisterParticipant(e.ID, input("a@x.y"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := reg.RegisterParticipant(e.ID, input("b@x.y"))
	if err != nil {
		t.Fatal(err)
	}
	svc := newPaymentSvc(store, &recordingNotifier{})

	if _, err := svc.AttachTransactionID(a.ID, "TXN1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AttachTransactionID(b.ID, "TXN1"); err != ErrDuplicateTransaction {
		t.Fatalf("want ErrDuplicateTransaction, got %v", err)
	}

	// A's record is unchanged, B never got the id.
	gotA, _ := store.GetParticipant(a.ID)
	if gotA.TransactionID != "TXN1" {
		t.Fatalf("A lost its transaction id: %q", gotA.TransactionID)
	}
	gotB, _ := store.GetParticipant(b.ID)
	if gotB.TransactionID != "" {
		t.Fatalf("B acquired the duplicate id: %q", gotB.TransactionID)
	}

	// Re-attaching the same id to the same participant is fine.
	if _, err := svc.AttachTransactionID(a.ID, "TXN1"); err != nil {
		t.Fatalf("re-attach to the holder should succeed: %v", err)
	}
}

func TestTeamMemberStatusNotifiesLead(t *testing.T) {
	store := newMemStore()
	e := teamEvent(store)
	reg := newRegSvc(store, at(2026, 3, 10, 10, 0))
	members, err := reg.RegisterTeam(e.ID, "Duo", []RegistrationInput{
		input("lead@x.y"), input("member@x.y"),
	})
	if err != nil {
		t.Fatal(err)
	}
	notifier := &recordingNotifier{}
	svc := newPaymentSvc(store, notifier)

	if _, err := svc.UpdateStatus(members[1].ID, models.PaymentFailed, "", ""); err != nil {
		t.Fatal(err)
	}
	if notifier.count() != 2 {
		t.Fatalf("member + lead should both be notified, got %d", notifier.count())
	}

	// The lead's own change notifies only the lead.
	notifier.calls = nil
	if _, err := svc.UpdateStatus(members[0].ID, models.PaymentPaid, models.PayOnline, ""); err != nil {
		t.Fatal(err)
	}
	if notifier.count() != 1 {
		t.Fatalf("lead change should notify once, got %d", notifier.count())
	}
}

// stallingNotifier blocks delivery until released.
type stallingNotifier struct {
	release chan struct{}
}

func (n *stallingNotifier) NotifyPaymentStatus(p *models.Participant, e *models.Event, status models.PaymentStatus) error {
	<-n.release
	return nil
}

func TestUpdateStatusNotBlockedByNotifier(t *testing.T) {
	store := newMemStore()
	e := openEvent(store)
	reg := newRegSvc(store, at(2026, 3, 10, 10, 0))
	p, err := reg.RegisterParticipant(e.ID, input("payer@x.y"))
	if err != nil {
		t.Fatal(err)
	}
	notifier := &stallingNotifier{release: make(chan struct{})}
	svc := NewPaymentService(store, notifier)
	defer close(notifier.release)

	done := make(chan error, 1)
	go func() {
		_, err := svc.UpdateStatus(p.ID, models.PaymentPaid, models.PayOnline, "TXN200")
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("UpdateStatus blocked on notification delivery")
	}
	got, _ := store.GetParticipant(p.ID)
	if got.PaymentStatus != models.PaymentPaid {
		t.Fatalf("status %s", got.PaymentStatus)
	}
}

func TestPaymentTransitionTable(t *testing.T) {
	legal := []struct{ from, to models.PaymentStatus }{
		{models.PaymentPending, models.PaymentUnderVerification},
		{models.PaymentPending, models.PaymentPaid},
		{models.PaymentPending, models.PaymentOfflinePaid},
		{models.PaymentPending, models.PaymentFailed},
		{models.PaymentUnderVerification, models.PaymentPaid},
		{models.PaymentUnderVerification, models.PaymentOfflinePaid},
		{models.PaymentUnderVerification, models.PaymentFailed},
		{models.PaymentFailed, models.PaymentUnderVerification},
	}
	for _, tc := range legal {
		if !models.CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be legal", tc.from, tc.to)
		}
	}
	illegal := []struct{ from, to models.PaymentStatus }{
		{models.PaymentPaid, models.PaymentFailed},
		{models.PaymentPaid, models.PaymentPending},
		{models.PaymentOfflinePaid, models.PaymentUnderVerification},
		{models.PaymentFailed, models.PaymentPaid},
		{models.PaymentUnderVerification, models.PaymentPending},
	}
	for _, tc := range illegal {
		if models.CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be illegal", tc.from, tc.to)
		}
	}
}
