package services

import (
	"fmt"
	"sync"
	"time"

	"genesis-events/models"
)

// memStore is an in-memory Store with the same atomicity contract as the
// SQL implementation: CreateParticipants applies all rows and the counter
// bump together, or nothing.
type memStore struct {
	mu           sync.Mutex
	events       map[string]*models.Event
	participants map[string]*models.Participant
	records      []models.VerificationRecord
	staff        map[string]*models.StaffUser

	// failInsertAt makes the nth insert (1-based) inside a single
	// CreateParticipants call fail, to exercise unit atomicity.
	failInsertAt int
}

func newMemStore() *memStore {
	return &memStore{
		events:       map[string]*models.Event{},
		participants: map[string]*models.Participant{},
		staff:        map[string]*models.StaffUser{},
	}
}

func (m *memStore) GetEvent(id string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) ListEvents(activeOnly bool) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Event
	for _, e := range m.events {
		if activeOnly && !e.IsActive {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (m *memStore) CreateEvent(e *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.events[e.ID] = &cp
	return nil
}

func (m *memStore) UpdateEvent(e *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.events[e.ID]
	if !ok {
		return ErrNotFound
	}
	cp := *e
	cp.CurrentParticipants = old.CurrentParticipants
	m.events[e.ID] = &cp
	return nil
}

func (m *memStore) DeleteEvent(id string, hard bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hard {
		delete(m.events, id)
		return nil
	}
	if e, ok := m.events[id]; ok {
		e.IsActive = false
	}
	return nil
}

func (m *memStore) SetDailyClosure(eventID, date string, closed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return ErrNotFound
	}
	if e.DailyRegistrationClosure == nil {
		e.DailyRegistrationClosure = map[string]bool{}
	}
	e.DailyRegistrationClosure[date] = closed
	return nil
}

func (m *memStore) GetParticipant(id string) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) findBy(match func(*models.Participant) bool) (*models.Participant, error) {
	for _, p := range m.participants {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) FindParticipantByQRCode(code string) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findBy(func(p *models.Participant) bool { return p.QRCode == code })
}

func (m *memStore) FindParticipantByTransactionID(txnID string) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findBy(func(p *models.Participant) bool { return p.TransactionID == txnID && txnID != "" })
}

func (m *memStore) FindParticipantByEmail(eventID, email string) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findBy(func(p *models.Participant) bool { return p.EventID == eventID && p.Email == email })
}

func (m *memStore) ListParticipantsByEvent(eventID string) ([]models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Participant
	for _, p := range m.participants {
		if p.EventID == eventID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) ListTeamMembers(teamID string) ([]models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Participant
	for _, p := range m.participants {
		if p.TeamID == teamID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) CountTeams(eventID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	for _, p := range m.participants {
		if p.EventID == eventID && p.TeamID != "" {
			seen[p.TeamID] = true
		}
	}
	return len(seen), nil
}

func (m *memStore) CreateParticipants(eventID string, ps []*models.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return ErrNotFound
	}
	// Stage everything first so a failure leaves no partial state.
	staged := make(map[string]*models.Participant, len(ps))
	for i, p := range ps {
		if m.failInsertAt == i+1 {
			return fmt.Errorf("injected insert failure at member %d", i+1)
		}
		for _, existing := range m.participants {
			if existing.EventID == eventID && existing.Email == p.Email {
				return invariantf("participant %s is already registered for this event", p.Email)
			}
		}
		cp := *p
		staged[p.ID] = &cp
	}
	for id, p := range staged {
		m.participants[id] = p
	}
	e.CurrentParticipants += len(ps)
	return nil
}

func (m *memStore) UpdateParticipant(p *models.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.participants[p.ID]; !ok {
		return ErrNotFound
	}
	if p.TransactionID != "" {
		for _, other := range m.participants {
			if other.ID != p.ID && other.TransactionID == p.TransactionID {
				return ErrDuplicateTransaction
			}
		}
	}
	cp := *p
	m.participants[p.ID] = &cp
	return nil
}

func (m *memStore) MarkVerified(participantID string, ts time.Time, room string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[participantID]
	if !ok {
		return false, ErrNotFound
	}
	if p.IsVerified {
		return false, nil
	}
	p.IsVerified = true
	p.VerificationTime = &ts
	if room != "" {
		p.AssignedRoom = room
	}
	return true, nil
}

func (m *memStore) CreateVerificationRecord(rec *models.VerificationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *rec)
	return nil
}

func (m *memStore) GetStaffByEmail(email string) (*models.StaffUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.staff[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) CreateStaff(u *models.StaffUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.staff[u.Email]; ok {
		return invariantf("staff account for %s already exists", u.Email)
	}
	cp := *u
	m.staff[u.Email] = &cp
	return nil
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) NotifyPaymentStatus(p *models.Participant, e *models.Event, status models.PaymentStatus) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, p.Email+":"+string(status))
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}
