package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"genesis-events/models"
)

// ScanStats counts door-scan outcomes since process start.
type ScanStats struct {
	Accepted atomic.Int64
	Repeated atomic.Int64
	Rejected atomic.Int64
	Garbage  atomic.Int64
}

type ScanStatsSnapshot struct {
	Accepted int64 `json:"accepted"`
	Repeated int64 `json:"repeated"`
	Rejected int64 `json:"rejected"`
	Garbage  int64 `json:"garbage"`
}

func (s *ScanStats) Snapshot() ScanStatsSnapshot {
	return ScanStatsSnapshot{
		Accepted: s.Accepted.Load(),
		Repeated: s.Repeated.Load(),
		Rejected: s.Rejected.Load(),
		Garbage:  s.Garbage.Load(),
	}
}

// VerificationService handles door check-in from scanned ticket codes.
type VerificationService struct {
	store Store
	Stats ScanStats
	Now   func() time.Time
}

func NewVerificationService(store Store) *VerificationService {
	return &VerificationService{store: store, Now: time.Now}
}

// VerifyByCode resolves a scanned code to a participant and marks them
// verified. Verification is monotonic: re-scanning an already verified
// participant succeeds without touching the original verification time,
// and still appends an audit record. ok is false only when the code has a
// valid shape but matches no participant, or is malformed.
func (s *VerificationService) VerifyByCode(code, actorEmail, assignedRoom string) (p *models.Participant, ok bool, err error) {
	if _, _, perr := ParseTicketCode(code); perr != nil {
		s.Stats.Garbage.Inc()
		return nil, false, nil
	}
	p, err = s.store.FindParticipantByQRCode(code)
	if err == ErrNotFound {
		s.Stats.Rejected.Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	ts := s.Now()
	if p.IsVerified {
		s.Stats.Repeated.Inc()
	} else {
		first, err := s.store.MarkVerified(p.ID, ts, assignedRoom)
		if err != nil {
			return nil, false, err
		}
		if first {
			p.IsVerified = true
			p.VerificationTime = &ts
			if assignedRoom != "" {
				p.AssignedRoom = assignedRoom
			}
			s.Stats.Accepted.Inc()
		} else {
			// A concurrent scan got there first; its verification time stands.
			s.Stats.Repeated.Inc()
			if cur, err := s.store.GetParticipant(p.ID); err == nil {
				p = cur
			}
		}
	}

	rec := &models.VerificationRecord{
		ID:            uuid.NewString(),
		ParticipantID: p.ID,
		ActorEmail:    actorEmail,
		AssignedRoom:  assignedRoom,
		ScannedAt:     ts,
	}
	if err := s.store.CreateVerificationRecord(rec); err != nil {
		// The check-in itself stood; losing one audit row is logged,
		// not surfaced to the scanner.
		logrus.WithError(err).WithField("participant_id", p.ID).Error("audit record write failed")
	}
	return p, true, nil
}
