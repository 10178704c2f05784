package models

import "time"

// VerificationRecord is an immutable audit entry written on every scan,
// including re-scans of an already verified participant.
type VerificationRecord struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"participant_id"`
	ActorEmail    string    `json:"actor_email"`
	AssignedRoom  string    `json:"assigned_room,omitempty"`
	ScannedAt     time.Time `json:"scanned_at"`
}
