package models

import (
	"time"

	catalogmodels "deskwarrior-backend/internal/features/catalog/models"
)

// SessionState is the lifecycle state of one issued card.
type SessionState string

const (
	SessionStatePending      SessionState = "pending"
	SessionStateAcknowledged SessionState = "acknowledged"
	SessionStateExpired      SessionState = "expired"
)

// CardSession is one issuance of a card to a user, tracked from pending to a
// terminal state and retained afterwards for the audit trail.
//
// The card fields are denormalized from the CardDefinition at issuance so the
// session stays self-contained if the catalog changes.
type CardSession struct {
	ID               string                     `json:"id"`
	UserID           int64                      `json:"user_id"`
	ChatID           int64                      `json:"chat_id"`
	CardID           string                     `json:"card_id"`
	CardKind         catalogmodels.CardKind     `json:"card_kind"`
	Exercise         catalogmodels.ExerciseType `json:"exercise,omitempty"`
	Points           int                        `json:"points"`
	ExpectedDuration time.Duration              `json:"expected_duration"`
	State            SessionState               `json:"state"`
	IssuedAt         time.Time                  `json:"issued_at"`
	AckedAt          time.Time                  `json:"acked_at,omitempty"`
}

// Terminal reports whether the session reached a final state.
func (s *CardSession) Terminal() bool {
	return s.State != SessionStatePending
}

// Elapsed returns the time between issuance and acknowledgement.
func (s *CardSession) Elapsed() time.Duration {
	return s.AckedAt.Sub(s.IssuedAt)
}

// ExpiresAt returns the instant the pending session times out.
func (s *CardSession) ExpiresAt(grace time.Duration) time.Time {
	return s.IssuedAt.Add(grace)
}
