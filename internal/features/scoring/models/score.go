package models

import (
	"time"

	"deskwarrior-backend/internal/features/anticheat"
)

// ScoreEntry is one record in the append-only scoring ledger. Entries are
// never mutated; the leaderboard is a derived view over them.
//
// Rejected completions are recorded with zero points so the attempt stays
// auditable.
type ScoreEntry struct {
	ID        string         `json:"id"`
	UserID    int64          `json:"user_id"`
	ChatID    int64          `json:"chat_id"`
	SessionID string         `json:"session_id"`
	Tier      anticheat.Tier `json:"tier"`
	Points    int            `json:"points"`
	// Streak is the user's streak after this entry applied.
	Streak    int       `json:"streak"`
	CreatedAt time.Time `json:"created_at"`
}
