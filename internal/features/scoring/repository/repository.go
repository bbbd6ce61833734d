package repository

import (
	"context"

	"deskwarrior-backend/internal/features/scoring/models"
)

// LedgerRepository is the append-only score ledger, keyed by chat. It is the
// source of truth the leaderboard can always be rebuilt from.
type LedgerRepository interface {
	Append(ctx context.Context, entry *models.ScoreEntry) error
	// ListByChat returns the chat's entries in append order.
	ListByChat(ctx context.Context, chatID int64) ([]*models.ScoreEntry, error)
}
