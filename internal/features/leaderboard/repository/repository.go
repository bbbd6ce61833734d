package repository

import (
	"context"

	"deskwarrior-backend/internal/features/leaderboard/models"
)

// RowRepository stores the derived leaderboard rows. The rows are a cache
// over the score ledger and can be dropped and rebuilt at any time.
type RowRepository interface {
	// Get returns the row for (chat, user), or nil without error when the
	// user has not scored in the chat yet.
	Get(ctx context.Context, chatID, userID int64) (*models.Row, error)
	Upsert(ctx context.Context, row *models.Row) error
	ListByChat(ctx context.Context, chatID int64) ([]*models.Row, error)
	// ReplaceChat atomically swaps all rows of a chat, used by rebuild.
	ReplaceChat(ctx context.Context, chatID int64, rows []*models.Row) error
}
