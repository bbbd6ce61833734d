package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"deskwarrior-backend/internal/features/scoring/models"
	"deskwarrior-backend/internal/features/scoring/repository"
)

const keyPrefixLedger = "scores:chat:"

type ledgerRepository struct {
	client *redis.Client
}

func NewLedgerRepository(client *redis.Client) repository.LedgerRepository {
	return &ledgerRepository{client: client}
}

func makeLedgerKey(chatID int64) string {
	return fmt.Sprintf("%s%d", keyPrefixLedger, chatID)
}

func (r *ledgerRepository) Append(ctx context.Context, entry *models.ScoreEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal score entry: %w", err)
	}
	return r.client.RPush(ctx, makeLedgerKey(entry.ChatID), data).Err()
}

func (r *ledgerRepository) ListByChat(ctx context.Context, chatID int64) ([]*models.ScoreEntry, error) {
	raw, err := r.client.LRange(ctx, makeLedgerKey(chatID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*models.ScoreEntry, 0, len(raw))
	for _, item := range raw {
		var entry models.ScoreEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}
