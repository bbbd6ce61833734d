// Package memory provides an in-memory score ledger for unit tests.
package memory

import (
	"context"
	"sync"

	"deskwarrior-backend/internal/features/scoring/models"
	"deskwarrior-backend/internal/features/scoring/repository"
)

type ledgerRepository struct {
	mu      sync.RWMutex
	entries map[int64][]models.ScoreEntry
}

func NewLedgerRepository() repository.LedgerRepository {
	return &ledgerRepository{entries: make(map[int64][]models.ScoreEntry)}
}

func (r *ledgerRepository) Append(ctx context.Context, entry *models.ScoreEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ChatID] = append(r.entries[entry.ChatID], *entry)
	return nil
}

func (r *ledgerRepository) ListByChat(ctx context.Context, chatID int64) ([]*models.ScoreEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.entries[chatID]
	out := make([]*models.ScoreEntry, len(list))
	for i := range list {
		copy := list[i]
		out[i] = &copy
	}
	return out, nil
}
