// Package memory provides an in-memory leaderboard row store for unit tests.
package memory

import (
	"context"
	"sync"

	"deskwarrior-backend/internal/features/leaderboard/models"
	"deskwarrior-backend/internal/features/leaderboard/repository"
)

type rowRepository struct {
	mu   sync.RWMutex
	rows map[int64]map[int64]models.Row // chatID -> userID -> row
}

func NewRowRepository() repository.RowRepository {
	return &rowRepository{rows: make(map[int64]map[int64]models.Row)}
}

func (r *rowRepository) Get(ctx context.Context, chatID, userID int64) (*models.Row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chat, ok := r.rows[chatID]
	if !ok {
		return nil, nil
	}
	row, ok := chat[userID]
	if !ok {
		return nil, nil
	}
	copy := row
	return &copy, nil
}

func (r *rowRepository) Upsert(ctx context.Context, row *models.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.rows[row.ChatID]
	if !ok {
		chat = make(map[int64]models.Row)
		r.rows[row.ChatID] = chat
	}
	chat[row.UserID] = *row
	return nil
}

func (r *rowRepository) ListByChat(ctx context.Context, chatID int64) ([]*models.Row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Row
	for _, row := range r.rows[chatID] {
		copy := row
		out = append(out, &copy)
	}
	return out, nil
}

func (r *rowRepository) ReplaceChat(ctx context.Context, chatID int64, rows []*models.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat := make(map[int64]models.Row, len(rows))
	for _, row := range rows {
		chat[row.UserID] = *row
	}
	r.rows[chatID] = chat
	return nil
}
