// Package memory provides an in-memory SessionRepository for unit tests.
package memory

import (
	"context"
	"sync"
	"time"

	"deskwarrior-backend/internal/features/session/models"
	"deskwarrior-backend/internal/features/session/repository"
)

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]models.CardSession
	pending  map[int64]string // userID -> pending session ID
}

func NewSessionRepository() repository.SessionRepository {
	return &sessionRepository{
		sessions: make(map[string]models.CardSession),
		pending:  make(map[int64]string),
	}
}

func (r *sessionRepository) CreatePending(ctx context.Context, session *models.CardSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pending[session.UserID]; exists {
		return repository.ErrPendingExists
	}
	r.sessions[session.ID] = *session
	r.pending[session.UserID] = session.ID
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*models.CardSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	copy := session
	return &copy, nil
}

func (r *sessionRepository) GetPendingByUser(ctx context.Context, userID int64) (*models.CardSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.pending[userID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	session := r.sessions[id]
	copy := session
	return &copy, nil
}

func (r *sessionRepository) UpdateTerminal(ctx context.Context, session *models.CardSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	if r.pending[session.UserID] == session.ID {
		delete(r.pending, session.UserID)
	}
	return nil
}

func (r *sessionRepository) DeletePending(ctx context.Context, session *models.CardSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, session.ID)
	if r.pending[session.UserID] == session.ID {
		delete(r.pending, session.UserID)
	}
	return nil
}

func (r *sessionRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*models.CardSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.CardSession
	for _, id := range r.pending {
		session := r.sessions[id]
		if session.State == models.SessionStatePending && !session.IssuedAt.After(cutoff) {
			copy := session
			out = append(out, &copy)
		}
	}
	return out, nil
}
