package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"deskwarrior-backend/internal/features/session/models"
	"deskwarrior-backend/internal/features/session/repository"
)

const (
	keyPrefixSession     = "session:"
	keyPrefixUserPending = "session:pending:user:"
	keyPendingSet        = "sessions:pending"
)

type sessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) repository.SessionRepository {
	return &sessionRepository{client: client}
}

func makeSessionKey(id string) string {
	return keyPrefixSession + id
}

func makeUserPendingKey(userID int64) string {
	return fmt.Sprintf("%s%d", keyPrefixUserPending, userID)
}

func (r *sessionRepository) CreatePending(ctx context.Context, session *models.CardSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// SETNX on the per-user pending key is what enforces the
	// one-pending-session invariant on the storage side.
	ok, err := r.client.SetNX(ctx, makeUserPendingKey(session.UserID), session.ID, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrPendingExists
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, makeSessionKey(session.ID), data, 0)
	pipe.SAdd(ctx, keyPendingSet, session.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		r.client.Del(ctx, makeUserPendingKey(session.UserID))
		return err
	}
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*models.CardSession, error) {
	data, err := r.client.Get(ctx, makeSessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session models.CardSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) GetPendingByUser(ctx context.Context, userID int64) (*models.CardSession, error) {
	id, err := r.client.Get(ctx, makeUserPendingKey(userID)).Result()
	if err == redis.Nil {
		return nil, repository.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *sessionRepository) UpdateTerminal(ctx context.Context, session *models.CardSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, makeSessionKey(session.ID), data, 0)
	pipe.SRem(ctx, keyPendingSet, session.ID)
	pipe.Del(ctx, makeUserPendingKey(session.UserID))
	_, err = pipe.Exec(ctx)
	return err
}

func (r *sessionRepository) DeletePending(ctx context.Context, session *models.CardSession) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, makeSessionKey(session.ID))
	pipe.SRem(ctx, keyPendingSet, session.ID)
	pipe.Del(ctx, makeUserPendingKey(session.UserID))
	_, err := pipe.Exec(ctx)
	return err
}

func (r *sessionRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*models.CardSession, error) {
	ids, err := r.client.SMembers(ctx, keyPendingSet).Result()
	if err != nil {
		return nil, err
	}

	var sessions []*models.CardSession
	for _, id := range ids {
		session, err := r.GetByID(ctx, id)
		if err != nil {
			// Dangling set member; drop it and move on.
			r.client.SRem(ctx, keyPendingSet, id)
			continue
		}
		if session.State == models.SessionStatePending && !session.IssuedAt.After(cutoff) {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}
