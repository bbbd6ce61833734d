package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"deskwarrior-backend/internal/common/errors"
	"deskwarrior-backend/internal/common/logger"
	catalogmodels "deskwarrior-backend/internal/features/catalog/models"
	"deskwarrior-backend/internal/features/session/models"
	"deskwarrior-backend/internal/features/session/repository"
	usermodels "deskwarrior-backend/internal/features/user/models"
)

type sessionService struct {
	repo repository.SessionRepository
	log  zerolog.Logger
}

func NewSessionService(repo repository.SessionRepository) SessionService {
	return &sessionService{
		repo: repo,
		log:  logger.With("session-service"),
	}
}

func (s *sessionService) Issue(ctx context.Context, user *usermodels.User, card *catalogmodels.CardDefinition, now time.Time) (*models.CardSession, error) {
	session := &models.CardSession{
		ID:               uuid.New().String(),
		UserID:           user.ID,
		ChatID:           user.ChatID,
		CardID:           card.ID,
		CardKind:         card.Kind,
		Exercise:         card.Exercise,
		Points:           card.Points,
		ExpectedDuration: card.ExpectedDuration,
		State:            models.SessionStatePending,
		IssuedAt:         now,
	}

	if err := s.repo.CreatePending(ctx, session); err != nil {
		if err == repository.ErrPendingExists {
			return nil, errors.New(errors.ErrCodeConflict, "user already has a pending card").
				WithUserID(user.ID)
		}
		return nil, errors.NewStorageError("create session", err)
	}

	s.log.Debug().
		Int64("user_id", user.ID).
		Str("session_id", session.ID).
		Str("card_id", card.ID).
		Msg("Card session issued")
	return session, nil
}

func (s *sessionService) Acknowledge(ctx context.Context, userID int64, sessionID string, ackedAt time.Time) (*models.CardSession, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		if err == repository.ErrSessionNotFound {
			return nil, errors.New(errors.ErrCodeSessionNotFound, "card session not found").
				WithDetail("session_id", sessionID)
		}
		return nil, errors.NewStorageError("get session", err)
	}

	if session.UserID != userID {
		return nil, errors.NewValidationError("session_id", "session belongs to another user").
			WithUserID(userID)
	}

	if session.Terminal() {
		// Duplicate or stale tap; idempotent no-op for the caller.
		return nil, errors.NewDuplicateAckError(sessionID).WithUserID(userID)
	}

	if session.CardKind != catalogmodels.CardKindExercise {
		return nil, errors.New(errors.ErrCodeNotAcknowledgeable, "wellness tips cannot be completed for points").
			WithUserID(userID).
			WithDetail("session_id", sessionID)
	}

	pending, err := s.repo.GetPendingByUser(ctx, userID)
	if err != nil || pending.ID != session.ID {
		// Pending slot points elsewhere (or nowhere): the session was
		// already resolved out from under this event.
		return nil, errors.NewNoPendingSessionError(userID)
	}

	if ackedAt.Before(session.IssuedAt) {
		ackedAt = session.IssuedAt
	}

	session.State = models.SessionStateAcknowledged
	session.AckedAt = ackedAt
	if err := s.repo.UpdateTerminal(ctx, session); err != nil {
		return nil, errors.NewStorageError("update session", err)
	}

	s.log.Debug().
		Int64("user_id", userID).
		Str("session_id", sessionID).
		Dur("elapsed", session.Elapsed()).
		Msg("Card session acknowledged")
	return session, nil
}

func (s *sessionService) Rollback(ctx context.Context, sessionID string) error {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		if err == repository.ErrSessionNotFound {
			// Already rolled back or resolved; nothing to undo.
			return nil
		}
		return errors.NewStorageError("get session", err)
	}
	if session.Terminal() {
		return nil
	}

	if err := s.repo.DeletePending(ctx, session); err != nil {
		return errors.NewStorageError("delete session", err)
	}

	s.log.Warn().
		Int64("user_id", session.UserID).
		Str("session_id", sessionID).
		Msg("Card session rolled back after failed delivery")
	return nil
}

func (s *sessionService) Expire(ctx context.Context, session *models.CardSession) error {
	if session.Terminal() {
		return nil
	}

	session.State = models.SessionStateExpired
	if err := s.repo.UpdateTerminal(ctx, session); err != nil {
		return errors.NewStorageError("update session", err)
	}

	s.log.Debug().
		Int64("user_id", session.UserID).
		Str("session_id", session.ID).
		Msg("Card session expired")
	return nil
}

func (s *sessionService) GetPending(ctx context.Context, userID int64) (*models.CardSession, error) {
	session, err := s.repo.GetPendingByUser(ctx, userID)
	if err != nil {
		if err == repository.ErrSessionNotFound {
			return nil, errors.NewNoPendingSessionError(userID)
		}
		return nil, errors.NewStorageError("get pending session", err)
	}
	return session, nil
}

func (s *sessionService) GetByID(ctx context.Context, sessionID string) (*models.CardSession, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		if err == repository.ErrSessionNotFound {
			return nil, errors.New(errors.ErrCodeSessionNotFound, "card session not found").
				WithDetail("session_id", sessionID)
		}
		return nil, errors.NewStorageError("get session", err)
	}
	return session, nil
}
