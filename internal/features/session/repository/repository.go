package repository

import (
	"context"
	"errors"
	"time"

	"deskwarrior-backend/internal/features/session/models"
)

var (
	ErrSessionNotFound = errors.New("card session not found")
	// ErrPendingExists is returned when a user already has a pending
	// session; the one-pending-per-user invariant is enforced here.
	ErrPendingExists = errors.New("user already has a pending card session")
)

type SessionRepository interface {
	// CreatePending stores a new pending session and claims the user's
	// pending slot atomically. Fails with ErrPendingExists if the slot is
	// taken.
	CreatePending(ctx context.Context, session *models.CardSession) error
	GetByID(ctx context.Context, id string) (*models.CardSession, error)
	GetPendingByUser(ctx context.Context, userID int64) (*models.CardSession, error)
	// UpdateTerminal persists a terminal transition and releases the
	// user's pending slot.
	UpdateTerminal(ctx context.Context, session *models.CardSession) error
	// DeletePending removes a pending session as if it was never issued
	// (delivery-failure rollback).
	DeletePending(ctx context.Context, session *models.CardSession) error
	// ListPendingOlderThan returns pending sessions issued at or before
	// the cutoff, for the expiry sweeper.
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*models.CardSession, error)
}
