package service

import (
	"context"
	"time"

	catalogmodels "deskwarrior-backend/internal/features/catalog/models"
	"deskwarrior-backend/internal/features/session/models"
	usermodels "deskwarrior-backend/internal/features/user/models"
)

type SessionService interface {
	// Issue creates a pending session for the user. Fails while another
	// session is pending.
	Issue(ctx context.Context, user *usermodels.User, card *catalogmodels.CardDefinition, now time.Time) (*models.CardSession, error)
	// Acknowledge transitions the user's current pending session to
	// acknowledged. Stale, duplicate, or wellness-tip acknowledgements
	// fail without side effects.
	Acknowledge(ctx context.Context, userID int64, sessionID string, ackedAt time.Time) (*models.CardSession, error)
	// Rollback deletes a still-pending session after a failed delivery,
	// as if it was never issued.
	Rollback(ctx context.Context, sessionID string) error
	// Expire transitions a pending session to expired. Used by the
	// sweeper and by the pause path.
	Expire(ctx context.Context, session *models.CardSession) error
	GetPending(ctx context.Context, userID int64) (*models.CardSession, error)
	GetByID(ctx context.Context, sessionID string) (*models.CardSession, error)
}
