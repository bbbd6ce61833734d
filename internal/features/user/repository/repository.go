package repository

import (
	"context"
	"errors"

	"deskwarrior-backend/internal/features/user/models"
)

// ErrUserNotFound is returned when no record exists for the requested ID.
var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// ListActiveIDs returns the IDs of users eligible for scheduling.
	ListActiveIDs(ctx context.Context) ([]int64, error)
}
