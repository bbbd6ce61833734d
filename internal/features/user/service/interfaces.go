package service

import (
	"context"

	"deskwarrior-backend/internal/features/user/models"
)

type UserService interface {
	GetUser(ctx context.Context, id int64) (*models.UserResponse, error)
	GetOrCreateUser(ctx context.Context, telegramID, chatID int64, username, firstName, lastName string) (*models.UserResponse, error)
	// ConfigureInterval sets the reminder cadence. Non-premium users are
	// pinned to the free interval; premium users pick from the allowed set.
	ConfigureInterval(ctx context.Context, id int64, minutes int) error
	Pause(ctx context.Context, id int64) error
	Resume(ctx context.Context, id int64) error
	GrantPremium(ctx context.Context, id int64) error
}
