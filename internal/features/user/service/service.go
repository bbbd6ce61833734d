package service

import (
	"context"

	"deskwarrior-backend/internal/common/config"
	"deskwarrior-backend/internal/common/errors"
	"deskwarrior-backend/internal/common/logger"
	"deskwarrior-backend/internal/features/user/models"
	"deskwarrior-backend/internal/features/user/repository"
	"deskwarrior-backend/internal/platform/clock"

	"github.com/rs/zerolog"
)

type userService struct {
	repo  repository.UserRepository
	cfg   *config.Config
	clock clock.Clock
	log   zerolog.Logger
}

func NewUserService(repo repository.UserRepository, cfg *config.Config, clk clock.Clock) UserService {
	return &userService{
		repo:  repo,
		cfg:   cfg,
		clock: clk,
		log:   logger.With("user-service"),
	}
}

func (s *userService) GetUser(ctx context.Context, id int64) (*models.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewUserNotFoundError(id)
	}

	return toUserResponse(user), nil
}

func (s *userService) GetOrCreateUser(ctx context.Context, telegramID, chatID int64, username, firstName, lastName string) (*models.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, telegramID)
	if err == nil {
		if user.Username != username || user.FirstName != firstName || user.LastName != lastName || user.ChatID != chatID {
			user.Username = username
			user.FirstName = firstName
			user.LastName = lastName
			user.ChatID = chatID
			user.UpdatedAt = s.clock.Now()
			if err := s.repo.Update(ctx, user); err != nil {
				return nil, errors.NewStorageError("update user", err)
			}
		}
		return toUserResponse(user), nil
	}

	now := s.clock.Now()
	newUser := &models.User{
		ID:          telegramID,
		ChatID:      chatID,
		Username:    username,
		FirstName:   firstName,
		LastName:    lastName,
		IntervalMin: s.cfg.Reminders.FreeIntervalMin,
		Status:      models.UserStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		return nil, errors.NewStorageError("create user", err)
	}

	s.log.Info().Int64("user_id", telegramID).Int64("chat_id", chatID).Msg("User registered")
	return toUserResponse(newUser), nil
}

func (s *userService) ConfigureInterval(ctx context.Context, id int64, minutes int) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return errors.NewUserNotFoundError(id)
	}

	if !s.intervalAllowed(user, minutes) {
		// Prior configuration stays untouched.
		return errors.NewInvalidIntervalError(id, minutes)
	}

	user.IntervalMin = minutes
	user.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, user); err != nil {
		return errors.NewStorageError("update user", err)
	}

	s.log.Info().Int64("user_id", id).Int("interval_min", minutes).Msg("Reminder interval configured")
	return nil
}

func (s *userService) intervalAllowed(user *models.User, minutes int) bool {
	if !user.Premium {
		return minutes == s.cfg.Reminders.FreeIntervalMin
	}
	for _, allowed := range s.cfg.Reminders.PremiumIntervalsMin {
		if minutes == allowed {
			return true
		}
	}
	return false
}

func (s *userService) Pause(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, models.UserStatusPaused)
}

func (s *userService) Resume(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, models.UserStatusActive)
}

func (s *userService) setStatus(ctx context.Context, id int64, status models.UserStatus) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return errors.NewUserNotFoundError(id)
	}
	if user.Status == status {
		return nil
	}

	user.Status = status
	user.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, user); err != nil {
		return errors.NewStorageError("update user", err)
	}

	s.log.Info().Int64("user_id", id).Str("status", string(status)).Msg("User status changed")
	return nil
}

func (s *userService) GrantPremium(ctx context.Context, id int64) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return errors.NewUserNotFoundError(id)
	}
	if user.Premium {
		return nil
	}

	user.Premium = true
	user.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, user); err != nil {
		return errors.NewStorageError("update user", err)
	}

	s.log.Info().Int64("user_id", id).Msg("Premium granted")
	return nil
}

func toUserResponse(user *models.User) *models.UserResponse {
	return &models.UserResponse{
		ID:          user.ID,
		ChatID:      user.ChatID,
		Username:    user.Username,
		FirstName:   user.FirstName,
		Premium:     user.Premium,
		IntervalMin: user.IntervalMin,
		Status:      user.Status,
		Streak:      user.Streak,
		CreatedAt:   user.CreatedAt,
	}
}
