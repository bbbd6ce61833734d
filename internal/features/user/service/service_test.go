package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"deskwarrior-backend/internal/common/config"
	"deskwarrior-backend/internal/common/errors"
	"deskwarrior-backend/internal/features/user/models"
	"deskwarrior-backend/internal/features/user/repository"
	"deskwarrior-backend/internal/features/user/repository/memory"
	"deskwarrior-backend/internal/platform/clock"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Reminders.FreeIntervalMin = 60
	cfg.Reminders.PremiumIntervalsMin = []int{30, 45, 60}
	return cfg
}

func newTestService(t *testing.T) (UserService, repository.UserRepository, *clock.Fake) {
	t.Helper()
	repo := memory.NewUserRepository()
	clk := clock.NewFake(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	return NewUserService(repo, testConfig(), clk), repo, clk
}

func TestGetOrCreateUser(t *testing.T) {
	svc, repo, clk := newTestService(t)
	ctx := context.Background()

	resp, err := svc.GetOrCreateUser(ctx, 100, 100, "johndoe", "John", "Doe")
	require.NoError(t, err)
	require.Equal(t, int64(100), resp.ID)
	require.Equal(t, 60, resp.IntervalMin)
	require.Equal(t, models.UserStatusActive, resp.Status)
	require.False(t, resp.Premium)
	require.Equal(t, clk.Now(), resp.CreatedAt)

	// Second call with changed profile data updates in place.
	clk.Advance(time.Hour)
	resp, err = svc.GetOrCreateUser(ctx, 100, 100, "johnd", "John", "Doe")
	require.NoError(t, err)
	require.Equal(t, "johnd", resp.Username)

	user, err := repo.GetByID(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, "johnd", user.Username)
	require.Equal(t, clk.Now(), user.UpdatedAt)
}

func TestGetUserNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetUser(context.Background(), 404)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrCodeUserNotFound, appErr.Code)
}

func TestConfigureIntervalFreeUser(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetOrCreateUser(ctx, 100, 100, "johndoe", "John", "")
	require.NoError(t, err)

	// Free users cannot deviate from the baseline cadence.
	err = svc.ConfigureInterval(ctx, 100, 45)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrCodeInvalidInterval, appErr.Code)

	// The rejection leaves the prior configuration untouched.
	user, err := repo.GetByID(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, 60, user.IntervalMin)

	// Restating the baseline is allowed.
	require.NoError(t, svc.ConfigureInterval(ctx, 100, 60))
}

func TestConfigureIntervalPremiumUser(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetOrCreateUser(ctx, 100, 100, "johndoe", "John", "")
	require.NoError(t, err)
	require.NoError(t, svc.GrantPremium(ctx, 100))

	require.NoError(t, svc.ConfigureInterval(ctx, 100, 30))
	require.NoError(t, svc.ConfigureInterval(ctx, 100, 45))

	err = svc.ConfigureInterval(ctx, 100, 7)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrCodeInvalidInterval, appErr.Code)

	user, err := repo.GetByID(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, 45, user.IntervalMin)
	require.Equal(t, 45*time.Minute, user.Interval())
}

func TestPauseAndResume(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetOrCreateUser(ctx, 100, 100, "johndoe", "John", "")
	require.NoError(t, err)
	_, err = svc.GetOrCreateUser(ctx, 200, 200, "janedoe", "Jane", "")
	require.NoError(t, err)

	require.NoError(t, svc.Pause(ctx, 100))

	ids, err := repo.ListActiveIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{200}, ids)

	// Pausing twice is a no-op.
	require.NoError(t, svc.Pause(ctx, 100))

	require.NoError(t, svc.Resume(ctx, 100))
	ids, err = repo.ListActiveIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{100, 200}, ids)
}

func TestGrantPremiumIdempotent(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetOrCreateUser(ctx, 100, 100, "johndoe", "John", "")
	require.NoError(t, err)

	require.NoError(t, svc.GrantPremium(ctx, 100))
	require.NoError(t, svc.GrantPremium(ctx, 100))

	user, err := repo.GetByID(ctx, 100)
	require.NoError(t, err)
	require.True(t, user.Premium)
}
