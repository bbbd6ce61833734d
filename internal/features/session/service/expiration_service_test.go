package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"deskwarrior-backend/internal/common/config"
	"deskwarrior-backend/internal/common/errors"
	"deskwarrior-backend/internal/common/lock"
	"deskwarrior-backend/internal/features/session/models"
	sessionmemory "deskwarrior-backend/internal/features/session/repository/memory"
	"deskwarrior-backend/internal/platform/clock"
)

func newSweeperFixture(t *testing.T) (*ExpirationService, SessionService, *clock.Fake) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Sessions.GraceWindow = 10 * time.Minute
	cfg.Sessions.SweepInterval = 30 * time.Second

	repo := sessionmemory.NewSessionRepository()
	sessions := NewSessionService(repo)
	clk := clock.NewFake(testStart)
	sweeper := NewExpirationService(repo, sessions, lock.NewKeyed(), clk, cfg)
	return sweeper, sessions, clk
}

func TestSweepExpiresBeyondGrace(t *testing.T) {
	sweeper, sessions, clk := newSweeperFixture(t)
	ctx := context.Background()

	session, err := sessions.Issue(ctx, testUser(), pushUpsCard(), clk.Now())
	require.NoError(t, err)

	// Five minutes in: still inside the grace window.
	clk.Advance(5 * time.Minute)
	require.NoError(t, sweeper.Sweep(ctx))

	pending, err := sessions.GetPending(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, session.ID, pending.ID)

	// Past the window: the card times out.
	clk.Advance(6 * time.Minute)
	require.NoError(t, sweeper.Sweep(ctx))

	expired, err := sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, models.SessionStateExpired, expired.State)

	_, err = sessions.GetPending(ctx, 100)
	require.Error(t, err)
}

func TestSweepIgnoresAcknowledged(t *testing.T) {
	sweeper, sessions, clk := newSweeperFixture(t)
	ctx := context.Background()

	session, err := sessions.Issue(ctx, testUser(), pushUpsCard(), clk.Now())
	require.NoError(t, err)

	clk.Advance(25 * time.Second)
	_, err = sessions.Acknowledge(ctx, 100, session.ID, clk.Now())
	require.NoError(t, err)

	clk.Advance(time.Hour)
	require.NoError(t, sweeper.Sweep(ctx))

	kept, err := sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, models.SessionStateAcknowledged, kept.State)
}

func TestAckAfterExpiryIsStale(t *testing.T) {
	sweeper, sessions, clk := newSweeperFixture(t)
	ctx := context.Background()

	session, err := sessions.Issue(ctx, testUser(), pushUpsCard(), clk.Now())
	require.NoError(t, err)

	clk.Advance(11 * time.Minute)
	require.NoError(t, sweeper.Sweep(ctx))

	// The late tap lands on a terminal session.
	_, err = sessions.Acknowledge(ctx, 100, session.ID, clk.Now())
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	require.True(t, appErr.IsIgnorable())
}

func TestSweepFreesSlotForNextIssue(t *testing.T) {
	sweeper, sessions, clk := newSweeperFixture(t)
	ctx := context.Background()

	_, err := sessions.Issue(ctx, testUser(), pushUpsCard(), clk.Now())
	require.NoError(t, err)

	clk.Advance(11 * time.Minute)
	require.NoError(t, sweeper.Sweep(ctx))

	// The user can be issued a fresh card immediately.
	next, err := sessions.Issue(ctx, testUser(), pushUpsCard(), clk.Now())
	require.NoError(t, err)
	require.Equal(t, models.SessionStatePending, next.State)
}
