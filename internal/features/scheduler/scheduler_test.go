package scheduler

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"deskwarrior-backend/internal/common/config"
	apperrors "deskwarrior-backend/internal/common/errors"
	"deskwarrior-backend/internal/common/lock"
	"deskwarrior-backend/internal/features/anticheat"
	"deskwarrior-backend/internal/features/catalog"
	catalogmodels "deskwarrior-backend/internal/features/catalog/models"
	leaderboardmemory "deskwarrior-backend/internal/features/leaderboard/repository/memory"
	leaderboardservice "deskwarrior-backend/internal/features/leaderboard/service"
	scoringmemory "deskwarrior-backend/internal/features/scoring/repository/memory"
	scoringservice "deskwarrior-backend/internal/features/scoring/service"
	sessionmodels "deskwarrior-backend/internal/features/session/models"
	sessionmemory "deskwarrior-backend/internal/features/session/repository/memory"
	sessionservice "deskwarrior-backend/internal/features/session/service"
	usermodels "deskwarrior-backend/internal/features/user/models"
	userrepo "deskwarrior-backend/internal/features/user/repository"
	usermemory "deskwarrior-backend/internal/features/user/repository/memory"
	"deskwarrior-backend/internal/platform/clock"
)

var testStart = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type fakeDeliverer struct {
	mu        sync.Mutex
	delivered []*sessionmodels.CardSession
	fail      bool
}

func (f *fakeDeliverer) DeliverCard(_ context.Context, session *sessionmodels.CardSession, _ *catalogmodels.CardDefinition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("telegram unreachable")
	}
	f.delivered = append(f.delivered, session)
	return nil
}

func (f *fakeDeliverer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delivered)
}

type schedulerFixture struct {
	scheduler *Scheduler
	users     userrepo.UserRepository
	sessions  sessionservice.SessionService
	deliverer *fakeDeliverer
	clock     *clock.Fake
	locks     *lock.Keyed
	cfg       *config.Config
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.Reminders.FreeIntervalMin = 60
	cfg.Reminders.TickInterval = 15 * time.Second
	cfg.Scoring.StreakGapFactor = 2

	users := usermemory.NewUserRepository()
	sessions := sessionservice.NewSessionService(sessionmemory.NewSessionRepository())
	deliverer := &fakeDeliverer{}
	clk := clock.NewFake(testStart)
	locks := lock.NewKeyed()

	s := New(
		users,
		sessions,
		catalog.NewDefault(),
		deliverer,
		locks,
		clk,
		cfg,
		rand.New(rand.NewSource(1)),
	)

	return &schedulerFixture{
		scheduler: s,
		users:     users,
		sessions:  sessions,
		deliverer: deliverer,
		clock:     clk,
		locks:     locks,
		cfg:       cfg,
	}
}

type noopNotifier struct{}

func (noopNotifier) NotifyScore(_ context.Context, _, _ int64, _, _, _ int, _ anticheat.Tier) error {
	return nil
}

// newCompletion wires a completion service over the fixture's repositories,
// sharing its user locks the way the wiring in cmd does.
func (f *schedulerFixture) newCompletion() *sessionservice.CompletionService {
	ledger := scoringmemory.NewLedgerRepository()
	return sessionservice.NewCompletionService(
		f.sessions,
		f.users,
		anticheat.New(anticheat.DefaultRejectRatio),
		scoringservice.NewScoringService(f.users, ledger, f.cfg),
		leaderboardservice.NewLeaderboardService(leaderboardmemory.NewRowRepository(), ledger),
		noopNotifier{},
		f.locks,
	)
}

func (f *schedulerFixture) addUser(t *testing.T, id int64) *usermodels.User {
	t.Helper()
	user := &usermodels.User{
		ID:          id,
		ChatID:      id,
		Status:      usermodels.UserStatusActive,
		IntervalMin: 60,
		CreatedAt:   testStart,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func TestTickUserIssuesWhenDue(t *testing.T) {
	f := newSchedulerFixture(t)
	ctx := context.Background()
	f.addUser(t, 100)

	require.NoError(t, f.scheduler.TickUser(ctx, 100))
	require.Equal(t, 1, f.deliverer.count())

	pending, err := f.sessions.GetPending(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, testStart, pending.IssuedAt)

	user, err := f.users.GetByID(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, testStart, user.LastIssuedAt)
}

func TestTickUserRespectsInterval(t *testing.T) {
	f := newSchedulerFixture(t)
	ctx := context.Background()
	f.addUser(t, 100)

	require.NoError(t, f.scheduler.TickUser(ctx, 100))
	require.Equal(t, 1, f.deliverer.count())

	// Resolve the pending card so only the cadence gates the next issue.
	pending, err := f.sessions.GetPending(ctx, 100)
	require.NoError(t, err)
	f.clock.Advance(30 * time.Second)
	_, err = f.sessions.Acknowledge(ctx, 100, pending.ID, f.clock.Now())
	require.NoError(t, err)

	// Half an hour in: not due yet.
	f.clock.Advance(30 * time.Minute)
	require.NoError(t, f.scheduler.TickUser(ctx, 100))
	require.Equal(t, 1, f.deliverer.count())

	// Past the hour: due again.
	f.clock.Advance(31 * time.Minute)
	require.NoError(t, f.scheduler.TickUser(ctx, 100))
	require.Equal(t, 2, f.deliverer.count())
}

func TestTickUserSkipsWhilePending(t *testing.T) {
	f := newSchedulerFixture(t)
	ctx := context.Background()
	f.addUser(t, 100)

	require.NoError(t, f.scheduler.TickUser(ctx, 100))
	require.Equal(t, 1, f.deliverer.count())

	// Even past the interval, an unresolved card blocks the next one.
	f.clock.Advance(2 * time.Hour)
	require.NoError(t, f.scheduler.TickUser(ctx, 100))
	require.Equal(t, 1, f.deliverer.count())
}

func TestTickUserSkipsPaused(t *testing.T) {
	f := newSchedulerFixture(t)
	ctx := context.Background()
	user := f.addUser(t, 100)

	user.Status = usermodels.UserStatusPaused
	require.NoError(t, f.users.Update(ctx, user))

	require.NoError(t, f.scheduler.TickUser(ctx, 100))
	require.Equal(t, 0, f.deliverer.count())
}

func TestTickUserRollsBackFailedDelivery(t *testing.T) {
	f := newSchedulerFixture(t)
	ctx := context.Background()
	f.addUser(t, 100)

	f.deliverer.fail = true
	require.NoError(t, f.scheduler.TickUser(ctx, 100))

	// No pending session survives the failed delivery and the cadence
	// clock did not advance, so the next tick retries immediately.
	_, err := f.sessions.GetPending(ctx, 100)
	require.Error(t, err)

	user, err := f.users.GetByID(ctx, 100)
	require.NoError(t, err)
	require.True(t, user.LastIssuedAt.IsZero())

	f.deliverer.fail = false
	require.NoError(t, f.scheduler.TickUser(ctx, 100))
	require.Equal(t, 1, f.deliverer.count())

	pending, err := f.sessions.GetPending(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, sessionmodels.SessionStatePending, pending.State)
}

func TestFailedDeliveryReportRetriesNextTick(t *testing.T) {
	f := newSchedulerFixture(t)
	ctx := context.Background()
	completion := f.newCompletion()
	f.addUser(t, 100)

	require.NoError(t, f.scheduler.TickUser(ctx, 100))
	require.Equal(t, 1, f.deliverer.count())

	pending, err := f.sessions.GetPending(ctx, 100)
	require.NoError(t, err)

	// The relay reports the send failed after the fact.
	require.NoError(t, completion.HandleDeliveryResult(ctx, pending.ID, false))

	// One tick later the user is due again, not a full interval later.
	f.clock.Advance(f.cfg.Reminders.TickInterval)
	require.NoError(t, f.scheduler.TickUser(ctx, 100))
	require.Equal(t, 2, f.deliverer.count())
}

func TestIssueNowBypassesInterval(t *testing.T) {
	f := newSchedulerFixture(t)
	ctx := context.Background()
	f.addUser(t, 100)

	require.NoError(t, f.scheduler.TickUser(ctx, 100))
	require.Equal(t, 1, f.deliverer.count())

	pending, err := f.sessions.GetPending(ctx, 100)
	require.NoError(t, err)
	f.clock.Advance(30 * time.Second)
	_, err = f.sessions.Acknowledge(ctx, 100, pending.ID, f.clock.Now())
	require.NoError(t, err)

	// Well inside the hour, a scheduled tick stays quiet but an explicit
	// request issues right away.
	f.clock.Advance(time.Minute)
	require.NoError(t, f.scheduler.TickUser(ctx, 100))
	require.Equal(t, 1, f.deliverer.count())

	require.NoError(t, f.scheduler.IssueNow(ctx, 100))
	require.Equal(t, 2, f.deliverer.count())

	// The cadence restarts from the on-demand card.
	user, err := f.users.GetByID(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, f.clock.Now(), user.LastIssuedAt)
}

func TestIssueNowBlockedWhilePending(t *testing.T) {
	f := newSchedulerFixture(t)
	ctx := context.Background()
	f.addUser(t, 100)

	require.NoError(t, f.scheduler.TickUser(ctx, 100))

	err := f.scheduler.IssueNow(ctx, 100)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperrors.ErrCodeConflict, appErr.Code)
	require.Equal(t, 1, f.deliverer.count())
}

func TestIssueNowRejectsPaused(t *testing.T) {
	f := newSchedulerFixture(t)
	ctx := context.Background()
	user := f.addUser(t, 100)

	user.Status = usermodels.UserStatusPaused
	require.NoError(t, f.users.Update(ctx, user))

	err := f.scheduler.IssueNow(ctx, 100)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperrors.ErrCodeUserPaused, appErr.Code)
	require.Equal(t, 0, f.deliverer.count())
}

func TestIssueNowRollsBackFailedDelivery(t *testing.T) {
	f := newSchedulerFixture(t)
	ctx := context.Background()
	f.addUser(t, 100)

	f.deliverer.fail = true
	err := f.scheduler.IssueNow(ctx, 100)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperrors.ErrCodeDeliveryFailure, appErr.Code)

	_, err = f.sessions.GetPending(ctx, 100)
	require.Error(t, err)

	user, err := f.users.GetByID(ctx, 100)
	require.NoError(t, err)
	require.True(t, user.LastIssuedAt.IsZero())
}

func TestTickCoversAllActiveUsers(t *testing.T) {
	f := newSchedulerFixture(t)
	ctx := context.Background()

	for id := int64(1); id <= 5; id++ {
		f.addUser(t, id)
	}
	paused := f.addUser(t, 6)
	paused.Status = usermodels.UserStatusPaused
	require.NoError(t, f.users.Update(ctx, paused))

	require.NoError(t, f.scheduler.Tick(ctx))
	require.Equal(t, 5, f.deliverer.count())

	for id := int64(1); id <= 5; id++ {
		_, err := f.sessions.GetPending(ctx, id)
		require.NoError(t, err)
	}
	_, err := f.sessions.GetPending(ctx, 6)
	require.Error(t, err)
}
