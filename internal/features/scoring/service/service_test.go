package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"deskwarrior-backend/internal/common/config"
	"deskwarrior-backend/internal/features/anticheat"
	catalogmodels "deskwarrior-backend/internal/features/catalog/models"
	"deskwarrior-backend/internal/features/scoring/repository"
	scoringmemory "deskwarrior-backend/internal/features/scoring/repository/memory"
	sessionmodels "deskwarrior-backend/internal/features/session/models"
	usermodels "deskwarrior-backend/internal/features/user/models"
	userrepo "deskwarrior-backend/internal/features/user/repository"
	usermemory "deskwarrior-backend/internal/features/user/repository/memory"
)

var testStart = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Scoring.StreakGapFactor = 2
	return cfg
}

func newTestService(t *testing.T) (ScoringService, userrepo.UserRepository, repository.LedgerRepository) {
	t.Helper()
	users := usermemory.NewUserRepository()
	ledger := scoringmemory.NewLedgerRepository()
	return NewScoringService(users, ledger, testConfig()), users, ledger
}

func seedUser(t *testing.T, users userrepo.UserRepository, intervalMin int) *usermodels.User {
	t.Helper()
	user := &usermodels.User{
		ID:          100,
		ChatID:      -500,
		Status:      usermodels.UserStatusActive,
		IntervalMin: intervalMin,
		CreatedAt:   testStart,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func ackedSession(points int, issuedAt time.Time, elapsed time.Duration) *sessionmodels.CardSession {
	return &sessionmodels.CardSession{
		ID:               uuid.New().String(),
		UserID:           100,
		ChatID:           -500,
		CardID:           "ex_push_ups",
		CardKind:         catalogmodels.CardKindExercise,
		Exercise:         catalogmodels.ExercisePushUps,
		Points:           points,
		ExpectedDuration: 20 * time.Second,
		State:            sessionmodels.SessionStateAcknowledged,
		IssuedAt:         issuedAt,
		AckedAt:          issuedAt.Add(elapsed),
	}
}

func TestApplyFullCredit(t *testing.T) {
	svc, users, ledger := newTestService(t)
	ctx := context.Background()
	seedUser(t, users, 30)

	session := ackedSession(10, testStart, 25*time.Second)
	entry, err := svc.Apply(ctx, session, anticheat.Result{Tier: anticheat.TierFull})
	require.NoError(t, err)

	require.Equal(t, 10, entry.Points)
	require.Equal(t, 1, entry.Streak)
	require.Equal(t, session.AckedAt, entry.CreatedAt)
	require.Equal(t, session.ID, entry.SessionID)

	user, err := users.GetByID(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, 1, user.Streak)
	require.Equal(t, session.AckedAt, user.LastSuccessAt)

	entries, err := ledger.ListByChat(ctx, -500)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestApplyStreakGrowsWithinGap(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, users, 30)

	// First success at t+25s.
	_, err := svc.Apply(ctx, ackedSession(10, testStart, 25*time.Second), anticheat.Result{Tier: anticheat.TierFull})
	require.NoError(t, err)

	// Next success 30 minutes later, well within the 2x interval gap.
	next := ackedSession(10, testStart.Add(30*time.Minute), 5*time.Second+20*time.Second)
	entry, err := svc.Apply(ctx, next, anticheat.Result{Tier: anticheat.TierFull})
	require.NoError(t, err)
	require.Equal(t, 2, entry.Streak)

	// A success beyond the gap restarts the streak at 1.
	late := ackedSession(10, testStart.Add(4*time.Hour), 25*time.Second)
	entry, err = svc.Apply(ctx, late, anticheat.Result{Tier: anticheat.TierFull})
	require.NoError(t, err)
	require.Equal(t, 1, entry.Streak)
}

func TestApplyRejectedBreaksStreak(t *testing.T) {
	svc, users, ledger := newTestService(t)
	ctx := context.Background()
	seedUser(t, users, 30)

	_, err := svc.Apply(ctx, ackedSession(10, testStart, 25*time.Second), anticheat.Result{Tier: anticheat.TierFull})
	require.NoError(t, err)

	before, err := users.GetByID(ctx, 100)
	require.NoError(t, err)

	rejected := ackedSession(10, testStart.Add(30*time.Minute), 2*time.Second)
	entry, err := svc.Apply(ctx, rejected, anticheat.Result{Tier: anticheat.TierRejected})
	require.NoError(t, err)
	require.Equal(t, 0, entry.Points)
	require.Equal(t, 0, entry.Streak)

	user, err := users.GetByID(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, 0, user.Streak)
	// A rejected attempt does not count as a success.
	require.Equal(t, before.LastSuccessAt, user.LastSuccessAt)

	// The rejection is still on the ledger for the audit trail.
	entries, err := ledger.ListByChat(ctx, -500)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestApplyReducedCredit(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, users, 30)

	entry, err := svc.Apply(ctx, ackedSession(15, testStart, 10*time.Second), anticheat.Result{Tier: anticheat.TierReduced})
	require.NoError(t, err)
	require.Equal(t, 7, entry.Points)
	// A reduced completion still extends the streak.
	require.Equal(t, 1, entry.Streak)
}

func TestBasePoints(t *testing.T) {
	cases := []struct {
		nominal int
		tier    anticheat.Tier
		want    int
	}{
		{10, anticheat.TierFull, 10},
		{10, anticheat.TierReduced, 5},
		{15, anticheat.TierReduced, 7},
		{1, anticheat.TierReduced, 1},
		{0, anticheat.TierReduced, 0},
		{10, anticheat.TierRejected, 0},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, basePoints(tc.nominal, tc.tier), "nominal=%d tier=%s", tc.nominal, tc.tier)
	}
}

func TestApplyStreakBonus(t *testing.T) {
	users := usermemory.NewUserRepository()
	ledger := scoringmemory.NewLedgerRepository()
	cfg := testConfig()
	cfg.Scoring.StreakBonus = true
	svc := NewScoringService(users, ledger, cfg)
	ctx := context.Background()

	user := seedUser(t, users, 30)
	user.Streak = 2
	user.LastSuccessAt = testStart
	require.NoError(t, users.Update(ctx, user))

	// Third consecutive success: multiplier 1.2.
	session := ackedSession(10, testStart.Add(30*time.Minute), 25*time.Second)
	entry, err := svc.Apply(ctx, session, anticheat.Result{Tier: anticheat.TierFull})
	require.NoError(t, err)
	require.Equal(t, 3, entry.Streak)
	require.Equal(t, 12, entry.Points)

	// The multiplier caps at 2x no matter how long the streak runs.
	user, err = users.GetByID(ctx, 100)
	require.NoError(t, err)
	user.Streak = 50
	user.LastSuccessAt = session.AckedAt
	require.NoError(t, users.Update(ctx, user))

	capped := ackedSession(10, session.AckedAt.Add(30*time.Minute), 25*time.Second)
	entry, err = svc.Apply(ctx, capped, anticheat.Result{Tier: anticheat.TierFull})
	require.NoError(t, err)
	require.Equal(t, 20, entry.Points)
}
