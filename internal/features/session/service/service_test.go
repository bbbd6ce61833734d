package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"deskwarrior-backend/internal/common/errors"
	catalogmodels "deskwarrior-backend/internal/features/catalog/models"
	"deskwarrior-backend/internal/features/session/models"
	sessionmemory "deskwarrior-backend/internal/features/session/repository/memory"
	usermodels "deskwarrior-backend/internal/features/user/models"
)

var testStart = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func testUser() *usermodels.User {
	return &usermodels.User{
		ID:          100,
		ChatID:      -500,
		Status:      usermodels.UserStatusActive,
		IntervalMin: 30,
	}
}

func pushUpsCard() *catalogmodels.CardDefinition {
	return &catalogmodels.CardDefinition{
		ID:               "ex_push_ups",
		Kind:             catalogmodels.CardKindExercise,
		Exercise:         catalogmodels.ExercisePushUps,
		ExpectedDuration: 20 * time.Second,
		Points:           10,
		Weight:           12,
	}
}

func tipCard() *catalogmodels.CardDefinition {
	return &catalogmodels.CardDefinition{
		ID:     "tip_posture",
		Kind:   catalogmodels.CardKindWellnessTip,
		Weight: 5,
	}
}

func TestIssueDeniesSecondPending(t *testing.T) {
	svc := NewSessionService(sessionmemory.NewSessionRepository())
	ctx := context.Background()

	session, err := svc.Issue(ctx, testUser(), pushUpsCard(), testStart)
	require.NoError(t, err)
	require.Equal(t, models.SessionStatePending, session.State)
	require.Equal(t, 10, session.Points)
	require.Equal(t, 20*time.Second, session.ExpectedDuration)

	_, err = svc.Issue(ctx, testUser(), pushUpsCard(), testStart.Add(time.Minute))
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrCodeConflict, appErr.Code)

	// The original pending session is untouched.
	pending, err := svc.GetPending(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, session.ID, pending.ID)
}

func TestAcknowledgeHappyPath(t *testing.T) {
	svc := NewSessionService(sessionmemory.NewSessionRepository())
	ctx := context.Background()

	session, err := svc.Issue(ctx, testUser(), pushUpsCard(), testStart)
	require.NoError(t, err)

	acked, err := svc.Acknowledge(ctx, 100, session.ID, testStart.Add(25*time.Second))
	require.NoError(t, err)
	require.Equal(t, models.SessionStateAcknowledged, acked.State)
	require.Equal(t, 25*time.Second, acked.Elapsed())

	// The pending slot is free again.
	_, err = svc.GetPending(ctx, 100)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrCodeNoPendingSession, appErr.Code)
}

func TestAcknowledgeDuplicate(t *testing.T) {
	svc := NewSessionService(sessionmemory.NewSessionRepository())
	ctx := context.Background()

	session, err := svc.Issue(ctx, testUser(), pushUpsCard(), testStart)
	require.NoError(t, err)

	_, err = svc.Acknowledge(ctx, 100, session.ID, testStart.Add(25*time.Second))
	require.NoError(t, err)

	_, err = svc.Acknowledge(ctx, 100, session.ID, testStart.Add(30*time.Second))
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrCodeDuplicateAck, appErr.Code)
	require.True(t, appErr.IsIgnorable())

	// The first acknowledgement stands.
	final, err := svc.GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, testStart.Add(25*time.Second), final.AckedAt)
}

func TestAcknowledgeWellnessTip(t *testing.T) {
	svc := NewSessionService(sessionmemory.NewSessionRepository())
	ctx := context.Background()

	session, err := svc.Issue(ctx, testUser(), tipCard(), testStart)
	require.NoError(t, err)

	_, err = svc.Acknowledge(ctx, 100, session.ID, testStart.Add(time.Minute))
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrCodeNotAcknowledgeable, appErr.Code)
	require.True(t, appErr.IsIgnorable())
}

func TestAcknowledgeWrongUser(t *testing.T) {
	svc := NewSessionService(sessionmemory.NewSessionRepository())
	ctx := context.Background()

	session, err := svc.Issue(ctx, testUser(), pushUpsCard(), testStart)
	require.NoError(t, err)

	_, err = svc.Acknowledge(ctx, 999, session.ID, testStart.Add(25*time.Second))
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrCodeValidation, appErr.Code)
}

func TestAcknowledgeUnknownSession(t *testing.T) {
	svc := NewSessionService(sessionmemory.NewSessionRepository())

	_, err := svc.Acknowledge(context.Background(), 100, "no-such-session", testStart)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrCodeSessionNotFound, appErr.Code)
}

func TestAcknowledgeClampsEarlyTimestamp(t *testing.T) {
	svc := NewSessionService(sessionmemory.NewSessionRepository())
	ctx := context.Background()

	session, err := svc.Issue(ctx, testUser(), pushUpsCard(), testStart)
	require.NoError(t, err)

	// A timestamp before issuance counts as an instant completion.
	acked, err := svc.Acknowledge(ctx, 100, session.ID, testStart.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, session.IssuedAt, acked.AckedAt)
	require.Equal(t, time.Duration(0), acked.Elapsed())
}

func TestRollback(t *testing.T) {
	svc := NewSessionService(sessionmemory.NewSessionRepository())
	ctx := context.Background()

	session, err := svc.Issue(ctx, testUser(), pushUpsCard(), testStart)
	require.NoError(t, err)

	require.NoError(t, svc.Rollback(ctx, session.ID))

	// The session is gone as if never issued.
	_, err = svc.GetByID(ctx, session.ID)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrCodeSessionNotFound, appErr.Code)

	// Rolling back twice, or rolling back an unknown ID, is a no-op.
	require.NoError(t, svc.Rollback(ctx, session.ID))
	require.NoError(t, svc.Rollback(ctx, "no-such-session"))
}

func TestRollbackLeavesTerminalAlone(t *testing.T) {
	svc := NewSessionService(sessionmemory.NewSessionRepository())
	ctx := context.Background()

	session, err := svc.Issue(ctx, testUser(), pushUpsCard(), testStart)
	require.NoError(t, err)
	_, err = svc.Acknowledge(ctx, 100, session.ID, testStart.Add(25*time.Second))
	require.NoError(t, err)

	require.NoError(t, svc.Rollback(ctx, session.ID))

	kept, err := svc.GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, models.SessionStateAcknowledged, kept.State)
}

func TestExpire(t *testing.T) {
	svc := NewSessionService(sessionmemory.NewSessionRepository())
	ctx := context.Background()

	session, err := svc.Issue(ctx, testUser(), pushUpsCard(), testStart)
	require.NoError(t, err)

	require.NoError(t, svc.Expire(ctx, session))

	expired, err := svc.GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, models.SessionStateExpired, expired.State)

	// An expired card can no longer be acknowledged.
	_, err = svc.Acknowledge(ctx, 100, session.ID, testStart.Add(time.Minute))
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	require.True(t, appErr.IsIgnorable())
}
