package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"deskwarrior-backend/internal/common/errors"
	"deskwarrior-backend/internal/common/lock"
	"deskwarrior-backend/internal/common/logger"
	"deskwarrior-backend/internal/features/anticheat"
	leaderboardservice "deskwarrior-backend/internal/features/leaderboard/service"
	scoringservice "deskwarrior-backend/internal/features/scoring/service"
	userrepo "deskwarrior-backend/internal/features/user/repository"
	"deskwarrior-backend/internal/observability"
)

// ScoreNotifier is the outbound collaborator that surfaces score updates to
// the user. Notification failures are logged and dropped, never propagated.
type ScoreNotifier interface {
	NotifyScore(ctx context.Context, userID, chatID int64, points, newTotal, streak int, tier anticheat.Tier) error
}

// CompletionService runs the acknowledgement path end to end: resolve the
// session, classify the completion, score it, fold it into the leaderboard
// and notify the user. The whole path holds the user's lock, so concurrent
// events for one user cannot double-score.
type CompletionService struct {
	sessions    SessionService
	users       userrepo.UserRepository
	validator   *anticheat.Validator
	scoring     scoringservice.ScoringService
	leaderboard leaderboardservice.LeaderboardService
	notifier    ScoreNotifier
	userLocks   *lock.Keyed
	log         zerolog.Logger
}

func NewCompletionService(
	sessions SessionService,
	users userrepo.UserRepository,
	validator *anticheat.Validator,
	scoring scoringservice.ScoringService,
	leaderboard leaderboardservice.LeaderboardService,
	notifier ScoreNotifier,
	userLocks *lock.Keyed,
) *CompletionService {
	return &CompletionService{
		sessions:    sessions,
		users:       users,
		validator:   validator,
		scoring:     scoring,
		leaderboard: leaderboard,
		notifier:    notifier,
		userLocks:   userLocks,
		log:         logger.With("completion-service"),
	}
}

// AcknowledgeCard handles one Done event. Duplicate and stale events are
// swallowed as idempotent no-ops; only storage faults come back as errors.
func (s *CompletionService) AcknowledgeCard(ctx context.Context, userID int64, sessionID string, ackedAt time.Time) error {
	s.userLocks.Lock(userID)
	defer s.userLocks.Unlock(userID)

	session, err := s.sessions.Acknowledge(ctx, userID, sessionID, ackedAt)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok && appErr.IsIgnorable() {
			observability.IgnoredAcks.Inc()
			s.log.Debug().
				Int64("user_id", userID).
				Str("session_id", sessionID).
				Str("code", string(appErr.Code)).
				Msg("Acknowledgement ignored")
			return nil
		}
		return err
	}

	result := s.validator.Classify(session.Elapsed(), session.ExpectedDuration)
	observability.Acknowledgements.WithLabelValues(string(result.Tier)).Inc()
	observability.RecordCompletion(result.Elapsed)

	entry, err := s.scoring.Apply(ctx, session, result)
	if err != nil {
		return err
	}

	row, err := s.leaderboard.OnScoreEntry(ctx, entry)
	if err != nil {
		return err
	}

	if entry.Points > 0 {
		newTotal := 0
		if row != nil {
			newTotal = row.TotalPoints
		}
		// Fire and forget; a lost notification never blocks or fails
		// the scoring path.
		go func() {
			if err := s.notifier.NotifyScore(context.WithoutCancel(ctx), entry.UserID, entry.ChatID, entry.Points, newTotal, entry.Streak, entry.Tier); err != nil {
				s.log.Warn().Err(err).Int64("user_id", entry.UserID).Msg("Score notification failed")
			}
		}()
	}
	return nil
}

// HandleDeliveryResult processes the delivery collaborator's report. A
// failed delivery rolls the pending session back and rewinds the user's
// cadence clock so the scheduler retries on its next tick instead of waiting
// out a full interval.
func (s *CompletionService) HandleDeliveryResult(ctx context.Context, sessionID string, ok bool) error {
	if ok {
		return nil
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if appErr, isApp := errors.AsAppError(err); isApp && appErr.IsNotFound() {
			return nil
		}
		return err
	}

	s.userLocks.Lock(session.UserID)
	defer s.userLocks.Unlock(session.UserID)

	if session.Terminal() {
		return nil
	}

	observability.DeliveryFailures.Inc()
	if err := s.sessions.Rollback(ctx, sessionID); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		// The session is already rolled back; an orphaned cadence clock
		// only delays the retry.
		s.log.Warn().Err(err).Int64("user_id", session.UserID).Msg("Failed to load user after rollback")
		return nil
	}
	if !user.LastIssuedAt.IsZero() {
		user.LastIssuedAt = time.Time{}
		if err := s.users.Update(ctx, user); err != nil {
			return errors.NewStorageError("update user", err)
		}
	}
	return nil
}

// ExpireUserPending force-expires the user's pending session, if any. Used
// when a user pauses: the session is immediately expirable and earns nothing.
func (s *CompletionService) ExpireUserPending(ctx context.Context, userID int64) error {
	s.userLocks.Lock(userID)
	defer s.userLocks.Unlock(userID)

	session, err := s.sessions.GetPending(ctx, userID)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.ErrCodeNoPendingSession {
			return nil
		}
		return err
	}

	if err := s.sessions.Expire(ctx, session); err != nil {
		return err
	}
	observability.SessionsExpired.Inc()
	return nil
}
