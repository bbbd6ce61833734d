package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"deskwarrior-backend/internal/common/config"
	"deskwarrior-backend/internal/common/errors"
	"deskwarrior-backend/internal/common/logger"
	"deskwarrior-backend/internal/features/anticheat"
	"deskwarrior-backend/internal/features/scoring/models"
	"deskwarrior-backend/internal/features/scoring/repository"
	sessionmodels "deskwarrior-backend/internal/features/session/models"
	userrepo "deskwarrior-backend/internal/features/user/repository"
)

// maxStreakMultiplier caps the optional streak bonus.
const maxStreakMultiplier = 2.0

type ScoringService interface {
	// Apply converts an acknowledged session plus its validation result
	// into a ledger entry and updates the user's streak. The caller holds
	// the user's lock, so the streak/points mutation is atomic per user.
	Apply(ctx context.Context, session *sessionmodels.CardSession, result anticheat.Result) (*models.ScoreEntry, error)
}

type scoringService struct {
	users  userrepo.UserRepository
	ledger repository.LedgerRepository
	cfg    *config.Config
	log    zerolog.Logger
}

func NewScoringService(users userrepo.UserRepository, ledger repository.LedgerRepository, cfg *config.Config) ScoringService {
	return &scoringService{
		users:  users,
		ledger: ledger,
		cfg:    cfg,
		log:    logger.With("scoring-service"),
	}
}

func (s *scoringService) Apply(ctx context.Context, session *sessionmodels.CardSession, result anticheat.Result) (*models.ScoreEntry, error) {
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, errors.NewUserNotFoundError(session.UserID)
	}

	points := basePoints(session.Points, result.Tier)

	switch result.Tier {
	case anticheat.TierRejected:
		// A rejected attempt breaks contiguity; the next success
		// starts a fresh streak.
		user.Streak = 0
		s.log.Warn().
			Int64("user_id", user.ID).
			Str("session_id", session.ID).
			Dur("elapsed", result.Elapsed).
			Dur("expected", result.Expected).
			Msg("Suspicious completion rejected")
	default:
		gap := time.Duration(s.cfg.Scoring.StreakGapFactor) * user.Interval()
		if !user.LastSuccessAt.IsZero() && session.AckedAt.Sub(user.LastSuccessAt) <= gap {
			user.Streak++
		} else {
			user.Streak = 1
		}
		user.LastSuccessAt = session.AckedAt
	}

	if s.cfg.Scoring.StreakBonus && points > 0 && user.Streak > 1 {
		multiplier := 1.0 + 0.1*float64(user.Streak-1)
		if multiplier > maxStreakMultiplier {
			multiplier = maxStreakMultiplier
		}
		points = int(float64(points) * multiplier)
	}

	entry := &models.ScoreEntry{
		ID:        uuid.New().String(),
		UserID:    session.UserID,
		ChatID:    session.ChatID,
		SessionID: session.ID,
		Tier:      result.Tier,
		Points:    points,
		Streak:    user.Streak,
		CreatedAt: session.AckedAt,
	}

	// Ledger first: it is the source of truth, the user record is derived
	// bookkeeping.
	if err := s.ledger.Append(ctx, entry); err != nil {
		return nil, errors.NewStorageError("append score entry", err)
	}

	user.UpdatedAt = session.AckedAt
	if err := s.users.Update(ctx, user); err != nil {
		return nil, errors.NewStorageError("update user streak", err)
	}

	s.log.Info().
		Int64("user_id", user.ID).
		Str("session_id", session.ID).
		Str("tier", string(result.Tier)).
		Int("points", points).
		Int("streak", user.Streak).
		Msg("Score applied")

	return entry, nil
}

// basePoints maps the validator tier onto points: full credit, halved
// (rounded down, minimum 1), or zero.
func basePoints(nominal int, tier anticheat.Tier) int {
	switch tier {
	case anticheat.TierFull:
		return nominal
	case anticheat.TierReduced:
		if nominal <= 0 {
			return 0
		}
		reduced := nominal / 2
		if reduced < 1 {
			reduced = 1
		}
		return reduced
	default:
		return 0
	}
}
