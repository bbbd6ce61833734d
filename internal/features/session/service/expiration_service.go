package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"deskwarrior-backend/internal/common/config"
	"deskwarrior-backend/internal/common/lock"
	"deskwarrior-backend/internal/common/logger"
	"deskwarrior-backend/internal/features/session/models"
	"deskwarrior-backend/internal/features/session/repository"
	"deskwarrior-backend/internal/observability"
	"deskwarrior-backend/internal/platform/clock"
)

const maxConcurrentExpiry = 10

// ExpirationService sweeps pending sessions whose grace window has elapsed
// and drives them to expired. Expiry bypasses the validator and the scoring
// engine entirely; no ScoreEntry is ever produced for an expired session.
type ExpirationService struct {
	ctx        context.Context
	cancel     context.CancelFunc
	repo       repository.SessionRepository
	sessions   SessionService
	userLocks  *lock.Keyed
	clock      clock.Clock
	cfg        *config.Config
	log        zerolog.Logger
	processing sync.Map
	semaphore  chan struct{}
	wg         sync.WaitGroup
}

func NewExpirationService(repo repository.SessionRepository, sessions SessionService, userLocks *lock.Keyed, clk clock.Clock, cfg *config.Config) *ExpirationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &ExpirationService{
		ctx:       ctx,
		cancel:    cancel,
		repo:      repo,
		sessions:  sessions,
		userLocks: userLocks,
		clock:     clk,
		cfg:       cfg,
		log:       logger.With("expiration-service"),
		semaphore: make(chan struct{}, maxConcurrentExpiry),
	}
}

func (s *ExpirationService) Start() {
	s.log.Info().
		Dur("grace_window", s.cfg.Sessions.GraceWindow).
		Dur("sweep_interval", s.cfg.Sessions.SweepInterval).
		Msg("Starting expiration service")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.Sessions.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.Sweep(s.ctx); err != nil {
					s.log.Error().Err(err).Msg("Expiry sweep failed")
				}
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

func (s *ExpirationService) Stop() {
	s.log.Info().Msg("Stopping expiration service")
	s.cancel()
	s.wg.Wait()
	s.log.Info().Msg("Expiration service stopped")
}

// Sweep expires every pending session past its grace window. Exported so
// tests can drive it against a fake clock without the ticker.
func (s *ExpirationService) Sweep(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.cfg.Sessions.GraceWindow)

	stale, err := s.repo.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	var batch sync.WaitGroup
	for _, session := range stale {
		if _, busy := s.processing.LoadOrStore(session.ID, true); busy {
			continue
		}

		batch.Add(1)
		go func(session *models.CardSession) {
			defer batch.Done()
			defer s.processing.Delete(session.ID)

			s.semaphore <- struct{}{}
			defer func() { <-s.semaphore }()

			s.expireOne(ctx, session)
		}(session)
	}
	batch.Wait()
	return nil
}

func (s *ExpirationService) expireOne(ctx context.Context, session *models.CardSession) {
	s.userLocks.Lock(session.UserID)
	defer s.userLocks.Unlock(session.UserID)

	// Re-read under the lock: an acknowledgement may have landed between
	// the scan and here.
	current, err := s.repo.GetByID(ctx, session.ID)
	if err != nil || current.Terminal() {
		return
	}

	if err := s.sessions.Expire(ctx, current); err != nil {
		s.log.Error().Err(err).Str("session_id", session.ID).Msg("Failed to expire session")
		return
	}
	observability.SessionsExpired.Inc()
}
