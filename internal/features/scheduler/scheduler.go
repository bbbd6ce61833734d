// Package scheduler owns the per-user reminder cadence: it decides when each
// active user is due a card, draws one from the catalog and hands it to the
// delivery collaborator.
package scheduler

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"deskwarrior-backend/internal/common/config"
	"deskwarrior-backend/internal/common/errors"
	"deskwarrior-backend/internal/common/lock"
	"deskwarrior-backend/internal/common/logger"
	"deskwarrior-backend/internal/features/catalog"
	catalogmodels "deskwarrior-backend/internal/features/catalog/models"
	sessionmodels "deskwarrior-backend/internal/features/session/models"
	sessionservice "deskwarrior-backend/internal/features/session/service"
	userrepo "deskwarrior-backend/internal/features/user/repository"
	"deskwarrior-backend/internal/observability"
	"deskwarrior-backend/internal/platform/clock"
)

const maxConcurrentIssuance = 10

// CardDeliverer is the outbound collaborator that sends a flashcard to the
// user. A returned error means the card was not delivered and the session
// must not stay pending.
type CardDeliverer interface {
	DeliverCard(ctx context.Context, session *sessionmodels.CardSession, card *catalogmodels.CardDefinition) error
}

type Scheduler struct {
	ctx       context.Context
	cancel    context.CancelFunc
	users     userrepo.UserRepository
	sessions  sessionservice.SessionService
	catalog   *catalog.Catalog
	deliverer CardDeliverer
	userLocks *lock.Keyed
	clock     clock.Clock
	cfg       *config.Config
	log       zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	processing sync.Map
	semaphore  chan struct{}
	wg         sync.WaitGroup
}

// New creates a scheduler. The random source is injected so card selection
// is deterministic under test.
func New(
	users userrepo.UserRepository,
	sessions sessionservice.SessionService,
	cat *catalog.Catalog,
	deliverer CardDeliverer,
	userLocks *lock.Keyed,
	clk clock.Clock,
	cfg *config.Config,
	rng *rand.Rand,
) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:       ctx,
		cancel:    cancel,
		users:     users,
		sessions:  sessions,
		catalog:   cat,
		deliverer: deliverer,
		userLocks: userLocks,
		clock:     clk,
		cfg:       cfg,
		log:       logger.With("scheduler"),
		rng:       rng,
		semaphore: make(chan struct{}, maxConcurrentIssuance),
	}
}

func (s *Scheduler) Start() {
	s.log.Info().
		Dur("tick_interval", s.cfg.Reminders.TickInterval).
		Msg("Starting scheduler")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.Reminders.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.Tick(s.ctx); err != nil {
					s.log.Error().Err(err).Msg("Scheduler tick failed")
				}
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.log.Info().Msg("Stopping scheduler")
	s.cancel()
	s.wg.Wait()
	s.log.Info().Msg("Scheduler stopped")
}

// Tick scans active users and issues cards to everyone who is due one.
// Exported so tests can drive the scheduler against a fake clock.
func (s *Scheduler) Tick(ctx context.Context) error {
	ids, err := s.users.ListActiveIDs(ctx)
	if err != nil {
		return err
	}

	var batch sync.WaitGroup
	for _, id := range ids {
		if _, busy := s.processing.LoadOrStore(id, true); busy {
			continue
		}

		batch.Add(1)
		go func(userID int64) {
			defer batch.Done()
			defer s.processing.Delete(userID)

			s.semaphore <- struct{}{}
			defer func() { <-s.semaphore }()

			if err := s.TickUser(ctx, userID); err != nil {
				s.log.Error().Err(err).Int64("user_id", userID).Msg("User tick failed")
			}
		}(id)
	}
	batch.Wait()
	return nil
}

// TickUser issues a card to one user if they are active, have no pending
// session and their interval has elapsed since the last issuance.
func (s *Scheduler) TickUser(ctx context.Context, userID int64) error {
	s.userLocks.Lock(userID)
	defer s.userLocks.Unlock(userID)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Active() {
		return nil
	}

	now := s.clock.Now()
	if !user.LastIssuedAt.IsZero() && now.Sub(user.LastIssuedAt) < user.Interval() {
		return nil
	}

	if _, err := s.sessions.GetPending(ctx, userID); err == nil {
		// Still waiting on the previous card.
		return nil
	}

	card := s.draw()
	if card == nil {
		return nil
	}

	session, err := s.sessions.Issue(ctx, user, card, now)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.ErrCodeConflict {
			return nil
		}
		return err
	}

	if err := s.deliverer.DeliverCard(ctx, session, card); err != nil {
		// Roll the session back so the next tick retries; delivery
		// failures are never surfaced to the user.
		observability.DeliveryFailures.Inc()
		s.log.Warn().Err(err).
			Int64("user_id", userID).
			Str("session_id", session.ID).
			Msg("Card delivery failed, rolling back")
		return s.sessions.Rollback(ctx, session.ID)
	}

	user.LastIssuedAt = now
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	observability.CardsIssued.WithLabelValues(string(card.Kind)).Inc()
	s.log.Debug().
		Int64("user_id", userID).
		Str("card_id", card.ID).
		Str("kind", string(card.Kind)).
		Msg("Card issued")
	return nil
}

// IssueNow issues a card to the user immediately, skipping the interval
// gate. The one-pending rule still holds: an unresolved card blocks the
// request, and a successful issue restarts the cadence from now.
func (s *Scheduler) IssueNow(ctx context.Context, userID int64) error {
	s.userLocks.Lock(userID)
	defer s.userLocks.Unlock(userID)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return errors.NewUserNotFoundError(userID)
	}
	if !user.Active() {
		return errors.New(errors.ErrCodeUserPaused, "reminders are paused").WithUserID(userID)
	}

	if _, err := s.sessions.GetPending(ctx, userID); err == nil {
		return errors.New(errors.ErrCodeConflict, "user already has a pending card").WithUserID(userID)
	}

	card := s.draw()
	if card == nil {
		return errors.New(errors.ErrCodeInternal, "card catalog is empty")
	}

	now := s.clock.Now()
	session, err := s.sessions.Issue(ctx, user, card, now)
	if err != nil {
		return err
	}

	if err := s.deliverer.DeliverCard(ctx, session, card); err != nil {
		observability.DeliveryFailures.Inc()
		s.log.Warn().Err(err).
			Int64("user_id", userID).
			Str("session_id", session.ID).
			Msg("On-demand card delivery failed, rolling back")
		if rbErr := s.sessions.Rollback(ctx, session.ID); rbErr != nil {
			return rbErr
		}
		return errors.NewDeliveryFailureError(session.ID, err).WithUserID(userID)
	}

	user.LastIssuedAt = now
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	observability.CardsIssued.WithLabelValues(string(card.Kind)).Inc()
	s.log.Debug().
		Int64("user_id", userID).
		Str("card_id", card.ID).
		Str("kind", string(card.Kind)).
		Msg("Card issued on demand")
	return nil
}

func (s *Scheduler) draw() *catalogmodels.CardDefinition {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.catalog.Draw(s.rng)
}
