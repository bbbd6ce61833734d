package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"deskwarrior-backend/internal/common/errors"
	"deskwarrior-backend/internal/common/lock"
	"deskwarrior-backend/internal/common/logger"
	"deskwarrior-backend/internal/features/leaderboard/models"
	"deskwarrior-backend/internal/features/leaderboard/repository"
	scoringmodels "deskwarrior-backend/internal/features/scoring/models"
	scoringrepo "deskwarrior-backend/internal/features/scoring/repository"
)

type LeaderboardService interface {
	// OnScoreEntry folds one ledger entry into the chat's rows and
	// returns the updated row for the entry's user.
	OnScoreEntry(ctx context.Context, entry *scoringmodels.ScoreEntry) (*models.Row, error)
	// GetLeaderboard returns up to topN rows ranked by total points
	// descending; ties go to whoever reached the total first.
	GetLeaderboard(ctx context.Context, chatID int64, topN int) ([]models.RankedRow, error)
	// GetSummary sums the chat's points per user for one UTC day.
	GetSummary(ctx context.Context, chatID int64, day time.Time) ([]models.DaySummary, error)
	// Rebuild drops the chat's rows and replays the ledger.
	Rebuild(ctx context.Context, chatID int64) error
}

type leaderboardService struct {
	rows   repository.RowRepository
	ledger scoringrepo.LedgerRepository
	// Row updates are serialized per chat; users in the same chat score
	// concurrently.
	chatLocks *lock.Keyed
	log       zerolog.Logger
}

func NewLeaderboardService(rows repository.RowRepository, ledger scoringrepo.LedgerRepository) LeaderboardService {
	return &leaderboardService{
		rows:      rows,
		ledger:    ledger,
		chatLocks: lock.NewKeyed(),
		log:       logger.With("leaderboard-service"),
	}
}

func (s *leaderboardService) OnScoreEntry(ctx context.Context, entry *scoringmodels.ScoreEntry) (*models.Row, error) {
	s.chatLocks.Lock(entry.ChatID)
	defer s.chatLocks.Unlock(entry.ChatID)

	row, err := s.rows.Get(ctx, entry.ChatID, entry.UserID)
	if err != nil {
		return nil, errors.NewStorageError("get leaderboard row", err)
	}

	row = applyEntry(row, entry)
	if row == nil {
		// Zero-point entry for a user with no row yet: nothing to rank.
		return nil, nil
	}

	if err := s.rows.Upsert(ctx, row); err != nil {
		return nil, errors.NewStorageError("upsert leaderboard row", err)
	}
	return row, nil
}

// applyEntry folds entry into row. Both the incremental path and the rebuild
// replay go through here so they cannot drift apart.
func applyEntry(row *models.Row, entry *scoringmodels.ScoreEntry) *models.Row {
	if row == nil {
		if entry.Points == 0 {
			return nil
		}
		row = &models.Row{ChatID: entry.ChatID, UserID: entry.UserID}
	}

	row.Entries++
	if entry.Points > 0 {
		row.TotalPoints += entry.Points
		row.LastScoredAt = entry.CreatedAt
	}
	return row
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, chatID int64, topN int) ([]models.RankedRow, error) {
	rows, err := s.rows.ListByChat(ctx, chatID)
	if err != nil {
		return nil, errors.NewStorageError("list leaderboard rows", err)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		// First to reach the tied total ranks higher.
		return rows[i].LastScoredAt.Before(rows[j].LastScoredAt)
	})

	if topN > 0 && len(rows) > topN {
		rows = rows[:topN]
	}

	ranked := make([]models.RankedRow, len(rows))
	for i, row := range rows {
		ranked[i] = models.RankedRow{Rank: i + 1, Row: *row}
	}
	return ranked, nil
}

func (s *leaderboardService) GetSummary(ctx context.Context, chatID int64, day time.Time) ([]models.DaySummary, error) {
	entries, err := s.ledger.ListByChat(ctx, chatID)
	if err != nil {
		return nil, errors.NewStorageError("list score entries", err)
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	totals := make(map[int64]int)
	for _, entry := range entries {
		ts := entry.CreatedAt.UTC()
		if ts.Before(dayStart) || !ts.Before(dayEnd) {
			continue
		}
		totals[entry.UserID] += entry.Points
	}

	summaries := make([]models.DaySummary, 0, len(totals))
	for userID, points := range totals {
		summaries = append(summaries, models.DaySummary{UserID: userID, Points: points})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Points != summaries[j].Points {
			return summaries[i].Points > summaries[j].Points
		}
		return summaries[i].UserID < summaries[j].UserID
	})
	return summaries, nil
}

func (s *leaderboardService) Rebuild(ctx context.Context, chatID int64) error {
	s.chatLocks.Lock(chatID)
	defer s.chatLocks.Unlock(chatID)

	entries, err := s.ledger.ListByChat(ctx, chatID)
	if err != nil {
		return errors.NewStorageError("list score entries", err)
	}

	byUser := make(map[int64]*models.Row)
	for _, entry := range entries {
		byUser[entry.UserID] = applyEntry(byUser[entry.UserID], entry)
		if byUser[entry.UserID] == nil {
			delete(byUser, entry.UserID)
		}
	}

	rows := make([]*models.Row, 0, len(byUser))
	for _, row := range byUser {
		rows = append(rows, row)
	}

	if err := s.rows.ReplaceChat(ctx, chatID, rows); err != nil {
		return errors.NewStorageError("replace leaderboard rows", err)
	}

	s.log.Info().Int64("chat_id", chatID).Int("rows", len(rows)).Msg("Leaderboard rebuilt from ledger")
	return nil
}
