package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"deskwarrior-backend/internal/features/leaderboard/models"
	"deskwarrior-backend/internal/features/leaderboard/repository"
)

const keyPrefixRows = "leaderboard:rows:"

type rowRepository struct {
	client *redis.Client
}

func NewRowRepository(client *redis.Client) repository.RowRepository {
	return &rowRepository{client: client}
}

func makeRowsKey(chatID int64) string {
	return fmt.Sprintf("%s%d", keyPrefixRows, chatID)
}

func (r *rowRepository) Get(ctx context.Context, chatID, userID int64) (*models.Row, error) {
	data, err := r.client.HGet(ctx, makeRowsKey(chatID), strconv.FormatInt(userID, 10)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var row models.Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *rowRepository) Upsert(ctx context.Context, row *models.Row) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard row: %w", err)
	}
	return r.client.HSet(ctx, makeRowsKey(row.ChatID), strconv.FormatInt(row.UserID, 10), data).Err()
}

func (r *rowRepository) ListByChat(ctx context.Context, chatID int64) ([]*models.Row, error) {
	values, err := r.client.HVals(ctx, makeRowsKey(chatID)).Result()
	if err != nil {
		return nil, err
	}

	rows := make([]*models.Row, 0, len(values))
	for _, v := range values {
		var row models.Row
		if err := json.Unmarshal([]byte(v), &row); err != nil {
			return nil, err
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

func (r *rowRepository) ReplaceChat(ctx context.Context, chatID int64, rows []*models.Row) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, makeRowsKey(chatID))
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal leaderboard row: %w", err)
		}
		pipe.HSet(ctx, makeRowsKey(chatID), strconv.FormatInt(row.UserID, 10), data)
	}
	_, err := pipe.Exec(ctx)
	return err
}
