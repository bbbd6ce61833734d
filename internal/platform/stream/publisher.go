// Package stream publishes the engine's outbound commands onto a Redis
// stream consumed by the bot collaborator. The engine never talks to the
// Telegram API itself; delivery is the collaborator's job.
package stream

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"deskwarrior-backend/internal/common/logger"
	"deskwarrior-backend/internal/features/anticheat"
	catalogmodels "deskwarrior-backend/internal/features/catalog/models"
	sessionmodels "deskwarrior-backend/internal/features/session/models"

	"github.com/rs/zerolog"
)

const commandStreamKey = "bot:commands"

type Publisher struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{
		client: client,
		log:    logger.With("stream-publisher"),
	}
}

// DeliverCard asks the bot collaborator to send the flashcard for a freshly
// issued session.
func (p *Publisher) DeliverCard(ctx context.Context, session *sessionmodels.CardSession, card *catalogmodels.CardDefinition) error {
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: commandStreamKey,
		Values: map[string]interface{}{
			"type":       "deliver_card",
			"user_id":    strconv.FormatInt(session.UserID, 10),
			"chat_id":    strconv.FormatInt(session.ChatID, 10),
			"session_id": session.ID,
			"card_id":    card.ID,
			"card_kind":  string(card.Kind),
			"title":      card.Title,
			"body":       card.Body,
		},
	}).Err()
}

// NotifyScore asks the bot collaborator to surface a score update.
func (p *Publisher) NotifyScore(ctx context.Context, userID, chatID int64, points, newTotal, streak int, tier anticheat.Tier) error {
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: commandStreamKey,
		Values: map[string]interface{}{
			"type":    "notify_score",
			"user_id": strconv.FormatInt(userID, 10),
			"chat_id": strconv.FormatInt(chatID, 10),
			"points":  strconv.Itoa(points),
			"total":   strconv.Itoa(newTotal),
			"streak":  strconv.Itoa(streak),
			"tier":    string(tier),
		},
	}).Err()
}
