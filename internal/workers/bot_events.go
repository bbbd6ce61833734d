// Package workers hosts the Redis stream consumers bridging collaborator
// events into the engine.
package workers

import (
	"context"
	"strconv"
	"time"

	go_redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"deskwarrior-backend/internal/common/logger"
	sessionservice "deskwarrior-backend/internal/features/session/service"
	userservice "deskwarrior-backend/internal/features/user/service"
	"deskwarrior-backend/internal/platform/redis"
)

const (
	streamKey     = "bot:events"
	consumerGroup = "deskwarrior_engine_consumers"
	consumerName  = "deskwarrior_worker_1"
)

// CardRequester issues a card on demand for the bot's "card now" command.
type CardRequester interface {
	IssueNow(ctx context.Context, userID int64) error
}

// BotEventsWorker consumes collaborator events (Done taps, card requests,
// delivery results, pause/resume, interval changes) from the bot-facing
// Redis stream.
type BotEventsWorker struct {
	rdb        *redis.Client
	completion *sessionservice.CompletionService
	users      userservice.UserService
	requester  CardRequester
	log        zerolog.Logger
}

func NewBotEventsWorker(rdb *redis.Client, completion *sessionservice.CompletionService, users userservice.UserService, requester CardRequester) *BotEventsWorker {
	return &BotEventsWorker{
		rdb:        rdb,
		completion: completion,
		users:      users,
		requester:  requester,
		log:        logger.With("bot-events-worker"),
	}
}

// Start begins listening on the event stream until the context is cancelled.
func (w *BotEventsWorker) Start(ctx context.Context) {
	err := w.rdb.XGroupCreateMkStream(ctx, streamKey, consumerGroup, "$").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		w.log.Error().Err(err).Msg("Error creating consumer group")
	}

	w.log.Info().Str("stream", streamKey).Msg("Starting bot events worker")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping bot events worker")
			return
		default:
			entries, err := w.rdb.XReadGroup(ctx, &go_redis.XReadGroupArgs{
				Group:    consumerGroup,
				Consumer: consumerName,
				Streams:  []string{streamKey, ">"},
				Count:    10,
				Block:    5 * time.Second,
			}).Result()

			if err != nil {
				if err.Error() != "redis: nil" { // timeout, no messages
					w.log.Error().Err(err).Msg("Error reading from stream")
					time.Sleep(time.Second) // backoff on error
				}
				continue
			}

			for _, stream := range entries {
				for _, msg := range stream.Messages {
					w.processMessage(ctx, msg.Values)
					w.rdb.XAck(ctx, streamKey, consumerGroup, msg.ID)
				}
			}
		}
	}
}

func (w *BotEventsWorker) processMessage(ctx context.Context, values map[string]interface{}) {
	eventType, ok := values["type"].(string)
	if !ok {
		return
	}

	switch eventType {
	case "card_ack":
		userID, ok1 := parseInt64(values, "user_id")
		sessionID, ok2 := values["session_id"].(string)
		ts, ok3 := parseInt64(values, "timestamp")
		if !ok1 || !ok2 || !ok3 {
			w.log.Warn().Interface("values", values).Msg("Malformed card_ack event")
			return
		}
		if err := w.completion.AcknowledgeCard(ctx, userID, sessionID, time.Unix(ts, 0).UTC()); err != nil {
			w.log.Error().Err(err).Int64("user_id", userID).Msg("Error processing card_ack")
		}

	case "delivery_result":
		sessionID, ok1 := values["session_id"].(string)
		okFlag, ok2 := values["ok"].(string)
		if !ok1 || !ok2 {
			w.log.Warn().Interface("values", values).Msg("Malformed delivery_result event")
			return
		}
		if err := w.completion.HandleDeliveryResult(ctx, sessionID, okFlag == "true"); err != nil {
			w.log.Error().Err(err).Str("session_id", sessionID).Msg("Error processing delivery_result")
		}

	case "request_card":
		userID, ok := parseInt64(values, "user_id")
		if !ok {
			w.log.Warn().Interface("values", values).Msg("Malformed request_card event")
			return
		}
		if err := w.requester.IssueNow(ctx, userID); err != nil {
			// Pending cards and paused users are normal outcomes here;
			// the bot relays the refusal to the user.
			w.log.Debug().Err(err).Int64("user_id", userID).Msg("On-demand card refused")
		}

	case "pause":
		userID, ok := parseInt64(values, "user_id")
		if !ok {
			return
		}
		if err := w.users.Pause(ctx, userID); err != nil {
			w.log.Error().Err(err).Int64("user_id", userID).Msg("Error pausing user")
			return
		}
		if err := w.completion.ExpireUserPending(ctx, userID); err != nil {
			w.log.Error().Err(err).Int64("user_id", userID).Msg("Error expiring pending session on pause")
		}

	case "resume":
		userID, ok := parseInt64(values, "user_id")
		if !ok {
			return
		}
		if err := w.users.Resume(ctx, userID); err != nil {
			w.log.Error().Err(err).Int64("user_id", userID).Msg("Error resuming user")
		}

	case "set_interval":
		userID, ok1 := parseInt64(values, "user_id")
		minutes, ok2 := parseInt64(values, "minutes")
		if !ok1 || !ok2 {
			return
		}
		if err := w.users.ConfigureInterval(ctx, userID, int(minutes)); err != nil {
			// Invalid intervals keep the prior config; just log.
			w.log.Warn().Err(err).Int64("user_id", userID).Msg("Interval change rejected")
		}

	case "premium_granted":
		userID, ok := parseInt64(values, "user_id")
		if !ok {
			return
		}
		if err := w.users.GrantPremium(ctx, userID); err != nil {
			w.log.Error().Err(err).Int64("user_id", userID).Msg("Error granting premium")
		}

	case "user_registered":
		userID, ok1 := parseInt64(values, "user_id")
		chatID, ok2 := parseInt64(values, "chat_id")
		if !ok1 || !ok2 {
			return
		}
		username, _ := values["username"].(string)
		firstName, _ := values["first_name"].(string)
		lastName, _ := values["last_name"].(string)
		if _, err := w.users.GetOrCreateUser(ctx, userID, chatID, username, firstName, lastName); err != nil {
			w.log.Error().Err(err).Int64("user_id", userID).Msg("Error registering user")
		}

	default:
		w.log.Debug().Str("type", eventType).Msg("Unhandled event type")
	}
}

func parseInt64(values map[string]interface{}, key string) (int64, bool) {
	raw, ok := values[key].(string)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
