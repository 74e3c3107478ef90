package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"
)

type RedisEventSubscriber struct {
	client *redis.Client
	log    logger.Logger
}

func NewRedisEventSubscriber(client *redis.Client, log logger.Logger) *RedisEventSubscriber {
	return &RedisEventSubscriber{
		client: client,
		log:    log,
	}
}

func (r *RedisEventSubscriber) SubscribeToItemEvents(ctx context.Context, handler domain.EventHandler) error {
	pubsub := r.client.Subscribe(ctx, eventChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	r.log.Info("Subscribed to item events", "channel", eventChannel)

	for {
		select {
		case msg := <-ch:
			event, err := parseEventPayload(msg.Payload)
			if err != nil {
				r.log.Error("Failed to parse event", "payload", msg.Payload, "error", err)
				continue
			}

			if err := handler(event); err != nil {
				r.log.Error("Failed to handle event", "event", event, "error", err)
			}

		case <-ctx.Done():
			r.log.Info("Event subscriber stopped")
			return ctx.Err()
		}
	}
}

// parseEventPayload decodes "itemID:type:principal:amount:unix". Principals
// are uuid-based and never contain colons, so splitting is unambiguous.
func parseEventPayload(payload string) (*domain.ItemEvent, error) {
	parts := strings.Split(payload, ":")
	if len(parts) != 5 {
		return nil, fmt.Errorf("invalid event format: %s", payload)
	}

	itemID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return nil, err
	}

	amount, err := strconv.ParseUint(parts[3], 10, 64)
	if err != nil {
		return nil, err
	}

	timestamp, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		return nil, err
	}

	return &domain.ItemEvent{
		ItemID:    itemID,
		Type:      domain.ItemEventType(parts[1]),
		Principal: parts[2],
		Amount:    amount,
		Timestamp: time.Unix(timestamp, 0),
	}, nil
}
