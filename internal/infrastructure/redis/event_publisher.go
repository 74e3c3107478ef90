package redis

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"auction-house/internal/domain"
)

const eventChannel = "item_events"

type EventPublisherImpl struct {
	client *redis.Client
}

func NewEventPublisher(client *redis.Client) *EventPublisherImpl {
	return &EventPublisherImpl{client: client}
}

func (r *EventPublisherImpl) PublishItemEvent(ctx context.Context, event *domain.ItemEvent) error {
	eventData := fmt.Sprintf("%d:%s:%s:%d:%d",
		event.ItemID, event.Type, event.Principal, event.Amount, event.Timestamp.Unix())

	return r.client.Publish(ctx, eventChannel, eventData).Err()
}
