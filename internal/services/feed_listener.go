package services

import (
	"context"
	"fmt"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"
)

// FeedListener consumes the item event stream and fans it out to the
// websocket rooms. The feed is purely observational; polling clients remain
// the source of truth.
type FeedListener struct {
	connManager domain.ConnectionManager
	log         logger.Logger
}

func NewFeedListener(connManager domain.ConnectionManager, log logger.Logger) *FeedListener {
	return &FeedListener{
		connManager: connManager,
		log:         log,
	}
}

func (fl *FeedListener) Start(ctx context.Context, subscriber domain.EventSubscriber) error {
	fl.log.Info("Starting feed listener")
	return subscriber.SubscribeToItemEvents(ctx, fl.handleItemEvent)
}

func (fl *FeedListener) handleItemEvent(event *domain.ItemEvent) error {
	switch event.Type {
	case domain.BidAccepted:
		return fl.connManager.BroadcastToItem(event.ItemID, map[string]interface{}{
			"type":        "bid_update",
			"item_id":     event.ItemID,
			"current_bid": event.Amount,
			"bidder":      event.Principal,
			"timestamp":   event.Timestamp,
		})

	case domain.ListingUpdated:
		return fl.connManager.BroadcastToItem(event.ItemID, map[string]interface{}{
			"type":      "listing_updated",
			"item_id":   event.ItemID,
			"timestamp": event.Timestamp,
		})

	case domain.ListingStopped:
		// Final notice, then the room shuts down.
		if err := fl.connManager.BroadcastToItem(event.ItemID, map[string]interface{}{
			"type":      "listing_stopped",
			"item_id":   event.ItemID,
			"timestamp": event.Timestamp,
		}); err != nil {
			fl.log.Error("Failed to broadcast stop notice", "item_id", event.ItemID, "error", err)
		}
		return fl.connManager.CloseItemConnections(event.ItemID)

	case domain.ListingCreated, domain.BidRejected:
		// Nothing to fan out; new listings have no watchers yet and
		// rejections are reported synchronously to the bidder.
		return nil
	}

	return fmt.Errorf("unknown event type %q", event.Type)
}
