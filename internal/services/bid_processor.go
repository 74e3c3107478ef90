package services

import (
	"context"
	"fmt"
	"time"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"
)

// BidProcessor validates and applies bids against an item's current state.
// The store serializes all read-modify-write per item, so two concurrent
// bids can never both observe the same current highest.
type BidProcessor struct {
	store        domain.ItemStore
	eventPub     domain.EventPublisher
	allowSelfBid bool
	log          logger.Logger
}

func NewBidProcessor(store domain.ItemStore, eventPub domain.EventPublisher, allowSelfBid bool, log logger.Logger) *BidProcessor {
	return &BidProcessor{
		store:        store,
		eventPub:     eventPub,
		allowSelfBid: allowSelfBid,
		log:          log,
	}
}

// PlaceBid appends a bid for caller on the given item. The amount must be
// strictly greater than the current highest bid; equal or lower is rejected
// and leaves state unchanged.
func (p *BidProcessor) PlaceBid(ctx context.Context, caller string, itemID, amount uint64) (string, error) {
	err := p.store.Mutate(ctx, itemID, func(item *domain.Item, bids *[]domain.Bid) error {
		if !item.Active {
			return fmt.Errorf("auction for this item is no longer active: %w", domain.ErrListingNotActive)
		}
		if !p.allowSelfBid && item.Owner == caller {
			return domain.ErrSelfBid
		}
		if amount <= item.CurrentHighestBid {
			return fmt.Errorf("%w: bid %d, current highest %d", domain.ErrBidTooLow, amount, item.CurrentHighestBid)
		}

		item.CurrentHighestBid = amount
		item.HighestBidder = &caller
		*bids = append(*bids, domain.Bid{
			Bidder:   caller,
			Amount:   amount,
			PlacedAt: time.Now(),
		})
		return nil
	})
	if err != nil {
		p.publish(ctx, domain.BidRejected, itemID, caller, amount)
		return "", err
	}

	p.publish(ctx, domain.BidAccepted, itemID, caller, amount)
	p.log.Info("Bid placed", "item_id", itemID, "bidder", caller, "amount", amount)
	return "Bid placed successfully.", nil
}

func (p *BidProcessor) publish(ctx context.Context, eventType domain.ItemEventType, itemID uint64, principal string, amount uint64) {
	if p.eventPub == nil {
		return
	}

	event := &domain.ItemEvent{
		Type:      eventType,
		ItemID:    itemID,
		Principal: principal,
		Amount:    amount,
		Timestamp: time.Now(),
	}
	if err := p.eventPub.PublishItemEvent(ctx, event); err != nil {
		p.log.Error("Failed to publish bid event", "type", eventType, "item_id", itemID, "error", err)
	}
}
