package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"
)

// ListingService creates, updates and stops item listings. Update and stop
// are restricted to the item's owner.
type ListingService struct {
	store    domain.ItemStore
	eventPub domain.EventPublisher
	log      logger.Logger
}

func NewListingService(store domain.ItemStore, eventPub domain.EventPublisher, log logger.Logger) *ListingService {
	return &ListingService{
		store:    store,
		eventPub: eventPub,
		log:      log,
	}
}

// ListItem creates a new active listing owned by caller and returns its id.
// Name and description are re-validated server-side regardless of what the
// client already checked.
func (s *ListingService) ListItem(ctx context.Context, caller, name, description string) (uint64, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(description) == "" {
		return 0, domain.ErrEmptyField
	}

	item := &domain.Item{
		Owner:       caller,
		Name:        name,
		Description: description,
		Active:      true,
	}

	id, err := s.store.Insert(ctx, item)
	if err != nil {
		return 0, err
	}

	s.publish(ctx, domain.ListingCreated, id, caller, 0)
	s.log.Info("Item listed", "item_id", id, "owner", caller)
	return id, nil
}

// UpdateListing applies the provided optional fields to an active listing.
// Absent fields stay untouched.
func (s *ListingService) UpdateListing(ctx context.Context, caller string, id uint64, name, description *string) (string, error) {
	err := s.store.Mutate(ctx, id, func(item *domain.Item, bids *[]domain.Bid) error {
		if item.Owner != caller {
			return fmt.Errorf("%w: only the owner can update this listing", domain.ErrNotOwner)
		}
		if !item.Active {
			return fmt.Errorf("cannot update a stopped listing: %w", domain.ErrListingNotActive)
		}
		if name != nil {
			item.Name = *name
		}
		if description != nil {
			item.Description = *description
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.publish(ctx, domain.ListingUpdated, id, caller, 0)
	s.log.Info("Listing updated", "item_id", id, "caller", caller)
	return "Listing updated successfully.", nil
}

// StopListing makes the terminal active to inactive transition. If the
// listing has a highest bidder the sale completes and ownership transfers.
func (s *ListingService) StopListing(ctx context.Context, caller string, id uint64) (string, error) {
	sold := false
	err := s.store.Mutate(ctx, id, func(item *domain.Item, bids *[]domain.Bid) error {
		if item.Owner != caller {
			return fmt.Errorf("%w: only the owner can stop this listing", domain.ErrNotOwner)
		}
		if !item.Active {
			return fmt.Errorf("listing is already stopped: %w", domain.ErrListingNotActive)
		}

		item.Active = false
		item.NewOwner = item.HighestBidder
		sold = item.HighestBidder != nil
		return nil
	})
	if err != nil {
		return "", err
	}

	s.publish(ctx, domain.ListingStopped, id, caller, 0)
	s.log.Info("Listing stopped", "item_id", id, "caller", caller, "sold", sold)

	if sold {
		return "Listing stopped successfully. Highest bidder is now the owner.", nil
	}
	return "Listing stopped successfully.", nil
}

func (s *ListingService) publish(ctx context.Context, eventType domain.ItemEventType, id uint64, principal string, amount uint64) {
	if s.eventPub == nil {
		return
	}

	event := &domain.ItemEvent{
		Type:      eventType,
		ItemID:    id,
		Principal: principal,
		Amount:    amount,
		Timestamp: time.Now(),
	}
	if err := s.eventPub.PublishItemEvent(ctx, event); err != nil {
		// The mutation already committed; the feed and archive catch up
		// from later events.
		s.log.Error("Failed to publish item event", "type", eventType, "item_id", id, "error", err)
	}
}
