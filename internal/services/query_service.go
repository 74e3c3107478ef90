package services

import (
	"context"
	"errors"

	"auction-house/internal/domain"
)

// QueryService serves read-only projections straight off the store; every
// call observes the latest committed state, there is no caching layer.
// Optional results are nil, never an error.
type QueryService struct {
	store domain.ItemStore
}

func NewQueryService(store domain.ItemStore) *QueryService {
	return &QueryService{store: store}
}

// GetItem returns the item or nil when the id was never assigned.
func (q *QueryService) GetItem(ctx context.Context, id uint64) (*domain.Item, error) {
	item, err := q.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

// ListAllItems returns every item ever listed in ascending id order.
func (q *QueryService) ListAllItems(ctx context.Context) ([]*domain.Item, error) {
	return q.store.All(ctx)
}

// GetBidsForItem returns the item's accepted bids in submission order. An
// unknown id yields an empty sequence.
func (q *QueryService) GetBidsForItem(ctx context.Context, id uint64) ([]domain.Bid, error) {
	return q.store.Bids(ctx, id)
}

// GetHighestBidForItem returns the bid behind current_highest_bid, or nil
// when the item is unknown or has no bids yet.
func (q *QueryService) GetHighestBidForItem(ctx context.Context, id uint64) (*domain.Bid, error) {
	bids, err := q.store.Bids(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(bids) == 0 {
		return nil, nil
	}

	// The last accepted bid is always the highest.
	highest := bids[len(bids)-1]
	return &highest, nil
}

// ListedItemsCount counts every successful list_item call, stopped listings
// included.
func (q *QueryService) ListedItemsCount(ctx context.Context) (uint64, error) {
	return q.store.Count(ctx)
}

// ItemWithMostBids returns the item with the longest bid sequence, lowest id
// winning ties. Items without bids never qualify; an empty store yields nil.
func (q *QueryService) ItemWithMostBids(ctx context.Context) (*domain.Item, error) {
	items, err := q.store.All(ctx)
	if err != nil {
		return nil, err
	}

	var best *domain.Item
	var bestCount int
	for _, item := range items {
		bids, err := q.store.Bids(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		// Items arrive in ascending id order, so a strict comparison keeps
		// the lowest id on ties.
		if len(bids) > bestCount {
			best = item
			bestCount = len(bids)
		}
	}
	return best, nil
}

// MostExpensiveSoldItem returns the highest-priced completed sale: inactive
// items with a new owner only, lowest id winning ties.
func (q *QueryService) MostExpensiveSoldItem(ctx context.Context) (*domain.Item, error) {
	items, err := q.store.All(ctx)
	if err != nil {
		return nil, err
	}

	var best *domain.Item
	for _, item := range items {
		if item.Active || item.NewOwner == nil {
			continue
		}
		if best == nil || item.CurrentHighestBid > best.CurrentHighestBid {
			best = item
		}
	}
	return best, nil
}
