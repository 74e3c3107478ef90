package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-house/internal/domain"
	"auction-house/internal/store"
	"auction-house/pkg/logger"
)

type fixture struct {
	store     *store.MemoryItemStore
	listings  *ListingService
	bids      *BidProcessor
	queries   *QueryService
	publisher *recordingPublisher
}

func newFixture(t *testing.T, allowSelfBid bool) *fixture {
	t.Helper()

	itemStore := store.NewMemoryItemStore()
	publisher := &recordingPublisher{}
	log := logger.NewNop()

	return &fixture{
		store:     itemStore,
		listings:  NewListingService(itemStore, publisher, log),
		bids:      NewBidProcessor(itemStore, publisher, allowSelfBid, log),
		queries:   NewQueryService(itemStore),
		publisher: publisher,
	}
}

func TestAuctionLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	id, err := f.listings.ListItem(ctx, "alice", "Watch", "Vintage")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	msg, err := f.bids.PlaceBid(ctx, "bob", id, 100)
	require.NoError(t, err)
	assert.Equal(t, "Bid placed successfully.", msg)

	_, err = f.bids.PlaceBid(ctx, "carol", id, 50)
	assert.ErrorIs(t, err, domain.ErrBidTooLow)

	_, err = f.bids.PlaceBid(ctx, "carol", id, 150)
	require.NoError(t, err)

	_, err = f.listings.StopListing(ctx, "alice", id)
	require.NoError(t, err)

	item, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, item.Active)
	assert.Equal(t, uint64(150), item.CurrentHighestBid)
	require.NotNil(t, item.NewOwner)
	assert.Equal(t, "carol", *item.NewOwner)
}

func TestBidMustExceedCurrentHighest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	id, err := f.listings.ListItem(ctx, "alice", "Watch", "Vintage")
	require.NoError(t, err)

	_, err = f.bids.PlaceBid(ctx, "bob", id, 100)
	require.NoError(t, err)

	// Equal to the current highest is rejected too.
	_, err = f.bids.PlaceBid(ctx, "carol", id, 100)
	assert.ErrorIs(t, err, domain.ErrBidTooLow)

	// Rejection leaves state unchanged.
	item, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), item.CurrentHighestBid)
	require.NotNil(t, item.HighestBidder)
	assert.Equal(t, "bob", *item.HighestBidder)

	bids, err := f.store.Bids(ctx, id)
	require.NoError(t, err)
	assert.Len(t, bids, 1)
}

func TestBidOnUnknownItem(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.bids.PlaceBid(context.Background(), "bob", 42, 100)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestBidOnStoppedListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	id, err := f.listings.ListItem(ctx, "alice", "Watch", "Vintage")
	require.NoError(t, err)
	_, err = f.listings.StopListing(ctx, "alice", id)
	require.NoError(t, err)

	_, err = f.bids.PlaceBid(ctx, "bob", id, 100)
	assert.ErrorIs(t, err, domain.ErrListingNotActive)
}

func TestSelfBidPolicy(t *testing.T) {
	ctx := context.Background()

	forbidden := newFixture(t, false)
	id, err := forbidden.listings.ListItem(ctx, "alice", "Watch", "Vintage")
	require.NoError(t, err)
	_, err = forbidden.bids.PlaceBid(ctx, "alice", id, 100)
	assert.ErrorIs(t, err, domain.ErrSelfBid)

	allowed := newFixture(t, true)
	id, err = allowed.listings.ListItem(ctx, "alice", "Watch", "Vintage")
	require.NoError(t, err)
	_, err = allowed.bids.PlaceBid(ctx, "alice", id, 100)
	assert.NoError(t, err)
}

func TestHighestBidderTracksLastAcceptedBid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	id, err := f.listings.ListItem(ctx, "alice", "Watch", "Vintage")
	require.NoError(t, err)

	bidders := []struct {
		who    string
		amount uint64
	}{
		{"bob", 10}, {"carol", 25}, {"bob", 40}, {"dave", 120},
	}

	var previous uint64
	for _, b := range bidders {
		_, err := f.bids.PlaceBid(ctx, b.who, id, b.amount)
		require.NoError(t, err)

		item, err := f.store.Get(ctx, id)
		require.NoError(t, err)
		assert.Greater(t, item.CurrentHighestBid, previous,
			"current_highest_bid must strictly increase")
		require.NotNil(t, item.HighestBidder)
		assert.Equal(t, b.who, *item.HighestBidder)
		previous = item.CurrentHighestBid
	}

	bids, err := f.store.Bids(ctx, id)
	require.NoError(t, err)
	require.Len(t, bids, len(bidders))
	for i, b := range bidders {
		assert.Equal(t, b.who, bids[i].Bidder, "bids must stay in submission order")
		assert.Equal(t, b.amount, bids[i].Amount)
	}
}

func TestBidEventsPublished(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	id, err := f.listings.ListItem(ctx, "alice", "Watch", "Vintage")
	require.NoError(t, err)

	_, err = f.bids.PlaceBid(ctx, "bob", id, 100)
	require.NoError(t, err)
	_, err = f.bids.PlaceBid(ctx, "carol", id, 80)
	require.Error(t, err)

	accepted := f.publisher.byType(domain.BidAccepted)
	require.Len(t, accepted, 1)
	assert.Equal(t, uint64(100), accepted[0].Amount)
	assert.Equal(t, "bob", accepted[0].Principal)

	rejected := f.publisher.byType(domain.BidRejected)
	require.Len(t, rejected, 1)
	assert.Equal(t, "carol", rejected[0].Principal)
}
