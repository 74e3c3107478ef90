package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-house/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestListItemValidatesInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	for _, tc := range []struct {
		name        string
		description string
	}{
		{"", "Vintage"},
		{"Watch", ""},
		{"   ", "Vintage"},
		{"Watch", "\t\n"},
	} {
		_, err := f.listings.ListItem(ctx, "alice", tc.name, tc.description)
		assert.ErrorIs(t, err, domain.ErrEmptyField,
			"name=%q description=%q must be rejected", tc.name, tc.description)
	}

	count, err := f.queries.ListedItemsCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "rejected listings must not consume ids")
}

func TestListItemInitialState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	id, err := f.listings.ListItem(ctx, "alice", "Watch", "Vintage")
	require.NoError(t, err)

	item, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", item.Owner)
	assert.True(t, item.Active)
	assert.Zero(t, item.CurrentHighestBid)
	assert.Nil(t, item.HighestBidder)
	assert.Nil(t, item.NewOwner)
}

func TestUpdateListingAppliesOnlyProvidedFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	id, err := f.listings.ListItem(ctx, "alice", "Watch", "Vintage")
	require.NoError(t, err)

	msg, err := f.listings.UpdateListing(ctx, "alice", id, strPtr("Pocket Watch"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Listing updated successfully.", msg)

	item, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Pocket Watch", item.Name)
	assert.Equal(t, "Vintage", item.Description)

	_, err = f.listings.UpdateListing(ctx, "alice", id, nil, strPtr("Swiss, 1952"))
	require.NoError(t, err)

	item, err = f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Pocket Watch", item.Name)
	assert.Equal(t, "Swiss, 1952", item.Description)
}

func TestUpdateListingOwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	id, err := f.listings.ListItem(ctx, "alice", "Watch", "Vintage")
	require.NoError(t, err)

	_, err = f.listings.UpdateListing(ctx, "bob", id, strPtr("Stolen Watch"), nil)
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	item, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Watch", item.Name)
}

func TestUpdateListingAfterStop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	id, err := f.listings.ListItem(ctx, "alice", "Watch", "Vintage")
	require.NoError(t, err)
	_, err = f.listings.StopListing(ctx, "alice", id)
	require.NoError(t, err)

	_, err = f.listings.UpdateListing(ctx, "alice", id, strPtr("Too late"), nil)
	assert.ErrorIs(t, err, domain.ErrListingNotActive)
}

func TestUpdateListingUnknownItem(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.listings.UpdateListing(context.Background(), "alice", 42, strPtr("Ghost"), nil)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestStopListingTransfersOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	id, err := f.listings.ListItem(ctx, "alice", "Watch", "Vintage")
	require.NoError(t, err)
	_, err = f.bids.PlaceBid(ctx, "bob", id, 100)
	require.NoError(t, err)

	msg, err := f.listings.StopListing(ctx, "alice", id)
	require.NoError(t, err)
	assert.Equal(t, "Listing stopped successfully. Highest bidder is now the owner.", msg)

	item, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, item.Active)
	require.NotNil(t, item.NewOwner)
	assert.Equal(t, "bob", *item.NewOwner)
	// The lister stays recorded as the original owner.
	assert.Equal(t, "alice", item.Owner)
}

func TestStopListingWithoutBids(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	id, err := f.listings.ListItem(ctx, "alice", "Watch", "Vintage")
	require.NoError(t, err)

	msg, err := f.listings.StopListing(ctx, "alice", id)
	require.NoError(t, err)
	assert.Equal(t, "Listing stopped successfully.", msg)

	item, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, item.Active)
	assert.Nil(t, item.NewOwner)
}

func TestStopListingTwiceFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	id, err := f.listings.ListItem(ctx, "alice", "Watch", "Vintage")
	require.NoError(t, err)
	_, err = f.bids.PlaceBid(ctx, "bob", id, 100)
	require.NoError(t, err)

	_, err = f.listings.StopListing(ctx, "alice", id)
	require.NoError(t, err)

	before, err := f.store.Get(ctx, id)
	require.NoError(t, err)

	_, err = f.listings.StopListing(ctx, "alice", id)
	assert.ErrorIs(t, err, domain.ErrListingNotActive)

	after, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before, after, "a failed stop must not change state")
}

func TestStopListingOwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	id, err := f.listings.ListItem(ctx, "alice", "Watch", "Vintage")
	require.NoError(t, err)

	_, err = f.listings.StopListing(ctx, "bob", id)
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	item, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, item.Active)
}

func TestListingEventsPublished(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	id, err := f.listings.ListItem(ctx, "alice", "Watch", "Vintage")
	require.NoError(t, err)
	_, err = f.listings.UpdateListing(ctx, "alice", id, strPtr("Pocket Watch"), nil)
	require.NoError(t, err)
	_, err = f.listings.StopListing(ctx, "alice", id)
	require.NoError(t, err)

	assert.Len(t, f.publisher.byType(domain.ListingCreated), 1)
	assert.Len(t, f.publisher.byType(domain.ListingUpdated), 1)
	assert.Len(t, f.publisher.byType(domain.ListingStopped), 1)
}
