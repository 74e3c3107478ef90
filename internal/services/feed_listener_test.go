package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"
)

type fakeConnManager struct {
	broadcasts map[uint64][]interface{}
	closed     []uint64
}

func newFakeConnManager() *fakeConnManager {
	return &fakeConnManager{broadcasts: make(map[uint64][]interface{})}
}

func (f *fakeConnManager) RegisterConnection(principal string, itemID uint64, conn domain.FeedConnection) error {
	return nil
}

func (f *fakeConnManager) UnregisterConnection(principal string, itemID uint64, conn domain.FeedConnection) error {
	return nil
}

func (f *fakeConnManager) BroadcastToItem(itemID uint64, message interface{}) error {
	f.broadcasts[itemID] = append(f.broadcasts[itemID], message)
	return nil
}

func (f *fakeConnManager) CloseItemConnections(itemID uint64) error {
	f.closed = append(f.closed, itemID)
	return nil
}

func TestFeedListenerBroadcastsAcceptedBids(t *testing.T) {
	cm := newFakeConnManager()
	fl := NewFeedListener(cm, logger.NewNop())

	err := fl.handleItemEvent(&domain.ItemEvent{
		Type:      domain.BidAccepted,
		ItemID:    3,
		Principal: "bob",
		Amount:    150,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, cm.broadcasts[3], 1)
	payload := cm.broadcasts[3][0].(map[string]interface{})
	assert.Equal(t, "bid_update", payload["type"])
	assert.Equal(t, uint64(150), payload["current_bid"])
	assert.Equal(t, "bob", payload["bidder"])
}

func TestFeedListenerClosesRoomOnStop(t *testing.T) {
	cm := newFakeConnManager()
	fl := NewFeedListener(cm, logger.NewNop())

	err := fl.handleItemEvent(&domain.ItemEvent{
		Type:      domain.ListingStopped,
		ItemID:    3,
		Principal: "alice",
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, cm.broadcasts[3], 1)
	payload := cm.broadcasts[3][0].(map[string]interface{})
	assert.Equal(t, "listing_stopped", payload["type"])
	assert.Equal(t, []uint64{3}, cm.closed)
}

func TestFeedListenerIgnoresRejectionsAndCreations(t *testing.T) {
	cm := newFakeConnManager()
	fl := NewFeedListener(cm, logger.NewNop())

	for _, eventType := range []domain.ItemEventType{domain.BidRejected, domain.ListingCreated} {
		err := fl.handleItemEvent(&domain.ItemEvent{Type: eventType, ItemID: 1})
		require.NoError(t, err)
	}
	assert.Empty(t, cm.broadcasts)
}

func TestFeedListenerUnknownEventType(t *testing.T) {
	fl := NewFeedListener(newFakeConnManager(), logger.NewNop())

	err := fl.handleItemEvent(&domain.ItemEvent{Type: "mystery", ItemID: 1})
	assert.Error(t, err)
}
