package domain

import (
	"context"
)

// ItemStore is the authoritative mapping from item id to Item plus each
// item's bid sequence. Ids are assigned by a monotonic counter and never
// reused; items are never physically removed, only deactivated.
type ItemStore interface {
	// Insert assigns the next unused id, stores the item and returns the id.
	Insert(ctx context.Context, item *Item) (uint64, error)

	// Get returns a copy of the item, or ErrItemNotFound.
	Get(ctx context.Context, id uint64) (*Item, error)

	// All returns copies of every item ever listed, in ascending id order.
	All(ctx context.Context) ([]*Item, error)

	// Bids returns a copy of the item's bid sequence in submission order.
	// An unknown id yields an empty sequence, not an error.
	Bids(ctx context.Context, id uint64) ([]Bid, error)

	// Mutate runs fn with exclusive access to the item and its bid
	// sequence. All read-modify-write on an item goes through here; fn
	// returning an error leaves the item untouched. Mutations on different
	// ids proceed independently.
	Mutate(ctx context.Context, id uint64, fn func(item *Item, bids *[]Bid) error) error

	// Count is the number of items ever listed, active or not.
	Count(ctx context.Context) (uint64, error)
}

// Event interfaces
type EventPublisher interface {
	PublishItemEvent(ctx context.Context, event *ItemEvent) error
}

type EventSubscriber interface {
	SubscribeToItemEvents(ctx context.Context, handler EventHandler) error
}

type EventHandler func(event *ItemEvent) error

// Archive interfaces
type SnapshotArchive interface {
	Save(ctx context.Context, snapshot *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

type BidJournal interface {
	AppendBidEvent(ctx context.Context, event *ItemEvent) error
	BidHistory(ctx context.Context, itemID uint64) ([]*ItemEvent, error)
}

// Leader election interface
type LeaderElection interface {
	BecomeLeader(ctx context.Context, instanceID string) (bool, error)
	IsLeader(ctx context.Context, instanceID string) (bool, error)
	ReleaseLeadership(ctx context.Context, instanceID string) error
}

// Feed interfaces
type FeedConnection interface {
	Send(message []byte) error
	Close() error
	Principal() string
	ItemID() uint64
}

type ConnectionManager interface {
	RegisterConnection(principal string, itemID uint64, conn FeedConnection) error
	// UnregisterConnection removes conn from the room only while it is
	// still the registered connection for (principal, itemID); a stale
	// teardown after a reconnect leaves the replacement in place.
	UnregisterConnection(principal string, itemID uint64, conn FeedConnection) error
	BroadcastToItem(itemID uint64, message interface{}) error
	CloseItemConnections(itemID uint64) error
}
