package domain

import (
	"time"
)

// Item is a single auction listing. Owner is fixed at creation; name and
// description stay mutable while the listing is active. Once Active flips to
// false the listing is terminal and every field is frozen.
type Item struct {
	ID                uint64  `json:"id"`
	Owner             string  `json:"owner"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	CurrentHighestBid uint64  `json:"current_highest_bid"`
	HighestBidder     *string `json:"highest_bidder,omitempty"`
	Active            bool    `json:"active"`
	NewOwner          *string `json:"new_owner,omitempty"`
}

// Bid is one accepted bid. Bids are never mutated or deleted once accepted;
// submission order is the position in the item's bid sequence.
type Bid struct {
	Bidder   string    `json:"bidder"`
	Amount   uint64    `json:"amount"`
	PlacedAt time.Time `json:"placed_at"`
}

// ItemEvent flows through the event pipeline to the feed and archive
// services. Principal is the caller that triggered the event; Amount is only
// meaningful for bid events.
type ItemEvent struct {
	Type      ItemEventType `json:"type"`
	ItemID    uint64        `json:"item_id"`
	Principal string        `json:"principal"`
	Amount    uint64        `json:"amount"`
	Timestamp time.Time     `json:"timestamp"`
}

type ItemEventType string

const (
	ListingCreated ItemEventType = "listing_created"
	ListingUpdated ItemEventType = "listing_updated"
	ListingStopped ItemEventType = "listing_stopped"
	BidAccepted    ItemEventType = "bid_accepted"
	BidRejected    ItemEventType = "bid_rejected"
)

// Snapshot is a point-in-time copy of the whole store, exchanged with the
// MySQL archive for periodic flushes and boot-time restore.
type Snapshot struct {
	Items map[uint64]*Item
	Bids  map[uint64][]Bid
}
