package domain

import "errors"

// Every failure of a mutating operation is deterministic given current state
// and wraps exactly one of these sentinels. The HTTP layer maps them to
// status codes; callers use errors.Is.
var (
	// ErrItemNotFound - the referenced item id was never assigned.
	ErrItemNotFound = errors.New("item not found")

	// ErrListingNotActive - bid, update or stop attempted against a listing
	// that has already been stopped.
	ErrListingNotActive = errors.New("listing is no longer active")

	// ErrBidTooLow - bid amount not strictly greater than the current
	// highest bid.
	ErrBidTooLow = errors.New("bid amount must be higher than the current highest bid")

	// ErrSelfBid - owner bid on their own item while the self-bid policy
	// forbids it.
	ErrSelfBid = errors.New("cannot bid on your own item")

	// ErrNotOwner - update or stop attempted by a caller other than the
	// item's owner.
	ErrNotOwner = errors.New("caller does not own this listing")

	// ErrEmptyField - empty name or description on creation.
	ErrEmptyField = errors.New("name and description must not be empty")
)
