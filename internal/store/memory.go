package store

import (
	"context"
	"sort"
	"sync"

	"auction-house/internal/domain"
)

// MemoryItemStore holds every item and its bid sequence in process. A
// read-write mutex guards the id map and the counter; each item carries its
// own mutex so mutations on different ids proceed independently while
// read-modify-write on one id is fully serialized.
type MemoryItemStore struct {
	mu     sync.RWMutex
	items  map[uint64]*itemEntry
	nextID uint64
}

type itemEntry struct {
	mu   sync.Mutex
	item domain.Item
	bids []domain.Bid
}

func NewMemoryItemStore() *MemoryItemStore {
	return &MemoryItemStore{
		items: make(map[uint64]*itemEntry),
	}
}

func (s *MemoryItemStore) Insert(ctx context.Context, item *domain.Item) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	stored := *item
	stored.ID = id
	s.items[id] = &itemEntry{item: stored}

	item.ID = id
	return id, nil
}

func (s *MemoryItemStore) Get(ctx context.Context, id uint64) (*domain.Item, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	copied := entry.item
	return &copied, nil
}

func (s *MemoryItemStore) All(ctx context.Context) ([]*domain.Item, error) {
	s.mu.RLock()
	entries := make([]*itemEntry, 0, len(s.items))
	for _, entry := range s.items {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	items := make([]*domain.Item, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		copied := entry.item
		entry.mu.Unlock()
		items = append(items, &copied)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *MemoryItemStore) Bids(ctx context.Context, id uint64) ([]domain.Bid, error) {
	entry, err := s.entry(id)
	if err != nil {
		return []domain.Bid{}, nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	bids := make([]domain.Bid, len(entry.bids))
	copy(bids, entry.bids)
	return bids, nil
}

func (s *MemoryItemStore) Mutate(ctx context.Context, id uint64, fn func(item *domain.Item, bids *[]domain.Bid) error) error {
	entry, err := s.entry(id)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// fn works on copies; commit only on success.
	item := entry.item
	bids := make([]domain.Bid, len(entry.bids))
	copy(bids, entry.bids)

	if err := fn(&item, &bids); err != nil {
		return err
	}

	entry.item = item
	entry.bids = bids
	return nil
}

func (s *MemoryItemStore) Count(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID, nil
}

// Restore replaces the store contents with an archived snapshot. The id
// counter continues past the highest restored id so ids are never reused
// across restarts.
func (s *MemoryItemStore) Restore(snapshot *domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[uint64]*itemEntry, len(snapshot.Items))
	s.nextID = 0

	for id, item := range snapshot.Items {
		entry := &itemEntry{item: *item}
		if bids, ok := snapshot.Bids[id]; ok {
			entry.bids = make([]domain.Bid, len(bids))
			copy(entry.bids, bids)
		}
		s.items[id] = entry

		if id >= s.nextID {
			s.nextID = id + 1
		}
	}
}

// SnapshotState copies the full store for the archive flush.
func (s *MemoryItemStore) SnapshotState() *domain.Snapshot {
	s.mu.RLock()
	entries := make(map[uint64]*itemEntry, len(s.items))
	for id, entry := range s.items {
		entries[id] = entry
	}
	s.mu.RUnlock()

	snapshot := &domain.Snapshot{
		Items: make(map[uint64]*domain.Item, len(entries)),
		Bids:  make(map[uint64][]domain.Bid, len(entries)),
	}

	for id, entry := range entries {
		entry.mu.Lock()
		item := entry.item
		bids := make([]domain.Bid, len(entry.bids))
		copy(bids, entry.bids)
		entry.mu.Unlock()

		snapshot.Items[id] = &item
		snapshot.Bids[id] = bids
	}

	return snapshot
}

func (s *MemoryItemStore) entry(id uint64) (*itemEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return entry, nil
}
