package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"auction-house/internal/domain"
)

// MySQLSnapshotArchive persists periodic snapshots of the in-memory store.
// Items are upserted; bid sequences are keyed by (item_id, seq) so the
// submission order survives the round trip and re-flushing is idempotent.
type MySQLSnapshotArchive struct {
	db *sql.DB
}

func NewMySQLSnapshotArchive(db *sql.DB) *MySQLSnapshotArchive {
	return &MySQLSnapshotArchive{db: db}
}

func (a *MySQLSnapshotArchive) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	itemQuery := `
        INSERT INTO items (id, owner, name, description, current_highest_bid,
                           highest_bidder, active, new_owner, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE
            name = VALUES(name),
            description = VALUES(description),
            current_highest_bid = VALUES(current_highest_bid),
            highest_bidder = VALUES(highest_bidder),
            active = VALUES(active),
            new_owner = VALUES(new_owner),
            updated_at = VALUES(updated_at)
    `
	bidQuery := `
        INSERT IGNORE INTO item_bids (item_id, seq, bidder, amount, placed_at)
        VALUES (?, ?, ?, ?, ?)
    `

	now := time.Now()
	for id, item := range snapshot.Items {
		_, err := tx.ExecContext(ctx, itemQuery,
			item.ID, item.Owner, item.Name, item.Description, item.CurrentHighestBid,
			item.HighestBidder, item.Active, item.NewOwner, now)
		if err != nil {
			return err
		}

		for seq, bid := range snapshot.Bids[id] {
			_, err := tx.ExecContext(ctx, bidQuery, id, seq, bid.Bidder, bid.Amount, bid.PlacedAt)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (a *MySQLSnapshotArchive) Load(ctx context.Context) (*domain.Snapshot, error) {
	snapshot := &domain.Snapshot{
		Items: make(map[uint64]*domain.Item),
		Bids:  make(map[uint64][]domain.Bid),
	}

	itemQuery := `
        SELECT id, owner, name, description, current_highest_bid,
               highest_bidder, active, new_owner
        FROM items
    `
	rows, err := a.db.QueryContext(ctx, itemQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.Item
		var highestBidder, newOwner sql.NullString

		err := rows.Scan(&item.ID, &item.Owner, &item.Name, &item.Description,
			&item.CurrentHighestBid, &highestBidder, &item.Active, &newOwner)
		if err != nil {
			return nil, err
		}

		if highestBidder.Valid {
			item.HighestBidder = &highestBidder.String
		}
		if newOwner.Valid {
			item.NewOwner = &newOwner.String
		}

		snapshot.Items[item.ID] = &item
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	bidQuery := `
        SELECT item_id, bidder, amount, placed_at
        FROM item_bids
        ORDER BY item_id ASC, seq ASC
    `
	bidRows, err := a.db.QueryContext(ctx, bidQuery)
	if err != nil {
		return nil, err
	}
	defer bidRows.Close()

	for bidRows.Next() {
		var itemID uint64
		var bid domain.Bid

		if err := bidRows.Scan(&itemID, &bid.Bidder, &bid.Amount, &bid.PlacedAt); err != nil {
			return nil, err
		}
		snapshot.Bids[itemID] = append(snapshot.Bids[itemID], bid)
	}
	if err := bidRows.Err(); err != nil {
		return nil, err
	}

	return snapshot, nil
}
