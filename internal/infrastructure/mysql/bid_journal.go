package mysql

import (
	"context"
	"database/sql"
	"time"

	"auction-house/internal/domain"
)

// MySQLBidJournal is the append-only record of accepted bid events, fed by
// the archive service from the event stream.
type MySQLBidJournal struct {
	db *sql.DB
}

func NewMySQLBidJournal(db *sql.DB) *MySQLBidJournal {
	return &MySQLBidJournal{db: db}
}

func (j *MySQLBidJournal) AppendBidEvent(ctx context.Context, event *domain.ItemEvent) error {
	query := `
        INSERT INTO bid_events (item_id, principal, amount, event_type, event_time, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err := j.db.ExecContext(ctx, query,
		event.ItemID, event.Principal, event.Amount,
		string(event.Type), event.Timestamp, time.Now())
	return err
}

func (j *MySQLBidJournal) BidHistory(ctx context.Context, itemID uint64) ([]*domain.ItemEvent, error) {
	query := `
        SELECT item_id, principal, amount, event_type, event_time
        FROM bid_events
        WHERE item_id = ? AND event_type = 'bid_accepted'
        ORDER BY event_time ASC, id ASC
    `

	rows, err := j.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.ItemEvent
	for rows.Next() {
		var event domain.ItemEvent
		var eventType string

		err := rows.Scan(&event.ItemID, &event.Principal, &event.Amount,
			&eventType, &event.Timestamp)
		if err != nil {
			return nil, err
		}

		event.Type = domain.ItemEventType(eventType)
		events = append(events, &event)
	}

	return events, rows.Err()
}
