package websocket

import (
	"sync"

	"github.com/gorilla/websocket"

	"auction-house/pkg/logger"
)

// FeedConnection wraps one websocket subscribed to a single item's feed.
// gorilla connections allow one concurrent writer, hence the write mutex.
type FeedConnection struct {
	conn      *websocket.Conn
	principal string
	itemID    uint64
	writeMu   sync.Mutex
	log       logger.Logger
}

func NewFeedConnection(conn *websocket.Conn, principal string, itemID uint64, log logger.Logger) *FeedConnection {
	return &FeedConnection{
		conn:      conn,
		principal: principal,
		itemID:    itemID,
		log:       log,
	}
}

func (c *FeedConnection) Send(message []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

func (c *FeedConnection) Close() error {
	return c.conn.Close()
}

func (c *FeedConnection) Principal() string {
	return c.principal
}

func (c *FeedConnection) ItemID() uint64 {
	return c.itemID
}
