package websocket

import (
	"encoding/json"
	"sync"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"
)

// ConnectionManager tracks live feed connections per item room. One
// connection per principal per room; a principal may watch several items.
type ConnectionManager struct {
	rooms map[uint64]map[string]domain.FeedConnection // itemID -> principal -> connection
	mutex sync.RWMutex
	log   logger.Logger
}

func NewConnectionManager(log logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		rooms: make(map[uint64]map[string]domain.FeedConnection),
		log:   log,
	}
}

func (cm *ConnectionManager) RegisterConnection(principal string, itemID uint64, conn domain.FeedConnection) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if cm.rooms[itemID] == nil {
		cm.rooms[itemID] = make(map[string]domain.FeedConnection)
	}
	// A reconnect replaces the previous connection for this principal.
	if previous, ok := cm.rooms[itemID][principal]; ok {
		previous.Close()
	}
	cm.rooms[itemID][principal] = conn

	cm.log.Info("Feed connection registered", "principal", principal, "item_id", itemID)
	return nil
}

func (cm *ConnectionManager) UnregisterConnection(principal string, itemID uint64, conn domain.FeedConnection) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	room, exists := cm.rooms[itemID]
	if !exists {
		return nil
	}
	// An evicted connection's read loop tears down after the reconnect
	// has already replaced it; the room entry belongs to the newer
	// connection and must survive.
	if current, ok := room[principal]; !ok || current != conn {
		return nil
	}

	delete(room, principal)
	if len(room) == 0 {
		delete(cm.rooms, itemID)
	}

	cm.log.Info("Feed connection unregistered", "principal", principal, "item_id", itemID)
	return nil
}

func (cm *ConnectionManager) BroadcastToItem(itemID uint64, message interface{}) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	for _, conn := range cm.connectionsForItem(itemID) {
		if err := conn.Send(messageBytes); err != nil {
			// Keep going; the read loop tears down dead connections.
			cm.log.Error("Failed to send feed message", "principal", conn.Principal(),
				"item_id", itemID, "error", err)
		}
	}

	return nil
}

// CloseItemConnections shuts the room down after a listing stopped.
func (cm *ConnectionManager) CloseItemConnections(itemID uint64) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	room, exists := cm.rooms[itemID]
	if !exists {
		return nil
	}

	for principal, conn := range room {
		if err := conn.Close(); err != nil {
			cm.log.Error("Failed to close feed connection", "principal", principal,
				"item_id", itemID, "error", err)
		}
	}
	delete(cm.rooms, itemID)

	cm.log.Info("Feed room closed", "item_id", itemID)
	return nil
}

func (cm *ConnectionManager) connectionsForItem(itemID uint64) []domain.FeedConnection {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	connections := make([]domain.FeedConnection, 0, len(cm.rooms[itemID]))
	for _, conn := range cm.rooms[itemID] {
		connections = append(connections, conn)
	}
	return connections
}
