package websocket

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Feed is read-only; any origin may watch
	},
}

// FeedHandler upgrades /ws/items/{itemID} requests and parks them in the
// item's room. The feed never accepts client input; the read loop only
// drains control frames and detects disconnects.
type FeedHandler struct {
	connManager domain.ConnectionManager
	log         logger.Logger
}

func NewFeedHandler(connManager domain.ConnectionManager, log logger.Logger) *FeedHandler {
	return &FeedHandler{
		connManager: connManager,
		log:         log,
	}
}

func (h *FeedHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	itemID, err := strconv.ParseUint(vars["itemID"], 10, 64)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	principal := r.URL.Query().Get("principal")
	if principal == "" {
		http.Error(w, "principal required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	feedConn := NewFeedConnection(conn, principal, itemID, h.log)

	if err := h.connManager.RegisterConnection(principal, itemID, feedConn); err != nil {
		h.log.Error("Failed to register feed connection", "error", err)
		conn.Close()
		return
	}

	go h.drain(feedConn)
}

func (h *FeedHandler) drain(conn *FeedConnection) {
	defer func() {
		h.connManager.UnregisterConnection(conn.Principal(), conn.ItemID(), conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.conn.ReadMessage(); err != nil {
			return
		}
	}
}
