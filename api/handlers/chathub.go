package handlers

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoomKey derives the canonical conversation key for two participant ids.
// The pair is sorted before joining so key(a,b) == key(b,a); a self-pair is
// allowed and produces "id_id".
func RoomKey(participantA, participantB string) string {
	pair := []string{participantA, participantB}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

// RoomConn is the subset of a websocket connection the hub needs. It is
// satisfied by *websocket.Conn and by fakes in tests.
type RoomConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// ChatHub tracks which connections have joined which rooms and fans newly
// sent messages out to every current member of a room. Membership lives in
// process memory only; clients re-join after reconnecting.
type ChatHub struct {
	mu    sync.Mutex
	conns map[string]RoomConn            // connection id -> connection
	rooms map[string]map[string]struct{} // room key -> set of connection ids
	joins map[string]map[string]struct{} // connection id -> set of room keys
}

// NewChatHub returns an empty hub
func NewChatHub() *ChatHub {
	return &ChatHub{
		conns: make(map[string]RoomConn),
		rooms: make(map[string]map[string]struct{}),
		joins: make(map[string]map[string]struct{}),
	}
}

// Register adds a connection with no membership and returns its id
func (h *ChatHub) Register(conn RoomConn) string {
	id := uuid.New().String()
	h.mu.Lock()
	h.conns[id] = conn
	h.joins[id] = make(map[string]struct{})
	h.mu.Unlock()
	return id
}

// JoinRoom adds the room to the connection's membership set. Re-joining a
// room already joined is a no-op.
func (h *ChatHub) JoinRoom(connID, roomKey string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[connID]; !ok {
		return
	}
	if h.rooms[roomKey] == nil {
		h.rooms[roomKey] = make(map[string]struct{})
	}
	h.rooms[roomKey][connID] = struct{}{}
	h.joins[connID][roomKey] = struct{}{}
}

// Disconnect discards the connection and its entire membership set
func (h *ChatHub) Disconnect(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomKey := range h.joins[connID] {
		delete(h.rooms[roomKey], connID)
		if len(h.rooms[roomKey]) == 0 {
			delete(h.rooms, roomKey)
		}
	}
	delete(h.joins, connID)
	delete(h.conns, connID)
}

// MemberCount returns how many connections are currently joined to the room
func (h *ChatHub) MemberCount(roomKey string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomKey])
}

// RoomCount returns how many rooms the connection has joined
func (h *ChatHub) RoomCount(connID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.joins[connID])
}

// Broadcast delivers an event frame to every connection joined to the room
// at the moment of the call, the sender's connection included. Connections
// that fail to write are dropped. Delivery is best effort; the number of
// successful writes is returned.
func (h *ChatHub) Broadcast(roomKey, event string, data interface{}) int {
	h.mu.Lock()
	members := make(map[string]RoomConn, len(h.rooms[roomKey]))
	for connID := range h.rooms[roomKey] {
		members[connID] = h.conns[connID]
	}
	h.mu.Unlock()

	delivered := 0
	for connID, conn := range members {
		err := conn.WriteJSON(map[string]interface{}{
			"event": event,
			"data":  data,
		})
		if err != nil {
			zap.S().Warnw("dropping chat connection after failed write",
				"connId", connID,
				"room", roomKey,
				"error", err)
			h.Disconnect(connID)
			conn.Close()
			continue
		}
		delivered++
	}
	return delivered
}
