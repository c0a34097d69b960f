package handlers_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matricare/matricare-api/api/handlers"
)

type fakeConn struct {
	mu        sync.Mutex
	frames    []interface{}
	failWrite bool
	closed    bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite {
		return errors.New("broken pipe")
	}
	f.frames = append(f.frames, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func TestRoomKeyIsCommutative(t *testing.T) {
	assert.Equal(t, handlers.RoomKey("abc", "xyz"), handlers.RoomKey("xyz", "abc"))
	assert.Equal(t, "abc_xyz", handlers.RoomKey("xyz", "abc"))
}

func TestRoomKeySelfPair(t *testing.T) {
	assert.Equal(t, "abc_abc", handlers.RoomKey("abc", "abc"))
}

func TestChatHub_JoinRoomIsIdempotent(t *testing.T) {
	hub := handlers.NewChatHub()
	conn := &fakeConn{}
	id := hub.Register(conn)

	hub.JoinRoom(id, "a_b")
	hub.JoinRoom(id, "a_b")
	hub.JoinRoom(id, "a_b")

	assert.Equal(t, 1, hub.MemberCount("a_b"))
	assert.Equal(t, 1, hub.RoomCount(id))
}

func TestChatHub_JoinRoomUnknownConnection(t *testing.T) {
	hub := handlers.NewChatHub()
	hub.JoinRoom("nope", "a_b")
	assert.Equal(t, 0, hub.MemberCount("a_b"))
}

func TestChatHub_DisconnectRemovesAllMembership(t *testing.T) {
	hub := handlers.NewChatHub()
	conn := &fakeConn{}
	id := hub.Register(conn)
	hub.JoinRoom(id, "a_b")
	hub.JoinRoom(id, "a_c")

	hub.Disconnect(id)

	assert.Equal(t, 0, hub.MemberCount("a_b"))
	assert.Equal(t, 0, hub.MemberCount("a_c"))
	assert.Equal(t, 0, hub.RoomCount(id))

	delivered := hub.Broadcast("a_b", "receiveMessage", "hello")
	assert.Equal(t, 0, delivered)
	assert.Equal(t, 0, conn.frameCount())
}

func TestChatHub_BroadcastReachesAllMembersIncludingSender(t *testing.T) {
	hub := handlers.NewChatHub()
	sender := &fakeConn{}
	receiver := &fakeConn{}
	outsider := &fakeConn{}

	senderID := hub.Register(sender)
	receiverID := hub.Register(receiver)
	outsiderID := hub.Register(outsider)

	hub.JoinRoom(senderID, "a_b")
	hub.JoinRoom(receiverID, "a_b")
	hub.JoinRoom(outsiderID, "c_d")

	delivered := hub.Broadcast("a_b", "receiveMessage", "hello")

	assert.Equal(t, 2, delivered)
	assert.Equal(t, 1, sender.frameCount())
	assert.Equal(t, 1, receiver.frameCount())
	assert.Equal(t, 0, outsider.frameCount())

	frame, ok := sender.frames[0].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "receiveMessage", frame["event"])
	assert.Equal(t, "hello", frame["data"])
}

func TestChatHub_BroadcastDropsFailedConnections(t *testing.T) {
	hub := handlers.NewChatHub()
	healthy := &fakeConn{}
	broken := &fakeConn{failWrite: true}

	healthyID := hub.Register(healthy)
	brokenID := hub.Register(broken)
	hub.JoinRoom(healthyID, "a_b")
	hub.JoinRoom(brokenID, "a_b")

	delivered := hub.Broadcast("a_b", "receiveMessage", "hello")

	assert.Equal(t, 1, delivered)
	assert.True(t, broken.closed)
	assert.Equal(t, 1, hub.MemberCount("a_b"))
	assert.Equal(t, 0, hub.RoomCount(brokenID))
}
