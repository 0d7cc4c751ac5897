// Package relay is the realtime fan-out core: room membership plus broadcast,
// nothing else. It never touches the database; messages sent while the peer
// is offline reach them through the durable history, not through the relay.
package relay

import (
	"sync"

	"vnet-service/model"
)

// Relay event names, shared with the browser client.
const (
	EventJoinRoom       = "join_room"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
)

// Conn is one live client connection. Production conns wrap socket.io
// sockets; tests pass fakes.
type Conn interface {
	Emit(event string, data any) error
}

// Session owns the room key to connection mapping for one server process.
// It is constructed once in main and handed to the socket router; there is
// no package-level instance.
//
// A connection is joined to at most one room at a time: joining another room
// replaces the previous membership.
type Session struct {
	mu     sync.Mutex
	rooms  map[string]map[Conn]struct{}
	joined map[Conn]string
}

func NewSession() *Session {
	return &Session{
		rooms:  make(map[string]map[Conn]struct{}),
		joined: make(map[Conn]string),
	}
}

// Join adds conn to roomKey. Joining the current room again is a no-op; no
// history is replayed on join.
func (s *Session) Join(conn Conn, roomKey string) {
	if roomKey == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.joined[conn]; ok {
		if current == roomKey {
			return
		}
		s.leave(conn, current)
	}

	members, ok := s.rooms[roomKey]
	if !ok {
		members = make(map[Conn]struct{})
		s.rooms[roomKey] = members
	}
	members[conn] = struct{}{}
	s.joined[conn] = roomKey
}

// Send relays envelope to every other connection joined to envelope.RoomKey.
// The sender gets no echo; a room with no other members is a silent no-op.
// The role hint is rewritten to "other" so recipients render the message on
// the correct side. Fan-out happens under the session lock, so two sends from
// the same connection arrive at every member in send order.
func (s *Session) Send(sender Conn, envelope model.Envelope) {
	envelope.Sender = model.SenderOther

	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.rooms[envelope.RoomKey] {
		if conn == sender {
			continue
		}
		conn.Emit(EventReceiveMessage, envelope)
	}
}

// Disconnect removes conn from its room, if any. Presence changes are not
// broadcast on the message path.
func (s *Session) Disconnect(conn Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if roomKey, ok := s.joined[conn]; ok {
		s.leave(conn, roomKey)
	}
}

// Members reports the current member count of a room.
func (s *Session) Members(roomKey string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms[roomKey])
}

func (s *Session) leave(conn Conn, roomKey string) {
	if members, ok := s.rooms[roomKey]; ok {
		delete(members, conn)
		if len(members) == 0 {
			delete(s.rooms, roomKey)
		}
	}
	delete(s.joined, conn)
}
