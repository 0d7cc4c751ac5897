// Package client is the chat controller behind the messages view: it owns
// the single active room and reconciles history fetches, optimistic local
// sends and relayed envelopes into one ordered timeline, plus the roster and
// its unread badges.
package client

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"vnet-service/model"
	"vnet-service/room"

	"github.com/google/uuid"
)

var (
	ErrNoActiveRoom = errors.New("no active chat room")
	ErrEmptyMessage = errors.New("message is empty")
)

// Backend is the durable side the controller depends on: the REST surface
// serving history, persistence and the roster.
type Backend interface {
	History(roomKey string, limit int) ([]HistoryMessage, error)
	Persist(request PersistRequest) (HistoryMessage, error)
	Roster() ([]RosterEntry, error)
}

// Transport is the live side: a persistent relay connection. Implementations
// own reconnection; the controller reacts through OnReconnect.
type Transport interface {
	Join(roomKey string) error
	Send(envelope model.Envelope) error
}

const (
	timestampLayout = "15:04"

	// defaultHistoryLimit matches the server's default page size.
	defaultHistoryLimit = 100
)

// Controller state is mutated from history completions, user actions and
// inbound relay events; one mutex serializes them the way the browser's
// event loop would.
type Controller struct {
	mu        sync.Mutex
	self      string
	backend   Backend
	transport Transport

	tracker  *Tracker
	roster   *Roster
	timeline *Timeline

	activePeer string
	activeRoom string

	// generation invalidates in-flight history fetches: a completion whose
	// generation is stale belongs to a room the user already left.
	generation uint64

	// seen holds every correlation id ever delivered, so a replayed envelope
	// can neither duplicate a timeline row nor double count a badge.
	seen map[string]bool

	historyFailed bool
	historyLimit  int

	now func() time.Time
}

func NewController(self string, backend Backend, transport Transport) (*Controller, error) {
	if self == "" {
		return nil, room.ErrInvalidIdentifier
	}
	return &Controller{
		self:         self,
		backend:      backend,
		transport:    transport,
		tracker:      NewTracker(self),
		roster:       NewRoster(),
		timeline:     NewTimeline(),
		seen:         map[string]bool{},
		historyLimit: defaultHistoryLimit,
		now:          time.Now,
	}, nil
}

// SetHistoryLimit overrides how many messages a history fetch asks for.
// Non-positive values restore the default.
func (c *Controller) SetHistoryLimit(limit int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	c.historyLimit = limit
}

// LoadRoster refreshes the peer list from the backend.
func (c *Controller) LoadRoster() error {
	entries, err := c.backend.Roster()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.roster.Replace(entries)
	return nil
}

// Activate makes peer's room the active one: both unread layers are zeroed
// immediately (the badge must not linger while, or because, the history
// fetch is slow or failing), the timeline is replaced by a fresh fetch and
// the live room joined. A still-running fetch for a previously active room
// is invalidated, not cancelled.
func (c *Controller) Activate(peer string) error {
	key, err := room.DeriveKey(c.self, peer)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.activePeer = peer
	c.activeRoom = key
	c.generation++
	generation := c.generation
	c.tracker.OnRoomActivated(peer)
	c.roster.Ensure(peer, "")
	c.roster.ClearUnread(peer)
	c.timeline.Clear()
	c.historyFailed = false
	limit := c.historyLimit
	c.mu.Unlock()

	go c.fetchHistory(generation, key, limit)
	return c.transport.Join(key)
}

// Send appends an optimistic local message immediately, then persists and
// relays it on independent paths. If the durable write fails the entry is
// marked failed inline; the relay broadcast may still have gone out.
func (c *Controller) Send(text string) (Entry, error) {
	if strings.TrimSpace(text) == "" {
		return Entry{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.activeRoom == "" {
		c.mu.Unlock()
		return Entry{}, ErrNoActiveRoom
	}

	// The store addresses receivers numerically; a peer id that cannot be
	// parsed would silently persist against receiver 0.
	receiver, err := strconv.ParseUint(c.activePeer, 10, 64)
	if err != nil {
		c.mu.Unlock()
		return Entry{}, room.ErrInvalidIdentifier
	}

	entry := Entry{
		Id:        uuid.NewString(),
		Text:      text,
		Sender:    model.SenderMe,
		Timestamp: c.now().Format(timestampLayout),
	}
	c.timeline.AppendPending(entry)

	envelope := model.Envelope{
		Id:        entry.Id,
		Text:      text,
		RoomKey:   c.activeRoom,
		Timestamp: entry.Timestamp,
		Sender:    model.SenderMe,
	}
	roomKey := c.activeRoom
	c.mu.Unlock()

	go func() {
		stored, err := c.backend.Persist(PersistRequest{
			RoomKey:    roomKey,
			ReceiverId: uint(receiver),
			Text:       text,
		})

		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.timeline.MarkFailed(entry.Id)
		} else {
			c.timeline.Confirm(entry.Id, strconv.FormatUint(uint64(stored.Id), 10))
		}
	}()

	if err := c.transport.Send(envelope); err != nil {
		return entry, err
	}
	return entry, nil
}

// OnEnvelope handles one relayed envelope. Duplicates by correlation id are
// dropped wholesale; active-room envelopes join the timeline, everything
// else only moves an unread badge.
func (c *Controller) OnEnvelope(envelope model.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if envelope.Id == "" || c.seen[envelope.Id] {
		return
	}
	c.seen[envelope.Id] = true

	if c.activeRoom != "" && envelope.RoomKey == c.activeRoom {
		c.timeline.AppendLive(Entry{
			Id:        envelope.Id,
			Text:      envelope.Text,
			Sender:    model.SenderOther,
			Timestamp: envelope.Timestamp,
		})
		return
	}

	if peer, counted := c.tracker.OnLiveEnvelope(envelope, c.activeRoom); counted {
		c.roster.Ensure(peer, "")
	}
}

// OnReconnect restores state after the transport dropped: re-join the active
// room and re-fetch its history. Envelopes missed during the outage are not
// buffered anywhere; only the durable log has them.
func (c *Controller) OnReconnect() error {
	c.mu.Lock()
	key := c.activeRoom
	if key == "" {
		c.mu.Unlock()
		return nil
	}
	c.generation++
	generation := c.generation
	limit := c.historyLimit
	c.mu.Unlock()

	go c.fetchHistory(generation, key, limit)
	return c.transport.Join(key)
}

// RetryHistory re-runs a failed history fetch for the active room.
func (c *Controller) RetryHistory() {
	c.mu.Lock()
	peer := c.activePeer
	key := c.activeRoom
	if key == "" {
		c.mu.Unlock()
		return
	}
	c.generation++
	generation := c.generation
	c.historyFailed = false
	c.roster.ClearUnread(peer)
	limit := c.historyLimit
	c.mu.Unlock()

	go c.fetchHistory(generation, key, limit)
}

func (c *Controller) fetchHistory(generation uint64, key string, limit int) {
	messages, err := c.backend.History(key, limit)

	c.mu.Lock()
	defer c.mu.Unlock()

	// The user switched rooms while this fetch was in flight; its result
	// belongs to a stale room and must not be applied.
	if generation != c.generation {
		return
	}

	if err != nil {
		c.historyFailed = true
		return
	}

	entries := make([]Entry, 0, len(messages))
	for _, message := range messages {
		entries = append(entries, Entry{
			Id:        strconv.FormatUint(uint64(message.Id), 10),
			Text:      message.Text,
			Sender:    message.Sender,
			Timestamp: message.Created.Format(timestampLayout),
		})
	}
	c.timeline.Reset(entries)
}

// Timeline returns the merged view of the active room.
func (c *Controller) Timeline() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeline.Render()
}

// Unread returns the effective badge for a peer: the live tracker when it
// has counted anything, otherwise the server-side count from the roster.
func (c *Controller) Unread(peer string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if count := c.tracker.Count(peer); count > 0 {
		return count
	}
	if entry := c.roster.Get(peer); entry != nil {
		return entry.ServerUnread
	}
	return 0
}

// Roster returns the peer list in roster order.
func (c *Controller) Roster() []RosterEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roster.List()
}

// ActivePeer returns the peer of the currently active room, if any.
func (c *Controller) ActivePeer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activePeer
}

// HistoryFailed reports whether the last history fetch for the active room
// failed, so the view can show a retry affordance instead of an empty room.
func (c *Controller) HistoryFailed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.historyFailed
}
