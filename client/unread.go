package client

import (
	"vnet-service/model"
	"vnet-service/room"
)

// Tracker is the single source of truth for unread badges: a map of peer id
// to count, fed exactly once per live envelope by the controller (which owns
// correlation-id dedup) and cleared on room activation.
type Tracker struct {
	viewer string
	counts map[string]int
}

func NewTracker(viewer string) *Tracker {
	return &Tracker{viewer: viewer, counts: map[string]int{}}
}

// OnLiveEnvelope counts an envelope against its peer unless it belongs to
// the room currently being viewed (that one merges into the visible timeline
// instead). Returns the credited peer and whether a count happened.
func (t *Tracker) OnLiveEnvelope(envelope model.Envelope, activeRoomKey string) (string, bool) {
	if envelope.RoomKey == "" || envelope.RoomKey == activeRoomKey {
		return "", false
	}

	peer, err := room.PeerOf(envelope.RoomKey, t.viewer)
	if err != nil {
		return "", false
	}

	t.counts[peer]++
	return peer, true
}

// OnRoomActivated clears the counter for the peer whose room just became
// active. Always zero for the active room.
func (t *Tracker) OnRoomActivated(peer string) {
	delete(t.counts, peer)
}

// Count returns the unread count for one peer.
func (t *Tracker) Count(peer string) int {
	return t.counts[peer]
}

// Counts returns a copy of all non-zero counters.
func (t *Tracker) Counts() map[string]int {
	counts := make(map[string]int, len(t.counts))
	for peer, n := range t.counts {
		counts[peer] = n
	}
	return counts
}
