package client

// RosterEntry is one peer the viewer has chatted with, or just selected via
// navigation. ServerUnread is the persisted count reported by the API; the
// live tracker overlays it between roster refreshes.
type RosterEntry struct {
	PeerID       string
	Username     string
	AvatarSeed   string
	Online       bool
	ServerUnread int
}

// Roster keeps peers in a stable order. Entries are never removed during a
// session.
type Roster struct {
	order   []string
	entries map[string]*RosterEntry
}

func NewRoster() *Roster {
	return &Roster{entries: map[string]*RosterEntry{}}
}

// Replace swaps in a fresh roster fetch, keeping any locally added peers the
// server does not know about yet.
func (r *Roster) Replace(entries []RosterEntry) {
	fresh := map[string]*RosterEntry{}
	order := []string{}
	for i := range entries {
		entry := entries[i]
		fresh[entry.PeerID] = &entry
		order = append(order, entry.PeerID)
	}
	for _, id := range r.order {
		if _, ok := fresh[id]; !ok {
			fresh[id] = r.entries[id]
			order = append(order, id)
		}
	}
	r.entries = fresh
	r.order = order
}

// Ensure adds a peer with no message history yet, so "message this user"
// navigation shows them immediately.
func (r *Roster) Ensure(peerID, username string) {
	if _, ok := r.entries[peerID]; ok {
		return
	}
	if username == "" {
		username = peerID
	}
	r.entries[peerID] = &RosterEntry{PeerID: peerID, Username: username}
	r.order = append(r.order, peerID)
}

// ClearUnread zeroes the server-reported count once the peer's room is the
// one being viewed.
func (r *Roster) ClearUnread(peerID string) {
	if entry, ok := r.entries[peerID]; ok {
		entry.ServerUnread = 0
	}
}

// Get returns the entry for a peer, or nil.
func (r *Roster) Get(peerID string) *RosterEntry {
	return r.entries[peerID]
}

// List returns entries in roster order.
func (r *Roster) List() []RosterEntry {
	list := make([]RosterEntry, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, *r.entries[id])
	}
	return list
}
