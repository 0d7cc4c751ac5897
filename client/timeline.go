package client

// Entry is one rendered timeline row. Id is the correlation id for
// optimistic and live entries, or the durable record id for history rows.
type Entry struct {
	Id        string
	Text      string
	Sender    string
	Timestamp string

	// DurableId links a confirmed optimistic entry to its stored record, so
	// a later fetch that contains the record replaces the local copy instead
	// of duplicating it.
	DurableId string

	// Pending marks an optimistic local send that the store has not
	// confirmed yet; Failed marks one whose durable write failed and that
	// stays visible inline with a retry affordance.
	Pending bool
	Failed  bool
}

// Timeline reconciles the message sources of the active room (fetched
// history, optimistic local sends, relayed envelopes) into one ordered,
// deduplicated view. History and live arrivals share one ordered list;
// optimistic sends live in a separate pending list until confirmed, and the
// two are merged by correlation id at render time.
type Timeline struct {
	history []Entry
	pending []Entry
	ids     map[string]bool
}

func NewTimeline() *Timeline {
	return &Timeline{ids: map[string]bool{}}
}

// Reset replaces the visible timeline with a fetched history. Local entries
// the fetch does not cover stay visible: failed and in-flight sends always,
// and confirmed sends too, because the fetched page may have been read
// before the persist landed. A confirmed entry disappears only once a fetch
// actually contains its durable copy.
func (t *Timeline) Reset(history []Entry) {
	t.history = history
	t.ids = map[string]bool{}
	for _, entry := range history {
		t.ids[entry.Id] = true
	}

	kept := []Entry{}
	for _, entry := range t.pending {
		if t.ids[entry.Id] || (entry.DurableId != "" && t.ids[entry.DurableId]) {
			continue
		}
		kept = append(kept, entry)
		t.ids[entry.Id] = true
	}
	t.pending = kept
}

// Clear empties the timeline. Switching rooms never merges across rooms.
func (t *Timeline) Clear() {
	t.history = nil
	t.pending = nil
	t.ids = map[string]bool{}
}

// AppendLive adds a relayed envelope's entry; duplicates by id are ignored.
func (t *Timeline) AppendLive(entry Entry) bool {
	if entry.Id == "" || t.ids[entry.Id] {
		return false
	}
	t.ids[entry.Id] = true
	t.history = append(t.history, entry)
	return true
}

// AppendPending adds an optimistic local send.
func (t *Timeline) AppendPending(entry Entry) {
	if entry.Id == "" || t.ids[entry.Id] {
		return
	}
	entry.Pending = true
	t.ids[entry.Id] = true
	t.pending = append(t.pending, entry)
}

// Confirm marks a pending entry as durably stored under durableId.
func (t *Timeline) Confirm(id, durableId string) {
	for i := range t.pending {
		if t.pending[i].Id == id {
			t.pending[i].Pending = false
			t.pending[i].DurableId = durableId
			return
		}
	}
}

// MarkFailed flags a pending entry whose durable write failed. The entry is
// not silently dropped; it renders inline as failed.
func (t *Timeline) MarkFailed(id string) {
	for i := range t.pending {
		if t.pending[i].Id == id {
			t.pending[i].Pending = false
			t.pending[i].Failed = true
			return
		}
	}
}

// Render returns the merged timeline: history and live entries in arrival
// order, then local sends newer than the last fetch.
func (t *Timeline) Render() []Entry {
	merged := make([]Entry, 0, len(t.history)+len(t.pending))
	merged = append(merged, t.history...)
	merged = append(merged, t.pending...)
	return merged
}
