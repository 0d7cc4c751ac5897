package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimelineLiveDedup(t *testing.T) {
	timeline := NewTimeline()

	assert.True(t, timeline.AppendLive(Entry{Id: "m1", Text: "hi", Sender: "other"}))
	assert.False(t, timeline.AppendLive(Entry{Id: "m1", Text: "hi", Sender: "other"}))

	require.Len(t, timeline.Render(), 1)
}

func TestTimelineResetKeepsFailedAndInFlight(t *testing.T) {
	timeline := NewTimeline()

	timeline.AppendPending(Entry{Id: "ok", Text: "stored"})
	timeline.AppendPending(Entry{Id: "bad", Text: "lost"})
	timeline.AppendPending(Entry{Id: "inflight", Text: "pending"})
	timeline.Confirm("ok", "1")
	timeline.MarkFailed("bad")

	// "stored" is part of the fetched history now; its pending copy goes.
	timeline.Reset([]Entry{{Id: "1", Text: "stored", Sender: "me"}})

	rendered := timeline.Render()
	require.Len(t, rendered, 3)
	assert.Equal(t, "stored", rendered[0].Text)
	assert.Equal(t, "lost", rendered[1].Text)
	assert.True(t, rendered[1].Failed)
	assert.Equal(t, "pending", rendered[2].Text)
	assert.True(t, rendered[2].Pending)
}

func TestTimelineResetKeepsConfirmedEntryHistoryPredates(t *testing.T) {
	timeline := NewTimeline()

	timeline.AppendPending(Entry{Id: "uuid-1", Text: "hello"})
	timeline.Confirm("uuid-1", "9")

	// The fetched page was read before the persist landed: the confirmed
	// message must stay visible, not vanish.
	timeline.Reset([]Entry{})
	rendered := timeline.Render()
	require.Len(t, rendered, 1)
	assert.Equal(t, "hello", rendered[0].Text)
	assert.False(t, rendered[0].Pending)
	assert.False(t, rendered[0].Failed)

	// The next fetch carries the durable copy; the local one is replaced,
	// not duplicated.
	timeline.Reset([]Entry{{Id: "9", Text: "hello", Sender: "me"}})
	rendered = timeline.Render()
	require.Len(t, rendered, 1)
	assert.Equal(t, "9", rendered[0].Id)
}

func TestTimelineClear(t *testing.T) {
	timeline := NewTimeline()
	timeline.AppendLive(Entry{Id: "m1", Text: "hi"})
	timeline.AppendPending(Entry{Id: "p1", Text: "draft"})

	timeline.Clear()
	assert.Empty(t, timeline.Render())

	// Ids from the old room no longer block the new one.
	assert.True(t, timeline.AppendLive(Entry{Id: "m1", Text: "again"}))
}

func TestTimelineMarkFailedKeepsEntryVisible(t *testing.T) {
	timeline := NewTimeline()
	timeline.AppendPending(Entry{Id: "p1", Text: "hello"})
	timeline.MarkFailed("p1")

	rendered := timeline.Render()
	require.Len(t, rendered, 1)
	assert.True(t, rendered[0].Failed)
	assert.False(t, rendered[0].Pending)
	assert.Equal(t, "hello", rendered[0].Text)
}

func TestTimelineRenderOrder(t *testing.T) {
	timeline := NewTimeline()
	timeline.Reset([]Entry{{Id: "1", Text: "a"}, {Id: "2", Text: "b"}})
	timeline.AppendLive(Entry{Id: "m3", Text: "c"})
	timeline.AppendPending(Entry{Id: "p4", Text: "d"})

	rendered := timeline.Render()
	require.Len(t, rendered, 4)
	for i, text := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, text, rendered[i].Text)
	}
}
