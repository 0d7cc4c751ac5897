package store

import (
	"testing"

	"vnet-service/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testMessages(t *testing.T) *Messages {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Message{}))
	return NewMessages(db)
}

func TestAppendListRoundTrip(t *testing.T) {
	messages := testMessages(t)

	stored, err := messages.Append("1_2", 1, 2, "hi", nil)
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())

	history, err := messages.ListByRoom("1_2", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)

	last := history[len(history)-1]
	assert.Equal(t, stored.ID, last.ID)
	assert.Equal(t, "1_2", last.RoomKey)
	assert.Equal(t, uint(1), last.SenderID)
	assert.Equal(t, uint(2), last.ReceiverID)
	assert.Equal(t, "hi", last.Text)
	assert.False(t, last.Read)
}

func TestAppendKeepsAttachmentDescriptor(t *testing.T) {
	messages := testMessages(t)

	att := &model.Attachment{URL: "/files/a.png", Name: "a.png", Kind: "image", Size: 2048}
	stored, err := messages.Append("1_2", 1, 2, "", att)
	require.NoError(t, err)
	assert.Equal(t, "/files/a.png", stored.FileURL)
	assert.Equal(t, "a.png", stored.FileName)
	assert.Equal(t, "image", stored.FileKind)
	assert.Equal(t, int64(2048), stored.FileSize)
}

func TestListByRoomOrderAndIsolation(t *testing.T) {
	messages := testMessages(t)

	_, err := messages.Append("1_2", 1, 2, "one", nil)
	require.NoError(t, err)
	_, err = messages.Append("1_2", 2, 1, "two", nil)
	require.NoError(t, err)
	_, err = messages.Append("1_3", 1, 3, "elsewhere", nil)
	require.NoError(t, err)

	history, err := messages.ListByRoom("1_2", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "one", history[0].Text)
	assert.Equal(t, "two", history[1].Text)
}

func TestListByRoomLimitKeepsNewest(t *testing.T) {
	messages := testMessages(t)

	texts := []string{"a", "b", "c", "d"}
	for _, text := range texts {
		_, err := messages.Append("1_2", 1, 2, text, nil)
		require.NoError(t, err)
	}

	history, err := messages.ListByRoom("1_2", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "c", history[0].Text)
	assert.Equal(t, "d", history[1].Text)
}

func TestListByRoomEmpty(t *testing.T) {
	messages := testMessages(t)
	history, err := messages.ListByRoom("9_99", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPeersOf(t *testing.T) {
	messages := testMessages(t)

	seed := []struct {
		room     string
		from, to uint
	}{
		{"1_2", 1, 2},
		{"1_2", 2, 1},
		{"1_3", 3, 1},
		{"2_3", 2, 3}, // not user 1's traffic
	}
	for _, m := range seed {
		_, err := messages.Append(m.room, m.from, m.to, "x", nil)
		require.NoError(t, err)
	}

	peers, err := messages.PeersOf(1)
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 3}, peers)

	peers, err = messages.PeersOf(4)
	require.NoError(t, err)
	assert.Empty(t, peers)
}

func TestUnreadByPeerAndMarkRead(t *testing.T) {
	messages := testMessages(t)

	for i := 0; i < 3; i++ {
		_, err := messages.Append("1_2", 2, 1, "ping", nil)
		require.NoError(t, err)
	}
	_, err := messages.Append("1_3", 3, 1, "pong", nil)
	require.NoError(t, err)
	// Outgoing traffic never counts against the sender.
	_, err = messages.Append("1_2", 1, 2, "reply", nil)
	require.NoError(t, err)

	unread, err := messages.UnreadByPeer(1)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{2: 3, 3: 1}, unread)

	require.NoError(t, messages.MarkRead("1_2", 1))

	unread, err = messages.UnreadByPeer(1)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{3: 1}, unread, "only the fetched room resets")

	// Reader's own mark must not clear the peer's unread side.
	unread, err = messages.UnreadByPeer(2)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{1: 1}, unread)
}
