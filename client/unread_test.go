package client

import (
	"testing"

	"vnet-service/model"

	"github.com/stretchr/testify/assert"
)

func TestTrackerCountsInactiveRoomsOnly(t *testing.T) {
	tracker := NewTracker("1")

	// Active room traffic merges into the timeline, never the badge.
	peer, counted := tracker.OnLiveEnvelope(model.Envelope{Id: "a", RoomKey: "1_2"}, "1_2")
	assert.False(t, counted)
	assert.Empty(t, peer)
	assert.Zero(t, tracker.Count("2"))

	peer, counted = tracker.OnLiveEnvelope(model.Envelope{Id: "b", RoomKey: "1_3"}, "1_2")
	assert.True(t, counted)
	assert.Equal(t, "3", peer)
	assert.Equal(t, 1, tracker.Count("3"))

	tracker.OnLiveEnvelope(model.Envelope{Id: "c", RoomKey: "1_3"}, "1_2")
	assert.Equal(t, 2, tracker.Count("3"))
}

func TestTrackerActivationClearsOnlyThatPeer(t *testing.T) {
	tracker := NewTracker("1")
	tracker.OnLiveEnvelope(model.Envelope{Id: "a", RoomKey: "1_3"}, "1_2")
	tracker.OnLiveEnvelope(model.Envelope{Id: "b", RoomKey: "1_4"}, "1_2")

	tracker.OnRoomActivated("3")

	assert.Zero(t, tracker.Count("3"))
	assert.Equal(t, 1, tracker.Count("4"))
	assert.Equal(t, map[string]int{"4": 1}, tracker.Counts())
}

func TestTrackerIgnoresForeignAndMalformedRooms(t *testing.T) {
	tracker := NewTracker("1")

	// Viewer is not a member of 2_3; a key like that never credits anyone.
	_, counted := tracker.OnLiveEnvelope(model.Envelope{Id: "a", RoomKey: "2_3"}, "")
	assert.False(t, counted)

	_, counted = tracker.OnLiveEnvelope(model.Envelope{Id: "b", RoomKey: "garbage"}, "")
	assert.False(t, counted)

	_, counted = tracker.OnLiveEnvelope(model.Envelope{Id: "c", RoomKey: ""}, "")
	assert.False(t, counted)

	assert.Empty(t, tracker.Counts())
}
