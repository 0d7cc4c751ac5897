package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKeyOrderIndependent(t *testing.T) {
	ab, err := DeriveKey("17", "42")
	require.NoError(t, err)
	ba, err := DeriveKey("42", "17")
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
	assert.Equal(t, "17_42", ab)
}

func TestDeriveKeyDistinctPeers(t *testing.T) {
	ab, err := DeriveKey("1", "2")
	require.NoError(t, err)
	ac, err := DeriveKey("1", "3")
	require.NoError(t, err)
	assert.NotEqual(t, ab, ac)
}

func TestDeriveKeyRejectsDegenerateInput(t *testing.T) {
	for _, tc := range [][2]string{{"", "1"}, {"1", ""}, {"", ""}, {"7", "7"}} {
		_, err := DeriveKey(tc[0], tc[1])
		assert.ErrorIs(t, err, ErrInvalidIdentifier, "DeriveKey(%q, %q)", tc[0], tc[1])
	}
}

func TestMembers(t *testing.T) {
	a, b, err := Members("17_42")
	require.NoError(t, err)
	assert.Equal(t, "17", a)
	assert.Equal(t, "42", b)

	for _, key := range []string{"", "17", "17_", "_42", "7_7", "1_2_3"} {
		_, _, err := Members(key)
		assert.ErrorIs(t, err, ErrInvalidIdentifier, "Members(%q)", key)
	}
}

func TestPeerOf(t *testing.T) {
	key, err := DeriveKey("17", "42")
	require.NoError(t, err)

	peer, err := PeerOf(key, "17")
	require.NoError(t, err)
	assert.Equal(t, "42", peer)

	peer, err = PeerOf(key, "42")
	require.NoError(t, err)
	assert.Equal(t, "17", peer)

	_, err = PeerOf(key, "99")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	assert.True(t, IsMember(key, "17"))
	assert.False(t, IsMember(key, "99"))
}
