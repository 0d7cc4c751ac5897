// Package room is the single definition of the two-party room key. Server
// handlers and the chat client must derive keys through this package only:
// a key computed anywhere else is a misrouting bug waiting to happen.
package room

import (
	"errors"
	"strings"
)

// Separator joins the two participant ids. Ids are numeric strings, so the
// separator can never occur inside a valid identifier.
const Separator = "_"

var ErrInvalidIdentifier = errors.New("invalid room participant identifier")

// DeriveKey maps two user ids to the canonical room key: the ids sorted by
// string comparison and joined with Separator. DeriveKey(a, b) == DeriveKey(b, a).
// Self-chat is undefined and rejected.
func DeriveKey(a, b string) (string, error) {
	if a == "" || b == "" || a == b {
		return "", ErrInvalidIdentifier
	}
	if b < a {
		a, b = b, a
	}
	return a + Separator + b, nil
}

// Members splits a room key back into its two participant ids.
func Members(key string) (string, string, error) {
	parts := strings.Split(key, Separator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || parts[0] == parts[1] {
		return "", "", ErrInvalidIdentifier
	}
	return parts[0], parts[1], nil
}

// PeerOf resolves the member of key that is not self.
func PeerOf(key, self string) (string, error) {
	a, b, err := Members(key)
	if err != nil {
		return "", err
	}
	switch self {
	case a:
		return b, nil
	case b:
		return a, nil
	}
	return "", ErrInvalidIdentifier
}

// IsMember reports whether self is one of the key's participants.
func IsMember(key, self string) bool {
	_, err := PeerOf(key, self)
	return err == nil
}
