package model

// Envelope is the live wire object exchanged over the realtime relay. It is
// never persisted; durability goes through the message store on a separate
// path. Id is a client-generated correlation id, unique per client session,
// used to reconcile optimistic local echoes against relayed copies.
//
// Sender carries the role hint ("me" on the way in); the server rewrites it
// to "other" before rebroadcast so recipients render it on the correct side.
type Envelope struct {
	Id        string `json:"id"`
	Text      string `json:"text"`
	RoomKey   string `json:"roomKey"`
	Timestamp string `json:"timestamp"`
	Sender    string `json:"sender"`
}

const (
	SenderMe    = "me"
	SenderOther = "other"
)
