package model

import "gorm.io/gorm"

// Message is the persisted chat record. Rooms are not stored anywhere:
// RoomKey is always derivable from (sender, receiver) and indexed for
// history queries. Rows are append-only; only the read flag is ever updated.
type Message struct {
	gorm.Model
	RoomKey    string `gorm:"index;not null" json:"room_key"`
	SenderID   uint   `gorm:"not null" json:"sender_id"`
	ReceiverID uint   `gorm:"not null" json:"receiver_id"`
	Text       string `json:"text"`
	FileURL    string `json:"file_url"`
	FileName   string `json:"file_name"`
	FileKind   string `json:"file_kind"`
	FileSize   int64  `json:"file_size"`
	Read       bool   `gorm:"not null;default:false" json:"read"`
}

// Attachment describes an uploaded file referenced by a message. Upload
// handling itself lives in the media service; only the descriptor is kept
// here.
type Attachment struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Kind string `json:"kind"`
	Size int64  `json:"size"`
}
