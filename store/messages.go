// Package store wraps the durable side of the messenger: the append-only
// message log in Postgres and the Redis online set. The realtime relay never
// calls into this package; live delivery and persistence are independent
// paths.
package store

import (
	"sort"

	"vnet-service/model"

	"gorm.io/gorm"
)

const (
	// DefaultHistoryLimit applies when a caller asks for history without a
	// limit. MaxHistoryLimit bounds any request to keep room scans finite.
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 500
)

// Messages is the append-only message log. Rows are immutable after insert
// except for the read flag.
type Messages struct {
	DB *gorm.DB
}

func NewMessages(db *gorm.DB) *Messages {
	return &Messages{DB: db}
}

// Append persists one message and returns the stored record with its
// generated id and creation timestamp.
func (s *Messages) Append(roomKey string, senderID, receiverID uint, text string, att *model.Attachment) (model.Message, error) {
	message := model.Message{
		RoomKey:    roomKey,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
	}
	if att != nil {
		message.FileURL = att.URL
		message.FileName = att.Name
		message.FileKind = att.Kind
		message.FileSize = att.Size
	}
	if err := s.DB.Create(&message).Error; err != nil {
		return model.Message{}, err
	}
	return message, nil
}

// ListByRoom returns the newest messages of a room in ascending creation
// order, at most limit rows. Identical timestamps keep insertion order.
func (s *Messages) ListByRoom(roomKey string, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	messages := []model.Message{}
	err := s.DB.
		Where(&model.Message{RoomKey: roomKey}).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse the newest-first page back into timeline order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// PeersOf derives the distinct counterpart ids from every message the user
// sent or received. The chat roster is built from this; there is no stored
// conversation entity.
func (s *Messages) PeersOf(userID uint) ([]uint, error) {
	var sentTo, receivedFrom []uint

	err := s.DB.Model(&model.Message{}).
		Distinct().
		Where("sender_id = ?", userID).
		Pluck("receiver_id", &sentTo).Error
	if err != nil {
		return nil, err
	}

	err = s.DB.Model(&model.Message{}).
		Distinct().
		Where("receiver_id = ?", userID).
		Pluck("sender_id", &receivedFrom).Error
	if err != nil {
		return nil, err
	}

	seen := map[uint]bool{}
	peers := []uint{}
	for _, id := range append(sentTo, receivedFrom...) {
		if id == userID || seen[id] {
			continue
		}
		seen[id] = true
		peers = append(peers, id)
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i] < peers[j] })
	return peers, nil
}

// UnreadByPeer counts unread incoming messages per sender for the roster
// badges.
func (s *Messages) UnreadByPeer(userID uint) (map[uint]int, error) {
	rows := []struct {
		SenderID uint
		Total    int
	}{}

	err := s.DB.Model(&model.Message{}).
		Select("sender_id, count(*) as total").
		Where("receiver_id = ? AND read = ?", userID, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	unread := map[uint]int{}
	for _, row := range rows {
		unread[row.SenderID] = row.Total
	}
	return unread, nil
}

// MarkRead flips the read flag on the reader's incoming messages in a room.
// Called when the reader fetches that room's history.
func (s *Messages) MarkRead(roomKey string, readerID uint) error {
	return s.DB.Model(&model.Message{}).
		Where("room_key = ? AND receiver_id = ? AND read = ?", roomKey, readerID, false).
		Update("read", true).Error
}
