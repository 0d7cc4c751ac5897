package controller

import (
	"encoding/json"
	"strconv"
	"time"

	"vnet-service/model"
	"vnet-service/room"
	"vnet-service/store"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Messenger serves the REST side of the chat core: durable history, message
// creation and the roster. The live path never goes through here.
type Messenger struct {
	DB       *gorm.DB
	Store    *store.Messages
	Presence *store.Presence

	// Publish pushes a domain event to the broker. Optional; nil disables
	// event fan-out (tests, degraded mode).
	Publish func(action string, data []byte)
}

func NewMessenger(db *gorm.DB, presence *store.Presence) *Messenger {
	return &Messenger{
		DB:       db,
		Store:    store.NewMessages(db),
		Presence: presence,
	}
}

type MessageJSON struct {
	Id         uint              `json:"id"`
	RoomKey    string            `json:"roomKey"`
	Sender     string            `json:"sender"`
	SenderID   uint              `json:"senderId"`
	ReceiverID uint              `json:"receiverId"`
	Text       string            `json:"text"`
	Attachment *model.Attachment `json:"attachment,omitempty"`
	Created    time.Time         `json:"created"`
	Read       bool              `json:"read"`
}

type CreateMessageInput struct {
	RoomKey    string            `json:"roomKey"`
	ReceiverId uint              `json:"receiverId"`
	Text       string            `json:"text"`
	Attachment *model.Attachment `json:"attachment"`
}

type ChatUserJSON struct {
	Id         uint   `json:"id"`
	Username   string `json:"username"`
	AvatarSeed string `json:"avatarSeed"`
	Online     bool   `json:"online"`
	Unread     int    `json:"unreadCount"`
}

// Messages handles GET /v1/messenger/messages/:roomKey. History comes back in
// ascending creation order, each message tagged me/other relative to the
// caller, and the caller's incoming side is marked read.
func (m *Messenger) Messages(c *fiber.Ctx) error {
	callerID, caller := callerFromJWT(c)

	roomKey := c.Params("roomKey")
	if _, _, err := room.Members(roomKey); err != nil {
		return badRequest(c, "Malformed room key")
	}
	if !room.IsMember(roomKey, caller) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "error",
			"message": "Not a member of this room",
			"data":    nil,
		})
	}

	records, err := m.Store.ListByRoom(roomKey, c.QueryInt("limit"))
	if err != nil {
		return storeUnavailable(c)
	}

	// Fetching history is what "reading the room" means here.
	if err := m.Store.MarkRead(roomKey, callerID); err != nil {
		return storeUnavailable(c)
	}

	messages := []MessageJSON{}
	for _, record := range records {
		messages = append(messages, toMessageJSON(record, callerID))
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    messages,
	})
}

// CreateMessage handles POST /v1/messenger/messages: the durable half of a
// send. The live relay broadcast happens independently over the socket.
func (m *Messenger) CreateMessage(c *fiber.Ctx) error {
	callerID, caller := callerFromJWT(c)

	input := new(CreateMessageInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Review your input")
	}
	if input.Text == "" && input.Attachment == nil {
		return badRequest(c, "Message needs text or an attachment")
	}
	if input.ReceiverId == callerID {
		return badRequest(c, "Cannot message yourself")
	}

	// The room key the client subscribed to must match the participants.
	derived, err := room.DeriveKey(caller, strconv.FormatUint(uint64(input.ReceiverId), 10))
	if err != nil || derived != input.RoomKey {
		return badRequest(c, "Room key does not match participants")
	}

	stored, err := m.Store.Append(input.RoomKey, callerID, input.ReceiverId, input.Text, input.Attachment)
	if err != nil {
		return storeUnavailable(c)
	}

	if m.Publish != nil {
		payload, _ := json.Marshal(toMessageJSON(stored, callerID))
		m.Publish("message_created", payload)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    toMessageJSON(stored, callerID),
	})
}

// ChatUsers handles GET /v1/messenger/chat-users: distinct peers derived from
// the message log, with display info, presence and unread counts.
func (m *Messenger) ChatUsers(c *fiber.Ctx) error {
	callerID, _ := callerFromJWT(c)

	peers, err := m.Store.PeersOf(callerID)
	if err != nil {
		return storeUnavailable(c)
	}

	unread, err := m.Store.UnreadByPeer(callerID)
	if err != nil {
		return storeUnavailable(c)
	}

	users := []model.User{}
	if len(peers) > 0 {
		if err := m.DB.Find(&users, peers).Error; err != nil {
			return storeUnavailable(c)
		}
	}

	online := map[string]bool{}
	if m.Presence != nil {
		ids := make([]string, 0, len(users))
		for _, user := range users {
			ids = append(ids, strconv.FormatUint(uint64(user.ID), 10))
		}
		online = m.Presence.Online(c.Context(), ids)
	}

	roster := []ChatUserJSON{}
	for _, user := range users {
		roster = append(roster, ChatUserJSON{
			Id:         user.ID,
			Username:   user.Username,
			AvatarSeed: user.AvatarSeed,
			Online:     online[strconv.FormatUint(uint64(user.ID), 10)],
			Unread:     unread[user.ID],
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    roster,
	})
}

func toMessageJSON(record model.Message, callerID uint) MessageJSON {
	sender := model.SenderOther
	if record.SenderID == callerID {
		sender = model.SenderMe
	}

	message := MessageJSON{
		Id:         record.ID,
		RoomKey:    record.RoomKey,
		Sender:     sender,
		SenderID:   record.SenderID,
		ReceiverID: record.ReceiverID,
		Text:       record.Text,
		Created:    record.CreatedAt,
		Read:       record.Read,
	}
	if record.FileURL != "" {
		message.Attachment = &model.Attachment{
			URL:  record.FileURL,
			Name: record.FileName,
			Kind: record.FileKind,
			Size: record.FileSize,
		}
	}
	return message
}

func callerFromJWT(c *fiber.Ctx) (uint, string) {
	user := c.Locals("user").(*jwt.Token)
	claims := user.Claims.(jwt.MapClaims)
	id := claims["id"].(string)
	numeric, _ := strconv.ParseUint(id, 10, 64)
	return uint(numeric), id
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}

func storeUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"status":  "error",
		"message": "Message store unavailable, retry",
		"data":    nil,
	})
}
