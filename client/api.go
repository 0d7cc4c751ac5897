package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"vnet-service/model"

	"github.com/gofiber/fiber/v2"
)

// ErrUnavailable marks transient backend failures: the caller may retry.
var ErrUnavailable = errors.New("messenger api unavailable")

// HistoryMessage is one persisted message as the REST surface returns it,
// already tagged me/other relative to the caller.
type HistoryMessage struct {
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

type PersistRequest struct {
	RoomKey    string            `json:"roomKey"`
	ReceiverId uint              `json:"receiverId"`
	Text       string            `json:"text"`
	Attachment *model.Attachment `json:"attachment,omitempty"`
}

type Profile struct {
	Id       uint   `json:"id"`
	Username string `json:"username"`
}

type chatUserJSON struct {
	Id         uint   `json:"id"`
	Username   string `json:"username"`
	AvatarSeed string `json:"avatarSeed"`
	Online     bool   `json:"online"`
	Unread     int    `json:"unreadCount"`
}

// API talks to the messenger REST surface.
type API struct {
	BaseURL string
	Token   string
}

func NewAPI(baseURL, token string) *API {
	return &API{BaseURL: baseURL, Token: token}
}

func (a *API) History(roomKey string, limit int) ([]HistoryMessage, error) {
	messages := []HistoryMessage{}
	path := fmt.Sprintf("/v1/messenger/messages/%s?limit=%d", roomKey, limit)
	if err := a.call(fiber.Get(a.BaseURL+path), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (a *API) Persist(request PersistRequest) (HistoryMessage, error) {
	agent := fiber.Post(a.BaseURL + "/v1/messenger/messages")
	agent.JSON(request)

	message := HistoryMessage{}
	if err := a.call(agent, &message); err != nil {
		return HistoryMessage{}, err
	}
	return message, nil
}

func (a *API) Roster() ([]RosterEntry, error) {
	users := []chatUserJSON{}
	if err := a.call(fiber.Get(a.BaseURL+"/v1/messenger/chat-users"), &users); err != nil {
		return nil, err
	}

	roster := make([]RosterEntry, 0, len(users))
	for _, user := range users {
		roster = append(roster, RosterEntry{
			PeerID:       strconv.FormatUint(uint64(user.Id), 10),
			Username:     user.Username,
			AvatarSeed:   user.AvatarSeed,
			Online:       user.Online,
			ServerUnread: user.Unread,
		})
	}
	return roster, nil
}

func (a *API) Profile() (Profile, error) {
	profile := Profile{}
	if err := a.call(fiber.Get(a.BaseURL+"/v1/user/profile"), &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func (a *API) call(agent *fiber.Agent, out any) error {
	agent.Set(fiber.HeaderAuthorization, "Bearer "+a.Token)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrUnavailable, errs[0])
	}

	envelope := struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: malformed response", ErrUnavailable)
	}

	if code >= fiber.StatusInternalServerError {
		return fmt.Errorf("%w: %s", ErrUnavailable, envelope.Message)
	}
	if code >= fiber.StatusBadRequest {
		return fmt.Errorf("request rejected: %s", envelope.Message)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("%w: malformed payload", ErrUnavailable)
		}
	}
	return nil
}
