package router

import (
	"context"
	"encoding/json"

	"vnet-service/model"
	"vnet-service/relay"
	"vnet-service/room"
	"vnet-service/socketio"
	"vnet-service/store"
	"vnet-service/utils"

	"github.com/zishang520/socket.io/v2/socket"
)

// Socket wires the relay protocol onto the socket.io server. Join and send
// are membership-checked against the token identity; unauthenticated sockets
// can hold a connection but never enter a room.
func Socket(server *socket.Server, session *relay.Session, presence *store.Presence) {
	server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)
		conn := &socketio.Client{Socket: client}

		if claims, ok := client.Data().(*utils.TokenMetadata); ok && presence != nil {
			presence.Connected(context.Background(), claims.Id)
		}

		client.On(relay.EventJoinRoom, func(args ...interface{}) {
			if len(args) == 0 {
				return
			}
			roomKey, ok := args[0].(string)
			if !ok {
				return
			}

			claims, ok := client.Data().(*utils.TokenMetadata)
			if !ok || !room.IsMember(roomKey, claims.Id) {
				return
			}

			session.Join(conn, roomKey)
		})

		client.On(relay.EventSendMessage, func(args ...interface{}) {
			if len(args) == 0 {
				return
			}

			envelope, err := decodeEnvelope(args[0])
			if err != nil {
				return
			}

			claims, ok := client.Data().(*utils.TokenMetadata)
			if !ok || !room.IsMember(envelope.RoomKey, claims.Id) {
				return
			}

			session.Send(conn, envelope)
		})

		client.On("disconnect", func(args ...interface{}) {
			session.Disconnect(conn)

			if claims, ok := client.Data().(*utils.TokenMetadata); ok && presence != nil {
				presence.Disconnected(context.Background(), claims.Id)
			}
		})
	})
}

// decodeEnvelope converts the loosely typed socket.io payload into the wire
// envelope via a json round trip.
func decodeEnvelope(arg interface{}) (model.Envelope, error) {
	raw, err := json.Marshal(arg)
	if err != nil {
		return model.Envelope{}, err
	}

	envelope := model.Envelope{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return model.Envelope{}, err
	}
	return envelope, nil
}
