package listener

import (
	"log"

	"vnet-service/event"
)

var (
	NotificationsChannel = make(chan event.EventChannelData)
)

// Notifications drains message_created events for the notification service.
// Delivery to that service happens through its own queue; this listener only
// logs what left this one.
func Notifications() {
	for data := range NotificationsChannel {
		switch data.Action {
		case "message_created":
			log.Printf("event: message_created (%d bytes)", len(data.Data))
		default:
			log.Printf("event: unhandled action %q", data.Action)
		}
	}
}
