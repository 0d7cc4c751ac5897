package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vnet-service/config"
	"vnet-service/controller"
	"vnet-service/database"
	"vnet-service/event"
	"vnet-service/event/listener"
	"vnet-service/relay"
	"vnet-service/router"
	"vnet-service/socketio"
	"vnet-service/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	log.SetPrefix("vnet-service: ")

	rest := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		StrictRouting:         true,
		AppName:               "vnet-service",
	})

	rest.Use(cors.New())

	database.RedisConnect()
	database.PostgresConnect()

	event.RabbitMQConnect([]string{
		// Connect to queues
		"notifications",
	})

	// Run notification event listener
	go listener.Notifications()

	// Subscribe listener channel to outgoing chat events
	event.RabbitMQSubscribe([]event.RabbitMQSubscribeListener{
		{
			Queue:   "notifications",
			Channel: listener.NotificationsChannel,
		},
	})

	presence := store.NewPresence(database.Redis[0])
	session := relay.NewSession()

	messenger := controller.NewMessenger(database.Postgres, presence)
	messenger.Publish = func(action string, data []byte) {
		event.Emit("notifications", action, data)
	}
	user := controller.NewUser(database.Postgres)

	socket := socketio.Init(rest)

	router.Rest(rest, messenger, user)
	router.Socket(socket, session, presence)

	go rest.Listen(fmt.Sprintf(":%s", config.Config("SERVER_PORT")))

	exit := make(chan struct{})
	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	socket.Close(nil)
	event.RabbitMQChannel.Close()
	event.RabbitMQConnection.Close()
	os.Exit(0)
}
