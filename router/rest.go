package router

import (
	"vnet-service/controller"
	"vnet-service/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func Rest(app *fiber.App, messenger *controller.Messenger, user *controller.User) {
	api := app.Group("/v1", logger.New())

	// Messenger
	msg := api.Group("/messenger", middleware.JWT())
	msg.Get("/messages/:roomKey", messenger.Messages)
	msg.Post("/messages", messenger.CreateMessage)
	msg.Get("/chat-users", messenger.ChatUsers)

	// User
	usr := api.Group("/user", middleware.JWT())
	usr.Get("/profile", user.Profile)
}
