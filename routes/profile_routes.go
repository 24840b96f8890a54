package routes

import (
	"github.com/caringlab/care_connect/handlers"
	"github.com/caringlab/care_connect/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	recipients := api.Group("/care-recipients", middleware.Protected(), middleware.MemberRequired())
	recipients.Post("", handlers.CreateCareRecipient)
	recipients.Get("", handlers.GetMyCareRecipients)
	recipients.Delete("/:recipientId", handlers.DeleteCareRecipient)
}
