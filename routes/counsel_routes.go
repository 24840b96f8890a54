package routes

import (
	"github.com/caringlab/care_connect/handlers"
	"github.com/caringlab/care_connect/middleware"
	"github.com/gofiber/fiber/v2"
)

func CounselRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Availability is readable by any authenticated caller.
	api.Get("/counsels/:counselId/availability", middleware.Protected(), handlers.GetCounselAvailability)

	counsel := api.Group("/institution/counsels", middleware.Protected(), middleware.InstitutionAdminRequired())
	counsel.Post("", handlers.CreateCounsel)
	counsel.Get("", handlers.ListMyCounsels)
	counsel.Put("/:counselId", handlers.UpdateCounsel)
	counsel.Post("/:counselId/toggle", handlers.ToggleCounselStatus)
	counsel.Delete("/:counselId", handlers.DeleteCounsel)
	counsel.Put("/:counselId/hours", handlers.ReplaceCounselHours)
}
