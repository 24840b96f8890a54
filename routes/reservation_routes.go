package routes

import (
	"github.com/caringlab/care_connect/handlers"
	"github.com/caringlab/care_connect/middleware"
	"github.com/gofiber/fiber/v2"
)

func ReservationRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	member := api.Group("/reservations", middleware.Protected(), middleware.MemberRequired())
	member.Post("", handlers.CreateReservation)
	member.Get("/me", handlers.GetMyReservations)
	member.Get("/:reservationId", handlers.GetReservationDetail)
	member.Post("/:reservationId/cancel", handlers.CancelMyReservation)

	institution := api.Group("/institution/reservations", middleware.Protected(), middleware.InstitutionAdminRequired())
	institution.Get("", handlers.GetInstitutionReservations)
	institution.Patch("/:reservationId/status", handlers.UpdateReservationStatus)
	institution.Post("/:reservationId/cancel", handlers.CancelInstitutionReservation)
}
