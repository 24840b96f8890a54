package handlers

import (
	"time"

	"github.com/caringlab/care_connect/database"
	"github.com/caringlab/care_connect/middleware"
	"github.com/caringlab/care_connect/models"
	"github.com/caringlab/care_connect/scheduling"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateCareRecipientRequest struct {
	FullName  string  `json:"full_name" validate:"required,max=255"`
	BirthDate *string `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Gender    *string `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	CareNotes *string `json:"care_notes,omitempty"`
}

func CreateCareRecipient(c *fiber.Ctx) error {
	memberID, err := middleware.PrincipalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal"})
	}

	var req CreateCareRecipientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	recipient := models.CareRecipient{
		MemberID:  memberID,
		FullName:  req.FullName,
		Gender:    req.Gender,
		CareNotes: req.CareNotes,
	}
	if req.BirthDate != nil {
		birth, _ := time.Parse("2006-01-02", *req.BirthDate)
		recipient.BirthDate = &birth
	}

	if err := database.DB.Create(&recipient).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create care recipient"})
	}

	return c.Status(fiber.StatusCreated).JSON(recipient)
}

func GetMyCareRecipients(c *fiber.Ctx) error {
	memberID, err := middleware.PrincipalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal"})
	}

	var recipients []models.CareRecipient
	database.DB.Where("member_id = ?", memberID).Order("created_at").Find(&recipients)

	return c.JSON(recipients)
}

func DeleteCareRecipient(c *fiber.Ctx) error {
	memberID, err := middleware.PrincipalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal"})
	}

	id, err := uuid.Parse(c.Params("recipientId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid care recipient id"})
	}

	var recipient models.CareRecipient
	if err := database.DB.First(&recipient, "id = ? AND member_id = ?", id, memberID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Care recipient not found"})
	}

	var active int64
	database.DB.Model(&models.Reservation{}).
		Where("care_recipient_id = ? AND status IN ?", recipient.ID, []string{scheduling.StatusPending, scheduling.StatusConfirmed}).
		Count(&active)
	if active > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Care recipient has active reservations"})
	}

	if err := database.DB.Delete(&recipient).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete care recipient"})
	}
	return c.JSON(fiber.Map{"message": "Care recipient deleted"})
}
