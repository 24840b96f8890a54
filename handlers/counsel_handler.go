package handlers

import (
	"errors"
	"time"

	"github.com/caringlab/care_connect/database"
	"github.com/caringlab/care_connect/middleware"
	"github.com/caringlab/care_connect/models"
	"github.com/caringlab/care_connect/scheduling"
	"github.com/caringlab/care_connect/timeslot"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validate = validator.New()

type CounselHourRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required,len=5"`
	EndTime   string `json:"end_time" validate:"required,len=5"`
}

type CreateCounselRequest struct {
	Title       string               `json:"title" validate:"required,max=100"`
	Description *string              `json:"description,omitempty" validate:"omitempty,max=500"`
	MinLeadDays int                  `json:"min_lead_days" validate:"min=0,max=7"`
	MaxLeadDays int                  `json:"max_lead_days" validate:"min=0,max=30"`
	Unit        string               `json:"unit" validate:"required,oneof=HALF FULL"`
	Hours       []CounselHourRequest `json:"hours" validate:"required,min=1,dive"`
}

func hourRules(reqs []CounselHourRequest) []scheduling.HourRule {
	rules := make([]scheduling.HourRule, 0, len(reqs))
	for _, h := range reqs {
		rules = append(rules, scheduling.HourRule{
			Day:   time.Weekday(h.DayOfWeek),
			Start: h.StartTime,
			End:   h.EndTime,
		})
	}
	return rules
}

func CreateCounsel(c *fiber.Ctx) error {
	institutionID, err := middleware.InstitutionID(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No institution associated with this account"})
	}

	var req CreateCounselRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.MaxLeadDays < req.MinLeadDays {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "max_lead_days must not be less than min_lead_days"})
	}

	unit := timeslot.Unit(req.Unit)
	if err := scheduling.ValidateHours(unit, hourRules(req.Hours)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var institution models.Institution
	if err := database.DB.First(&institution, "id = ?", institutionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Institution not found"})
	}

	var counsel models.Counsel
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		counsel = models.Counsel{
			InstitutionID: institution.ID,
			Title:         req.Title,
			Description:   req.Description,
			MinLeadDays:   req.MinLeadDays,
			MaxLeadDays:   req.MaxLeadDays,
			Unit:          unit,
			Active:        true,
		}
		if err := tx.Create(&counsel).Error; err != nil {
			return err
		}
		for _, h := range req.Hours {
			hour := models.CounselHour{
				CounselID: counsel.ID,
				DayOfWeek: h.DayOfWeek,
				StartTime: h.StartTime,
				EndTime:   h.EndTime,
			}
			if err := tx.Create(&hour).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create counsel service"})
	}

	database.DB.Preload("Hours").First(&counsel, "id = ?", counsel.ID)
	return c.Status(fiber.StatusCreated).JSON(counsel)
}

func ListMyCounsels(c *fiber.Ctx) error {
	institutionID, err := middleware.InstitutionID(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No institution associated with this account"})
	}

	var counsels []models.Counsel
	database.DB.Preload("Hours").Where("institution_id = ?", institutionID).Order("created_at desc").Find(&counsels)

	return c.JSON(counsels)
}

// ownedCounsel loads a counsel and verifies it belongs to the caller's
// institution. Not-found and not-owned are reported identically.
func ownedCounsel(c *fiber.Ctx, counselID string) (*models.Counsel, error) {
	institutionID, err := middleware.InstitutionID(c)
	if err != nil {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No institution associated with this account"})
	}

	id, err := uuid.Parse(counselID)
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid counsel id"})
	}

	var counsel models.Counsel
	if err := database.DB.First(&counsel, "id = ? AND institution_id = ?", id, institutionID).Error; err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Counsel service not found"})
	}
	return &counsel, nil
}

type UpdateCounselRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	MinLeadDays *int    `json:"min_lead_days,omitempty" validate:"omitempty,min=0,max=7"`
	MaxLeadDays *int    `json:"max_lead_days,omitempty" validate:"omitempty,min=0,max=30"`
}

func UpdateCounsel(c *fiber.Ctx) error {
	counsel, err := ownedCounsel(c, c.Params("counselId"))
	if counsel == nil {
		return err
	}

	var req UpdateCounselRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.Title != nil {
		counsel.Title = *req.Title
	}
	if req.Description != nil {
		counsel.Description = req.Description
	}
	if req.MinLeadDays != nil {
		counsel.MinLeadDays = *req.MinLeadDays
	}
	if req.MaxLeadDays != nil {
		counsel.MaxLeadDays = *req.MaxLeadDays
	}
	if counsel.MaxLeadDays < counsel.MinLeadDays {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "max_lead_days must not be less than min_lead_days"})
	}

	if err := database.DB.Save(counsel).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update counsel service"})
	}
	return c.JSON(counsel)
}

func ToggleCounselStatus(c *fiber.Ctx) error {
	counsel, err := ownedCounsel(c, c.Params("counselId"))
	if counsel == nil {
		return err
	}

	counsel.Active = !counsel.Active
	if err := database.DB.Save(counsel).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to toggle counsel status"})
	}
	return c.JSON(fiber.Map{"id": counsel.ID, "active": counsel.Active})
}

func DeleteCounsel(c *fiber.Ctx) error {
	counsel, err := ownedCounsel(c, c.Params("counselId"))
	if counsel == nil {
		return err
	}

	if err := database.DB.Delete(counsel).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete counsel service"})
	}
	return c.JSON(fiber.Map{"message": "Counsel service deleted"})
}

type ReplaceCounselHoursRequest struct {
	Hours []CounselHourRequest `json:"hours" validate:"required,min=1,dive"`
}

// ReplaceCounselHours swaps the full weekly template in one transaction.
// Already-materialized days keep the availability they were created with;
// the new template only shapes days materialized from now on.
func ReplaceCounselHours(c *fiber.Ctx) error {
	counsel, err := ownedCounsel(c, c.Params("counselId"))
	if counsel == nil {
		return err
	}

	var req ReplaceCounselHoursRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := scheduling.ValidateHours(counsel.Unit, hourRules(req.Hours)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("counsel_id = ?", counsel.ID).Delete(&models.CounselHour{}).Error; err != nil {
			return err
		}
		for _, h := range req.Hours {
			hour := models.CounselHour{
				CounselID: counsel.ID,
				DayOfWeek: h.DayOfWeek,
				StartTime: h.StartTime,
				EndTime:   h.EndTime,
			}
			if err := tx.Create(&hour).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to replace counsel hours"})
	}

	var hours []models.CounselHour
	database.DB.Where("counsel_id = ?", counsel.ID).Order("day_of_week, start_time").Find(&hours)
	return c.JSON(fiber.Map{"counsel_id": counsel.ID, "hours": hours})
}

func counselByID(id string) (*models.Counsel, error) {
	counselID, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	var counsel models.Counsel
	if err := database.DB.First(&counsel, "id = ?", counselID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &counsel, nil
}
