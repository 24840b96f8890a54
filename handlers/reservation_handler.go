package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/caringlab/care_connect/database"
	"github.com/caringlab/care_connect/middleware"
	"github.com/caringlab/care_connect/models"
	"github.com/caringlab/care_connect/notifications"
	"github.com/caringlab/care_connect/scheduling"
	"github.com/caringlab/care_connect/timeslot"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateReservationRequest struct {
	CounselID       string `json:"counsel_id" validate:"required,uuid"`
	ServiceDate     string `json:"service_date" validate:"required,datetime=2006-01-02"`
	SlotIndex       int    `json:"slot_index" validate:"min=0,max=47"`
	CareRecipientID string `json:"care_recipient_id" validate:"required,uuid"`
}

// scheduleError maps engine sentinels onto HTTP statuses: conflicts are 409
// so clients re-offer another slot, invalid transitions are 422, validation
// failures 400.
func scheduleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, scheduling.ErrSlotUnavailable),
		errors.Is(err, scheduling.ErrDayContended):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, scheduling.ErrInvalidTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, scheduling.ErrOutsideLeadWindow),
		errors.Is(err, scheduling.ErrInvalidSlotIndex),
		errors.Is(err, scheduling.ErrUnalignedSlot):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Reservation could not be processed"})
	}
}

func CreateReservation(c *fiber.Ctx) error {
	memberID, err := middleware.PrincipalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal"})
	}

	var req CreateReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	counsel, err := counselByID(req.CounselID)
	if err != nil {
		return scheduleError(c, err)
	}
	if !counsel.Active {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Counsel service not found"})
	}

	date, _ := time.Parse("2006-01-02", req.ServiceDate)
	if err := scheduling.CheckLeadWindow(counsel.MinLeadDays, counsel.MaxLeadDays, date, time.Now()); err != nil {
		return scheduleError(c, err)
	}
	if !timeslot.InRange(req.SlotIndex) {
		return scheduleError(c, scheduling.ErrInvalidSlotIndex)
	}
	if !timeslot.Aligned(req.SlotIndex, counsel.Unit) {
		return scheduleError(c, scheduling.ErrUnalignedSlot)
	}

	recipientID, _ := uuid.Parse(req.CareRecipientID)
	var recipient models.CareRecipient
	if err := database.DB.First(&recipient, "id = ? AND member_id = ?", recipientID, memberID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Care recipient not found"})
	}

	// Check-then-claim runs under the day row's exclusive lock; the claim,
	// the mask write and the reservation insert commit or roll back together.
	var reservation models.Reservation
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		day, err := lockDayForUpdate(tx, counsel, date)
		if err != nil {
			return err
		}

		mask, err := timeslot.ParseDayMask(day.Slots)
		if err != nil {
			return err
		}
		if err := scheduling.Claim(&mask, req.SlotIndex, counsel.Unit); err != nil {
			return err
		}

		day.Slots = mask.String()
		if err := tx.Save(day).Error; err != nil {
			return err
		}

		reservation = models.Reservation{
			CounselDayID:    day.ID,
			MemberID:        memberID,
			CareRecipientID: recipient.ID,
			SlotIndex:       req.SlotIndex,
			Status:          scheduling.StatusPending,
		}
		return tx.Create(&reservation).Error
	})
	if err != nil {
		return scheduleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"reservation": reservation,
		"time_range":  timeslot.Label(reservation.SlotIndex),
	})
}

// cancelReservation flips the reservation to canceled and releases its
// slot(s) in one transaction. authorize runs after the reservation row is
// loaded and decides whether the caller may cancel it.
func cancelReservation(c *fiber.Ctx, reservationID string, authorize func(r *models.Reservation) error) error {
	id, err := uuid.Parse(reservationID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reservation id"})
	}

	var reservation models.Reservation
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// Lock the reservation first so a racing double-cancel or status
		// advance serializes before the transition check.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("CounselDay.Counsel").First(&reservation, "id = ?", id).Error; err != nil {
			return err
		}
		if err := authorize(&reservation); err != nil {
			return err
		}
		if err := scheduling.Transition(reservation.Status, scheduling.StatusCanceled); err != nil {
			return err
		}

		counsel := reservation.CounselDay.Counsel
		day, err := lockDayForUpdate(tx, &counsel, reservation.CounselDay.ServiceDate)
		if err != nil {
			return err
		}

		mask, err := timeslot.ParseDayMask(day.Slots)
		if err != nil {
			return err
		}
		if err := scheduling.Release(&mask, reservation.SlotIndex, counsel.Unit); err != nil {
			return err
		}

		day.Slots = mask.String()
		if err := tx.Save(day).Error; err != nil {
			return err
		}

		reservation.Status = scheduling.StatusCanceled
		return tx.Save(&reservation).Error
	})
	if err != nil {
		if errors.Is(err, errNotYours) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your reservation"})
		}
		return scheduleError(c, err)
	}

	go notifyReservation(&reservation, "Your reservation was canceled",
		"<h1>Reservation Canceled</h1><p>The counsel reservation for %s has been canceled.</p>")

	return c.JSON(fiber.Map{"message": "Reservation canceled", "reservation": reservation})
}

var errNotYours = errors.New("reservation does not belong to caller")

func CancelMyReservation(c *fiber.Ctx) error {
	memberID, err := middleware.PrincipalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal"})
	}

	return cancelReservation(c, c.Params("reservationId"), func(r *models.Reservation) error {
		if r.MemberID != memberID {
			return errNotYours
		}
		return nil
	})
}

func CancelInstitutionReservation(c *fiber.Ctx) error {
	institutionID, err := middleware.InstitutionID(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No institution associated with this account"})
	}

	return cancelReservation(c, c.Params("reservationId"), func(r *models.Reservation) error {
		if r.CounselDay.Counsel.InstitutionID != institutionID {
			return errNotYours
		}
		return nil
	})
}

type UpdateReservationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed completed"`
}

// UpdateReservationStatus advances a reservation along the institution side
// of the lifecycle (pending -> confirmed -> completed). Cancellation is not
// accepted here: it must go through the cancel path so the slot release
// shares the transaction.
func UpdateReservationStatus(c *fiber.Ctx) error {
	institutionID, err := middleware.InstitutionID(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No institution associated with this account"})
	}

	id, err := uuid.Parse(c.Params("reservationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reservation id"})
	}

	var req UpdateReservationStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var reservation models.Reservation
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("CounselDay.Counsel").Preload("Member").First(&reservation, "id = ?", id).Error; err != nil {
			return err
		}
		if reservation.CounselDay.Counsel.InstitutionID != institutionID {
			return errNotYours
		}
		if !scheduling.InstitutionAdvance(reservation.Status, req.Status) {
			return scheduling.ErrInvalidTransition
		}

		reservation.Status = req.Status
		return tx.Save(&reservation).Error
	})
	if err != nil {
		if errors.Is(err, errNotYours) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This reservation belongs to another institution"})
		}
		return scheduleError(c, err)
	}

	if reservation.Status == scheduling.StatusConfirmed {
		go notifyReservation(&reservation, "Your reservation is confirmed",
			"<h1>Reservation Confirmed</h1><p>Your counsel reservation for %s has been confirmed by the institution.</p>")
	}

	return c.JSON(reservation)
}

func notifyReservation(r *models.Reservation, subject, bodyFormat string) {
	var full models.Reservation
	if err := database.DB.Preload("Member").Preload("CounselDay").First(&full, "id = ?", r.ID).Error; err != nil {
		return
	}
	when := fmt.Sprintf("%s at %s",
		full.CounselDay.ServiceDate.Format("2006-01-02"),
		timeslot.Label(full.SlotIndex))
	notifications.SendEmail(full.Member.FullName, full.Member.Email, subject, fmt.Sprintf(bodyFormat, when))
}

func GetMyReservations(c *fiber.Ctx) error {
	memberID, err := middleware.PrincipalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal"})
	}

	var reservations []models.Reservation
	database.DB.
		Preload("CounselDay.Counsel").
		Preload("CareRecipient").
		Where("member_id = ?", memberID).
		Order("created_at desc").
		Find(&reservations)

	return c.JSON(reservations)
}

// GetInstitutionReservations lists an institution's reservations with
// optional status and date-range filters plus limit/offset paging.
func GetInstitutionReservations(c *fiber.Ctx) error {
	institutionID, err := middleware.InstitutionID(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No institution associated with this account"})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	query := database.DB.
		Preload("CounselDay.Counsel").
		Preload("Member").
		Preload("CareRecipient").
		Joins("JOIN counsel_days ON reservations.counsel_day_id = counsel_days.id").
		Joins("JOIN counsels ON counsel_days.counsel_id = counsels.id").
		Where("counsels.institution_id = ?", institutionID)

	if status := c.Query("status"); status != "" {
		query = query.Where("reservations.status = ?", status)
	}
	if from := c.Query("from"); from != "" {
		if fromDate, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("counsel_days.service_date >= ?", fromDate)
		}
	}
	if to := c.Query("to"); to != "" {
		if toDate, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("counsel_days.service_date <= ?", toDate)
		}
	}

	var total int64
	query.Session(&gorm.Session{}).Model(&models.Reservation{}).Count(&total)

	var reservations []models.Reservation
	query.Order("counsel_days.service_date desc, reservations.slot_index").
		Limit(limit).Offset(offset).
		Find(&reservations)

	return c.JSON(fiber.Map{
		"total":        total,
		"limit":        limit,
		"offset":       offset,
		"reservations": reservations,
	})
}

// GetReservationDetail returns one of the calling member's reservations.
func GetReservationDetail(c *fiber.Ctx) error {
	memberID, err := middleware.PrincipalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal"})
	}

	id, err := uuid.Parse(c.Params("reservationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reservation id"})
	}

	var reservation models.Reservation
	if err := database.DB.
		Preload("CounselDay.Counsel").
		Preload("CareRecipient").
		First(&reservation, "id = ? AND member_id = ?", id, memberID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reservation not found"})
	}

	return c.JSON(fiber.Map{
		"reservation": reservation,
		"time_range":  timeslot.Label(reservation.SlotIndex),
	})
}
