package handlers

import (
	"errors"
	"time"

	"github.com/caringlab/care_connect/database"
	"github.com/caringlab/care_connect/models"
	"github.com/caringlab/care_connect/scheduling"
	"github.com/caringlab/care_connect/timeslot"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// loadWeeklyRules fetches the counsel's template entries for one weekday.
func loadWeeklyRules(tx *gorm.DB, counsel *models.Counsel, day time.Weekday) ([]scheduling.HourRule, error) {
	var hours []models.CounselHour
	if err := tx.Where("counsel_id = ? AND day_of_week = ?", counsel.ID, int(day)).Find(&hours).Error; err != nil {
		return nil, err
	}
	rules := make([]scheduling.HourRule, 0, len(hours))
	for _, h := range hours {
		rules = append(rules, scheduling.HourRule{
			Day:   time.Weekday(h.DayOfWeek),
			Start: h.StartTime,
			End:   h.EndTime,
		})
	}
	return rules, nil
}

// materializeDay builds the first-and-only CounselDay row for a date by
// projecting that weekday's template onto an all-closed mask. The insert is
// ON CONFLICT DO NOTHING so two racing first accesses converge on one row;
// the caller re-reads after a losing insert. Existing rows are never
// rewritten, so a slot already taken can never be reopened by projection.
func materializeDay(tx *gorm.DB, counsel *models.Counsel, date time.Time) error {
	rules, err := loadWeeklyRules(tx, counsel, date.Weekday())
	if err != nil {
		return err
	}
	mask := scheduling.ProjectDay(counsel.Unit, rules, date.Weekday())
	day := models.CounselDay{
		CounselID:   counsel.ID,
		ServiceDate: date,
		Slots:       mask.String(),
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&day).Error
}

// getOrCreateDay is the read-path materializer: no row lock, many concurrent
// readers are fine because existing rows are only read here.
func getOrCreateDay(counsel *models.Counsel, date time.Time) (*models.CounselDay, error) {
	var day models.CounselDay
	err := database.DB.First(&day, "counsel_id = ? AND service_date = ?", counsel.ID, date).Error
	if err == nil {
		return &day, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := materializeDay(tx, counsel, date); err != nil {
			return err
		}
		return tx.First(&day, "counsel_id = ? AND service_date = ?", counsel.ID, date).Error
	})
	if err != nil {
		return nil, err
	}
	return &day, nil
}

// lockDayForUpdate acquires the exclusive row lock every slot mutation must
// hold, materializing the day first if it does not exist yet. NOWAIT keeps
// contended bookers from queueing behind a long transaction.
func lockDayForUpdate(tx *gorm.DB, counsel *models.Counsel, date time.Time) (*models.CounselDay, error) {
	forUpdate := clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}

	var day models.CounselDay
	err := tx.Clauses(forUpdate).First(&day, "counsel_id = ? AND service_date = ?", counsel.ID, date).Error
	if err == nil {
		return &day, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translateLockError(err)
	}

	if err := materializeDay(tx, counsel, date); err != nil {
		return nil, err
	}
	if err := tx.Clauses(forUpdate).First(&day, "counsel_id = ? AND service_date = ?", counsel.ID, date).Error; err != nil {
		return nil, translateLockError(err)
	}
	return &day, nil
}

// pgLockNotAvailable is the postgres error code raised when FOR UPDATE
// NOWAIT cannot take the row lock.
const pgLockNotAvailable = "55P03"

// translateLockError maps the lock_not_available failure produced by
// FOR UPDATE NOWAIT onto the retryable contended error.
func translateLockError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
		return scheduling.ErrDayContended
	}
	return err
}

type TimeSlotResponse struct {
	SlotIndex int    `json:"slot_index"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	State     string `json:"state"`
}

func slotStateName(s timeslot.SlotState) string {
	switch s {
	case timeslot.Open:
		return "open"
	case timeslot.Taken:
		return "taken"
	default:
		return "closed"
	}
}

// GetCounselAvailability returns the full 48-slot state for one date,
// materializing it on first access.
func GetCounselAvailability(c *fiber.Ctx) error {
	counsel, err := counselByID(c.Params("counselId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Counsel service not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if !counsel.Active {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Counsel service not found"})
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date query parameter must be YYYY-MM-DD"})
	}

	day, err := getOrCreateDay(counsel, date)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load availability"})
	}

	mask, err := timeslot.ParseDayMask(day.Slots)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Corrupt day state"})
	}

	all := make([]TimeSlotResponse, 0, timeslot.SlotsPerDay)
	open := make([]TimeSlotResponse, 0, mask.OpenCount())
	for i := 0; i < timeslot.SlotsPerDay; i++ {
		slot := TimeSlotResponse{
			SlotIndex: i,
			StartTime: timeslot.Clock(timeslot.StartOf(i)),
			EndTime:   timeslot.Clock(timeslot.EndOf(i)),
			State:     slotStateName(mask.State(i)),
		}
		all = append(all, slot)
		if mask.State(i) == timeslot.Open {
			open = append(open, slot)
		}
	}

	return c.JSON(fiber.Map{
		"counsel_id":   counsel.ID,
		"service_date": date.Format("2006-01-02"),
		"unit":         counsel.Unit,
		"open_slots":   open,
		"all_slots":    all,
	})
}
