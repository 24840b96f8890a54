package jobs

import (
	"log"
	"time"

	"github.com/caringlab/care_connect/database"
	"github.com/caringlab/care_connect/models"
	"github.com/caringlab/care_connect/scheduling"
	"github.com/caringlab/care_connect/timeslot"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CancelStalePendingReservations sweeps reservations that were never
// confirmed before their service date passed, canceling each and releasing
// its slot under the same day lock the booking path uses.
func CancelStalePendingReservations() {
	log.Println("Running job: CancelStalePendingReservations...")

	today := time.Now().Format("2006-01-02")

	var stale []models.Reservation
	err := database.DB.
		Preload("CounselDay.Counsel").
		Joins("JOIN counsel_days ON reservations.counsel_day_id = counsel_days.id").
		Where("reservations.status = ? AND counsel_days.service_date < ?", scheduling.StatusPending, today).
		Find(&stale).Error
	if err != nil {
		log.Printf("Error finding stale pending reservations: %v", err)
		return
	}

	if len(stale) == 0 {
		log.Println("No stale pending reservations found.")
		return
	}

	canceled := 0
	for _, snapshot := range stale {
		swept, err := sweepReservation(snapshot)
		if err != nil {
			log.Printf("Error canceling stale reservation %s: %v", snapshot.ID, err)
			continue
		}
		if swept {
			canceled++
		}
	}

	log.Printf("Canceled %d stale pending reservation(s).", canceled)
}

// sweepReservation cancels one stale reservation and releases its slot.
// The snapshot from the sweep query may be outdated by a concurrent confirm
// or cancel, so the row is re-read under its lock first and anything no
// longer pending is left alone. Lock order matches the cancel path,
// reservation first and then the day. Reports whether a cancel happened.
func sweepReservation(snapshot models.Reservation) (bool, error) {
	unit := snapshot.CounselDay.Counsel.Unit

	swept := false
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&reservation, "id = ?", snapshot.ID).Error; err != nil {
			return err
		}
		if reservation.Status != scheduling.StatusPending {
			return nil
		}

		var day models.CounselDay
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&day, "id = ?", reservation.CounselDayID).Error; err != nil {
			return err
		}

		mask, err := timeslot.ParseDayMask(day.Slots)
		if err != nil {
			return err
		}
		if err := scheduling.Release(&mask, reservation.SlotIndex, unit); err != nil {
			return err
		}

		day.Slots = mask.String()
		if err := tx.Save(&day).Error; err != nil {
			return err
		}

		reservation.Status = scheduling.StatusCanceled
		if err := tx.Save(&reservation).Error; err != nil {
			return err
		}
		swept = true
		return nil
	})
	return swept, err
}
