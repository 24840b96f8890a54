package jobs

import (
	"os"
	"testing"
	"time"

	"github.com/caringlab/care_connect/database"
	"github.com/caringlab/care_connect/models"
	"github.com/caringlab/care_connect/scheduling"
	"github.com/caringlab/care_connect/timeslot"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func testDB(t *testing.T) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		t.Fatalf("connecting test database: %v", err)
	}
	database.DB = db
	database.Migrate()

	db.Exec("TRUNCATE reservations, counsel_days, counsel_hours, counsels, care_recipients, members, institution_admins, institutions CASCADE")
}

// seedPastDay creates a counsel with a day two days in the past holding the
// given slot mask, plus a member and care recipient for reservations.
func seedPastDay(t *testing.T, slots string) (*models.CounselDay, *models.Member, *models.CareRecipient) {
	t.Helper()

	institution := models.Institution{Name: "Test Institution"}
	if err := database.DB.Create(&institution).Error; err != nil {
		t.Fatalf("creating institution: %v", err)
	}
	counsel := models.Counsel{
		InstitutionID: institution.ID,
		Title:         "Admission counsel",
		MaxLeadDays:   30,
		Unit:          timeslot.UnitHalf,
		Active:        true,
	}
	if err := database.DB.Create(&counsel).Error; err != nil {
		t.Fatalf("creating counsel: %v", err)
	}

	day := models.CounselDay{
		CounselID:   counsel.ID,
		ServiceDate: time.Now().AddDate(0, 0, -2),
		Slots:       slots,
	}
	if err := database.DB.Create(&day).Error; err != nil {
		t.Fatalf("creating counsel day: %v", err)
	}

	member := models.Member{FullName: "Test Member", Email: "member@test.example"}
	if err := database.DB.Create(&member).Error; err != nil {
		t.Fatalf("creating member: %v", err)
	}
	recipient := models.CareRecipient{MemberID: member.ID, FullName: "Test Recipient"}
	if err := database.DB.Create(&recipient).Error; err != nil {
		t.Fatalf("creating care recipient: %v", err)
	}

	return &day, &member, &recipient
}

func TestCancelStalePendingReservations(t *testing.T) {
	testDB(t)

	mask := timeslot.NewDayMask()
	mask[18] = timeslot.Taken
	mask[19] = timeslot.Taken
	day, member, recipient := seedPastDay(t, mask.String())

	pending := models.Reservation{
		CounselDayID:    day.ID,
		MemberID:        member.ID,
		CareRecipientID: recipient.ID,
		SlotIndex:       18,
		Status:          scheduling.StatusPending,
	}
	if err := database.DB.Create(&pending).Error; err != nil {
		t.Fatalf("creating pending reservation: %v", err)
	}

	// A reservation the institution already confirmed must survive the
	// sweep even though its service date has passed.
	confirmed := models.Reservation{
		CounselDayID:    day.ID,
		MemberID:        member.ID,
		CareRecipientID: recipient.ID,
		SlotIndex:       19,
		Status:          scheduling.StatusConfirmed,
	}
	if err := database.DB.Create(&confirmed).Error; err != nil {
		t.Fatalf("creating confirmed reservation: %v", err)
	}

	CancelStalePendingReservations()

	var sweptPending, sweptConfirmed models.Reservation
	if err := database.DB.First(&sweptPending, "id = ?", pending.ID).Error; err != nil {
		t.Fatalf("reloading pending reservation: %v", err)
	}
	if sweptPending.Status != scheduling.StatusCanceled {
		t.Fatalf("stale pending reservation status = %q, want canceled", sweptPending.Status)
	}
	if err := database.DB.First(&sweptConfirmed, "id = ?", confirmed.ID).Error; err != nil {
		t.Fatalf("reloading confirmed reservation: %v", err)
	}
	if sweptConfirmed.Status != scheduling.StatusConfirmed {
		t.Fatalf("confirmed reservation status = %q, sweep must not touch it", sweptConfirmed.Status)
	}

	var sweptDay models.CounselDay
	if err := database.DB.First(&sweptDay, "id = ?", day.ID).Error; err != nil {
		t.Fatalf("reloading day: %v", err)
	}
	sweptMask, err := timeslot.ParseDayMask(sweptDay.Slots)
	if err != nil {
		t.Fatalf("parsing day mask: %v", err)
	}
	if sweptMask.State(18) != timeslot.Open {
		t.Fatal("canceled reservation's slot should be released")
	}
	if sweptMask.State(19) != timeslot.Taken {
		t.Fatal("confirmed reservation's slot must stay taken")
	}

	// A second sweep finds nothing pending and changes nothing.
	CancelStalePendingReservations()
	if err := database.DB.First(&sweptDay, "id = ?", day.ID).Error; err != nil {
		t.Fatalf("reloading day after second sweep: %v", err)
	}
	if sweptDay.Slots != sweptMask.String() {
		t.Fatal("second sweep must be a no-op")
	}
}

// TestSweepReservation_SkipsConcurrentlyAdvanced hands the sweep a snapshot
// taken while the reservation was pending, then confirms the row before the
// sweep transaction runs, mirroring an institution confirming mid-sweep. The
// sweep re-reads status under the row lock and must leave it alone.
func TestSweepReservation_SkipsConcurrentlyAdvanced(t *testing.T) {
	testDB(t)

	mask := timeslot.NewDayMask()
	mask[18] = timeslot.Taken
	day, member, recipient := seedPastDay(t, mask.String())

	reservation := models.Reservation{
		CounselDayID:    day.ID,
		MemberID:        member.ID,
		CareRecipientID: recipient.ID,
		SlotIndex:       18,
		Status:          scheduling.StatusPending,
	}
	if err := database.DB.Create(&reservation).Error; err != nil {
		t.Fatalf("creating reservation: %v", err)
	}

	var snapshot models.Reservation
	if err := database.DB.Preload("CounselDay.Counsel").
		First(&snapshot, "id = ?", reservation.ID).Error; err != nil {
		t.Fatalf("loading snapshot: %v", err)
	}

	// Advance the row the way a racing confirm does, after the snapshot but
	// before the sweep transaction locks it.
	if err := database.DB.Model(&models.Reservation{}).
		Where("id = ?", reservation.ID).
		Update("status", scheduling.StatusConfirmed).Error; err != nil {
		t.Fatalf("advancing reservation: %v", err)
	}

	swept, err := sweepReservation(snapshot)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if swept {
		t.Fatal("sweep must skip a reservation advanced after the snapshot")
	}

	var after models.Reservation
	if err := database.DB.First(&after, "id = ?", reservation.ID).Error; err != nil {
		t.Fatalf("reloading reservation: %v", err)
	}
	if after.Status != scheduling.StatusConfirmed {
		t.Fatalf("status = %q, sweep must never cancel a confirmed reservation", after.Status)
	}

	var afterDay models.CounselDay
	if err := database.DB.First(&afterDay, "id = ?", day.ID).Error; err != nil {
		t.Fatalf("reloading day: %v", err)
	}
	afterMask, err := timeslot.ParseDayMask(afterDay.Slots)
	if err != nil {
		t.Fatalf("parsing day mask: %v", err)
	}
	if afterMask.State(18) != timeslot.Taken {
		t.Fatal("confirmed reservation's slot must stay taken")
	}
}
