package database

import (
	"fmt"
	"log"
	"time"

	config "github.com/caringlab/care_connect/configs"
	"github.com/caringlab/care_connect/models"
	"github.com/caringlab/care_connect/timeslot"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
		TranslateError:                           true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.Institution{},
		&models.InstitutionAdmin{},
		&models.Member{},
		&models.CareRecipient{},
		&models.Counsel{},
		&models.CounselHour{},
		&models.CounselDay{},
		&models.Reservation{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

// SeedDemoData creates a demo institution with an admin account, a member
// with one care recipient, and a weekday counsel service so a fresh
// environment is bookable out of the box.
func SeedDemoData() {
	adminEmail := config.Config("SEED_ADMIN_EMAIL")
	if adminEmail == "" {
		log.Println("SEED_ADMIN_EMAIL not set, skipping demo seed.")
		return
	}

	var count int64
	if err := DB.Model(&models.InstitutionAdmin{}).Where("email = ?", adminEmail).Count(&count).Error; err != nil {
		log.Fatalf("🔥 Failed to check for seeded admin: %v", err)
	}
	if count > 0 {
		log.Println("Demo data already seeded.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(config.Config("SEED_ADMIN_PASSWORD")), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash seed admin password: %v", err)
	}

	err = DB.Transaction(func(tx *gorm.DB) error {
		institution := models.Institution{Name: "Evergreen Care Center"}
		if err := tx.Create(&institution).Error; err != nil {
			return err
		}

		admin := models.InstitutionAdmin{
			InstitutionID: institution.ID,
			FullName:      config.ConfigOr("SEED_ADMIN_FULL_NAME", "Evergreen Admin"),
			Email:         adminEmail,
			Password:      string(hashedPassword),
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		member := models.Member{
			FullName: "Demo Member",
			Email:    "member@example.com",
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		birth := time.Date(1948, time.March, 2, 0, 0, 0, 0, time.UTC)
		recipient := models.CareRecipient{
			MemberID:  member.ID,
			FullName:  "Demo Recipient",
			BirthDate: &birth,
		}
		if err := tx.Create(&recipient).Error; err != nil {
			return err
		}

		counsel := models.Counsel{
			InstitutionID: institution.ID,
			Title:         "Admission counsel",
			MinLeadDays:   1,
			MaxLeadDays:   14,
			Unit:          timeslot.UnitHalf,
		}
		if err := tx.Create(&counsel).Error; err != nil {
			return err
		}

		for day := time.Monday; day <= time.Friday; day++ {
			hour := models.CounselHour{
				CounselID: counsel.ID,
				DayOfWeek: int(day),
				StartTime: "09:00",
				EndTime:   "17:30",
			}
			if err := tx.Create(&hour).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		log.Fatalf("🔥 Failed to seed demo data: %v", err)
	}

	log.Println("✅ Demo data seeded successfully")
}
