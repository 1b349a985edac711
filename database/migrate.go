// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"codebid/models"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations and seeds the records the
// auction cannot run without.
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.Team{},
		&models.Problem{},
		&models.Event{},
		&models.Bid{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	if err := seedBaseRecords(db); err != nil {
		log.Fatalf("❌ Failed to seed base records: %v", err)
	}

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates secondary indexes beyond what AutoMigrate derives
// from struct tags.
func createIndexes() {
	db := GetDB()

	db.Exec("CREATE INDEX IF NOT EXISTS idx_teams_coins ON teams(coins DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_events_created ON events(created_at DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_bids_event_amount ON bids(event_id, amount DESC, created_at ASC)")
}

// seedBaseRecords guarantees the admin team and exactly one current event
// exist. The event row is the single record every transition and bid mutates;
// it is created once here and only ever updated afterwards.
func seedBaseRecords(db *gorm.DB) error {
	var adminCount int64
	if err := db.Model(&models.Team{}).Where("is_admin = ?", true).Count(&adminCount).Error; err != nil {
		return err
	}
	if adminCount == 0 {
		admin := models.Team{
			Name:     "admin",
			FullName: "admin",
			Coins:    10000,
			IsAdmin:  true,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		log.Println("✅ Seeded admin team")
	}

	var eventCount int64
	if err := db.Model(&models.Event{}).Count(&eventCount).Error; err != nil {
		return err
	}
	if eventCount == 0 {
		event := models.Event{State: models.PhaseWaiting}
		if err := db.Create(&event).Error; err != nil {
			return err
		}
		log.Println("✅ Seeded initial event (WAITING)")
	}

	return nil
}
