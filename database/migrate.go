package database

import (
	"fmt"

	"wagyu_backend/internal/config"
	"wagyu_backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var gormDB *gorm.DB

// ConnectGorm opens (once) the GORM connection using the configured DSN.
func ConnectGorm() (*gorm.DB, error) {
	if gormDB != nil {
		return gormDB, nil
	}

	cfg := config.GetConfig()

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	gormDB = db
	return db, nil
}

// AutoMigrate migrates every model. uuid_generate_v4 defaults need the
// uuid-ossp extension, created first.
func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid extension: %w", err)
	}

	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.SubscriptionPlan{},
		&models.Subscription{},
		&models.PaymentTransaction{},
		&models.AffiliateApplication{},
		&models.Affiliate{},
		&models.Referral{},
		&models.Commission{},
		&models.Trade{},
		&models.ImportBatch{},
	)
}
