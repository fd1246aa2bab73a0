package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kadraly/kadraly-backend/internal/models"
)

func New(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.EventMember{},
		&models.Photo{},
		&models.TimelineEntry{},
		&models.CreditPackage{},
		&models.UserCreditPurchase{},
	)
}

// SeedPackages inserts the default credit packages if they are missing.
func SeedPackages(db *gorm.DB) error {
	packages := []models.CreditPackage{
		{Name: "100 Credits", Description: "100 photo uploads, unlimited events, 3 months hosting", Credits: 100, EventLimit: 999, PhotoLimit: 100, Price: 19.99, IsActive: true},
		{Name: "300 Credits", Description: "300 photo uploads, unlimited events, 3 months hosting", Credits: 300, EventLimit: 999, PhotoLimit: 300, Price: 39.99, IsActive: true},
		{Name: "500 Credits", Description: "500 photo uploads, unlimited events, 3 months hosting", Credits: 500, EventLimit: 999, PhotoLimit: 500, Price: 59.99, IsActive: true},
		{Name: "1500 Credits", Description: "1500 photo uploads, unlimited events, 3 months hosting, priority support", Credits: 1500, EventLimit: 999, PhotoLimit: 1500, Price: 149.99, IsActive: true},
	}

	for _, pkg := range packages {
		var count int64
		if err := db.Model(&models.CreditPackage{}).Where("name = ?", pkg.Name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&pkg).Error; err != nil {
				return fmt.Errorf("failed to seed credit package %q: %w", pkg.Name, err)
			}
		}
	}
	return nil
}
