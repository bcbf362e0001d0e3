package models

import (
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the full schema. Shared by main.go and the
// test helpers so both always migrate the same entity set.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Task{},
		&TaskCompletion{},
		&Referral{},
		&Reward{},
		&Broadcast{},
	)
}
