package db

import (
	"gorm.io/gorm"

	types "github.com/rematerial/rematerial-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}
