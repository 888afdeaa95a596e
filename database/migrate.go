package database

import (
	"asikh-oms/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Farm{},
		&models.Packhouse{},
		&models.Variety{},
		&models.QRCode{},
		&models.Batch{},
		&models.Crate{},
		&models.CrateReconciliation{},
		&models.ReconciliationLog{},
	)
}
