package models

import (
	"gorm.io/gorm"
)

// QR code states. A code must be active before a crate can claim it; creation
// flips it to used.
const (
	QRStatusActive  = "active"
	QRStatusUsed    = "used"
	QRStatusDamaged = "damaged"
	QRStatusLost    = "lost"
)

const (
	QREntityCrate = "crate"
	QREntityBatch = "batch"
)

type QRCode struct {
	gorm.Model
	CodeValue  string `json:"code_value" gorm:"unique;not null;index"`
	Status     string `json:"status" gorm:"default:active"`
	EntityType string `json:"entity_type" gorm:"default:crate"`
}

func IsValidQRStatus(status string) bool {
	switch status {
	case QRStatusActive, QRStatusUsed, QRStatusDamaged, QRStatusLost:
		return true
	}
	return false
}
