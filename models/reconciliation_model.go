package models

import (
	"time"

	"gorm.io/gorm"
)

// CrateReconciliation records a packhouse-side scan and weighing of a crate
// that arrived with a batch. Weight differential is reconciled weight minus
// the weight recorded at harvest.
type CrateReconciliation struct {
	gorm.Model
	BatchID            uint      `json:"batch_id" gorm:"index;not null"`
	CrateID            uint      `json:"crate_id" gorm:"index;not null"`
	QRCode             string    `json:"qr_code" gorm:"index;not null"`
	ReconciledByID     uint      `json:"reconciled_by_id" gorm:"not null"`
	ReconciledAt       time.Time `json:"reconciled_at"`
	Weight             float64   `json:"weight"`
	OriginalWeight     float64   `json:"original_weight"`
	WeightDifferential float64   `json:"weight_differential"`
	PhotoURL           string    `json:"photo_url"`
	IsReconciled       bool      `json:"is_reconciled" gorm:"default:true"`
}

// ReconciliationLog is the scan audit trail: every QR scanned during
// reconciliation lands here, matched or not.
type ReconciliationLog struct {
	gorm.Model
	BatchID     uint        `json:"batch_id" gorm:"index;not null"`
	ScannedQR   string      `json:"scanned_qr" gorm:"index"`
	CrateID     *uint       `json:"crate_id" gorm:"index"`
	Status      string      `json:"status" gorm:"index;not null"`
	ScannedByID uint        `json:"scanned_by_id" gorm:"not null"`
	Location    GPSLocation `json:"location" gorm:"type:text"`
	DeviceInfo  JSONMap     `json:"device_info" gorm:"type:text"`
	Notes       string      `json:"notes"`
}
