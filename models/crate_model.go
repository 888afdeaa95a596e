package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultCrateWeight is used by the minimal creation path when the harvester
// does not weigh the crate in the field.
const DefaultCrateWeight = 1.0

var ValidQualityGrades = []string{"A", "B", "C"}

type Crate struct {
	gorm.Model
	QRCode       string      `json:"qr_code" gorm:"unique;not null"`
	HarvestDate  time.Time   `json:"harvest_date" gorm:"index;not null"`
	GPSLocation  GPSLocation `json:"gps_location" gorm:"type:text"`
	PhotoURL     string      `json:"photo_url"`
	SupervisorID uint        `json:"supervisor_id" gorm:"not null"`
	Weight       float64     `json:"weight" gorm:"not null"`
	Notes        string      `json:"notes"`
	VarietyID    uint        `json:"variety_id" gorm:"not null"`
	FarmID       *uint       `json:"farm_id"`
	BatchID      *uint       `json:"batch_id" gorm:"index"`
	QualityGrade string      `json:"quality_grade"`

	Supervisor *User    `json:"-" gorm:"foreignKey:SupervisorID"`
	Variety    *Variety `json:"-" gorm:"foreignKey:VarietyID"`
	Batch      *Batch   `json:"-" gorm:"foreignKey:BatchID"`
}

func IsValidQualityGrade(grade string) bool {
	for _, g := range ValidQualityGrades {
		if g == grade {
			return true
		}
	}
	return false
}
