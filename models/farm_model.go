package models

import (
	"gorm.io/gorm"
)

type Farm struct {
	gorm.Model
	Name           string      `json:"name" gorm:"not null"`
	Location       string      `json:"location"`
	GPSCoordinates GPSLocation `json:"gps_coordinates" gorm:"type:text"`
	Owner          string      `json:"owner"`
	ContactInfo    JSONMap     `json:"contact_info" gorm:"type:text"`
}
