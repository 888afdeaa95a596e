package models

import (
	"gorm.io/gorm"
)

type Variety struct {
	gorm.Model
	Name        string `json:"name" gorm:"unique;not null"`
	Description string `json:"description"`
}
