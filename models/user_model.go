package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles a user account can carry. Role gates the admin endpoints and the
// batch lifecycle actions; see middleware.RequireRole.
var ValidRoles = []string{"admin", "manager", "supervisor", "harvester", "packhouse"}

type User struct {
	gorm.Model
	Username    string     `json:"username" gorm:"unique;not null"`
	Email       string     `json:"email" gorm:"unique;not null"`
	Password    string     `json:"-" gorm:"not null"`
	Pin         string     `json:"-"`
	PinSetAt    *time.Time `json:"pin_set_at"`
	Role        string     `json:"role" gorm:"not null"`
	FullName    string     `json:"full_name"`
	Active      bool       `json:"active" gorm:"default:true"`
	PhoneNumber string     `json:"phone_number"`
	LastLogin   *time.Time `json:"last_login"`

	ResetCode          string     `json:"-"`
	ResetCodeExpiresAt *time.Time `json:"-"`
}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// DisplayName is what list screens show next to a batch or crate.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
