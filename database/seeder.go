package database

import (
	"log"

	"asikh-oms/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func RunSeeders(db *gorm.DB) {
	SeedAdminUser(db)
	SeedVarieties(db)
}

// SeedAdminUser creates the bootstrap admin account when no admin exists yet.
func SeedAdminUser(db *gorm.DB) {
	var existing models.User
	err := db.Where("username = ?", "admin").First(&existing).Error
	if err == nil {
		return
	}
	if err != gorm.ErrRecordNotFound {
		log.Fatalf("Unexpected DB error: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("adminpass"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin := models.User{
		Username: "admin",
		Email:    "admin@example.com",
		Password: string(hashed),
		Role:     "admin",
		FullName: "Admin User",
		Active:   true,
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Println("Admin user created")
}

func SeedVarieties(db *gorm.DB) {
	varieties := []models.Variety{
		{Name: "Alphonso", Description: "Premium export variety"},
		{Name: "Kesar", Description: "Saffron-hued pulp variety"},
		{Name: "Dasheri", Description: "North Indian table variety"},
	}

	for _, v := range varieties {
		var existing models.Variety
		if err := db.Where("name = ?", v.Name).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				db.Create(&v)
			}
		}
	}
}
