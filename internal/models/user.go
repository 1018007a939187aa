package models

import (
	"gorm.io/gorm"
)

// User is an agency account. Accounts are only created from invite links.
type User struct {
	gorm.Model
	Email        string        `gorm:"uniqueIndex" json:"email"`
	PasswordHash string        `json:"-"`
	Profile      AgencyProfile `json:"profile"`
}

type AgencyProfile struct {
	gorm.Model
	UserID     uint   `gorm:"uniqueIndex" json:"user_id"`
	AgencyName string `json:"agency_name"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
}
