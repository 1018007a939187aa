package models

import (
	"gorm.io/gorm"
)

// StaffMember is a back-office user signed in through Discord.
type StaffMember struct {
	gorm.Model
	DiscordID string `gorm:"uniqueIndex" json:"discord_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar"`
}
