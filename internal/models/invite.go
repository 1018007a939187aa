package models

import (
	"time"

	"gorm.io/gorm"
)

// InviteLink authorizes the creation of exactly one agency account.
type InviteLink struct {
	gorm.Model
	Token       string     `gorm:"uniqueIndex" json:"token"`
	Note        string     `json:"note"`
	CreatedByID uint       `json:"created_by_id"`
	Used        bool       `json:"used"`
	UsedAt      *time.Time `json:"used_at"`
	UsedByID    *uint      `json:"used_by_id"`
}
