package models

import (
	"github.com/gdg-garage/mosaic-visa/internal/export"
	"gorm.io/gorm"
)

// Submission is the archived copy of one generated export. It is created
// once per download and only ever changed by slot redaction.
type Submission struct {
	gorm.Model
	UserID   uint            `gorm:"index" json:"user_id"`
	User     User            `json:"-"`
	Filename string          `json:"filename"`
	Document export.Document `gorm:"serializer:json" json:"document"`
}
