package database

import (
	"testing"

	"github.com/gdg-garage/mosaic-visa/internal/models"
)

func TestOpenMemory(t *testing.T) {
	db, err := OpenMemory(t.Name())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	user := models.User{Email: "agence@example.com", Profile: models.AgencyProfile{AgencyName: "Atlas Voyages"}}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	var loaded models.User
	if err := db.Preload("Profile").First(&loaded, user.ID).Error; err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if loaded.Profile.AgencyName != "Atlas Voyages" {
		t.Errorf("expected profile to be saved with the user, got %+v", loaded.Profile)
	}

	duplicate := models.User{Email: "agence@example.com"}
	if err := db.Create(&duplicate).Error; err == nil {
		t.Errorf("expected unique email constraint")
	}

	other, err := OpenMemory(t.Name() + "_other")
	if err != nil {
		t.Fatalf("failed to open second database: %v", err)
	}
	var count int64
	other.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected databases to be isolated, got %d users", count)
	}
}
