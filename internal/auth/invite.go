package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdg-garage/mosaic-visa/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidInvite  = errors.New("invite link is invalid or already used")
	ErrDuplicateEmail = errors.New("an account with this email already exists")
)

// CreateInvite mints a single-use invite on behalf of a staff member.
func (h *AuthHandler) CreateInvite(ctx context.Context, staffID uint, note string) (*models.InviteLink, error) {
	invite := models.InviteLink{
		Token:       uuid.NewString(),
		Note:        note,
		CreatedByID: staffID,
	}
	if err := h.db.WithContext(ctx).Create(&invite).Error; err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}
	return &invite, nil
}

func (h *AuthHandler) ListInvites(ctx context.Context) ([]models.InviteLink, error) {
	var invites []models.InviteLink
	if err := h.db.WithContext(ctx).Order("created_at desc, id desc").Find(&invites).Error; err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	return invites, nil
}

// CheckInvite returns the invite for token if it can still be used.
func (h *AuthHandler) CheckInvite(ctx context.Context, token string) (*models.InviteLink, error) {
	var invite models.InviteLink
	err := h.db.WithContext(ctx).Where("token = ? AND used = ?", token, false).First(&invite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidInvite
	}
	if err != nil {
		return nil, fmt.Errorf("load invite: %w", err)
	}
	return &invite, nil
}

type Registration struct {
	Email      string
	Password   string
	AgencyName string
	Phone      string
	City       string
}

// Register consumes an invite and creates the agency account it grants,
// in one transaction. Only one caller can consume a given invite: the
// loser of a race gets ErrInvalidInvite and no account.
func (h *AuthHandler) Register(ctx context.Context, token string, reg Registration) (*models.User, error) {
	hash, err := HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(reg.Email)
	var user models.User
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.InviteLink{}).
			Where("token = ? AND used = ?", token, false).
			Updates(map[string]any{"used": true, "used_at": now})
		if res.Error != nil {
			return fmt.Errorf("consume invite: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrInvalidInvite
		}

		var existing int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if existing > 0 {
			return ErrDuplicateEmail
		}

		user = models.User{
			Email:        email,
			PasswordHash: hash,
			Profile: models.AgencyProfile{
				AgencyName: reg.AgencyName,
				Phone:      reg.Phone,
				City:       reg.City,
			},
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		return tx.Model(&models.InviteLink{}).Where("token = ?", token).Update("used_by_id", user.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
