package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/mosaic-visa/internal/application"
	"github.com/gdg-garage/mosaic-visa/internal/archive"
	"github.com/gdg-garage/mosaic-visa/internal/auth"
	"github.com/gdg-garage/mosaic-visa/internal/catalog"
	"github.com/gdg-garage/mosaic-visa/internal/config"
	"github.com/gdg-garage/mosaic-visa/internal/database"
	"github.com/gdg-garage/mosaic-visa/internal/metrics"
	"github.com/gdg-garage/mosaic-visa/internal/models"
	"github.com/gdg-garage/mosaic-visa/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC)

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []models.Submission
	users []models.User
	err   error
}

func (n *recordingNotifier) NotifySubmission(user models.User, sub models.Submission) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, user)
	n.sent = append(n.sent, sub)
	return n.err
}

type testEnv struct {
	db           *gorm.DB
	store        *session.MemoryStore
	notifier     *recordingNotifier
	auth         *auth.AuthHandler
	form         *FormHandler
	admin        *AdminHandler
	registration *RegistrationHandler
	archive      *archive.Archive
	catalog      *catalog.Catalog
	metrics      *metrics.Metrics
	agency       models.User
	staff        models.StaffMember
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenMemory(uuid.NewString())
	require.NoError(t, err)

	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	agency := models.User{Email: "agence@example.com", PasswordHash: hash, Profile: models.AgencyProfile{AgencyName: "Atlas Voyages"}}
	require.NoError(t, db.Create(&agency).Error)
	staff := models.StaffMember{DiscordID: "42", Username: "staffer"}
	require.NoError(t, db.Create(&staff).Error)

	cat := catalog.Default()
	store := session.NewMemoryStore(100, time.Hour)
	n := &recordingNotifier{}
	m := metrics.New()
	arch := archive.New(db)
	authHandler := auth.NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, db, store)
	validator := application.NewValidator(cat, func() time.Time { return fixedNow })

	form := NewFormHandler(db, store, validator, arch, n, m, nil)
	form.now = func() time.Time { return fixedNow }
	admin := NewAdminHandler(db, arch, authHandler, m, nil, "https://visa.example.com/")
	admin.now = func() time.Time { return fixedNow }

	return &testEnv{
		db:           db,
		store:        store,
		notifier:     n,
		auth:         authHandler,
		form:         form,
		admin:        admin,
		registration: NewRegistrationHandler(authHandler, m, nil),
		archive:      arch,
		catalog:      cat,
		metrics:      m,
		agency:       agency,
		staff:        staff,
	}
}

func (e *testEnv) agencyCtx(sid string) context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{UserID: e.agency.ID, Role: auth.RoleAgency, SessionID: sid})
}

func (e *testEnv) staffCtx() context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{UserID: e.staff.ID, Role: auth.RoleStaff, SessionID: "staff-session"})
}

func validCommon() application.CommonForm {
	return application.CommonForm{
		Slot:            "09:20",
		Visa:            "1",
		Nationality:     "31",
		ContactAddress:  "12 rue Didouche Mourad",
		ContactCity:     "Alger",
		ContactPostcode: "16000",
		DepartureDate:   "2026-11-20",
		ReturnDate:      "2026-12-05",
		StartDate:       "2026-10-20",
		MaxDate:         "2026-11-10",
		Email:           "agence@example.com",
		Phone:           "0600000000",
		Relation:        "Self",
		Relations:       "Wife",
	}
}

func validApplicant(name string) application.ApplicantForm {
	return application.ApplicantForm{
		Name:              name,
		Surname:           "Dupont",
		Gender:            "M",
		Birthday:          "1985-03-02",
		BirthPlace:        "Oran",
		MaritalStatus:     "1",
		FatherName:        "Pierre Dupont",
		MotherName:        "Marie Dupont",
		PassportNumber:    "AB123456",
		Occupation:        "Engineer",
		PassportIssuedBy:  "Daïra d'Oran",
		PassportIssueDate: "2020-01-01",
		PassportExpiry:    "2030-01-01",
	}
}

func statusOf(err error) int {
	var se huma.StatusError
	if errors.As(err, &se) {
		return se.GetStatus()
	}
	return 0
}
