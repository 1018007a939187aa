package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/mosaic-visa/internal/application"
	"github.com/gdg-garage/mosaic-visa/internal/config"
	"github.com/gdg-garage/mosaic-visa/internal/database"
	"github.com/gdg-garage/mosaic-visa/internal/models"
	"github.com/gdg-garage/mosaic-visa/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuth(t *testing.T) (*AuthHandler, *gorm.DB, *session.MemoryStore) {
	t.Helper()
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)

	store := session.NewMemoryStore(100, time.Hour)
	cfg := &config.Config{JWTSecret: "test-secret", DiscordGuildID: "guild-1"}
	return NewAuthHandler(cfg, db, store), db, store
}

func createAgency(t *testing.T, db *gorm.DB, email, password string) models.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	user := models.User{Email: email, PasswordHash: hash, Profile: models.AgencyProfile{AgencyName: "Atlas Voyages"}}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func statusOf(err error) int {
	var se huma.StatusError
	if errors.As(err, &se) {
		return se.GetStatus()
	}
	return 0
}

func TestHandleLogin(t *testing.T) {
	handler, db, _ := setupAuth(t)
	user := createAgency(t, db, "agence@example.com", "s3cret-pass")

	t.Run("Valid", func(t *testing.T) {
		input := &LoginInput{}
		input.Body.Email = " Agence@Example.com "
		input.Body.Password = "s3cret-pass"

		resp, err := handler.HandleLogin(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, CookieName, resp.SetCookie.Name)
		assert.True(t, resp.SetCookie.HttpOnly)
		assert.Equal(t, user.ID, resp.Body.UserID)

		id, _, err := handler.ParseToken(resp.SetCookie.Value)
		require.NoError(t, err)
		assert.Equal(t, user.ID, id.UserID)
		assert.Equal(t, RoleAgency, id.Role)
		assert.NotEmpty(t, id.SessionID)
	})

	for name, creds := range map[string][2]string{
		"WrongPassword": {"agence@example.com", "nope"},
		"UnknownEmail":  {"ghost@example.com", "s3cret-pass"},
	} {
		t.Run(name, func(t *testing.T) {
			input := &LoginInput{}
			input.Body.Email = creds[0]
			input.Body.Password = creds[1]

			_, err := handler.HandleLogin(context.Background(), input)
			require.Error(t, err)
			assert.Equal(t, http.StatusUnauthorized, statusOf(err))
			assert.Contains(t, err.Error(), "invalid email or password")
		})
	}
}

func TestHandleMe(t *testing.T) {
	handler, db, _ := setupAuth(t)
	user := createAgency(t, db, "test@example.com", "pw")
	staff := models.StaffMember{DiscordID: "123456", Username: "testuser", Email: "staff@example.com"}
	require.NoError(t, db.Create(&staff).Error)

	t.Run("Agency", func(t *testing.T) {
		ctx := WithIdentity(context.Background(), Identity{UserID: user.ID, Role: RoleAgency, SessionID: "s"})
		resp, err := handler.HandleMe(ctx, nil)
		require.NoError(t, err)
		assert.True(t, resp.Body.Authenticated)
		assert.Equal(t, user.Email, resp.Body.Email)
		assert.Equal(t, "Atlas Voyages", resp.Body.Name)
	})

	t.Run("Staff", func(t *testing.T) {
		ctx := WithIdentity(context.Background(), Identity{UserID: staff.ID, Role: RoleStaff, SessionID: "s"})
		resp, err := handler.HandleMe(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, RoleStaff, resp.Body.Role)
		assert.Equal(t, staff.Username, resp.Body.Name)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		resp, err := handler.HandleMe(context.Background(), nil)
		require.NoError(t, err)
		assert.False(t, resp.Body.Authenticated)
	})
}

func TestHandleLogout_ClearsPendingState(t *testing.T) {
	handler, _, store := setupAuth(t)
	ctx := WithIdentity(context.Background(), Identity{UserID: 1, Role: RoleAgency, SessionID: "sid-1"})
	require.NoError(t, store.Put(ctx, "sid-1", application.Submission{}))

	resp, err := handler.HandleLogout(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, CookieName, resp.SetCookie.Name)
	assert.Negative(t, resp.SetCookie.MaxAge)

	_, err = store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	handler, db, _ := setupAuth(t)

	invite, err := handler.CreateInvite(ctx, 7, "Atlas")
	require.NoError(t, err)
	assert.Len(t, invite.Token, 36)

	_, err = handler.CheckInvite(ctx, invite.Token)
	require.NoError(t, err)

	reg := Registration{Email: "New@Example.com", Password: "pw-123456", AgencyName: "Atlas Voyages", City: "Alger"}
	user, err := handler.Register(ctx, invite.Token, reg)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)

	var stored models.InviteLink
	require.NoError(t, db.First(&stored, invite.ID).Error)
	assert.True(t, stored.Used)
	require.NotNil(t, stored.UsedAt)
	require.NotNil(t, stored.UsedByID)
	assert.Equal(t, user.ID, *stored.UsedByID)

	logged, err := handler.Authenticate(ctx, "new@example.com", "pw-123456")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	t.Run("TokenIsSingleUse", func(t *testing.T) {
		_, err := handler.CheckInvite(ctx, invite.Token)
		assert.ErrorIs(t, err, ErrInvalidInvite)

		reg.Email = "second@example.com"
		_, err = handler.Register(ctx, invite.Token, reg)
		assert.ErrorIs(t, err, ErrInvalidInvite)

		var count int64
		db.Model(&models.User{}).Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		_, err := handler.Register(ctx, "no-such-token", reg)
		assert.ErrorIs(t, err, ErrInvalidInvite)
	})

	t.Run("DuplicateEmailKeepsInvite", func(t *testing.T) {
		other, err := handler.CreateInvite(ctx, 7, "")
		require.NoError(t, err)

		reg.Email = "NEW@example.com"
		_, err = handler.Register(ctx, other.Token, reg)
		assert.ErrorIs(t, err, ErrDuplicateEmail)

		_, err = handler.CheckInvite(ctx, other.Token)
		assert.NoError(t, err, "a failed registration must roll back the invite")
	})

	invites, err := handler.ListInvites(ctx)
	require.NoError(t, err)
	assert.Len(t, invites, 2)
}

func fakeDiscord(t *testing.T, guilds string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/users/@me/guilds", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(guilds))
	})
	mux.HandleFunc("/users/@me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"42","username":"staffer","email":"staff@example.com","avatar":"abc"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func discordCallback(handler *AuthHandler, state, cookieState string) *httptest.ResponseRecorder {
	q := url.Values{"code": {"abc"}, "state": {state}}
	req := httptest.NewRequest(http.MethodGet, "/auth/discord/callback?"+q.Encode(), nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: cookieState})
	rr := httptest.NewRecorder()
	handler.HandleDiscordCallback(rr, req)
	return rr
}

func TestHandleDiscordCallback(t *testing.T) {
	handler, db, _ := setupAuth(t)

	t.Run("GuildMember", func(t *testing.T) {
		srv := fakeDiscord(t, `[{"id":"other"},{"id":"guild-1"}]`)
		handler.oauthConfig.Endpoint.TokenURL = srv.URL + "/token"
		handler.discordAPI = srv.URL

		rr := discordCallback(handler, "xyz", "xyz")
		require.Equal(t, http.StatusSeeOther, rr.Code, rr.Body.String())
		assert.Equal(t, staffLanding, rr.Header().Get("Location"))

		c := authCookie(rr)
		require.NotNil(t, c)
		id, _, err := handler.ParseToken(c.Value)
		require.NoError(t, err)
		assert.Equal(t, RoleStaff, id.Role)

		var staff models.StaffMember
		require.NoError(t, db.Where("discord_id = ?", "42").First(&staff).Error)
		assert.Equal(t, staff.ID, id.UserID)
		assert.Equal(t, "staffer", staff.Username)

		// A second login updates the same row.
		rr = discordCallback(handler, "xyz", "xyz")
		require.Equal(t, http.StatusSeeOther, rr.Code)
		var count int64
		db.Model(&models.StaffMember{}).Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("NotInGuild", func(t *testing.T) {
		srv := fakeDiscord(t, `[{"id":"other"}]`)
		handler.oauthConfig.Endpoint.TokenURL = srv.URL + "/token"
		handler.discordAPI = srv.URL

		rr := discordCallback(handler, "xyz", "xyz")
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Nil(t, authCookie(rr))
	})

	t.Run("StateMismatch", func(t *testing.T) {
		rr := discordCallback(handler, "xyz", "forged")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleDiscordLogin(t *testing.T) {
	handler := NewAuthHandler(&config.Config{JWTSecret: "s", DiscordClientID: "client"}, nil, nil)

	rr := httptest.NewRecorder()
	handler.HandleDiscordLogin(rr, httptest.NewRequest(http.MethodGet, "/auth/discord/login", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)

	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	assert.NotEmpty(t, state)
	assert.Equal(t, "client", loc.Query().Get("client_id"))

	var stateCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == stateCookieName {
			stateCookie = c
		}
	}
	require.NotNil(t, stateCookie)
	assert.Equal(t, state, stateCookie.Value)
}
