package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/mosaic-visa/internal/config"
	"github.com/gdg-garage/mosaic-visa/internal/models"
	"github.com/gdg-garage/mosaic-visa/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const (
	CookieName    = "auth_token"
	TokenDuration = 24 * time.Hour
)

type Role string

const (
	RoleAgency Role = "agency"
	RoleStaff  Role = "staff"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid auth token")
)

// Identity is the authenticated caller. UserID points at a User for
// agencies and at a StaffMember for staff. SessionID keys the pending
// form state and survives token renewal.
type Identity struct {
	UserID    uint
	Role      Role
	SessionID string
}

func (i Identity) IsStaff() bool {
	return i.Role == RoleStaff
}

type Claims struct {
	UserID uint `json:"user_id"`
	Role   Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthHandler struct {
	oauthConfig *oauth2.Config
	discordAPI  string
	db          *gorm.DB
	cfg         *config.Config
	sessions    session.Store
	log         *zap.Logger
}

// NewAuthHandler wires authentication. sessions may be nil, in which case
// logout only drops the cookie.
func NewAuthHandler(cfg *config.Config, db *gorm.DB, sessions session.Store) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURL,
			Scopes:       []string{"identify", "email", "guilds"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  DiscordAuthorizeEndpoint,
				TokenURL: DiscordTokenEndpoint,
			},
		},
		discordAPI: DiscordAPI,
		db:         db,
		cfg:        cfg,
		sessions:   sessions,
		log:        zap.NewNop(),
	}
}

func (h *AuthHandler) SetLogger(log *zap.Logger) {
	h.log = log
}

func (h *AuthHandler) GenerateToken(id Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: id.UserID,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.SessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenDuration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// ParseToken verifies a token and returns its identity and expiry.
func (h *AuthHandler) ParseToken(tokenString string) (Identity, time.Time, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(h.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Identity{}, time.Time{}, ErrInvalidToken
	}
	if claims.UserID == 0 || claims.ID == "" || (claims.Role != RoleAgency && claims.Role != RoleStaff) {
		return Identity{}, time.Time{}, ErrInvalidToken
	}
	return Identity{UserID: claims.UserID, Role: claims.Role, SessionID: claims.ID}, claims.ExpiresAt.Time, nil
}

// Cookie wraps a token into the auth cookie.
func (h *AuthHandler) Cookie(token string) http.Cookie {
	return http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
}

func (h *AuthHandler) ClearCookie() http.Cookie {
	return http.Cookie{
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
}

// NewSession starts a fresh session for a user and returns its cookie.
func (h *AuthHandler) NewSession(userID uint, role Role) (Identity, http.Cookie, error) {
	id := Identity{UserID: userID, Role: role, SessionID: uuid.NewString()}
	token, err := h.GenerateToken(id)
	if err != nil {
		return Identity{}, http.Cookie{}, fmt.Errorf("sign auth token: %w", err)
	}
	return id, h.Cookie(token), nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticate checks agency credentials. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (h *AuthHandler) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := h.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type LoginInput struct {
	Body struct {
		Email    string `json:"email" doc:"Agency account email"`
		Password string `json:"password" doc:"Account password"`
	}
}

type IdentityBody struct {
	Authenticated bool   `json:"authenticated"`
	UserID        uint   `json:"user_id,omitempty"`
	Role          Role   `json:"role,omitempty"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
}

type SessionOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      IdentityBody
}

type MeOutput struct {
	Body IdentityBody
}

func (h *AuthHandler) HandleLogin(ctx context.Context, input *LoginInput) (*SessionOutput, error) {
	user, err := h.Authenticate(ctx, input.Body.Email, input.Body.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		return nil, huma.Error401Unauthorized(ErrInvalidCredentials.Error())
	}
	if err != nil {
		h.log.Error("password login failed", zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to log in")
	}

	_, cookie, err := h.NewSession(user.ID, RoleAgency)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	return &SessionOutput{
		SetCookie: cookie,
		Body:      IdentityBody{Authenticated: true, UserID: user.ID, Role: RoleAgency, Email: user.Email},
	}, nil
}

// HandleMe reports who the caller is. Anonymous callers get
// authenticated=false rather than an error.
func (h *AuthHandler) HandleMe(ctx context.Context, _ *struct{}) (*MeOutput, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return &MeOutput{}, nil
	}

	body := IdentityBody{Authenticated: true, UserID: id.UserID, Role: id.Role}
	if id.IsStaff() {
		var staff models.StaffMember
		if err := h.db.WithContext(ctx).First(&staff, id.UserID).Error; err != nil {
			return nil, huma.Error404NotFound("User not found")
		}
		body.Email = staff.Email
		body.Name = staff.Username
	} else {
		var user models.User
		if err := h.db.WithContext(ctx).Preload("Profile").First(&user, id.UserID).Error; err != nil {
			return nil, huma.Error404NotFound("User not found")
		}
		body.Email = user.Email
		body.Name = user.Profile.AgencyName
	}
	return &MeOutput{Body: body}, nil
}

type LogoutOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Message string `json:"message"`
	}
}

// HandleLogout drops the auth cookie and any pending form state.
func (h *AuthHandler) HandleLogout(ctx context.Context, _ *struct{}) (*LogoutOutput, error) {
	if id, ok := FromContext(ctx); ok && h.sessions != nil {
		if err := h.sessions.Clear(ctx, id.SessionID); err != nil {
			h.log.Warn("failed to clear pending form state", zap.String("session_id", id.SessionID), zap.Error(err))
		}
	}

	out := &LogoutOutput{SetCookie: h.ClearCookie()}
	out.Body.Message = "Logged out"
	return out, nil
}
