package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/mosaic-visa/internal/auth"
	"github.com/gdg-garage/mosaic-visa/internal/metrics"
	"go.uber.org/zap"
)

// RegistrationHandler turns invite links into agency accounts.
type RegistrationHandler struct {
	auth    *auth.AuthHandler
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewRegistrationHandler(authHandler *auth.AuthHandler, m *metrics.Metrics, log *zap.Logger) *RegistrationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationHandler{auth: authHandler, metrics: m, log: log}
}

type InviteTokenInput struct {
	Token string `path:"token"`
}

type InviteCheckOutput struct {
	Body struct {
		Valid bool   `json:"valid"`
		Note  string `json:"note"`
	}
}

func (h *RegistrationHandler) HandleCheckInvite(ctx context.Context, input *InviteTokenInput) (*InviteCheckOutput, error) {
	invite, err := h.auth.CheckInvite(ctx, input.Token)
	if errors.Is(err, auth.ErrInvalidInvite) {
		return nil, huma.Error404NotFound(auth.ErrInvalidInvite.Error())
	}
	if err != nil {
		h.log.Error("failed to check invite", zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to check invite")
	}

	out := &InviteCheckOutput{}
	out.Body.Valid = true
	out.Body.Note = invite.Note
	return out, nil
}

type RegistrationRequest struct {
	Token string `path:"token"`
	Body  struct {
		Email      string `json:"email" format:"email" doc:"Login email of the agency"`
		Password   string `json:"password" minLength:"8" doc:"Account password"`
		AgencyName string `json:"agency_name" minLength:"1" maxLength:"200"`
		Phone      string `json:"phone,omitempty" maxLength:"20"`
		City       string `json:"city,omitempty" maxLength:"100"`
	}
}

// HandleRegister consumes the invite, creates the account and signs the
// new agency in.
func (h *RegistrationHandler) HandleRegister(ctx context.Context, input *RegistrationRequest) (*auth.SessionOutput, error) {
	user, err := h.auth.Register(ctx, input.Token, auth.Registration{
		Email:      input.Body.Email,
		Password:   input.Body.Password,
		AgencyName: input.Body.AgencyName,
		Phone:      input.Body.Phone,
		City:       input.Body.City,
	})
	switch {
	case errors.Is(err, auth.ErrInvalidInvite):
		return nil, huma.Error404NotFound(auth.ErrInvalidInvite.Error())
	case errors.Is(err, auth.ErrDuplicateEmail):
		return nil, huma.Error422UnprocessableEntity("Registration failed", &huma.ErrorDetail{
			Message:  auth.ErrDuplicateEmail.Error(),
			Location: "body.email",
			Value:    input.Body.Email,
		})
	case err != nil:
		h.log.Error("registration failed", zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to process registration")
	}

	_, cookie, err := h.auth.NewSession(user.ID, auth.RoleAgency)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	h.metrics.Registration()
	h.log.Info("agency registered", zap.Uint("user_id", user.ID), zap.String("agency", input.Body.AgencyName))

	return &auth.SessionOutput{
		SetCookie: cookie,
		Body: auth.IdentityBody{
			Authenticated: true,
			UserID:        user.ID,
			Role:          auth.RoleAgency,
			Email:         user.Email,
			Name:          input.Body.AgencyName,
		},
	}, nil
}
