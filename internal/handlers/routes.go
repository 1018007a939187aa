package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gdg-garage/mosaic-visa/internal/auth"
	"github.com/gdg-garage/mosaic-visa/internal/catalog"
	"github.com/gdg-garage/mosaic-visa/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

var cookieAuth = []map[string][]string{{"cookieAuth": {}}}

type CatalogOutput struct {
	Body map[string][]catalog.Choice
}

func catalogHandler(cat *catalog.Catalog) func(context.Context, *struct{}) (*CatalogOutput, error) {
	body := make(map[string][]catalog.Choice, len(catalog.Kinds))
	for kind, choices := range cat.All() {
		body[string(kind)] = choices
	}
	return func(context.Context, *struct{}) (*CatalogOutput, error) {
		return &CatalogOutput{Body: body}, nil
	}
}

func guarded(mws ...func(huma.Context, func(huma.Context))) func(o *huma.Operation) {
	return func(o *huma.Operation) {
		o.Middlewares = append(o.Middlewares, mws...)
		o.Security = cookieAuth
	}
}

func RegisterRoutes(
	r *chi.Mux,
	authHandler *auth.AuthHandler,
	formHandler *FormHandler,
	adminHandler *AdminHandler,
	registrationHandler *RegistrationHandler,
	cat *catalog.Catalog,
	m *metrics.Metrics,
) huma.API {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(authHandler.Identify)

	// Initialize Huma API
	config := huma.DefaultConfig("Mosaic Visa API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}
	huma.Get(api, "/catalog", catalogHandler(cat))

	// Auth routes
	r.Get("/auth/discord/login", authHandler.HandleDiscordLogin)
	r.Get("/auth/discord/callback", authHandler.HandleDiscordCallback)
	huma.Get(api, "/login", authHandler.HandleMe)
	huma.Post(api, "/login", authHandler.HandleLogin)
	huma.Post(api, "/logout", authHandler.HandleLogout)
	huma.Get(api, "/register/{token}", registrationHandler.HandleCheckInvite)
	huma.Register(api, huma.Operation{
		OperationID:   "post-register",
		Method:        http.MethodPost,
		Path:          "/register/{token}",
		DefaultStatus: http.StatusCreated,
	}, registrationHandler.HandleRegister)

	// Form flow
	huma.Get(api, "/form", formHandler.HandleGetForm, guarded(auth.LoginRequired))
	huma.Register(api, huma.Operation{
		OperationID:   "post-form",
		Method:        http.MethodPost,
		Path:          "/form",
		DefaultStatus: http.StatusSeeOther,
		Middlewares:   huma.Middlewares{auth.LoginRequired},
		Security:      cookieAuth,
	}, formHandler.HandleSubmitForm)
	pending := guarded(auth.LoginRequired, formHandler.PendingRequired(api))
	huma.Get(api, "/preview", formHandler.HandlePreview, pending)
	huma.Get(api, "/download", formHandler.HandleDownload, pending)

	// Staff back office
	staff := guarded(auth.StaffRequired(api))
	huma.Get(api, "/admin/submissions", adminHandler.HandleListSubmissions, staff)
	huma.Get(api, "/admin/submissions/{id}", adminHandler.HandleGetSubmission, staff)
	huma.Get(api, "/admin/submissions/{id}/download", adminHandler.HandleDownloadSubmission, staff)
	huma.Post(api, "/admin/submissions/{id}/redact-slot", adminHandler.HandleRedactSlot, staff)
	huma.Post(api, "/admin/submissions/export", adminHandler.HandleBulkExport, staff)
	huma.Register(api, huma.Operation{
		OperationID:   "post-admin-invites",
		Method:        http.MethodPost,
		Path:          "/admin/invites",
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{auth.StaffRequired(api)},
		Security:      cookieAuth,
	}, adminHandler.HandleCreateInvite)
	huma.Get(api, "/admin/invites", adminHandler.HandleListInvites, staff)
	huma.Get(api, "/admin/agencies", adminHandler.HandleListAgencies, staff)

	return api
}
