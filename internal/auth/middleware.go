package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Identify attaches the caller identity from the auth cookie to the request
// context. It never rejects a request: a missing or invalid cookie leaves
// the request anonymous. Tokens past half their lifetime are renewed with
// the same session id.
func (h *AuthHandler) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		id, expires, err := h.ParseToken(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		// Sliding session
		if time.Until(expires) < TokenDuration/2 {
			if token, err := h.GenerateToken(id); err == nil {
				renewed := h.Cookie(token)
				http.SetCookie(w, &renewed)
			}
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// LoginRequired sends anonymous callers to the login page.
func LoginRequired(ctx huma.Context, next func(huma.Context)) {
	if _, ok := FromContext(ctx.Context()); !ok {
		ctx.SetHeader("Location", "/login")
		ctx.SetStatus(http.StatusSeeOther)
		return
	}
	next(ctx)
}

// StaffRequired rejects callers that are not signed in as staff.
func StaffRequired(api huma.API) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		id, ok := FromContext(ctx.Context())
		if !ok {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !id.IsStaff() {
			huma.WriteErr(api, ctx, http.StatusForbidden, "Access denied: staff only")
			return
		}
		next(ctx)
	}
}
