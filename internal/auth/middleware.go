package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-blog/internal/logging"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const IdentityContextKey ContextKey = "identity"

// Identity is the logged-in user as seen by one request
type Identity struct {
	UserID       uuid.UUID
	Username     string
	Email        string
	ImageFile    string
	SessionToken string
}

// WithIdentity stores id in ctx
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, id)
}

// IdentityFromContext returns the request identity, if any
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityContextKey).(Identity)
	return id, ok
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return id.UserID, true
}

// Middleware resolves session cookies and guards routes
type Middleware struct {
	service       *Service
	secureCookies bool
}

func NewMiddleware(service *Service, secureCookies bool) *Middleware {
	return &Middleware{service: service, secureCookies: secureCookies}
}

// LoadSession attaches the Identity of a valid session cookie to the request.
// Requests without one continue anonymously.
func (m *Middleware) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := GetSessionTokenFromCookie(r)
		if err != nil || token == "" {
			next.ServeHTTP(w, r)
			return
		}

		u, err := m.service.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				ClearSessionCookie(w, m.secureCookies)
			} else {
				logging.GetLoggerFromContext(r.Context()).Error("failed to load session", "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := WithIdentity(r.Context(), Identity{
			UserID:       u.ID,
			Username:     u.Username,
			Email:        u.Email,
			ImageFile:    u.ImageFile,
			SessionToken: token,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth redirects anonymous visitors to the login page, remembering
// where they were going
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			target := "/login?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectIfAuthenticated sends logged-in users home
func RedirectIfAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); ok {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SafeRedirectTarget returns next when it is a path on this site and
// fallback otherwise
func SafeRedirectTarget(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
