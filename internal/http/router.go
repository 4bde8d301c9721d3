package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/redmonkez12/go-blog/internal/auth"
	"github.com/redmonkez12/go-blog/internal/config"
	"github.com/redmonkez12/go-blog/internal/httputil"
	"github.com/redmonkez12/go-blog/internal/logging"
	"github.com/redmonkez12/go-blog/internal/web"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, webHandler *web.Handler, authMiddleware *auth.Middleware, logger *logging.Logger) (*chi.Mux, error) {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Form posts must come from this site or a trusted origin
	csrf := http.NewCrossOriginProtection()
	for _, origin := range cfg.Server.TrustedOrigins {
		if err := csrf.AddTrustedOrigin(origin); err != nil {
			return nil, fmt.Errorf("invalid trusted origin %q: %w", origin, err)
		}
	}
	csrf.SetDenyHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondError(w, r, "cross-origin request rejected", http.StatusForbidden)
	}))

	var imgSources []string
	if origin := originOf(cfg.Avatar.PublicURL); origin != "" {
		imgSources = append(imgSources, origin)
	}

	// Global middleware
	r.Use(SecurityHeaders(imgSources...)) // Security headers on all responses
	r.Use(middleware.Recoverer)           // Recover from panics
	r.Use(middleware.RequestID)           // Add request ID
	r.Use(middleware.RealIP)              // Set RemoteAddr to real IP
	r.Use(logging.RequestLogger(logger))  // Structured logging with request context
	r.Use(middleware.Compress(5))         // Compress responses
	r.Use(csrf.Handler)                   // Reject cross-site form posts
	r.Use(authMiddleware.LoadSession)     // Resolve the session cookie

	r.NotFound(webHandler.NotFound)

	r.Get("/health", handleHealth)

	if cfg.Avatar.Backend == "disk" {
		fileServer := http.StripPrefix("/static/profile_pics/", http.FileServer(http.Dir(cfg.Avatar.Dir)))
		r.Handle("/static/profile_pics/*", noDirListing(fileServer))
	}

	r.Get("/", webHandler.Home)
	r.Get("/home", webHandler.Home)
	r.Get("/user/{username}", webHandler.UserPosts)
	r.Get("/logout", webHandler.Logout)

	// Anonymous-only pages
	r.Group(func(r chi.Router) {
		r.Use(auth.RedirectIfAuthenticated)
		r.Get("/register", webHandler.Register)
		r.Post("/register", webHandler.Register)
		r.Get("/login", webHandler.Login)
		r.Post("/login", webHandler.Login)
		r.Get("/reset_password", webHandler.ResetRequest)
		r.Post("/reset_password", webHandler.ResetRequest)
		r.Get("/reset_password/{token}", webHandler.ResetToken)
		r.Post("/reset_password/{token}", webHandler.ResetToken)
		r.Get("/verify_account/{token}", webHandler.VerifyAccount)
		r.Post("/verify_account/{token}", webHandler.VerifyAccount)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/account", webHandler.Account)
		r.Post("/account", webHandler.Account)
	})

	return r, nil
}

// handleHealth is a simple health check endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, r, map[string]string{"status": "ok"}, http.StatusOK)
}
