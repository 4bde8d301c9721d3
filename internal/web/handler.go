// Package web serves the HTML pages for accounts and post listings.
package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-blog/internal/account"
	"github.com/redmonkez12/go-blog/internal/auth"
	"github.com/redmonkez12/go-blog/internal/logging"
	"github.com/redmonkez12/go-blog/internal/post"
)

// PostLister pages through posts newest first
type PostLister interface {
	ListRecent(ctx context.Context, page, perPage int) (*post.Page, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, page, perPage int) (*post.Page, error)
}

// Handler holds the page handlers
type Handler struct {
	auth           *auth.Service
	accounts       *account.Service
	posts          PostLister
	renderer       *Renderer
	logger         *logging.Logger
	secureCookies  bool
	maxUploadBytes int64
}

func NewHandler(
	authService *auth.Service,
	accountService *account.Service,
	posts PostLister,
	renderer *Renderer,
	logger *logging.Logger,
	secureCookies bool,
	maxUploadBytes int64,
) *Handler {
	return &Handler{
		auth:           authService,
		accounts:       accountService,
		posts:          posts,
		renderer:       renderer,
		logger:         logger,
		secureCookies:  secureCookies,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name, title string, data any, extra ...Flash) {
	h.renderer.Render(w, r, http.StatusOK, name, Page{Title: title, Data: data}, extra...)
}

// NotFound renders the 404 page
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusNotFound, "error", Page{
		Title: "Not Found",
		Data:  errorData{Status: http.StatusNotFound, Message: "That page does not exist."},
	})
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logging.GetLoggerFromContext(r.Context()).Error("request failed", "error", err)
	h.renderer.Render(w, r, http.StatusInternalServerError, "error", Page{
		Title: "Error",
		Data:  errorData{Status: http.StatusInternalServerError, Message: "Something went wrong. Please try again later."},
	})
}

type errorData struct {
	Status  int
	Message string
}

// pageParam reads ?page=N, defaulting to 1 for missing or invalid values
func pageParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}
