package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/go-blog/internal/post"
	"github.com/redmonkez12/go-blog/internal/user"
)

type postsPage struct {
	Posts *post.Page
	User  *user.User
	// BasePath is the listing URL the pagination links append ?page=N to
	BasePath string
}

// Home lists every post, newest first
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.ListRecent(r.Context(), pageParam(r), post.PerPage)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if !page.Exists() {
		h.NotFound(w, r)
		return
	}

	h.render(w, r, "home", "", postsPage{Posts: page, BasePath: "/"})
}

// UserPosts lists the posts of one author
func (h *Handler) UserPosts(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	author, err := h.accounts.ByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	page, err := h.posts.ListByAuthor(r.Context(), author.ID, pageParam(r), post.PerPage)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if !page.Exists() {
		h.NotFound(w, r)
		return
	}

	h.render(w, r, "user_posts", author.Username, postsPage{
		Posts:    page,
		User:     author,
		BasePath: "/user/" + url.PathEscape(author.Username),
	})
}
