package web

import (
	"errors"
	"net/http"

	"github.com/redmonkez12/go-blog/internal/auth"
	"github.com/redmonkez12/go-blog/internal/logging"
)

// Login shows and handles the login form
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	form := &LoginForm{}

	if r.Method == http.MethodPost {
		form.Email = formValue(r, "email")
		form.Password = r.PostFormValue("password")
		form.Remember = r.PostFormValue("remember") != ""

		if validateForm(form, &form.Form) {
			result, err := h.auth.Login(r.Context(), form.Email, form.Password, form.Remember)
			switch {
			case err == nil:
				auth.SetSessionCookie(w, result.SessionToken, result.ExpiresAt, result.Persistent, h.secureCookies)
				logging.GetLoggerFromContext(r.Context()).Info("user logged in", "user_id", result.User.ID)
				http.Redirect(w, r, auth.SafeRedirectTarget(r.URL.Query().Get("next"), "/"), http.StatusFound)
				return
			case errors.Is(err, auth.ErrInvalidCredentials):
				form.Password = ""
				h.render(w, r, "login", "Login", form,
					Flash{Category: FlashDanger, Message: "Login Unsuccessful. Please check email and password"})
				return
			default:
				h.serverError(w, r, err)
				return
			}
		}
	}

	form.Password = ""
	h.render(w, r, "login", "Login", form)
}

// Logout ends the current session, if any, and always clears the cookie
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		token = id.SessionToken
	} else if cookieToken, err := auth.GetSessionTokenFromCookie(r); err == nil {
		token = cookieToken
	}

	if err := h.auth.Logout(r.Context(), token); err != nil {
		h.logger.Warn("failed to delete session on logout", "error", err)
	}

	auth.ClearSessionCookie(w, h.secureCookies)
	http.Redirect(w, r, "/", http.StatusFound)
}
