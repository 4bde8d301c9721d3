package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/go-blog/internal/auth"
	"github.com/redmonkez12/go-blog/internal/user"
)

// Register shows and handles the sign-up form. Success only sends the
// confirmation email; the account is created from the emailed link.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	form := &RegistrationForm{}

	if r.Method == http.MethodPost {
		form.Username = formValue(r, "username")
		form.Email = formValue(r, "email")

		if validateForm(form, &form.Form) {
			err := h.auth.Register(r.Context(), form.Username, form.Email)
			switch {
			case err == nil:
				redirectWithFlash(w, r, "/login", FlashSuccess, "Please check your email to create your account.")
				return
			case errors.Is(err, user.ErrDuplicateUsername) || errors.Is(err, user.ErrDuplicateEmail):
				if errors.Is(err, user.ErrDuplicateUsername) {
					form.AddError("username", msgUsernameTaken)
				}
				if errors.Is(err, user.ErrDuplicateEmail) {
					form.AddError("email", msgEmailTaken)
				}
			case errors.Is(err, auth.ErrEmailDelivery):
				h.logger.Error("registration email failed", "error", err)
				h.render(w, r, "register", "Register", form,
					Flash{Category: FlashDanger, Message: "The confirmation email could not be sent. Please try again later."})
				return
			default:
				h.serverError(w, r, err)
				return
			}
		}
	}

	h.render(w, r, "register", "Register", form)
}

type passwordPage struct {
	Legend string
	Form   *PasswordForm
}

// VerifyAccount lets the owner of a registration link choose a password,
// which creates the account
func (h *Handler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if _, err := h.auth.VerifyRegistrationToken(r.Context(), token); err != nil {
		h.rejectLink(w, r, err)
		return
	}

	form := &PasswordForm{}
	if r.Method == http.MethodPost {
		form.Password = r.PostFormValue("password")
		form.ConfirmPassword = r.PostFormValue("confirm_password")

		if validateForm(form, &form.Form) {
			if _, err := h.auth.ConfirmRegistration(r.Context(), token, form.Password); err != nil {
				h.rejectLink(w, r, err)
				return
			}
			redirectWithFlash(w, r, "/login", FlashSuccess, "Account created")
			return
		}
	}

	h.render(w, r, "reset_token", "Create account", passwordPage{Legend: "Choose Password", Form: form})
}

// rejectLink answers an unusable emailed link. Token problems share one
// message; anything else is a server error.
func (h *Handler) rejectLink(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) || errors.Is(err, auth.ErrAlreadyRegistered) {
		redirectWithFlash(w, r, "/login", FlashWarning, "Invalid or Expired link")
		return
	}
	h.serverError(w, r, err)
}
