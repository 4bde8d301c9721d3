package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/go-blog/internal/auth"
	"github.com/redmonkez12/go-blog/internal/user"
)

// ResetRequest emails a password reset link to a registered address
func (h *Handler) ResetRequest(w http.ResponseWriter, r *http.Request) {
	form := &RequestResetForm{}

	if r.Method == http.MethodPost {
		form.Email = formValue(r, "email")

		if validateForm(form, &form.Form) {
			err := h.auth.RequestPasswordReset(r.Context(), form.Email)
			switch {
			case err == nil:
				redirectWithFlash(w, r, "/login", FlashInfo, "Check your e-mail to reset your password.")
				return
			case errors.Is(err, user.ErrNotFound):
				form.AddError("email", msgNoAccount)
			case errors.Is(err, auth.ErrEmailDelivery):
				h.logger.Error("password reset email failed", "error", err)
				h.render(w, r, "reset_request", "Reset Password", form,
					Flash{Category: FlashDanger, Message: "The reset email could not be sent. Please try again later."})
				return
			default:
				h.serverError(w, r, err)
				return
			}
		}
	}

	h.render(w, r, "reset_request", "Reset Password", form)
}

// ResetToken lets the holder of a current reset link choose a new password
func (h *Handler) ResetToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if _, err := h.auth.VerifyResetToken(r.Context(), token); err != nil {
		h.rejectLink(w, r, err)
		return
	}

	form := &PasswordForm{}
	if r.Method == http.MethodPost {
		form.Password = r.PostFormValue("password")
		form.ConfirmPassword = r.PostFormValue("confirm_password")

		if validateForm(form, &form.Form) {
			if err := h.auth.ResetPassword(r.Context(), token, form.Password); err != nil {
				h.rejectLink(w, r, err)
				return
			}
			redirectWithFlash(w, r, "/login", FlashSuccess, "Password updated")
			return
		}
	}

	h.render(w, r, "reset_token", "Reset Password", passwordPage{Legend: "Reset Password", Form: form})
}
