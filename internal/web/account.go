package web

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/redmonkez12/go-blog/internal/account"
	"github.com/redmonkez12/go-blog/internal/auth"
	"github.com/redmonkez12/go-blog/internal/avatar"
	"github.com/redmonkez12/go-blog/internal/user"
)

type accountPage struct {
	Form      *AccountForm
	ImageFile string
}

// multipart overhead allowed on top of the picture itself
const formOverheadBytes = 1 << 20

// Account shows and updates the logged-in user's profile
func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	form := &AccountForm{Username: id.Username, Email: id.Email}
	page := accountPage{Form: form, ImageFile: id.ImageFile}

	if r.Method != http.MethodPost {
		h.render(w, r, "account", "Account", page)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+formOverheadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			form.AddError("picture", msgImageTooLarge)
			h.render(w, r, "account", "Account", page)
			return
		}
		h.serverError(w, r, err)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	form.Username = formValue(r, "username")
	form.Email = formValue(r, "email")

	picture, closePicture, err := h.pictureUpload(r, form)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	defer closePicture()

	if !validateForm(form, &form.Form) {
		h.render(w, r, "account", "Account", page)
		return
	}

	_, err = h.accounts.Update(r.Context(), id.UserID, account.UpdateInput{
		Username: form.Username,
		Email:    form.Email,
		Picture:  picture,
	})
	switch {
	case err == nil:
		redirectWithFlash(w, r, "/account", FlashSuccess, "Your account has been updated")
		return
	case errors.Is(err, user.ErrDuplicateUsername) || errors.Is(err, user.ErrDuplicateEmail):
		if errors.Is(err, user.ErrDuplicateUsername) {
			form.AddError("username", msgUsernameTaken)
		}
		if errors.Is(err, user.ErrDuplicateEmail) {
			form.AddError("email", msgEmailTaken)
		}
	case errors.Is(err, avatar.ErrUnsupportedFormat):
		form.AddError("picture", msgBadExtension)
	case errors.Is(err, avatar.ErrDecode):
		form.AddError("picture", msgBadImage)
	case errors.Is(err, avatar.ErrTooLarge):
		form.AddError("picture", msgImageTooLarge)
	case errors.Is(err, account.ErrPictureStore):
		h.logger.Error("failed to store avatar", "user_id", id.UserID, "error", err)
		form.AddError("picture", msgPictureFailure)
	default:
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, "account", "Account", page)
}

// pictureUpload returns the submitted picture, or nil when none was chosen.
// An unapproved extension is reported on the form.
func (h *Handler) pictureUpload(r *http.Request, form *AccountForm) (*avatar.Upload, func(), error) {
	noop := func() {}

	if r.MultipartForm == nil {
		return nil, noop, nil
	}

	file, header, err := r.FormFile("picture")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}

	if header.Filename == "" {
		file.Close()
		return nil, noop, nil
	}

	if _, err := avatar.Extension(header.Filename); err != nil {
		file.Close()
		form.AddError("picture", msgBadExtension)
		return nil, noop, nil
	}

	return &avatar.Upload{Filename: header.Filename, Body: file}, func() { closeFile(file) }, nil
}

func closeFile(f multipart.File) {
	_ = f.Close()
}
