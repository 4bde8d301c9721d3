package web

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report errors under the HTML input names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return v
}

// Form collects per-field error messages for re-rendering
type Form struct {
	Errors map[string]string `form:"-" validate:"-"`
}

// AddError records msg for field, keeping the first message per field
func (f *Form) AddError(field, msg string) {
	if f.Errors == nil {
		f.Errors = make(map[string]string)
	}
	if _, ok := f.Errors[field]; !ok {
		f.Errors[field] = msg
	}
}

func (f *Form) Valid() bool {
	return len(f.Errors) == 0
}

// validateForm runs struct validation on form and copies failures into base
func validateForm(form any, base *Form) bool {
	err := validate.Struct(form)
	if err == nil {
		return base.Valid()
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		base.AddError("form", err.Error())
		return false
	}

	for _, fe := range verrs {
		base.AddError(fe.Field(), validationMessage(fe))
	}
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field must be at most %s characters long.", fe.Param())
	case "eqfield":
		return "Field must be equal to password."
	default:
		return "Invalid value."
	}
}

// Messages shown next to fields
const (
	msgUsernameTaken  = "That username is taken. Please choose a different one."
	msgEmailTaken     = "That email is taken. Please choose a different one."
	msgNoAccount      = "There is no account with that email. You must register first."
	msgBadExtension   = "File does not have an approved extension: jpg, jpeg, png"
	msgBadImage       = "The file could not be read as an image."
	msgImageTooLarge  = "The image is too large."
	msgPictureFailure = "The picture could not be saved. Please try again."
)

type RegistrationForm struct {
	Form
	Username string `form:"username" validate:"required,min=2,max=20"`
	Email    string `form:"email" validate:"required,email"`
}

type LoginForm struct {
	Form
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Remember bool   `form:"remember"`
}

type AccountForm struct {
	Form
	Username string `form:"username" validate:"required,min=2,max=20"`
	Email    string `form:"email" validate:"required,email"`
}

type RequestResetForm struct {
	Form
	Email string `form:"email" validate:"required,email"`
}

// PasswordForm chooses a password, both for new accounts and for resets
type PasswordForm struct {
	Form
	Password        string `form:"password" validate:"required"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}
