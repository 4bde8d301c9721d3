package auth

import "errors"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordRequired   = errors.New("password is required")
	ErrUsernameRequired   = errors.New("username is required")
	ErrEmailRequired      = errors.New("email is required")
	// ErrAlreadyRegistered is returned when a registration link is redeemed
	// for an account that already exists
	ErrAlreadyRegistered = errors.New("account already exists")
	ErrEmailDelivery     = errors.New("email could not be sent")
	ErrSessionNotFound   = errors.New("session not found")
)
