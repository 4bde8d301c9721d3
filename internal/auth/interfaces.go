package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-blog/internal/user"
)

// Payload is the data carried inside an account token
type Payload map[string]string

// Payload keys
const (
	ClaimPurpose  = "purpose"
	ClaimUsername = "username"
	ClaimEmail    = "email"
	ClaimUserID   = "user_id"
)

// Token purposes
const (
	PurposeRegister = "register"
	PurposeReset    = "reset"
)

// TokenCodec mints and verifies signed, expiring account tokens.
// Implementations include PasetoCodec (PASETO v4.local) and JWTCodec (HS256).
type TokenCodec interface {
	Mint(payload Payload) (string, error)
	Verify(token string) (Payload, error)
}

// UserRepository is the slice of user persistence the auth flows need
type UserRepository interface {
	Create(ctx context.Context, username, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	SetResetToken(ctx context.Context, userID uuid.UUID, tokenHash string) error
	ResetPassword(ctx context.Context, userID uuid.UUID, tokenHash, passwordHash string) error
}

// SessionRepository stores login sessions keyed by their cookie token
type SessionRepository interface {
	StoreSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteUserSessions(ctx context.Context, userID uuid.UUID) error
}

// RegistrationRepository remembers which registration tokens were redeemed
type RegistrationRepository interface {
	IsConsumed(ctx context.Context, token string) (bool, error)
	MarkConsumed(ctx context.Context, token string, ttl time.Duration) error
}

// EmailService defines the interface for email operations
type EmailService interface {
	SendRegistrationEmail(ctx context.Context, toEmail, token string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
}

// Session is a server-side login session
type Session struct {
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
