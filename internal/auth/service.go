package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-blog/internal/logging"
	"github.com/redmonkez12/go-blog/internal/user"
)

// Service handles account and session business logic
type Service struct {
	userRepo         UserRepository
	sessionRepo      SessionRepository
	registrationRepo RegistrationRepository
	tokens           TokenCodec
	emailService     EmailService
	logger           *logging.Logger
	sessionDuration  time.Duration
	rememberDuration time.Duration
	tokenLifetime    time.Duration
}

func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	registrationRepo RegistrationRepository,
	tokens TokenCodec,
	emailService EmailService,
	logger *logging.Logger,
	sessionDuration time.Duration,
	rememberDuration time.Duration,
	tokenLifetime time.Duration,
) *Service {
	return &Service{
		userRepo:         userRepo,
		sessionRepo:      sessionRepo,
		registrationRepo: registrationRepo,
		tokens:           tokens,
		emailService:     emailService,
		logger:           logger,
		sessionDuration:  sessionDuration,
		rememberDuration: rememberDuration,
		tokenLifetime:    tokenLifetime,
	}
}

// Registration is the identity a registration token was minted for
type Registration struct {
	Username string
	Email    string
}

// LoginResult carries the session created by a successful login
type LoginResult struct {
	User         *user.User
	SessionToken string
	ExpiresAt    time.Time
	Persistent   bool
}

// Register checks that username and email are free and emails a
// confirmation link. No user row is created until the link is redeemed.
func (s *Service) Register(ctx context.Context, username, email string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if email == "" {
		return ErrEmailRequired
	}

	if err := s.checkAvailable(ctx, username, email); err != nil {
		return err
	}

	token, err := s.tokens.Mint(Payload{
		ClaimPurpose:  PurposeRegister,
		ClaimUsername: username,
		ClaimEmail:    email,
	})
	if err != nil {
		return fmt.Errorf("failed to mint registration token: %w", err)
	}

	if err := s.emailService.SendRegistrationEmail(ctx, email, token); err != nil {
		return fmt.Errorf("%w: %w", ErrEmailDelivery, err)
	}

	return nil
}

// checkAvailable returns the duplicate errors for whichever of username
// and email is already taken, joined when both are
func (s *Service) checkAvailable(ctx context.Context, username, email string) error {
	usernameTaken, err := s.userRepo.UsernameExists(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	emailTaken, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}

	var errs []error
	if usernameTaken {
		errs = append(errs, user.ErrDuplicateUsername)
	}
	if emailTaken {
		errs = append(errs, user.ErrDuplicateEmail)
	}
	return errors.Join(errs...)
}

// VerifyRegistrationToken decodes a registration link token.
// A token that was already redeemed yields ErrAlreadyRegistered.
func (s *Service) VerifyRegistrationToken(ctx context.Context, token string) (*Registration, error) {
	payload, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	if payload[ClaimPurpose] != PurposeRegister || payload[ClaimUsername] == "" || payload[ClaimEmail] == "" {
		return nil, ErrInvalidToken
	}

	consumed, err := s.registrationRepo.IsConsumed(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check registration token: %w", err)
	}
	if consumed {
		return nil, ErrAlreadyRegistered
	}

	return &Registration{
		Username: payload[ClaimUsername],
		Email:    payload[ClaimEmail],
	}, nil
}

// ConfirmRegistration creates the account a registration token was minted for
func (s *Service) ConfirmRegistration(ctx context.Context, token, password string) (*user.User, error) {
	reg, err := s.VerifyRegistrationToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if password == "" {
		return nil, ErrPasswordRequired
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.userRepo.Create(ctx, reg.Username, reg.Email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) || errors.Is(err, user.ErrDuplicateUsername) {
			return nil, fmt.Errorf("%w: %w", ErrAlreadyRegistered, err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.registrationRepo.MarkConsumed(ctx, token, s.tokenLifetime); err != nil {
		// The unique constraints still reject a second confirmation
		s.logger.Warn("failed to mark registration token as consumed", "user_id", newUser.ID, "error", err)
	}

	return newUser, nil
}

// Login checks credentials and opens a session
func (s *Service) Login(ctx context.Context, email, password string, remember bool) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !VerifyPassword(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if needsRehash(existingUser.PasswordHash) {
		s.upgradePasswordHash(ctx, existingUser, password)
	}

	sessionToken, err := generateRandomToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	duration := s.sessionDuration
	if remember {
		duration = s.rememberDuration
	}
	expiresAt := time.Now().Add(duration)

	if err := s.sessionRepo.StoreSession(ctx, existingUser.ID, sessionToken, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &LoginResult{
		User:         existingUser,
		SessionToken: sessionToken,
		ExpiresAt:    expiresAt,
		Persistent:   remember,
	}, nil
}

func (s *Service) upgradePasswordHash(ctx context.Context, u *user.User, password string) {
	passwordHash, err := HashPassword(password)
	if err != nil {
		s.logger.Warn("failed to rehash legacy password", "user_id", u.ID, "error", err)
		return
	}
	if err := s.userRepo.UpdatePassword(ctx, u.ID, passwordHash); err != nil {
		s.logger.Warn("failed to store upgraded password hash", "user_id", u.ID, "error", err)
		return
	}
	u.PasswordHash = passwordHash
}

// Logout ends the session behind sessionToken
func (s *Service) Logout(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	return s.sessionRepo.DeleteSession(ctx, sessionToken)
}

// Authenticate resolves a session cookie to its user
func (s *Service) Authenticate(ctx context.Context, sessionToken string) (*user.User, error) {
	session, err := s.sessionRepo.GetSession(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			if delErr := s.sessionRepo.DeleteSession(ctx, sessionToken); delErr != nil {
				s.logger.Warn("failed to delete orphaned session", "error", delErr)
			}
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session user: %w", err)
	}

	return u, nil
}

// RequestPasswordReset emails a reset link to the owner of email.
// Any earlier reset token of that user stops working.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return ErrEmailRequired
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.tokens.Mint(Payload{
		ClaimPurpose: PurposeReset,
		ClaimUserID:  existingUser.ID.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to mint reset token: %w", err)
	}

	if err := s.userRepo.SetResetToken(ctx, existingUser.ID, hashToken(token)); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.emailService.SendPasswordResetEmail(ctx, existingUser.Email, token); err != nil {
		return fmt.Errorf("%w: %w", ErrEmailDelivery, err)
	}

	return nil
}

// VerifyResetToken returns the user a reset token belongs to. The token must
// be unexpired and still be the user's current reset token.
func (s *Service) VerifyResetToken(ctx context.Context, token string) (*user.User, error) {
	payload, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	if payload[ClaimPurpose] != PurposeReset {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(payload[ClaimUserID])
	if err != nil {
		return nil, ErrInvalidToken
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if u.ResetToken == nil || subtle.ConstantTimeCompare([]byte(*u.ResetToken), []byte(hashToken(token))) != 1 {
		return nil, ErrInvalidToken
	}

	return u, nil
}

// ResetPassword sets a new password using a reset token. The token is
// spent by the update, and every session of the user is revoked.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	u, err := s.VerifyResetToken(ctx, token)
	if err != nil {
		return err
	}

	if newPassword == "" {
		return ErrPasswordRequired
	}

	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.ResetPassword(ctx, u.ID, hashToken(token), passwordHash); err != nil {
		if errors.Is(err, user.ErrResetTokenMismatch) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.sessionRepo.DeleteUserSessions(ctx, u.ID); err != nil {
		s.logger.Warn("failed to revoke sessions after password reset", "user_id", u.ID, "error", err)
	}

	return nil
}
