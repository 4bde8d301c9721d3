// Package authtest provides in-memory stand-ins for the stores and mailer
// behind auth.Service.
package authtest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-blog/internal/auth"
	"github.com/redmonkez12/go-blog/internal/user"
)

// Users is an in-memory user store enforcing unique usernames and emails
type Users struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*user.User
	order []uuid.UUID
}

func NewUsers() *Users {
	return &Users{byID: make(map[uuid.UUID]*user.User)}
}

// Add stores u directly, bypassing uniqueness checks
func (s *Users) Add(u *user.User) *user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.ImageFile == "" {
		u.ImageFile = user.DefaultImageFile
	}
	cp := *u
	s.byID[u.ID] = &cp
	s.order = append(s.order, u.ID)
	return u
}

// Count returns the number of stored users
func (s *Users) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *Users) Create(_ context.Context, username, email, passwordHash string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byID {
		if u.Username == username {
			return nil, user.ErrDuplicateUsername
		}
		if u.Email == email {
			return nil, user.ErrDuplicateEmail
		}
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		ImageFile:    user.DefaultImageFile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byID[u.ID] = u
	s.order = append(s.order, u.ID)

	cp := *u
	return &cp, nil
}

func (s *Users) find(match func(*user.User) bool) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if u := s.byID[id]; match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *Users) GetByEmail(_ context.Context, email string) (*user.User, error) {
	return s.find(func(u *user.User) bool { return u.Email == email })
}

func (s *Users) GetByUsername(_ context.Context, username string) (*user.User, error) {
	return s.find(func(u *user.User) bool { return u.Username == username })
}

func (s *Users) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	return s.find(func(u *user.User) bool { return u.ID == id })
}

func (s *Users) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := s.GetByUsername(ctx, username)
	return err == nil, nil
}

func (s *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, email)
	return err == nil, nil
}

func (s *Users) update(id uuid.UUID, fn func(*user.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return user.ErrNotFound
	}
	if err := fn(u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (s *Users) UpdateProfile(_ context.Context, id uuid.UUID, p user.Profile) error {
	s.mu.Lock()
	for otherID, other := range s.byID {
		if otherID == id {
			continue
		}
		if other.Username == p.Username {
			s.mu.Unlock()
			return user.ErrDuplicateUsername
		}
		if other.Email == p.Email {
			s.mu.Unlock()
			return user.ErrDuplicateEmail
		}
	}
	s.mu.Unlock()

	return s.update(id, func(u *user.User) error {
		u.Username = p.Username
		u.Email = p.Email
		u.ImageFile = p.ImageFile
		return nil
	})
}

func (s *Users) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	return s.update(id, func(u *user.User) error {
		u.PasswordHash = passwordHash
		return nil
	})
}

func (s *Users) SetResetToken(_ context.Context, id uuid.UUID, tokenHash string) error {
	return s.update(id, func(u *user.User) error {
		u.ResetToken = &tokenHash
		return nil
	})
}

func (s *Users) ResetPassword(_ context.Context, id uuid.UUID, tokenHash, passwordHash string) error {
	return s.update(id, func(u *user.User) error {
		if u.ResetToken == nil || *u.ResetToken != tokenHash {
			return user.ErrResetTokenMismatch
		}
		u.PasswordHash = passwordHash
		u.ResetToken = nil
		return nil
	})
}

// Sessions is an in-memory session store
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]auth.Session
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]auth.Session)}
}

func (s *Sessions) StoreSession(_ context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := hash(token)
	s.sessions[h] = auth.Session{
		UserID:    userID,
		TokenHash: h,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (s *Sessions) GetSession(_ context.Context, token string) (*auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[hash(token)]
	if !ok || time.Now().After(sess.ExpiresAt) {
		return nil, auth.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *Sessions) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, hash(token))
	return nil
}

func (s *Sessions) DeleteUserSessions(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, h)
		}
	}
	return nil
}

// Count returns the number of live sessions
func (s *Sessions) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Registrations is an in-memory consumed-token registry
type Registrations struct {
	mu       sync.Mutex
	consumed map[string]bool
}

func NewRegistrations() *Registrations {
	return &Registrations{consumed: make(map[string]bool)}
}

func (r *Registrations) IsConsumed(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.consumed[hash(token)], nil
}

func (r *Registrations) MarkConsumed(_ context.Context, token string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumed[hash(token)] = true
	return nil
}

// Message is one email captured by Mailer
type Message struct {
	Kind  string // "register" or "reset"
	To    string
	Token string
}

// Mailer records outgoing emails instead of sending them
type Mailer struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (m *Mailer) record(kind, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.messages = append(m.messages, Message{Kind: kind, To: to, Token: token})
	return nil
}

func (m *Mailer) SendRegistrationEmail(_ context.Context, toEmail, token string) error {
	return m.record(auth.PurposeRegister, toEmail, token)
}

func (m *Mailer) SendPasswordResetEmail(_ context.Context, toEmail, token string) error {
	return m.record(auth.PurposeReset, toEmail, token)
}

// Messages returns a copy of the captured emails
func (m *Mailer) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

// Last returns the most recent email, or false when none was sent
func (m *Mailer) Last() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return Message{}, false
	}
	return m.messages[len(m.messages)-1], true
}

func hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
