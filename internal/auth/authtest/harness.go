package authtest

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-blog/internal/auth"
	"github.com/redmonkez12/go-blog/internal/logging"
)

// TokenKey is the 32 byte key used by harness codecs
var TokenKey = []byte("0123456789abcdef0123456789abcdef")

const TokenLifetime = 30 * time.Minute

// Clock is a settable time source
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Harness is an auth.Service wired to in-memory fakes
type Harness struct {
	Service       *auth.Service
	Users         *Users
	Sessions      *Sessions
	Registrations *Registrations
	Mailer        *Mailer
	Clock         *Clock
}

// NewHarness builds a service around a PASETO codec on a test clock
func NewHarness(t testing.TB) *Harness {
	t.Helper()

	codec, err := auth.NewPasetoCodec(TokenKey, TokenLifetime)
	require.NoError(t, err)

	clock := NewClock(time.Now())
	h := &Harness{
		Users:         NewUsers(),
		Sessions:      NewSessions(),
		Registrations: NewRegistrations(),
		Mailer:        &Mailer{},
		Clock:         clock,
	}
	h.Service = auth.NewService(
		h.Users,
		h.Sessions,
		h.Registrations,
		codec.WithClock(clock.Now),
		h.Mailer,
		logging.NewNop(),
		24*time.Hour,
		30*24*time.Hour,
		TokenLifetime,
	)
	return h
}
