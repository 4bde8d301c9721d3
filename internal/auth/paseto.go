package auth

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

const payloadClaim = "data"

// PasetoCodec handles PASETO token creation and validation
// Uses v4.local (symmetric encryption with XChaCha20-Poly1305)
type PasetoCodec struct {
	symmetricKey paseto.V4SymmetricKey
	lifetime     time.Duration
	now          func() time.Time
}

func NewPasetoCodec(symmetricKey []byte, lifetime time.Duration) (*PasetoCodec, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoCodec{
		symmetricKey: key,
		lifetime:     lifetime,
		now:          time.Now,
	}, nil
}

// WithClock returns a copy of the codec reading time from now
func (c *PasetoCodec) WithClock(now func() time.Time) *PasetoCodec {
	cp := *c
	cp.now = now
	return &cp
}

// Mint generates a new PASETO v4.local token carrying payload
func (c *PasetoCodec) Mint(payload Payload) (string, error) {
	now := c.now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(c.lifetime))
	token.SetJti(uuid.NewString())
	if err := token.Set(payloadClaim, payload); err != nil {
		return "", fmt.Errorf("failed to set token payload: %w", err)
	}

	return token.V4Encrypt(c.symmetricKey, nil), nil
}

// Verify decrypts a PASETO v4.local token and returns its payload
func (c *PasetoCodec) Verify(tokenStr string) (Payload, error) {
	// Expiry is checked below against the codec clock
	parser := paseto.NewParserWithoutExpiryCheck()

	token, err := parser.ParseV4Local(c.symmetricKey, tokenStr, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !c.now().Before(expiresAt) {
		return nil, ErrExpiredToken
	}

	var payload Payload
	if err := token.Get(payloadClaim, &payload); err != nil {
		return nil, ErrInvalidToken
	}

	return payload, nil
}
