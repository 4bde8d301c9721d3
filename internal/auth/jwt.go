package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type jwtClaims struct {
	Data Payload `json:"data"`
	jwt.RegisteredClaims
}

// JWTCodec mints HS256 JSON Web Tokens
type JWTCodec struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewJWTCodec(secret []byte, lifetime time.Duration) (*JWTCodec, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("secret must be at least 32 bytes, got %d", len(secret))
	}

	return &JWTCodec{
		secret:   secret,
		lifetime: lifetime,
		now:      time.Now,
	}, nil
}

// WithClock returns a copy of the codec reading time from now
func (c *JWTCodec) WithClock(now func() time.Time) *JWTCodec {
	cp := *c
	cp.now = now
	return &cp
}

func (c *JWTCodec) Mint(payload Payload) (string, error) {
	now := c.now()

	claims := jwtClaims{
		Data: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func (c *JWTCodec) Verify(tokenStr string) (Payload, error) {
	var claims jwtClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		// Reject non-canonical base64 so each token has exactly one spelling
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims.Data == nil {
		return nil, ErrInvalidToken
	}

	return claims.Data, nil
}
