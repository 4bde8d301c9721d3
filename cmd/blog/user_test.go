package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-blog/internal/config"
)

func TestNewAccount_Validate(t *testing.T) {
	ok := &newAccount{Username: "  alice ", Email: "alice@example.com", Password: "pw"}
	require.NoError(t, ok.validate())
	assert.Equal(t, "alice", ok.Username)

	tests := []struct {
		name    string
		account newAccount
		want    string
	}{
		{"short username", newAccount{Username: "a", Email: "a@b.co", Password: "pw"}, `username fails "min"`},
		{"bad email", newAccount{Username: "alice", Email: "nope", Password: "pw"}, `email fails "email"`},
		{"no password", newAccount{Username: "alice", Email: "a@b.co"}, `password fails "required"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.account.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestNewTokenCodec(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	for _, format := range []string{"paseto", "jwt"} {
		t.Run(format, func(t *testing.T) {
			codec, err := newTokenCodec(config.AuthConfig{TokenKey: key, TokenFormat: format, TokenLifetime: time.Minute})
			require.NoError(t, err)

			token, err := codec.Mint(map[string]string{"purpose": "reset"})
			require.NoError(t, err)
			payload, err := codec.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, "reset", payload["purpose"])
		})
	}

	_, err := newTokenCodec(config.AuthConfig{TokenKey: key, TokenFormat: "xml"})
	assert.Error(t, err)
}

func TestMigrateCommands(t *testing.T) {
	cmd := newMigrateCmd()
	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "status"}, names)
}
