// Package avatar stores profile pictures as small thumbnails under random names.
package avatar

import (
	"context"
	"errors"
	"fmt"

	"github.com/redmonkez12/go-blog/internal/config"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrDecode            = errors.New("image could not be decoded")
	ErrTooLarge          = errors.New("image is too large")
	ErrInvalidName       = errors.New("invalid avatar file name")
)

// Store persists encoded avatar files by name
type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	// Delete removes name; a missing file is not an error
	Delete(ctx context.Context, name string) error
}

// NewStore builds the Store selected by cfg.Backend
func NewStore(ctx context.Context, cfg config.AvatarConfig) (Store, error) {
	switch cfg.Backend {
	case "", "disk":
		return NewDiskStore(cfg.Dir), nil
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown avatar backend %q", cfg.Backend)
	}
}
