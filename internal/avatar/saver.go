package avatar

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/redmonkez12/go-blog/internal/config"
	"github.com/redmonkez12/go-blog/internal/logging"
)

// AllowedExtensions are the upload extensions accepted for avatars
var AllowedExtensions = []string{".jpg", ".jpeg", ".png"}

// Upload is a picture submitted through the account form
type Upload struct {
	Filename string
	Body     io.Reader
}

// Saver turns uploads into stored thumbnails
type Saver struct {
	store        Store
	size         int
	defaultImage string
	maxBytes     int64
	publicURL    string
}

func NewSaver(store Store, cfg config.AvatarConfig) *Saver {
	return &Saver{
		store:        store,
		size:         cfg.Size,
		defaultImage: cfg.DefaultImage,
		maxBytes:     cfg.MaxUploadBytes,
		publicURL:    strings.TrimRight(cfg.PublicURL, "/"),
	}
}

// URL returns where the avatar file name is served from
func (s *Saver) URL(name string) string {
	return s.publicURL + "/" + name
}

// Extension returns the lower-cased extension of filename when it is an
// accepted avatar format
func Extension(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", ErrUnsupportedFormat
}

// Save stores a thumbnail of upload under a new random name and returns it.
// The previous avatar is left alone; callers Remove it once the new name is
// persisted.
func (s *Saver) Save(ctx context.Context, upload Upload) (string, error) {
	ext, err := Extension(upload.Filename)
	if err != nil {
		return "", err
	}

	raw, err := s.read(upload.Body)
	if err != nil {
		return "", err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}

	data, contentType, err := encode(Thumbnail(img, s.size), ext)
	if err != nil {
		return "", err
	}

	name, err := randomName(ext)
	if err != nil {
		return "", err
	}

	if err := s.store.Put(ctx, name, data, contentType); err != nil {
		return "", err
	}

	return name, nil
}

// Remove deletes a stored avatar. The default image and empty names are
// never touched; failures are logged since an orphaned file is harmless.
func (s *Saver) Remove(ctx context.Context, name string) {
	if name == "" || name == s.defaultImage {
		return
	}
	if err := s.store.Delete(ctx, name); err != nil {
		logging.GetLoggerFromContext(ctx).Warn("failed to delete avatar", "file", name, "error", err)
	}
}

func (s *Saver) read(body io.Reader) ([]byte, error) {
	if s.maxBytes <= 0 {
		return io.ReadAll(body)
	}

	raw, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(raw)) > s.maxBytes {
		return nil, ErrTooLarge
	}
	return raw, nil
}

func encode(img image.Image, ext string) ([]byte, string, error) {
	var buf bytes.Buffer
	switch ext {
	case ".jpg", ".jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
			return nil, "", fmt.Errorf("failed to encode jpeg: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	case ".png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("failed to encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	default:
		return nil, "", ErrUnsupportedFormat
	}
}

// randomName returns 16 hex characters followed by ext
func randomName(ext string) (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}
	return hex.EncodeToString(b) + ext, nil
}
