// Package account updates a logged-in user's profile.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-blog/internal/avatar"
	"github.com/redmonkez12/go-blog/internal/user"
)

// ErrPictureStore wraps every failure to store an uploaded picture
var ErrPictureStore = errors.New("failed to save picture")

// UserRepository is the user persistence the account page needs
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, p user.Profile) error
}

// AvatarSaver stores uploaded pictures
type AvatarSaver interface {
	Save(ctx context.Context, upload avatar.Upload) (string, error)
	Remove(ctx context.Context, name string)
}

type Service struct {
	users   UserRepository
	avatars AvatarSaver
}

func NewService(users UserRepository, avatars AvatarSaver) *Service {
	return &Service{users: users, avatars: avatars}
}

// UpdateInput is a submitted account form
type UpdateInput struct {
	Username string
	Email    string
	Picture  *avatar.Upload
}

// ByUsername looks a user up by name
func (s *Service) ByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// CheckAvailable reports which changed fields collide with another account.
// Unchanged values are never reported.
func (s *Service) CheckAvailable(ctx context.Context, current *user.User, username, email string) error {
	var errs []error

	if username != current.Username {
		taken, err := s.users.UsernameExists(ctx, username)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			errs = append(errs, user.ErrDuplicateUsername)
		}
	}

	if email != current.Email {
		taken, err := s.users.EmailExists(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			errs = append(errs, user.ErrDuplicateEmail)
		}
	}

	return errors.Join(errs...)
}

// Update overwrites username and email, replacing the avatar when a picture
// is supplied, and returns the stored user
func (s *Service) Update(ctx context.Context, userID uuid.UUID, in UpdateInput) (*user.User, error) {
	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.CheckAvailable(ctx, current, in.Username, in.Email); err != nil {
		return nil, err
	}

	profile := user.Profile{
		Username:  in.Username,
		Email:     in.Email,
		ImageFile: current.ImageFile,
	}

	if in.Picture != nil {
		name, err := s.avatars.Save(ctx, *in.Picture)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPictureStore, err)
		}
		profile.ImageFile = name
	}

	// Unique constraints still apply if another account raced us
	if err := s.users.UpdateProfile(ctx, userID, profile); err != nil {
		if profile.ImageFile != current.ImageFile {
			s.avatars.Remove(ctx, profile.ImageFile)
		}
		return nil, err
	}

	// The old file goes only once the row points at the new one
	if profile.ImageFile != current.ImageFile {
		s.avatars.Remove(ctx, current.ImageFile)
	}

	current.Username = profile.Username
	current.Email = profile.Email
	current.ImageFile = profile.ImageFile
	return current, nil
}
