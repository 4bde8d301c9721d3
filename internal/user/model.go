package user

import (
	"time"

	"github.com/google/uuid"
)

// DefaultImageFile is the placeholder avatar every account starts with
const DefaultImageFile = "default.jpg"

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose password hash in JSON
	ImageFile    string    `json:"image_file"`
	ResetToken   *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile holds the fields the account page may change
type Profile struct {
	Username  string
	Email     string
	ImageFile string
}
