package post

import (
	"time"

	"github.com/google/uuid"
)

// Author is the slice of the user record shown next to a post
type Author struct {
	ID        uuid.UUID
	Username  string
	ImageFile string
}

type Post struct {
	ID         int64
	Title      string
	DatePosted time.Time
	Content    string
	Author     Author
}
