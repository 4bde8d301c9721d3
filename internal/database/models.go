package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the row stored in the users table
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Username     string    `bun:"username,notnull"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	ImageFile    string    `bun:"image_file,notnull"`
	// SHA-256 of the only reset token currently accepted for this user
	ResetToken *string   `bun:"reset_token"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Post is the row stored in the posts table
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID         int64     `bun:"id,pk,autoincrement"`
	Title      string    `bun:"title,notnull"`
	DatePosted time.Time `bun:"date_posted,notnull,default:current_timestamp"`
	Content    string    `bun:"content,notnull"`
	UserID     uuid.UUID `bun:"user_id,type:uuid,notnull"`

	Author *User `bun:"rel:belongs-to,join:user_id=id"`
}
