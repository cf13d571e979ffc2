// Package store is the document persistence layer for users and posts.
//
// The interfaces mirror the operations the handlers need: save, lookup by
// key, atomic increment-on-read for the view counter, full-field update,
// and delete-by-id. Implementations: SQLite (production) and an in-memory
// map store (tests).
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record is absent.
var ErrNotFound = errors.New("not found")

// User is a credential record plus public profile fields. The password
// hash never serializes.
type User struct {
	ID           string    `json:"_id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Post is a blog entry with its author embedded as a public profile.
type Post struct {
	ID         string    `json:"_id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Tags       []string  `json:"tags"`
	ViewsCount int       `json:"viewsCount"`
	User       *User     `json:"user"`
	UserID     string    `json:"-"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PostUpdate carries the full replacement field set for UpdateOne.
// The author is reassigned to UserID; there is no ownership check.
type PostUpdate struct {
	Title    string
	Text     string
	Tags     []string
	ImageURL string
	UserID   string
}

// Users is the credential-record store.
type Users interface {
	// Save inserts a new user. Duplicate emails fail.
	Save(ctx context.Context, u *User) error

	// FindByEmail returns the user with the given email or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByID returns the user with the given id or ErrNotFound.
	FindByID(ctx context.Context, id string) (*User, error)
}

// Posts is the post store.
type Posts interface {
	// Save inserts a new post.
	Save(ctx context.Context, p *Post) error

	// Find returns all posts in insertion order, authors embedded.
	Find(ctx context.Context) ([]Post, error)

	// FindOneAndIncViews atomically increments the view counter of the
	// post and returns the updated document, or ErrNotFound.
	FindOneAndIncViews(ctx context.Context, id string) (*Post, error)

	// UpdateOne replaces the mutable fields of the post. A missing id is
	// not an error, matching the update contract.
	UpdateOne(ctx context.Context, id string, upd PostUpdate) error

	// FindByIDAndDelete removes the post or returns ErrNotFound.
	FindByIDAndDelete(ctx context.Context, id string) error
}
