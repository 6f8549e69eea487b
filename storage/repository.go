// Package storage provides the persistence abstraction for users and posts.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jmcleod/postit/postit"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("record already exists")
)

// PostFilter narrows a post listing. Zero values mean "no constraint".
// Cursor is keyset-based: only posts created strictly before it are
// returned, newest first.
type PostFilter struct {
	AuthorID string
	Status   postit.PostStatus
	Cursor   time.Time
	Limit    int
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user postit.User) error
	GetUser(ctx context.Context, id string) (postit.User, error)
	GetUserByUsername(ctx context.Context, username string) (postit.User, error)
	UpdateUser(ctx context.Context, user postit.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context, limit, offset int) (users []postit.User, total int, err error)
}

// PostStore persists posts.
type PostStore interface {
	CreatePost(ctx context.Context, post postit.Post) error
	GetPost(ctx context.Context, id string) (postit.Post, error)
	// ListPosts returns posts matching filter ordered by created_at
	// descending, at most filter.Limit of them.
	ListPosts(ctx context.Context, filter PostFilter) ([]postit.Post, error)
	CountPostsByAuthor(ctx context.Context, authorID string) (int, error)
	UpdatePost(ctx context.Context, post postit.Post) error
	DeletePost(ctx context.Context, id string) error
	// MassUpdateStatus moves every post currently in from to to,
	// returning how many were changed.
	MassUpdateStatus(ctx context.Context, from, to postit.PostStatus) (int64, error)
	DeletePostsByStatus(ctx context.Context, status postit.PostStatus) (int64, error)
}

// Store bundles both repositories; backends implement it as a unit so the
// server wires a single value.
type Store interface {
	UserStore
	PostStore
}
