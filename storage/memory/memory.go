// Package memory implements storage.Store with in-process maps. It backs
// tests and development runs; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jmcleod/postit/postit"
	"github.com/jmcleod/postit/storage"
)

// Store is a thread-safe in-memory storage.Store.
type Store struct {
	mu    sync.RWMutex
	users map[string]postit.User
	posts map[string]postit.Post
}

var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users: make(map[string]postit.User),
		posts: make(map[string]postit.Post),
	}
}

// ---------------------------------------------------------------------------
// UserStore
// ---------------------------------------------------------------------------

func (s *Store) CreateUser(_ context.Context, user postit.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return storage.ErrDuplicate
	}
	for _, u := range s.users {
		if u.Username == user.Username {
			return storage.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (postit.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return postit.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (postit.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return postit.User{}, storage.ErrNotFound
}

func (s *Store) UpdateUser(_ context.Context, user postit.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return storage.ErrNotFound
	}
	for id, u := range s.users {
		if id != user.ID && u.Username == user.Username {
			return storage.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) ListUsers(_ context.Context, limit, offset int) ([]postit.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]postit.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// ---------------------------------------------------------------------------
// PostStore
// ---------------------------------------------------------------------------

func (s *Store) CreatePost(_ context.Context, post postit.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[post.ID]; ok {
		return storage.ErrDuplicate
	}
	s.posts[post.ID] = post
	return nil
}

func (s *Store) GetPost(_ context.Context, id string) (postit.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return postit.Post{}, storage.ErrNotFound
	}
	return post, nil
}

func (s *Store) ListPosts(_ context.Context, filter storage.PostFilter) ([]postit.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]postit.Post, 0)
	for _, p := range s.posts {
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if !filter.Cursor.IsZero() && !p.CreatedAt.Before(filter.Cursor) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *Store) CountPostsByAuthor(_ context.Context, authorID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, p := range s.posts {
		if p.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

func (s *Store) UpdatePost(_ context.Context, post postit.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[post.ID]; !ok {
		return storage.ErrNotFound
	}
	s.posts[post.ID] = post
	return nil
}

func (s *Store) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *Store) MassUpdateStatus(_ context.Context, from, to postit.PostStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed int64
	for id, p := range s.posts {
		if p.Status == from {
			p.Status = to
			s.posts[id] = p
			changed++
		}
	}
	return changed, nil
}

func (s *Store) DeletePostsByStatus(_ context.Context, status postit.PostStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, p := range s.posts {
		if p.Status == status {
			delete(s.posts, id)
			deleted++
		}
	}
	return deleted, nil
}
