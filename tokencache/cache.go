// Package tokencache maps a user ID to the single currently valid auth
// token for that user. The cache, not the token signature, is the source of
// truth for session validity: writing a new token immediately invalidates
// any previously issued token for the same user, and removing the entry
// revokes the session outright.
package tokencache

import "context"

// Namespace prefixes every cache key so auth tokens can share a store with
// other application state.
const Namespace = "post_it__auth_tokens"

// Key returns the cache key for a user's auth token entry.
func Key(userID string) string {
	return Namespace + "::" + userID
}

// Cache stores the currently valid auth token per user. Implementations
// must make Put, Get and Remove individually atomic per key; there is no
// cross-operation transaction, so concurrent sign-ins resolve to
// last-writer-wins, which matches single-active-session semantics.
type Cache interface {
	// Put unconditionally overwrites the cached token for userID.
	Put(ctx context.Context, userID, token string) error
	// Get returns the cached token, or "" with found=false when absent.
	Get(ctx context.Context, userID string) (token string, found bool, err error)
	// Remove deletes the entry. Removing a missing entry is not an error.
	Remove(ctx context.Context, userID string) error
	// IsCurrent reports whether token is the cached token for userID.
	// A missing entry is never current.
	IsCurrent(ctx context.Context, userID, token string) (bool, error)
}
