// Package prefs stores the site-wide administrator preferences. Absent
// preferences mean everything is enabled; flags only exist to switch
// features off.
package prefs

import "context"

// Key is the cache key the preferences JSON blob is stored under.
const Key = "post_it__preferences"

// Preferences are the admin-controlled feature switches.
type Preferences struct {
	IsAuthEnabled       bool `json:"isAuthEnabled"`
	IsPostCreateEnabled bool `json:"isPostCreateEnabled"`
}

// Defaults returns the all-enabled preferences used when none are stored.
func Defaults() Preferences {
	return Preferences{IsAuthEnabled: true, IsPostCreateEnabled: true}
}

// Store reads and writes preferences.
type Store interface {
	// Get returns the stored preferences, or Defaults() when none exist.
	Get(ctx context.Context) (Preferences, error)
	Set(ctx context.Context, p Preferences) error
}
