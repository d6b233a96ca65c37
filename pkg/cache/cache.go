// Package cache provides pluggable byte caching for pipeline stages.
//
// Three backends implement the same [Cache] interface:
//   - FileCache: sharded JSON files under a directory, for CLI usage
//   - RedisCache: shared cache for multi-instance server deployments
//   - NullCache: a no-op used in tests and with --no-cache
//
// Keys are produced by a [Keyer] so that every stage (generated map, layout,
// rendered artifact) caches under a stable, collision-free name derived from
// its inputs.
package cache

import (
	"context"
	"time"
)

// TTLs per pipeline stage. Generated maps are the most expensive to produce
// (a remote model call) and also the most likely to be intentionally
// regenerated, so they expire fastest.
const (
	TTLMap      = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores opaque byte values with per-entry TTL.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// MapKeyOpts are the inputs that distinguish one generated map from another.
type MapKeyOpts struct {
	MaxDepth  int
	MaxBranch int
}

// LayoutKeyOpts distinguish layout computations. The engine is currently
// parameterless beyond the tree itself, but the struct keeps the key format
// stable if tuning options appear.
type LayoutKeyOpts struct{}

// ArtifactKeyOpts distinguish rendered artifacts for the same layout.
type ArtifactKeyOpts struct {
	Format string
}

// Keyer generates cache keys for each pipeline stage.
type Keyer interface {
	// MapKey keys a generated topic tree by prompt and generation options.
	MapKey(topic string, opts MapKeyOpts) string

	// LayoutKey keys a computed layout by the hash of its source tree.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by the hash of its layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard Keyer implementation.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// MapKey generates a key for generated map caching.
func (k *DefaultKeyer) MapKey(topic string, opts MapKeyOpts) string {
	return hashKey("map", topic, opts)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

// ArtifactKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
