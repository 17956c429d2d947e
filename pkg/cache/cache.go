package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys.
//
// Implementations must be safe for concurrent use. A miss is reported as
// (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default time-to-live values.
const (
	// TTLLayout applies to computed layouts. Layouts are keyed by snapshot
	// content and seed, so they only expire to bound disk usage.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered artifacts (SVG).
	TTLArtifact = 7 * 24 * time.Hour
)

// Keyer derives cache keys for pipeline stages.
type Keyer interface {
	// LayoutKey returns the key for a layout computed from a snapshot.
	LayoutKey(snapshotHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key for a rendered layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the layout parameters that affect the result.
type LayoutKeyOpts struct {
	Seed       uint64 `json:"seed"`
	Iterations int    `json:"iterations"`

	// Params is a fingerprint of the remaining force parameters.
	Params string `json:"params,omitempty"`
}

// ArtifactKeyOpts holds the render parameters that affect the output.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Labels bool    `json:"labels,omitempty"`
	FOV    float64 `json:"fov,omitempty"`
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", snapshotHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Clearer is implemented by backends that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}
