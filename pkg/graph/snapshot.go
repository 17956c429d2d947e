package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/matzehuels/orbitgraph/pkg/cache"
	"github.com/matzehuels/orbitgraph/pkg/errors"
	"github.com/matzehuels/orbitgraph/pkg/network"
)

// =============================================================================
// Snapshot - Network State for One Time Window
// =============================================================================

// Snapshot is the set of entities and relationships fetched for one window.
type Snapshot struct {
	ID            string                 `json:"id,omitempty" bson:"id,omitempty"`
	Window        *network.Window        `json:"window,omitempty" bson:"window,omitempty"`
	Entities      []network.Entity       `json:"entities" bson:"entities"`
	Relationships []network.Relationship `json:"relationships" bson:"relationships"`
}

// NewSnapshot builds a snapshot with a fresh random ID.
func NewSnapshot(entities []network.Entity, rels []network.Relationship, w *network.Window) Snapshot {
	return Snapshot{
		ID:            uuid.NewString(),
		Window:        w,
		Entities:      entities,
		Relationships: rels,
	}
}

// Empty reports whether the snapshot has no entities.
func (s Snapshot) Empty() bool { return len(s.Entities) == 0 }

// Hash returns a content hash of the entities and relationships. The ID and
// window are excluded so identical content fetched twice hashes the same.
func (s Snapshot) Hash() string {
	data, _ := json.Marshal(struct {
		Entities      []network.Entity       `json:"e"`
		Relationships []network.Relationship `json:"r"`
	}{s.Entities, s.Relationships})
	return cache.Hash(data)
}

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// MarshalSnapshot serializes a snapshot to pretty-printed JSON.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// UnmarshalSnapshot decodes a snapshot. Missing slices decode as empty.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	return s, nil
}

// ReadSnapshot decodes a snapshot from r.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	return UnmarshalSnapshot(data)
}

// ReadSnapshotFile reads a snapshot from a JSON file.
func ReadSnapshotFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Snapshot{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "snapshot %s", path)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalSnapshot(data)
}

// WriteSnapshotFile writes a snapshot to a JSON file.
func WriteSnapshotFile(s Snapshot, path string) error {
	data, err := MarshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
