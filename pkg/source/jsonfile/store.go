package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/orbitgraph/pkg/errors"
	"github.com/matzehuels/orbitgraph/pkg/network"
)

// Store serves entities and relationships from a JSON file.
type Store struct {
	path string

	mu       sync.RWMutex
	entities []network.Entity
	rels     []network.Relationship
}

// Open reads path and returns a store over its contents.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// New returns a store over in-memory records. Reload is a no-op.
func New(entities []network.Entity, rels []network.Relationship) *Store {
	return &Store{entities: entities, rels: rels}
}

// Name identifies the store in logs and hooks.
func (s *Store) Name() string {
	if s.path == "" {
		return "json:memory"
	}
	return "json:" + filepath.Base(s.path)
}

// Reload re-reads the backing file.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "database %s", s.path)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeSourceUnavailable, err, "read %s", s.path)
	}

	entities, rels, err := decode(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", s.path)
	}

	s.mu.Lock()
	s.entities, s.rels = entities, rels
	s.mu.Unlock()
	return nil
}

// ListEntities implements [network.Source].
func (s *Store) ListEntities(ctx context.Context) ([]network.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]network.Entity(nil), s.entities...), nil
}

// ListRelationships implements [network.Source]. Endpoint names are resolved
// against the stored entities.
func (s *Store) ListRelationships(ctx context.Context, w network.Window) ([]network.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.ValidateWindow(w.Start, w.End); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return network.ResolveNames(s.entities, w.Filter(s.rels)), nil
}

// AllRelationships returns every stored relationship regardless of time,
// with endpoint names resolved.
func (s *Store) AllRelationships(ctx context.Context) ([]network.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return network.ResolveNames(s.entities, s.rels), nil
}

// TimeRange implements [network.Ranger].
func (s *Store) TimeRange(ctx context.Context) (min, max time.Time, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	min, max, ok = network.Span(s.rels)
	return min, max, ok, nil
}

// Search implements [network.Searcher].
func (s *Store) Search(ctx context.Context, query string, limit int) ([]network.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return network.SearchEntities(s.entities, query, limit), nil
}

// Entity returns the entity with the given id.
func (s *Store) Entity(ctx context.Context, id int64) (network.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entities {
		if e.ID == id {
			return e, nil
		}
	}
	return network.Entity{}, errors.New(errors.ErrCodeNotFound, "entity %d", id)
}

var (
	_ network.Source   = (*Store)(nil)
	_ network.Ranger   = (*Store)(nil)
	_ network.Searcher = (*Store)(nil)
)

// =============================================================================
// Decoding
// =============================================================================

// database is the union of both accepted file layouts.
type database struct {
	People        []map[string]json.RawMessage `json:"people"`
	Relationships []json.RawMessage            `json:"relationships"`
	Entities      []network.Entity             `json:"entities"`
}

type relationshipRecord struct {
	ID             int64    `json:"id"`
	Person1        *int64   `json:"person1_id"`
	Person2        *int64   `json:"person2_id"`
	SourceID       *int64   `json:"source_id"`
	TargetID       *int64   `json:"target_id"`
	Type           string   `json:"relationship_type"`
	Strength       *float64 `json:"strength"`
	Classification string   `json:"classification"`
	Start          string   `json:"start_time"`
	End            *string  `json:"end_time"`
}

func decode(data []byte) ([]network.Entity, []network.Relationship, error) {
	var db database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, nil, err
	}

	entities := db.Entities
	for i, p := range db.People {
		e, err := decodePerson(p)
		if err != nil {
			return nil, nil, fmt.Errorf("people[%d]: %w", i, err)
		}
		entities = append(entities, e)
	}

	rels := make([]network.Relationship, 0, len(db.Relationships))
	for i, raw := range db.Relationships {
		var rec relationshipRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, nil, fmt.Errorf("relationships[%d]: %w", i, err)
		}
		r, err := rec.relationship()
		if err != nil {
			return nil, nil, fmt.Errorf("relationships[%d]: %w", i, err)
		}
		rels = append(rels, r)
	}
	return entities, rels, nil
}

var personFields = map[string]bool{
	"id": true, "name": true, "email": true, "faction": true, "risk_level": true,
}

func decodePerson(fields map[string]json.RawMessage) (network.Entity, error) {
	var e network.Entity
	if err := unmarshalField(fields, "id", &e.ID); err != nil {
		return e, err
	}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"name", &e.Name},
		{"email", &e.Email},
		{"faction", &e.Faction},
		{"risk_level", &e.RiskLevel},
	} {
		if err := unmarshalField(fields, f.key, f.dst); err != nil {
			return e, err
		}
	}

	for k, raw := range fields {
		if personFields[k] {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil || v == nil {
			continue
		}
		if e.Attributes == nil {
			e.Attributes = make(map[string]string)
		}
		if s, ok := v.(string); ok {
			e.Attributes[k] = s
		} else {
			e.Attributes[k] = string(raw)
		}
	}
	return e, nil
}

// unmarshalField decodes fields[key] into dst; absent and null leave dst unset.
func unmarshalField(fields map[string]json.RawMessage, key string, dst any) error {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %s: %w", key, err)
	}
	return nil
}

func (rec relationshipRecord) relationship() (network.Relationship, error) {
	r := network.Relationship{
		ID:             rec.ID,
		Type:           rec.Type,
		Strength:       rec.Strength,
		Classification: rec.Classification,
	}
	switch {
	case rec.Person1 != nil && rec.Person2 != nil:
		r.SourceID, r.TargetID = *rec.Person1, *rec.Person2
	case rec.SourceID != nil && rec.TargetID != nil:
		r.SourceID, r.TargetID = *rec.SourceID, *rec.TargetID
	default:
		return r, fmt.Errorf("relationship %d has no endpoints", rec.ID)
	}

	start, err := network.ParseTime(rec.Start)
	if err != nil {
		return r, err
	}
	r.Start = start
	if rec.End != nil && *rec.End != "" {
		end, err := network.ParseTime(*rec.End)
		if err != nil {
			return r, err
		}
		r.End = &end
	}
	return r, nil
}
