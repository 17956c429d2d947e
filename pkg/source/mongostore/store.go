// Package mongostore implements [network.Source] over MongoDB.
//
// Entities live in the "people" collection and relationships in
// "relationships", using the bson field names of [network.Entity] and
// [network.Relationship]. Window filtering runs on the server:
//
//	start_time <= end AND (end_time is null OR end_time >= lower)
//
// where lower is the window start, or the window end for "as of" queries.
package mongostore

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/orbitgraph/pkg/errors"
	"github.com/matzehuels/orbitgraph/pkg/network"
)

// Collection names.
const (
	PeopleCollection        = "people"
	RelationshipsCollection = "relationships"
)

// Store reads entities and relationships from a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	people *mongo.Collection
	rels   *mongo.Collection
}

// Connect dials uri, verifies the connection and opens database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	if err := errors.ValidateMongoURI(uri); err != nil {
		return nil, err
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "ping mongo")
	}
	s := New(client.Database(database))
	s.client = client
	return s, nil
}

// New wraps an open database. Close does not disconnect its client.
func New(db *mongo.Database) *Store {
	return &Store{
		db:     db,
		people: db.Collection(PeopleCollection),
		rels:   db.Collection(RelationshipsCollection),
	}
}

// Name identifies the store in logs and hooks.
func (s *Store) Name() string { return "mongo:" + s.db.Name() }

// Close disconnects the client opened by [Connect].
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// ListEntities implements [network.Source].
func (s *Store) ListEntities(ctx context.Context) ([]network.Entity, error) {
	cur, err := s.people.Find(ctx, bson.M{}, options.Find().SetSort(byID))
	if err != nil {
		return nil, unavailable(err, "find people")
	}
	var out []network.Entity
	if err := cur.All(ctx, &out); err != nil {
		return nil, unavailable(err, "decode people")
	}
	return out, nil
}

// ListRelationships implements [network.Source].
func (s *Store) ListRelationships(ctx context.Context, w network.Window) ([]network.Relationship, error) {
	if err := errors.ValidateWindow(w.Start, w.End); err != nil {
		return nil, err
	}
	cur, err := s.rels.Find(ctx, WindowFilter(w), options.Find().SetSort(byID))
	if err != nil {
		return nil, unavailable(err, "find relationships")
	}
	var rels []network.Relationship
	if err := cur.All(ctx, &rels); err != nil {
		return nil, unavailable(err, "decode relationships")
	}

	entities, err := s.ListEntities(ctx)
	if err != nil {
		return nil, err
	}
	return network.ResolveNames(entities, rels), nil
}

// TimeRange implements [network.Ranger].
func (s *Store) TimeRange(ctx context.Context) (min, max time.Time, ok bool, err error) {
	cur, err := s.rels.Aggregate(ctx, TimeRangePipeline())
	if err != nil {
		return min, max, false, unavailable(err, "aggregate time range")
	}
	var rows []struct {
		Min      time.Time `bson:"min"`
		MaxStart time.Time `bson:"max_start"`
		MaxEnd   time.Time `bson:"max_end"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return min, max, false, unavailable(err, "decode time range")
	}
	if len(rows) == 0 {
		return min, max, false, nil
	}
	max = rows[0].MaxEnd
	if rows[0].MaxStart.After(max) {
		max = rows[0].MaxStart
	}
	return rows[0].Min, max, true, nil
}

// Search implements [network.Searcher].
func (s *Store) Search(ctx context.Context, query string, limit int) ([]network.Entity, error) {
	if limit <= 0 {
		limit = network.DefaultSearchLimit
	}
	cur, err := s.people.Find(ctx, SearchFilter(query), options.Find().SetLimit(int64(limit)).SetSort(byID))
	if err != nil {
		return nil, unavailable(err, "search people")
	}
	var out []network.Entity
	if err := cur.All(ctx, &out); err != nil {
		return nil, unavailable(err, "decode people")
	}
	return out, nil
}

// Import inserts entities and relationships, skipping duplicates of
// existing documents. It returns the number of inserted documents.
func (s *Store) Import(ctx context.Context, entities []network.Entity, rels []network.Relationship) (int, error) {
	n := 0
	if len(entities) > 0 {
		docs := make([]any, len(entities))
		for i, e := range entities {
			docs[i] = e
		}
		res, err := s.people.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
		if res != nil {
			n += len(res.InsertedIDs)
		}
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return n, unavailable(err, "insert people")
		}
	}
	if len(rels) > 0 {
		docs := make([]any, len(rels))
		for i, r := range rels {
			docs[i] = r
		}
		res, err := s.rels.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
		if res != nil {
			n += len(res.InsertedIDs)
		}
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return n, unavailable(err, "insert relationships")
		}
	}
	return n, nil
}

// EnsureIndexes creates the unique id indexes and the start_time index used
// by window queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	if _, err := s.people.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: byID, Options: unique}); err != nil {
		return unavailable(err, "index people")
	}
	_, err := s.rels.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: byID, Options: unique},
		{Keys: bson.D{{Key: "start_time", Value: 1}, {Key: "end_time", Value: 1}}},
	})
	if err != nil {
		return unavailable(err, "index relationships")
	}
	return nil
}

var (
	_ network.Source   = (*Store)(nil)
	_ network.Ranger   = (*Store)(nil)
	_ network.Searcher = (*Store)(nil)
)

// =============================================================================
// Query Builders
// =============================================================================

var byID = bson.D{{Key: "id", Value: 1}}

// WindowFilter returns the relationship filter for w. A missing or null
// end_time counts as open-ended.
func WindowFilter(w network.Window) bson.M {
	lower := w.End
	if w.Start != nil {
		lower = *w.Start
	}
	return bson.M{
		"start_time": bson.M{"$lte": w.End},
		"$or": bson.A{
			bson.M{"end_time": nil},
			bson.M{"end_time": bson.M{"$gte": lower}},
		},
	}
}

// SearchFilter matches name or email containing query, ignoring case.
func SearchFilter(query string) bson.M {
	pattern := bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
	return bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"email": pattern},
	}}
}

// TimeRangePipeline aggregates the earliest start, the latest start and the
// latest end (open-ended relationships contribute their start).
func TimeRangePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "min", Value: bson.M{"$min": "$start_time"}},
			{Key: "max_start", Value: bson.M{"$max": "$start_time"}},
			{Key: "max_end", Value: bson.M{"$max": bson.M{"$ifNull": bson.A{"$end_time", "$start_time"}}}},
		}}},
	}
}

func unavailable(err error, op string) error {
	return errors.Wrap(errors.ErrCodeSourceUnavailable, err, "%s", op)
}
