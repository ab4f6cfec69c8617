package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	mint "github.com/xraph/mint"
	"github.com/xraph/mint/event"
	"github.com/xraph/mint/id"
	mintstore "github.com/xraph/mint/store"
)

// Collection name constants.
const (
	colEvents = "mint_events"
)

// compile-time interface check
var _ mintstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for the journal collection.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("mint/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Journal Store ====================

// Append writes a batch of events at sequences expected+1 onward. The
// journal assumes one writer; the _id (sequence) key backstops an
// accidental second one.
func (s *Store) Append(ctx context.Context, expected uint64, events []*event.Event) error {
	if len(events) == 0 {
		return nil
	}

	last, err := s.LastSequence(ctx)
	if err != nil {
		return err
	}
	if last != expected {
		return mint.ErrSequenceConflict
	}

	for i, e := range events {
		m := toEventModel(e)
		if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
			// A partial batch must not survive on disk.
			if i > 0 {
				//nolint:errcheck // best-effort cleanup
				_, _ = s.mdb.NewDelete((*eventModel)(nil)).
					Filter(bson.M{"_id": bson.M{"$gt": expected, "$lt": e.Sequence}}).
					Exec(ctx)
			}
			if mongo.IsDuplicateKeyError(err) {
				return mint.ErrSequenceConflict
			}
			return fmt.Errorf("mint/mongo: append event: %w", err)
		}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, eventID id.EventID) (*event.Event, error) {
	var m eventModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"id": eventID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, mint.ErrEventNotFound
		}
		return nil, fmt.Errorf("mint/mongo: get event: %w", err)
	}
	return fromEventModel(&m)
}

func (s *Store) Read(ctx context.Context, from uint64, limit int) ([]*event.Event, error) {
	var models []eventModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{"_id": bson.M{"$gte": from}}).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if limit > 0 {
		q = q.Limit(int64(limit))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("mint/mongo: read events: %w", err)
	}
	return fromEventModels(models)
}

func (s *Store) Query(ctx context.Context, opts event.QueryOpts) ([]*event.Event, error) {
	var models []eventModel

	filter := bson.M{}
	if len(opts.Kinds) > 0 {
		kinds := make([]string, len(opts.Kinds))
		for i, k := range opts.Kinds {
			kinds[i] = string(k)
		}
		filter["kind"] = bson.M{"$in": kinds}
	}
	if opts.Address != "" {
		addr := string(opts.Address)
		filter["$or"] = bson.A{
			bson.M{"from_addr": addr},
			bson.M{"to_addr": addr},
			bson.M{"owner": addr},
			bson.M{"spender": addr},
			bson.M{"principal": addr},
			bson.M{"sender": addr},
		}
	}
	if opts.FromSequence > 0 || opts.ToSequence > 0 {
		seq := bson.M{}
		if opts.FromSequence > 0 {
			seq["$gte"] = opts.FromSequence
		}
		if opts.ToSequence > 0 {
			seq["$lte"] = opts.ToSequence
		}
		filter["_id"] = seq
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("mint/mongo: query events: %w", err)
	}
	return fromEventModels(models)
}

func (s *Store) LastSequence(ctx context.Context) (uint64, error) {
	var m eventModel
	err := s.mdb.NewFind(&m).
		Sort(bson.D{{Key: "_id", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("mint/mongo: last sequence: %w", err)
	}
	return m.Sequence, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for the journal collection.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colEvents: {
			{
				Keys:    bson.D{{Key: "id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "_id", Value: 1}}},
		},
	}
}
