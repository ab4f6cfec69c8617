package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	mint "github.com/xraph/mint"
	"github.com/xraph/mint/event"
	"github.com/xraph/mint/id"
	mintstore "github.com/xraph/mint/store"
)

// compile-time interface check
var _ mintstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("mint/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("mint/sqlite: migration failed: %w", err)
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
// journal assumes one writer; the sequence primary key backstops an
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

	models := make([]eventModel, len(events))
	for i, e := range events {
		models[i] = *toEventModel(e)
	}
	if _, err := s.sdb.NewInsert(&models).Exec(ctx); err != nil {
		// A concurrent writer may have claimed the range between the
		// check and the insert, surfacing as a constraint error.
		if cur, lastErr := s.LastSequence(ctx); lastErr == nil && cur != expected {
			return mint.ErrSequenceConflict
		}
		return fmt.Errorf("mint/sqlite: append events: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, eventID id.EventID) (*event.Event, error) {
	m := new(eventModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", eventID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, mint.ErrEventNotFound
		}
		return nil, err
	}
	return fromEventModel(m)
}

func (s *Store) Read(ctx context.Context, from uint64, limit int) ([]*event.Event, error) {
	var models []eventModel
	q := s.sdb.NewSelect(&models).
		Where("sequence >= ?", from).
		OrderExpr("sequence ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return fromEventModels(models)
}

func (s *Store) Query(ctx context.Context, opts event.QueryOpts) ([]*event.Event, error) {
	var models []eventModel
	q := s.sdb.NewSelect(&models)

	if len(opts.Kinds) > 0 {
		args := make([]interface{}, len(opts.Kinds))
		for i, k := range opts.Kinds {
			args[i] = string(k)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
		q = q.Where(fmt.Sprintf("kind IN (%s)", placeholders), args...)
	}
	if opts.Address != "" {
		addr := string(opts.Address)
		q = q.Where(
			"(from_addr = ? OR to_addr = ? OR owner = ? OR spender = ? OR principal = ? OR sender = ?)",
			addr, addr, addr, addr, addr, addr,
		)
	}
	if opts.FromSequence > 0 {
		q = q.Where("sequence >= ?", opts.FromSequence)
	}
	if opts.ToSequence > 0 {
		q = q.Where("sequence <= ?", opts.ToSequence)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("sequence ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return fromEventModels(models)
}

func (s *Store) LastSequence(ctx context.Context) (uint64, error) {
	var last uint64
	err := s.sdb.NewRaw(`SELECT COALESCE(MAX(sequence), 0) FROM mint_events`).Scan(ctx, &last)
	if err != nil {
		return 0, err
	}
	return last, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
