package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	mint "github.com/xraph/mint"
	"github.com/xraph/mint/event"
	"github.com/xraph/mint/id"
	mintstore "github.com/xraph/mint/store"
)

// compile-time interface check
var _ mintstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("mint/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("mint/postgres: migration failed: %w", err)
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
	if _, err := s.pg.NewInsert(&models).Exec(ctx); err != nil {
		// A concurrent writer may have claimed the range between the
		// check and the insert, surfacing as a constraint error.
		if cur, lastErr := s.LastSequence(ctx); lastErr == nil && cur != expected {
			return mint.ErrSequenceConflict
		}
		return fmt.Errorf("mint/postgres: append events: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, eventID id.EventID) (*event.Event, error) {
	m := new(eventModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", eventID.String()).
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
	q := s.pg.NewSelect(&models).
		Where("sequence >= $1", from).
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
	q := s.pg.NewSelect(&models)

	argIdx := 0
	if len(opts.Kinds) > 0 {
		placeholders := make([]string, len(opts.Kinds))
		args := make([]interface{}, len(opts.Kinds))
		for i, k := range opts.Kinds {
			argIdx++
			placeholders[i] = fmt.Sprintf("$%d", argIdx)
			args[i] = string(k)
		}
		q = q.Where(fmt.Sprintf("kind IN (%s)", strings.Join(placeholders, ", ")), args...)
	}
	if opts.Address != "" {
		cols := []string{"from_addr", "to_addr", "owner", "spender", "principal", "sender"}
		clauses := make([]string, len(cols))
		args := make([]interface{}, len(cols))
		for i, col := range cols {
			argIdx++
			clauses[i] = fmt.Sprintf("%s = $%d", col, argIdx)
			args[i] = string(opts.Address)
		}
		q = q.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	if opts.FromSequence > 0 {
		argIdx++
		q = q.Where(fmt.Sprintf("sequence >= $%d", argIdx), opts.FromSequence)
	}
	if opts.ToSequence > 0 {
		argIdx++
		q = q.Where(fmt.Sprintf("sequence <= $%d", argIdx), opts.ToSequence)
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
	err := s.pg.NewRaw(`SELECT COALESCE(MAX(sequence), 0) FROM mint_events`).Scan(ctx, &last)
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
