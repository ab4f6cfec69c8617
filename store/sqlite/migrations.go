package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Mint journal (SQLite).
var Migrations = migrate.NewGroup("mint")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_mint_events",
			Version: "20260101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS mint_events (
    sequence   INTEGER PRIMARY KEY,
    id         TEXT NOT NULL DEFAULT '',
    kind       TEXT NOT NULL DEFAULT '',
    from_addr  TEXT NOT NULL DEFAULT '',
    to_addr    TEXT NOT NULL DEFAULT '',
    owner      TEXT NOT NULL DEFAULT '',
    spender    TEXT NOT NULL DEFAULT '',
    role       TEXT NOT NULL DEFAULT '',
    principal  TEXT NOT NULL DEFAULT '',
    sender     TEXT NOT NULL DEFAULT '',
    amount     TEXT NOT NULL DEFAULT '0',
    prev       TEXT NOT NULL DEFAULT '0',
    timestamp  TEXT NOT NULL DEFAULT (datetime('now')),
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_mint_events_id ON mint_events (id);
CREATE INDEX IF NOT EXISTS idx_mint_events_kind ON mint_events (kind, sequence);
CREATE INDEX IF NOT EXISTS idx_mint_events_sender ON mint_events (sender, sequence);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS mint_events`)
				return err
			},
		},
	)
}
