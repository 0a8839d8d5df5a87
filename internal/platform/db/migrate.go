package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "001_pay_runs",
		sql: `
CREATE TABLE IF NOT EXISTS pay_runs (
  id UUID PRIMARY KEY,
  period_start DATE NOT NULL,
  period_end DATE NOT NULL,
  gross_total NUMERIC(18,2) NOT NULL,
  withheld_total NUMERIC(18,2) NOT NULL,
  net_total NUMERIC(18,2) NOT NULL,
  failure_count INT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS pay_run_results (
  run_id UUID NOT NULL REFERENCES pay_runs(id) ON DELETE CASCADE,
  position INT NOT NULL,
  employee_id TEXT NOT NULL,
  employee_name TEXT NOT NULL,
  outcome TEXT NOT NULL,
  reason TEXT NOT NULL DEFAULT '',
  gross NUMERIC(18,2) NOT NULL,
  taxable_gross NUMERIC(18,2) NOT NULL,
  withheld NUMERIC(18,2) NOT NULL,
  net NUMERIC(18,2) NOT NULL,
  breakdown_json JSONB NOT NULL DEFAULT '[]',
  warnings_json JSONB NOT NULL DEFAULT '[]',
  PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_pay_run_results_employee
  ON pay_run_results (run_id, employee_id);
`,
	},
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureMigrationsTable(ctx, pool); err != nil {
		return err
	}
	for _, m := range migrations {
		applied, err := migrationApplied(ctx, pool, m.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, m.sql); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("migration %s failed: %w", m.version, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.version); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}
	return nil
}

func ensureMigrationsTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
    CREATE TABLE IF NOT EXISTS schema_migrations (
      version TEXT PRIMARY KEY,
      applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )
  `)
	return err
}

func migrationApplied(ctx context.Context, pool *pgxpool.Pool, version string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)
  `, version).Scan(&exists)
	return exists, err
}
