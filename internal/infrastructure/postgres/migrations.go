package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema crea las tablas si no existen. Idempotente; se ejecuta en orden por dependencias.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		username   TEXT NOT NULL UNIQUE,
		full_name  TEXT NOT NULL DEFAULT '',
		role       TEXT NOT NULL CHECK (role IN ('system_admin', 'project_manager', 'production_specialist', 'inventory_manager')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		manager_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS project_inventory_managers (
		project_id           TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		inventory_manager_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		assigned_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (project_id, inventory_manager_id)
	)`,
	`CREATE TABLE IF NOT EXISTS materials (
		id         TEXT PRIMARY KEY,
		code       TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		supplier   TEXT NOT NULL DEFAULT '',
		unit_price NUMERIC(14,2) NOT NULL CHECK (unit_price > 0),
		unit       TEXT NOT NULL,
		location   TEXT NOT NULL DEFAULT '',
		image_url  TEXT NOT NULL DEFAULT '',
		quantity   NUMERIC(14,3) NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_records (
		id            TEXT PRIMARY KEY,
		material_id   TEXT REFERENCES materials(id) ON DELETE SET NULL,
		material_code TEXT NOT NULL,
		type          TEXT NOT NULL CHECK (type IN ('in', 'out')),
		quantity      NUMERIC(14,3) NOT NULL CHECK (quantity > 0),
		operator_id   TEXT NOT NULL REFERENCES users(id),
		description   TEXT NOT NULL DEFAULT '',
		project_id    TEXT REFERENCES projects(id),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (type = 'in' OR project_id IS NOT NULL)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_records_material ON inventory_records (material_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_records_operator ON inventory_records (operator_id, type)`,
	`CREATE TABLE IF NOT EXISTS project_activities (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id     TEXT NOT NULL REFERENCES users(id),
		type        TEXT NOT NULL,
		description TEXT NOT NULL,
		related_id  TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_project_activities_project ON project_activities (project_id, created_at DESC)`,
}

// RunMigrations aplica el esquema en una sola transacción.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migrations: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	for i, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}
