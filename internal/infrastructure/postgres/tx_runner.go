package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Obras-api/internal/application/ledger"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// El Rollback diferido cubre errores, panics y contexto vencido; tras un Commit exitoso no hace nada.
func (r *TxRunner) Run(ctx context.Context, fn func(tx ledger.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Sin cancelación: un ctx vencido no debe impedir liberar los bloqueos.
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(Repositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repositories arma el conjunto de repos sobre q (pool para lecturas, tx dentro de Run).
func Repositories(q Querier) ledger.Repos {
	return ledger.Repos{
		Materials:  NewMaterialRepository(q),
		Records:    NewInventoryRecordRepository(q),
		Activities: NewProjectActivityRepository(q),
		Projects:   NewProjectRepository(q),
		Users:      NewUserRepository(q),
	}
}
