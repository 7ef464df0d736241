package ledger

import (
	"context"

	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Repos agrupa los repositorios que el libro de inventario usa.
// Dentro de TxRunner.Run todos están atados a la misma transacción.
type Repos struct {
	Materials  repository.MaterialRepository
	Records    repository.InventoryRecordRepository
	Activities repository.ProjectActivityRepository
	Projects   repository.ProjectRepository
	Users      repository.UserRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en cualquier otra salida (error, panic o contexto cancelado).
// La conexión pertenece en exclusiva a la transacción y se libera al terminar.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx Repos) error) error
}

// Observer recibe notificaciones de movimientos confirmados y rechazados (métricas).
type Observer interface {
	MovementCommitted(recordType string, quantity decimal.Decimal)
	MovementRejected(recordType, kind string)
}

type noopObserver struct{}

func (noopObserver) MovementCommitted(string, decimal.Decimal) {}
func (noopObserver) MovementRejected(string, string)           {}
