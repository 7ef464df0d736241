package repository

import (
	"context"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MaterialRepository define el puerto de persistencia para Material (DIP).
// Los métodos de lectura devuelven (nil, nil) cuando el material no existe.
type MaterialRepository interface {
	Create(ctx context.Context, material *entity.Material) error
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	GetByCode(ctx context.Context, code string) (*entity.Material, error)
	// GetForUpdate bloquea la fila en exclusiva hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Material, error)
	// Update modifica solo campos descriptivos; nunca la cantidad.
	Update(ctx context.Context, material *entity.Material) error
	UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, search string, limit, offset int) ([]*entity.Material, int, error)
	ListBelow(ctx context.Context, threshold decimal.Decimal) ([]*entity.Material, error)
}
