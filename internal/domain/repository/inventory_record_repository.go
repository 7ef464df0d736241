package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RecordFilter filtros para listar asientos del libro de inventario.
type RecordFilter struct {
	MaterialID string
}

// InventoryRecordView asiento enriquecido con nombres para mostrar.
type InventoryRecordView struct {
	ID           string
	Type         string
	Quantity     decimal.Decimal
	Description  string
	CreatedAt    time.Time
	MaterialID   string
	MaterialCode string
	MaterialName string
	OperatorID   string
	OperatorName string
	ProjectID    string
	ProjectName  string
}

// InventoryRecordRepository define el puerto de persistencia del libro de inventario.
// Los asientos son de solo inserción; DeleteByMaterial y DetachMaterial solo se usan al eliminar un material.
type InventoryRecordRepository interface {
	Create(ctx context.Context, record *entity.InventoryRecord) error
	List(ctx context.Context, filter RecordFilter, limit, offset int) ([]InventoryRecordView, int, error)
	DeleteByMaterial(ctx context.Context, materialID string) error
	DetachMaterial(ctx context.Context, materialID string) error
	CountByOperator(ctx context.Context, operatorID, recordType string) (int, error)
}
