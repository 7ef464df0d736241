package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	RecordTypeIn  = "in"  // entrada
	RecordTypeOut = "out" // salida
)

// InventoryRecord es un asiento inmutable del libro de inventario.
// Quantity siempre es positiva; el sentido lo da Type.
type InventoryRecord struct {
	ID           string
	MaterialID   string // vacío si el material se eliminó conservando el historial
	MaterialCode string // copia del código al momento del movimiento
	Type         string // in, out
	Quantity     decimal.Decimal
	OperatorID   string
	Description  string
	ProjectID    string // obligatorio en salidas, vacío en entradas
	CreatedAt    time.Time
}

// Signed devuelve la cantidad con signo (+ entrada, - salida).
func (r *InventoryRecord) Signed() decimal.Decimal {
	if r.Type == RecordTypeOut {
		return r.Quantity.Neg()
	}
	return r.Quantity
}
