package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa un material almacenado con código único y saldo disponible.
// Quantity solo cambia mediante entradas/salidas registradas en el libro de inventario; nunca es negativo.
type Material struct {
	ID        string
	Code      string // código único de superficie
	Name      string
	Supplier  string
	UnitPrice decimal.Decimal
	Unit      string // unidad de medida (pcs, kg, m...)
	Location  string
	ImageURL  string
	Quantity  decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanWithdraw indica si el saldo actual cubre la cantidad solicitada.
func (m *Material) CanWithdraw(qty decimal.Decimal) bool {
	return m.Quantity.GreaterThanOrEqual(qty)
}
