package entity

import "time"

// Tipos de actividad de proyecto generadas por el inventario.
const (
	ActivityTypeMaterialStockOut = "material_stock_out"
)

// ProjectActivity evento legible de la línea de tiempo de un proyecto.
// Las actividades de inventario se crean solo como efecto de una salida confirmada.
type ProjectActivity struct {
	ID          string
	ProjectID   string
	UserID      string
	Type        string
	Description string
	RelatedID   string // asiento de inventario que originó la actividad
	CreatedAt   time.Time
}

// Project datos mínimos de un proyecto que el inventario necesita leer.
type Project struct {
	ID        string
	Name      string
	ManagerID string
}
