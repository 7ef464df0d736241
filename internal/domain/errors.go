package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrPersistence       = errors.New("fallo de persistencia")
)

// Tipos de error estables expuestos a los clientes.
const (
	KindValidation        = "VALIDATION"
	KindNotFound          = "NOT_FOUND"
	KindConflict          = "CONFLICT"
	KindUnauthorized      = "UNAUTHORIZED"
	KindForbidden         = "FORBIDDEN"
	KindInsufficientStock = "INSUFFICIENT_STOCK"
	KindPersistence       = "PERSISTENCE"
)

// Kind clasifica err dentro de la taxonomía de dominio.
// Cualquier error que no sea de dominio se considera de persistencia.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrInsufficientStock):
		return KindInsufficientStock
	default:
		return KindPersistence
	}
}

// IsBusiness indica si err pertenece a la taxonomía de negocio (no infraestructura).
func IsBusiness(err error) bool {
	k := Kind(err)
	return k != "" && k != KindPersistence
}
