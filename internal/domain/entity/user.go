package entity

import "strings"

// Role capacidad de un usuario dentro de la aplicación (enumeración cerrada).
type Role string

// Roles válidos.
const (
	RoleSystemAdmin          Role = "system_admin"
	RoleProjectManager       Role = "project_manager"
	RoleProductionSpecialist Role = "production_specialist"
	RoleInventoryManager     Role = "inventory_manager"
)

var validRoles = map[Role]struct{}{
	RoleSystemAdmin:          {},
	RoleProjectManager:       {},
	RoleProductionSpecialist: {},
	RoleInventoryManager:     {},
}

// Valid indica si el rol pertenece a la enumeración.
func (r Role) Valid() bool {
	_, ok := validRoles[r]
	return ok
}

// ParseRole normaliza s y devuelve el rol; ok=false si no es un rol conocido.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// ParseRoles filtra los valores desconocidos.
func ParseRoles(values []string) []Role {
	out := make([]Role, 0, len(values))
	for _, v := range values {
		if r, ok := ParseRole(v); ok {
			out = append(out, r)
		}
	}
	return out
}

// User datos de un usuario que el inventario necesita para atribuir movimientos.
type User struct {
	ID       string
	Username string
	FullName string
}

// DisplayName nombre a mostrar; usa el username si no hay nombre completo.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
