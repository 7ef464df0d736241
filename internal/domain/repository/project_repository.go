package repository

import (
	"context"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// CustodianProject proyecto asignado a un responsable de inventario.
type CustodianProject struct {
	ID          string
	Name        string
	ManagerID   string
	ManagerName string
}

// ProjectRepository lectura de proyectos y de la relación proyecto ↔ responsable de inventario.
// La relación es propiedad de la gestión de proyectos; el inventario solo la consulta,
// salvo AssignCustodians que usa la administración de proyectos.
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	// IsAssignedCustodian dentro de una transacción bloquea la asignación en modo compartido
	// para que no pueda revocarse antes del commit.
	IsAssignedCustodian(ctx context.Context, userID, projectID string) (bool, error)
	ListByCustodian(ctx context.Context, userID string) ([]CustodianProject, error)
	CountByCustodian(ctx context.Context, userID string) (int, error)
	AssignCustodians(ctx context.Context, projectID string, userIDs []string) error
}
