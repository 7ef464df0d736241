package ledger

import (
	"context"

	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

// CustodianGate responde si un operador es el responsable de inventario asignado a un proyecto.
// Lectura pura, sin caché: se evalúa con los repos de la misma transacción que protege.
type CustodianGate struct{}

// IsAssignedCustodian consulta la relación proyecto ↔ responsable de inventario.
func (CustodianGate) IsAssignedCustodian(ctx context.Context, projects repository.ProjectRepository, operatorID, projectID string) (bool, error) {
	if operatorID == "" || projectID == "" {
		return false, nil
	}
	return projects.IsAssignedCustodian(ctx, operatorID, projectID)
}
