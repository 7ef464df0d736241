package dto

import (
	"time"

	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

// ProjectActivityResponse actividad de proyecto.
type ProjectActivityResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	RelatedID   string    `json:"related_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivitiesFromViews convierte las vistas del repositorio.
func ActivitiesFromViews(list []repository.ProjectActivityView) []ProjectActivityResponse {
	out := make([]ProjectActivityResponse, 0, len(list))
	for _, v := range list {
		out = append(out, ProjectActivityResponse(v))
	}
	return out
}

// ActivityListResponse página de actividades.
type ActivityListResponse struct {
	Activities []ProjectActivityResponse `json:"activities"`
	Total      int                       `json:"total"`
}

// AssignCustodiansRequest body para PUT /api/projects/:id/inventory-managers.
type AssignCustodiansRequest struct {
	InventoryManagerIDs []string `json:"inventory_manager_ids"`
}
