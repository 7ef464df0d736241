package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// ProjectActivityView actividad con nombres de proyecto y usuario.
type ProjectActivityView struct {
	ID          string
	ProjectID   string
	ProjectName string
	UserID      string
	UserName    string
	Type        string
	Description string
	RelatedID   string
	CreatedAt   time.Time
}

// ProjectActivityRepository define el puerto de persistencia para actividades de proyecto.
type ProjectActivityRepository interface {
	Create(ctx context.Context, activity *entity.ProjectActivity) error
	// ListByProject lista actividades; projectID vacío lista todas.
	ListByProject(ctx context.Context, projectID string, limit, offset int) ([]ProjectActivityView, int, error)
	Latest(ctx context.Context, n int) ([]ProjectActivityView, error)
}
