package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const (
	unknownOperatorName = "user"
	unknownProjectName  = "unknown project"
)

// ActivityEmitter agrega actividades de proyecto derivadas de movimientos de inventario.
// No es best-effort: si Emit falla, la salida completa se revierte.
type ActivityEmitter struct {
	now func() time.Time
}

// Emit persiste una actividad con el repo recibido (el de la transacción en curso).
func (e ActivityEmitter) Emit(
	ctx context.Context,
	repo repository.ProjectActivityRepository,
	projectID, actorID, kind, description, relatedID string,
) (*entity.ProjectActivity, error) {
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	activity := &entity.ProjectActivity{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		UserID:      actorID,
		Type:        kind,
		Description: description,
		RelatedID:   relatedID,
		CreatedAt:   now(),
	}
	if err := repo.Create(ctx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// StockOutDescription compone el texto de la actividad de salida. Determinista para las mismas entradas.
func StockOutDescription(operatorName, projectName string, material *entity.Material, qty decimal.Decimal) string {
	if operatorName == "" {
		operatorName = unknownOperatorName
	}
	if projectName == "" {
		projectName = unknownProjectName
	}
	return fmt.Sprintf("%s withdrew %s %s of \"%s - %s\" for project \"%s\"",
		operatorName, qty.String(), material.Unit, material.Code, material.Name, projectName)
}
