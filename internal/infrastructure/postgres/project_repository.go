package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

// ProjectRepo proyectos y asignaciones de responsables de inventario (usable con pool o tx).
type ProjectRepo struct {
	q Querier
}

// NewProjectRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProjectRepository(q Querier) *ProjectRepo {
	return &ProjectRepo{q: q}
}

// GetByID obtiene un proyecto por ID; (nil, nil) si no existe.
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	var p entity.Project
	var manager *string
	err := r.q.QueryRow(ctx, `SELECT id, name, manager_id FROM projects WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &manager)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	p.ManagerID = deref(manager)
	return &p, nil
}

// IsAssignedCustodian toma FOR SHARE sobre la asignación: dentro de una tx, una revocación
// concurrente espera al commit de la salida.
func (r *ProjectRepo) IsAssignedCustodian(ctx context.Context, userID, projectID string) (bool, error) {
	var one int
	err := r.q.QueryRow(ctx, `
		SELECT 1 FROM project_inventory_managers
		WHERE project_id = $1 AND inventory_manager_id = $2
		FOR SHARE`, projectID, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check custodian: %w", err)
	}
	return true, nil
}

// ListByCustodian proyectos asignados al usuario, con el nombre del gerente.
func (r *ProjectRepo) ListByCustodian(ctx context.Context, userID string) ([]repository.CustodianProject, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.name, p.manager_id, COALESCE(NULLIF(u.full_name, ''), u.username, '')
		FROM projects p
		JOIN project_inventory_managers pim ON pim.project_id = p.id
		LEFT JOIN users u ON u.id = p.manager_id
		WHERE pim.inventory_manager_id = $1
		ORDER BY p.name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list custodian projects: %w", err)
	}
	defer rows.Close()
	list := []repository.CustodianProject{}
	for rows.Next() {
		var cp repository.CustodianProject
		var manager *string
		if err := rows.Scan(&cp.ID, &cp.Name, &manager, &cp.ManagerName); err != nil {
			return nil, fmt.Errorf("scan custodian project: %w", err)
		}
		cp.ManagerID = deref(manager)
		list = append(list, cp)
	}
	return list, rows.Err()
}

// CountByCustodian número de proyectos asignados al usuario.
func (r *ProjectRepo) CountByCustodian(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM project_inventory_managers WHERE inventory_manager_id = $1`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count custodian projects: %w", err)
	}
	return n, nil
}

// AssignCustodians inserta las asignaciones en un solo viaje (pgx.Batch, sentencias parametrizadas).
// Las existentes se ignoran.
func (r *ProjectRepo) AssignCustodians(ctx context.Context, projectID string, userIDs []string) error {
	batch := &pgx.Batch{}
	for _, userID := range userIDs {
		batch.Queue(`
			INSERT INTO project_inventory_managers (project_id, inventory_manager_id, assigned_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (project_id, inventory_manager_id) DO NOTHING`, projectID, userID)
	}
	br := r.q.SendBatch(ctx, batch)
	for range userIDs {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("assign custodian: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("assign custodians: %w", err)
	}
	return nil
}
