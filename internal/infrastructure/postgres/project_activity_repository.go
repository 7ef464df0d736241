package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

var _ repository.ProjectActivityRepository = (*ProjectActivityRepo)(nil)

// ProjectActivityRepo actividades de proyecto sobre PostgreSQL (usable con pool o tx).
type ProjectActivityRepo struct {
	q Querier
}

// NewProjectActivityRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProjectActivityRepository(q Querier) *ProjectActivityRepo {
	return &ProjectActivityRepo{q: q}
}

// Create persiste una actividad.
func (r *ProjectActivityRepo) Create(ctx context.Context, a *entity.ProjectActivity) error {
	query := `
		INSERT INTO project_activities (id, project_id, user_id, type, description, related_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.ProjectID, a.UserID, a.Type, a.Description, nullable(a.RelatedID), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project activity: %w", err)
	}
	return nil
}

const activityViewSelect = `
	SELECT a.id, a.project_id, COALESCE(p.name, ''), a.user_id, COALESCE(NULLIF(u.full_name, ''), u.username, ''),
	       a.type, a.description, a.related_id, a.created_at
	FROM project_activities a
	LEFT JOIN projects p ON p.id = a.project_id
	LEFT JOIN users u ON u.id = a.user_id`

// ListByProject lista actividades de un proyecto (todas si projectID es vacío), más recientes primero.
func (r *ProjectActivityRepo) ListByProject(ctx context.Context, projectID string, limit, offset int) ([]repository.ProjectActivityView, int, error) {
	var total int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM project_activities WHERE $1 = '' OR project_id = $1`, projectID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count project activities: %w", err)
	}
	rows, err := r.q.Query(ctx, activityViewSelect+`
		WHERE $1 = '' OR a.project_id = $1
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $2 OFFSET $3`, projectID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list project activities: %w", err)
	}
	list, err := scanActivityViews(rows)
	return list, total, err
}

// Latest últimas n actividades de todos los proyectos.
func (r *ProjectActivityRepo) Latest(ctx context.Context, n int) ([]repository.ProjectActivityView, error) {
	rows, err := r.q.Query(ctx, activityViewSelect+`
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("latest project activities: %w", err)
	}
	return scanActivityViews(rows)
}

func scanActivityViews(rows pgx.Rows) ([]repository.ProjectActivityView, error) {
	defer rows.Close()
	list := []repository.ProjectActivityView{}
	for rows.Next() {
		var v repository.ProjectActivityView
		var related *string
		if err := rows.Scan(&v.ID, &v.ProjectID, &v.ProjectName, &v.UserID, &v.UserName,
			&v.Type, &v.Description, &related, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project activity: %w", err)
		}
		v.RelatedID = deref(related)
		list = append(list, v)
	}
	return list, rows.Err()
}
