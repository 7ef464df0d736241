package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

var _ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)

// InventoryRecordRepo implementación del libro de inventario sobre PostgreSQL (usable con pool o tx).
type InventoryRecordRepo struct {
	q Querier
}

// NewInventoryRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRecordRepository(q Querier) *InventoryRecordRepo {
	return &InventoryRecordRepo{q: q}
}

// Create persiste un asiento. project_id es NULL en las entradas.
func (r *InventoryRecordRepo) Create(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `
		INSERT INTO inventory_records (id, material_id, material_code, type, quantity, operator_id, description, project_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, nullable(rec.MaterialID), rec.MaterialCode, rec.Type, rec.Quantity,
		rec.OperatorID, rec.Description, nullable(rec.ProjectID), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inventory record: %w", err)
	}
	return nil
}

// List lista asientos con nombres de material, operador y proyecto, del más reciente al más antiguo.
func (r *InventoryRecordRepo) List(ctx context.Context, filter repository.RecordFilter, limit, offset int) ([]repository.InventoryRecordView, int, error) {
	var total int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_records WHERE $1 = '' OR material_id = $1`, filter.MaterialID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count inventory records: %w", err)
	}

	query := `
		SELECT r.id, r.type, r.quantity, r.description, r.created_at,
		       r.material_id, r.material_code, COALESCE(m.name, ''),
		       r.operator_id, COALESCE(NULLIF(u.full_name, ''), u.username, ''),
		       r.project_id, COALESCE(p.name, '')
		FROM inventory_records r
		LEFT JOIN materials m ON m.id = r.material_id
		LEFT JOIN users u ON u.id = r.operator_id
		LEFT JOIN projects p ON p.id = r.project_id
		WHERE $1 = '' OR r.material_id = $1
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, filter.MaterialID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory records: %w", err)
	}
	defer rows.Close()
	list := make([]repository.InventoryRecordView, 0, limit)
	for rows.Next() {
		var v repository.InventoryRecordView
		var materialID, projectID *string
		if err := rows.Scan(&v.ID, &v.Type, &v.Quantity, &v.Description, &v.CreatedAt,
			&materialID, &v.MaterialCode, &v.MaterialName,
			&v.OperatorID, &v.OperatorName,
			&projectID, &v.ProjectName); err != nil {
			return nil, 0, fmt.Errorf("scan inventory record: %w", err)
		}
		v.MaterialID = deref(materialID)
		v.ProjectID = deref(projectID)
		list = append(list, v)
	}
	return list, total, rows.Err()
}

// DeleteByMaterial borra el historial de un material (política cascade).
func (r *InventoryRecordRepo) DeleteByMaterial(ctx context.Context, materialID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM inventory_records WHERE material_id = $1`, materialID); err != nil {
		return fmt.Errorf("delete inventory records: %w", err)
	}
	return nil
}

// DetachMaterial anula la referencia al material conservando material_code (política preserve).
func (r *InventoryRecordRepo) DetachMaterial(ctx context.Context, materialID string) error {
	if _, err := r.q.Exec(ctx, `UPDATE inventory_records SET material_id = NULL WHERE material_id = $1`, materialID); err != nil {
		return fmt.Errorf("detach inventory records: %w", err)
	}
	return nil
}

// CountByOperator cuenta asientos de un tipo registrados por el operador.
func (r *InventoryRecordRepo) CountByOperator(ctx context.Context, operatorID, recordType string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_records WHERE operator_id = $1 AND type = $2`, operatorID, recordType,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records by operator: %w", err)
	}
	return n, nil
}
