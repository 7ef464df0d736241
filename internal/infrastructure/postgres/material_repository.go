package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

const materialColumns = `id, code, name, supplier, unit_price, unit, location, image_url, quantity, created_at, updated_at`

// MaterialRepo implementación del puerto MaterialRepository sobre PostgreSQL (usable con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador de persistencia para materiales. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

func scanMaterial(row pgx.Row) (*entity.Material, error) {
	var m entity.Material
	err := row.Scan(&m.ID, &m.Code, &m.Name, &m.Supplier, &m.UnitPrice, &m.Unit,
		&m.Location, &m.ImageURL, &m.Quantity, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste un nuevo material.
func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	query := `
		INSERT INTO materials (` + materialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Code, m.Name, m.Supplier, m.UnitPrice, m.Unit,
		m.Location, m.ImageURL, m.Quantity, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el código %s ya existe", domain.ErrConflict, m.Code)
		}
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

func (r *MaterialRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.Material, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// GetByID obtiene un material por ID.
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	return r.getOne(ctx, "get material", `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id)
}

// GetByCode obtiene un material por su código único.
func (r *MaterialRepo) GetByCode(ctx context.Context, code string) (*entity.Material, error) {
	return r.getOne(ctx, "get material by code", `SELECT `+materialColumns+` FROM materials WHERE code = $1`, code)
}

// GetForUpdate lee el material con SELECT FOR UPDATE. Solo tiene sentido dentro de una transacción:
// el bloqueo se mantiene hasta Commit/Rollback y serializa entradas, salidas y eliminación.
func (r *MaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.Material, error) {
	return r.getOne(ctx, "get material for update", `SELECT `+materialColumns+` FROM materials WHERE id = $1 FOR UPDATE`, id)
}

// Update modifica los campos descriptivos; quantity queda fuera.
func (r *MaterialRepo) Update(ctx context.Context, m *entity.Material) error {
	query := `
		UPDATE materials
		SET code = $2, name = $3, supplier = $4, unit_price = $5, unit = $6, location = $7, image_url = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, m.Code, m.Name, m.Supplier, m.UnitPrice, m.Unit, m.Location, m.ImageURL, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el código %s ya existe", domain.ErrConflict, m.Code)
		}
		return fmt.Errorf("update material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: material %s", domain.ErrNotFound, m.ID)
	}
	return nil
}

// UpdateQuantity fija el saldo. El CHECK (quantity >= 0) de la tabla rechaza saldos negativos.
func (r *MaterialRepo) UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE materials SET quantity = $2, updated_at = NOW() WHERE id = $1`, id, quantity)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: saldo negativo", domain.ErrInsufficientStock)
		}
		return fmt.Errorf("update material quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: material %s", domain.ErrNotFound, id)
	}
	return nil
}

// Delete elimina el material por ID.
func (r *MaterialRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: material %s", domain.ErrNotFound, id)
	}
	return nil
}

// List busca por código, nombre o proveedor (ILIKE) con paginación; devuelve también el total.
func (r *MaterialRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Material, int, error) {
	where := `WHERE $1 = '' OR code ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%' OR supplier ILIKE '%' || $1 || '%'`

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM materials `+where, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count materials: %w", err)
	}

	rows, err := r.q.Query(ctx,
		`SELECT `+materialColumns+` FROM materials `+where+` ORDER BY code ASC LIMIT $2 OFFSET $3`,
		search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Material, 0, limit)
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

// ListBelow materiales cuyo saldo es menor que threshold.
func (r *MaterialRepo) ListBelow(ctx context.Context, threshold decimal.Decimal) ([]*entity.Material, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE quantity < $1 ORDER BY quantity ASC, code ASC`, threshold)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
