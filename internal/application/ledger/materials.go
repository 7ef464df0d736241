package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Descripción del asiento generado al crear un material con saldo inicial.
const InitialStockDescription = "initial stock entry"

// CreateMaterialInput entrada para crear un material.
// Quantity es opcional (0 por defecto); si es mayor que cero se registra una entrada inicial atribuida a OperatorID.
type CreateMaterialInput struct {
	OperatorID string
	Code       string           `validate:"required,max=100"`
	Name       string           `validate:"required,max=200"`
	Quantity   *decimal.Decimal `validate:"omitempty,dgte0,dscale=3"`
	Supplier   string           `validate:"max=200"`
	UnitPrice  decimal.Decimal  `validate:"dgt0,dscale=2"`
	Unit       string           `validate:"required,max=50"`
	Location   string           `validate:"max=200"`
	ImageURL   string           `validate:"max=500"`
}

func (in *CreateMaterialInput) normalize() {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	in.Supplier = strings.TrimSpace(in.Supplier)
	in.Location = strings.TrimSpace(in.Location)
}

// UpdateMaterialInput entrada para actualizar los datos descriptivos de un material (nunca la cantidad).
type UpdateMaterialInput struct {
	ID        string          `validate:"required"`
	Code      string          `validate:"required,max=100"`
	Name      string          `validate:"required,max=200"`
	Supplier  string          `validate:"max=200"`
	UnitPrice decimal.Decimal `validate:"dgt0,dscale=2"`
	Unit      string          `validate:"required,max=50"`
	Location  string          `validate:"max=200"`
	ImageURL  string          `validate:"max=500"`
}

func (in *UpdateMaterialInput) normalize() {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	in.Supplier = strings.TrimSpace(in.Supplier)
	in.Location = strings.TrimSpace(in.Location)
}

// CreateMaterial inserta el material y, si trae saldo inicial, su asiento de entrada en la misma transacción.
func (s *Service) CreateMaterial(ctx context.Context, in CreateMaterialInput) (*entity.Material, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	qty := decimal.Zero
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if qty.IsPositive() && in.OperatorID == "" {
		return nil, fmt.Errorf("%w: operador requerido para el saldo inicial", domain.ErrInvalidInput)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	material := &entity.Material{
		ID:        uuid.New().String(),
		Code:      in.Code,
		Name:      in.Name,
		Supplier:  in.Supplier,
		UnitPrice: in.UnitPrice,
		Unit:      in.Unit,
		Location:  in.Location,
		ImageURL:  in.ImageURL,
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.tx.Run(ctx, func(tx Repos) error {
		existing, err := tx.Materials.GetByCode(ctx, in.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: el código %s ya existe", domain.ErrConflict, in.Code)
		}
		if err := tx.Materials.Create(ctx, material); err != nil {
			return err
		}
		if !qty.IsPositive() {
			return nil
		}
		if _, err := requireOperator(ctx, tx.Users, in.OperatorID); err != nil {
			return err
		}
		return tx.Records.Create(ctx, &entity.InventoryRecord{
			ID:           uuid.New().String(),
			MaterialID:   material.ID,
			MaterialCode: material.Code,
			Type:         entity.RecordTypeIn,
			Quantity:     qty,
			OperatorID:   in.OperatorID,
			Description:  InitialStockDescription,
			CreatedAt:    now,
		})
	})
	if err != nil {
		return nil, s.fail("create material", err)
	}
	if qty.IsPositive() {
		s.observer.MovementCommitted(entity.RecordTypeIn, qty)
	}
	s.log.Info().Str("material_id", material.ID).Str("code", material.Code).
		Str("quantity", qty.String()).Msg("material creado")
	return material, nil
}

// UpdateMaterial actualiza campos descriptivos. El nuevo código no puede pertenecer a otro material.
func (s *Service) UpdateMaterial(ctx context.Context, in UpdateMaterialInput) (*entity.Material, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var updated *entity.Material
	err := s.tx.Run(ctx, func(tx Repos) error {
		material, err := tx.Materials.GetByID(ctx, in.ID)
		if err != nil {
			return err
		}
		if material == nil {
			return fmt.Errorf("%w: material %s", domain.ErrNotFound, in.ID)
		}
		if in.Code != material.Code {
			other, err := tx.Materials.GetByCode(ctx, in.Code)
			if err != nil {
				return err
			}
			if other != nil && other.ID != material.ID {
				return fmt.Errorf("%w: el código %s pertenece a otro material", domain.ErrConflict, in.Code)
			}
		}
		material.Code = in.Code
		material.Name = in.Name
		material.Supplier = in.Supplier
		material.UnitPrice = in.UnitPrice
		material.Unit = in.Unit
		material.Location = in.Location
		material.ImageURL = in.ImageURL
		material.UpdatedAt = s.now()
		if err := tx.Materials.Update(ctx, material); err != nil {
			return err
		}
		// Releer para devolver el saldo vigente, que Update no toca.
		updated, err = tx.Materials.GetByID(ctx, material.ID)
		return err
	})
	if err != nil {
		return nil, s.fail("update material", err)
	}
	return updated, nil
}

// DeleteMaterial elimina el material según la política de historial configurada.
// La fila se bloquea primero para no competir con entradas/salidas en curso.
func (s *Service) DeleteMaterial(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id requerido", domain.ErrInvalidInput)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.tx.Run(ctx, func(tx Repos) error {
		material, err := tx.Materials.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if material == nil {
			return fmt.Errorf("%w: material %s", domain.ErrNotFound, id)
		}
		switch s.opts.DeletePolicy {
		case DeleteCascade:
			if err := tx.Records.DeleteByMaterial(ctx, id); err != nil {
				return err
			}
		default:
			if err := tx.Records.DetachMaterial(ctx, id); err != nil {
				return err
			}
		}
		return tx.Materials.Delete(ctx, id)
	})
	if err != nil {
		return s.fail("delete material", err)
	}
	s.log.Info().Str("material_id", id).Str("policy", string(s.opts.DeletePolicy)).Msg("material eliminado")
	return nil
}

// GetMaterial obtiene un material por ID.
func (s *Service) GetMaterial(ctx context.Context, id string) (*entity.Material, error) {
	material, err := s.reads.Materials.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get material", err)
	}
	if material == nil {
		return nil, fmt.Errorf("%w: material %s", domain.ErrNotFound, id)
	}
	return material, nil
}

// MaterialPage página de materiales.
// Page y PageSize son los valores efectivos tras normalizar la petición.
type MaterialPage struct {
	Materials []*entity.Material
	Total     int
	Page      int
	PageSize  int
}

// ListMaterials busca por código, nombre o proveedor.
func (s *Service) ListMaterials(ctx context.Context, search string, page, pageSize int) (*MaterialPage, error) {
	limit, offset := normalizePage(page, pageSize)
	list, total, err := s.reads.Materials.List(ctx, strings.TrimSpace(search), limit, offset)
	if err != nil {
		return nil, s.fail("list materials", err)
	}
	return &MaterialPage{Materials: list, Total: total, Page: offset/limit + 1, PageSize: limit}, nil
}
