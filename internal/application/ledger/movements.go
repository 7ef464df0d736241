package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Descripciones por defecto de los asientos.
const (
	DefaultStockInDescription  = "stock in"
	DefaultStockOutDescription = "stock out"
)

// StockInInput entrada para registrar una entrada de material.
type StockInInput struct {
	MaterialID  string          `validate:"required"`
	OperatorID  string          `validate:"required"`
	Quantity    decimal.Decimal `validate:"dgt0,dscale=3"`
	Description string          `validate:"max=500"`
}

// StockOutInput entrada para registrar una salida de material hacia un proyecto.
type StockOutInput struct {
	MaterialID  string          `validate:"required"`
	OperatorID  string          `validate:"required"`
	ProjectID   string          `validate:"required"`
	Quantity    decimal.Decimal `validate:"dgt0,dscale=3"`
	Description string          `validate:"max=500"`
}

// StockInResult material con el saldo nuevo y el asiento creado.
type StockInResult struct {
	Material *entity.Material
	Record   *entity.InventoryRecord
}

// StockOutResult material, asiento y actividad de proyecto creados en la misma transacción.
type StockOutResult struct {
	Material *entity.Material
	Record   *entity.InventoryRecord
	Activity *entity.ProjectActivity
}

// StockIn bloquea la fila del material (SELECT FOR UPDATE), suma la cantidad y registra el asiento de entrada.
func (s *Service) StockIn(ctx context.Context, in StockInInput) (*StockInResult, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		s.observer.MovementRejected(entity.RecordTypeIn, domain.Kind(err))
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var res StockInResult
	err := s.tx.Run(ctx, func(tx Repos) error {
		if _, err := requireOperator(ctx, tx.Users, in.OperatorID); err != nil {
			return err
		}
		material, err := tx.Materials.GetForUpdate(ctx, in.MaterialID)
		if err != nil {
			return err
		}
		if material == nil {
			return fmt.Errorf("%w: material %s", domain.ErrNotFound, in.MaterialID)
		}
		now := s.now()
		material.Quantity = material.Quantity.Add(in.Quantity)
		material.UpdatedAt = now
		if err := tx.Materials.UpdateQuantity(ctx, material.ID, material.Quantity); err != nil {
			return err
		}
		record := &entity.InventoryRecord{
			ID:           uuid.New().String(),
			MaterialID:   material.ID,
			MaterialCode: material.Code,
			Type:         entity.RecordTypeIn,
			Quantity:     in.Quantity,
			OperatorID:   in.OperatorID,
			Description:  orDefault(in.Description, DefaultStockInDescription),
			CreatedAt:    now,
		}
		if err := tx.Records.Create(ctx, record); err != nil {
			return err
		}
		res = StockInResult{Material: material, Record: record}
		return nil
	})
	if err != nil {
		s.observer.MovementRejected(entity.RecordTypeIn, domain.Kind(err))
		return nil, s.fail("stock in", err)
	}
	s.observer.MovementCommitted(entity.RecordTypeIn, in.Quantity)
	s.log.Info().Str("material_id", in.MaterialID).Str("record_id", res.Record.ID).
		Str("quantity", in.Quantity.String()).Str("balance", res.Material.Quantity.String()).
		Msg("entrada registrada")
	return &res, nil
}

// StockOut registra una salida hacia un proyecto. Todo ocurre en una sola transacción:
//  1. el proyecto debe existir y el operador debe ser su responsable de inventario;
//  2. bloqueo exclusivo de la fila del material;
//  3. si la cantidad supera el saldo → ErrInsufficientStock;
//  4. nuevo saldo, asiento de salida con el proyecto y actividad de proyecto que lo referencia.
//
// Cualquier fallo revierte todos los pasos anteriores.
func (s *Service) StockOut(ctx context.Context, in StockOutInput) (*StockOutResult, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		s.observer.MovementRejected(entity.RecordTypeOut, domain.Kind(err))
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var res StockOutResult
	err := s.tx.Run(ctx, func(tx Repos) error {
		project, err := tx.Projects.GetByID(ctx, in.ProjectID)
		if err != nil {
			return err
		}
		if project == nil {
			return fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, in.ProjectID)
		}
		assigned, err := s.gate.IsAssignedCustodian(ctx, tx.Projects, in.OperatorID, in.ProjectID)
		if err != nil {
			return err
		}
		if !assigned {
			return fmt.Errorf("%w: el operador no es responsable de inventario del proyecto", domain.ErrForbidden)
		}
		operator, err := requireOperator(ctx, tx.Users, in.OperatorID)
		if err != nil {
			return err
		}

		material, err := tx.Materials.GetForUpdate(ctx, in.MaterialID)
		if err != nil {
			return err
		}
		if material == nil {
			return fmt.Errorf("%w: material %s", domain.ErrNotFound, in.MaterialID)
		}
		if !material.CanWithdraw(in.Quantity) {
			return fmt.Errorf("%w: disponible %s, solicitado %s",
				domain.ErrInsufficientStock, material.Quantity, in.Quantity)
		}

		now := s.now()
		material.Quantity = material.Quantity.Sub(in.Quantity)
		material.UpdatedAt = now
		if err := tx.Materials.UpdateQuantity(ctx, material.ID, material.Quantity); err != nil {
			return err
		}
		record := &entity.InventoryRecord{
			ID:           uuid.New().String(),
			MaterialID:   material.ID,
			MaterialCode: material.Code,
			Type:         entity.RecordTypeOut,
			Quantity:     in.Quantity,
			OperatorID:   in.OperatorID,
			Description:  orDefault(in.Description, DefaultStockOutDescription),
			ProjectID:    project.ID,
			CreatedAt:    now,
		}
		if err := tx.Records.Create(ctx, record); err != nil {
			return err
		}

		description := StockOutDescription(operator.DisplayName(), project.Name, material, in.Quantity)
		activity, err := s.feed.Emit(ctx, tx.Activities, project.ID, in.OperatorID,
			entity.ActivityTypeMaterialStockOut, description, record.ID)
		if err != nil {
			return err
		}
		res = StockOutResult{Material: material, Record: record, Activity: activity}
		return nil
	})
	if err != nil {
		s.observer.MovementRejected(entity.RecordTypeOut, domain.Kind(err))
		return nil, s.fail("stock out", err)
	}
	s.observer.MovementCommitted(entity.RecordTypeOut, in.Quantity)
	s.log.Info().Str("material_id", in.MaterialID).Str("project_id", in.ProjectID).
		Str("record_id", res.Record.ID).Str("quantity", in.Quantity.String()).
		Str("balance", res.Material.Quantity.String()).Msg("salida registrada")
	return &res, nil
}

// MovementPage página del libro de inventario.
type MovementPage struct {
	Records []repository.InventoryRecordView
	Total   int
}

// ListMovements lista asientos, opcionalmente de un material, del más reciente al más antiguo.
func (s *Service) ListMovements(ctx context.Context, materialID string, page, pageSize int) (*MovementPage, error) {
	limit, offset := normalizePage(page, pageSize)
	records, total, err := s.reads.Records.List(ctx, repository.RecordFilter{MaterialID: strings.TrimSpace(materialID)}, limit, offset)
	if err != nil {
		return nil, s.fail("list movements", err)
	}
	return &MovementPage{Records: records, Total: total}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// requireOperator devuelve el usuario que registra el movimiento; ErrNotFound si no existe.
func requireOperator(ctx context.Context, users repository.UserRepository, id string) (*entity.User, error) {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: usuario %s", domain.ErrNotFound, id)
	}
	return u, nil
}
