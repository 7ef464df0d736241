package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

// CustodianStats resumen para el tablero del responsable de inventario.
type CustodianStats struct {
	ProjectCount  int
	StockInCount  int
	StockOutCount int
	LowStock      []*entity.Material // saldo por debajo del umbral, de menor a mayor
}

// Stats combina proyectos asignados, movimientos del operador y materiales con stock bajo.
func (s *Service) Stats(ctx context.Context, operatorID string) (*CustodianStats, error) {
	projectCount, err := s.reads.Projects.CountByCustodian(ctx, operatorID)
	if err != nil {
		return nil, s.fail("stats", err)
	}
	inCount, err := s.reads.Records.CountByOperator(ctx, operatorID, entity.RecordTypeIn)
	if err != nil {
		return nil, s.fail("stats", err)
	}
	outCount, err := s.reads.Records.CountByOperator(ctx, operatorID, entity.RecordTypeOut)
	if err != nil {
		return nil, s.fail("stats", err)
	}
	low, err := s.reads.Materials.ListBelow(ctx, s.opts.LowStockThreshold)
	if err != nil {
		return nil, s.fail("stats", err)
	}
	// Más escaso primero; empate por código para una salida estable.
	sort.SliceStable(low, func(i, j int) bool {
		if !low[i].Quantity.Equal(low[j].Quantity) {
			return low[i].Quantity.LessThan(low[j].Quantity)
		}
		return low[i].Code < low[j].Code
	})
	return &CustodianStats{
		ProjectCount:  projectCount,
		StockInCount:  inCount,
		StockOutCount: outCount,
		LowStock:      low,
	}, nil
}

// CustodianProjects proyectos en los que el operador es responsable de inventario.
func (s *Service) CustodianProjects(ctx context.Context, operatorID string) ([]repository.CustodianProject, error) {
	list, err := s.reads.Projects.ListByCustodian(ctx, operatorID)
	if err != nil {
		return nil, s.fail("custodian projects", err)
	}
	return list, nil
}

// ActivityPage página de actividades de proyecto.
type ActivityPage struct {
	Activities []repository.ProjectActivityView
	Total      int
}

// ListActivities lista actividades de un proyecto (o de todos si projectID es vacío).
func (s *Service) ListActivities(ctx context.Context, projectID string, page, pageSize int) (*ActivityPage, error) {
	limit, offset := normalizePage(page, pageSize)
	list, total, err := s.reads.Activities.ListByProject(ctx, strings.TrimSpace(projectID), limit, offset)
	if err != nil {
		return nil, s.fail("list activities", err)
	}
	return &ActivityPage{Activities: list, Total: total}, nil
}

// LatestActivities últimas n actividades de todos los proyectos.
func (s *Service) LatestActivities(ctx context.Context, n int) ([]repository.ProjectActivityView, error) {
	if n <= 0 || n > maxPageSize {
		n = defaultPageSize
	}
	list, err := s.reads.Activities.Latest(ctx, n)
	if err != nil {
		return nil, s.fail("latest activities", err)
	}
	return list, nil
}

// AssignCustodians agrega responsables de inventario a un proyecto. Los IDs repetidos o vacíos se ignoran
// y las asignaciones existentes se conservan.
func (s *Service) AssignCustodians(ctx context.Context, projectID string, userIDs []string) error {
	projectID = strings.TrimSpace(projectID)
	ids := make([]string, 0, len(userIDs))
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if projectID == "" || len(ids) == 0 {
		return fmt.Errorf("%w: proyecto y responsables requeridos", domain.ErrInvalidInput)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.tx.Run(ctx, func(tx Repos) error {
		project, err := tx.Projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, projectID)
		}
		for _, id := range ids {
			u, err := tx.Users.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, id)
			}
		}
		return tx.Projects.AssignCustodians(ctx, projectID, ids)
	})
	if err != nil {
		return s.fail("assign custodians", err)
	}
	s.log.Info().Str("project_id", projectID).Int("custodians", len(ids)).Msg("responsables asignados")
	return nil
}
