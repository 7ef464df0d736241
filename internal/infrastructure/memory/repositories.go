package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.MaterialRepository        = (*materialRepo)(nil)
	_ repository.InventoryRecordRepository = (*recordRepo)(nil)
	_ repository.ProjectActivityRepository = (*activityRepo)(nil)
	_ repository.ProjectRepository         = (*projectRepo)(nil)
	_ repository.UserRepository            = (*userRepo)(nil)
)

type materialRepo struct {
	s *Store
	t *tx
}

// lockWrite imita el bloqueo implícito de UPDATE/DELETE: dentro de una tx se mantiene hasta el final.
func (r *materialRepo) lockWrite(ctx context.Context, id string) (release func(), err error) {
	if r.t != nil {
		return func() {}, r.s.acquire(ctx, r.t, id)
	}
	tmp := &tx{held: map[string]struct{}{}}
	if err := r.s.acquire(ctx, tmp, id); err != nil {
		return nil, err
	}
	return func() { r.s.releaseAll(tmp) }, nil
}

func (r *materialRepo) Create(ctx context.Context, m *entity.Material) error {
	copied := *m
	return r.s.stage(r.t, func(d *data) error {
		if _, ok := d.materials[copied.ID]; ok {
			return fmt.Errorf("%w: material %s ya existe", domain.ErrConflict, copied.ID)
		}
		for _, other := range d.materials {
			if other.Code == copied.Code {
				return fmt.Errorf("%w: el código %s ya existe", domain.ErrConflict, copied.Code)
			}
		}
		d.materials[copied.ID] = copied
		return nil
	})
}

func (r *materialRepo) find(match func(entity.Material) bool) (*entity.Material, error) {
	d, err := r.s.view(r.t)
	if err != nil {
		return nil, err
	}
	for _, m := range d.materials {
		if match(m) {
			found := m
			return &found, nil
		}
	}
	return nil, nil
}

func (r *materialRepo) GetByID(_ context.Context, id string) (*entity.Material, error) {
	return r.find(func(m entity.Material) bool { return m.ID == id })
}

func (r *materialRepo) GetByCode(_ context.Context, code string) (*entity.Material, error) {
	return r.find(func(m entity.Material) bool { return m.Code == code })
}

// GetForUpdate espera el bloqueo exclusivo del material y lee el estado confirmado más reciente.
// Fuera de una tx solo lee.
func (r *materialRepo) GetForUpdate(ctx context.Context, id string) (*entity.Material, error) {
	if r.t != nil {
		if err := r.s.acquire(ctx, r.t, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *materialRepo) Update(ctx context.Context, m *entity.Material) error {
	release, err := r.lockWrite(ctx, m.ID)
	if err != nil {
		return err
	}
	defer release()
	copied := *m
	return r.s.stage(r.t, func(d *data) error {
		current, ok := d.materials[copied.ID]
		if !ok {
			return fmt.Errorf("%w: material %s", domain.ErrNotFound, copied.ID)
		}
		for id, other := range d.materials {
			if id != copied.ID && other.Code == copied.Code {
				return fmt.Errorf("%w: el código %s ya existe", domain.ErrConflict, copied.Code)
			}
		}
		current.Code = copied.Code
		current.Name = copied.Name
		current.Supplier = copied.Supplier
		current.UnitPrice = copied.UnitPrice
		current.Unit = copied.Unit
		current.Location = copied.Location
		current.ImageURL = copied.ImageURL
		current.UpdatedAt = copied.UpdatedAt
		d.materials[copied.ID] = current
		return nil
	})
}

func (r *materialRepo) UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return fmt.Errorf("%w: saldo negativo", domain.ErrInsufficientStock)
	}
	release, err := r.lockWrite(ctx, id)
	if err != nil {
		return err
	}
	defer release()
	return r.s.stage(r.t, func(d *data) error {
		current, ok := d.materials[id]
		if !ok {
			return fmt.Errorf("%w: material %s", domain.ErrNotFound, id)
		}
		current.Quantity = quantity
		d.materials[id] = current
		return nil
	})
}

func (r *materialRepo) Delete(ctx context.Context, id string) error {
	release, err := r.lockWrite(ctx, id)
	if err != nil {
		return err
	}
	defer release()
	return r.s.stage(r.t, func(d *data) error {
		if _, ok := d.materials[id]; !ok {
			return fmt.Errorf("%w: material %s", domain.ErrNotFound, id)
		}
		delete(d.materials, id)
		// Igual que ON DELETE SET NULL.
		for i := range d.records {
			if d.records[i].MaterialID == id {
				d.records[i].MaterialID = ""
			}
		}
		return nil
	})
}

func (r *materialRepo) sorted(match func(entity.Material) bool) ([]*entity.Material, error) {
	d, err := r.s.view(r.t)
	if err != nil {
		return nil, err
	}
	list := []*entity.Material{}
	for _, m := range d.materials {
		if match(m) {
			found := m
			list = append(list, &found)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

func (r *materialRepo) List(_ context.Context, search string, limit, offset int) ([]*entity.Material, int, error) {
	needle := strings.ToLower(search)
	all, err := r.sorted(func(m entity.Material) bool {
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(m.Code), needle) ||
			strings.Contains(strings.ToLower(m.Name), needle) ||
			strings.Contains(strings.ToLower(m.Supplier), needle)
	})
	if err != nil {
		return nil, 0, err
	}
	return page(all, limit, offset), len(all), nil
}

func (r *materialRepo) ListBelow(_ context.Context, threshold decimal.Decimal) ([]*entity.Material, error) {
	list, err := r.sorted(func(m entity.Material) bool { return m.Quantity.LessThan(threshold) })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Quantity.LessThan(list[j].Quantity) })
	return list, nil
}

type recordRepo struct {
	s *Store
	t *tx
}

func (r *recordRepo) Create(_ context.Context, rec *entity.InventoryRecord) error {
	copied := *rec
	return r.s.stage(r.t, func(d *data) error {
		if copied.MaterialID != "" {
			if _, ok := d.materials[copied.MaterialID]; !ok {
				return fmt.Errorf("%w: material %s", domain.ErrNotFound, copied.MaterialID)
			}
		}
		if copied.OperatorID != "" {
			if _, ok := d.users[copied.OperatorID]; !ok {
				return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, copied.OperatorID)
			}
		}
		d.records = append(d.records, copied)
		return nil
	})
}

func (r *recordRepo) List(_ context.Context, filter repository.RecordFilter, limit, offset int) ([]repository.InventoryRecordView, int, error) {
	d, err := r.s.view(r.t)
	if err != nil {
		return nil, 0, err
	}
	views := []repository.InventoryRecordView{}
	// Del más nuevo al más viejo; a igual fecha gana el insertado después.
	for i := len(d.records) - 1; i >= 0; i-- {
		rec := d.records[i]
		if filter.MaterialID != "" && rec.MaterialID != filter.MaterialID {
			continue
		}
		v := repository.InventoryRecordView{
			ID:           rec.ID,
			Type:         rec.Type,
			Quantity:     rec.Quantity,
			Description:  rec.Description,
			CreatedAt:    rec.CreatedAt,
			MaterialID:   rec.MaterialID,
			MaterialCode: rec.MaterialCode,
			OperatorID:   rec.OperatorID,
			ProjectID:    rec.ProjectID,
		}
		if m, ok := d.materials[rec.MaterialID]; ok {
			v.MaterialName = m.Name
		}
		if u, ok := d.users[rec.OperatorID]; ok {
			v.OperatorName = u.DisplayName()
		}
		if p, ok := d.projects[rec.ProjectID]; ok {
			v.ProjectName = p.Name
		}
		views = append(views, v)
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].CreatedAt.After(views[j].CreatedAt) })
	return page(views, limit, offset), len(views), nil
}

func (r *recordRepo) DeleteByMaterial(_ context.Context, materialID string) error {
	return r.s.stage(r.t, func(d *data) error {
		kept := d.records[:0:0]
		for _, rec := range d.records {
			if rec.MaterialID != materialID {
				kept = append(kept, rec)
			}
		}
		d.records = kept
		return nil
	})
}

func (r *recordRepo) DetachMaterial(_ context.Context, materialID string) error {
	return r.s.stage(r.t, func(d *data) error {
		for i := range d.records {
			if d.records[i].MaterialID == materialID {
				d.records[i].MaterialID = ""
			}
		}
		return nil
	})
}

func (r *recordRepo) CountByOperator(_ context.Context, operatorID, recordType string) (int, error) {
	d, err := r.s.view(r.t)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rec := range d.records {
		if rec.OperatorID == operatorID && rec.Type == recordType {
			n++
		}
	}
	return n, nil
}

type activityRepo struct {
	s *Store
	t *tx
}

func (r *activityRepo) Create(_ context.Context, a *entity.ProjectActivity) error {
	copied := *a
	return r.s.stage(r.t, func(d *data) error {
		if _, ok := d.projects[copied.ProjectID]; !ok {
			return fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, copied.ProjectID)
		}
		if _, ok := d.users[copied.UserID]; !ok {
			return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, copied.UserID)
		}
		d.activities = append(d.activities, copied)
		return nil
	})
}

func (r *activityRepo) views(projectID string) ([]repository.ProjectActivityView, error) {
	d, err := r.s.view(r.t)
	if err != nil {
		return nil, err
	}
	views := []repository.ProjectActivityView{}
	for i := len(d.activities) - 1; i >= 0; i-- {
		a := d.activities[i]
		if projectID != "" && a.ProjectID != projectID {
			continue
		}
		v := repository.ProjectActivityView{
			ID:          a.ID,
			ProjectID:   a.ProjectID,
			UserID:      a.UserID,
			Type:        a.Type,
			Description: a.Description,
			RelatedID:   a.RelatedID,
			CreatedAt:   a.CreatedAt,
		}
		if p, ok := d.projects[a.ProjectID]; ok {
			v.ProjectName = p.Name
		}
		if u, ok := d.users[a.UserID]; ok {
			v.UserName = u.DisplayName()
		}
		views = append(views, v)
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].CreatedAt.After(views[j].CreatedAt) })
	return views, nil
}

func (r *activityRepo) ListByProject(_ context.Context, projectID string, limit, offset int) ([]repository.ProjectActivityView, int, error) {
	all, err := r.views(projectID)
	if err != nil {
		return nil, 0, err
	}
	return page(all, limit, offset), len(all), nil
}

func (r *activityRepo) Latest(_ context.Context, n int) ([]repository.ProjectActivityView, error) {
	all, err := r.views("")
	if err != nil {
		return nil, err
	}
	return page(all, n, 0), nil
}

type projectRepo struct {
	s *Store
	t *tx
}

func (r *projectRepo) GetByID(_ context.Context, id string) (*entity.Project, error) {
	d, err := r.s.view(r.t)
	if err != nil {
		return nil, err
	}
	p, ok := d.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *projectRepo) IsAssignedCustodian(_ context.Context, userID, projectID string) (bool, error) {
	d, err := r.s.view(r.t)
	if err != nil {
		return false, err
	}
	_, ok := d.custodians[projectID][userID]
	return ok, nil
}

func (r *projectRepo) ListByCustodian(_ context.Context, userID string) ([]repository.CustodianProject, error) {
	d, err := r.s.view(r.t)
	if err != nil {
		return nil, err
	}
	list := []repository.CustodianProject{}
	for projectID, set := range d.custodians {
		if _, ok := set[userID]; !ok {
			continue
		}
		p, ok := d.projects[projectID]
		if !ok {
			continue
		}
		cp := repository.CustodianProject{ID: p.ID, Name: p.Name, ManagerID: p.ManagerID}
		if u, ok := d.users[p.ManagerID]; ok {
			cp.ManagerName = u.DisplayName()
		}
		list = append(list, cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *projectRepo) CountByCustodian(ctx context.Context, userID string) (int, error) {
	list, err := r.ListByCustodian(ctx, userID)
	return len(list), err
}

func (r *projectRepo) AssignCustodians(_ context.Context, projectID string, userIDs []string) error {
	ids := append([]string(nil), userIDs...)
	return r.s.stage(r.t, func(d *data) error {
		if _, ok := d.projects[projectID]; !ok {
			return fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, projectID)
		}
		for _, id := range ids {
			if _, ok := d.users[id]; !ok {
				return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, id)
			}
		}
		set, ok := d.custodians[projectID]
		if !ok {
			set = map[string]struct{}{}
			d.custodians[projectID] = set
		}
		for _, id := range ids {
			set[id] = struct{}{}
		}
		return nil
	})
}

type userRepo struct {
	s *Store
	t *tx
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	d, err := r.s.view(r.t)
	if err != nil {
		return nil, err
	}
	u, ok := d.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return all[:0]
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
