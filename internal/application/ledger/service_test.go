package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/Obras-api/internal/application/ledger"
	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/jhoicas/Obras-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	custodianID = "u-custodian"
	otherUserID = "u-other"
	projectID   = "p-torre"
	projectName = "Torre Norte"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type recordingObserver struct {
	mu        sync.Mutex
	committed []string
	rejected  []string
}

func (o *recordingObserver) MovementCommitted(recordType string, _ decimal.Decimal) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.committed = append(o.committed, recordType)
}

func (o *recordingObserver) MovementRejected(recordType, kind string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, recordType+":"+kind)
}

type fixture struct {
	store    *memory.Store
	svc      *ledger.Service
	observer *recordingObserver
}

func newFixture(t *testing.T, opts ledger.Options) *fixture {
	t.Helper()
	store := memory.New()
	store.PutUser(entity.User{ID: custodianID, Username: "ana", FullName: "Ana Pérez"})
	store.PutUser(entity.User{ID: otherUserID, Username: "luis"})
	store.PutUser(entity.User{ID: "u-pm", Username: "gerente"})
	store.PutProject(entity.Project{ID: projectID, Name: projectName, ManagerID: "u-pm"})
	require.NoError(t, store.Repositories().Projects.AssignCustodians(context.Background(), projectID, []string{custodianID}))

	obs := &recordingObserver{}
	if opts.Observer == nil {
		opts.Observer = obs
	}
	opts.Logger = zerolog.Nop()
	return &fixture{store: store, svc: ledger.NewService(store, store.Repositories(), opts), observer: obs}
}

func (f *fixture) material(t *testing.T, code, qty string) *entity.Material {
	t.Helper()
	q := dec(qty)
	m, err := f.svc.CreateMaterial(context.Background(), ledger.CreateMaterialInput{
		OperatorID: custodianID,
		Code:       code,
		Name:       "Cemento gris",
		Quantity:   &q,
		UnitPrice:  dec("12.50"),
		Unit:       "bags",
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) records(t *testing.T, materialID string) []repository.InventoryRecordView {
	t.Helper()
	page, err := f.svc.ListMovements(context.Background(), materialID, 1, 100)
	require.NoError(t, err)
	return page.Records
}

func (f *fixture) activities(t *testing.T) []repository.ProjectActivityView {
	t.Helper()
	page, err := f.svc.ListActivities(context.Background(), projectID, 1, 100)
	require.NoError(t, err)
	return page.Activities
}

func (f *fixture) quantity(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	m, err := f.svc.GetMaterial(context.Background(), id)
	require.NoError(t, err)
	return m.Quantity
}

func countType(list []repository.InventoryRecordView, recordType string) int {
	n := 0
	for _, r := range list {
		if r.Type == recordType {
			n++
		}
	}
	return n
}

func TestStockOut_CustodianWithdraws(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-001", "100")

	res, err := f.svc.StockOut(context.Background(), ledger.StockOutInput{
		MaterialID: m.ID, OperatorID: custodianID, ProjectID: projectID, Quantity: dec("30"),
	})
	require.NoError(t, err)

	assert.True(t, res.Material.Quantity.Equal(dec("70")))
	assert.True(t, f.quantity(t, m.ID).Equal(dec("70")))

	assert.Equal(t, entity.RecordTypeOut, res.Record.Type)
	assert.True(t, res.Record.Quantity.Equal(dec("30")))
	assert.Equal(t, projectID, res.Record.ProjectID)
	assert.Equal(t, custodianID, res.Record.OperatorID)
	assert.Equal(t, ledger.DefaultStockOutDescription, res.Record.Description)

	acts := f.activities(t)
	require.Len(t, acts, 1)
	assert.Equal(t, res.Record.ID, acts[0].RelatedID)
	assert.Equal(t, entity.ActivityTypeMaterialStockOut, acts[0].Type)
	assert.Equal(t, `Ana Pérez withdrew 30 bags of "M-001 - Cemento gris" for project "Torre Norte"`, acts[0].Description)

	recs := f.records(t, m.ID)
	require.Len(t, recs, 2)
	assert.Equal(t, entity.RecordTypeOut, recs[0].Type, "más reciente primero")
	assert.Equal(t, projectName, recs[0].ProjectName)
	assert.Equal(t, "Ana Pérez", recs[0].OperatorName)
	assert.Equal(t, ledger.InitialStockDescription, recs[1].Description)
}

func TestStockOut_InsufficientStock(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-002", "10")

	_, err := f.svc.StockOut(context.Background(), ledger.StockOutInput{
		MaterialID: m.ID, OperatorID: custodianID, ProjectID: projectID, Quantity: dec("25"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, domain.KindInsufficientStock, domain.Kind(err))

	assert.True(t, f.quantity(t, m.ID).Equal(dec("10")))
	assert.Equal(t, 0, countType(f.records(t, m.ID), entity.RecordTypeOut))
	assert.Empty(t, f.activities(t))
	assert.Contains(t, f.observer.rejected, "out:INSUFFICIENT_STOCK")
}

func TestStockOut_WithdrawAllLeavesZero(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-003", "15.5")

	res, err := f.svc.StockOut(context.Background(), ledger.StockOutInput{
		MaterialID: m.ID, OperatorID: custodianID, ProjectID: projectID, Quantity: dec("15.5"),
	})
	require.NoError(t, err)
	assert.True(t, res.Material.Quantity.IsZero())
}

func TestStockOut_NotCustodianForbidden(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-004", "100")

	_, err := f.svc.StockOut(context.Background(), ledger.StockOutInput{
		MaterialID: m.ID, OperatorID: otherUserID, ProjectID: projectID, Quantity: dec("5"),
	})
	require.ErrorIs(t, err, domain.ErrForbidden)

	assert.True(t, f.quantity(t, m.ID).Equal(dec("100")))
	assert.Equal(t, 0, countType(f.records(t, m.ID), entity.RecordTypeOut))
	assert.Empty(t, f.activities(t))
}

func TestStockOut_UnknownProjectOrMaterial(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-005", "100")

	_, err := f.svc.StockOut(context.Background(), ledger.StockOutInput{
		MaterialID: m.ID, OperatorID: custodianID, ProjectID: "p-missing", Quantity: dec("5"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.StockOut(context.Background(), ledger.StockOutInput{
		MaterialID: "m-missing", OperatorID: custodianID, ProjectID: projectID, Quantity: dec("5"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStockOut_ConcurrentWithdrawalsSerialize(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-006", "100")

	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.svc.StockOut(context.Background(), ledger.StockOutInput{
				MaterialID: m.ID, OperatorID: custodianID, ProjectID: projectID, Quantity: dec("60"),
			})
		}(i)
	}
	close(start)
	wg.Wait()

	ok, insufficient := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.True(t, f.quantity(t, m.ID).Equal(dec("40")))
	assert.Equal(t, 1, countType(f.records(t, m.ID), entity.RecordTypeOut))
	assert.Len(t, f.activities(t), 1)
}

func TestStockOut_ManyConcurrentNeverOverdraw(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-007", "50")

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.StockOut(context.Background(), ledger.StockOutInput{
				MaterialID: m.ID, OperatorID: custodianID, ProjectID: projectID, Quantity: dec("7"),
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 7, succeeded)
	assert.True(t, f.quantity(t, m.ID).Equal(dec("1")))
}

// failingActivities simula un fallo del almacén al escribir la actividad.
type failingActivities struct {
	repository.ProjectActivityRepository
}

func (failingActivities) Create(context.Context, *entity.ProjectActivity) error {
	return errors.New("write project_activities: disk full")
}

type failingFeedRunner struct {
	inner ledger.TxRunner
}

func (r failingFeedRunner) Run(ctx context.Context, fn func(tx ledger.Repos) error) error {
	return r.inner.Run(ctx, func(tx ledger.Repos) error {
		tx.Activities = failingActivities{tx.Activities}
		return fn(tx)
	})
}

func TestStockOut_ActivityFailureRollsBackEverything(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-008", "100")

	svc := ledger.NewService(failingFeedRunner{inner: f.store}, f.store.Repositories(), ledger.Options{Logger: zerolog.Nop()})
	_, err := svc.StockOut(context.Background(), ledger.StockOutInput{
		MaterialID: m.ID, OperatorID: custodianID, ProjectID: projectID, Quantity: dec("30"),
	})
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.NotContains(t, err.Error(), "disk full", "la causa no se expone al llamador")

	assert.True(t, f.quantity(t, m.ID).Equal(dec("100")))
	assert.Equal(t, 0, countType(f.records(t, m.ID), entity.RecordTypeOut))
	assert.Empty(t, f.activities(t))
}

func TestStockOut_TimeoutWhileWaitingForLockRollsBack(t *testing.T) {
	f := newFixture(t, ledger.Options{TxTimeout: 50 * time.Millisecond})
	m := f.material(t, "M-009", "100")

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- f.store.Run(context.Background(), func(tx ledger.Repos) error {
			if _, err := tx.Materials.GetForUpdate(context.Background(), m.ID); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	_, err := f.svc.StockOut(context.Background(), ledger.StockOutInput{
		MaterialID: m.ID, OperatorID: custodianID, ProjectID: projectID, Quantity: dec("10"),
	})
	require.ErrorIs(t, err, domain.ErrPersistence)

	close(release)
	require.NoError(t, <-done)

	assert.True(t, f.quantity(t, m.ID).Equal(dec("100")))
	assert.Equal(t, 0, countType(f.records(t, m.ID), entity.RecordTypeOut))

	_, err = f.svc.StockOut(context.Background(), ledger.StockOutInput{
		MaterialID: m.ID, OperatorID: custodianID, ProjectID: projectID, Quantity: dec("10"),
	})
	require.NoError(t, err, "el bloqueo se libera al terminar la otra transacción")
}

func TestStockOut_CancelledContext(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-010", "100")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.svc.StockOut(ctx, ledger.StockOutInput{
		MaterialID: m.ID, OperatorID: custodianID, ProjectID: projectID, Quantity: dec("10"),
	})
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.True(t, f.quantity(t, m.ID).Equal(dec("100")))
}

func TestStockIn_AddsAndRecords(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-011", "0")

	res, err := f.svc.StockIn(context.Background(), ledger.StockInInput{
		MaterialID: m.ID, OperatorID: custodianID, Quantity: dec("12.25"),
	})
	require.NoError(t, err)
	assert.True(t, res.Material.Quantity.Equal(dec("12.25")))
	assert.Equal(t, ledger.DefaultStockInDescription, res.Record.Description)
	assert.Empty(t, res.Record.ProjectID)

	_, err = f.svc.StockIn(context.Background(), ledger.StockInInput{
		MaterialID: m.ID, OperatorID: custodianID, Quantity: dec("2"), Description: "  compra #44 ",
	})
	require.NoError(t, err)

	recs := f.records(t, m.ID)
	require.Len(t, recs, 2, "sin saldo inicial no hay asiento de creación")
	assert.Equal(t, "compra #44", recs[0].Description)
	assert.Empty(t, f.activities(t), "las entradas no generan actividad")
	assert.Equal(t, []string{entity.RecordTypeIn, entity.RecordTypeIn}, f.observer.committed)
}

func TestStockIn_UnknownMaterial(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	_, err := f.svc.StockIn(context.Background(), ledger.StockInInput{
		MaterialID: "m-missing", OperatorID: custodianID, Quantity: dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMovements_RejectNonPositiveQuantities(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-012", "10")

	for _, q := range []string{"0", "-3"} {
		_, err := f.svc.StockIn(context.Background(), ledger.StockInInput{
			MaterialID: m.ID, OperatorID: custodianID, Quantity: dec(q),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "stock in %s", q)

		_, err = f.svc.StockOut(context.Background(), ledger.StockOutInput{
			MaterialID: m.ID, OperatorID: custodianID, ProjectID: projectID, Quantity: dec(q),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "stock out %s", q)
	}

	_, err := f.svc.StockOut(context.Background(), ledger.StockOutInput{
		MaterialID: m.ID, OperatorID: custodianID, Quantity: dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "project_id requerido")
	assert.True(t, f.quantity(t, m.ID).Equal(dec("10")))
}

func TestLedger_BalanceMatchesRecords(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-013", "40")
	ctx := context.Background()

	steps := []struct {
		in  bool
		qty string
	}{{true, "10"}, {false, "25.5"}, {true, "3.25"}, {false, "0.75"}, {false, "27"}}
	for _, s := range steps {
		var err error
		if s.in {
			_, err = f.svc.StockIn(ctx, ledger.StockInInput{MaterialID: m.ID, OperatorID: custodianID, Quantity: dec(s.qty)})
		} else {
			_, err = f.svc.StockOut(ctx, ledger.StockOutInput{MaterialID: m.ID, OperatorID: custodianID, ProjectID: projectID, Quantity: dec(s.qty)})
		}
		require.NoError(t, err)
	}

	sum := decimal.Zero
	for _, r := range f.records(t, m.ID) {
		if r.Type == entity.RecordTypeOut {
			sum = sum.Sub(r.Quantity)
		} else {
			sum = sum.Add(r.Quantity)
		}
	}
	assert.True(t, sum.Equal(f.quantity(t, m.ID)), "saldo %s, libro %s", f.quantity(t, m.ID), sum)
	assert.True(t, sum.IsZero())
}

func TestCreateMaterial_Validation(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	ctx := context.Background()
	neg := dec("-1")

	cases := map[string]ledger.CreateMaterialInput{
		"sin código":        {Name: "x", Unit: "kg", UnitPrice: dec("1")},
		"sin nombre":        {Code: "C", Unit: "kg", UnitPrice: dec("1")},
		"sin unidad":        {Code: "C", Name: "x", UnitPrice: dec("1")},
		"precio cero":       {Code: "C", Name: "x", Unit: "kg"},
		"cantidad negativa": {Code: "C", Name: "x", Unit: "kg", UnitPrice: dec("1"), Quantity: &neg},
	}
	for name, in := range cases {
		_, err := f.svc.CreateMaterial(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
}

func TestCreateMaterial_DuplicateCode(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	f.material(t, "M-014", "1")

	q := dec("5")
	_, err := f.svc.CreateMaterial(context.Background(), ledger.CreateMaterialInput{
		OperatorID: custodianID, Code: "M-014", Name: "otro", Unit: "kg", UnitPrice: dec("3"), Quantity: &q,
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	page, err := f.svc.ListMaterials(context.Background(), "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestUpdateMaterial_KeepsQuantityAndChecksCode(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	a := f.material(t, "M-015", "33")
	f.material(t, "M-016", "1")
	ctx := context.Background()

	updated, err := f.svc.UpdateMaterial(ctx, ledger.UpdateMaterialInput{
		ID: a.ID, Code: "M-015B", Name: "Cemento blanco", Unit: "bags", UnitPrice: dec("20"), Location: "Bodega 2",
	})
	require.NoError(t, err)
	assert.Equal(t, "M-015B", updated.Code)
	assert.Equal(t, "Bodega 2", updated.Location)
	assert.True(t, updated.Quantity.Equal(dec("33")))

	_, err = f.svc.UpdateMaterial(ctx, ledger.UpdateMaterialInput{
		ID: a.ID, Code: "M-016", Name: "x", Unit: "bags", UnitPrice: dec("20"),
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.svc.UpdateMaterial(ctx, ledger.UpdateMaterialInput{
		ID: "m-missing", Code: "Z", Name: "x", Unit: "bags", UnitPrice: dec("20"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteMaterial_CascadeRemovesHistory(t *testing.T) {
	f := newFixture(t, ledger.Options{DeletePolicy: ledger.DeleteCascade})
	m := f.material(t, "M-017", "20")
	_, err := f.svc.StockIn(context.Background(), ledger.StockInInput{MaterialID: m.ID, OperatorID: custodianID, Quantity: dec("5")})
	require.NoError(t, err)
	_, err = f.svc.StockOut(context.Background(), ledger.StockOutInput{MaterialID: m.ID, OperatorID: custodianID, ProjectID: projectID, Quantity: dec("5")})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteMaterial(context.Background(), m.ID))

	_, err = f.svc.GetMaterial(context.Background(), m.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.records(t, m.ID))
	assert.Empty(t, f.records(t, ""))

	_, err = f.svc.StockIn(context.Background(), ledger.StockInInput{MaterialID: m.ID, OperatorID: custodianID, Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteMaterial_PreserveKeepsDetachedHistory(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-018", "20")

	require.NoError(t, f.svc.DeleteMaterial(context.Background(), m.ID))
	assert.ErrorIs(t, f.svc.DeleteMaterial(context.Background(), m.ID), domain.ErrNotFound)

	all := f.records(t, "")
	require.Len(t, all, 1)
	assert.Empty(t, all[0].MaterialID)
	assert.Equal(t, "M-018", all[0].MaterialCode)
	assert.Empty(t, f.records(t, m.ID))
}

func TestAssignCustodians_GrantsAccess(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-019", "10")
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.AssignCustodians(ctx, "p-missing", []string{otherUserID}), domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.AssignCustodians(ctx, projectID, []string{"u-missing"}), domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.AssignCustodians(ctx, projectID, []string{" ", ""}), domain.ErrInvalidInput)

	require.NoError(t, f.svc.AssignCustodians(ctx, projectID, []string{otherUserID, otherUserID, custodianID}))

	res, err := f.svc.StockOut(ctx, ledger.StockOutInput{
		MaterialID: m.ID, OperatorID: otherUserID, ProjectID: projectID, Quantity: dec("1"),
	})
	require.NoError(t, err)
	assert.Equal(t, `luis withdrew 1 bags of "M-019 - Cemento gris" for project "Torre Norte"`, res.Activity.Description)

	projects, err := f.svc.CustodianProjects(ctx, otherUserID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, projectName, projects[0].Name)
	assert.Equal(t, "gerente", projects[0].ManagerName)
}

func TestStats_CountsAndLowStock(t *testing.T) {
	f := newFixture(t, ledger.Options{LowStockThreshold: dec("50")})
	low := f.material(t, "M-020", "30")
	f.material(t, "M-021", "500")
	lower := f.material(t, "M-022", "5")
	ctx := context.Background()

	_, err := f.svc.StockOut(ctx, ledger.StockOutInput{MaterialID: low.ID, OperatorID: custodianID, ProjectID: projectID, Quantity: dec("1")})
	require.NoError(t, err)

	st, err := f.svc.Stats(ctx, custodianID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.ProjectCount)
	assert.Equal(t, 3, st.StockInCount, "entradas iniciales")
	assert.Equal(t, 1, st.StockOutCount)
	require.Len(t, st.LowStock, 2)
	assert.Equal(t, lower.ID, st.LowStock[0].ID)
	assert.Equal(t, low.ID, st.LowStock[1].ID)

	latest, err := f.svc.LatestActivities(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, latest, 1)
}

func TestListMaterials_SearchAndPaging(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	for _, code := range []string{"A-1", "A-2", "A-3", "B-1"} {
		f.material(t, code, "1")
	}
	ctx := context.Background()

	page, err := f.svc.ListMaterials(ctx, "a-", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Materials, 1)
	assert.Equal(t, "A-3", page.Materials[0].Code)

	page, err = f.svc.ListMaterials(ctx, "", 1, 1000)
	require.NoError(t, err)
	assert.Len(t, page.Materials, 4)
}

func TestStockOutDescription_Fallbacks(t *testing.T) {
	m := &entity.Material{Code: "M-9", Name: "Arena", Unit: "m3"}
	assert.Equal(t, `user withdrew 2.5 m3 of "M-9 - Arena" for project "Obra 1"`,
		ledger.StockOutDescription("", "Obra 1", m, dec("2.5")))
	assert.Equal(t, ledger.StockOutDescription("x", "y", m, dec("1")), ledger.StockOutDescription("x", "y", m, dec("1")))
}

func TestParseDeletePolicy(t *testing.T) {
	p, err := ledger.ParseDeletePolicy("")
	require.NoError(t, err)
	assert.Equal(t, ledger.DeletePreserveHistory, p)

	p, err = ledger.ParseDeletePolicy(" CASCADE ")
	require.NoError(t, err)
	assert.Equal(t, ledger.DeleteCascade, p)

	_, err = ledger.ParseDeletePolicy("purge")
	assert.Error(t, err)
}

func TestMovements_RejectMoreThanThreeDecimals(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-020", "10")
	ctx := context.Background()

	for _, q := range []string{"1.0015", "0.0004"} {
		_, err := f.svc.StockIn(ctx, ledger.StockInInput{MaterialID: m.ID, OperatorID: custodianID, Quantity: dec(q)})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "stock in %s", q)

		_, err = f.svc.StockOut(ctx, ledger.StockOutInput{
			MaterialID: m.ID, OperatorID: custodianID, ProjectID: projectID, Quantity: dec(q),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "stock out %s", q)
	}
	assert.True(t, f.quantity(t, m.ID).Equal(dec("10")))
	assert.Len(t, f.records(t, m.ID), 1)

	// Los ceros finales no cuentan como decimales.
	res, err := f.svc.StockOut(ctx, ledger.StockOutInput{
		MaterialID: m.ID, OperatorID: custodianID, ProjectID: projectID, Quantity: dec("1.0010"),
	})
	require.NoError(t, err)
	assert.Equal(t, "8.999", res.Material.Quantity.String())

	_, err = f.svc.StockIn(ctx, ledger.StockInInput{MaterialID: m.ID, OperatorID: custodianID, Quantity: dec("0.001")})
	require.NoError(t, err)
	assert.Equal(t, "9", f.quantity(t, m.ID).String())
}

func TestMovements_TinyPositiveQuantityIsAScaleError(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-021", "10")

	_, err := f.svc.StockIn(context.Background(), ledger.StockInInput{
		MaterialID: m.ID, OperatorID: custodianID, Quantity: dec("1e-400"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Quantity")
}

func TestMaterials_ScaleRules(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	ctx := context.Background()

	q := dec("1.2345")
	_, err := f.svc.CreateMaterial(ctx, ledger.CreateMaterialInput{
		OperatorID: custodianID, Code: "M-022", Name: "Varilla", Unit: "kg", UnitPrice: dec("3"), Quantity: &q,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad inicial con 4 decimales")

	_, err = f.svc.CreateMaterial(ctx, ledger.CreateMaterialInput{
		Code: "M-022", Name: "Varilla", Unit: "kg", UnitPrice: dec("12.345"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "precio con 3 decimales")

	m := f.material(t, "M-022", "1.234")
	assert.Equal(t, "1.234", m.Quantity.String())

	_, err = f.svc.UpdateMaterial(ctx, ledger.UpdateMaterialInput{
		ID: m.ID, Code: m.Code, Name: m.Name, Unit: m.Unit, UnitPrice: dec("0.001"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "precio con 3 decimales")

	updated, err := f.svc.UpdateMaterial(ctx, ledger.UpdateMaterialInput{
		ID: m.ID, Code: m.Code, Name: m.Name, Unit: m.Unit, UnitPrice: dec("0.01"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.01", updated.UnitPrice.String())
}

// usersWithout oculta un usuario como si hubiera sido eliminado entre la asignación y el movimiento.
type usersWithout struct {
	repository.UserRepository
	id string
}

func (u usersWithout) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if id == u.id {
		return nil, nil
	}
	return u.UserRepository.GetByID(ctx, id)
}

type missingOperatorRunner struct {
	inner ledger.TxRunner
	id    string
}

func (r missingOperatorRunner) Run(ctx context.Context, fn func(tx ledger.Repos) error) error {
	return r.inner.Run(ctx, func(tx ledger.Repos) error {
		tx.Users = usersWithout{tx.Users, r.id}
		return fn(tx)
	})
}

func TestMovements_UnknownOperatorNotFound(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	m := f.material(t, "M-023", "10")
	ctx := context.Background()

	_, err := f.svc.StockIn(ctx, ledger.StockInInput{MaterialID: m.ID, OperatorID: "u-ghost", Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	q := dec("5")
	_, err = f.svc.CreateMaterial(ctx, ledger.CreateMaterialInput{
		OperatorID: "u-ghost", Code: "M-024", Name: "Arena", Unit: "m3", UnitPrice: dec("1"), Quantity: &q,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	page, err := f.svc.ListMaterials(ctx, "M-024", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total, "el material no queda creado a medias")

	svc := ledger.NewService(missingOperatorRunner{inner: f.store, id: custodianID}, f.store.Repositories(),
		ledger.Options{Logger: zerolog.Nop()})
	_, err = svc.StockOut(ctx, ledger.StockOutInput{
		MaterialID: m.ID, OperatorID: custodianID, ProjectID: projectID, Quantity: dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.True(t, f.quantity(t, m.ID).Equal(dec("10")))
	assert.Len(t, f.records(t, m.ID), 1)
	assert.Empty(t, f.activities(t))
}

func TestListMaterials_ReportsEffectivePaging(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	f.material(t, "P-1", "1")
	ctx := context.Background()

	page, err := f.svc.ListMaterials(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)

	page, err = f.svc.ListMaterials(ctx, "", 3, 1000)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 100, page.PageSize)
}
