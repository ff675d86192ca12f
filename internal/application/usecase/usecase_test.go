package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/application/ledger"
	"github.com/jhoicas/Taller-api/internal/application/usecase"
	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
	"github.com/jhoicas/Taller-api/internal/infrastructure/memory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

type fixture struct {
	store      *memory.Store
	parts      *usecase.PartUseCase
	categories *usecase.CategoryUseCase
	repairs    *usecase.RepairUseCase
	ledger     *ledger.RepairLedgerUseCase
}

func newFixture() fixture {
	store := memory.NewStore()
	return fixture{
		store:      store,
		parts:      usecase.NewPartUseCase(store.PartRepository(), store.CategoryRepository(), store.StockMovementRepository(), store),
		categories: usecase.NewCategoryUseCase(store.CategoryRepository()),
		repairs:    usecase.NewRepairUseCase(store.RepairRepository(), store.RepairPartRepository()),
		ledger:     ledger.NewRepairLedgerUseCase(store),
	}
}

func TestPartCreate_StockInicialComoRecepcion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.parts.Create(ctx, "u-1", dto.CreatePartRequest{
		Code: "FL-10", Name: "Filtro de aceite", Price: dec("25.00"), Cost: dec("12.50"), InitialStock: 8, MinQuantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, p.StockQuantity)
	assert.False(t, p.LowStock)
	assert.True(t, p.IsActive)

	movs, err := f.parts.ListMovements(ctx, p.ID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.StockMovementReceipt, movs[0].Type)
	assert.Equal(t, 8, movs[0].Quantity)
	assert.Equal(t, "u-1", movs[0].CreatedBy)

	sinStock, err := f.parts.Create(ctx, "u-1", dto.CreatePartRequest{Code: "FL-11", Name: "Filtro de aire", Price: dec("10")})
	require.NoError(t, err)
	assert.Equal(t, 0, sinStock.StockQuantity)
	movs, err = f.parts.ListMovements(ctx, sinStock.ID, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestPartCreate_Validaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.parts.Create(ctx, "", dto.CreatePartRequest{Code: "X", Name: "X", Price: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrNegativeAmount)

	_, err = f.parts.Create(ctx, "", dto.CreatePartRequest{Code: "X", Name: "X", InitialStock: -2})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.parts.Create(ctx, "", dto.CreatePartRequest{Code: "X", Name: "X", CategoryID: strPtr("no-existe")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.parts.Create(ctx, "", dto.CreatePartRequest{Code: "X", Name: "X"})
	require.NoError(t, err)
	_, err = f.parts.Create(ctx, "", dto.CreatePartRequest{Code: "X", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestPartUpdate_ConservaStockYCategoria(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cat, err := f.categories.Create(ctx, dto.CreateCategoryRequest{Code: "SUS", Name: "Suspensión"})
	require.NoError(t, err)
	p, err := f.parts.Create(ctx, "", dto.CreatePartRequest{Code: "AM-1", Name: "Amortiguador", Price: dec("90"), InitialStock: 4})
	require.NoError(t, err)

	price := dec("99.90")
	minQty := 5
	out, err := f.parts.Update(ctx, p.ID, dto.UpdatePartRequest{
		Name: strPtr("Amortiguador delantero"), CategoryID: &cat.ID, Price: &price, MinQuantity: &minQty,
	})
	require.NoError(t, err)
	assert.Equal(t, "Amortiguador delantero", out.Name)
	assert.True(t, out.Price.Equal(price))
	assert.Equal(t, 4, out.StockQuantity)
	assert.True(t, out.LowStock)
	require.NotNil(t, out.CategoryID)
	assert.Equal(t, cat.ID, *out.CategoryID)

	// Cadena vacía desasigna la categoría.
	out, err = f.parts.Update(ctx, p.ID, dto.UpdatePartRequest{CategoryID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, out.CategoryID)

	neg := dec("-5")
	_, err = f.parts.Update(ctx, p.ID, dto.UpdatePartRequest{Cost: &neg})
	assert.ErrorIs(t, err, domain.ErrNegativeAmount)

	missing, err := f.parts.Update(ctx, "no-existe", dto.UpdatePartRequest{Name: strPtr("x")})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// countingRunner cuenta las transacciones abiertas sobre el almacén.
type countingRunner struct {
	inner ledger.TxRunner
	runs  atomic.Int32
}

func (c *countingRunner) Run(ctx context.Context, fn func(
	repository.RepairRepository,
	repository.RepairPartRepository,
	repository.PartRepository,
	repository.StockRepository,
) error) error {
	c.runs.Add(1)
	return c.inner.Run(ctx, fn)
}

func TestPartUpdate_DentroDeTransaccion(t *testing.T) {
	store := memory.NewStore()
	runner := &countingRunner{inner: store}
	parts := usecase.NewPartUseCase(store.PartRepository(), store.CategoryRepository(), store.StockMovementRepository(), runner)
	ctx := context.Background()

	p, err := parts.Create(ctx, "", dto.CreatePartRequest{Code: "RT-1", Name: "Rótula", Price: dec("15")})
	require.NoError(t, err)
	before := runner.runs.Load()

	_, err = parts.Update(ctx, p.ID, dto.UpdatePartRequest{Name: strPtr("Rótula inferior")})
	require.NoError(t, err)
	assert.Equal(t, before+1, runner.runs.Load())
}

// Editar el nombre mientras entra mercancía no revierte el costo promedio calculado por la recepción.
func TestPartUpdate_ConcurrenteConRecepcionConservaCosto(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.parts.Create(ctx, "", dto.CreatePartRequest{Code: "DS-1", Name: "Disco", Price: dec("60"), Cost: dec("10.00"), InitialStock: 10})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.parts.Update(ctx, p.ID, dto.UpdatePartRequest{Name: strPtr(fmt.Sprintf("Disco v%d", i))})
			assert.NoError(t, err)
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		unitCost := dec("30.00")
		_, err := f.ledger.ReceiveStock(ctx, ledger.ReceiveStockInput{PartID: p.ID, Quantity: 10, UnitCost: &unitCost})
		assert.NoError(t, err)
	}()
	wg.Wait()

	got, err := f.parts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "20.00", got.Cost.StringFixed(2), "(10*10 + 10*30) / 20")
	assert.Equal(t, 20, got.StockQuantity)
}

func TestPart_MontosConMasDeDosDecimales(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.parts.Create(ctx, "", dto.CreatePartRequest{Code: "Z", Name: "Z", Price: dec("1.005")})
	assert.ErrorIs(t, err, domain.ErrAmountScale)

	p, err := f.parts.Create(ctx, "", dto.CreatePartRequest{Code: "Z", Name: "Z", Price: dec("1.50")})
	require.NoError(t, err)
	cost := dec("0.125")
	_, err = f.parts.Update(ctx, p.ID, dto.UpdatePartRequest{Cost: &cost})
	assert.ErrorIs(t, err, domain.ErrAmountScale)

	labor := dec("80.001")
	_, err = f.repairs.Create(ctx, dto.CreateRepairRequest{VehicleID: "v", CustomerID: "c", LaborCost: &labor})
	assert.ErrorIs(t, err, domain.ErrAmountScale)
}

func TestPartList_FiltroStockBajo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.parts.Create(ctx, "", dto.CreatePartRequest{Code: "A", Name: "A", InitialStock: 1, MinQuantity: 2})
	require.NoError(t, err)
	_, err = f.parts.Create(ctx, "", dto.CreatePartRequest{Code: "B", Name: "B", InitialStock: 10, MinQuantity: 2})
	require.NoError(t, err)
	_, err = f.parts.Create(ctx, "", dto.CreatePartRequest{Code: "C", Name: "C", InitialStock: 2, MinQuantity: 2})
	require.NoError(t, err)

	all, err := f.parts.List(ctx, false, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{all.Items[0].Code, all.Items[1].Code, all.Items[2].Code})
	assert.Equal(t, 20, all.Page.Limit)

	low, err := f.parts.List(ctx, true, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, low.Items, 2)
	assert.Equal(t, "A", low.Items[0].Code)
	assert.Equal(t, "C", low.Items[1].Code)

	page, err := f.parts.List(ctx, false, dto.PageRequest{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "B", page.Items[0].Code)
}

func TestPartDelete_ReferenciadoPorReparacion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.parts.Create(ctx, "", dto.CreatePartRequest{Code: "BJ-4", Name: "Bujía", Price: dec("8"), InitialStock: 4})
	require.NoError(t, err)
	r, err := f.repairs.Create(ctx, dto.CreateRepairRequest{VehicleID: "v-1", CustomerID: "c-1"})
	require.NoError(t, err)
	_, err = f.ledger.AttachPart(ctx, ledger.AttachPartInput{RepairID: r.ID, PartID: p.ID, Quantity: 4})
	require.NoError(t, err)

	err = f.parts.Delete(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrPartReferenced)
	assert.ErrorIs(t, err, domain.ErrConflict)

	libre, err := f.parts.Create(ctx, "", dto.CreatePartRequest{Code: "BJ-5", Name: "Bujía iridio"})
	require.NoError(t, err)
	require.NoError(t, f.parts.Delete(ctx, libre.ID))
	got, err := f.parts.GetByID(ctx, libre.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, f.parts.Delete(ctx, libre.ID), domain.ErrNotFound)
}

func TestPartListMovements_RepuestoInexistente(t *testing.T) {
	f := newFixture()
	_, err := f.parts.ListMovements(context.Background(), "no-existe", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategory_CrearYListar(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.categories.Create(ctx, dto.CreateCategoryRequest{Code: "FRN", Name: "Frenos"})
	require.NoError(t, err)
	_, err = f.categories.Create(ctx, dto.CreateCategoryRequest{Code: "FRN", Name: "Frenos 2"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = f.categories.Create(ctx, dto.CreateCategoryRequest{Code: "ELE", Name: "Eléctrico"})
	require.NoError(t, err)

	list, err := f.categories.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRepairCreate_CostosIniciales(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	labor := dec("120.50")
	r, err := f.repairs.Create(ctx, dto.CreateRepairRequest{
		VehicleID: "v-1", CustomerID: "c-1", TechnicianID: strPtr("t-1"), Description: "ruido en frenos", LaborCost: &labor,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RepairStatusPending, r.Status)
	assert.True(t, r.PartsCost.IsZero())
	assert.True(t, r.TotalCost.Equal(labor))
	assert.True(t, r.EstimatedCost.IsZero())
	require.NotNil(t, r.TechnicianID)
	assert.Equal(t, "t-1", *r.TechnicianID)

	sinTecnico, err := f.repairs.Create(ctx, dto.CreateRepairRequest{VehicleID: "v-2", CustomerID: "c-2", TechnicianID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, sinTecnico.TechnicianID)
	assert.True(t, sinTecnico.TotalCost.IsZero())

	neg := dec("-1")
	_, err = f.repairs.Create(ctx, dto.CreateRepairRequest{VehicleID: "v", CustomerID: "c", EstimatedCost: &neg})
	assert.ErrorIs(t, err, domain.ErrNegativeAmount)
}

func TestRepairGetByID_ConLineas(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.parts.Create(ctx, "", dto.CreatePartRequest{Code: "PF", Name: "Pastillas", Price: dec("50"), InitialStock: 10})
	require.NoError(t, err)
	r, err := f.repairs.Create(ctx, dto.CreateRepairRequest{VehicleID: "v", CustomerID: "c"})
	require.NoError(t, err)
	_, err = f.ledger.AttachPart(ctx, ledger.AttachPartInput{RepairID: r.ID, PartID: p.ID, Quantity: 2})
	require.NoError(t, err)

	detail, err := f.repairs.GetByID(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, detail)
	require.Len(t, detail.Parts, 1)
	assert.Equal(t, "Pastillas", detail.Parts[0].PartName)
	assert.True(t, detail.PartsCost.Equal(dec("100")))
	assert.True(t, detail.TotalCost.Equal(dec("100")))

	lines, err := f.repairs.ListParts(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	_, err = f.repairs.ListParts(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	missing, err := f.repairs.GetByID(ctx, "no-existe")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepairList_FiltroPorEstado(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.repairs.Create(ctx, dto.CreateRepairRequest{VehicleID: "v-1", CustomerID: "c"})
	require.NoError(t, err)
	_, err = f.repairs.Create(ctx, dto.CreateRepairRequest{VehicleID: "v-2", CustomerID: "c"})
	require.NoError(t, err)
	_, err = f.ledger.UpdateRepair(ctx, ledger.UpdateRepairInput{RepairID: a.ID, Status: strPtr(entity.RepairStatusInProgress)})
	require.NoError(t, err)

	all, err := f.repairs.List(ctx, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	inProgress, err := f.repairs.List(ctx, entity.RepairStatusInProgress, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, inProgress.Items, 1)
	assert.Equal(t, a.ID, inProgress.Items[0].ID)
	assert.NotNil(t, inProgress.Items[0].StartDate)

	_, err = f.repairs.List(ctx, "archivada", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
