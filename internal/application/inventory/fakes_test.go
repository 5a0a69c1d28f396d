package inventory_test

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-backoffice/internal/domain"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria para los tests de casos de uso.
//
// El runner de transacciones de prueba no simula rollback: los casos de fallo
// se validan igual porque los casos de uso verifican disponibilidad ANTES de
// escribir (todo-o-nada por pre-chequeo, no por revert).
// ──────────────────────────────────────────────────────────────────────────────

func invKey(companyID, productID string) string { return companyID + "|" + productID }

type fakeInventoryRepo struct {
	rows map[string]*entity.Inventory
	// raceWinner simula una carrera de creación: Create falla con ErrDuplicate
	// y la fila del ganador aparece en el mapa antes de la relectura.
	raceWinner *entity.Inventory
	// afterGet corre tras cada Get; permite intercalar una escritura concurrente
	// entre la lectura y el ApplyDelta del caso de uso.
	afterGet func()
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{rows: make(map[string]*entity.Inventory)}
}

func (f *fakeInventoryRepo) Get(_ context.Context, companyID, productID string) (*entity.Inventory, error) {
	row, ok := f.rows[invKey(companyID, productID)]
	if !ok {
		if f.afterGet != nil {
			f.afterGet()
		}
		return nil, nil
	}
	cp := *row
	if f.afterGet != nil {
		f.afterGet()
	}
	return &cp, nil
}

func (f *fakeInventoryRepo) GetForUpdate(ctx context.Context, companyID, productID string) (*entity.Inventory, error) {
	return f.Get(ctx, companyID, productID)
}

func (f *fakeInventoryRepo) Create(_ context.Context, inv *entity.Inventory) error {
	key := invKey(inv.CompanyID, inv.ProductID)
	if f.raceWinner != nil {
		f.rows[key] = f.raceWinner
		f.raceWinner = nil
		return domain.ErrDuplicate
	}
	if _, ok := f.rows[key]; ok {
		return domain.ErrDuplicate
	}
	cp := *inv
	f.rows[key] = &cp
	return nil
}

// seed deja una fila lista en el almacén, sin pasar por el puerto.
func (f *fakeInventoryRepo) seed(inv *entity.Inventory) {
	cp := *inv
	f.rows[invKey(inv.CompanyID, inv.ProductID)] = &cp
}

// ApplyDelta opera sobre la fila almacenada, igual que el UPDATE relativo del
// repositorio real: el delta se suma al valor vigente, no a una copia leída antes.
func (f *fakeInventoryRepo) ApplyDelta(_ context.Context, companyID, productID string, delta decimal.Decimal) (*entity.Inventory, error) {
	row, ok := f.rows[invKey(companyID, productID)]
	if !ok {
		return nil, nil
	}
	row.Quantity = row.Quantity.Add(delta)
	if row.Quantity.LessThan(decimal.Zero) {
		row.Quantity = decimal.Zero
	}
	row.UpdatedAt = time.Now()
	cp := *row
	return &cp, nil
}

func (f *fakeInventoryRepo) ListLowStock(_ context.Context, companyID string) ([]*entity.Inventory, error) {
	var out []*entity.Inventory
	for _, row := range f.rows {
		if row.CompanyID != companyID || !row.IsActive {
			continue
		}
		if row.ReorderLevel.GreaterThan(decimal.Zero) && row.Quantity.LessThanOrEqual(row.ReorderLevel) {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

type fakeBatchRepo struct {
	batches []*entity.StockBatch
}

func newFakeBatchRepo() *fakeBatchRepo { return &fakeBatchRepo{} }

func (f *fakeBatchRepo) Create(_ context.Context, batch *entity.StockBatch) error {
	for _, b := range f.batches {
		if b.CompanyID == batch.CompanyID && b.ProductID == batch.ProductID && b.BatchNo == batch.BatchNo {
			return domain.ErrDuplicate
		}
	}
	cp := *batch
	f.batches = append(f.batches, &cp)
	return nil
}

func (f *fakeBatchRepo) GetByID(_ context.Context, companyID, id string) (*entity.StockBatch, error) {
	for _, b := range f.batches {
		if b.CompanyID == companyID && b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeBatchRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.StockBatch, error) {
	return f.GetByID(ctx, companyID, id)
}

func (f *fakeBatchRepo) ListDepletableForUpdate(_ context.Context, companyID, productID string) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	for _, b := range f.batches {
		if b.CompanyID == companyID && b.ProductID == productID && b.IsActive && b.Quantity.GreaterThan(decimal.Zero) {
			cp := *b
			out = append(out, &cp)
		}
	}
	// Orden FEFO: vencimiento ascendente con nil al final, recepción como desempate
	sort.Slice(out, func(i, j int) bool {
		bi, bj := out[i], out[j]
		switch {
		case bi.ExpiryDate == nil && bj.ExpiryDate == nil:
			return bi.ReceivedAt.Before(bj.ReceivedAt)
		case bi.ExpiryDate == nil:
			return false
		case bj.ExpiryDate == nil:
			return true
		case !bi.ExpiryDate.Equal(*bj.ExpiryDate):
			return bi.ExpiryDate.Before(*bj.ExpiryDate)
		default:
			return bi.ReceivedAt.Before(bj.ReceivedAt)
		}
	})
	return out, nil
}

func (f *fakeBatchRepo) UpdateQuantity(_ context.Context, companyID, id string, qty decimal.Decimal) error {
	for _, b := range f.batches {
		if b.CompanyID == companyID && b.ID == id {
			b.Quantity = qty
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeBatchRepo) ListExpired(_ context.Context, companyID string) ([]*entity.StockBatch, error) {
	now := time.Now()
	var out []*entity.StockBatch
	for _, b := range f.batches {
		if b.CompanyID == companyID && b.IsActive && b.Quantity.GreaterThan(decimal.Zero) && b.Expired(now) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeBatchRepo) SumRemaining(_ context.Context, companyID, productID string) (decimal.Decimal, bool, error) {
	total := decimal.Zero
	hasBatches := false
	for _, b := range f.batches {
		if b.CompanyID == companyID && b.ProductID == productID && b.IsActive {
			hasBatches = true
			total = total.Add(b.Quantity)
		}
	}
	return total, hasBatches, nil
}

// quantityOf devuelve la cantidad restante almacenada de un lote.
func (f *fakeBatchRepo) quantityOf(id string) decimal.Decimal {
	for _, b := range f.batches {
		if b.ID == id {
			return b.Quantity
		}
	}
	return decimal.NewFromInt(-1)
}

type fakeAdjustmentRepo struct {
	adjustments []*entity.StockAdjustment
}

func newFakeAdjustmentRepo() *fakeAdjustmentRepo { return &fakeAdjustmentRepo{} }

func (f *fakeAdjustmentRepo) Create(_ context.Context, adj *entity.StockAdjustment) error {
	cp := *adj
	f.adjustments = append(f.adjustments, &cp)
	return nil
}

func (f *fakeAdjustmentRepo) ListByProduct(_ context.Context, companyID, productID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	var out []*entity.StockAdjustment
	for _, a := range f.adjustments {
		if a.CompanyID == companyID && a.ProductID == productID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeTxRunner pasa los repos en memoria a la función transaccional.
type fakeTxRunner struct {
	inv     *fakeInventoryRepo
	batches *fakeBatchRepo
	adjs    *fakeAdjustmentRepo
}

func newFakeTxRunner() *fakeTxRunner {
	return &fakeTxRunner{
		inv:     newFakeInventoryRepo(),
		batches: newFakeBatchRepo(),
		adjs:    newFakeAdjustmentRepo(),
	}
}

func (f *fakeTxRunner) Run(_ context.Context, fn func(
	repository.InventoryRepository,
	repository.StockBatchRepository,
	repository.StockAdjustmentRepository,
) error) error {
	return fn(f.inv, f.batches, f.adjs)
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func datePtr(t time.Time) *time.Time { return &t }
