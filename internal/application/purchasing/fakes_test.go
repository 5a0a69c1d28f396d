package purchasing_test

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
// Repositorios en memoria para los tests de compras. El runner implementa los
// dos contratos transaccionales (recepción e inventario) para poder probar el
// flujo completo recibir → salir → ajustar sobre el mismo estado.
// ──────────────────────────────────────────────────────────────────────────────

func invKey(companyID, productID string) string { return companyID + "|" + productID }

type memInventoryRepo struct {
	rows map[string]*entity.Inventory
}

func (m *memInventoryRepo) Get(_ context.Context, companyID, productID string) (*entity.Inventory, error) {
	row, ok := m.rows[invKey(companyID, productID)]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (m *memInventoryRepo) GetForUpdate(ctx context.Context, companyID, productID string) (*entity.Inventory, error) {
	return m.Get(ctx, companyID, productID)
}

func (m *memInventoryRepo) Create(_ context.Context, inv *entity.Inventory) error {
	key := invKey(inv.CompanyID, inv.ProductID)
	if _, ok := m.rows[key]; ok {
		return domain.ErrDuplicate
	}
	cp := *inv
	m.rows[key] = &cp
	return nil
}

// ApplyDelta suma el delta sobre la fila almacenada con piso en cero, como el
// UPDATE relativo del repositorio real.
func (m *memInventoryRepo) ApplyDelta(_ context.Context, companyID, productID string, delta decimal.Decimal) (*entity.Inventory, error) {
	row, ok := m.rows[invKey(companyID, productID)]
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

func (m *memInventoryRepo) ListLowStock(_ context.Context, companyID string) ([]*entity.Inventory, error) {
	var out []*entity.Inventory
	for _, row := range m.rows {
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

type memBatchRepo struct {
	batches []*entity.StockBatch
}

func (m *memBatchRepo) Create(_ context.Context, batch *entity.StockBatch) error {
	for _, b := range m.batches {
		if b.CompanyID == batch.CompanyID && b.ProductID == batch.ProductID && b.BatchNo == batch.BatchNo {
			return domain.ErrDuplicate
		}
	}
	cp := *batch
	m.batches = append(m.batches, &cp)
	return nil
}

func (m *memBatchRepo) GetByID(_ context.Context, companyID, id string) (*entity.StockBatch, error) {
	for _, b := range m.batches {
		if b.CompanyID == companyID && b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memBatchRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.StockBatch, error) {
	return m.GetByID(ctx, companyID, id)
}

func (m *memBatchRepo) ListDepletableForUpdate(_ context.Context, companyID, productID string) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	for _, b := range m.batches {
		if b.CompanyID == companyID && b.ProductID == productID && b.IsActive && b.Quantity.GreaterThan(decimal.Zero) {
			cp := *b
			out = append(out, &cp)
		}
	}
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

func (m *memBatchRepo) UpdateQuantity(_ context.Context, companyID, id string, qty decimal.Decimal) error {
	for _, b := range m.batches {
		if b.CompanyID == companyID && b.ID == id {
			b.Quantity = qty
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memBatchRepo) ListExpired(_ context.Context, companyID string) ([]*entity.StockBatch, error) {
	now := time.Now()
	var out []*entity.StockBatch
	for _, b := range m.batches {
		if b.CompanyID == companyID && b.IsActive && b.Quantity.GreaterThan(decimal.Zero) && b.Expired(now) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memBatchRepo) SumRemaining(_ context.Context, companyID, productID string) (decimal.Decimal, bool, error) {
	total := decimal.Zero
	hasBatches := false
	for _, b := range m.batches {
		if b.CompanyID == companyID && b.ProductID == productID && b.IsActive {
			hasBatches = true
			total = total.Add(b.Quantity)
		}
	}
	return total, hasBatches, nil
}

type memAdjustmentRepo struct {
	adjustments []*entity.StockAdjustment
}

func (m *memAdjustmentRepo) Create(_ context.Context, adj *entity.StockAdjustment) error {
	cp := *adj
	m.adjustments = append(m.adjustments, &cp)
	return nil
}

func (m *memAdjustmentRepo) ListByProduct(_ context.Context, companyID, productID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	var out []*entity.StockAdjustment
	for _, a := range m.adjustments {
		if a.CompanyID == companyID && a.ProductID == productID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memOrderRepo struct {
	orders map[string]*entity.PurchaseOrder
	seq    map[string]int64
}

func copyOrder(o *entity.PurchaseOrder) *entity.PurchaseOrder {
	cp := *o
	cp.Items = append([]entity.PurchaseOrderItem(nil), o.Items...)
	if o.ReceivedAt != nil {
		t := *o.ReceivedAt
		cp.ReceivedAt = &t
	}
	return &cp
}

func (m *memOrderRepo) Create(_ context.Context, order *entity.PurchaseOrder) error {
	if _, ok := m.orders[order.ID]; ok {
		return domain.ErrDuplicate
	}
	m.orders[order.ID] = copyOrder(order)
	return nil
}

func (m *memOrderRepo) GetByID(_ context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	order, ok := m.orders[id]
	if !ok || order.CompanyID != companyID {
		return nil, nil
	}
	return copyOrder(order), nil
}

func (m *memOrderRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return m.GetByID(ctx, companyID, id)
}

func (m *memOrderRepo) Update(_ context.Context, order *entity.PurchaseOrder) error {
	if _, ok := m.orders[order.ID]; !ok {
		return domain.ErrNotFound
	}
	m.orders[order.ID] = copyOrder(order)
	return nil
}

func (m *memOrderRepo) List(_ context.Context, companyID, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	for _, o := range m.orders {
		if o.CompanyID != companyID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNo < out[j].OrderNo })
	return out, nil
}

func (m *memOrderRepo) NextOrderNumber(_ context.Context, companyID string) (int64, error) {
	m.seq[companyID]++
	return m.seq[companyID], nil
}

// memTxRunner implementa ReceivingTxRunner y el TxRunner de inventario sobre
// el mismo estado en memoria.
type memTxRunner struct {
	inv     *memInventoryRepo
	batches *memBatchRepo
	adjs    *memAdjustmentRepo
	orders  *memOrderRepo
}

func newMemTxRunner() *memTxRunner {
	return &memTxRunner{
		inv:     &memInventoryRepo{rows: make(map[string]*entity.Inventory)},
		batches: &memBatchRepo{},
		adjs:    &memAdjustmentRepo{},
		orders:  &memOrderRepo{orders: make(map[string]*entity.PurchaseOrder), seq: make(map[string]int64)},
	}
}

func (m *memTxRunner) RunReceiving(_ context.Context, fn func(
	repository.InventoryRepository,
	repository.StockBatchRepository,
	repository.PurchaseOrderRepository,
) error) error {
	return fn(m.inv, m.batches, m.orders)
}

func (m *memTxRunner) Run(_ context.Context, fn func(
	repository.InventoryRepository,
	repository.StockBatchRepository,
	repository.StockAdjustmentRepository,
) error) error {
	return fn(m.inv, m.batches, m.adjs)
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func datePtr(t time.Time) *time.Time { return &t }
