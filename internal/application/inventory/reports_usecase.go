package inventory

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-backoffice/internal/domain"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
)

// ReportsUseCase agrupa las vistas de lectura del inventario: bajo stock,
// lotes vencidos, historial de ajustes y conciliación agregado/lotes.
// Solo consultas, sin efectos.
type ReportsUseCase struct {
	invRepo   repository.InventoryRepository
	batchRepo repository.StockBatchRepository
	adjRepo   repository.StockAdjustmentRepository
}

// NewReportsUseCase construye el caso de uso de reportes.
func NewReportsUseCase(
	invRepo repository.InventoryRepository,
	batchRepo repository.StockBatchRepository,
	adjRepo repository.StockAdjustmentRepository,
) *ReportsUseCase {
	return &ReportsUseCase{invRepo: invRepo, batchRepo: batchRepo, adjRepo: adjRepo}
}

// ListLowStock devuelve los agregados con cantidad <= nivel de reorden.
func (uc *ReportsUseCase) ListLowStock(ctx context.Context, companyID string) ([]*entity.Inventory, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.invRepo.ListLowStock(ctx, companyID)
}

// ListExpiredBatches devuelve los lotes ya vencidos con cantidad restante > 0.
func (uc *ReportsUseCase) ListExpiredBatches(ctx context.Context, companyID string) ([]*entity.StockBatch, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.batchRepo.ListExpired(ctx, companyID)
}

// ListAdjustments devuelve el historial de ajustes de un producto, paginado.
func (uc *ReportsUseCase) ListAdjustments(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	if companyID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.adjRepo.ListByProduct(ctx, companyID, productID, limit, offset)
}

// ReconciliationResult compara el agregado cacheado contra la suma de lotes.
// Cuando el producto maneja lotes, el libro de lotes es la fuente de verdad;
// Drift distinto de cero señala deriva entre las dos rutas de escritura.
type ReconciliationResult struct {
	CompanyID    string
	ProductID    string
	Aggregate    decimal.Decimal
	BatchTotal   decimal.Decimal
	Drift        decimal.Decimal // Aggregate - BatchTotal
	BatchTracked bool
	Consistent   bool
}

// Reconcile calcula la conciliación para un producto.
func (uc *ReportsUseCase) Reconcile(ctx context.Context, companyID, productID string) (*ReconciliationResult, error) {
	if companyID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	inv, err := uc.invRepo.Get(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	aggregate := decimal.Zero
	if inv != nil {
		aggregate = inv.Quantity
	}
	total, hasBatches, err := uc.batchRepo.SumRemaining(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	res := &ReconciliationResult{
		CompanyID:    companyID,
		ProductID:    productID,
		Aggregate:    aggregate,
		BatchTotal:   total,
		Drift:        aggregate.Sub(total),
		BatchTracked: hasBatches,
	}
	// Un producto sin lotes se considera consistente por definición
	res.Consistent = !hasBatches || res.Drift.IsZero()
	return res, nil
}
