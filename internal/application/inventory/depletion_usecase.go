package inventory

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-backoffice/internal/domain"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
	"github.com/tu-usuario/retail-backoffice/pkg/metrics"
)

// DepletionUseCase implementa la salida de stock por lotes en orden FEFO
// (primero-en-vencer, primero-en-salir). Toda la operación corre en una
// transacción con bloqueo de filas: si no alcanza el stock, ningún lote queda tocado.
type DepletionUseCase struct {
	txRunner TxRunner
}

// NewDepletionUseCase construye el caso de uso.
func NewDepletionUseCase(txRunner TxRunner) *DepletionUseCase {
	return &DepletionUseCase{txRunner: txRunner}
}

// Deplete retira qty del producto consumiendo lotes en orden FEFO y descuenta el
// agregado por la cantidad completa. Si el producto no maneja lotes, descuenta
// directo del agregado (fallo ErrInsufficientStock si no alcanza). Si maneja lotes
// y el total disponible no cubre qty, falla con ErrInsufficientBatchStock sin
// aplicar ningún cambio.
func (uc *DepletionUseCase) Deplete(ctx context.Context, companyID, productID string, qty decimal.Decimal) (*entity.Inventory, error) {
	if companyID == "" || productID == "" || !qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	var result *entity.Inventory
	err := uc.txRunner.Run(ctx, func(
		invRepo repository.InventoryRepository,
		batchRepo repository.StockBatchRepository,
		_ repository.StockAdjustmentRepository,
	) error {
		// Lotes activos con cantidad > 0, bloqueados, en orden FEFO
		batches, err := batchRepo.ListDepletableForUpdate(ctx, companyID, productID)
		if err != nil {
			return err
		}

		if len(batches) == 0 {
			// Producto sin lotes: descuento directo del agregado
			inv, err := invRepo.GetForUpdate(ctx, companyID, productID)
			if err != nil {
				return err
			}
			if inv == nil || inv.Quantity.LessThan(qty) {
				return domain.ErrInsufficientStock
			}
			result, err = IncrementInventory(ctx, invRepo, companyID, productID, qty.Neg())
			return err
		}

		// Verificar disponibilidad total antes de tocar cualquier lote:
		// la operación es todo-o-nada.
		total := decimal.Zero
		for _, b := range batches {
			total = total.Add(b.Quantity)
		}
		if total.LessThan(qty) {
			return domain.ErrInsufficientBatchStock
		}

		remaining := qty
		for _, b := range batches {
			if !remaining.GreaterThan(decimal.Zero) {
				break
			}
			take := decimal.Min(b.Quantity, remaining)
			b.Quantity = b.Quantity.Sub(take)
			if err := batchRepo.UpdateQuantity(ctx, companyID, b.ID, b.Quantity); err != nil {
				return err
			}
			remaining = remaining.Sub(take)
		}

		// Descuenta el agregado por la cantidad original completa
		result, err = IncrementInventory(ctx, invRepo, companyID, productID, qty.Neg())
		return err
	})
	if err != nil {
		return nil, err
	}

	f, _ := qty.Float64()
	metrics.StockDepleted.Add(f)
	return result, nil
}
