package purchasing

import (
	"context"

	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
)

// ReceivingTxRunner ejecuta la recepción de una orden de compra dentro de una
// transacción: creación de lotes, incremento del agregado y actualización de la
// orden se aplican todos o ninguno. Es el único punto del sistema donde la
// atomicidad entre entidades es requisito duro.
type ReceivingTxRunner interface {
	RunReceiving(ctx context.Context, fn func(
		invRepo repository.InventoryRepository,
		batchRepo repository.StockBatchRepository,
		orderRepo repository.PurchaseOrderRepository,
	) error) error
}
