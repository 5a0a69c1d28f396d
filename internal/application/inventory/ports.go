package inventory

import (
	"context"

	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza atomicidad para el motor de inventario: lote, agregado
// y auditoría se aplican todos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		invRepo repository.InventoryRepository,
		batchRepo repository.StockBatchRepository,
		adjRepo repository.StockAdjustmentRepository,
	) error) error
}
