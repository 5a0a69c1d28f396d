package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
)

// InventoryRepository define el puerto para el agregado de stock por empresa+producto.
// Usado dentro de transacciones para garantizar consistencia con los lotes.
type InventoryRepository interface {
	Get(ctx context.Context, companyID, productID string) (*entity.Inventory, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE); nil si no existe.
	GetForUpdate(ctx context.Context, companyID, productID string) (*entity.Inventory, error)
	// Create inserta la fila nueva; devuelve domain.ErrDuplicate si otro caller ganó
	// la carrera de creación (violación del único company_id+product_id).
	Create(ctx context.Context, inv *entity.Inventory) error
	// ApplyDelta suma el delta a la cantidad de forma atómica (relativa, no
	// absoluta) con piso en cero, y devuelve la fila resultante; nil si no existe.
	// Dos incrementos concurrentes no se pisan entre sí.
	ApplyDelta(ctx context.Context, companyID, productID string, delta decimal.Decimal) (*entity.Inventory, error)

	// ListLowStock devuelve los agregados con cantidad <= nivel de reorden (> 0).
	ListLowStock(ctx context.Context, companyID string) ([]*entity.Inventory, error)
}
