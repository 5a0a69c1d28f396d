package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
)

// StockBatchRepository define el puerto de persistencia para lotes de stock.
type StockBatchRepository interface {
	Create(ctx context.Context, batch *entity.StockBatch) error
	GetByID(ctx context.Context, companyID, id string) (*entity.StockBatch, error)
	// GetByIDForUpdate bloquea el lote para update dentro de la transacción.
	GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.StockBatch, error)
	// ListDepletableForUpdate devuelve los lotes activos con cantidad > 0 de un
	// producto, bloqueados, en orden FEFO: vencimiento ascendente (sin vencimiento
	// al final) y fecha de recepción como desempate.
	ListDepletableForUpdate(ctx context.Context, companyID, productID string) ([]*entity.StockBatch, error)
	// UpdateQuantity persiste la nueva cantidad restante del lote.
	UpdateQuantity(ctx context.Context, companyID, id string, qty decimal.Decimal) error

	// ListExpired devuelve lotes vencidos con cantidad restante > 0.
	ListExpired(ctx context.Context, companyID string) ([]*entity.StockBatch, error)
	// SumRemaining suma la cantidad restante de los lotes activos de un producto;
	// hasBatches es false si el producto no maneja lotes.
	SumRemaining(ctx context.Context, companyID, productID string) (total decimal.Decimal, hasBatches bool, err error)
}
