package repository

import (
	"context"

	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
)

// StockAdjustmentRepository define el puerto para el registro de ajustes manuales.
// Solo inserción y lectura: los ajustes son inmutables (auditoría).
type StockAdjustmentRepository interface {
	Create(ctx context.Context, adj *entity.StockAdjustment) error
	ListByProduct(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.StockAdjustment, error)
}
