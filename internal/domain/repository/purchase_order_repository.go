package repository

import (
	"context"

	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
)

// PurchaseOrderRepository define el puerto de persistencia para órdenes de compra.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error)
	// GetByIDForUpdate bloquea la orden (y carga sus líneas) dentro de la transacción.
	GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error)
	// Update persiste cabecera y líneas de la orden.
	Update(ctx context.Context, order *entity.PurchaseOrder) error
	List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.PurchaseOrder, error)

	// NextOrderNumber asigna el siguiente consecutivo de orden para la empresa
	// (monotónico, seguro ante concurrencia).
	NextOrderNumber(ctx context.Context, companyID string) (int64, error)
}
