package purchasing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-backoffice/internal/domain"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
)

// OrderItemInputDTO línea pedida al crear una orden de compra.
type OrderItemInputDTO struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// CreateOrderInputDTO entrada para crear una orden de compra.
type CreateOrderInputDTO struct {
	CompanyID  string
	UserID     string
	SupplierID *string
	Notes      string
	Items      []OrderItemInputDTO
}

// OrderUseCase crea, consulta y cancela órdenes de compra.
type OrderUseCase struct {
	orderRepo repository.PurchaseOrderRepository
	txRunner  ReceivingTxRunner
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(orderRepo repository.PurchaseOrderRepository, txRunner ReceivingTxRunner) *OrderUseCase {
	return &OrderUseCase{orderRepo: orderRepo, txRunner: txRunner}
}

// Create crea la orden en estado ordered con consecutivo por empresa (OC-000001, ...).
func (uc *OrderUseCase) Create(ctx context.Context, in CreateOrderInputDTO) (*entity.PurchaseOrder, error) {
	if in.CompanyID == "" || in.UserID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.ProductID == "" || !it.Quantity.GreaterThan(decimal.Zero) || it.UnitCost.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	}

	seq, err := uc.orderRepo.NextOrderNumber(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &entity.PurchaseOrder{
		ID:         uuid.New().String(),
		CompanyID:  in.CompanyID,
		SupplierID: in.SupplierID,
		OrderNo:    fmt.Sprintf("OC-%06d", seq),
		Status:     entity.POStatusOrdered,
		Notes:      strings.TrimSpace(in.Notes),
		OrderedAt:  now,
		CreatedAt:  now,
		CreatedBy:  in.UserID,
		UpdatedAt:  now,
	}
	for _, it := range in.Items {
		order.Items = append(order.Items, entity.PurchaseOrderItem{
			ID:          uuid.New().String(),
			OrderID:     order.ID,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			ReceivedQty: decimal.Zero,
			UnitCost:    it.UnitCost,
		})
	}
	if err := uc.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetByID devuelve la orden con sus líneas, acotada a la empresa.
func (uc *OrderUseCase) GetByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	if companyID == "" || id == "" {
		return nil, domain.ErrInvalidInput
	}
	order, err := uc.orderRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// List devuelve órdenes de la empresa, opcionalmente filtradas por estado.
func (uc *OrderUseCase) List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.orderRepo.List(ctx, companyID, status, limit, offset)
}

// Cancel pasa la orden a cancelled. received y cancelled son terminales:
// cancelar una orden terminal devuelve ErrConflict.
func (uc *OrderUseCase) Cancel(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	if companyID == "" || id == "" {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.PurchaseOrder
	err := uc.txRunner.RunReceiving(ctx, func(
		_ repository.InventoryRepository,
		_ repository.StockBatchRepository,
		orderRepo repository.PurchaseOrderRepository,
	) error {
		order, err := orderRepo.GetByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.Terminal() {
			return domain.ErrConflict
		}
		order.Status = entity.POStatusCancelled
		order.UpdatedAt = time.Now()
		if err := orderRepo.Update(ctx, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
