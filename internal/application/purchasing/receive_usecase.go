package purchasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-backoffice/internal/application/inventory"
	"github.com/tu-usuario/retail-backoffice/internal/domain"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
	"github.com/tu-usuario/retail-backoffice/pkg/metrics"
)

// Políticas de recepción. Constantes con nombre para que los tests afirmen la
// decisión en vez de redescubrirla por comportamiento.
const (
	// SkipInvalidReceiptLines: una declaración sin producto, sin número de lote o
	// con cantidad no positiva se omite en silencio, no se rechaza la recepción.
	SkipInvalidReceiptLines = true
	// CapReceiptAtOrderedQty: la cantidad recibida de una línea se recorta a lo
	// pedido; la sobre-recepción no es error.
	CapReceiptAtOrderedQty = true
)

// BatchDeclarationDTO declara un lote recibido contra una orden de compra.
type BatchDeclarationDTO struct {
	ProductID  string
	BatchNo    string
	ExpiryDate *time.Time
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	UnitPrice  decimal.Decimal
}

// ReceiveUseCase ejecuta la recepción de una orden de compra: crea los lotes,
// incrementa el agregado, actualiza lo recibido por línea y recalcula el estado
// de la orden, todo dentro de una sola transacción.
type ReceiveUseCase struct {
	txRunner ReceivingTxRunner
}

// NewReceiveUseCase construye el caso de uso.
func NewReceiveUseCase(txRunner ReceivingTxRunner) *ReceiveUseCase {
	return &ReceiveUseCase{txRunner: txRunner}
}

// Receive procesa las declaraciones de lotes recibidos contra la orden.
// Cualquier fallo intermedio revierte la transacción completa: ninguna recepción
// a medias queda visible.
func (uc *ReceiveUseCase) Receive(ctx context.Context, companyID, orderID string, batches []BatchDeclarationDTO) (*entity.PurchaseOrder, error) {
	if companyID == "" || orderID == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(batches) == 0 {
		return nil, domain.ErrInvalidInput
	}

	var (
		result   *entity.PurchaseOrder
		received decimal.Decimal
	)
	err := uc.txRunner.RunReceiving(ctx, func(
		invRepo repository.InventoryRepository,
		batchRepo repository.StockBatchRepository,
		orderRepo repository.PurchaseOrderRepository,
	) error {
		order, err := orderRepo.GetByIDForUpdate(ctx, companyID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.Terminal() {
			return domain.ErrConflict
		}

		now := time.Now()
		for _, decl := range batches {
			if decl.ProductID == "" || decl.BatchNo == "" || !decl.Quantity.GreaterThan(decimal.Zero) {
				if SkipInvalidReceiptLines {
					continue
				}
				return domain.ErrInvalidInput
			}

			batch := &entity.StockBatch{
				ID:         uuid.New().String(),
				CompanyID:  companyID,
				ProductID:  decl.ProductID,
				SupplierID: order.SupplierID,
				BatchNo:    decl.BatchNo,
				Quantity:   decl.Quantity,
				ExpiryDate: decl.ExpiryDate,
				UnitCost:   decl.UnitCost,
				UnitPrice:  decl.UnitPrice,
				ReceivedAt: now,
				IsActive:   true,
			}
			if err := batchRepo.Create(ctx, batch); err != nil {
				return err
			}

			if _, err := inventory.IncrementInventory(ctx, invRepo, companyID, decl.ProductID, decl.Quantity); err != nil {
				return err
			}
			received = received.Add(decl.Quantity)

			// Sube lo recibido en la línea correspondiente, recortado a lo pedido
			for i := range order.Items {
				item := &order.Items[i]
				if item.ProductID != decl.ProductID {
					continue
				}
				newRecv := item.ReceivedQty.Add(decl.Quantity)
				if CapReceiptAtOrderedQty && newRecv.GreaterThan(item.Quantity) {
					newRecv = item.Quantity
				}
				item.ReceivedQty = newRecv
				break
			}
		}

		order.RecomputeStatus()
		if order.Status == entity.POStatusReceived {
			order.ReceivedAt = &now
		}
		order.UpdatedAt = now
		if err := orderRepo.Update(ctx, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	f, _ := received.Float64()
	metrics.StockReceived.Add(f)
	return result, nil
}
