package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-backoffice/internal/domain"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
	"github.com/tu-usuario/retail-backoffice/pkg/metrics"
)

// Prefijo del número de lote sintético que crea una devolución sin lote de origen.
const ReturnBatchPrefix = "DEV-"

// AdjustmentInputDTO entrada para registrar un ajuste manual de stock.
type AdjustmentInputDTO struct {
	CompanyID string
	ProductID string
	BatchID   *string
	Quantity  decimal.Decimal // delta con signo; nunca cero
	Reason    string
	Notes     string
	UserID    string
}

// AdjustmentUseCase registra correcciones manuales de stock (daño, robo, auditoría,
// vencimiento, devolución, otro) de forma transaccional: lote, agregado y fila de
// auditoría se aplican todos o ninguno.
type AdjustmentUseCase struct {
	txRunner TxRunner
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(txRunner TxRunner) *AdjustmentUseCase {
	return &AdjustmentUseCase{txRunner: txRunner}
}

// RecordAdjustment aplica el delta al lote indicado (si hay), al agregado, y persiste
// el registro de auditoría con el delta original sin recortar.
// Una devolución positiva sin lote crea un lote sintético DEV-<id> para que el stock
// devuelto reentre al libro FEFO.
func (uc *AdjustmentUseCase) RecordAdjustment(ctx context.Context, in AdjustmentInputDTO) (*entity.StockAdjustment, error) {
	if in.CompanyID == "" || in.ProductID == "" || in.UserID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidAdjustReason(in.Reason) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	adj := &entity.StockAdjustment{
		ID:        uuid.New().String(),
		CompanyID: in.CompanyID,
		ProductID: in.ProductID,
		BatchID:   in.BatchID,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
		CreatedBy: in.UserID,
	}

	err := uc.txRunner.Run(ctx, func(
		invRepo repository.InventoryRepository,
		batchRepo repository.StockBatchRepository,
		adjRepo repository.StockAdjustmentRepository,
	) error {
		switch {
		case in.BatchID != nil:
			// Ajuste sobre un lote específico: cantidad restante con piso en cero
			batch, err := batchRepo.GetByIDForUpdate(ctx, in.CompanyID, *in.BatchID)
			if err != nil {
				return err
			}
			if batch == nil || batch.ProductID != in.ProductID {
				return domain.ErrNotFound
			}
			newQty := batch.Quantity.Add(in.Quantity)
			if newQty.LessThan(decimal.Zero) {
				newQty = decimal.Zero
			}
			if err := batchRepo.UpdateQuantity(ctx, in.CompanyID, batch.ID, newQty); err != nil {
				return err
			}
		case in.Reason == entity.AdjustReasonReturn && in.Quantity.GreaterThan(decimal.Zero):
			// Devolución sin lote de origen: lote sintético ligado al ajuste
			batch := &entity.StockBatch{
				ID:         uuid.New().String(),
				CompanyID:  in.CompanyID,
				ProductID:  in.ProductID,
				BatchNo:    ReturnBatchPrefix + adj.ID[:8],
				Quantity:   in.Quantity,
				ReceivedAt: now,
				IsActive:   true,
			}
			if err := batchRepo.Create(ctx, batch); err != nil {
				return err
			}
			adj.BatchID = &batch.ID
		}

		if _, err := IncrementInventory(ctx, invRepo, in.CompanyID, in.ProductID, in.Quantity); err != nil {
			return err
		}
		return adjRepo.Create(ctx, adj)
	})
	if err != nil {
		return nil, err
	}

	metrics.Adjustments.WithLabelValues(in.Reason).Inc()
	return adj, nil
}
