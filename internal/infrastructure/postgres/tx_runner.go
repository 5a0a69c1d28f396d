package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/retail-backoffice/internal/application/inventory"
	"github.com/tu-usuario/retail-backoffice/internal/application/purchasing"
	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
)

// Ensure TxRunner implementa los runners de inventario y de recepción.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ purchasing.ReceivingTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con los repos del motor de inventario
// atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	invRepo repository.InventoryRepository,
	batchRepo repository.StockBatchRepository,
	adjRepo repository.StockAdjustmentRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	invRepo := NewInventoryRepository(tx)
	batchRepo := NewStockBatchRepository(tx)
	adjRepo := NewStockAdjustmentRepository(tx)

	if err := fn(invRepo, batchRepo, adjRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunReceiving inicia una transacción con los repos de la recepción de órdenes
// de compra (agregado, lotes y orden).
func (r *TxRunner) RunReceiving(ctx context.Context, fn func(
	invRepo repository.InventoryRepository,
	batchRepo repository.StockBatchRepository,
	orderRepo repository.PurchaseOrderRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	invRepo := NewInventoryRepository(tx)
	batchRepo := NewStockBatchRepository(tx)
	orderRepo := NewPurchaseOrderRepository(tx)

	if err := fn(invRepo, batchRepo, orderRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
