package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-backoffice/internal/domain"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
)

var _ repository.StockBatchRepository = (*StockBatchRepo)(nil)

// StockBatchRepo implementación de StockBatchRepository sobre PostgreSQL (usable con pool o tx).
type StockBatchRepo struct {
	q Querier
}

// NewStockBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockBatchRepository(q Querier) *StockBatchRepo {
	return &StockBatchRepo{q: q}
}

const batchColumns = `id, company_id, product_id, supplier_id, batch_no, quantity, expiry_date, unit_cost, unit_price, received_at, is_active`

func scanBatch(row pgx.Row) (*entity.StockBatch, error) {
	var b entity.StockBatch
	err := row.Scan(
		&b.ID, &b.CompanyID, &b.ProductID, &b.SupplierID, &b.BatchNo,
		&b.Quantity, &b.ExpiryDate, &b.UnitCost, &b.UnitPrice,
		&b.ReceivedAt, &b.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// Create persiste un lote nuevo. Violación del único (company, product, batch_no)
// se reporta como domain.ErrDuplicate.
func (r *StockBatchRepo) Create(ctx context.Context, batch *entity.StockBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_batches (id, company_id, product_id, supplier_id, batch_no, quantity, expiry_date, unit_cost, unit_price, received_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		batch.ID, batch.CompanyID, batch.ProductID, batch.SupplierID, batch.BatchNo,
		batch.Quantity, batch.ExpiryDate, batch.UnitCost, batch.UnitPrice,
		batch.ReceivedAt, batch.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create stock batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por id, acotado a la empresa; nil si no existe.
func (r *StockBatchRepo) GetByID(ctx context.Context, companyID, id string) (*entity.StockBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM stock_batches WHERE company_id = $1 AND id = $2`
	b, err := scanBatch(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		return nil, fmt.Errorf("get stock batch: %w", err)
	}
	return b, nil
}

// GetByIDForUpdate obtiene un lote y bloquea la fila (SELECT FOR UPDATE).
func (r *StockBatchRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.StockBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM stock_batches WHERE company_id = $1 AND id = $2
		FOR UPDATE`
	b, err := scanBatch(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		return nil, fmt.Errorf("get stock batch for update: %w", err)
	}
	return b, nil
}

// ListDepletableForUpdate devuelve los lotes activos con cantidad > 0 del producto,
// bloqueados para update, en orden FEFO: vencimiento ascendente con los lotes sin
// vencimiento al final, y fecha de recepción como desempate.
func (r *StockBatchRepo) ListDepletableForUpdate(ctx context.Context, companyID, productID string) ([]*entity.StockBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM stock_batches
		WHERE company_id = $1 AND product_id = $2 AND is_active AND quantity > 0
		ORDER BY expiry_date ASC NULLS LAST, received_at ASC
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, companyID, productID)
	if err != nil {
		return nil, fmt.Errorf("list depletable batches: %w", err)
	}
	defer rows.Close()
	return collectBatches(rows)
}

// UpdateQuantity persiste la nueva cantidad restante del lote.
func (r *StockBatchRepo) UpdateQuantity(ctx context.Context, companyID, id string, qty decimal.Decimal) error {
	query := `
		UPDATE stock_batches SET quantity = $3
		WHERE company_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, companyID, id, qty)
	if err != nil {
		return fmt.Errorf("update batch quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListExpired devuelve los lotes ya vencidos con cantidad restante > 0.
func (r *StockBatchRepo) ListExpired(ctx context.Context, companyID string) ([]*entity.StockBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM stock_batches
		WHERE company_id = $1 AND is_active AND quantity > 0
		  AND expiry_date IS NOT NULL AND expiry_date <= now()
		ORDER BY expiry_date ASC`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list expired batches: %w", err)
	}
	defer rows.Close()
	return collectBatches(rows)
}

// SumRemaining suma la cantidad restante de los lotes activos del producto.
// hasBatches es false si el producto nunca ha tenido lotes (no maneja libro).
func (r *StockBatchRepo) SumRemaining(ctx context.Context, companyID, productID string) (decimal.Decimal, bool, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0), COUNT(*)
		FROM stock_batches
		WHERE company_id = $1 AND product_id = $2 AND is_active`
	var total decimal.Decimal
	var count int64
	err := r.q.QueryRow(ctx, query, companyID, productID).Scan(&total, &count)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("sum remaining batches: %w", err)
	}
	return total, count > 0, nil
}

func collectBatches(rows pgx.Rows) ([]*entity.StockBatch, error) {
	var list []*entity.StockBatch
	for rows.Next() {
		var b entity.StockBatch
		if err := rows.Scan(
			&b.ID, &b.CompanyID, &b.ProductID, &b.SupplierID, &b.BatchNo,
			&b.Quantity, &b.ExpiryDate, &b.UnitCost, &b.UnitPrice,
			&b.ReceivedAt, &b.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan stock batch: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
