package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
)

var _ repository.StockAdjustmentRepository = (*StockAdjustmentRepo)(nil)

// StockAdjustmentRepo implementación sobre PostgreSQL. Solo inserta y lee:
// los ajustes son un registro de auditoría inmutable.
type StockAdjustmentRepo struct {
	q Querier
}

// NewStockAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAdjustmentRepository(q Querier) *StockAdjustmentRepo {
	return &StockAdjustmentRepo{q: q}
}

// Create persiste un ajuste manual de stock.
func (r *StockAdjustmentRepo) Create(ctx context.Context, adj *entity.StockAdjustment) error {
	if adj.ID == "" {
		adj.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_adjustments (id, company_id, product_id, batch_id, quantity, reason, notes, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	createdBy := (*string)(nil)
	if adj.CreatedBy != "" {
		createdBy = &adj.CreatedBy
	}
	_, err := r.q.Exec(ctx, query,
		adj.ID, adj.CompanyID, adj.ProductID, adj.BatchID,
		adj.Quantity, adj.Reason, adj.Notes, adj.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create stock adjustment: %w", err)
	}
	return nil
}

// ListByProduct lista los ajustes de un producto, más recientes primero.
func (r *StockAdjustmentRepo) ListByProduct(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	query := `
		SELECT id, company_id, product_id, batch_id, quantity, reason, notes, created_at, created_by
		FROM stock_adjustments
		WHERE company_id = $1 AND product_id = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, companyID, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list adjustments by product: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockAdjustment
	for rows.Next() {
		var a entity.StockAdjustment
		var createdBy *string
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.ProductID, &a.BatchID,
			&a.Quantity, &a.Reason, &a.Notes, &a.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan stock adjustment: %w", err)
		}
		if createdBy != nil {
			a.CreatedBy = *createdBy
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
