package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/retail-backoffice/internal/domain"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implementación de PurchaseOrderRepository sobre PostgreSQL (usable con pool o tx).
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const orderColumns = `id, company_id, supplier_id, order_no, status, notes, ordered_at, received_at, created_at, created_by, updated_at`

// Create persiste cabecera y líneas de una orden nueva.
func (r *PurchaseOrderRepo) Create(ctx context.Context, order *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (id, company_id, supplier_id, order_no, status, notes, ordered_at, received_at, created_at, created_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.CompanyID, order.SupplierID, order.OrderNo, order.Status,
		order.Notes, order.OrderedAt, order.ReceivedAt, order.CreatedAt, order.CreatedBy, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create purchase order: %w", err)
	}
	for i := range order.Items {
		it := &order.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		itemQuery := `
			INSERT INTO purchase_order_items (id, order_id, product_id, quantity, received_qty, unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6)`
		if _, err := r.q.Exec(ctx, itemQuery,
			it.ID, order.ID, it.ProductID, it.Quantity, it.ReceivedQty, it.UnitCost,
		); err != nil {
			return fmt.Errorf("create purchase order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden con sus líneas; nil si no existe para la empresa.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.getByID(ctx, companyID, id, false)
}

// GetByIDForUpdate obtiene la orden bloqueando la cabecera (SELECT FOR UPDATE).
func (r *PurchaseOrderRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.getByID(ctx, companyID, id, true)
}

func (r *PurchaseOrderRepo) getByID(ctx context.Context, companyID, id string, forUpdate bool) (*entity.PurchaseOrder, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM purchase_orders WHERE company_id = $1 AND id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var o entity.PurchaseOrder
	err := r.q.QueryRow(ctx, query, companyID, id).Scan(
		&o.ID, &o.CompanyID, &o.SupplierID, &o.OrderNo, &o.Status,
		&o.Notes, &o.OrderedAt, &o.ReceivedAt, &o.CreatedAt, &o.CreatedBy, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *PurchaseOrderRepo) loadItems(ctx context.Context, orderID string) ([]entity.PurchaseOrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, received_qty, unit_cost
		FROM purchase_order_items WHERE order_id = $1
		ORDER BY product_id ASC`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("load purchase order items: %w", err)
	}
	defer rows.Close()
	var items []entity.PurchaseOrderItem
	for rows.Next() {
		var it entity.PurchaseOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.ReceivedQty, &it.UnitCost); err != nil {
			return nil, fmt.Errorf("scan purchase order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Update persiste cabecera y cantidades recibidas de las líneas.
func (r *PurchaseOrderRepo) Update(ctx context.Context, order *entity.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders
		SET status = $3, notes = $4, received_at = $5, updated_at = $6
		WHERE company_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query,
		order.CompanyID, order.ID, order.Status, order.Notes, order.ReceivedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	for i := range order.Items {
		it := &order.Items[i]
		itemQuery := `
			UPDATE purchase_order_items SET received_qty = $2
			WHERE id = $1`
		if _, err := r.q.Exec(ctx, itemQuery, it.ID, it.ReceivedQty); err != nil {
			return fmt.Errorf("update purchase order item: %w", err)
		}
	}
	return nil
}

// List devuelve órdenes de la empresa, opcionalmente por estado, más recientes primero.
func (r *PurchaseOrderRepo) List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM purchase_orders WHERE company_id = $1`
	args := []any{companyID}
	pos := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY ordered_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		var o entity.PurchaseOrder
		if err := rows.Scan(
			&o.ID, &o.CompanyID, &o.SupplierID, &o.OrderNo, &o.Status,
			&o.Notes, &o.OrderedAt, &o.ReceivedAt, &o.CreatedAt, &o.CreatedBy, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range list {
		items, err := r.loadItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items
	}
	return list, nil
}

// NextOrderNumber asigna el siguiente consecutivo de orden para la empresa.
// El upsert sobre el contador es atómico: concurrentes nunca reciben el mismo número.
func (r *PurchaseOrderRepo) NextOrderNumber(ctx context.Context, companyID string) (int64, error) {
	query := `
		INSERT INTO purchase_order_counters (company_id, seq)
		VALUES ($1, 1)
		ON CONFLICT (company_id)
		DO UPDATE SET seq = purchase_order_counters.seq + 1
		RETURNING seq`
	var seq int64
	if err := r.q.QueryRow(ctx, query, companyID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return seq, nil
}
