package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-backoffice/internal/domain"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

const inventoryColumns = `company_id, product_id, quantity, reorder_level, min_stock, max_stock, is_active, updated_at`

func scanInventory(row pgx.Row) (*entity.Inventory, error) {
	var inv entity.Inventory
	err := row.Scan(
		&inv.CompanyID, &inv.ProductID, &inv.Quantity,
		&inv.ReorderLevel, &inv.MinStock, &inv.MaxStock,
		&inv.IsActive, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

// Get obtiene el agregado de un producto; nil si no existe.
func (r *InventoryRepo) Get(ctx context.Context, companyID, productID string) (*entity.Inventory, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM inventory WHERE company_id = $1 AND product_id = $2`
	inv, err := scanInventory(r.q.QueryRow(ctx, query, companyID, productID))
	if err != nil {
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return inv, nil
}

// GetForUpdate obtiene el agregado y bloquea la fila (SELECT FOR UPDATE); nil si no existe.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, companyID, productID string) (*entity.Inventory, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM inventory WHERE company_id = $1 AND product_id = $2
		FOR UPDATE`
	inv, err := scanInventory(r.q.QueryRow(ctx, query, companyID, productID))
	if err != nil {
		return nil, fmt.Errorf("get inventory for update: %w", err)
	}
	return inv, nil
}

// Create inserta la fila nueva. Si otro caller ganó la carrera de creación devuelve
// domain.ErrDuplicate para que el caso de uso relea.
func (r *InventoryRepo) Create(ctx context.Context, inv *entity.Inventory) error {
	query := `
		INSERT INTO inventory (company_id, product_id, quantity, reorder_level, min_stock, max_stock, is_active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`
	_, err := r.q.Exec(ctx, query,
		inv.CompanyID, inv.ProductID, inv.Quantity,
		inv.ReorderLevel, inv.MinStock, inv.MaxStock, inv.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create inventory: %w", err)
	}
	return nil
}

// ApplyDelta suma el delta a la cantidad en una sola sentencia, con piso en cero.
// La suma ocurre en SQL sobre el valor vigente de la fila, así que dos deltas
// concurrentes en transacciones separadas no se pierden entre sí.
func (r *InventoryRepo) ApplyDelta(ctx context.Context, companyID, productID string, delta decimal.Decimal) (*entity.Inventory, error) {
	query := `
		UPDATE inventory
		SET quantity = GREATEST(0, quantity + $3), updated_at = now()
		WHERE company_id = $1 AND product_id = $2
		RETURNING ` + inventoryColumns
	inv, err := scanInventory(r.q.QueryRow(ctx, query, companyID, productID, delta))
	if err != nil {
		return nil, fmt.Errorf("apply inventory delta: %w", err)
	}
	return inv, nil
}

// ListLowStock devuelve los agregados activos con cantidad <= nivel de reorden (> 0),
// ordenados por mayor déficit primero.
func (r *InventoryRepo) ListLowStock(ctx context.Context, companyID string) ([]*entity.Inventory, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM inventory
		WHERE company_id = $1
		  AND is_active
		  AND reorder_level > 0
		  AND quantity <= reorder_level
		ORDER BY (reorder_level - quantity) DESC`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.Inventory
	for rows.Next() {
		var inv entity.Inventory
		if err := rows.Scan(
			&inv.CompanyID, &inv.ProductID, &inv.Quantity,
			&inv.ReorderLevel, &inv.MinStock, &inv.MaxStock,
			&inv.IsActive, &inv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}
