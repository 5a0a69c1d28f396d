package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepleteStockRequest body para POST /api/inventory/depletions.
type DepleteStockRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
}

// AdjustStockRequest body para POST /api/inventory/adjustments.
type AdjustStockRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	BatchID   *string         `json:"batch_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
	Reason    string          `json:"reason" validate:"required,oneof=damage theft audit expiry return other"`
	Notes     string          `json:"notes,omitempty"`
}

// InventoryResponse salida del agregado de stock de un producto.
type InventoryResponse struct {
	CompanyID    string          `json:"company_id"`
	ProductID    string          `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	MinStock     decimal.Decimal `json:"min_stock"`
	MaxStock     decimal.Decimal `json:"max_stock"`
	IsActive     bool            `json:"is_active"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// StockBatchResponse salida de un lote.
type StockBatchResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	SupplierID *string         `json:"supplier_id,omitempty"`
	BatchNo    string          `json:"batch_no"`
	Quantity   decimal.Decimal `json:"quantity"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	ReceivedAt time.Time       `json:"received_at"`
}

// AdjustmentResponse salida de un ajuste registrado.
type AdjustmentResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	BatchID   *string         `json:"batch_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	CreatedBy string          `json:"created_by"`
}

// ReconciliationResponse salida de la conciliación agregado vs lotes de un producto.
type ReconciliationResponse struct {
	ProductID    string          `json:"product_id"`
	Aggregate    decimal.Decimal `json:"aggregate_qty"`
	BatchTotal   decimal.Decimal `json:"batch_total_qty"`
	Drift        decimal.Decimal `json:"drift"`
	BatchTracked bool            `json:"batch_tracked"`
	Consistent   bool            `json:"consistent"`
}
