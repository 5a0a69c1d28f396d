package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderItemRequest línea pedida al crear una orden de compra.
type CreateOrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// CreateOrderRequest body para POST /api/purchase-orders.
type CreateOrderRequest struct {
	SupplierID *string                  `json:"supplier_id,omitempty"`
	Notes      string                   `json:"notes,omitempty"`
	Items      []CreateOrderItemRequest `json:"items" validate:"required,min=1"`
}

// ReceiveBatchRequest declaración de un lote recibido contra la orden.
type ReceiveBatchRequest struct {
	ProductID  string          `json:"product_id"`
	BatchNo    string          `json:"batch_no"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// ReceiveOrderRequest body para POST /api/purchase-orders/:id/receive.
type ReceiveOrderRequest struct {
	Batches []ReceiveBatchRequest `json:"batches" validate:"required,min=1"`
}

// OrderItemResponse línea de la orden en respuestas.
type OrderItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	ReceivedQty decimal.Decimal `json:"received_qty"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// OrderResponse salida de una orden de compra.
type OrderResponse struct {
	ID         string              `json:"id"`
	SupplierID *string             `json:"supplier_id,omitempty"`
	OrderNo    string              `json:"order_no"`
	Status     string              `json:"status"`
	Notes      string              `json:"notes,omitempty"`
	Items      []OrderItemResponse `json:"items"`
	OrderedAt  time.Time           `json:"ordered_at"`
	ReceivedAt *time.Time          `json:"received_at,omitempty"`
}
