package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inventory representa el agregado de stock de un producto por empresa (fila materializada).
// Quantity es el total cacheado; el detalle por lote vive en StockBatch.
// Invariante: Quantity nunca es negativa.
type Inventory struct {
	CompanyID    string
	ProductID    string
	Quantity     decimal.Decimal
	ReorderLevel decimal.Decimal
	MinStock     decimal.Decimal
	MaxStock     decimal.Decimal
	IsActive     bool
	UpdatedAt    time.Time
}
