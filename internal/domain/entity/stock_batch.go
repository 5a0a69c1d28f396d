package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBatch representa un lote recibido de un producto (entrada del libro de stock).
// La cantidad restante se reduce con las salidas FEFO y los ajustes; el lote nunca
// se borra: agotado queda en cero para auditoría y reportes de vencimiento.
// Único por (company_id, product_id, batch_no).
type StockBatch struct {
	ID         string
	CompanyID  string
	ProductID  string
	SupplierID *string
	BatchNo    string
	Quantity   decimal.Decimal // cantidad restante, nunca negativa
	ExpiryDate *time.Time      // nil = no vence
	UnitCost   decimal.Decimal
	UnitPrice  decimal.Decimal
	ReceivedAt time.Time
	IsActive   bool
}

// Expired indica si el lote ya venció a la fecha dada (nil ExpiryDate nunca vence).
func (b *StockBatch) Expired(at time.Time) bool {
	return b.ExpiryDate != nil && !b.ExpiryDate.After(at)
}
