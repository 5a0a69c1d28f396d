package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra. received y cancelled son terminales.
const (
	POStatusDraft     = "draft"
	POStatusOrdered   = "ordered"
	POStatusPartial   = "partial"
	POStatusReceived  = "received"
	POStatusCancelled = "cancelled"
)

// PurchaseOrder representa una orden de compra a un proveedor.
// OrderNo es único y monotónicamente creciente por empresa.
type PurchaseOrder struct {
	ID         string
	CompanyID  string
	SupplierID *string
	OrderNo    string
	Status     string
	Notes      string
	Items      []PurchaseOrderItem
	OrderedAt  time.Time
	ReceivedAt *time.Time
	CreatedAt  time.Time
	CreatedBy  string
	UpdatedAt  time.Time
}

// PurchaseOrderItem es una línea de la orden: cantidad pedida y cantidad recibida.
// Invariante: ReceivedQty <= Quantity (la sobre-recepción se recorta, no se rechaza).
type PurchaseOrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	Quantity    decimal.Decimal
	ReceivedQty decimal.Decimal
	UnitCost    decimal.Decimal
}

// FullyReceived indica si la línea ya alcanzó la cantidad pedida.
func (it *PurchaseOrderItem) FullyReceived() bool {
	return it.ReceivedQty.GreaterThanOrEqual(it.Quantity)
}

// Terminal indica si el estado no admite más transiciones.
func (o *PurchaseOrder) Terminal() bool {
	return o.Status == POStatusReceived || o.Status == POStatusCancelled
}

// RecomputeStatus recalcula el estado tras una recepción: received si todas las
// líneas están completas, partial en caso contrario.
func (o *PurchaseOrder) RecomputeStatus() {
	for i := range o.Items {
		if !o.Items[i].FullyReceived() {
			o.Status = POStatusPartial
			return
		}
	}
	o.Status = POStatusReceived
}

// TotalOrdered suma las cantidades pedidas de todas las líneas.
func (o *PurchaseOrder) TotalOrdered() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].Quantity)
	}
	return total
}
