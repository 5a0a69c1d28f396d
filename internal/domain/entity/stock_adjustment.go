package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Motivos de ajuste manual de stock.
const (
	AdjustReasonDamage = "damage"
	AdjustReasonTheft  = "theft"
	AdjustReasonAudit  = "audit"
	AdjustReasonExpiry = "expiry"
	AdjustReasonReturn = "return"
	AdjustReasonOther  = "other"
)

// ValidAdjustReason valida el motivo contra el catálogo.
func ValidAdjustReason(reason string) bool {
	switch reason {
	case AdjustReasonDamage, AdjustReasonTheft, AdjustReasonAudit,
		AdjustReasonExpiry, AdjustReasonReturn, AdjustReasonOther:
		return true
	}
	return false
}

// StockAdjustment es el registro de auditoría de una corrección manual de stock.
// Inmutable una vez creado. Quantity guarda el delta original con signo,
// sin recortar, aunque el lote o el agregado se hayan quedado en cero.
type StockAdjustment struct {
	ID        string
	CompanyID string
	ProductID string
	BatchID   *string // lote afectado, si el ajuste es por lote
	Quantity  decimal.Decimal
	Reason    string
	Notes     string
	CreatedAt time.Time
	CreatedBy string
}
