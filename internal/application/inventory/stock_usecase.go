package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-backoffice/internal/domain"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
)

// StockUseCase expone las operaciones básicas sobre el agregado de stock:
// ensure (leer-o-crear) e increment (delta con piso en cero).
type StockUseCase struct {
	invRepo repository.InventoryRepository
}

// NewStockUseCase construye el caso de uso con el repositorio atado al pool.
func NewStockUseCase(invRepo repository.InventoryRepository) *StockUseCase {
	return &StockUseCase{invRepo: invRepo}
}

// Ensure devuelve el agregado de la empresa+producto, creándolo en cero si no existe.
func (uc *StockUseCase) Ensure(ctx context.Context, companyID, productID string) (*entity.Inventory, error) {
	return EnsureInventory(ctx, uc.invRepo, companyID, productID)
}

// Increment aplica un delta (positivo o negativo) al agregado y devuelve la fila actualizada.
func (uc *StockUseCase) Increment(ctx context.Context, companyID, productID string, delta decimal.Decimal) (*entity.Inventory, error) {
	return IncrementInventory(ctx, uc.invRepo, companyID, productID, delta)
}

// EnsureInventory lee el agregado o lo crea con cantidad cero. Si dos llamadas
// concurrentes intentan crear la misma fila, el perdedor de la carrera de unicidad
// relee la fila del ganador en vez de fallar. Usable con repos atados a pool o a tx.
func EnsureInventory(ctx context.Context, repo repository.InventoryRepository, companyID, productID string) (*entity.Inventory, error) {
	if companyID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	inv, err := repo.Get(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if inv != nil {
		return inv, nil
	}
	inv = &entity.Inventory{
		CompanyID: companyID,
		ProductID: productID,
		Quantity:  decimal.Zero,
		IsActive:  true,
		UpdatedAt: time.Now(),
	}
	if err := repo.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Otro caller acaba de crearla: releer
			return repo.Get(ctx, companyID, productID)
		}
		return nil, err
	}
	return inv, nil
}

// IncrementInventory asegura la fila y aplica el delta con piso en cero:
// un sobre-decremento deja el agregado en 0 en vez de fallar en esta capa.
// Quien necesite fallo duro debe verificar disponibilidad antes (motor FEFO).
// El delta se suma en el repositorio de forma relativa, no leyendo y
// reescribiendo la cantidad absoluta: dos recepciones concurrentes del mismo
// producto no se pisan el incremento entre sí.
func IncrementInventory(ctx context.Context, repo repository.InventoryRepository, companyID, productID string, delta decimal.Decimal) (*entity.Inventory, error) {
	if _, err := EnsureInventory(ctx, repo, companyID, productID); err != nil {
		return nil, err
	}
	inv, err := repo.ApplyDelta(ctx, companyID, productID, delta)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}
