package repository

import (
	"context"

	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
)

// IdempotencyRepository define el puerto para los registros de idempotencia.
type IdempotencyRepository interface {
	// Get devuelve el registro vigente (no expirado) para la clave compuesta,
	// o nil si no existe o ya expiró. La expiración se verifica en la lectura.
	Get(ctx context.Context, key, method, path, companyID string) (*entity.IdempotencyRecord, error)
	// Upsert inserta o reemplaza el registro; dos reintentos en carrera colapsan
	// sobre el índice único (key, method, path, company_id).
	Upsert(ctx context.Context, rec *entity.IdempotencyRecord) error
}
