package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
)

var _ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)

// IdempotencyRepo implementación sobre PostgreSQL. La expiración se verifica en
// la consulta de lectura; los registros vencidos quedan a merced del upsert o de
// una limpieza manual, nunca de un barrido en segundo plano.
type IdempotencyRepo struct {
	q Querier
}

// NewIdempotencyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIdempotencyRepository(q Querier) *IdempotencyRepo {
	return &IdempotencyRepo{q: q}
}

// Get devuelve el registro vigente para la clave compuesta; nil si no existe o expiró.
func (r *IdempotencyRepo) Get(ctx context.Context, key, method, path, companyID string) (*entity.IdempotencyRecord, error) {
	query := `
		SELECT key, method, path, company_id, status_code, content_type, body, created_at, expires_at
		FROM idempotency_records
		WHERE key = $1 AND method = $2 AND path = $3 AND company_id = $4
		  AND expires_at > now()`
	var rec entity.IdempotencyRecord
	err := r.q.QueryRow(ctx, query, key, method, path, companyID).Scan(
		&rec.Key, &rec.Method, &rec.Path, &rec.CompanyID,
		&rec.StatusCode, &rec.ContentType, &rec.Body, &rec.CreatedAt, &rec.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency record: %w", err)
	}
	return &rec, nil
}

// Upsert inserta o reemplaza el registro. Dos reintentos en carrera colapsan sobre
// el índice único (key, method, path, company_id): el segundo sobreescribe, no duplica.
func (r *IdempotencyRepo) Upsert(ctx context.Context, rec *entity.IdempotencyRecord) error {
	query := `
		INSERT INTO idempotency_records (key, method, path, company_id, status_code, content_type, body, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (key, method, path, company_id)
		DO UPDATE SET status_code = EXCLUDED.status_code,
		              content_type = EXCLUDED.content_type,
		              body = EXCLUDED.body,
		              created_at = EXCLUDED.created_at,
		              expires_at = EXCLUDED.expires_at`
	_, err := r.q.Exec(ctx, query,
		rec.Key, rec.Method, rec.Path, rec.CompanyID,
		rec.StatusCode, rec.ContentType, rec.Body, rec.CreatedAt, rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("upsert idempotency record: %w", err)
	}
	return nil
}
