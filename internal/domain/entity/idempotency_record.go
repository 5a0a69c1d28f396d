package entity

import "time"

// IdempotencyRecord cachea la respuesta de una petición mutante para reproducirla
// ante reintentos con la misma clave. Único por (key, method, path, company_id).
// La expiración se verifica al leer; no hay barrido en segundo plano.
type IdempotencyRecord struct {
	Key         string
	Method      string
	Path        string
	CompanyID   string
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired indica si el registro ya no es reproducible a la fecha dada.
func (r *IdempotencyRecord) Expired(at time.Time) bool {
	return !r.ExpiresAt.After(at)
}
