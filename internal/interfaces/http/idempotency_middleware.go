package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/tu-usuario/retail-backoffice/internal/application/dto"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
	"github.com/tu-usuario/retail-backoffice/internal/domain/repository"
	"github.com/tu-usuario/retail-backoffice/pkg/metrics"
)

// Header con la clave de idempotencia del cliente y header marcador de respuesta reproducida.
const (
	HeaderIdempotencyKey   = "Idempotency-Key"
	HeaderIdempotentReplay = "Idempotent-Replay"
)

// IdempotencyMiddleware deduplica peticiones mutantes: cachea la respuesta bajo
// (clave, método, ruta, empresa) y la reproduce ante reintentos dentro de la
// ventana TTL, sin reejecutar la operación de fondo. Sin header pasa de largo;
// los fallos 5xx no se cachean. Requiere AuthMiddleware antes (usa el CompanyID
// del contexto).
func IdempotencyMiddleware(repo repository.IdempotencyRepository, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" {
			return c.Next()
		}
		companyID := GetCompanyID(c)
		if companyID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
		}
		method := c.Method()
		path := c.Path()

		// Registro vigente: reproducir la respuesta cacheada sin efectos
		rec, err := repo.Get(c.Context(), key, method, path, companyID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "verificación de idempotencia falló"})
		}
		if rec != nil {
			metrics.IdempotentReplays.Inc()
			contentType := rec.ContentType
			if contentType == "" {
				contentType = fiber.MIMEApplicationJSON
			}
			c.Set(fiber.HeaderContentType, contentType)
			c.Set(HeaderIdempotentReplay, "true")
			return c.Status(rec.StatusCode).Send(rec.Body)
		}

		if err := c.Next(); err != nil {
			return err
		}

		// Un fallo 5xx no se cachea: la operación quedó revertida y el cliente
		// debe poder reintentar con la misma clave hasta lograr una ejecución.
		if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			return nil
		}

		// Cachear la respuesta producida. fasthttp reutiliza buffers: copiar el body.
		body := make([]byte, len(c.Response().Body()))
		copy(body, c.Response().Body())
		now := time.Now()
		rec = &entity.IdempotencyRecord{
			Key:         key,
			Method:      method,
			Path:        path,
			CompanyID:   companyID,
			StatusCode:  c.Response().StatusCode(),
			ContentType: string(c.Response().Header.ContentType()),
			Body:        body,
			CreatedAt:   now,
			ExpiresAt:   now.Add(ttl),
		}
		if err := repo.Upsert(c.Context(), rec); err != nil {
			// La operación ya corrió; no convertir el fallo del caché en error del caller
			log.Warn().Err(err).Str("key", key).Str("path", path).Msg("no se pudo guardar registro de idempotencia")
		}
		return nil
	}
}
