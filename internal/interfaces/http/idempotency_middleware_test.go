package http_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
	apphttp "github.com/tu-usuario/retail-backoffice/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fake del repositorio de idempotencia. Igual que el real, Get verifica la
// expiración en la lectura: un registro vencido es como si no existiera.
// ──────────────────────────────────────────────────────────────────────────────

type fakeIdempotencyRepo struct {
	records map[string]*entity.IdempotencyRecord
}

func newFakeIdempotencyRepo() *fakeIdempotencyRepo {
	return &fakeIdempotencyRepo{records: make(map[string]*entity.IdempotencyRecord)}
}

func recKey(key, method, path, companyID string) string {
	return key + "|" + method + "|" + path + "|" + companyID
}

func (f *fakeIdempotencyRepo) Get(_ context.Context, key, method, path, companyID string) (*entity.IdempotencyRecord, error) {
	rec, ok := f.records[recKey(key, method, path, companyID)]
	if !ok || rec.Expired(time.Now()) {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeIdempotencyRepo) Upsert(_ context.Context, rec *entity.IdempotencyRecord) error {
	cp := *rec
	f.records[recKey(rec.Key, rec.Method, rec.Path, rec.CompanyID)] = &cp
	return nil
}

// expire fuerza el vencimiento de todos los registros almacenados.
func (f *fakeIdempotencyRepo) expire() {
	for _, rec := range f.records {
		rec.ExpiresAt = time.Now().Add(-time.Minute)
	}
}

// buildIdempotentApp monta una ruta POST protegida por el gate de idempotencia.
// El handler cuenta cuántas veces corre de verdad: un replay no debe sumarle.
func buildIdempotentApp(repo *fakeIdempotencyRepo, ttl time.Duration, companyID string, executions *int) *fiber.App {
	app := fiber.New()
	// Simula el AuthMiddleware: deja el tenant en locals
	app.Use(func(c *fiber.Ctx) error {
		if companyID != "" {
			c.Locals(apphttp.LocalCompanyID, companyID)
		}
		return c.Next()
	})
	app.Post("/things", apphttp.IdempotencyMiddleware(repo, ttl), func(c *fiber.Ctx) error {
		*executions++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"execution": *executions})
	})
	return app
}

func postWithKey(t *testing.T, app *fiber.App, key string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/things", nil)
	if key != "" {
		req.Header.Set(apphttp.HeaderIdempotencyKey, key)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// Reintento con la misma clave: misma respuesta byte a byte, header marcador,
// y la operación de fondo corre una sola vez.
func TestIdempotency_ReintentoReproduceLaRespuesta(t *testing.T) {
	repo := newFakeIdempotencyRepo()
	executions := 0
	app := buildIdempotentApp(repo, 30*time.Minute, "empresa-1", &executions)

	first := postWithKey(t, app, "clave-abc")
	defer first.Body.Close()
	firstBody, _ := io.ReadAll(first.Body)
	assert.Equal(t, http.StatusCreated, first.StatusCode)
	assert.Empty(t, first.Header.Get(apphttp.HeaderIdempotentReplay))

	second := postWithKey(t, app, "clave-abc")
	defer second.Body.Close()
	secondBody, _ := io.ReadAll(second.Body)

	assert.Equal(t, 1, executions, "el reintento no debe reejecutar la operación")
	assert.Equal(t, first.StatusCode, second.StatusCode)
	assert.Equal(t, firstBody, secondBody, "la respuesta reproducida es idéntica")
	assert.Equal(t, "true", second.Header.Get(apphttp.HeaderIdempotentReplay))
}

// Un fallo 5xx no queda cacheado: la operación de fondo se revirtió, así que el
// reintento con la misma clave debe volver a ejecutar hasta lograr un éxito, y
// recién ese éxito es el que se reproduce.
func TestIdempotency_FalloTransitorioNoSeCachea(t *testing.T) {
	repo := newFakeIdempotencyRepo()
	executions := 0
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(apphttp.LocalCompanyID, "empresa-1")
		return c.Next()
	})
	// Primera ejecución falla (tx revertida), la segunda sale bien
	app.Post("/things", apphttp.IdempotencyMiddleware(repo, 30*time.Minute), func(c *fiber.Ctx) error {
		executions++
		if executions == 1 {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"code": "INTERNAL"})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"execution": executions})
	})

	first := postWithKey(t, app, "clave-abc")
	first.Body.Close()
	require.Equal(t, http.StatusInternalServerError, first.StatusCode)
	assert.Empty(t, repo.records, "un 5xx no debe quedar cacheado")

	second := postWithKey(t, app, "clave-abc")
	second.Body.Close()
	assert.Equal(t, 2, executions, "el reintento tras un fallo debe reejecutar la operación")
	assert.Equal(t, http.StatusCreated, second.StatusCode)
	assert.Empty(t, second.Header.Get(apphttp.HeaderIdempotentReplay))

	third := postWithKey(t, app, "clave-abc")
	third.Body.Close()
	assert.Equal(t, 2, executions, "el éxito sí queda cacheado")
	assert.Equal(t, http.StatusCreated, third.StatusCode)
	assert.Equal(t, "true", third.Header.Get(apphttp.HeaderIdempotentReplay))
}

// El replay conserva el Content-Type original de la respuesta cacheada.
func TestIdempotency_ReplayConservaContentType(t *testing.T) {
	repo := newFakeIdempotencyRepo()
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(apphttp.LocalCompanyID, "empresa-1")
		return c.Next()
	})
	app.Post("/things", apphttp.IdempotencyMiddleware(repo, 30*time.Minute), func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(fiber.StatusCreated).SendString("recibido")
	})

	postWithKey(t, app, "clave-abc").Body.Close()

	replay := postWithKey(t, app, "clave-abc")
	defer replay.Body.Close()
	body, _ := io.ReadAll(replay.Body)

	assert.Equal(t, "true", replay.Header.Get(apphttp.HeaderIdempotentReplay))
	assert.Equal(t, fiber.MIMETextPlainCharsetUTF8, replay.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "recibido", string(body))
}

// Sin header de clave el gate pasa de largo: cada petición ejecuta.
func TestIdempotency_SinClavePasaDeLargo(t *testing.T) {
	repo := newFakeIdempotencyRepo()
	executions := 0
	app := buildIdempotentApp(repo, 30*time.Minute, "empresa-1", &executions)

	resp1 := postWithKey(t, app, "")
	resp1.Body.Close()
	resp2 := postWithKey(t, app, "")
	resp2.Body.Close()

	assert.Equal(t, 2, executions)
	assert.Empty(t, repo.records, "sin clave no se cachea nada")
}

// Claves distintas son operaciones distintas.
func TestIdempotency_ClavesDistintasEjecutanAmbas(t *testing.T) {
	repo := newFakeIdempotencyRepo()
	executions := 0
	app := buildIdempotentApp(repo, 30*time.Minute, "empresa-1", &executions)

	postWithKey(t, app, "clave-1").Body.Close()
	postWithKey(t, app, "clave-2").Body.Close()

	assert.Equal(t, 2, executions)
}

// Registro vencido: el reintento con la misma clave vuelve a ejecutar y
// cachea la respuesta nueva.
func TestIdempotency_RegistroVencidoReejecuta(t *testing.T) {
	repo := newFakeIdempotencyRepo()
	executions := 0
	app := buildIdempotentApp(repo, 30*time.Minute, "empresa-1", &executions)

	postWithKey(t, app, "clave-abc").Body.Close()
	require.Equal(t, 1, executions)

	repo.expire()

	resp := postWithKey(t, app, "clave-abc")
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, 2, executions, "un registro vencido ya no es reproducible")
	assert.Empty(t, resp.Header.Get(apphttp.HeaderIdempotentReplay))
	assert.Contains(t, string(body), fmt.Sprint(executions))
}

// La clave está acotada al tenant: la misma clave en otra empresa ejecuta de nuevo.
func TestIdempotency_ClaveAcotadaPorEmpresa(t *testing.T) {
	repo := newFakeIdempotencyRepo()
	executions := 0

	app1 := buildIdempotentApp(repo, 30*time.Minute, "empresa-1", &executions)
	app2 := buildIdempotentApp(repo, 30*time.Minute, "empresa-2", &executions)

	postWithKey(t, app1, "clave-abc").Body.Close()
	resp := postWithKey(t, app2, "clave-abc")
	defer resp.Body.Close()

	assert.Equal(t, 2, executions, "cada empresa tiene su propio espacio de claves")
	assert.Empty(t, resp.Header.Get(apphttp.HeaderIdempotentReplay))
}

// Con clave pero sin tenant en el contexto, el gate rechaza con 401.
func TestIdempotency_SinTenantRechaza(t *testing.T) {
	repo := newFakeIdempotencyRepo()
	executions := 0
	app := buildIdempotentApp(repo, 30*time.Minute, "", &executions)

	resp := postWithKey(t, app, "clave-abc")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, executions)
}
