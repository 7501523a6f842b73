package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/redmonkez12/neonkeys-api/docs"
	"github.com/redmonkez12/neonkeys-api/internal/auth"
	"github.com/redmonkez12/neonkeys-api/internal/config"
	"github.com/redmonkez12/neonkeys-api/internal/httputil"
	"github.com/redmonkez12/neonkeys-api/internal/logging"
	"github.com/redmonkez12/neonkeys-api/internal/metrics"
	"github.com/redmonkez12/neonkeys-api/internal/product"
	"github.com/redmonkez12/neonkeys-api/internal/ratelimit"
	"github.com/redmonkez12/neonkeys-api/internal/user"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// newTestRouter wires handlers without stores. Only requests that never reach
// a repository may be sent through it.
func newTestRouter(t *testing.T) (*chi.Mux, auth.TokenService) {
	t.Helper()
	return newTestRouterForEnv(t, "prod")
}

func newTestRouterForEnv(t *testing.T, env string) (*chi.Mux, auth.TokenService) {
	t.Helper()

	tokens, err := auth.NewJWTService(testSecret)
	require.NoError(t, err)

	logger := logging.Nop()
	cfg := &config.Config{Server: config.ServerConfig{Env: env}}
	handlers := Handlers{
		Users:    user.NewHandler(user.NewService(nil, nil, tokens, time.Hour, logger), ratelimit.Disabled{}, false),
		Products: product.NewHandler(product.NewService(nil, nil, logger), false),
	}

	return NewRouter(cfg, handlers, auth.NewMiddleware(tokens), logger, metrics.New()), tokens
}

func TestRouter_GatedRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t)
	id := uuid.NewString()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/users/" + id},
		{http.MethodPut, "/api/users/" + id},
		{http.MethodPut, "/api/users/" + id + "/change-password"},
		{http.MethodPatch, "/api/users/" + id + "/toggle-status"},
		{http.MethodDelete, "/api/users/" + id},
		{http.MethodPost, "/api/products"},
		{http.MethodPut, "/api/products/" + id},
		{http.MethodPatch, "/api/products/" + id + "/stock"},
		{http.MethodPatch, "/api/products/" + id + "/toggle-status"},
		{http.MethodDelete, "/api/products/" + id},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(route.method, route.path, strings.NewReader("{}")))

			assert.Equal(t, http.StatusUnauthorized, rr.Code)

			var body httputil.ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, "missing token", body.Message)
			assert.Equal(t, "UNAUTHORIZED", body.Code)
		})
	}
}

func TestRouter_ValidTokenPassesGate(t *testing.T) {
	router, tokens := newTestRouter(t)

	token, err := tokens.CreateToken(uuid.New(), "ana@example.com", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/products/not-a-uuid", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	// The handler answered, not the gate.
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "product not found")
}

func TestRouter_PublicProductRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products/not-a-uuid", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products/category/abc", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products?minPrice=cheap", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "minPrice must be a number")
}

func TestRouter_HealthAndRoot(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"api is running"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	var info ServiceInfo
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&info))
	assert.Equal(t, "NeonKeys API", info.Message)
	assert.Equal(t, "/api/products", info.Endpoints["products"])
}

func TestRouter_Metrics(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `neonkeys_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"NOT_FOUND"`)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouter_SwaggerOnlyInDevelopment(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_SwaggerInDevelopment(t *testing.T) {
	router, _ := newTestRouterForEnv(t, "dev")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"title": "NeonKeys API"`)
	assert.Contains(t, rr.Body.String(), "/api/products/{id}/stock")
}
