package product

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() http.Handler {
	svc, _ := newTestService()
	h := NewHandler(svc, false)

	r := chi.NewRouter()
	r.Get("/products", h.List)
	r.Get("/products/{id}", h.Get)
	r.Get("/products/category/{id}", h.ListByCategory)
	r.Post("/products", h.Create)
	r.Put("/products/{id}", h.Update)
	r.Patch("/products/{id}/stock", h.AdjustStock)
	r.Patch("/products/{id}/toggle-status", h.ToggleStatus)
	r.Delete("/products/{id}", h.Delete)
	return r
}

func send(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return rr, out
}

func TestHandler_KeyboardsScenario(t *testing.T) {
	router := newTestRouter()

	rr, body := send(t, router, http.MethodPost, "/products",
		`{"category_id":1,"name":"K1","price":49.99,"stock":5}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	created := body["product"].(map[string]any)
	assert.EqualValues(t, 5, created["stock"])
	assert.Equal(t, true, created["is_active"])
	assert.Equal(t, "49.99", created["price"])
	id := created["id"].(string)

	rr, body = send(t, router, http.MethodPatch, "/products/"+id+"/stock",
		`{"quantity":3,"operation":"subtract"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 2, body["product"].(map[string]any)["stock"])

	rr, body = send(t, router, http.MethodPatch, "/products/"+id+"/stock",
		`{"quantity":10,"operation":"subtract"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "insufficient stock", body["message"])

	_, body = send(t, router, http.MethodGet, "/products/"+id, "")
	assert.EqualValues(t, 2, body["product"].(map[string]any)["stock"])
}

func TestHandler_ListPagination(t *testing.T) {
	router := newTestRouter()
	for _, name := range []string{"A", "B", "C"} {
		rr, _ := send(t, router, http.MethodPost, "/products",
			`{"category_id":1,"name":"`+name+`","price":"10.00"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr, body := send(t, router, http.MethodGet, "/products?limit=2&offset=0", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, body["products"], 2)
	page := body["pagination"].(map[string]any)
	assert.EqualValues(t, 3, page["total"])
	assert.EqualValues(t, 2, page["limit"])
	assert.EqualValues(t, 0, page["offset"])
	assert.EqualValues(t, 2, page["pages"])
}

func TestHandler_ListInvalidQuery(t *testing.T) {
	router := newTestRouter()

	for _, q := range []string{"limit=abc", "limit=0", "limit=101", "offset=-1", "minPrice=cheap", "category=x"} {
		rr, body := send(t, router, http.MethodGet, "/products?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
		assert.Equal(t, "VALIDATION_ERROR", body["code"], q)
	}
}

func TestHandler_ListByCategory(t *testing.T) {
	router := newTestRouter()
	send(t, router, http.MethodPost, "/products", `{"category_id":1,"name":"K1","price":49.99}`)

	rr, body := send(t, router, http.MethodGet, "/products/category/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Keyboards", body["category"])
	assert.Len(t, body["products"], 1)

	rr, _ = send(t, router, http.MethodGet, "/products/category/999", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = send(t, router, http.MethodGet, "/products/category/abc", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_NotFoundAndDelete(t *testing.T) {
	router := newTestRouter()

	rr, _ := send(t, router, http.MethodGet, "/products/123", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	_, body := send(t, router, http.MethodPost, "/products", `{"category_id":1,"name":"K1","price":49.99}`)
	id := body["product"].(map[string]any)["id"].(string)

	rr, body = send(t, router, http.MethodDelete, "/products/"+id, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"id": id, "name": "K1"}, body["product"])

	rr, _ = send(t, router, http.MethodDelete, "/products/"+id, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_ToggleStatusMessages(t *testing.T) {
	router := newTestRouter()
	_, body := send(t, router, http.MethodPost, "/products", `{"category_id":1,"name":"K1","price":49.99}`)
	id := body["product"].(map[string]any)["id"].(string)

	_, body = send(t, router, http.MethodPatch, "/products/"+id+"/toggle-status", "")
	assert.Equal(t, "product deactivated successfully", body["message"])

	_, body = send(t, router, http.MethodPatch, "/products/"+id+"/toggle-status", "")
	assert.Equal(t, "product activated successfully", body["message"])
}

func TestHandler_CreateEmptyBody(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(""))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "request body is required")
}
