package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLimiter struct {
	exceeded bool
	err      error
	recorded []string
}

func (s *stubLimiter) CheckIPRateLimitWithPurpose(_ context.Context, _ string, _ string) (bool, error) {
	return s.exceeded, s.err
}

func (s *stubLimiter) RecordIPRequestWithPurpose(_ context.Context, _ string, purpose string) error {
	s.recorded = append(s.recorded, purpose)
	return nil
}

func newTestRouter(limiter RateLimiter) (http.Handler, *memStore) {
	store := newMemStore()
	svc, _ := newTestService(store)
	h := NewHandler(svc, limiter, false)

	r := chi.NewRouter()
	r.Post("/users/register", h.Register)
	r.Post("/users/login", h.Login)
	r.Get("/users", h.List)
	r.Get("/users/{id}", h.Get)
	r.Put("/users/{id}", h.Update)
	r.Put("/users/{id}/change-password", h.ChangePassword)
	r.Patch("/users/{id}/toggle-status", h.ToggleStatus)
	r.Delete("/users/{id}", h.Delete)
	return r, store
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var out map[string]any
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	}
	return rr, out
}

func TestHandler_RegisterThenLogin(t *testing.T) {
	router, _ := newTestRouter(&stubLimiter{})

	rr, body := doJSON(t, router, http.MethodPost, "/users/register", map[string]string{
		"username": "ana", "email": "ana@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotEmpty(t, body["token"])
	assert.NotContains(t, rr.Body.String(), "password")

	rr, wrong := doJSON(t, router, http.MethodPost, "/users/login", map[string]string{
		"email": "ana@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, unknown := doJSON(t, router, http.MethodPost, "/users/login", map[string]string{
		"email": "nobody@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, wrong, unknown)

	rr, body = doJSON(t, router, http.MethodPost, "/users/login", map[string]string{
		"email": "ana@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, body["token"])
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestHandler_RegisterInvalidBody(t *testing.T) {
	router, _ := newTestRouter(&stubLimiter{})

	req := httptest.NewRequest(http.MethodPost, "/users/register", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "VALIDATION_ERROR")
}

func TestHandler_RateLimited(t *testing.T) {
	limiter := &stubLimiter{exceeded: true}
	router, _ := newTestRouter(limiter)

	rr, body := doJSON(t, router, http.MethodPost, "/users/login", map[string]string{
		"email": "ana@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "too many requests, please try again later", body["message"])
	assert.Equal(t, "RATE_LIMITED", body["code"])
	assert.Empty(t, limiter.recorded)
}

func TestHandler_LimiterErrorFailsOpen(t *testing.T) {
	limiter := &stubLimiter{err: errors.New("redis down")}
	router, _ := newTestRouter(limiter)

	rr, _ := doJSON(t, router, http.MethodPost, "/users/register", map[string]string{
		"username": "ana", "email": "ana@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, []string{"register"}, limiter.recorded)
}

func TestHandler_ListAndGet(t *testing.T) {
	router, _ := newTestRouter(&stubLimiter{})
	_, reg := doJSON(t, router, http.MethodPost, "/users/register", map[string]string{
		"username": "ana", "email": "ana@x.com", "password": "secret1",
	})
	id := reg["user"].(map[string]any)["id"].(string)

	rr, body := doJSON(t, router, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, body["total"])
	assert.Len(t, body["users"], 1)

	rr, body = doJSON(t, router, http.MethodGet, "/users/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ana", body["user"].(map[string]any)["username"])
}

func TestHandler_GetNotFound(t *testing.T) {
	router, _ := newTestRouter(&stubLimiter{})

	rr, body := doJSON(t, router, http.MethodGet, "/users/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", body["code"])

	rr, _ = doJSON(t, router, http.MethodGet, "/users/3f1c6b9e-8d6a-4f0e-9a54-2d1b0c7e5a11", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_ToggleStatusMessages(t *testing.T) {
	router, _ := newTestRouter(&stubLimiter{})
	_, reg := doJSON(t, router, http.MethodPost, "/users/register", map[string]string{
		"username": "ana", "email": "ana@x.com", "password": "secret1",
	})
	id := reg["user"].(map[string]any)["id"].(string)

	rr, body := doJSON(t, router, http.MethodPatch, "/users/"+id+"/toggle-status", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user deactivated successfully", body["message"])
	assert.Equal(t, false, body["user"].(map[string]any)["is_active"])

	_, body = doJSON(t, router, http.MethodPatch, "/users/"+id+"/toggle-status", nil)
	assert.Equal(t, "user activated successfully", body["message"])
}

func TestHandler_ChangePasswordAndDelete(t *testing.T) {
	router, _ := newTestRouter(&stubLimiter{})
	_, reg := doJSON(t, router, http.MethodPost, "/users/register", map[string]string{
		"username": "ana", "email": "ana@x.com", "password": "secret1",
	})
	id := reg["user"].(map[string]any)["id"].(string)

	rr, body := doJSON(t, router, http.MethodPut, "/users/"+id+"/change-password", map[string]string{
		"old_password": "nope", "new_password": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "current password is incorrect", body["message"])

	rr, _ = doJSON(t, router, http.MethodPut, "/users/"+id+"/change-password", map[string]string{
		"old_password": "secret1", "new_password": "secret2",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, body = doJSON(t, router, http.MethodDelete, "/users/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	deleted := body["user"].(map[string]any)
	assert.Equal(t, id, deleted["id"])
	assert.Equal(t, "ana", deleted["username"])
}
