package user

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/neonkeys-api/internal/apperror"
	"github.com/redmonkez12/neonkeys-api/internal/httputil"
	"github.com/redmonkez12/neonkeys-api/internal/logging"
)

// RateLimiter limits how often a client IP may hit a purpose-scoped endpoint.
type RateLimiter interface {
	CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error
}

// Handler contains HTTP handlers for user endpoints
type Handler struct {
	service       *Service
	rateLimiter   RateLimiter
	exposeDetails bool
}

func NewHandler(service *Service, rateLimiter RateLimiter, exposeDetails bool) *Handler {
	return &Handler{
		service:       service,
		rateLimiter:   rateLimiter,
		exposeDetails: exposeDetails,
	}
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
	Token   string `json:"token"`
}

// UserResponse wraps a single user
type UserResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// UserListResponse wraps every user plus the count
type UserListResponse struct {
	Message string `json:"message"`
	Users   []User `json:"users"`
	Total   int    `json:"total"`
}

// SummaryResponse is returned by delete and toggle-status
type SummaryResponse struct {
	Message string   `json:"message"`
	User    *Summary `json:"user"`
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new account and receive a bearer token.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body RegisterInput true "Registration data"
// @Success      201 {object} AuthResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error or username/email already exists"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/users/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if h.limited(w, r, "register") {
		return
	}

	var req RegisterInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondJSON(w, AuthResponse{
		Message: "user registered successfully",
		User:    result.User,
		Token:   result.Token,
	}, http.StatusCreated)
}

// Login handles user login
// @Summary      Log in
// @Description  Exchange email and password for a bearer token.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body LoginInput true "Login credentials"
// @Success      200 {object} AuthResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields or invalid email or password"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.limited(w, r, "login") {
		return
	}

	var req LoginInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondJSON(w, AuthResponse{
		Message: "login successful",
		User:    result.User,
		Token:   result.Token,
	}, http.StatusOK)
}

// List returns all users
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserListResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /api/users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondJSON(w, UserListResponse{
		Message: "users retrieved",
		Users:   users,
		Total:   len(users),
	}, http.StatusOK)
}

// Get returns a single user
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200 {object} UserResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/users/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondJSON(w, UserResponse{Message: "user retrieved", User: u}, http.StatusOK)
}

// Update changes profile fields
// @Summary      Update user
// @Description  Partial update; omitted fields keep their current value.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Param        request body UpdateInput true "Fields to change"
// @Success      200 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error or email in use"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/users/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req UpdateInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondJSON(w, UserResponse{Message: "user updated successfully", User: u}, http.StatusOK)
}

// ChangePassword replaces the user's password
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Param        request body ChangePasswordInput true "Current and new password"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error or wrong current password"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/users/{id}/change-password [put]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req ChangePasswordInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), id, req); err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondJSON(w, httputil.MessageResponse{Message: "password changed successfully"}, http.StatusOK)
}

// Delete removes a user
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200 {object} SummaryResponse
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	summary, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondJSON(w, SummaryResponse{Message: "user deleted successfully", User: summary}, http.StatusOK)
}

// ToggleStatus activates or deactivates a user
// @Summary      Toggle user status
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200 {object} SummaryResponse
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/users/{id}/toggle-status [patch]
func (h *Handler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	summary, err := h.service.ToggleStatus(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	message := "user deactivated successfully"
	if summary.IsActive != nil && *summary.IsActive {
		message = "user activated successfully"
	}
	httputil.RespondJSON(w, SummaryResponse{Message: message, User: summary}, http.StatusOK)
}

// limited applies the per-IP limit for purpose. Limiter failures are logged
// and the request is let through.
func (h *Handler) limited(w http.ResponseWriter, r *http.Request, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())
	ip := httputil.ClientIP(r)

	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err, "purpose", purpose)
	} else if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondAppError(w, r, apperror.New(apperror.CodeRateLimited, "too many requests, please try again later"), h.exposeDetails)
		return true
	}

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
		logger.Error("failed to record IP request", "error", err, "purpose", purpose)
	}
	return false
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httputil.RespondAppError(w, r, err, h.exposeDetails)
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperror.NotFound("user not found")
	}
	return id, nil
}
