package product

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/redmonkez12/neonkeys-api/internal/apperror"
	"github.com/redmonkez12/neonkeys-api/internal/httputil"
	"github.com/redmonkez12/neonkeys-api/internal/pagination"
)

// Handler contains HTTP handlers for product endpoints
type Handler struct {
	service       *Service
	exposeDetails bool
}

func NewHandler(service *Service, exposeDetails bool) *Handler {
	return &Handler{service: service, exposeDetails: exposeDetails}
}

// ProductResponse wraps a single product
type ProductResponse struct {
	Message string   `json:"message"`
	Product *Product `json:"product"`
}

// ProductListResponse wraps one page of products
type ProductListResponse struct {
	Message    string          `json:"message"`
	Category   string          `json:"category,omitempty"`
	Products   []Product       `json:"products"`
	Pagination pagination.Page `json:"pagination"`
}

// SummaryResponse is returned by delete
type SummaryResponse struct {
	Message string   `json:"message"`
	Product *Summary `json:"product"`
}

// Create adds a product to the catalog
// @Summary      Create product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateInput true "Product data"
// @Success      201 {object} ProductResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error, unknown category or duplicate sku"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /api/products [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondJSON(w, ProductResponse{Message: "product created successfully", Product: p}, http.StatusCreated)
}

// List returns active products
// @Summary      List products
// @Description  Active products only, newest first. Filters are combined with AND.
// @Tags         products
// @Produce      json
// @Param        category query int false "Category ID"
// @Param        minPrice query string false "Minimum price (inclusive)"
// @Param        maxPrice query string false "Maximum price (inclusive)"
// @Param        search query string false "Case-insensitive match on name or description"
// @Param        limit query int false "Page size (1-100)" default(10)
// @Param        offset query int false "Rows to skip" default(0)
// @Success      200 {object} ProductListResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid query parameter"
// @Router       /api/products [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	products, page, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondJSON(w, ProductListResponse{
		Message:    "products retrieved",
		Products:   products,
		Pagination: page,
	}, http.StatusOK)
}

// Get returns a single product
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} ProductResponse
// @Failure      404 {object} httputil.ErrorResponse "Product not found"
// @Router       /api/products/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondJSON(w, ProductResponse{Message: "product retrieved", Product: p}, http.StatusOK)
}

// ListByCategory returns active products of one category
// @Summary      List products by category
// @Tags         products
// @Produce      json
// @Param        id path int true "Category ID"
// @Param        limit query int false "Page size (1-100)" default(10)
// @Param        offset query int false "Rows to skip" default(0)
// @Success      200 {object} ProductListResponse
// @Failure      404 {object} httputil.ErrorResponse "Category not found"
// @Router       /api/products/category/{id} [get]
func (h *Handler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.fail(w, r, apperror.NotFound("category not found"))
		return
	}

	page, err := pagination.FromQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.service.ListByCategory(r.Context(), categoryID, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondJSON(w, ProductListResponse{
		Message:    "products by category",
		Category:   result.Category,
		Products:   result.Products,
		Pagination: result.Page,
	}, http.StatusOK)
}

// Update changes product fields
// @Summary      Update product
// @Description  Partial update; omitted fields keep their current value.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product ID"
// @Param        request body UpdateInput true "Fields to change"
// @Success      200 {object} ProductResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      404 {object} httputil.ErrorResponse "Product not found"
// @Router       /api/products/{id} [put]
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

	p, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondJSON(w, ProductResponse{Message: "product updated successfully", Product: p}, http.StatusOK)
}

// AdjustStock adds to or subtracts from the stock
// @Summary      Adjust stock
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product ID"
// @Param        request body StockInput true "Quantity and operation (add or subtract)"
// @Success      200 {object} ProductResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error or insufficient stock"
// @Failure      404 {object} httputil.ErrorResponse "Product not found"
// @Router       /api/products/{id}/stock [patch]
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req StockInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	p, err := h.service.AdjustStock(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondJSON(w, ProductResponse{Message: "stock updated successfully", Product: p}, http.StatusOK)
}

// ToggleStatus activates or deactivates a product
// @Summary      Toggle product status
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product ID"
// @Success      200 {object} ProductResponse
// @Failure      404 {object} httputil.ErrorResponse "Product not found"
// @Router       /api/products/{id}/toggle-status [patch]
func (h *Handler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	p, err := h.service.ToggleStatus(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	message := "product deactivated successfully"
	if p.IsActive {
		message = "product activated successfully"
	}
	httputil.RespondJSON(w, ProductResponse{Message: message, Product: p}, http.StatusOK)
}

// Delete removes a product
// @Summary      Delete product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product ID"
// @Success      200 {object} SummaryResponse
// @Failure      404 {object} httputil.ErrorResponse "Product not found"
// @Router       /api/products/{id} [delete]
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

	httputil.RespondJSON(w, SummaryResponse{Message: "product deleted successfully", Product: summary}, http.StatusOK)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httputil.RespondAppError(w, r, err, h.exposeDetails)
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperror.NotFound("product not found")
	}
	return id, nil
}

func parseListFilter(q url.Values) (ListFilter, error) {
	page, err := pagination.FromQuery(q)
	if err != nil {
		return ListFilter{}, err
	}
	filter := ListFilter{Page: page, Search: strings.TrimSpace(q.Get("search"))}

	if raw := q.Get("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ListFilter{}, apperror.Validation("category must be an integer")
		}
		filter.CategoryID = &id
	}
	if filter.MinPrice, err = parsePrice(q, "minPrice"); err != nil {
		return ListFilter{}, err
	}
	if filter.MaxPrice, err = parsePrice(q, "maxPrice"); err != nil {
		return ListFilter{}, err
	}
	return filter, nil
}

func parsePrice(q url.Values, key string) (*decimal.Decimal, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperror.Validation(key + " must be a number")
	}
	return &d, nil
}
