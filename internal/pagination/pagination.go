package pagination

import (
	"net/url"
	"strconv"

	"github.com/redmonkez12/neonkeys-api/internal/apperror"
)

const (
	// DefaultLimit is the page size used when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows a single page may request.
	MaxLimit = 100
)

// Params holds offset pagination inputs.
type Params struct {
	Limit  int
	Offset int
}

// Page is the pagination block returned alongside list results.
type Page struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Pages  int `json:"pages"`
}

// NewPage computes pages as ceil(total/limit).
func NewPage(total int, params Params) Page {
	pages := 0
	if params.Limit > 0 {
		pages = (total + params.Limit - 1) / params.Limit
	}
	return Page{
		Total:  total,
		Limit:  params.Limit,
		Offset: params.Offset,
		Pages:  pages,
	}
}

// FromQuery reads "limit" and "offset" from query values.
func FromQuery(q url.Values) (Params, error) {
	params := Params{Limit: DefaultLimit}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxLimit {
			return Params{}, apperror.Validation("limit must be an integer between 1 and " + strconv.Itoa(MaxLimit))
		}
		params.Limit = limit
	}

	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return Params{}, apperror.Validation("offset must be a non-negative integer")
		}
		params.Offset = offset
	}

	return params, nil
}
