package product

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/neonkeys-api/internal/category"
	"github.com/redmonkez12/neonkeys-api/internal/logging"
)

type fakeCategories struct {
	byID map[int64]string
}

func (f *fakeCategories) GetByID(_ context.Context, id int64) (*category.Category, error) {
	name, ok := f.byID[id]
	if !ok {
		return nil, category.ErrNotFound
	}
	return &category.Category{ID: id, Name: name}, nil
}

func (f *fakeCategories) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

// memStore is an in-memory Store used by service and handler tests.
type memStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]*Product
	clock    time.Time
}

func newMemStore() *memStore {
	return &memStore{products: make(map[uuid.UUID]*Product), clock: time.Now()}
}

func (m *memStore) Create(_ context.Context, p CreateParams) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.SKU != nil {
		for _, existing := range m.products {
			if existing.SKU != nil && *existing.SKU == *p.SKU {
				return nil, ErrDuplicateSKU
			}
		}
	}
	// Strictly increasing timestamps keep created_at ordering deterministic.
	m.clock = m.clock.Add(time.Millisecond)
	prod := &Product{
		ID:          uuid.New(),
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		SKU:         p.SKU,
		ImageURL:    p.ImageURL,
		IsActive:    true,
		CreatedAt:   m.clock,
		UpdatedAt:   m.clock,
	}
	m.products[prod.ID] = prod
	cp := *prod
	return &cp, nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) List(_ context.Context, f ListFilter) ([]Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []Product
	search := strings.ToLower(f.Search)
	for _, p := range m.products {
		if !p.IsActive {
			continue
		}
		if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
			continue
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if search != "" {
			desc := ""
			if p.Description != nil {
				desc = strings.ToLower(*p.Description)
			}
			if !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(desc, search) {
				continue
			}
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	start := min(f.Page.Offset, total)
	end := min(start+f.Page.Limit, total)
	return matched[start:end], total, nil
}

func (m *memStore) SKUExists(_ context.Context, sku string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.SKU != nil && *p.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Update(_ context.Context, id uuid.UUID, u UpdateParams) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	if u.CategoryID != nil {
		p.CategoryID = *u.CategoryID
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	if u.SKU != nil {
		p.SKU = u.SKU
	}
	if u.ImageURL != nil {
		p.ImageURL = u.ImageURL
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.products, id)
	return p, nil
}

func (m *memStore) AdjustStock(_ context.Context, id uuid.UUID, quantity int, op StockOperation) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	switch op {
	case StockAdd:
		p.Stock += quantity
	case StockSubtract:
		if p.Stock < quantity {
			return nil, ErrInsufficientStock
		}
		p.Stock -= quantity
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ToggleStatus(_ context.Context, id uuid.UUID) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.IsActive = !p.IsActive
	cp := *p
	return &cp, nil
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	cats := &fakeCategories{byID: map[int64]string{1: "Keyboards", 2: "Mice"}}
	return NewService(store, cats, logging.Nop()), store
}
