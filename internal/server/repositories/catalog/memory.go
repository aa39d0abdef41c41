package catalog

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophstore/internal/server/models"
)

// MemoryRepository keeps catalogs in process memory. Ids are unique across
// all option kinds and companies.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byCo   map[int64]*models.Catalog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byCo: map[int64]*models.Catalog{}}
}

func (r *MemoryRepository) Get(ctx context.Context, companyID int64) (models.Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := models.Catalog{
		Categories: []models.CatalogOption{},
		Units:      []models.CatalogOption{},
		Taxes:      []models.TaxOption{},
	}
	if c, ok := r.byCo[companyID]; ok {
		out.Categories = append(out.Categories, c.Categories...)
		out.Units = append(out.Units, c.Units...)
		out.Taxes = append(out.Taxes, c.Taxes...)
	}
	return out, nil
}

func (r *MemoryRepository) company(id int64) *models.Catalog {
	c, ok := r.byCo[id]
	if !ok {
		c = &models.Catalog{}
		r.byCo[id] = c
	}
	return c
}

func (r *MemoryRepository) AddCategory(ctx context.Context, companyID int64, description string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := r.company(companyID)
	c.Categories = append(c.Categories, models.CatalogOption{ID: r.nextID, Description: description})
	return r.nextID, nil
}

func (r *MemoryRepository) AddUnit(ctx context.Context, companyID int64, description string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := r.company(companyID)
	c.Units = append(c.Units, models.CatalogOption{ID: r.nextID, Description: description})
	return r.nextID, nil
}

func (r *MemoryRepository) AddTax(ctx context.Context, companyID int64, description string, rate float64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := r.company(companyID)
	c.Taxes = append(c.Taxes, models.TaxOption{ID: r.nextID, Description: description, Rate: rate})
	return r.nextID, nil
}
