package products

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
	"github.com/dmitrijs2005/gophstore/internal/server/repositories/catalog"
)

// MemoryRepository keeps products in process memory. Searches by category,
// unit or tax resolve option descriptions through the catalog repository.
type MemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]models.Product
	catalog catalog.Repository
}

func NewMemoryRepository(c catalog.Repository) *MemoryRepository {
	return &MemoryRepository{byID: map[int64]models.Product{}, catalog: c}
}

func (r *MemoryRepository) List(ctx context.Context, companyID int64, f models.ProductFilter) ([]models.Product, error) {
	if !ValidField(f.Field) {
		return nil, fmt.Errorf("%w: unknown field %q", common.ErrorValidation, f.Field)
	}
	cat, err := r.catalog.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(f.Value)

	r.mu.RLock()
	var matched []models.Product
	for _, p := range r.byID {
		if p.CompanyID != companyID {
			continue
		}
		if needle == "" || strings.Contains(strings.ToLower(haystack(p, f.Field, cat)), needle) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	out := []models.Product{}
	if f.Offset < len(matched) {
		matched = matched[f.Offset:]
		if f.Limit >= 0 && f.Limit < len(matched) {
			matched = matched[:f.Limit]
		}
		out = append(out, matched...)
	}
	return out, nil
}

func haystack(p models.Product, field string, c models.Catalog) string {
	switch field {
	case FieldDescription:
		return p.Description
	case FieldReference:
		return p.Reference
	case FieldCategoria:
		for _, o := range c.Categories {
			if p.IDCategoria.Valid && o.ID == p.IDCategoria.Value {
				return o.Description
			}
		}
	case FieldUnidad:
		for _, o := range c.Units {
			if p.IDUnidad.Valid && o.ID == p.IDUnidad.Value {
				return o.Description
			}
		}
	case FieldTax:
		for _, o := range c.Taxes {
			if p.IDTax.Valid && o.ID == p.IDTax.Value {
				return o.Description
			}
		}
	default:
		return p.Reference + " " + p.Description
	}
	return ""
}

func (r *MemoryRepository) Get(ctx context.Context, companyID, id int64) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok || p.CompanyID != companyID {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkUnique(p); err != nil {
		return nil, err
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	stored.Images = nil
	r.byID[p.ID] = stored
	return p, nil
}

func (r *MemoryRepository) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.byID[p.ID]
	if !ok || old.CompanyID != p.CompanyID {
		return nil, common.ErrorNotFound
	}
	if err := r.checkUnique(p); err != nil {
		return nil, err
	}
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = time.Now()
	stored := *p
	stored.Images = nil
	r.byID[p.ID] = stored
	return p, nil
}

// checkUnique mirrors the (id_empresa, reference) unique constraint.
func (r *MemoryRepository) checkUnique(p *models.Product) error {
	for _, other := range r.byID {
		if other.ID != p.ID && other.CompanyID == p.CompanyID && other.Reference == p.Reference {
			return fmt.Errorf("%w: reference %q", common.ErrorAlreadyExists, p.Reference)
		}
	}
	return nil
}
