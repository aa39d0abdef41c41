package images

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
)

// MemoryRepository keeps image rows in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]models.ProductImage
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: map[int64]models.ProductImage{}}
}

func (r *MemoryRepository) Add(ctx context.Context, img *models.ProductImage) (*models.ProductImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	img.ID = r.nextID
	img.Active = true
	img.CreatedAt = time.Now()
	img.UpdatedAt = img.CreatedAt
	r.byID[img.ID] = *img
	return img, nil
}

func (r *MemoryRepository) ListByProduct(ctx context.Context, companyID, productID int64) ([]models.ProductImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.ProductImage{}
	for _, img := range r.byID {
		if img.CompanyID == companyID && img.ProductID == productID && img.DeletedAt == nil {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) SoftDelete(ctx context.Context, companyID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.byID[id]
	if !ok || img.CompanyID != companyID || img.DeletedAt != nil {
		return common.ErrorNotFound
	}
	now := time.Now()
	img.DeletedAt = &now
	img.Active = false
	img.UpdatedAt = now
	r.byID[id] = img
	return nil
}
