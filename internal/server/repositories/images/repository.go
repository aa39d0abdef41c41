package images

import (
	"context"

	"github.com/dmitrijs2005/gophstore/internal/server/models"
)

// Repository stores product image metadata and inline payloads. Deleted
// images are kept with deleted_at set and never listed again.
type Repository interface {
	Add(ctx context.Context, img *models.ProductImage) (*models.ProductImage, error)
	ListByProduct(ctx context.Context, companyID, productID int64) ([]models.ProductImage, error)
	SoftDelete(ctx context.Context, companyID, id int64) error
}
