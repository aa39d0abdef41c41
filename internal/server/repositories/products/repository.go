package products

import (
	"context"

	"github.com/dmitrijs2005/gophstore/internal/server/models"
)

// Searchable product attributes accepted in models.ProductFilter.Field.
// FieldAny matches reference or description.
const (
	FieldAny         = ""
	FieldDescription = "description"
	FieldReference   = "reference"
	FieldCategoria   = "categoria"
	FieldUnidad      = "unidad"
	FieldTax         = "tax"
)

// Repository stores products. Every method is scoped to a company; a
// product of another company is reported as common.ErrorNotFound.
type Repository interface {
	List(ctx context.Context, companyID int64, f models.ProductFilter) ([]models.Product, error)
	Get(ctx context.Context, companyID, id int64) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) (*models.Product, error)
}

// ValidField reports whether f can be searched.
func ValidField(f string) bool {
	switch f {
	case FieldAny, FieldDescription, FieldReference, FieldCategoria, FieldUnidad, FieldTax:
		return true
	}
	return false
}
