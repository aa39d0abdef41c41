package catalog

import (
	"context"

	"github.com/dmitrijs2005/gophstore/internal/server/models"
)

// Repository holds each company's categories, units and taxes.
type Repository interface {
	Get(ctx context.Context, companyID int64) (models.Catalog, error)
	AddCategory(ctx context.Context, companyID int64, description string) (int64, error)
	AddUnit(ctx context.Context, companyID int64, description string) (int64, error)
	AddTax(ctx context.Context, companyID int64, description string, rate float64) (int64, error)
}
