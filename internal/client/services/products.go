package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophstore/internal/client/client"
	"github.com/dmitrijs2005/gophstore/internal/client/form"
	"github.com/dmitrijs2005/gophstore/internal/client/images"
	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/client/pagination"
	"github.com/dmitrijs2005/gophstore/internal/client/search"
	"github.com/dmitrijs2005/gophstore/internal/logging"
)

// SaveResult reports the two halves of a product save separately: the record
// itself and its image changes. A failed image flush never undoes the record.
type SaveResult struct {
	Product    models.Product
	Invalid    form.ValidationErrors
	ProductErr error
	ImagesErr  error
}

// Err returns the first failure, validation included.
func (r SaveResult) Err() error {
	switch {
	case r.Invalid != nil:
		return r.Invalid
	case r.ProductErr != nil:
		return r.ProductErr
	default:
		return r.ImagesErr
	}
}

// Saved reports whether the product record was stored.
func (r SaveResult) Saved() bool {
	return r.Invalid == nil && r.ProductErr == nil
}

// ProductService exposes the product screens' backend operations.
type ProductService struct {
	client       client.Client
	perPage      int
	saveLocation string
	logger       logging.Logger

	mu      sync.Mutex
	catalog *models.Catalog
}

type ProductOptions struct {
	PerPage      int
	SaveLocation string
	Logger       logging.Logger
}

func NewProductService(c client.Client, opts ProductOptions) *ProductService {
	if opts.PerPage <= 0 {
		opts.PerPage = 10
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &ProductService{
		client:       c,
		perPage:      opts.PerPage,
		saveLocation: opts.SaveLocation,
		logger:       opts.Logger,
	}
}

// FilterFetcher pages api/pos/searchFilterProduct. The wire pagenum is
// zero-based; the controller page is one-based.
func (s *ProductService) FilterFetcher() pagination.Fetcher[models.Product, search.Query] {
	return func(ctx context.Context, page int, q search.Query) (pagination.Page[models.Product], error) {
		req := client.FilterRequest{
			PageNum:  page - pagination.FirstPage,
			PageSize: s.perPage,
		}
		if q.Active() {
			req.FilterGroups = client.ContainsFilter(string(q.Field), q.Text)
		}
		products, err := s.client.SearchFilterProducts(ctx, req)
		if err != nil {
			return pagination.Page[models.Product]{}, err
		}
		return pagination.Page[models.Product]{Items: products}, nil
	}
}

// NewProductList builds the product screen controller.
func (s *ProductService) NewProductList(q search.Query) *pagination.Controller[models.Product, search.Query] {
	return pagination.New(s.FilterFetcher(), q, pagination.Options{Policy: pagination.ByEmptyPage})
}

// SearchFetcher pages api/pos/searchProduct, following next_page_url.
func (s *ProductService) SearchFetcher() pagination.Fetcher[models.Product, string] {
	return func(ctx context.Context, page int, q string) (pagination.Page[models.Product], error) {
		res, err := s.client.SearchProducts(ctx, client.SearchRequest{
			IncludeImages: true,
			PerPage:       s.perPage,
			Page:          page,
			Q:             q,
		})
		if err != nil {
			return pagination.Page[models.Product]{}, err
		}
		return pagination.Page[models.Product]{Items: res.Products, HasNext: res.NextPageURL != ""}, nil
	}
}

// NewSearchList builds the point-of-sale search controller.
func (s *ProductService) NewSearchList(q string) *pagination.Controller[models.Product, string] {
	return pagination.New(s.SearchFetcher(), q, pagination.Options{Policy: pagination.ByNextPointer})
}

// Catalog returns the form options, fetching them once per service.
func (s *ProductService) Catalog(ctx context.Context) (models.Catalog, error) {
	s.mu.Lock()
	cached := s.catalog
	s.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	c, err := s.client.GetCatalog(ctx)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	s.mu.Lock()
	s.catalog = &c
	s.mu.Unlock()
	return c, nil
}

// NewTracker starts an image session for p (nil for a new product).
func (s *ProductService) NewTracker(p *models.Product) *images.Tracker {
	var known []int64
	if p != nil {
		known = p.ImageIDs()
	}
	return images.NewTracker(known, images.Options{SaveLocation: s.saveLocation})
}

// Save validates f, stores the record and then flushes tr against the stored
// product id. Nothing reaches the network when validation fails.
func (s *ProductService) Save(ctx context.Context, f *form.ProductForm, catalog *models.Catalog, tr *images.Tracker) SaveResult {
	if errs := f.Validate(catalog); errs != nil {
		return SaveResult{Invalid: errs}
	}

	p, err := s.client.UpdateOrCreateProduct(ctx, f.Product())
	if err != nil {
		return SaveResult{ProductErr: err}
	}
	res := SaveResult{Product: p}
	f.ID = p.ID
	s.logger.Info(ctx, "product saved", "id", *p.ID, "reference", p.Reference)

	if tr == nil || tr.Empty() {
		return res
	}
	if err := tr.Flush(ctx, *p.ID, s.client); err != nil {
		s.logger.Warn(ctx, "image changes incomplete", "id", *p.ID, "error", err)
		res.ImagesErr = err
	}
	return res
}
