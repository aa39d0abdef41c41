package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/dbx"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/server/config"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
	"github.com/dmitrijs2005/gophstore/internal/server/repositories/products"
	"github.com/dmitrijs2005/gophstore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophstore/internal/server/storage"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// ValidationError is returned when a request payload is rejected. Fields maps
// a JSON field name to its messages.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return common.ErrorValidation }

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// SearchParams selects a page of the point-of-sale search. Page is one-based.
type SearchParams struct {
	Query         string
	Page          int
	PerPage       int
	IncludeImages bool
}

// SearchResult is one page of the point-of-sale search.
type SearchResult struct {
	Products []models.Product
	Page     int
	PerPage  int
	HasNext  bool
}

// FilterParams selects a page of the product screen. PageNum is zero-based.
type FilterParams struct {
	PageNum  int
	PageSize int
	Field    string
	Value    string
}

// UploadedImage is one file received for a product.
type UploadedImage struct {
	Name        string
	ContentType string
	Data        []byte
}

// ProductService implements the product, catalog and image endpoints. All
// operations are scoped to the caller's company.
type ProductService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	store        storage.ObjectStore
	defaultStore string
	logger       logging.Logger
}

func NewProductService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore, cfg *config.Config, logger logging.Logger) *ProductService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ProductService{
		db:           db,
		repomanager:  m,
		store:        store,
		defaultStore: cfg.ImageStore,
		logger:       logger,
	}
}

// Search matches q against reference and description.
func (s *ProductService) Search(ctx context.Context, companyID int64, p SearchParams) (*SearchResult, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	p.PerPage = clampPageSize(p.PerPage)

	list, err := s.repomanager.Products(s.db).List(ctx, companyID, models.ProductFilter{
		Field:  products.FieldAny,
		Value:  strings.TrimSpace(p.Query),
		Limit:  p.PerPage + 1,
		Offset: (p.Page - 1) * p.PerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("error searching products: %w", err)
	}

	res := &SearchResult{Page: p.Page, PerPage: p.PerPage}
	if len(list) > p.PerPage {
		res.HasNext = true
		list = list[:p.PerPage]
	}
	if p.IncludeImages {
		if err := s.attachImages(ctx, companyID, list); err != nil {
			return nil, err
		}
	}
	res.Products = list
	return res, nil
}

// FilterSearch returns the products of one page whose Field contains Value.
// Images are always attached.
func (s *ProductService) FilterSearch(ctx context.Context, companyID int64, p FilterParams) ([]models.Product, error) {
	if !products.ValidField(p.Field) {
		verr := &ValidationError{Message: "invalid filter"}
		verr.add("field", fmt.Sprintf("unknown field %q", p.Field))
		return nil, verr
	}
	if p.PageNum < 0 {
		p.PageNum = 0
	}
	p.PageSize = clampPageSize(p.PageSize)

	list, err := s.repomanager.Products(s.db).List(ctx, companyID, models.ProductFilter{
		Field:  p.Field,
		Value:  strings.TrimSpace(p.Value),
		Limit:  p.PageSize,
		Offset: p.PageNum * p.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("error searching products: %w", err)
	}
	if err := s.attachImages(ctx, companyID, list); err != nil {
		return nil, err
	}
	return list, nil
}

func clampPageSize(n int) int {
	switch {
	case n <= 0:
		return DefaultPerPage
	case n > MaxPerPage:
		return MaxPerPage
	}
	return n
}

func (s *ProductService) attachImages(ctx context.Context, companyID int64, list []models.Product) error {
	repo := s.repomanager.Images(s.db)
	for i := range list {
		imgs, err := repo.ListByProduct(ctx, companyID, list[i].ID)
		if err != nil {
			return fmt.Errorf("error listing images: %w", err)
		}
		s.resolveURLs(ctx, imgs)
		list[i].Images = imgs
	}
	return nil
}

// resolveURLs fills ImageURL of object-stored images. A failed presign
// leaves the URL empty.
func (s *ProductService) resolveURLs(ctx context.Context, imgs []models.ProductImage) {
	for i := range imgs {
		if imgs[i].StorageKey == "" || s.store == nil {
			continue
		}
		u, err := s.store.URL(ctx, imgs[i].StorageKey)
		if err != nil {
			s.logger.Warn(ctx, "presign failed", "image", imgs[i].ID, "error", err)
			continue
		}
		imgs[i].ImageURL = &u
	}
}

// Catalog returns the company's categories, units and taxes.
func (s *ProductService) Catalog(ctx context.Context, companyID int64) (models.Catalog, error) {
	c, err := s.repomanager.Catalog(s.db).Get(ctx, companyID)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("error loading catalog: %w", err)
	}
	return c, nil
}

// EnsureCatalog seeds a starter catalog for a company that has none.
func (s *ProductService) EnsureCatalog(ctx context.Context, companyID int64) (bool, error) {
	c, err := s.Catalog(ctx, companyID)
	if err != nil {
		return false, err
	}
	if len(c.Categories) > 0 || len(c.Units) > 0 || len(c.Taxes) > 0 {
		return false, nil
	}

	err = s.repomanager.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Catalog(tx)
		for _, d := range []string{"General", "Bebidas", "Alimentos"} {
			if _, err := repo.AddCategory(ctx, companyID, d); err != nil {
				return err
			}
		}
		for _, d := range []string{"Unidad", "Caja", "Libra"} {
			if _, err := repo.AddUnit(ctx, companyID, d); err != nil {
				return err
			}
		}
		for _, t := range []models.TaxOption{{Description: "ITBIS 18%", Rate: 18}, {Description: "ITBIS 16%", Rate: 16}, {Description: "Exento", Rate: 0}} {
			if _, err := repo.AddTax(ctx, companyID, t.Description, t.Rate); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("error seeding catalog: %w", err)
	}
	return true, nil
}

// UpdateOrCreate stores p for companyID. A zero ID creates a product; any
// other ID must name one of the company's products.
func (s *ProductService) UpdateOrCreate(ctx context.Context, companyID int64, p *models.Product) (*models.Product, error) {
	p.CompanyID = companyID
	p.Reference = strings.TrimSpace(p.Reference)
	p.Description = strings.TrimSpace(p.Description)
	p.Images = nil

	c, err := s.Catalog(ctx, companyID)
	if err != nil {
		return nil, err
	}
	verr := validateProduct(p, c)

	repo := s.repomanager.Products(s.db)
	if p.Reference != "" {
		taken, err := s.referenceTaken(ctx, companyID, p)
		if err != nil {
			return nil, err
		}
		if taken {
			verr.add("reference", "reference already exists")
		}
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	var saved *models.Product
	if p.ID == 0 {
		saved, err = repo.Create(ctx, p)
	} else {
		saved, err = repo.Update(ctx, p)
	}
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return nil, err
		case errors.Is(err, common.ErrorAlreadyExists):
			verr.add("reference", "reference already exists")
			return nil, verr
		}
		return nil, fmt.Errorf("error saving product: %w", err)
	}

	imgs, err := s.repomanager.Images(s.db).ListByProduct(ctx, companyID, saved.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing images: %w", err)
	}
	s.resolveURLs(ctx, imgs)
	saved.Images = imgs
	return saved, nil
}

func validateProduct(p *models.Product, c models.Catalog) *ValidationError {
	verr := &ValidationError{Message: "The given data was invalid."}
	if p.Reference == "" {
		verr.add("reference", "reference is required")
	}
	if p.Description == "" {
		verr.add("description", "description is required")
	}
	if p.CostoPrice <= 0 {
		verr.add("costo_price", "price must be greater than zero")
	}
	if p.SalePrice < 0 {
		verr.add("sale_price", "price must be greater than zero")
	}
	if p.IDCategoria.Valid && !c.HasCategory(p.IDCategoria.Value) {
		verr.add("id_categoria", "unknown category")
	}
	if p.IDUnidad.Valid && !c.HasUnit(p.IDUnidad.Value) {
		verr.add("id_unidad", "unknown unit")
	}
	if p.IDTax.Valid && !c.HasTax(p.IDTax.Value) {
		verr.add("id_tax", "unknown tax")
	}
	return verr
}

func (s *ProductService) referenceTaken(ctx context.Context, companyID int64, p *models.Product) (bool, error) {
	list, err := s.repomanager.Products(s.db).List(ctx, companyID, models.ProductFilter{
		Field: products.FieldReference,
		Value: p.Reference,
		Limit: MaxPerPage,
	})
	if err != nil {
		return false, fmt.Errorf("error checking reference: %w", err)
	}
	for _, other := range list {
		if other.ID != p.ID && other.Reference == p.Reference {
			return true, nil
		}
	}
	return false, nil
}

// SaveImages attaches files to one of the company's products. location is
// config.ImageStoreDatabase (inline base64) or config.ImageStoreS3; empty
// means the server default.
func (s *ProductService) SaveImages(ctx context.Context, companyID, productID int64, files []UploadedImage, location string) ([]models.ProductImage, error) {
	if location == "" {
		location = s.defaultStore
	}
	verr := &ValidationError{Message: "The given data was invalid."}
	switch location {
	case config.ImageStoreDatabase, config.ImageStoreS3:
	default:
		verr.add("save_location", fmt.Sprintf("unknown save location %q", location))
	}
	if len(files) == 0 {
		verr.add("file", "at least one file is required")
	}
	for i, f := range files {
		if len(f.Data) == 0 {
			verr.add("file["+strconv.Itoa(i)+"]", "file is empty")
		}
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}
	if location == config.ImageStoreS3 && s.store == nil {
		return nil, fmt.Errorf("object storage is not configured: %w", common.ErrorInternal)
	}

	if _, err := s.repomanager.Products(s.db).Get(ctx, companyID, productID); err != nil {
		return nil, err
	}

	var saved []models.ProductImage
	err := s.repomanager.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Images(tx)
		for _, f := range files {
			img := &models.ProductImage{
				CompanyID: companyID,
				ProductID: productID,
				Reference: f.Name,
				Extension: strings.TrimPrefix(strings.ToLower(path.Ext(f.Name)), "."),
			}
			if location == config.ImageStoreS3 {
				key := storage.NewStorageKey(companyID, productID, img.Extension)
				if err := s.store.Put(ctx, key, f.ContentType, f.Data); err != nil {
					return fmt.Errorf("error storing %s: %w", f.Name, err)
				}
				img.StorageKey = key
			} else {
				encoded := base64.StdEncoding.EncodeToString(f.Data)
				img.Image = &encoded
			}
			out, err := repo.Add(ctx, img)
			if err != nil {
				return fmt.Errorf("error saving image: %w", err)
			}
			saved = append(saved, *out)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.resolveURLs(ctx, saved)
	return saved, nil
}

// DeleteImage soft-deletes one of the company's images.
func (s *ProductService) DeleteImage(ctx context.Context, companyID, imageID int64) error {
	if err := s.repomanager.Images(s.db).SoftDelete(ctx, companyID, imageID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error deleting image: %w", err)
	}
	return nil
}
