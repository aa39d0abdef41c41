package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/filex"
)

// LoginRequest is the body of api/login.
type LoginRequest struct {
	IDEmpresa string `json:"id_empresa"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// SearchRequest is the body of api/pos/searchProduct.
type SearchRequest struct {
	IncludeImages bool   `json:"include_images"`
	PerPage       int    `json:"per_page"`
	Page          int    `json:"page"`
	Q             string `json:"q"`
}

// SearchPage is one page of api/pos/searchProduct.
type SearchPage struct {
	Products    []models.Product
	NextPageURL string
}

// Filter is one condition of a filter group.
type Filter struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	Condition string `json:"condition"`
	Operator  string `json:"operator"`
	Field     string `json:"field"`
}

// FilterGroup restricts a single field.
type FilterGroup struct {
	Field   string   `json:"field"`
	Filters []Filter `json:"filters"`
}

// FilterRequest is the body of api/pos/searchFilterProduct. PageNum is
// zero-based.
type FilterRequest struct {
	PageNum      int           `json:"pagenum"`
	PageSize     int           `json:"pagesize"`
	FiltersCount int           `json:"filterscount,omitempty"`
	FilterGroups []FilterGroup `json:"filterGroups,omitempty"`
}

// ContainsFilter builds the single-group "field CONTAINS value" filter the
// product screen sends.
func ContainsFilter(field, value string) []FilterGroup {
	return []FilterGroup{{
		Field: field,
		Filters: []Filter{{
			Label:     value,
			Value:     value,
			Condition: "CONTAINS",
			Operator:  "or",
			Field:     field,
		}},
	}}
}

// Client is the storefront backend contract.
type Client interface {
	Login(ctx context.Context, req LoginRequest) (string, error)
	SearchProducts(ctx context.Context, req SearchRequest) (SearchPage, error)
	SearchFilterProducts(ctx context.Context, req FilterRequest) ([]models.Product, error)
	GetCatalog(ctx context.Context) (models.Catalog, error)
	UpdateOrCreateProduct(ctx context.Context, p models.Product) (models.Product, error)
	SaveImages(ctx context.Context, productID int64, files []filex.Image, saveLocation string) error
	DeleteImage(ctx context.Context, imageID int64) error
}

// HTTPClient implements Client over a Gateway.
type HTTPClient struct {
	gw *Gateway
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(gw *Gateway) *HTTPClient {
	return &HTTPClient{gw: gw}
}

func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) (string, error) {
	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := c.gw.Do(ctx, Request{Method: http.MethodPost, Path: "api/login", JSON: req}, &resp); err != nil {
		return "", err
	}
	if resp.Data.Token == "" {
		return "", fmt.Errorf("login: empty token in response")
	}
	return resp.Data.Token, nil
}

func (c *HTTPClient) SearchProducts(ctx context.Context, req SearchRequest) (SearchPage, error) {
	var resp struct {
		Data struct {
			Data        []models.Product `json:"data"`
			NextPageURL *string          `json:"next_page_url"`
		} `json:"data"`
	}
	if err := c.gw.Do(ctx, Request{Method: http.MethodPost, Path: "api/pos/searchProduct", JSON: req}, &resp); err != nil {
		return SearchPage{}, err
	}
	page := SearchPage{Products: resp.Data.Data}
	if resp.Data.NextPageURL != nil {
		page.NextPageURL = *resp.Data.NextPageURL
	}
	return page, nil
}

func (c *HTTPClient) SearchFilterProducts(ctx context.Context, req FilterRequest) ([]models.Product, error) {
	if len(req.FilterGroups) > 0 && req.FiltersCount == 0 {
		req.FiltersCount = len(req.FilterGroups)
	}
	var resp struct {
		Products []models.Product `json:"products"`
	}
	if err := c.gw.Do(ctx, Request{Method: http.MethodPost, Path: "api/pos/searchFilterProduct", JSON: req}, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *HTTPClient) GetCatalog(ctx context.Context) (models.Catalog, error) {
	var resp struct {
		Data models.Catalog `json:"data"`
	}
	if err := c.gw.Do(ctx, Request{Method: http.MethodGet, Path: "api/pos/getCategoriaUnidadesTax"}, &resp); err != nil {
		return models.Catalog{}, err
	}
	return resp.Data, nil
}

func (c *HTTPClient) UpdateOrCreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	p.Images = nil
	var resp struct {
		Data models.Product `json:"data"`
	}
	if err := c.gw.Do(ctx, Request{Method: http.MethodPost, Path: "api/productos/updateOrCreateProduct", JSON: p}, &resp); err != nil {
		return models.Product{}, err
	}
	if resp.Data.ID == nil {
		return models.Product{}, ErrNoProductID
	}
	return resp.Data, nil
}

func (c *HTTPClient) SaveImages(ctx context.Context, productID int64, files []filex.Image, saveLocation string) error {
	if len(files) == 0 {
		return nil
	}
	body, contentType, err := encodeImages(files, saveLocation)
	if err != nil {
		return err
	}
	return c.gw.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        "api/productos/saveImages/" + strconv.FormatInt(productID, 10),
		Body:        body,
		ContentType: contentType,
	}, nil)
}

func (c *HTTPClient) DeleteImage(ctx context.Context, imageID int64) error {
	return c.gw.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "api/productos/deleteImage/" + strconv.FormatInt(imageID, 10),
	}, nil)
}

func encodeImages(files []filex.Image, saveLocation string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for i, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file[%d]"; filename=%q`, i, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("multipart part %d: %w", i, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("multipart write %d: %w", i, err)
		}
	}
	if saveLocation != "" {
		if err := w.WriteField("save_location", saveLocation); err != nil {
			return nil, "", fmt.Errorf("multipart save_location: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("multipart close: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
