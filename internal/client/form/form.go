// Package form holds the editable state of the product create/edit form and
// its client-side validation.
package form

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/client/models"
)

// Field names, matching the backend's JSON keys.
const (
	FieldReference   = "reference"
	FieldDescription = "description"
	FieldCostoPrice  = "costo_price"
	FieldSalePrice   = "sale_price"
	FieldCategoria   = "id_categoria"
	FieldUnidad      = "id_unidad"
	FieldTax         = "id_tax"
	FieldTaxInclude  = "tax_include"
	FieldStatus      = "status"
)

var ErrUnknownField = errors.New("unknown form field")

// ValidationErrors maps a field name to its message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + v[k]
	}
	return "invalid product: " + strings.Join(parts, "; ")
}

// ProductForm is the raw user input; prices stay text until Validate.
type ProductForm struct {
	ID          *int64
	Reference   string
	Description string
	CostoPrice  string
	SalePrice   string
	IDCategoria string
	IDUnidad    string
	IDTax       string
	TaxInclude  bool
	Status      bool
}

// New returns the form for a product that does not exist yet.
func New() *ProductForm {
	return &ProductForm{Status: true}
}

// FromProduct pre-fills the form for editing p.
func FromProduct(p models.Product) *ProductForm {
	f := &ProductForm{
		ID:          p.ID,
		Reference:   p.Reference,
		Description: p.Description,
		IDCategoria: p.IDCategoria.String(),
		IDUnidad:    p.IDUnidad.String(),
		IDTax:       p.IDTax.String(),
		TaxInclude:  p.TaxInclude,
		Status:      p.Status,
	}
	if p.CostoPrice != 0 {
		f.CostoPrice = formatPrice(p.CostoPrice)
	}
	if p.SalePrice != 0 {
		f.SalePrice = formatPrice(p.SalePrice)
	}
	return f
}

// Editing reports whether the form edits an existing product.
func (f *ProductForm) Editing() bool { return f.ID != nil }

// Set assigns a field from text input.
func (f *ProductForm) Set(field, value string) error {
	value = strings.TrimSpace(value)
	switch field {
	case FieldReference:
		f.Reference = value
	case FieldDescription:
		f.Description = value
	case FieldCostoPrice:
		f.CostoPrice = value
	case FieldSalePrice:
		f.SalePrice = value
	case FieldCategoria:
		f.IDCategoria = value
	case FieldUnidad:
		f.IDUnidad = value
	case FieldTax:
		f.IDTax = value
	case FieldTaxInclude, FieldStatus:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: expected true or false", field)
		}
		if field == FieldTaxInclude {
			f.TaxInclude = b
		} else {
			f.Status = b
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Validate checks the form. Option ids are checked against catalog when one
// is supplied; a nil catalog skips those checks.
func (f *ProductForm) Validate(catalog *models.Catalog) ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(f.Reference) == "" {
		errs[FieldReference] = "reference is required"
	}
	if strings.TrimSpace(f.Description) == "" {
		errs[FieldDescription] = "description is required"
	}
	if msg := checkPrice(f.CostoPrice, true); msg != "" {
		errs[FieldCostoPrice] = msg
	}
	if msg := checkPrice(f.SalePrice, false); msg != "" {
		errs[FieldSalePrice] = msg
	}
	if catalog != nil {
		if f.IDCategoria != "" && !catalog.HasCategory(f.IDCategoria) {
			errs[FieldCategoria] = "unknown category"
		}
		if f.IDUnidad != "" && !catalog.HasUnit(f.IDUnidad) {
			errs[FieldUnidad] = "unknown unit"
		}
		if f.IDTax != "" && !catalog.HasTax(f.IDTax) {
			errs[FieldTax] = "unknown tax"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func checkPrice(s string, required bool) string {
	s = strings.TrimSpace(s)
	if s == "" {
		if required {
			return "price is required"
		}
		return ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "price must be a number"
	}
	if v <= 0 {
		return "price must be greater than zero"
	}
	return ""
}

// Product converts a validated form into the wire model. Callers must run
// Validate first; unparsable prices become zero.
func (f *ProductForm) Product() models.Product {
	cost, _ := strconv.ParseFloat(strings.TrimSpace(f.CostoPrice), 64)
	sale, _ := strconv.ParseFloat(strings.TrimSpace(f.SalePrice), 64)
	return models.Product{
		ID:          f.ID,
		Reference:   strings.TrimSpace(f.Reference),
		Description: strings.TrimSpace(f.Description),
		CostoPrice:  cost,
		SalePrice:   sale,
		IDCategoria: models.FlexString(f.IDCategoria),
		IDUnidad:    models.FlexString(f.IDUnidad),
		IDTax:       models.FlexString(f.IDTax),
		TaxInclude:  f.TaxInclude,
		Status:      f.Status,
	}
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
