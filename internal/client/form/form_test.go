package form

import (
	"testing"

	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_MissingReferenceAndNegativeCost(t *testing.T) {
	f := New()
	require.NoError(t, f.Set(FieldReference, ""))
	require.NoError(t, f.Set(FieldDescription, "x"))
	require.NoError(t, f.Set(FieldCostoPrice, "-5"))

	errs := f.Validate(nil)
	require.Len(t, errs, 2)
	assert.Contains(t, errs, FieldReference)
	assert.Contains(t, errs, FieldCostoPrice)
	assert.Equal(t, "invalid product: costo_price: price must be greater than zero; reference: reference is required", errs.Error())
}

func TestValidate(t *testing.T) {
	catalog := &models.Catalog{
		Categories: []models.CategoryOption{{ID: 1}},
		Units:      []models.UnitOption{{ID: 2}},
		Taxes:      []models.TaxOption{{ID: 3}},
	}
	valid := func() *ProductForm {
		return &ProductForm{Reference: "R1", Description: "Mug", CostoPrice: "2.5", Status: true}
	}

	tests := []struct {
		name    string
		mutate  func(f *ProductForm)
		catalog *models.Catalog
		want    []string
	}{
		{"valid minimal", func(*ProductForm) {}, nil, nil},
		{"missing cost", func(f *ProductForm) { f.CostoPrice = "" }, nil, []string{FieldCostoPrice}},
		{"non numeric cost", func(f *ProductForm) { f.CostoPrice = "abc" }, nil, []string{FieldCostoPrice}},
		{"zero sale price", func(f *ProductForm) { f.SalePrice = "0" }, nil, []string{FieldSalePrice}},
		{"blank description", func(f *ProductForm) { f.Description = "   " }, nil, []string{FieldDescription}},
		{"unknown ids with catalog", func(f *ProductForm) {
			f.IDCategoria, f.IDUnidad, f.IDTax = "9", "9", "9"
		}, catalog, []string{FieldCategoria, FieldUnidad, FieldTax}},
		{"known ids with catalog", func(f *ProductForm) {
			f.IDCategoria, f.IDUnidad, f.IDTax = "1", "2", "3"
		}, catalog, nil},
		{"unknown ids without catalog", func(f *ProductForm) { f.IDCategoria = "9" }, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid()
			tt.mutate(f)
			errs := f.Validate(tt.catalog)
			if tt.want == nil {
				assert.Nil(t, errs)
				return
			}
			require.Len(t, errs, len(tt.want))
			for _, k := range tt.want {
				assert.Contains(t, errs, k)
			}
		})
	}
}

func TestSet(t *testing.T) {
	f := New()
	require.NoError(t, f.Set(FieldTaxInclude, "true"))
	require.NoError(t, f.Set(FieldStatus, "false"))
	require.NoError(t, f.Set(FieldSalePrice, " 10.5 "))
	assert.True(t, f.TaxInclude)
	assert.False(t, f.Status)
	assert.Equal(t, "10.5", f.SalePrice)

	assert.Error(t, f.Set(FieldStatus, "maybe"))
	assert.ErrorIs(t, f.Set("price", "1"), ErrUnknownField)
}

func TestFromProductRoundTrip(t *testing.T) {
	id := int64(4)
	p := models.Product{
		ID: &id, Reference: "R", Description: "D", CostoPrice: 1.25, SalePrice: 3,
		IDCategoria: "1", IDTax: "3", Status: true,
		Images: []models.ProductImage{{ID: 1}},
	}
	f := FromProduct(p)
	assert.True(t, f.Editing())
	assert.Equal(t, "1.25", f.CostoPrice)
	assert.Equal(t, "3", f.SalePrice)

	got := f.Product()
	assert.Equal(t, &id, got.ID)
	assert.Equal(t, 1.25, got.CostoPrice)
	assert.Equal(t, models.FlexString("3"), got.IDTax)
	assert.Nil(t, got.Images)
	assert.False(t, New().Editing())
}
