package models

import "strconv"

// CategoryOption is one selectable product category.
type CategoryOption struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

// UnitOption is one selectable unit of measure.
type UnitOption struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

// TaxOption is one selectable tax (ITBIS) rate.
type TaxOption struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Rate        float64 `json:"rate"`
}

// Catalog bundles the dropdown options of the product form.
type Catalog struct {
	Categories []CategoryOption `json:"categoria"`
	Units      []UnitOption     `json:"unidad"`
	Taxes      []TaxOption      `json:"tax"`
}

// HasCategory reports whether id names a known category.
func (c Catalog) HasCategory(id string) bool {
	for _, o := range c.Categories {
		if itoa(o.ID) == id {
			return true
		}
	}
	return false
}

// HasUnit reports whether id names a known unit.
func (c Catalog) HasUnit(id string) bool {
	for _, o := range c.Units {
		if itoa(o.ID) == id {
			return true
		}
	}
	return false
}

// HasTax reports whether id names a known tax.
func (c Catalog) HasTax(id string) bool {
	for _, o := range c.Taxes {
		if itoa(o.ID) == id {
			return true
		}
	}
	return false
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
