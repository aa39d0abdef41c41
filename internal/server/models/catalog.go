package models

// CatalogOption is one selectable category or unit.
type CatalogOption struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

// TaxOption is one selectable tax rate.
type TaxOption struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Rate        float64 `json:"rate"`
}

// Catalog bundles the product form's option lists for one company.
type Catalog struct {
	Categories []CatalogOption `json:"categoria"`
	Units      []CatalogOption `json:"unidad"`
	Taxes      []TaxOption     `json:"tax"`
}

func (c Catalog) HasCategory(id int64) bool {
	for _, o := range c.Categories {
		if o.ID == id {
			return true
		}
	}
	return false
}

func (c Catalog) HasUnit(id int64) bool {
	for _, o := range c.Units {
		if o.ID == id {
			return true
		}
	}
	return false
}

func (c Catalog) HasTax(id int64) bool {
	for _, o := range c.Taxes {
		if o.ID == id {
			return true
		}
	}
	return false
}
