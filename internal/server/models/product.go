package models

import "time"

// Product is a storefront item owned by one company.
type Product struct {
	ID          int64          `json:"id"`
	CompanyID   int64          `json:"id_empresa"`
	Reference   string         `json:"reference"`
	Description string         `json:"description"`
	SalePrice   float64        `json:"sale_price"`
	CostoPrice  float64        `json:"costo_price"`
	IDCategoria OptionalID     `json:"id_categoria"`
	IDUnidad    OptionalID     `json:"id_unidad"`
	IDTax       OptionalID     `json:"id_tax"`
	TaxInclude  bool           `json:"tax_include"`
	Status      bool           `json:"status"`
	Images      []ProductImage `json:"images"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ProductImage is stored either inline (Image, base64) or in object storage
// (StorageKey, exposed to clients as a presigned ImageURL).
type ProductImage struct {
	ID         int64      `json:"id"`
	CompanyID  int64      `json:"id_empresa"`
	ProductID  int64      `json:"id_producto"`
	Reference  string     `json:"reference"`
	Extension  string     `json:"extension"`
	Image      *string    `json:"image"`
	ImageURL   *string    `json:"image_url"`
	StorageKey string     `json:"-"`
	Active     bool       `json:"active"`
	DeletedAt  *time.Time `json:"deleted_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ProductFilter selects a page of a company's products. Field is one of the
// searchable columns; an empty Field or Value matches everything.
type ProductFilter struct {
	Field  string
	Value  string
	Limit  int
	Offset int
}
