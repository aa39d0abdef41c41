package models

// ProductImage is a server-side image attached to a product. Either ImageURL
// or the base64 Image payload is set, depending on where the backend stored it.
type ProductImage struct {
	ID         int64   `json:"id"`
	IDEmpresa  int64   `json:"id_empresa"`
	IDProducto int64   `json:"id_producto"`
	Reference  string  `json:"reference"`
	Extension  string  `json:"extension"`
	Image      *string `json:"image"`
	ImageURL   *string `json:"image_url"`
	Active     bool    `json:"active"`
	DeletedAt  *string `json:"deleted_at"`
	CreatedAt  *string `json:"created_at"`
	UpdatedAt  *string `json:"updated_at"`
}

// Source returns what a viewer should display: the URL when present,
// otherwise an inline data URI.
func (i ProductImage) Source() string {
	if i.ImageURL != nil && *i.ImageURL != "" {
		return *i.ImageURL
	}
	if i.Image != nil && *i.Image != "" {
		return "data:image/jpeg;base64," + *i.Image
	}
	return ""
}

// Product is a storefront item. ID is nil for a product not yet created.
type Product struct {
	ID          *int64         `json:"id,omitempty"`
	Reference   string         `json:"reference"`
	Description string         `json:"description"`
	SalePrice   float64        `json:"sale_price"`
	CostoPrice  float64        `json:"costo_price"`
	IDCategoria FlexString     `json:"id_categoria"`
	IDUnidad    FlexString     `json:"id_unidad"`
	IDTax       FlexString     `json:"id_tax"`
	TaxInclude  bool           `json:"tax_include"`
	Status      bool           `json:"status"`
	Images      []ProductImage `json:"images,omitempty"`
}

// ImageIDs lists ids of the product's live (not soft-deleted) images.
func (p Product) ImageIDs() []int64 {
	ids := make([]int64, 0, len(p.Images))
	for _, img := range p.Images {
		if img.DeletedAt != nil {
			continue
		}
		ids = append(ids, img.ID)
	}
	return ids
}

// Key identifies a product in a list even before it has a server id.
func (p Product) Key() string {
	if p.ID != nil {
		return "id:" + itoa(*p.ID)
	}
	return "ref:" + p.Reference
}
