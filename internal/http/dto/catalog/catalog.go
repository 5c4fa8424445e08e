// Package catalog define los contratos JSON del catálogo público.
package catalog

// OptionResponse variante de producto.
type OptionResponse struct {
	ID    int64   `json:"id"`
	Color string  `json:"color"`
	Size  *string `json:"size"`
	Price string  `json:"price"`
}

// ProductResponse producto con sus opciones.
type ProductResponse struct {
	ID          int64            `json:"id"`
	Slug        string           `json:"slug"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	BasePrice   string           `json:"base_price"`
	ImageURL    string           `json:"image_url"`
	Options     []OptionResponse `json:"options"`
}

// ListResponse listado completo del catálogo.
type ListResponse struct {
	Products []ProductResponse `json:"products"`
}
