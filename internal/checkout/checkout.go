// Package checkout normaliza el payload de creación de órdenes. Todas
// las rutas que crean órdenes (API y seed) pasan por acá para que la
// validación viva en un solo lugar.
package checkout

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrNoItems indica que ninguna línea del carrito sobrevivió la
	// validación.
	ErrNoItems = errors.New("checkout: no valid items")
	// ErrNoShipping indica que falta la dirección de envío.
	ErrNoShipping = errors.New("checkout: shipping info required")
)

// Flex acepta un valor JSON que puede llegar como string o como número
// y lo guarda como string. Los carritos viejos mandan "3", los nuevos 3.
type Flex string

func (f *Flex) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := jsonUnquote(b, &s); err != nil {
			return err
		}
		*f = Flex(s)
		return nil
	}
	*f = Flex(string(b))
	return nil
}

func jsonUnquote(b []byte, out *string) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return err
	}
	*out = s
	return nil
}

// RawItem es una línea de carrito tal como llega del cliente, sin
// validar.
type RawItem struct {
	ProductID Flex   `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  Flex   `json:"quantity"`
}

// Item es una línea ya validada y normalizada.
type Item struct {
	ProductID int64
	Size      *string
	Color     *string
	Quantity  int
}

// Shipping es la dirección de envío del checkout.
type Shipping struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	Memo       string `json:"memo"`
}

func (s Shipping) empty() bool {
	return strings.TrimSpace(s.Name) == "" && strings.TrimSpace(s.Address) == ""
}

// colorAliases mapea las variantes históricas del catálogo a los
// valores canónicos. Valores desconocidos pasan tal cual y los frena la
// validación contra el catálogo.
var colorAliases = map[string]string{
	"LightBlue":  "Light Blue",
	"Light-Blue": "Light Blue",
	"LB":         "Light Blue",
	"light blue": "Light Blue",
	"LIGHT BLUE": "Light Blue",

	"LightGrey":  "Light Grey",
	"Light-Grey": "Light Grey",
	"LGY":        "Light Grey",
	"light grey": "Light Grey",
	"LIGHT GREY": "Light Grey",
	"LightGray":  "Light Grey",
	"Light-Gray": "Light Grey",
	"light gray": "Light Grey",
	"LIGHT GRAY": "Light Grey",

	"BK":    "Black",
	"black": "Black",
	"BLACK": "Black",

	"NV":   "Navy",
	"navy": "Navy",
	"NAVY": "Navy",

	"WH":    "White",
	"WT":    "White",
	"white": "White",
	"WHITE": "White",

	"GY":   "Grey",
	"Gray": "Grey",
	"gray": "Grey",
	"GREY": "Grey",
	"GRAY": "Grey",
}

// NormalizeColor convierte una variante de color a su valor canónico.
// Vacío retorna nil; desconocido retorna el original trimmeado.
func NormalizeColor(color string) *string {
	c := strings.TrimSpace(color)
	if c == "" {
		return nil
	}
	if canon, ok := colorAliases[c]; ok {
		return &canon
	}
	return &c
}

// NormalizeSize trata "Free" y vacío como sin talle (accesorios).
func NormalizeSize(size string) *string {
	s := strings.TrimSpace(size)
	if s == "" || s == "Free" {
		return nil
	}
	return &s
}

// normalizeItem valida una línea. Retorna ok=false para descartarla.
func normalizeItem(raw RawItem) (Item, bool) {
	pid := strings.TrimSpace(string(raw.ProductID))
	if pid == "" || pid == "undefined" || pid == "null" {
		return Item{}, false
	}
	productID, err := strconv.ParseInt(pid, 10, 64)
	if err != nil || productID <= 0 {
		return Item{}, false
	}

	qty, err := strconv.Atoi(strings.TrimSpace(string(raw.Quantity)))
	if err != nil || qty <= 0 {
		return Item{}, false
	}

	return Item{
		ProductID: productID,
		Size:      NormalizeSize(raw.Size),
		Color:     NormalizeColor(raw.Color),
		Quantity:  qty,
	}, true
}

// Payload es el resultado listo para crear la orden.
type Payload struct {
	Items    []Item
	Shipping Shipping
}

// BuildOrderPayload valida y normaliza las líneas del carrito. Las
// líneas inválidas se descartan en silencio; si no sobrevive ninguna
// retorna ErrNoItems.
func BuildOrderPayload(items []RawItem, shipping Shipping) (*Payload, error) {
	if shipping.empty() {
		return nil, ErrNoShipping
	}
	out := make([]Item, 0, len(items))
	for _, raw := range items {
		if it, ok := normalizeItem(raw); ok {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoItems
	}
	return &Payload{Items: out, Shipping: shipping}, nil
}
