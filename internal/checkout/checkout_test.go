package checkout_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dropDatabas3/prepmood/internal/checkout"
)

func TestFlex_UnmarshalJSON(t *testing.T) {
	var payload struct {
		ProductID checkout.Flex `json:"product_id"`
		Quantity  checkout.Flex `json:"quantity"`
	}

	// carrito viejo: strings
	if err := json.Unmarshal([]byte(`{"product_id":"12","quantity":"3"}`), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.ProductID != "12" || payload.Quantity != "3" {
		t.Fatalf("got %q / %q", payload.ProductID, payload.Quantity)
	}

	// carrito nuevo: números
	if err := json.Unmarshal([]byte(`{"product_id":12,"quantity":3}`), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.ProductID != "12" || payload.Quantity != "3" {
		t.Fatalf("got %q / %q", payload.ProductID, payload.Quantity)
	}

	// null queda vacío
	if err := json.Unmarshal([]byte(`{"product_id":null,"quantity":3}`), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.ProductID != "" {
		t.Fatalf("null should decode to empty, got %q", payload.ProductID)
	}
}

func TestNormalizeColor(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"LightBlue", "Light Blue"},
		{"Light-Gray", "Light Grey"},
		{"LGY", "Light Grey"},
		{"BK", "Black"},
		{"NAVY", "Navy"},
		{"WT", "White"},
		{"Gray", "Grey"},
		{"Magenta", "Magenta"}, // desconocido pasa tal cual
		{"  Black  ", "Black"},
	}
	for _, c := range cases {
		got := checkout.NormalizeColor(c.in)
		if got == nil || *got != c.want {
			t.Errorf("NormalizeColor(%q) = %v, want %q", c.in, got, c.want)
		}
	}
	if got := checkout.NormalizeColor("   "); got != nil {
		t.Errorf("blank color should be nil, got %q", *got)
	}
}

func TestNormalizeSize(t *testing.T) {
	if got := checkout.NormalizeSize("Free"); got != nil {
		t.Errorf("Free should be nil, got %q", *got)
	}
	if got := checkout.NormalizeSize(""); got != nil {
		t.Errorf("empty should be nil, got %q", *got)
	}
	if got := checkout.NormalizeSize(" M "); got == nil || *got != "M" {
		t.Errorf("M should survive trimmed, got %v", got)
	}
}

func TestBuildOrderPayload(t *testing.T) {
	shipping := checkout.Shipping{Name: "Juan Pérez", Address: "Av. Siempreviva 742"}

	t.Run("drops invalid rows silently", func(t *testing.T) {
		items := []checkout.RawItem{
			{ProductID: "1", Quantity: "2", Color: "BK"},
			{ProductID: "undefined", Quantity: "1"}, // basura del frontend
			{ProductID: "null", Quantity: "1"},
			{ProductID: "2", Quantity: "0"},  // cantidad inválida
			{ProductID: "-3", Quantity: "1"}, // id inválido
			{ProductID: "abc", Quantity: "1"},
		}
		p, err := checkout.BuildOrderPayload(items, shipping)
		if err != nil {
			t.Fatal(err)
		}
		if len(p.Items) != 1 {
			t.Fatalf("expected 1 surviving item, got %d", len(p.Items))
		}
		it := p.Items[0]
		if it.ProductID != 1 || it.Quantity != 2 {
			t.Fatalf("unexpected item %+v", it)
		}
		if it.Color == nil || *it.Color != "Black" {
			t.Fatalf("color should normalize to Black, got %v", it.Color)
		}
	})

	t.Run("all rows invalid", func(t *testing.T) {
		_, err := checkout.BuildOrderPayload([]checkout.RawItem{
			{ProductID: "undefined", Quantity: "1"},
		}, shipping)
		if !errors.Is(err, checkout.ErrNoItems) {
			t.Fatalf("expected ErrNoItems, got %v", err)
		}
	})

	t.Run("missing shipping", func(t *testing.T) {
		_, err := checkout.BuildOrderPayload([]checkout.RawItem{
			{ProductID: "1", Quantity: "1"},
		}, checkout.Shipping{})
		if !errors.Is(err, checkout.ErrNoShipping) {
			t.Fatalf("expected ErrNoShipping, got %v", err)
		}
	})
}
