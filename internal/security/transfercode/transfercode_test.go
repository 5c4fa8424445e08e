package transfercode_test

import (
	"strings"
	"testing"

	"github.com/dropDatabas3/prepmood/internal/security/transfercode"
)

func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := transfercode.New()
		if err != nil {
			t.Fatal(err)
		}
		if len(code) != transfercode.Length {
			t.Fatalf("len(%q) = %d, want %d", code, len(code), transfercode.Length)
		}
		for _, r := range code {
			if !strings.ContainsRune(transfercode.Alphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		if !transfercode.Valid(code) {
			t.Fatalf("generated code %q does not validate", code)
		}
		seen[code] = true
	}
	// 200 códigos sobre 36^7 combinaciones: una colisión acá es un bug.
	if len(seen) != 200 {
		t.Fatalf("expected 200 distinct codes, got %d", len(seen))
	}
}

func TestNew_CoversTheWholeAlphabet(t *testing.T) {
	// 2000 códigos son 14000 símbolos: si algún carácter del alfabeto no
	// aparece nunca, el generador no está sorteando sobre los 36.
	counts := make(map[rune]int, len(transfercode.Alphabet))
	for i := 0; i < 2000; i++ {
		code, err := transfercode.New()
		if err != nil {
			t.Fatal(err)
		}
		for _, r := range code {
			counts[r]++
		}
	}
	for _, r := range transfercode.Alphabet {
		if counts[r] == 0 {
			t.Errorf("symbol %q never generated", r)
		}
	}
}

func TestValid(t *testing.T) {
	for _, good := range []string{"ABCDEF1", "0000000", "Z9Z9Z9Z"} {
		if !transfercode.Valid(good) {
			t.Errorf("Valid(%q) = false, want true", good)
		}
	}
	for _, bad := range []string{"", "abcdefg", "ABCDEF", "ABCDEF12", "ABC-EF1", "ÁBCDEF1"} {
		if transfercode.Valid(bad) {
			t.Errorf("Valid(%q) = true, want false", bad)
		}
	}
}
