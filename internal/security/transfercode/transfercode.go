// Package transfercode genera los códigos de un solo uso del flujo de
// transferencia de garantías.
package transfercode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// Alphabet caracteres válidos de un código. Sin minúsculas: el código se
// dicta por teléfono o se tipea desde un mail.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Length largo fijo del código.
const Length = 7

var validRe = regexp.MustCompile(`^[0-9A-Z]{7}$`)

// New genera un código de 7 caracteres [0-9A-Z] con crypto/rand.
// rand.Int da índices uniformes: un módulo directo sobre bytes sesgaría
// los primeros símbolos del alfabeto (256 no es múltiplo de 36).
func New() (string, error) {
	max := big.NewInt(int64(len(Alphabet)))
	out := make([]byte, Length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("transfercode: %w", err)
		}
		out[i] = Alphabet[n.Int64()]
	}
	return string(out), nil
}

// Valid verifica el formato de un código ya normalizado a mayúsculas.
func Valid(code string) bool {
	return validRe.MatchString(code)
}
