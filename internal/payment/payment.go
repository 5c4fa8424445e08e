// Package payment abstrae el gateway de pago. La confirmación de una
// orden siempre se verifica contra el gateway antes de marcarla paga.
package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotPaid indica que el gateway no reconoce el pago como completado.
	ErrNotPaid = errors.New("payment: not paid")
	// ErrUnknownRef indica una referencia de pago desconocida.
	ErrUnknownRef = errors.New("payment: unknown reference")
)

// Intent es un pago iniciado en el gateway.
type Intent struct {
	Ref          string // referencia opaca del gateway (pi_... en stripe)
	ClientSecret string // lo consume el frontend
}

// Gateway es la interfaz mínima que el checkout necesita.
type Gateway interface {
	// CreateIntent inicia un pago por el monto dado (moneda ISO 4217).
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency, orderNumber string) (*Intent, error)

	// VerifyPaid chequea que la referencia corresponde a un pago
	// completado por el monto esperado. Retorna ErrNotPaid si no.
	VerifyPaid(ctx context.Context, ref string, amount decimal.Decimal, currency string) error
}

// minorUnits convierte un monto decimal a la unidad mínima de la moneda.
// Asume monedas de 2 decimales (EUR, USD); KRW y similares van en 0.
func minorUnits(amount decimal.Decimal, currency string) int64 {
	switch currency {
	case "KRW", "JPY":
		return amount.Round(0).IntPart()
	default:
		return amount.Shift(2).Round(0).IntPart()
	}
}
