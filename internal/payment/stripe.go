package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"

	"github.com/dropDatabas3/prepmood/internal/observability/logger"
)

// StripeGateway implementa Gateway sobre PaymentIntents.
type StripeGateway struct{}

// NewStripe configura la API key global de stripe-go y retorna el
// gateway.
func NewStripe(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency, orderNumber string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minorUnits(amount, currency)),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_number", orderNumber)

	pi, err := paymentintent.New(params)
	if err != nil {
		logger.From(ctx).Error("stripe_intent_err", logger.Err(err))
		return nil, fmt.Errorf("payment: create intent: %w", err)
	}
	return &Intent{Ref: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) VerifyPaid(ctx context.Context, ref string, amount decimal.Decimal, currency string) error {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(ref, params)
	if err != nil {
		return ErrUnknownRef
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return ErrNotPaid
	}
	if pi.Amount != minorUnits(amount, currency) {
		logger.From(ctx).Warn("stripe_amount_mismatch",
			logger.String("ref", ref),
			logger.Any("expected", minorUnits(amount, currency)),
			logger.Any("got", pi.Amount),
		)
		return ErrNotPaid
	}
	return nil
}
