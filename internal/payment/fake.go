package payment

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FakeGateway es un gateway en memoria para dev y tests. Todo intent
// creado se considera pago al instante.
type FakeGateway struct {
	mu      sync.Mutex
	intents map[string]fakeIntent
}

type fakeIntent struct {
	amount   decimal.Decimal
	currency string
}

func NewFake() *FakeGateway {
	return &FakeGateway{intents: make(map[string]fakeIntent)}
}

func (g *FakeGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency, orderNumber string) (*Intent, error) {
	ref := "fake_" + uuid.NewString()
	g.mu.Lock()
	g.intents[ref] = fakeIntent{amount: amount, currency: currency}
	g.mu.Unlock()
	return &Intent{Ref: ref, ClientSecret: ref + "_secret"}, nil
}

func (g *FakeGateway) VerifyPaid(ctx context.Context, ref string, amount decimal.Decimal, currency string) error {
	g.mu.Lock()
	in, ok := g.intents[ref]
	g.mu.Unlock()
	if !ok {
		return ErrUnknownRef
	}
	if !in.amount.Equal(amount) || in.currency != currency {
		return ErrNotPaid
	}
	return nil
}
