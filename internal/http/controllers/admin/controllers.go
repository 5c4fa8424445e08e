package admin

import (
	svc "github.com/dropDatabas3/prepmood/internal/http/services/admin"
	inquiriessvc "github.com/dropDatabas3/prepmood/internal/http/services/inquiries"
)

// Controllers agrupa los controllers de la consola admin.
type Controllers struct {
	Warranties *WarrantiesController
	Inquiries  *InquiriesController
	Stock      *StockController
	Tokens     *TokensController
}

// Services son los services que consume la consola admin.
type Services struct {
	Warranties svc.WarrantyService
	Stock      svc.StockService
	Tokens     svc.TokenService
	Inquiries  inquiriessvc.Service
}

// NewControllers crea el agregador de controllers admin.
func NewControllers(s Services) *Controllers {
	return &Controllers{
		Warranties: NewWarrantiesController(s.Warranties),
		Inquiries:  NewInquiriesController(s.Inquiries),
		Stock:      NewStockController(s.Stock),
		Tokens:     NewTokensController(s.Tokens),
	}
}
