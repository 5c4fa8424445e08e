// Package orders implementa checkout, listado y confirmación de pago.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/prepmood/internal/checkout"
	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	"github.com/dropDatabas3/prepmood/internal/domain/types"
	dto "github.com/dropDatabas3/prepmood/internal/http/dto/orders"
	"github.com/dropDatabas3/prepmood/internal/observability/logger"
	"github.com/dropDatabas3/prepmood/internal/payment"
)

// Errores del flujo de órdenes.
var (
	ErrEmptyOrder     = fmt.Errorf("no valid order lines")
	ErrNoShipping     = fmt.Errorf("shipping info required")
	ErrUnknownProduct = fmt.Errorf("unknown product or option")
	ErrOutOfStock     = fmt.Errorf("not enough stock")
	ErrNotPaid        = fmt.Errorf("payment not completed")
)

// Service define el flujo de órdenes del storefront.
type Service interface {
	Create(ctx context.Context, userID int64, in dto.CreateRequest) (*dto.CreateResponse, error)
	List(ctx context.Context, userID int64) ([]dto.OrderResponse, error)
	Get(ctx context.Context, orderID, userID int64) (*dto.OrderResponse, error)
	Confirm(ctx context.Context, userID int64, in dto.ConfirmRequest) (*dto.OrderResponse, error)
}

// Deps dependencias del service.
type Deps struct {
	Orders   repository.OrderRepository
	Products repository.ProductRepository
	Gateway  payment.Gateway
	Currency string
}

type service struct {
	deps Deps
}

// New crea el service de órdenes.
func New(deps Deps) Service {
	if deps.Currency == "" {
		deps.Currency = "EUR"
	}
	return &service{deps: deps}
}

func (s *service) Create(ctx context.Context, userID int64, in dto.CreateRequest) (*dto.CreateResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("orders.Create"))

	payload, err := checkout.BuildOrderPayload(in.Items, checkout.Shipping{
		Name:       in.Shipping.Name,
		Phone:      in.Shipping.Phone,
		Address:    in.Shipping.Address,
		PostalCode: in.Shipping.PostalCode,
		Memo:       in.Shipping.Memo,
	})
	switch {
	case errors.Is(err, checkout.ErrNoItems):
		return nil, ErrEmptyOrder
	case errors.Is(err, checkout.ErrNoShipping):
		return nil, ErrNoShipping
	case err != nil:
		return nil, err
	}

	items := make([]repository.CreateOrderItemInput, 0, len(payload.Items))
	for _, it := range payload.Items {
		optionID, err := s.resolveOption(ctx, it)
		if err != nil {
			return nil, err
		}
		color := ""
		if it.Color != nil {
			color = *it.Color
		}
		items = append(items, repository.CreateOrderItemInput{
			ProductID:       it.ProductID,
			ProductOptionID: optionID,
			Quantity:        it.Quantity,
			Color:           color,
			Size:            it.Size,
		})
	}

	order, err := s.deps.Orders.Create(ctx, repository.CreateOrderInput{
		UserID:          userID,
		Currency:        s.deps.Currency,
		ShippingName:    in.Shipping.Name,
		ShippingPhone:   in.Shipping.Phone,
		ShippingAddress: in.Shipping.Address,
		ShippingZip:     in.Shipping.PostalCode,
		ShippingCountry: in.Shipping.Country,
		Items:           items,
	})
	if errors.Is(err, repository.ErrInvalidInput) {
		return nil, ErrUnknownProduct
	}
	if err != nil {
		return nil, err
	}

	intent, err := s.deps.Gateway.CreateIntent(ctx, order.TotalPrice, order.Currency, order.OrderNumber)
	if err != nil {
		return nil, err
	}

	log.Info("order created",
		logger.OrderID(order.ID),
		logger.UserID(userID),
		logger.String("order_number", order.OrderNumber),
	)

	return &dto.CreateResponse{
		Order:        toOrderResponse(order),
		PaymentRef:   intent.Ref,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// resolveOption matchea color/talle contra las opciones activas del
// producto. Producto sin opciones vende por precio base.
func (s *service) resolveOption(ctx context.Context, it checkout.Item) (*int64, error) {
	p, err := s.deps.Products.GetByID(ctx, it.ProductID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUnknownProduct
		}
		return nil, err
	}
	if len(p.Options) == 0 {
		return nil, nil
	}
	for i := range p.Options {
		o := &p.Options[i]
		if it.Color != nil && !strings.EqualFold(o.Color, *it.Color) {
			continue
		}
		if (o.Size == nil) != (it.Size == nil) {
			continue
		}
		if o.Size != nil && it.Size != nil && !strings.EqualFold(*o.Size, *it.Size) {
			continue
		}
		return &o.ID, nil
	}
	return nil, ErrUnknownProduct
}

func (s *service) List(ctx context.Context, userID int64) ([]dto.OrderResponse, error) {
	orders, err := s.deps.Orders.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, orderID, userID int64) (*dto.OrderResponse, error) {
	order, err := s.deps.Orders.GetByID(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *service) Confirm(ctx context.Context, userID int64, in dto.ConfirmRequest) (*dto.OrderResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("orders.Confirm"))

	order, err := s.deps.Orders.GetByID(ctx, in.OrderID, userID)
	if err != nil {
		return nil, err
	}

	// Replay de una confirmación ya aplicada: misma referencia, ya paga.
	if order.Status != types.OrderPending {
		if order.PaymentRef != nil && *order.PaymentRef == in.PaymentRef {
			resp := toOrderResponse(order)
			return &resp, nil
		}
		return nil, repository.ErrStaleState
	}

	if err := s.deps.Gateway.VerifyPaid(ctx, in.PaymentRef, order.TotalPrice, order.Currency); err != nil {
		log.Warn("payment verification failed", logger.OrderID(order.ID), logger.Err(err))
		return nil, ErrNotPaid
	}

	confirmed, err := s.deps.Orders.ConfirmPaid(ctx, in.OrderID, in.PaymentRef)
	if errors.Is(err, repository.ErrConflict) {
		return nil, ErrOutOfStock
	}
	if err != nil {
		return nil, err
	}

	log.Info("order paid", logger.OrderID(confirmed.ID), logger.UserID(userID))
	resp := toOrderResponse(confirmed)
	return &resp, nil
}

func toOrderResponse(o *repository.Order) dto.OrderResponse {
	out := dto.OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		TotalPrice:  o.TotalPrice.StringFixed(2),
		Currency:    o.Currency,
		CreatedAt:   o.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, it := range o.Items {
		item := dto.ItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Color:       it.Color,
			Size:        it.Size,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.StringFixed(2),
		}
		for _, u := range it.Units {
			item.Units = append(item.Units, dto.UnitResponse{
				ID:         u.ID,
				UnitStatus: string(u.UnitStatus),
			})
		}
		out.Items = append(out.Items, item)
	}
	return out
}
