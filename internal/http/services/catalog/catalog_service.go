// Package catalog sirve el catálogo público con cache de lectura. Las
// respuestas se cachean serializadas; singleflight colapsa los misses
// concurrentes en una sola consulta al store.
package catalog

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/prepmood/internal/cache"
	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	dto "github.com/dropDatabas3/prepmood/internal/http/dto/catalog"
	"github.com/dropDatabas3/prepmood/internal/observability/logger"
)

// Service define el catálogo de solo lectura.
type Service interface {
	List(ctx context.Context) (*dto.ListResponse, error)
	Get(ctx context.Context, id int64) (*dto.ProductResponse, error)
}

// Deps dependencias del service.
type Deps struct {
	Products repository.ProductRepository
	Cache    cache.Client
	TTL      time.Duration
}

type service struct {
	deps  Deps
	group singleflight.Group
}

// New crea el service de catálogo. TTL cero usa 5m.
func New(deps Deps) Service {
	if deps.TTL <= 0 {
		deps.TTL = 5 * time.Minute
	}
	return &service{deps: deps}
}

const (
	keyList   = "catalog:list"
	keyDetail = "catalog:product:" // + id
)

func (s *service) List(ctx context.Context) (*dto.ListResponse, error) {
	if cached, err := s.deps.Cache.Get(ctx, keyList); err == nil {
		var out dto.ListResponse
		if json.Unmarshal([]byte(cached), &out) == nil {
			return &out, nil
		}
	}

	v, err, _ := s.group.Do(keyList, func() (any, error) {
		products, err := s.deps.Products.List(ctx)
		if err != nil {
			return nil, err
		}
		out := &dto.ListResponse{Products: make([]dto.ProductResponse, 0, len(products))}
		for i := range products {
			out.Products = append(out.Products, toProductResponse(&products[i]))
		}
		s.put(ctx, keyList, out)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.ListResponse), nil
}

func (s *service) Get(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	key := keyDetail + strconv.FormatInt(id, 10)

	if cached, err := s.deps.Cache.Get(ctx, key); err == nil {
		var out dto.ProductResponse
		if json.Unmarshal([]byte(cached), &out) == nil {
			return &out, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		p, err := s.deps.Products.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out := toProductResponse(p)
		s.put(ctx, key, &out)
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.ProductResponse), nil
}

// put serializa y cachea best-effort: un fallo de cache no rompe la
// respuesta.
func (s *service) put(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.deps.Cache.Set(ctx, key, string(b), s.deps.TTL); err != nil {
		logger.From(ctx).Warn("catalog_cache_set_err", logger.Key(key), logger.Err(err))
	}
}

func toProductResponse(p *repository.Product) dto.ProductResponse {
	out := dto.ProductResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		BasePrice:   p.BasePrice.StringFixed(2),
		ImageURL:    p.ImageURL,
		Options:     make([]dto.OptionResponse, 0, len(p.Options)),
	}
	for _, o := range p.Options {
		out.Options = append(out.Options, dto.OptionResponse{
			ID:    o.ID,
			Color: o.Color,
			Size:  o.Size,
			Price: o.Price.StringFixed(2),
		})
	}
	return out
}
