package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
)

type productRepo struct {
	pool *pgxpool.Pool
}

func (r *productRepo) List(ctx context.Context) ([]repository.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, slug, name, description, base_price, image_url, is_active,
		       created_at, updated_at
		FROM products
		WHERE is_active
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Product
	index := map[int64]int{}
	for rows.Next() {
		var p repository.Product
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Description,
			&p.BasePrice, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	optRows, err := r.pool.Query(ctx, `
		SELECT id, product_id, color, size, price, image_url, is_active
		FROM product_options
		WHERE is_active
		ORDER BY product_id, id`)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()

	for optRows.Next() {
		var o repository.ProductOption
		if err := optRows.Scan(&o.ID, &o.ProductID, &o.Color, &o.Size,
			&o.Price, &o.ImageURL, &o.IsActive); err != nil {
			return nil, err
		}
		if i, ok := index[o.ProductID]; ok {
			out[i].Options = append(out[i].Options, o)
		}
	}
	return out, optRows.Err()
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*repository.Product, error) {
	var p repository.Product
	err := r.pool.QueryRow(ctx, `
		SELECT id, slug, name, description, base_price, image_url, is_active,
		       created_at, updated_at
		FROM products
		WHERE id = $1 AND is_active`,
		id,
	).Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.BasePrice,
		&p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, color, size, price, image_url, is_active
		FROM product_options
		WHERE product_id = $1 AND is_active
		ORDER BY id`,
		id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var o repository.ProductOption
		if err := rows.Scan(&o.ID, &o.ProductID, &o.Color, &o.Size,
			&o.Price, &o.ImageURL, &o.IsActive); err != nil {
			return nil, err
		}
		p.Options = append(p.Options, o)
	}
	return &p, rows.Err()
}
