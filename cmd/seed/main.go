// Command seed carga datos mínimos para desarrollo: una cuenta admin,
// un catálogo chico y un lote de tokens sin asignar.
//
// Idempotente: corre las veces que haga falta, los insert van con
// ON CONFLICT DO NOTHING.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/dropDatabas3/prepmood/internal/security/password"
)

type seedProduct struct {
	slug        string
	name        string
	description string
	price       decimal.Decimal
	options     []seedOption
}

type seedOption struct {
	color string
	size  string
	price decimal.Decimal
}

var catalog = []seedProduct{
	{
		slug:        "prep-backpack",
		name:        "Prep Backpack",
		description: "Mochila urbana con compartimiento acolchado.",
		price:       decimal.NewFromInt(79),
		options: []seedOption{
			{color: "black", price: decimal.NewFromInt(79)},
			{color: "navy", price: decimal.NewFromInt(79)},
			{color: "olive", price: decimal.NewFromInt(84)},
		},
	},
	{
		slug:        "prep-hoodie",
		name:        "Prep Hoodie",
		description: "Buzo de algodón peinado, corte regular.",
		price:       decimal.NewFromInt(55),
		options: []seedOption{
			{color: "black", size: "M", price: decimal.NewFromInt(55)},
			{color: "black", size: "L", price: decimal.NewFromInt(55)},
			{color: "grey", size: "M", price: decimal.NewFromInt(55)},
		},
	},
	{
		slug:        "prep-bottle",
		name:        "Prep Bottle",
		description: "Botella térmica 750ml, doble pared.",
		price:       decimal.NewFromFloat(32.50),
		options: []seedOption{
			{color: "steel", price: decimal.NewFromFloat(32.50)},
		},
	},
}

func main() {
	var (
		adminEmail = flag.String("admin-email", envOr("ADMIN_EMAIL", "admin@prepmood.local"), "admin account email")
		adminPass  = flag.String("admin-password", os.Getenv("ADMIN_PASSWORD"), "admin account password")
		nTokens    = flag.Int("tokens", 20, "unassigned tokens to mint per product")
	)
	flag.Parse()

	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fail("DATABASE_URL is required")
	}
	if *adminPass == "" {
		fail("ADMIN_PASSWORD (or -admin-password) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		fail("connect: %v", err)
	}
	defer pool.Close()

	if err := seedAdmin(ctx, pool, *adminEmail, *adminPass); err != nil {
		fail("admin: %v", err)
	}
	fmt.Printf("admin %s ready\n", *adminEmail)

	for _, p := range catalog {
		minted, err := seedProductWithTokens(ctx, pool, p, *nTokens)
		if err != nil {
			fail("product %s: %v", p.slug, err)
		}
		fmt.Printf("product %s ready, %d tokens minted\n", p.slug, minted)
	}
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, email, plain string) error {
	hash, err := password.Hash(password.Default, plain)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO users (email, password_hash, first_name, is_admin)
		VALUES ($1, $2, 'Admin', TRUE)
		ON CONFLICT (lower(email)) DO NOTHING`,
		strings.ToLower(email), hash)
	return err
}

func seedProductWithTokens(ctx context.Context, pool *pgxpool.Pool, p seedProduct, nTokens int) (int, error) {
	var productID int64
	err := pool.QueryRow(ctx, `
		INSERT INTO products (slug, name, description, base_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO UPDATE SET updated_at = NOW()
		RETURNING id`,
		p.slug, p.name, p.description, p.price).Scan(&productID)
	if err != nil {
		return 0, err
	}

	for _, opt := range p.options {
		var size *string
		if opt.size != "" {
			s := opt.size
			size = &s
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO product_options (product_id, color, size, price)
			SELECT $1, $2, $3, $4
			WHERE NOT EXISTS (
				SELECT 1 FROM product_options
				WHERE product_id = $1 AND color = $2 AND size IS NOT DISTINCT FROM $3
			)`,
			productID, opt.color, size, opt.price)
		if err != nil {
			return 0, err
		}
	}

	minted := 0
	for i := 0; i < nTokens; i++ {
		token, err := mintToken()
		if err != nil {
			return minted, err
		}
		tag, err := pool.Exec(ctx, `
			INSERT INTO token_master (token, product_name, internal_code)
			VALUES ($1, $2, $3)
			ON CONFLICT (token) DO NOTHING`,
			token, p.name, fmt.Sprintf("%s-%03d", strings.ToUpper(p.slug), i+1))
		if err != nil {
			return minted, err
		}
		minted += int(tag.RowsAffected())
	}
	return minted, nil
}

// mintToken genera un token físico: PM- + 12 hex mayúsculas.
func mintToken() (string, error) {
	raw := make([]byte, 6)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return "PM-" + strings.ToUpper(hex.EncodeToString(raw)), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "seed: "+format+"\n", args...)
	os.Exit(1)
}
