package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrProductNotFound signals a missing or inactive product.
var ErrProductNotFound = errors.New("product not found")

// Repository persists products and purchases.
type Repository interface {
	ListActive(ctx context.Context, lang string) ([]Product, error)
	FindProduct(ctx context.Context, id uuid.UUID) (Product, error)
	CreateProduct(ctx context.Context, p Product) error
	CreatePurchase(ctx context.Context, p Purchase) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed store repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListActive returns active products for the language, newest first.
// Products tagged "all" are visible in every language.
func (r *PostgresRepository) ListActive(ctx context.Context, lang string) ([]Product, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, description, price, image_url, language, is_active, created_at
        FROM products
        WHERE is_active AND (language = $1 OR language = $2)
        ORDER BY created_at DESC`, lang, LanguageAll)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// FindProduct fetches a product by id.
func (r *PostgresRepository) FindProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT id, title, description, price, image_url, language, is_active, created_at
        FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	return p, err
}

// CreateProduct inserts a new product.
func (r *PostgresRepository) CreateProduct(ctx context.Context, p Product) error {
	_, err := r.db.Exec(ctx, `INSERT INTO products (id, title, description, price, image_url, language, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Title, p.Description, p.Price, p.ImageURL, p.Language, p.IsActive, p.CreatedAt.UTC())
	return err
}

// CreatePurchase records a purchase.
func (r *PostgresRepository) CreatePurchase(ctx context.Context, p Purchase) error {
	_, err := r.db.Exec(ctx, `INSERT INTO purchases (id, user_id, product_id, price_at_purchase, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.UserID, p.ProductID, p.PriceAtPurchase, p.Status, p.CreatedAt.UTC())
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p         Product
		createdAt time.Time
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.ImageURL, &p.Language, &p.IsActive, &createdAt); err != nil {
		return Product{}, err
	}
	p.CreatedAt = createdAt.UTC()
	return p, nil
}
