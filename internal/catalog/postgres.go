package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/ignite/adplanner/internal/domain"
)

// PostgresCatalog implements Catalog against PostgreSQL.
type PostgresCatalog struct{ db *sql.DB }

// NewPostgres opens a Postgres-backed catalog and verifies the
// connection.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresCatalog, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping catalog db: %w", err)
	}
	return &PostgresCatalog{db: db}, nil
}

// NewPostgresFromDB wraps an existing connection, used by tests.
func NewPostgresFromDB(db *sql.DB) *PostgresCatalog { return &PostgresCatalog{db: db} }

func (c *PostgresCatalog) ListProducts(ctx context.Context, categoryFilter string) ([]domain.Product, error) {
	q := `
		SELECT id, title, COALESCE(description,''), price, COALESCE(category,''),
		       COALESCE(metadata,'{}')
		FROM products`
	args := []interface{}{}
	if categoryFilter != "" {
		q += ` WHERE LOWER(category) = LOWER($1)`
		args = append(args, categoryFilter)
	}
	q += ` ORDER BY id`

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		var metadata []byte
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Category, &metadata); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
				return nil, fmt.Errorf("product %s metadata: %w", p.ID, err)
			}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (c *PostgresCatalog) Close() error { return c.db.Close() }
