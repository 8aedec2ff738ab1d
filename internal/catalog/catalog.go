// Package catalog provides the read-only product lookup the planner
// scores against.
package catalog

import (
	"context"

	"github.com/ignite/adplanner/internal/domain"
)

// Catalog is the product source contract. Implementations must return
// products in a stable order so repeated runs against the same snapshot
// score the same candidates.
type Catalog interface {
	// ListProducts returns products, optionally filtered to a category.
	// An empty filter returns everything.
	ListProducts(ctx context.Context, categoryFilter string) ([]domain.Product, error)
}
