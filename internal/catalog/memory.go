package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ignite/adplanner/internal/domain"
)

// MemoryCatalog is an in-memory Catalog, used when no database is
// configured and by tests.
type MemoryCatalog struct {
	products []domain.Product
}

// NewMemory builds a catalog over a fixed product slice. Products are
// sorted by id so listing order is stable.
func NewMemory(products []domain.Product) *MemoryCatalog {
	sorted := make([]domain.Product, len(products))
	copy(sorted, products)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &MemoryCatalog{products: sorted}
}

func (c *MemoryCatalog) ListProducts(_ context.Context, categoryFilter string) ([]domain.Product, error) {
	if categoryFilter == "" {
		out := make([]domain.Product, len(c.products))
		copy(out, c.products)
		return out, nil
	}
	var out []domain.Product
	for _, p := range c.products {
		if strings.EqualFold(p.Category, categoryFilter) {
			out = append(out, p)
		}
	}
	return out, nil
}

// LoadCSV builds a memory catalog from a CSV file with the columns
// id,title,description,price,category,popularity,brand,features,age_range,image_url.
// features is pipe-separated. The header row is required.
func LoadCSV(path string) (*MemoryCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog csv: %w", err)
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) (*MemoryCatalog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"id", "title", "price"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("catalog csv missing %q column", required)
		}
	}

	field := func(row []string, name string) string {
		if i, ok := col[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var products []domain.Product
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog csv line %d: %w", line, err)
		}

		price, err := strconv.ParseFloat(field(row, "price"), 64)
		if err != nil {
			return nil, fmt.Errorf("catalog csv line %d: bad price %q", line, field(row, "price"))
		}
		popularity, _ := strconv.ParseFloat(field(row, "popularity"), 64)

		var features []string
		if raw := field(row, "features"); raw != "" {
			for _, part := range strings.Split(raw, "|") {
				if v := strings.TrimSpace(part); v != "" {
					features = append(features, v)
				}
			}
		}

		products = append(products, domain.Product{
			ID:          field(row, "id"),
			Title:       field(row, "title"),
			Description: field(row, "description"),
			Price:       price,
			Category:    field(row, "category"),
			Metadata: domain.ProductMetadata{
				Popularity: popularity,
				Brand:      field(row, "brand"),
				Features:   features,
				AgeRange:   field(row, "age_range"),
				ImageURL:   field(row, "image_url"),
			},
		})
	}
	return NewMemory(products), nil
}
