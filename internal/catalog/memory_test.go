package catalog

import (
	"context"
	"strings"
	"testing"
)

const sampleCSV = `id,title,description,price,category,popularity,brand,features,age_range,image_url
p2,Speaker,Small speaker.,59.99,electronics,0.6,AudioMax,ipx7|12h battery,,https://img.example.com/p2.jpg
p1,Blocks,Building blocks.,49.99,toys,0.8,BrickWorks,500 pieces,3-8,
`

func TestParseCSV(t *testing.T) {
	cat, err := parseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}

	products, err := cat.ListProducts(context.Background(), "")
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("products = %d, want 2", len(products))
	}
	// Sorted by id regardless of file order.
	if products[0].ID != "p1" || products[1].ID != "p2" {
		t.Errorf("order = %s, %s, want p1, p2", products[0].ID, products[1].ID)
	}

	speaker := products[1]
	if speaker.Price != 59.99 || speaker.Metadata.Popularity != 0.6 {
		t.Errorf("unexpected speaker fields: %+v", speaker)
	}
	if len(speaker.Metadata.Features) != 2 {
		t.Errorf("features = %v, want 2 entries", speaker.Metadata.Features)
	}
	if products[0].Metadata.AgeRange != "3-8" {
		t.Errorf("age_range = %q", products[0].Metadata.AgeRange)
	}
}

func TestParseCSVErrors(t *testing.T) {
	if _, err := parseCSV(strings.NewReader("id,title\np1,x\n")); err == nil {
		t.Error("missing price column must fail")
	}
	if _, err := parseCSV(strings.NewReader("id,title,price\np1,x,abc\n")); err == nil {
		t.Error("bad price must fail")
	}
}

func TestMemoryCatalogFilter(t *testing.T) {
	cat, err := parseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}

	toys, err := cat.ListProducts(context.Background(), "Toys")
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(toys) != 1 || toys[0].ID != "p1" {
		t.Errorf("filter result = %+v", toys)
	}
}
