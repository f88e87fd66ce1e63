package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/annaigorevna5/sensual-beauty/internal/domain"
)

// Catalog is the immutable product catalog loaded at startup. Accessors
// return copies, so a Catalog is safe for concurrent use.
type Catalog struct {
	products   []domain.Product
	categories []domain.Category
	byID       map[string]int
}

type catalogFile struct {
	Categories []domain.Category `json:"categories"`
	Products   []domain.Product  `json:"products"`
}

// Load reads the catalog document from the given JSON file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a Catalog from a raw JSON document of the shape
// {"categories": [...], "products": [...]}.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	byID := make(map[string]int, len(file.Products))
	for i, p := range file.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog product at index %d has no id", i)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog contains duplicate product id %q", p.ID)
		}
		byID[p.ID] = i
	}

	return &Catalog{
		products:   file.Products,
		categories: file.Categories,
		byID:       byID,
	}, nil
}

// Products returns the catalog products in their original order.
func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Categories returns the browsable categories.
func (c *Catalog) Categories() []domain.Category {
	out := make([]domain.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// ProductByID returns the product with the given ID.
func (c *Catalog) ProductByID(id string) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// Len returns the number of products in the catalog.
func (c *Catalog) Len() int {
	return len(c.products)
}

// CountByCategory returns the number of products in the given category.
// The pseudo-category "all" counts everything.
func (c *Catalog) CountByCategory(id string) int {
	if id == domain.CategoryAll {
		return len(c.products)
	}
	n := 0
	for _, p := range c.products {
		if p.Category == id {
			n++
		}
	}
	return n
}
