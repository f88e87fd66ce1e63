package domain

import "strings"

// CategoryAll is the pseudo-category that matches every product.
const CategoryAll = "all"

// Tag labels with sort significance: featured and bestseller products are
// promoted by the default catalog ordering.
const (
	TagFeatured   = "featured"
	TagBestseller = "bestseller"
)

// Product represents an item in the storefront catalog. Prices are in cents.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Price       int64    `json:"price"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Rating      float64  `json:"rating"`
	Reviews     int      `json:"reviews"`
	Image       string   `json:"image,omitempty"`
}

// Category represents a browsable group of products.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// HasTag reports whether the product carries the given tag.
func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// IsPromoted reports whether the product carries a tag that places it
// ahead of untagged products in the default ordering.
func (p Product) IsPromoted() bool {
	return p.HasTag(TagFeatured) || p.HasTag(TagBestseller)
}

// MatchesSearch reports whether the query appears (case-insensitively) in the
// product's name, description, or any of its tags. An empty query matches.
func (p Product) MatchesSearch(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(p.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}
