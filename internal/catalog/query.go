package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/annaigorevna5/sensual-beauty/internal/domain"
)

// Sort keys accepted by the catalog.
const (
	SortFeatured  = "featured"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortName      = "name"
	SortRating    = "rating"
)

// Browse pagination defaults: the grid shows PageSize products initially and
// grows by PageIncrement per reveal.
const (
	DefaultPageSize      = 9
	DefaultPageIncrement = 6
	DefaultMaxPrice      = 50000
)

// ValidSortKey reports whether key is one of the accepted sort keys.
func ValidSortKey(key string) bool {
	switch key {
	case SortFeatured, SortPriceLow, SortPriceHigh, SortName, SortRating:
		return true
	}
	return false
}

// Criteria is the conjunction of browse filters. The zero value matches
// nothing useful; use DefaultCriteria.
type Criteria struct {
	Category string
	MinPrice int64
	MaxPrice int64
	Tags     []string
	Search   string
}

// DefaultCriteria returns the criteria that match the whole catalog.
func DefaultCriteria() Criteria {
	return Criteria{
		Category: domain.CategoryAll,
		MinPrice: 0,
		MaxPrice: DefaultMaxPrice,
	}
}

// Matches reports whether the product passes every filter in the criteria.
// Tag filtering is an OR across the selected tags; a product without tags
// fails any non-empty tag selection.
func (c Criteria) Matches(p domain.Product) bool {
	if c.Category != domain.CategoryAll && p.Category != c.Category {
		return false
	}
	if p.Price < c.MinPrice || p.Price > c.MaxPrice {
		return false
	}
	if len(c.Tags) > 0 {
		any := false
		for _, tag := range c.Tags {
			if p.HasTag(tag) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	return p.MatchesSearch(c.Search)
}

// Filter returns the products that match the criteria, preserving order.
func Filter(products []domain.Product, c Criteria) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if c.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Sort orders the products by the given key. The sort is stable, so ties
// keep catalog insertion order. Unknown keys leave the order untouched.
func Sort(products []domain.Product, key string) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)

	switch key {
	case SortFeatured:
		// Featured and bestseller products first, best rated within each partition.
		sort.SliceStable(out, func(i, j int) bool {
			pi, pj := out[i].IsPromoted(), out[j].IsPromoted()
			if pi != pj {
				return pi
			}
			return out[i].Rating > out[j].Rating
		})
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	}
	return out
}

// Paginate returns the first n products (or all of them when fewer).
func Paginate(products []domain.Product, n int) []domain.Product {
	if n < 0 {
		n = 0
	}
	if n > len(products) {
		n = len(products)
	}
	return products[:n]
}

// DistinctTags returns every tag used in the given products, in first-seen
// order.
func DistinctTags(products []domain.Product) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, p := range products {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}

// Query is the stateful browse session over a catalog: current filter
// criteria, sort key, and how many products are revealed in the grid.
// It is serialized by a mutex so HTTP handlers can share one instance.
//
// Changing any filter criterion resets the revealed count to the initial
// page size. Changing the sort key does not: reordering is not a narrowing.
type Query struct {
	catalog *Catalog

	mu       sync.Mutex
	criteria Criteria
	sortKey  string
	revealed int

	pageSize      int
	pageIncrement int
	maxPrice      int64
}

// NewQuery creates a browse session over the catalog with default criteria,
// featured ordering, and the given page geometry. Non-positive sizes fall
// back to the defaults; maxPrice is the upper bound of the default price
// window.
func NewQuery(c *Catalog, pageSize, pageIncrement int, maxPrice int64) *Query {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageIncrement <= 0 {
		pageIncrement = DefaultPageIncrement
	}
	if maxPrice <= 0 {
		maxPrice = DefaultMaxPrice
	}
	q := &Query{
		catalog:       c,
		sortKey:       SortFeatured,
		revealed:      pageSize,
		pageSize:      pageSize,
		pageIncrement: pageIncrement,
		maxPrice:      maxPrice,
	}
	q.criteria = q.defaultCriteria()
	return q
}

func (q *Query) defaultCriteria() Criteria {
	return Criteria{
		Category: domain.CategoryAll,
		MinPrice: 0,
		MaxPrice: q.maxPrice,
	}
}

// SetCategory selects a category filter ("all" matches everything).
func (q *Query) SetCategory(category string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.criteria.Category = category
	q.revealed = q.pageSize
}

// SetPriceRange sets the inclusive price window in cents.
func (q *Query) SetPriceRange(min, max int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.criteria.MinPrice = min
	q.criteria.MaxPrice = max
	q.revealed = q.pageSize
}

// ToggleTag adds the tag to the selection, or removes it when already
// selected.
func (q *Query) ToggleTag(tag string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, t := range q.criteria.Tags {
		if t == tag {
			q.criteria.Tags = append(q.criteria.Tags[:i], q.criteria.Tags[i+1:]...)
			q.revealed = q.pageSize
			return
		}
	}
	q.criteria.Tags = append(q.criteria.Tags, tag)
	q.revealed = q.pageSize
}

// SetTags replaces the tag selection.
func (q *Query) SetTags(tags []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.criteria.Tags = append([]string(nil), tags...)
	q.revealed = q.pageSize
}

// SetSearch sets the free-text search query.
func (q *Query) SetSearch(query string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.criteria.Search = query
	q.revealed = q.pageSize
}

// SetSort selects the ordering. The revealed count is kept.
func (q *Query) SetSort(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sortKey = key
}

// RevealMore grows the visible grid by the page increment and returns the
// new revealed count.
func (q *Query) RevealMore() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.revealed += q.pageIncrement
	return q.revealed
}

// Reset restores default criteria, featured ordering, and the initial
// revealed count.
func (q *Query) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.criteria = q.defaultCriteria()
	q.sortKey = SortFeatured
	q.revealed = q.pageSize
}

// Criteria returns the current filter criteria.
func (q *Query) Criteria() Criteria {
	q.mu.Lock()
	defer q.mu.Unlock()
	c := q.criteria
	c.Tags = append([]string(nil), q.criteria.Tags...)
	return c
}

// SortKey returns the current sort key.
func (q *Query) SortKey() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sortKey
}

// Revealed returns the current revealed count.
func (q *Query) Revealed() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.revealed
}

// Visible returns the products currently shown in the grid:
// filter, then sort, then the revealed page window.
func (q *Query) Visible() []domain.Product {
	q.mu.Lock()
	defer q.mu.Unlock()
	matched := Sort(Filter(q.catalog.Products(), q.criteria), q.sortKey)
	return Paginate(matched, q.revealed)
}

// Matches returns how many products pass the current criteria, regardless
// of pagination.
func (q *Query) Matches() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(Filter(q.catalog.Products(), q.criteria))
}
