package domain

// CartItem represents a single line in the shopping cart.
type CartItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Image    string `json:"image,omitempty"`
	Category string `json:"category,omitempty"`
}

// LineTotal returns the extended price of the line (in cents).
func (i CartItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// CartSnapshot is an immutable view of the cart at a point in time,
// with the derived totals precomputed.
type CartSnapshot struct {
	Items     []CartItem `json:"items"`
	Total     int64      `json:"total"`
	ItemCount int        `json:"item_count"`
}

// TotalAmount calculates the total price of the given items (in cents).
func TotalAmount(items []CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}

// ItemCount returns the total number of units across the given items.
func ItemCount(items []CartItem) int {
	var count int
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the cart item with the given product ID,
// or -1 when the product is not in the cart.
func FindItemIndex(items []CartItem, productID string) int {
	for i := range items {
		if items[i].ID == productID {
			return i
		}
	}
	return -1
}
