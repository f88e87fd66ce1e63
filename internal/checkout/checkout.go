package checkout

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/annaigorevna5/sensual-beauty/internal/cart"
	"github.com/annaigorevna5/sensual-beauty/internal/domain"
	"github.com/annaigorevna5/sensual-beauty/internal/event"
	apperrors "github.com/annaigorevna5/sensual-beauty/pkg/errors"
)

// Pricing rules, in cents.
const (
	// FreeShippingThreshold is the subtotal at which shipping becomes free.
	FreeShippingThreshold = 100_00
	// FlatShippingCost is charged below the free-shipping threshold.
	FlatShippingCost = 15_00
	// TaxRatePercent is the sales tax applied to the subtotal.
	TaxRatePercent = 8
)

// orderNumberPrefix starts every order number.
const orderNumberPrefix = "SEN-"

// Summary is the priced breakdown of the current cart.
type Summary struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// Order is a confirmed order.
type Order struct {
	Number   string            `json:"number"`
	Items    []domain.CartItem `json:"items"`
	Summary  Summary           `json:"summary"`
	PlacedAt time.Time         `json:"placed_at"`
}

// Service prices the cart and confirms orders. The storefront has no
// payment integration: confirmation empties the cart and emits an event.
type Service struct {
	cart     *cart.Store
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a checkout service over the given cart store.
func NewService(store *cart.Store, producer *event.Producer, logger *slog.Logger) *Service {
	return &Service{
		cart:     store,
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
}

// Summarize prices the given subtotal: flat shipping below the free
// threshold, tax truncated to whole cents.
func Summarize(subtotal int64) Summary {
	var shipping int64
	if subtotal < FreeShippingThreshold {
		shipping = FlatShippingCost
	}
	tax := subtotal * TaxRatePercent / 100

	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}

// Summary returns the priced breakdown of the current cart.
func (s *Service) Summary() Summary {
	return Summarize(s.cart.Total())
}

// Confirm places an order for the current cart contents. The cart must not
// be empty. On success the cart is cleared and an order.confirmed event is
// published best-effort.
func (s *Service) Confirm(ctx context.Context) (Order, error) {
	snap := s.cart.Snapshot()
	if len(snap.Items) == 0 {
		return Order{}, apperrors.InvalidInput("cart is empty")
	}

	placedAt := s.now().UTC()
	order := Order{
		Number:   orderNumber(placedAt),
		Items:    snap.Items,
		Summary:  Summarize(snap.Total),
		PlacedAt: placedAt,
	}

	if err := s.producer.PublishOrderConfirmed(ctx, event.OrderConfirmedData{
		OrderNumber: order.Number,
		Items:       order.Items,
		Subtotal:    order.Summary.Subtotal,
		Shipping:    order.Summary.Shipping,
		Tax:         order.Summary.Tax,
		Total:       order.Summary.Total,
		PlacedAt:    order.PlacedAt,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.confirmed event",
			slog.String("order_number", order.Number),
			slog.String("error", err.Error()),
		)
	}

	s.cart.Clear(ctx)

	s.logger.InfoContext(ctx, "order confirmed",
		slog.String("order_number", order.Number),
		slog.Int64("total", order.Summary.Total),
	)
	return order, nil
}

// orderNumber derives the order number from the placement time: the prefix
// plus the last eight digits of the unix-millisecond clock.
func orderNumber(t time.Time) string {
	ms := strconv.FormatInt(t.UnixMilli(), 10)
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return orderNumberPrefix + ms
}
