package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/annaigorevna5/sensual-beauty/internal/domain"
	pkgkafka "github.com/annaigorevna5/sensual-beauty/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicCartUpdated    = "storefront.cart.updated"
	TopicCartCleared    = "storefront.cart.cleared"
	TopicOrderConfirmed = "storefront.order.confirmed"
)

// Aggregate type constants.
const (
	AggregateTypeCart  = "cart"
	AggregateTypeOrder = "order"
)

// Source identifier for events originating from the storefront.
const SourceStorefront = "storefront"

// cartAggregateID identifies the single process-wide cart in event streams.
const cartAggregateID = "storefront-cart"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	Items       []domain.CartItem `json:"items"`
	ItemCount   int               `json:"item_count"`
	TotalAmount int64             `json:"total_amount"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	ClearedAt time.Time `json:"cleared_at"`
}

// OrderConfirmedData is the payload for an order.confirmed event.
type OrderConfirmedData struct {
	OrderNumber string            `json:"order_number"`
	Items       []domain.CartItem `json:"items"`
	Subtotal    int64             `json:"subtotal"`
	Shipping    int64             `json:"shipping"`
	Tax         int64             `json:"tax"`
	Total       int64             `json:"total"`
	PlacedAt    time.Time         `json:"placed_at"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event for the given snapshot.
func (p *Producer) PublishCartUpdated(ctx context.Context, snap domain.CartSnapshot) error {
	data := CartUpdatedData{
		Items:       snap.Items,
		ItemCount:   snap.ItemCount,
		TotalAmount: snap.Total,
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, cartAggregateID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.Int("item_count", snap.ItemCount),
	)
	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context) error {
	data := CartClearedData{ClearedAt: time.Now().UTC()}

	event, err := pkgkafka.NewEvent(TopicCartCleared, cartAggregateID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.cleared event")
	return nil
}

// PublishOrderConfirmed publishes an order.confirmed event.
func (p *Producer) PublishOrderConfirmed(ctx context.Context, data OrderConfirmedData) error {
	event, err := pkgkafka.NewEvent(TopicOrderConfirmed, data.OrderNumber, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.confirmed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderConfirmed, event); err != nil {
		return fmt.Errorf("publish order.confirmed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.confirmed event",
		slog.String("order_number", data.OrderNumber),
	)
	return nil
}
