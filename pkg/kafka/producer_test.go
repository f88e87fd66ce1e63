package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Event tests ---

func TestNewEvent_Fields(t *testing.T) {
	type CartData struct {
		ItemCount   int   `json:"item_count"`
		TotalAmount int64 `json:"total_amount"`
	}

	data := CartData{ItemCount: 3, TotalAmount: 7000}
	event, err := NewEvent("cart.updated", "cart", "cart", "storefront", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID, "EventID should be a non-empty UUID")
	assert.Equal(t, "cart.updated", event.EventType)
	assert.Equal(t, "cart", event.AggregateID)
	assert.Equal(t, "cart", event.AggregateType)
	assert.Equal(t, "storefront", event.Source)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)
	assert.NotNil(t, event.Data)

	// Verify the data was marshaled correctly.
	var roundTripped CartData
	require.NoError(t, json.Unmarshal(event.Data, &roundTripped))
	assert.Equal(t, data, roundTripped)
}

func TestNewEvent_InvalidData(t *testing.T) {
	// Channels are not serializable to JSON.
	_, err := NewEvent("test.event", "agg-1", "test", "storefront", make(chan int))
	require.Error(t, err)
}

func TestEvent_Marshal_Unmarshal(t *testing.T) {
	original, err := NewEvent("order.confirmed", "SEN-12345678", "order", "storefront", map[string]string{"number": "SEN-12345678"})
	require.NoError(t, err)
	original.CorrelationID = "corr-abc"

	raw, err := original.Marshal()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	restored, err := UnmarshalEvent(raw)
	require.NoError(t, err)

	assert.Equal(t, original.EventID, restored.EventID)
	assert.Equal(t, original.EventType, restored.EventType)
	assert.Equal(t, original.AggregateID, restored.AggregateID)
	assert.Equal(t, original.AggregateType, restored.AggregateType)
	assert.Equal(t, original.Version, restored.Version)
	assert.Equal(t, original.Source, restored.Source)
	assert.Equal(t, original.CorrelationID, restored.CorrelationID)
	assert.JSONEq(t, string(original.Data), string(restored.Data))
	assert.WithinDuration(t, original.Timestamp, restored.Timestamp, time.Millisecond)
}

func TestEvent_WithCorrelationID(t *testing.T) {
	event, err := NewEvent("test.event", "agg-1", "test", "storefront", nil)
	require.NoError(t, err)

	// Verify chaining returns the same pointer.
	result := event.WithCorrelationID("corr-xyz")
	assert.Same(t, event, result, "WithCorrelationID should return the same event for chaining")
	assert.Equal(t, "corr-xyz", event.CorrelationID)
}

func TestEvent_UnmarshalData(t *testing.T) {
	event, err := NewEvent("cart.cleared", "cart", "cart", "storefront", map[string]int{"item_count": 0})
	require.NoError(t, err)

	var target map[string]int
	require.NoError(t, event.UnmarshalData(&target))
	assert.Equal(t, 0, target["item_count"])
}

func TestUnmarshalEvent_InvalidJSON(t *testing.T) {
	_, err := UnmarshalEvent([]byte("{{nope"))
	require.Error(t, err)
}

// --- Producer config ---

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"localhost:9092"})

	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.False(t, cfg.Async)
}

func TestProducer_Ping_NoBrokers(t *testing.T) {
	p := &Producer{}
	err := p.Ping(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers")
}
