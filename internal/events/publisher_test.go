package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"spiceshop-service/internal/events"
	"spiceshop-service/internal/events/eventstest"
	"spiceshop-service/internal/middleware"
	"spiceshop-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() *model.Order {
	return &model.Order{
		ID:                42,
		CustomerID:        7,
		FulfillmentStatus: model.StatusPending,
		ShippingAddress:   model.Address{City: "Kochi"},
	}
}

func TestOrderCreatedEnvelope(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")

	event, err := events.NewOrderCreated(ctx, testOrder())
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, events.EventTypeOrderCreated, event.Type)
	assert.Equal(t, uint(42), event.OrderID)
	assert.Equal(t, uint(7), event.CustomerID)
	assert.Equal(t, "req-1", event.CorrelationID)

	var order model.Order
	require.NoError(t, json.Unmarshal(event.Data, &order))
	assert.Equal(t, "Kochi", order.ShippingAddress.City)
}

func TestMessageKeyedByOrder(t *testing.T) {
	event, err := events.NewStatusChanged(context.Background(), events.StatusChange{
		Order:          testOrder(),
		MerchantID:     3,
		PreviousStatus: model.StatusPending,
		NewStatus:      model.StatusShipped,
	})
	require.NoError(t, err)
	assert.Empty(t, event.CorrelationID)

	msg, err := event.Message()
	require.NoError(t, err)
	assert.Equal(t, "42", string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "order.status_changed", headers["event_type"])
	assert.Equal(t, event.ID, headers["event_id"])

	var decoded events.OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	var change events.StatusChange
	require.NoError(t, json.Unmarshal(decoded.Data, &change))
	assert.Equal(t, model.StatusShipped, change.NewStatus)
	assert.Equal(t, uint(3), change.MerchantID)
}

func TestRecorder(t *testing.T) {
	p := &eventstest.Recorder{}
	require.NoError(t, p.OrderCreated(context.Background(), testOrder()))
	require.Len(t, p.Events(), 1)

	p.Err = errors.New("broker down")
	assert.Error(t, p.OrderCreated(context.Background(), testOrder()))
	assert.Len(t, p.Events(), 1)
}
