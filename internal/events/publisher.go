// Package events publishes order lifecycle events to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"spiceshop-service/internal/middleware"
	"spiceshop-service/internal/model"
	"spiceshop-service/prometheus"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventType represents the type of order event
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
)

// OrderEvent is the envelope written to the orders topic
type OrderEvent struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	OrderID       uint            `json:"order_id"`
	CustomerID    uint            `json:"customer_id"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

// StatusChange is the payload of an order.status_changed event
type StatusChange struct {
	Order          *model.Order            `json:"order"`
	MerchantID     uint                    `json:"merchant_id"`
	PreviousStatus model.FulfillmentStatus `json:"previous_status"`
	NewStatus      model.FulfillmentStatus `json:"new_status"`
}

// Publisher emits order events. Publishing happens after the order is
// committed, so callers treat a failure as loggable, not fatal.
type Publisher interface {
	OrderCreated(ctx context.Context, order *model.Order) error
	StatusChanged(ctx context.Context, change StatusChange) error
	Close() error
}

// NewOrderCreated builds the envelope for a freshly placed order
func NewOrderCreated(ctx context.Context, order *model.Order) (*OrderEvent, error) {
	data, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}
	return newEvent(ctx, EventTypeOrderCreated, order, data), nil
}

// NewStatusChanged builds the envelope for a status update
func NewStatusChanged(ctx context.Context, change StatusChange) (*OrderEvent, error) {
	data, err := json.Marshal(change)
	if err != nil {
		return nil, err
	}
	return newEvent(ctx, EventTypeOrderStatusChanged, change.Order, data), nil
}

func newEvent(ctx context.Context, eventType EventType, order *model.Order, data []byte) *OrderEvent {
	return &OrderEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		Data:          data,
		Timestamp:     time.Now().UTC(),
		CorrelationID: middleware.RequestIDFromContext(ctx),
	}
}

// Message encodes the event for the orders topic. Messages are keyed by
// order so every event of one order lands on one partition.
func (e *OrderEvent) Message() (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(e.OrderID), 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
			{Key: "event_id", Value: []byte(e.ID)},
		},
	}, nil
}

// KafkaPublisher publishes order events to Kafka
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher writing to topic on brokers
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

// OrderCreated publishes an order.created event
func (p *KafkaPublisher) OrderCreated(ctx context.Context, order *model.Order) error {
	event, err := NewOrderCreated(ctx, order)
	if err != nil {
		return err
	}
	return p.publish(ctx, event)
}

// StatusChanged publishes an order.status_changed event
func (p *KafkaPublisher) StatusChanged(ctx context.Context, change StatusChange) error {
	event, err := NewStatusChanged(ctx, change)
	if err != nil {
		return err
	}
	return p.publish(ctx, event)
}

func (p *KafkaPublisher) publish(ctx context.Context, event *OrderEvent) error {
	msg, err := event.Message()
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		prometheus.RecordEvent(string(event.Type), "error")
		p.logger.Error("Failed to publish event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Uint("order_id", event.OrderID),
			zap.Error(err),
		)
		return err
	}

	prometheus.RecordEvent(string(event.Type), "published")
	p.logger.Info("Event published",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Uint("order_id", event.OrderID),
	)
	return nil
}

// Close flushes and closes the Kafka writer
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) OrderCreated(context.Context, *model.Order) error { return nil }
func (NoopPublisher) StatusChanged(context.Context, StatusChange) error { return nil }
func (NoopPublisher) Close() error                                     { return nil }
