// Package eventstest provides an in-memory events.Publisher for tests.
package eventstest

import (
	"context"
	"sync"

	"spiceshop-service/internal/events"
	"spiceshop-service/internal/model"
)

// Recorder keeps published events in memory. A non-nil Err makes every
// publish fail without recording.
type Recorder struct {
	mu     sync.Mutex
	events []*events.OrderEvent
	Err    error
}

var _ events.Publisher = (*Recorder)(nil)

func (r *Recorder) OrderCreated(ctx context.Context, order *model.Order) error {
	event, err := events.NewOrderCreated(ctx, order)
	if err != nil {
		return err
	}
	return r.record(event)
}

func (r *Recorder) StatusChanged(ctx context.Context, change events.StatusChange) error {
	event, err := events.NewStatusChanged(ctx, change)
	if err != nil {
		return err
	}
	return r.record(event)
}

func (r *Recorder) record(event *events.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of what was recorded
func (r *Recorder) Events() []*events.OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*events.OrderEvent(nil), r.events...)
}

func (r *Recorder) Close() error { return nil }
