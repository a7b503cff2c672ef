package events

import (
	"log"
	"sync"
)

// FulfillmentUpdated is published when the commerce platform reports a
// fulfillment state change for an order.
type FulfillmentUpdated struct {
	OrderExternalID    string
	MerchantExternalID string
	OldState           string
	NewState           string
}

// Handler consumes a fulfillment event.
type Handler func(evt FulfillmentUpdated)

// Bus is a minimal in-process publish/subscribe for platform events. The
// webhook API publishes, the fulfillment service subscribes.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

var (
	defaultBus *Bus
	busOnce    sync.Once
)

// Default returns the process-wide bus.
func Default() *Bus {
	busOnce.Do(func() {
		defaultBus = &Bus{}
	})
	return defaultBus
}

// Subscribe registers a handler for fulfillment events.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers evt to all handlers in order. A panicking handler is
// logged and does not block the others.
func (b *Bus) Publish(evt FulfillmentUpdated) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()
	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("events: handler panic: %v", r)
				}
			}()
			h(evt)
		}()
	}
}
