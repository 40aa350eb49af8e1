package events

import (
	EventBus "github.com/asaskevich/EventBus"
)

// Topics published by the CRM services
const (
	TopicCustomerCreated  = "crm:customer:created"
	TopicProductCreated   = "crm:product:created"
	TopicOrderCreated     = "crm:order:created"
	TopicStockReplenished = "crm:product:restocked"
)

// Publisher is the publishing side of the bus, used by services.
type Publisher interface {
	Publish(topic string, args ...interface{})
}

// Bus wraps an in-process EventBus.
type Bus struct {
	bus EventBus.Bus
}

var _ Publisher = (*Bus)(nil)

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

func (b *Bus) Publish(topic string, args ...interface{}) {
	b.bus.Publish(topic, args...)
}

// Subscribe registers a synchronous handler. fn must accept the arguments published on topic.
func (b *Bus) Subscribe(topic string, fn interface{}) error {
	return b.bus.Subscribe(topic, fn)
}

// SubscribeAsync registers a handler run on its own goroutine.
func (b *Bus) SubscribeAsync(topic string, fn interface{}) error {
	return b.bus.SubscribeAsync(topic, fn, false)
}

// WaitAsync blocks until all async handlers have returned.
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}
