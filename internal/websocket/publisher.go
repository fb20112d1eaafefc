package websocket

// EventPublisher defines the interface for publishing events to WebSocket clients
type EventPublisher interface {
	// Publish sends an event to all clients connected to the specified business
	Publish(businessID int32, event Event)
}

// Ensure Hub implements EventPublisher
var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting the event to the business
func (h *Hub) Publish(businessID int32, event Event) {
	h.Broadcast(businessID, event)
}

// NoOpPublisher is a publisher that does nothing (for tests and the CLI)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(businessID int32, event Event) {}
