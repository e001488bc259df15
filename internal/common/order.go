package common

// OrderID identifies an order within a simulation. Assigned by the book.
type OrderID uint64

// Timestamp is the simulation tick at which an order was created.
type Timestamp uint64

// AgentID identifies the agent owning an order. Negative ids are used for
// local (non-remote) agents.
type AgentID int32

// BookID identifies the order book an order was placed on.
type BookID uint32

// ClientOrderID is an identifier chosen by the agent for its own bookkeeping.
type ClientOrderID uint64

// NewClientOrderID returns a pointer to id, for use as an optional field.
func NewClientOrderID(id ClientOrderID) *ClientOrderID {
	return &id
}
