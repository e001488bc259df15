package order

import (
	"fmt"

	simplejson "github.com/bitly/go-simplejson"

	"marketsim/internal/jsondoc"
)

// EventKind is the literal written under "event".
type EventKind string

const EventPlace EventKind = "place"

// Event records that an order was placed. The order is shared with whoever
// else holds it (usually the book), so it must not be mutated while the
// event is being serialized.
type Event struct {
	Order Order
	Ctx   Context
}

func NewEvent(o Order, ctx Context) *Event {
	return &Event{Order: o, Ctx: ctx}
}

// SerializeForReport writes the order's fields and the event's own fields
// into one flat object.
func (e *Event) SerializeForReport(doc *simplejson.Json, key string) {
	serialize(doc, key, e, report)
}

// SerializeForCheckpoint is the restorable form of SerializeForReport. It
// also carries the book id, which restoring the context requires.
func (e *Event) SerializeForCheckpoint(doc *simplejson.Json, key string) {
	jsondoc.Serialize(doc, key, func(d *simplejson.Json) {
		e.encode(d, checkpoint)
		d.Set("bookId", uint64(e.Ctx.BookID))
	})
}

func (e *Event) encode(doc *simplejson.Json, enc encoding) {
	e.Order.encode(doc, enc)
	doc.Set("event", string(EventPlace))
	doc.Set("agentId", int64(e.Ctx.AgentID))
	jsondoc.SetOptional(doc, "clientOrderId", e.Ctx.ClientOrderID)
}

// EventFromCheckpoint restores an event using the default precision.
func EventFromCheckpoint(doc *simplejson.Json) (*Event, error) {
	return EventFromCheckpointWithPrecision(doc, DefaultPriceDecimals, DefaultVolumeDecimals)
}

func EventFromCheckpointWithPrecision(doc *simplejson.Json, priceDecimals, volumeDecimals int) (*Event, error) {
	v, err := jsondoc.Member(doc, "event")
	if err != nil {
		return nil, fmt.Errorf("restore event: %w", err)
	}
	if kind, _ := v.String(); EventKind(kind) != EventPlace {
		return nil, fmt.Errorf("restore event: %w: %v", ErrUnknownEvent, v.Interface())
	}
	o, err := FromCheckpoint(doc, priceDecimals, volumeDecimals)
	if err != nil {
		return nil, fmt.Errorf("restore event: %w", err)
	}
	ctx, err := ContextFromCheckpoint(doc)
	if err != nil {
		return nil, fmt.Errorf("restore event: %w", err)
	}
	return NewEvent(o, ctx), nil
}

// WithLogContext is the log stream envelope: the order and its log context as
// two separate sub-objects.
type WithLogContext struct {
	Order      Order
	LogContext LogContext
}

func NewWithLogContext(o Order, ctx LogContext) *WithLogContext {
	return &WithLogContext{Order: o, LogContext: ctx}
}

func (w *WithLogContext) SerializeForReport(doc *simplejson.Json, key string) {
	serialize(doc, key, w, report)
}

func (w *WithLogContext) SerializeForCheckpoint(doc *simplejson.Json, key string) {
	serialize(doc, key, w, checkpoint)
}

func (w *WithLogContext) encode(doc *simplejson.Json, enc encoding) {
	serialize(doc, "order", w.Order, enc)
	serialize(doc, "logContext", w.LogContext, enc)
}

func WithLogContextFromCheckpoint(doc *simplejson.Json, priceDecimals, volumeDecimals int) (*WithLogContext, error) {
	orderDoc, err := jsondoc.Member(doc, "order")
	if err != nil {
		return nil, fmt.Errorf("restore logged order: %w", err)
	}
	o, err := FromCheckpoint(orderDoc, priceDecimals, volumeDecimals)
	if err != nil {
		return nil, fmt.Errorf("restore logged order: %w", err)
	}
	ctxDoc, err := jsondoc.Member(doc, "logContext")
	if err != nil {
		return nil, fmt.Errorf("restore logged order: %w", err)
	}
	ctx, err := LogContextFromCheckpoint(ctxDoc)
	if err != nil {
		return nil, fmt.Errorf("restore logged order: %w", err)
	}
	return NewWithLogContext(o, ctx), nil
}
