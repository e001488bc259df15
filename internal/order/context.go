package order

import (
	"fmt"

	simplejson "github.com/bitly/go-simplejson"

	"marketsim/internal/common"
	"marketsim/internal/jsondoc"
)

// ClientContext is the addressing an agent needs to recognise its own order.
type ClientContext struct {
	AgentID       common.AgentID
	ClientOrderID *common.ClientOrderID
}

func (c ClientContext) SerializeForReport(doc *simplejson.Json, key string) {
	serialize(doc, key, c, report)
}

func (c ClientContext) SerializeForCheckpoint(doc *simplejson.Json, key string) {
	serialize(doc, key, c, checkpoint)
}

func (c ClientContext) encode(doc *simplejson.Json, _ encoding) {
	doc.Set("agentId", int64(c.AgentID))
	jsondoc.SetOptional(doc, "clientOrderId", c.ClientOrderID)
}

func ClientContextFromCheckpoint(doc *simplejson.Json) (ClientContext, error) {
	agentID, err := jsondoc.Int32(doc, "agentId")
	if err != nil {
		return ClientContext{}, fmt.Errorf("restore client context: %w", err)
	}
	clientOrderID, err := readClientOrderID(doc)
	if err != nil {
		return ClientContext{}, fmt.Errorf("restore client context: %w", err)
	}
	return ClientContext{AgentID: common.AgentID(agentID), ClientOrderID: clientOrderID}, nil
}

// Context is the full context of an order placed on a known book.
type Context struct {
	AgentID       common.AgentID
	BookID        common.BookID
	ClientOrderID *common.ClientOrderID
}

func (c Context) Client() ClientContext {
	return ClientContext{AgentID: c.AgentID, ClientOrderID: c.ClientOrderID}
}

func (c Context) SerializeForReport(doc *simplejson.Json, key string) {
	serialize(doc, key, c, report)
}

func (c Context) SerializeForCheckpoint(doc *simplejson.Json, key string) {
	serialize(doc, key, c, checkpoint)
}

func (c Context) encode(doc *simplejson.Json, _ encoding) {
	doc.Set("agentId", int64(c.AgentID))
	doc.Set("bookId", uint64(c.BookID))
	jsondoc.SetOptional(doc, "clientOrderId", c.ClientOrderID)
}

func ContextFromCheckpoint(doc *simplejson.Json) (Context, error) {
	agentID, err := jsondoc.Int32(doc, "agentId")
	if err != nil {
		return Context{}, fmt.Errorf("restore order context: %w", err)
	}
	bookID, err := jsondoc.Uint32(doc, "bookId")
	if err != nil {
		return Context{}, fmt.Errorf("restore order context: %w", err)
	}
	clientOrderID, err := readClientOrderID(doc)
	if err != nil {
		return Context{}, fmt.Errorf("restore order context: %w", err)
	}
	return Context{
		AgentID:       common.AgentID(agentID),
		BookID:        common.BookID(bookID),
		ClientOrderID: clientOrderID,
	}, nil
}

// LogContext identifies owner and book on log records.
type LogContext struct {
	AgentID common.AgentID
	BookID  common.BookID
}

func (c LogContext) SerializeForReport(doc *simplejson.Json, key string) {
	serialize(doc, key, c, report)
}

func (c LogContext) SerializeForCheckpoint(doc *simplejson.Json, key string) {
	serialize(doc, key, c, checkpoint)
}

func (c LogContext) encode(doc *simplejson.Json, _ encoding) {
	doc.Set("agentId", int64(c.AgentID))
	doc.Set("bookId", uint64(c.BookID))
}

func LogContextFromCheckpoint(doc *simplejson.Json) (LogContext, error) {
	agentID, err := jsondoc.Int32(doc, "agentId")
	if err != nil {
		return LogContext{}, fmt.Errorf("restore log context: %w", err)
	}
	bookID, err := jsondoc.Uint32(doc, "bookId")
	if err != nil {
		return LogContext{}, fmt.Errorf("restore log context: %w", err)
	}
	return LogContext{AgentID: common.AgentID(agentID), BookID: common.BookID(bookID)}, nil
}

func readClientOrderID(doc *simplejson.Json) (*common.ClientOrderID, error) {
	v, err := jsondoc.OptionalUint64(doc, "clientOrderId")
	if err != nil || v == nil {
		return nil, err
	}
	return common.NewClientOrderID(common.ClientOrderID(*v)), nil
}
