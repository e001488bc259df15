package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketsim/internal/common"
	"marketsim/internal/jsondoc"
)

func TestContext_NullClientOrderID(t *testing.T) {
	ctx := Context{AgentID: 3, BookID: 0}

	doc := jsondoc.New()
	ctx.SerializeForCheckpoint(doc, "")
	data, err := jsondoc.Encode(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"agentId":3,"bookId":0,"clientOrderId":null}`, string(data))

	restored, err := ContextFromCheckpoint(reparse(t, doc))
	require.NoError(t, err)
	assert.Nil(t, restored.ClientOrderID)
	assert.Equal(t, ctx, restored)
}

func TestContext_RoundTrip(t *testing.T) {
	ctx := Context{AgentID: -7, BookID: 12, ClientOrderID: common.NewClientOrderID(99)}

	doc := jsondoc.New()
	ctx.SerializeForReport(doc, "ctx")
	restored, err := ContextFromCheckpoint(reparse(t, doc).Get("ctx"))
	require.NoError(t, err)
	assert.Equal(t, ctx, restored)

	_, err = ContextFromCheckpoint(reparse(t, jsondoc.New()))
	assert.ErrorIs(t, err, jsondoc.ErrMissingField)
}

func TestContext_MissingClientOrderIDKey(t *testing.T) {
	doc, err := jsondoc.Parse([]byte(`{"agentId":1,"bookId":2}`))
	require.NoError(t, err)

	_, err = ContextFromCheckpoint(doc)
	assert.ErrorIs(t, err, jsondoc.ErrMissingField)
	_, err = ClientContextFromCheckpoint(doc)
	assert.ErrorIs(t, err, jsondoc.ErrMissingField)
}

func TestClientContext_RoundTrip(t *testing.T) {
	full := Context{AgentID: 4, BookID: 1, ClientOrderID: common.NewClientOrderID(5)}
	ctx := full.Client()

	doc := jsondoc.New()
	ctx.SerializeForCheckpoint(doc, "")
	data, err := jsondoc.Encode(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"agentId":4,"clientOrderId":5}`, string(data))

	restored, err := ClientContextFromCheckpoint(reparse(t, doc))
	require.NoError(t, err)
	assert.Equal(t, ctx, restored)
}

func TestLogContext_RoundTrip(t *testing.T) {
	ctx := LogContext{AgentID: 8, BookID: 3}

	doc := jsondoc.New()
	ctx.SerializeForReport(doc, "")
	restored, err := LogContextFromCheckpoint(reparse(t, doc))
	require.NoError(t, err)
	assert.Equal(t, ctx, restored)
}

func TestEvent_SerializeForReport(t *testing.T) {
	o := createLimitOrder(t, "10", "50", "0")
	ev := NewEvent(o, Context{AgentID: 3, BookID: 2, ClientOrderID: common.NewClientOrderID(11)})

	doc := jsondoc.New()
	ev.SerializeForReport(doc, "")
	data, err := jsondoc.Encode(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"orderId": 1,
		"timestamp": 100,
		"volume": 10,
		"leverage": 0,
		"stpFlag": "NONE",
		"direction": 0,
		"price": 50,
		"event": "place",
		"agentId": 3,
		"clientOrderId": 11
	}`, string(data))
}

func TestEvent_CheckpointRoundTrip(t *testing.T) {
	events := []*Event{
		NewEvent(createLimitOrder(t, "10", "50", "0"), Context{AgentID: 3, BookID: 2, ClientOrderID: common.NewClientOrderID(11)}),
		NewEvent(createMarketOrder(t, "1.5", "2"), Context{AgentID: -1, BookID: 0}),
	}
	for _, ev := range events {
		doc := jsondoc.New()
		ev.SerializeForCheckpoint(doc, "")

		kind, err := doc.Get("event").String()
		require.NoError(t, err)
		assert.Equal(t, "place", kind)

		restored, err := EventFromCheckpoint(reparse(t, doc))
		require.NoError(t, err)
		assertSameOrder(t, ev.Order, restored.Order)
		assert.Equal(t, ev.Ctx, restored.Ctx)
	}
}

func TestEvent_SharesOrder(t *testing.T) {
	o := createLimitOrder(t, "10", "50", "0")
	ev := NewEvent(o, Context{AgentID: 1})

	// A fill applied through the book's reference is visible to the event.
	require.NoError(t, o.RemoveVolume(dec("2.5")))
	doc := jsondoc.New()
	ev.SerializeForCheckpoint(doc, "")
	volume, err := jsondoc.Decimal(doc, "volume")
	require.NoError(t, err)
	assertDecimal(t, "7.5", volume)
}

func TestEventFromCheckpoint_UnknownEvent(t *testing.T) {
	ev := NewEvent(createMarketOrder(t, "1", "0"), Context{AgentID: 1})
	doc := jsondoc.New()
	ev.SerializeForCheckpoint(doc, "")
	doc.Set("event", "cancel")

	_, err := EventFromCheckpoint(doc)
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestWithLogContext_Nested(t *testing.T) {
	o := createMarketOrder(t, "4", "1")
	rec := NewWithLogContext(o, LogContext{AgentID: 6, BookID: 9})

	doc := jsondoc.New()
	rec.SerializeForReport(doc, "")
	data, err := jsondoc.Encode(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"order": {
			"orderId": 2,
			"timestamp": 200,
			"volume": 4,
			"leverage": 1,
			"stpFlag": "CO",
			"direction": 1,
			"price": null
		},
		"logContext": {"agentId": 6, "bookId": 9}
	}`, string(data))

	doc = jsondoc.New()
	rec.SerializeForCheckpoint(doc, "record")
	restored, err := WithLogContextFromCheckpoint(reparse(t, doc).Get("record"), 4, 4)
	require.NoError(t, err)
	assertSameOrder(t, o, restored.Order)
	assert.Equal(t, rec.LogContext, restored.LogContext)
}
