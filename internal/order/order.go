// Package order models the orders living in a simulated book: their identity,
// standing volume, leverage, and the two record formats they are written to.
// Report records are for observation and carry doubles. Checkpoint records
// are restorable and carry packed exact decimals.
package order

import (
	"fmt"

	simplejson "github.com/bitly/go-simplejson"
	"github.com/shopspring/decimal"

	"marketsim/internal/common"
)

var one = decimal.NewFromInt(1)

// Order is implemented by *MarketOrder and *LimitOrder only.
type Order interface {
	fmt.Stringer

	ID() common.OrderID
	Timestamp() common.Timestamp
	Volume() decimal.Decimal
	Leverage() decimal.Decimal
	LeveragedVolume() decimal.Decimal
	STPFlag() common.STPFlag
	Direction() common.OrderDirection
	Kind() common.OrderKind

	RemoveVolume(decrease decimal.Decimal) error
	RemoveLeveragedVolume(decrease decimal.Decimal) error
	SetVolume(volume decimal.Decimal) error
	SetLeverage(leverage decimal.Decimal) error

	SerializeForReport(doc *simplejson.Json, key string)
	SerializeForCheckpoint(doc *simplejson.Json, key string)

	encoder
}

// BasicOrder holds the fields every order has. Volume is kept in unleveraged
// units; both volume and leverage stay non-negative.
type BasicOrder struct {
	id        common.OrderID
	timestamp common.Timestamp
	volume    decimal.Decimal
	leverage  decimal.Decimal
	stpFlag   common.STPFlag
}

func NewBasicOrder(
	id common.OrderID,
	timestamp common.Timestamp,
	volume decimal.Decimal,
	leverage decimal.Decimal,
	stpFlag common.STPFlag,
) (*BasicOrder, error) {
	if err := checkNonNegative("volume", volume); err != nil {
		return nil, err
	}
	if err := checkNonNegative("leverage", leverage); err != nil {
		return nil, err
	}
	return &BasicOrder{
		id:        id,
		timestamp: timestamp,
		volume:    volume,
		leverage:  leverage,
		stpFlag:   stpFlag,
	}, nil
}

func (o *BasicOrder) ID() common.OrderID          { return o.id }
func (o *BasicOrder) Timestamp() common.Timestamp { return o.timestamp }
func (o *BasicOrder) Volume() decimal.Decimal     { return o.volume }
func (o *BasicOrder) Leverage() decimal.Decimal   { return o.leverage }
func (o *BasicOrder) STPFlag() common.STPFlag     { return o.stpFlag }

// LeveragedVolume is volume * (1 + leverage).
func (o *BasicOrder) LeveragedVolume() decimal.Decimal {
	return o.volume.Mul(one.Add(o.leverage))
}

// RemoveVolume reduces the standing volume by decrease, which is expressed in
// unleveraged units. The volume is left untouched on error.
func (o *BasicOrder) RemoveVolume(decrease decimal.Decimal) error {
	if decrease.GreaterThan(o.volume) {
		return &VolumeError{Decrease: decrease, Standing: o.volume}
	}
	o.volume = o.volume.Sub(decrease)
	return nil
}

// RemoveLeveragedVolume reduces the standing volume by decrease expressed in
// leveraged units, i.e. by decrease / (1 + leverage).
func (o *BasicOrder) RemoveLeveragedVolume(decrease decimal.Decimal) error {
	factor := one.Add(o.leverage)
	leveraged := o.volume.Mul(factor)
	if decrease.GreaterThan(leveraged) {
		return &VolumeError{Decrease: decrease, Standing: leveraged, Leveraged: true}
	}
	// Div rounds at decimal.DivisionPrecision; the exact quotient is already
	// bounded by volume.
	removed := decrease.Div(factor)
	if removed.GreaterThan(o.volume) {
		removed = o.volume
	}
	o.volume = o.volume.Sub(removed)
	return nil
}

// SetVolume replaces the standing volume.
func (o *BasicOrder) SetVolume(volume decimal.Decimal) error {
	if err := checkNonNegative("volume", volume); err != nil {
		return err
	}
	o.volume = volume
	return nil
}

func (o *BasicOrder) SetLeverage(leverage decimal.Decimal) error {
	if err := checkNonNegative("leverage", leverage); err != nil {
		return err
	}
	o.leverage = leverage
	return nil
}

func (o *BasicOrder) SerializeForReport(doc *simplejson.Json, key string) {
	serialize(doc, key, o, report)
}

func (o *BasicOrder) SerializeForCheckpoint(doc *simplejson.Json, key string) {
	serialize(doc, key, o, checkpoint)
}

func (o *BasicOrder) encode(doc *simplejson.Json, enc encoding) {
	doc.Set("orderId", uint64(o.id))
	doc.Set("timestamp", uint64(o.timestamp))
	doc.Set("volume", enc.decimal(o.volume))
	doc.Set("leverage", enc.decimal(o.leverage))
	doc.Set("stpFlag", enc.stpFlag(o.stpFlag))
}

// sided adds the immutable direction shared by both variants.
type sided struct {
	BasicOrder
	direction common.OrderDirection
}

func (o *sided) Direction() common.OrderDirection { return o.direction }

func (o *sided) encode(doc *simplejson.Json, enc encoding) {
	o.BasicOrder.encode(doc, enc)
	doc.Set("direction", uint64(o.direction))
}

// MarketOrder executes against the best available prices. It carries no
// price; records hold an explicit null so both variants share one schema.
type MarketOrder struct {
	sided
}

func NewMarketOrder(
	id common.OrderID,
	timestamp common.Timestamp,
	volume decimal.Decimal,
	direction common.OrderDirection,
	leverage decimal.Decimal,
	stpFlag common.STPFlag,
) (*MarketOrder, error) {
	base, err := NewBasicOrder(id, timestamp, volume, leverage, stpFlag)
	if err != nil {
		return nil, err
	}
	return &MarketOrder{sided{BasicOrder: *base, direction: direction}}, nil
}

func (o *MarketOrder) Kind() common.OrderKind { return common.MarketOrder }

func (o *MarketOrder) SerializeForReport(doc *simplejson.Json, key string) {
	serialize(doc, key, o, report)
}

func (o *MarketOrder) SerializeForCheckpoint(doc *simplejson.Json, key string) {
	serialize(doc, key, o, checkpoint)
}

func (o *MarketOrder) encode(doc *simplejson.Json, enc encoding) {
	o.sided.encode(doc, enc)
	doc.Set("price", nil)
}

func (o *MarketOrder) String() string {
	return fmt.Sprintf("MarketOrder{id=%d ts=%d %v volume=%s leverage=%s stp=%v}",
		o.id, o.timestamp, o.direction, o.volume, o.leverage, o.stpFlag)
}

// LimitOrder rests on the book at price, which stays strictly positive.
type LimitOrder struct {
	sided
	price decimal.Decimal
}

func NewLimitOrder(
	id common.OrderID,
	timestamp common.Timestamp,
	volume decimal.Decimal,
	direction common.OrderDirection,
	price decimal.Decimal,
	leverage decimal.Decimal,
	stpFlag common.STPFlag,
) (*LimitOrder, error) {
	if err := checkPositive("price", price); err != nil {
		return nil, err
	}
	base, err := NewBasicOrder(id, timestamp, volume, leverage, stpFlag)
	if err != nil {
		return nil, err
	}
	return &LimitOrder{
		sided: sided{BasicOrder: *base, direction: direction},
		price: price,
	}, nil
}

func (o *LimitOrder) Kind() common.OrderKind { return common.LimitOrder }

func (o *LimitOrder) Price() decimal.Decimal { return o.price }

func (o *LimitOrder) SetPrice(price decimal.Decimal) error {
	if err := checkPositive("price", price); err != nil {
		return err
	}
	o.price = price
	return nil
}

func (o *LimitOrder) SerializeForReport(doc *simplejson.Json, key string) {
	serialize(doc, key, o, report)
}

func (o *LimitOrder) SerializeForCheckpoint(doc *simplejson.Json, key string) {
	serialize(doc, key, o, checkpoint)
}

func (o *LimitOrder) encode(doc *simplejson.Json, enc encoding) {
	o.sided.encode(doc, enc)
	doc.Set("price", enc.decimal(o.price))
}

func (o *LimitOrder) String() string {
	return fmt.Sprintf("LimitOrder{id=%d ts=%d %v volume=%s @ %s leverage=%s stp=%v}",
		o.id, o.timestamp, o.direction, o.volume, o.price, o.leverage, o.stpFlag)
}
