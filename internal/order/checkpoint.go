package order

import (
	"fmt"

	simplejson "github.com/bitly/go-simplejson"
	"github.com/shopspring/decimal"

	"marketsim/internal/common"
	"marketsim/internal/jsondoc"
	"marketsim/internal/numeric"
)

// Precision used when restoring events without book-specific settings.
const (
	DefaultPriceDecimals  = 16
	DefaultVolumeDecimals = 16
)

// sidedFields are the members common to both variants' checkpoint records.
type sidedFields struct {
	id        common.OrderID
	timestamp common.Timestamp
	volume    decimal.Decimal
	direction common.OrderDirection
	leverage  decimal.Decimal
	stpFlag   common.STPFlag
}

func readSidedFields(doc *simplejson.Json) (sidedFields, error) {
	var f sidedFields

	id, err := jsondoc.Uint64(doc, "orderId")
	if err != nil {
		return f, err
	}
	ts, err := jsondoc.Uint64(doc, "timestamp")
	if err != nil {
		return f, err
	}
	if f.volume, err = jsondoc.Decimal(doc, "volume"); err != nil {
		return f, err
	}
	code, err := jsondoc.Uint64(doc, "direction")
	if err != nil {
		return f, err
	}
	if f.direction, err = common.DirectionFromCode(code); err != nil {
		return f, err
	}
	if f.leverage, err = jsondoc.Decimal(doc, "leverage"); err != nil {
		return f, err
	}
	if f.stpFlag, err = readSTPFlag(doc); err != nil {
		return f, err
	}
	f.id = common.OrderID(id)
	f.timestamp = common.Timestamp(ts)
	return f, nil
}

// readSTPFlag takes the numeric code written to checkpoints, and also the
// symbolic name used by report records.
func readSTPFlag(doc *simplejson.Json) (common.STPFlag, error) {
	v, err := jsondoc.Member(doc, "stpFlag")
	if err != nil {
		return 0, err
	}
	if name, err := v.String(); err == nil {
		return common.STPFlagFromName(name)
	}
	code, err := jsondoc.Uint64(doc, "stpFlag")
	if err != nil {
		return 0, err
	}
	return common.STPFlagFromCode(code)
}

// MarketOrderFromCheckpoint restores a market order from its checkpoint record.
func MarketOrderFromCheckpoint(doc *simplejson.Json) (*MarketOrder, error) {
	f, err := readSidedFields(doc)
	if err != nil {
		return nil, fmt.Errorf("restore market order: %w", err)
	}
	o, err := NewMarketOrder(f.id, f.timestamp, f.volume, f.direction, f.leverage, f.stpFlag)
	if err != nil {
		return nil, fmt.Errorf("restore market order %d: %w", f.id, err)
	}
	return o, nil
}

// LimitOrderFromCheckpoint restores a limit order from its checkpoint record.
// The volume is rounded to volumeDecimals to match the book's granularity.
// The price is taken as decoded; priceDecimals is part of the book's
// precision pair but prices are already exact in checkpoints.
func LimitOrderFromCheckpoint(doc *simplejson.Json, priceDecimals, volumeDecimals int) (*LimitOrder, error) {
	f, err := readSidedFields(doc)
	if err != nil {
		return nil, fmt.Errorf("restore limit order: %w", err)
	}
	price, err := jsondoc.Decimal(doc, "price")
	if err != nil {
		return nil, fmt.Errorf("restore limit order %d: %w", f.id, err)
	}
	o, err := NewLimitOrder(
		f.id,
		f.timestamp,
		numeric.Round(f.volume, volumeDecimals),
		f.direction,
		price,
		f.leverage,
		f.stpFlag,
	)
	if err != nil {
		return nil, fmt.Errorf("restore limit order %d: %w", f.id, err)
	}
	return o, nil
}

// FromCheckpoint restores whichever variant the record holds: a null price
// marks a market order, anything else a limit order.
func FromCheckpoint(doc *simplejson.Json, priceDecimals, volumeDecimals int) (Order, error) {
	null, err := jsondoc.IsNull(doc, "price")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownDiscriminator, err)
	}
	if null {
		o, err := MarketOrderFromCheckpoint(doc)
		if err != nil {
			return nil, err
		}
		return o, nil
	}
	o, err := LimitOrderFromCheckpoint(doc, priceDecimals, volumeDecimals)
	if err != nil {
		return nil, err
	}
	return o, nil
}
