package common

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDirection = errors.New("invalid order direction")
	ErrInvalidSTPFlag   = errors.New("invalid stp flag")
)

// OrderDirection is the side of an order. The numeric code is what gets
// written to both record formats.
type OrderDirection uint32

const (
	Buy OrderDirection = iota
	Sell
)

func (d OrderDirection) String() string {
	switch d {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// DirectionFromCode validates a numeric direction code.
func DirectionFromCode(code uint64) (OrderDirection, error) {
	if code > uint64(Sell) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDirection, code)
	}
	return OrderDirection(code), nil
}

// STPFlag is the self-trade-prevention policy attached to an order. It is
// only carried here; enforcement happens in the matching engine.
type STPFlag uint32

const (
	// STPNone allows self-trades.
	STPNone STPFlag = iota
	// STPCancelOldest cancels the resting order.
	STPCancelOldest
	// STPCancelNewest cancels the incoming order.
	STPCancelNewest
	// STPCancelBoth cancels both orders.
	STPCancelBoth
	// STPDecrementCancel decrements the larger order by the smaller one and
	// cancels the smaller.
	STPDecrementCancel
)

var stpNames = [...]string{
	STPNone:            "NONE",
	STPCancelOldest:    "CO",
	STPCancelNewest:    "CN",
	STPCancelBoth:      "CB",
	STPDecrementCancel: "DC",
}

func (f STPFlag) String() string {
	if int(f) < len(stpNames) {
		return stpNames[f]
	}
	return "UNKNOWN"
}

// STPFlagFromCode validates a numeric stp flag code.
func STPFlagFromCode(code uint64) (STPFlag, error) {
	if code >= uint64(len(stpNames)) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSTPFlag, code)
	}
	return STPFlag(code), nil
}

// STPFlagFromName looks up a flag by its symbolic name.
func STPFlagFromName(name string) (STPFlag, error) {
	for i, n := range stpNames {
		if n == name {
			return STPFlag(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSTPFlag, name)
}

// OrderKind tags the concrete order variant.
type OrderKind int

const (
	// Limit orders rest on the book at their price until filled or cancelled.
	LimitOrder OrderKind = iota
	// Market orders execute immediately against the best available prices.
	MarketOrder
)

func (k OrderKind) String() string {
	switch k {
	case LimitOrder:
		return "LIMIT"
	case MarketOrder:
		return "MARKET"
	default:
		return "UNKNOWN"
	}
}
