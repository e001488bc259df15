package order

import (
	simplejson "github.com/bitly/go-simplejson"
	"github.com/shopspring/decimal"

	"marketsim/internal/common"
	"marketsim/internal/jsondoc"
	"marketsim/internal/numeric"
)

// encoding decides how the fields that differ between the two record
// formats are written. Everything else is written identically.
type encoding interface {
	decimal(d decimal.Decimal) any
	stpFlag(f common.STPFlag) any
}

// reportEncoding is lossy: decimals become doubles.
type reportEncoding struct{}

func (reportEncoding) decimal(d decimal.Decimal) any { return numeric.ToDouble(d) }
func (reportEncoding) stpFlag(f common.STPFlag) any  { return f.String() }

// checkpointEncoding must round-trip exactly.
type checkpointEncoding struct{}

func (checkpointEncoding) decimal(d decimal.Decimal) any { return numeric.Pack(d) }
func (checkpointEncoding) stpFlag(f common.STPFlag) any  { return uint64(f) }

var (
	report     encoding = reportEncoding{}
	checkpoint encoding = checkpointEncoding{}
)

type encoder interface {
	encode(doc *simplejson.Json, enc encoding)
}

func serialize(doc *simplejson.Json, key string, v encoder, enc encoding) {
	jsondoc.Serialize(doc, key, func(d *simplejson.Json) {
		v.encode(d, enc)
	})
}
