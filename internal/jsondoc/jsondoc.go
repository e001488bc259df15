// Package jsondoc wraps simplejson documents with the conventions shared by
// the report and checkpoint records: keyed nesting, optional members written
// as explicit null, and required-member lookups that fail loudly.
package jsondoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	simplejson "github.com/bitly/go-simplejson"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"marketsim/internal/numeric"
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrMalformed    = errors.New("malformed field")
)

// Sorted keys keep encoded records byte-stable.
var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// New returns an empty object document.
func New() *simplejson.Json {
	return simplejson.New()
}

// Parse decodes a JSON object. Numbers are kept as json.Number so unsigned
// identifiers survive without going through float64.
func Parse(data []byte) (*simplejson.Json, error) {
	doc, err := simplejson.NewJson(data)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// Encode marshals doc to compact JSON.
func Encode(doc *simplejson.Json) ([]byte, error) {
	return codec.Marshal(doc.Interface())
}

// Serialize runs fill against the object the value should be written into.
// Without a key that object is doc itself; with a key, fill writes into a
// fresh object stored under key.
func Serialize(doc *simplejson.Json, key string, fill func(*simplejson.Json)) {
	if key == "" {
		fill(doc)
		return
	}
	sub := simplejson.New()
	fill(sub)
	doc.Set(key, sub.Interface())
}

// SetOptional writes *v under key, or an explicit null when v is nil. The key
// is always present so readers can probe for it.
func SetOptional[T ~uint32 | ~uint64](doc *simplejson.Json, key string, v *T) {
	if v == nil {
		doc.Set(key, nil)
		return
	}
	doc.Set(key, uint64(*v))
}

// Member returns the value stored under key. A key holding null is present.
func Member(doc *simplejson.Json, key string) (*simplejson.Json, error) {
	v, ok := doc.CheckGet(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, key)
	}
	return v, nil
}

// IsNull reports whether the present member key holds null.
func IsNull(doc *simplejson.Json, key string) (bool, error) {
	v, err := Member(doc, key)
	if err != nil {
		return false, err
	}
	return v.Interface() == nil, nil
}

func Uint64(doc *simplejson.Json, key string) (uint64, error) {
	v, err := Member(doc, key)
	if err != nil {
		return 0, err
	}
	n, err := v.Uint64()
	if err != nil || isNegative(v) {
		return 0, fmt.Errorf("%w: %q is not an unsigned integer", ErrMalformed, key)
	}
	return n, nil
}

func Uint32(doc *simplejson.Json, key string) (uint32, error) {
	n, err := Uint64(doc, key)
	if err != nil {
		return 0, err
	}
	if n > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %q overflows uint32", ErrMalformed, key)
	}
	return uint32(n), nil
}

func Int32(doc *simplejson.Json, key string) (int32, error) {
	v, err := Member(doc, key)
	if err != nil {
		return 0, err
	}
	n, err := v.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrMalformed, key)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %q overflows int32", ErrMalformed, key)
	}
	return int32(n), nil
}

// OptionalUint64 reads a member that must be present but may be null.
func OptionalUint64(doc *simplejson.Json, key string) (*uint64, error) {
	null, err := IsNull(doc, key)
	if err != nil || null {
		return nil, err
	}
	n, err := Uint64(doc, key)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Decimal reads an exact decimal. The packed checkpoint form is expected, but
// a plain JSON number is accepted too.
func Decimal(doc *simplejson.Json, key string) (decimal.Decimal, error) {
	v, err := Member(doc, key)
	if err != nil {
		return decimal.Decimal{}, err
	}
	switch raw := v.Interface().(type) {
	case string:
		d, err := numeric.Unpack(raw)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: %q: %w", ErrMalformed, key, err)
		}
		return d, nil
	case json.Number:
		d, err := decimal.NewFromString(raw.String())
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: %q: %w", ErrMalformed, key, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(raw), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not a decimal", ErrMalformed, key)
	}
}

func isNegative(v *simplejson.Json) bool {
	switch raw := v.Interface().(type) {
	case json.Number:
		return len(raw) > 0 && raw[0] == '-'
	case float64:
		return raw < 0
	case int:
		return raw < 0
	case int32:
		return raw < 0
	case int64:
		return raw < 0
	}
	return false
}
