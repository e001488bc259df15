package order

import (
	"testing"

	simplejson "github.com/bitly/go-simplejson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketsim/internal/common"
	"marketsim/internal/jsondoc"
)

// reparse pushes doc through its encoded form, as a restore from disk would.
func reparse(t *testing.T, doc *simplejson.Json) *simplejson.Json {
	t.Helper()
	data, err := jsondoc.Encode(doc)
	require.NoError(t, err)
	parsed, err := jsondoc.Parse(data)
	require.NoError(t, err)
	return parsed
}

func assertSameOrder(t *testing.T, expected, actual Order) {
	t.Helper()
	assert.Equal(t, expected.Kind(), actual.Kind())
	assert.Equal(t, expected.ID(), actual.ID())
	assert.Equal(t, expected.Timestamp(), actual.Timestamp())
	assert.Equal(t, expected.Direction(), actual.Direction())
	assert.Equal(t, expected.STPFlag(), actual.STPFlag())
	assert.True(t, expected.Volume().Equal(actual.Volume()), "volume %s != %s", expected.Volume(), actual.Volume())
	assert.True(t, expected.Leverage().Equal(actual.Leverage()), "leverage %s != %s", expected.Leverage(), actual.Leverage())
	if l, ok := expected.(*LimitOrder); ok {
		assert.True(t, l.Price().Equal(actual.(*LimitOrder).Price()))
	}
}

func TestLimitOrder_Scenario(t *testing.T) {
	// 1. Place and partially fill.
	o := createLimitOrder(t, "10", "50", "0")
	require.NoError(t, o.RemoveVolume(dec("4")))
	assertDecimal(t, "6", o.Volume())

	// 2. Checkpoint carries packed exact decimals.
	doc := jsondoc.New()
	o.SerializeForCheckpoint(doc, "")
	data, err := jsondoc.Encode(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"orderId": 1,
		"timestamp": 100,
		"volume": "6e0",
		"leverage": "0e0",
		"stpFlag": 0,
		"direction": 0,
		"price": "50e0"
	}`, string(data))

	// 3. Restore and keep trading on the restored order.
	restored, err := LimitOrderFromCheckpoint(reparse(t, doc), 8, 8)
	require.NoError(t, err)
	assertSameOrder(t, o, restored)

	err = restored.RemoveVolume(dec("7"))
	var volErr *VolumeError
	require.ErrorAs(t, err, &volErr)
	assertDecimal(t, "7", volErr.Decrease)
	assertDecimal(t, "6", volErr.Standing)
}

func TestSerializeForReport_Lossy(t *testing.T) {
	o := createLimitOrder(t, "0.1000000000000000000000001", "50.5", "2")

	doc := jsondoc.New()
	o.SerializeForReport(doc, "")
	data, err := jsondoc.Encode(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"orderId": 1,
		"timestamp": 100,
		"volume": 0.1,
		"leverage": 2,
		"stpFlag": "NONE",
		"direction": 0,
		"price": 50.5
	}`, string(data))

	volume, err := doc.Get("volume").Float64()
	require.NoError(t, err)
	assert.Equal(t, o.Volume().InexactFloat64(), volume)
}

func TestMarketOrder_NullPrice(t *testing.T) {
	o := createMarketOrder(t, "3.5", "0.25")

	for _, serialize := range []func(*simplejson.Json, string){o.SerializeForReport, o.SerializeForCheckpoint} {
		doc := jsondoc.New()
		serialize(doc, "")
		null, err := jsondoc.IsNull(reparse(t, doc), "price")
		require.NoError(t, err)
		assert.True(t, null)
	}

	doc := jsondoc.New()
	o.SerializeForReport(doc, "")
	stp, err := doc.Get("stpFlag").String()
	require.NoError(t, err)
	assert.Equal(t, "CO", stp)
	direction, err := doc.Get("direction").Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(common.Sell), direction)
}

func TestBasicOrder_OmitsDirectionAndPrice(t *testing.T) {
	o, err := NewBasicOrder(9, 10, dec("1"), dec("0"), common.STPCancelBoth)
	require.NoError(t, err)

	doc := jsondoc.New()
	o.SerializeForReport(doc, "")
	_, hasDirection := doc.CheckGet("direction")
	_, hasPrice := doc.CheckGet("price")
	assert.False(t, hasDirection)
	assert.False(t, hasPrice)
	stp, _ := doc.Get("stpFlag").String()
	assert.Equal(t, "CB", stp)
}

func TestSerialize_KeyedNesting(t *testing.T) {
	o := createLimitOrder(t, "1", "2", "0")

	doc := jsondoc.New()
	doc.Set("other", "kept")
	o.SerializeForCheckpoint(doc, "resting")

	_, atRoot := doc.CheckGet("orderId")
	assert.False(t, atRoot)
	other, _ := doc.Get("other").String()
	assert.Equal(t, "kept", other)

	restored, err := FromCheckpoint(reparse(t, doc).Get("resting"), 4, 4)
	require.NoError(t, err)
	assertSameOrder(t, o, restored)
}

func TestFromCheckpoint_RoundTrip(t *testing.T) {
	orders := []Order{
		createLimitOrder(t, "10", "50", "0"),
		createLimitOrder(t, "0.0000000000000001", "123456.789", "4.5"),
		createMarketOrder(t, "7.125", "0"),
		createMarketOrder(t, "123456789012345678901234567890.123", "10"),
	}
	for _, o := range orders {
		doc := jsondoc.New()
		o.SerializeForCheckpoint(doc, "")

		// In memory and after a trip through the encoded form.
		for _, d := range []*simplejson.Json{doc, reparse(t, doc)} {
			restored, err := FromCheckpoint(d, DefaultPriceDecimals, DefaultVolumeDecimals)
			require.NoError(t, err, o.String())
			assertSameOrder(t, o, restored)
		}
	}
}

func TestLimitOrderFromCheckpoint_RoundsVolumeOnly(t *testing.T) {
	o := createLimitOrder(t, "1.23456", "9.87654", "0")
	doc := jsondoc.New()
	o.SerializeForCheckpoint(doc, "")

	restored, err := LimitOrderFromCheckpoint(reparse(t, doc), 2, 2)
	require.NoError(t, err)
	assertDecimal(t, "1.23", restored.Volume())
	assertDecimal(t, "9.87654", restored.Price())
}

func TestFromCheckpoint_Discriminator(t *testing.T) {
	base := `"orderId":5,"timestamp":6,"volume":"1e0","leverage":"0e0","stpFlag":0,"direction":1`

	doc, err := jsondoc.Parse([]byte(`{` + base + `,"price":null}`))
	require.NoError(t, err)
	o, err := FromCheckpoint(doc, 4, 4)
	require.NoError(t, err)
	assert.IsType(t, &MarketOrder{}, o)

	doc, err = jsondoc.Parse([]byte(`{` + base + `,"price":"15e-1"}`))
	require.NoError(t, err)
	o, err = FromCheckpoint(doc, 4, 4)
	require.NoError(t, err)
	require.IsType(t, &LimitOrder{}, o)
	assertDecimal(t, "1.5", o.(*LimitOrder).Price())

	doc, err = jsondoc.Parse([]byte(`{` + base + `}`))
	require.NoError(t, err)
	o, err = FromCheckpoint(doc, 4, 4)
	assert.Nil(t, o)
	assert.ErrorIs(t, err, ErrUnknownDiscriminator)
	assert.ErrorIs(t, err, jsondoc.ErrMissingField)
}

func TestFromCheckpoint_Errors(t *testing.T) {
	cases := map[string]struct {
		doc    string
		target error
	}{
		"missing volume": {
			`{"orderId":1,"timestamp":1,"leverage":"0e0","stpFlag":0,"direction":0,"price":null}`,
			jsondoc.ErrMissingField,
		},
		"bad direction": {
			`{"orderId":1,"timestamp":1,"volume":"1e0","leverage":"0e0","stpFlag":0,"direction":7,"price":null}`,
			common.ErrInvalidDirection,
		},
		"bad stp": {
			`{"orderId":1,"timestamp":1,"volume":"1e0","leverage":"0e0","stpFlag":"XX","direction":0,"price":null}`,
			common.ErrInvalidSTPFlag,
		},
		"negative volume": {
			`{"orderId":1,"timestamp":1,"volume":"-1e0","leverage":"0e0","stpFlag":0,"direction":0,"price":null}`,
			ErrInvalidArgument,
		},
		"zero price": {
			`{"orderId":1,"timestamp":1,"volume":"1e0","leverage":"0e0","stpFlag":0,"direction":0,"price":"0e0"}`,
			ErrInvalidArgument,
		},
		"garbage price": {
			`{"orderId":1,"timestamp":1,"volume":"1e0","leverage":"0e0","stpFlag":0,"direction":0,"price":true}`,
			jsondoc.ErrMalformed,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := jsondoc.Parse([]byte(tc.doc))
			require.NoError(t, err)
			o, err := FromCheckpoint(doc, 4, 4)
			assert.Nil(t, o)
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

func TestFromCheckpoint_AcceptsSymbolicSTPFlag(t *testing.T) {
	o := createMarketOrder(t, "2", "0")
	doc := jsondoc.New()
	o.SerializeForReport(doc, "")

	// Report decimals are plain numbers, which the reader also accepts.
	restored, err := MarketOrderFromCheckpoint(reparse(t, doc))
	require.NoError(t, err)
	assertSameOrder(t, o, restored)
}
