package transport

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindElemAndArrayOf(t *testing.T) {
	for _, k := range []Kind{KindInt, KindDouble, KindBool, KindString} {
		arr := ArrayOf(k)
		require.True(t, arr.IsArray(), "%s", k)
		assert.Equal(t, k, arr.Elem())
		assert.False(t, k.IsArray())
	}
	assert.Equal(t, KindInvalid, ArrayOf(KindIntArray))
}

func TestParseKindRoundTrip(t *testing.T) {
	for k := KindInt; k <= KindStringArray; k++ {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("variant")
	assert.Error(t, err)
}

func TestZeroArraysAreNotNil(t *testing.T) {
	for _, k := range []Kind{KindIntArray, KindDoubleArray, KindBoolArray, KindStringArray} {
		v := Zero(k)
		assert.Equal(t, 0, v.Len(), "%s", k)
		assert.NotNil(t, v.Interface(), "%s", k)
	}
	assert.NotNil(t, Doubles(nil).Doubles)
}

func TestEqualIsBitExact(t *testing.T) {
	nan := math.NaN()
	assert.True(t, Double(nan).Equal(Double(nan)))
	assert.False(t, Double(0).Equal(Double(math.Copysign(0, -1))))
	assert.True(t, Doubles([]float64{1.5, nan}).Equal(Doubles([]float64{1.5, nan})))
	assert.False(t, Int(1).Equal(Double(1)))
	assert.True(t, Int(3).Equal(Int(3).AsRef()))
}

func TestCloneDoesNotAlias(t *testing.T) {
	src := Ints([]int32{1, 2, 3})
	cp := src.Clone()
	cp.Ints[0] = 99
	assert.Equal(t, int32(1), src.Ints[0])
}

func TestValueJSON(t *testing.T) {
	values := []Value{
		Int(-7).AsRef(),
		Double(0.1 + 0.2),
		Double(math.Inf(-1)),
		Bool(true),
		Str("Frame1"),
		Doubles(nil).AsRef(),
		Strs([]string{"a", "b"}),
		Bools([]bool{true, false}),
		{},
		Double(math.Float64frombits(0x7ff800000000abcd)),
		Doubles([]float64{math.NaN(), math.Float64frombits(0xfff0000000000123)}),
	}
	data, err := json.Marshal(values)
	require.NoError(t, err)

	var back []Value
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, len(values))
	for i := range values {
		assert.True(t, values[i].Equal(back[i]), "index %d: %v != %v", i, values[i], back[i])
		assert.Equal(t, values[i].Ref, back[i].Ref, "index %d", i)
	}
	assert.NotNil(t, back[5].Doubles)
	assert.Contains(t, string(data), `"NaN:0x7ff800000000abcd"`)
	assert.Equal(t, uint64(0x7ff800000000abcd), math.Float64bits(back[9].Double))
}

func TestJSONRejectsBadNaNPayload(t *testing.T) {
	for _, raw := range []string{
		`{"kind":"double","value":"NaN:0xzz"}`,
		`{"kind":"double","value":"NaN:0x3ff0000000000000"}`,
	} {
		var v Value
		assert.Error(t, json.Unmarshal([]byte(raw), &v), raw)
	}

	var v Value
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"double","value":"NaN"}`), &v))
	assert.True(t, math.IsNaN(v.Double))
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(KindDouble, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v.Double)

	v, err = FromAny(KindDoubleArray, []any{1, 2.5})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5}, v.Doubles)

	_, err = FromAny(KindInt, 1.5)
	assert.Error(t, err)

	_, err = FromAny(KindInt, int64(math.MaxInt32)+1)
	assert.Error(t, err)

	v, err = FromAny(KindStringArray, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Len())
}

func TestParseText(t *testing.T) {
	v, err := ParseText(KindBoolArray, "true, false,true")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, v.Bools)

	v, err = ParseText(KindIntArray, "")
	require.NoError(t, err)
	assert.Equal(t, 0, v.Len())

	_, err = ParseText(KindInt, "x")
	assert.Error(t, err)
}

func TestSuffix(t *testing.T) {
	assert.Equal(t, "cAreaObj", Suffix("Sap2000v15.cAreaObj"))
	assert.Equal(t, "SapObject", Suffix("SapObject"))
	c := &Call{Handle: "Sap2000.cPointObj"}
	assert.Equal(t, "cPointObj", c.Component())
}
