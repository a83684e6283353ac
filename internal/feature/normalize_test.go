package feature

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		pair   Pair
		want   Coord
		reason Reason
	}{
		{"ints", Pair{Int(3), Int(4)}, Coord{3, 4}, ""},
		{"floats", Pair{Float(12.5), Float(45.0)}, Coord{12.5, 45}, ""},
		{"decimal", Pair{Decimal("0.1"), Decimal("-7e2")}, Coord{0.1, -700}, ""},
		{"mixed", Pair{Int(1), Decimal("2.25")}, Coord{1, 2.25}, ""},
		{"nan", Pair{Float(math.NaN()), Int(5)}, Coord{}, ReasonNonFinite},
		{"inf y", Pair{Int(5), Float(math.Inf(-1))}, Coord{}, ReasonNonFinite},
		{"decimal overflow", Pair{Decimal("1e999"), Int(5)}, Coord{}, ReasonNonFinite},
		{"string", Pair{String("a"), Int(5)}, Coord{}, ReasonNonNumeric},
		{"numeric string", Pair{String("12.5"), Int(5)}, Coord{}, ReasonNonNumeric},
		{"null", Pair{Null(), Int(5)}, Coord{}, ReasonNonNumeric},
		{"bool", Pair{Int(1), Of(true)}, Coord{}, ReasonNonNumeric},
		{"nested array", Pair{Array([]any{1.0, 2.0}), Int(5)}, Coord{}, ReasonNonNumeric},
		{"missing y", Pair{Int(1), Missing()}, Coord{}, ReasonEmptyCoords},
		{"bad decimal", Pair{Decimal("1.2.3"), Int(5)}, Coord{}, ReasonValueError},
		{"unsupported", Pair{Of(struct{}{}), Int(5)}, Coord{}, ReasonOther},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := Normalize(tc.pair)
			assert.Equal(t, tc.reason, reason)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalize_TypeCheckPrecedesFiniteness(t *testing.T) {
	_, reason := Normalize(Pair{Float(math.NaN()), String("a")})
	assert.Equal(t, ReasonNonNumeric, reason)

	_, reason = Normalize(Pair{Decimal("1e999"), Null()})
	assert.Equal(t, ReasonNonNumeric, reason)
}

func TestOf_DecodedTree(t *testing.T) {
	var raw any
	require.NoError(t, unmarshalNumber(`[1, 2.5, "x", null, true, [1], {"a":1}]`, &raw))
	v := Of(raw)
	require.Equal(t, KindArray, v.Kind())
	kinds := make([]Kind, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		kinds = append(kinds, v.Index(i).Kind())
	}
	assert.Equal(t, []Kind{KindDecimal, KindDecimal, KindString, KindNull, KindBool, KindArray, KindObject}, kinds)
	assert.Equal(t, KindMissing, v.Index(99).Kind())
	assert.Equal(t, KindMissing, Int(1).Index(0).Kind())
}

func TestReasonsFixedSet(t *testing.T) {
	assert.Len(t, Reasons, 8)
	for _, r := range Reasons {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, Reason("bogus").Valid())
}

func unmarshalNumber(s string, v any) error {
	dec := json.NewDecoder(stringsReader(s))
	dec.UseNumber()
	return dec.Decode(v)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "null", Null().String())
	assert.Equal(t, `"a"`, String("a").String())
	assert.Equal(t, "1e999", Decimal("1e999").String())
	assert.Equal(t, "NaN", Float(math.NaN()).String())
	assert.Equal(t, "true", Of(true).String())
	assert.Equal(t, "<missing>", Missing().String())
}
