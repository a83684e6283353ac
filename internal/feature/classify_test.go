package feature

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringsReader(s string) *strings.Reader { return strings.NewReader(s) }

func decodeValue(t *testing.T, s string) Value {
	t.Helper()
	var raw any
	require.NoError(t, unmarshalNumber(s, &raw))
	return Of(raw)
}

func normalizeAll(cands []Candidate) ([]Coord, []Reason) {
	var coords []Coord
	var reasons []Reason
	for _, c := range cands {
		if c.Reason != "" {
			reasons = append(reasons, c.Reason)
			continue
		}
		xy, r := Normalize(c.Pair)
		if r != "" {
			reasons = append(reasons, r)
			continue
		}
		coords = append(coords, xy)
	}
	return coords, reasons
}

func TestClassify_Point(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		coords  []Coord
		reasons []Reason
	}{
		{"bare pair", `[12.5, 45.0]`, []Coord{{12.5, 45}}, nil},
		{"extra dimension ignored", `[1, 2, 3]`, []Coord{{1, 2}}, nil},
		{"nested one level", `[[7, 8], [9, 10]]`, []Coord{{7, 8}}, nil},
		{"single element", `[1]`, nil, []Reason{ReasonEmptyCoords}},
		{"empty", `[]`, nil, []Reason{ReasonEmptyCoords}},
		{"short nested", `[[1]]`, nil, []Reason{ReasonIndexError}},
		{"not an array", `"12,45"`, nil, []Reason{ReasonTypeError}},
		{"object payload", `{"x": 1}`, nil, []Reason{ReasonTypeError}},
		{"nan literal parsed upstream", `[1e999, 5]`, nil, []Reason{ReasonNonFinite}},
		{"string member", `["a", 5]`, nil, []Reason{ReasonNonNumeric}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cands := Classify("Point", decodeValue(t, tc.payload))
			require.Len(t, cands, 1)
			coords, reasons := normalizeAll(cands)
			assert.Equal(t, tc.coords, coords)
			assert.Equal(t, tc.reasons, reasons)
		})
	}
}

func TestClassify_UnknownKindIsPointLike(t *testing.T) {
	cands := Classify("LineString", decodeValue(t, `[[3, 4], [5, 6]]`))
	coords, reasons := normalizeAll(cands)
	assert.Equal(t, []Coord{{3, 4}}, coords)
	assert.Empty(t, reasons)
}

func TestClassify_MultiPoint(t *testing.T) {
	cands := Classify("MultiPoint", decodeValue(t, `[[1,2],[3,4]]`))
	coords, reasons := normalizeAll(cands)
	assert.Equal(t, []Coord{{1, 2}, {3, 4}}, coords)
	assert.Empty(t, reasons)
}

func TestClassify_MultiPointSiblingsIndependent(t *testing.T) {
	cands := Classify("MultiPoint", decodeValue(t, `[[1,2],[3],5,[null,1],["a",2],[1e999,0],[7,8]]`))
	require.Len(t, cands, 7)
	coords, reasons := normalizeAll(cands)
	assert.Equal(t, []Coord{{1, 2}, {7, 8}}, coords)
	assert.Equal(t, []Reason{
		ReasonEmptyCoords,
		ReasonTypeError,
		ReasonNonNumeric,
		ReasonNonNumeric,
		ReasonNonFinite,
	}, reasons)
}

func TestClassify_MultiPointEdgeCases(t *testing.T) {
	assert.Empty(t, Classify("MultiPoint", decodeValue(t, `[]`)))

	cands := Classify("MultiPoint", decodeValue(t, `12`))
	require.Len(t, cands, 1)
	assert.Equal(t, ReasonTypeError, cands[0].Reason)
}

func TestClassify_MultiPointIsCaseSensitive(t *testing.T) {
	for _, kind := range []string{"multipoint", "MULTIPOINT", "Multipoint"} {
		cands := Classify(kind, decodeValue(t, `[[1,2],[3,4]]`))
		require.Len(t, cands, 1, kind)
		assert.Empty(t, cands[0].Reason, kind)
		c, r := Normalize(cands[0].Pair)
		assert.Empty(t, r, kind)
		assert.Equal(t, Coord{X: 1, Y: 2}, c, kind)
	}
}
