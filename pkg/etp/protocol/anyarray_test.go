package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
)

func TestSliceAnyArrayEachKind(t *testing.T) {
	cases := []struct {
		name string
		data types.AnyArray
		want types.AnyArray
	}{
		{"int", types.AnyArray{Kind: types.ElementKindInt, Ints: []int32{1, 2, 3, 4}}, types.AnyArray{Kind: types.ElementKindInt, Ints: []int32{2, 3}}},
		{"long", types.AnyArray{Kind: types.ElementKindLong, Longs: []int64{1, 2, 3, 4}}, types.AnyArray{Kind: types.ElementKindLong, Longs: []int64{2, 3}}},
		{"float", types.AnyArray{Kind: types.ElementKindFloat, Floats: []float32{1, 2, 3, 4}}, types.AnyArray{Kind: types.ElementKindFloat, Floats: []float32{2, 3}}},
		{"double", types.AnyArray{Kind: types.ElementKindDouble, Doubles: []float64{1, 2, 3, 4}}, types.AnyArray{Kind: types.ElementKindDouble, Doubles: []float64{2, 3}}},
		{"boolean", types.AnyArray{Kind: types.ElementKindBoolean, Bools: []bool{true, false, true, false}}, types.AnyArray{Kind: types.ElementKindBoolean, Bools: []bool{false, true}}},
		{"bytes", types.AnyArray{Kind: types.ElementKindBytes, Bytes: []byte{1, 2, 3, 4}}, types.AnyArray{Kind: types.ElementKindBytes, Bytes: []byte{2, 3}}},
		{"string", types.AnyArray{Kind: types.ElementKindString, Strings: []string{"a", "b", "c", "d"}}, types.AnyArray{Kind: types.ElementKindString, Strings: []string{"b", "c"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sliceAnyArray(tc.data, 1, 2)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSliceAnyArrayUnsupportedKind(t *testing.T) {
	_, err := sliceAnyArray(types.AnyArray{Kind: types.ElementKindUnknown}, 0, 1)
	assert.ErrorIs(t, err, types.ErrUnsupportedElementKind)
}

func TestConcatAnyArraysRoundTrip(t *testing.T) {
	full := types.AnyArray{Kind: types.ElementKindInt, Ints: []int32{10, 20, 30, 40, 50}}
	a, err := sliceAnyArray(full, 0, 2)
	require.NoError(t, err)
	b, err := sliceAnyArray(full, 2, 3)
	require.NoError(t, err)

	merged, err := concatAnyArrays(types.ElementKindInt, []types.AnyArray{a, b})
	require.NoError(t, err)
	assert.Equal(t, full.Ints, merged.Ints)
}

func TestConcatAnyArraysUnsupportedKind(t *testing.T) {
	_, err := concatAnyArrays(types.ElementKindUnknown, nil)
	assert.ErrorIs(t, err, types.ErrUnsupportedElementKind)
}

func TestRowMajorTileShapesCoversWholeRange(t *testing.T) {
	tiles, err := rowMajorTileShapes([]int64{10, 3}, 4)
	require.NoError(t, err)
	require.Len(t, tiles, 3)
	assert.Equal(t, []int64{0, 0}, tiles[0].starts)
	assert.Equal(t, []int64{4, 3}, tiles[0].counts)
	assert.Equal(t, []int64{8, 0}, tiles[2].starts)
	assert.Equal(t, []int64{2, 3}, tiles[2].counts)
}

func TestRowMajorTileShapesEmptyDimsErrors(t *testing.T) {
	_, err := rowMajorTileShapes(nil, 4)
	assert.Error(t, err)
}
