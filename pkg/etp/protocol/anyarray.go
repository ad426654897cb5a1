package protocol

import (
	"fmt"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
)

// sliceAnyArray returns the [start, start+count) element range of data,
// dispatching on Kind the same way types.ElementKind.String does.
func sliceAnyArray(data types.AnyArray, start, count int) (types.AnyArray, error) {
	out := types.AnyArray{Kind: data.Kind}
	switch data.Kind {
	case types.ElementKindInt:
		out.Ints = append([]int32(nil), data.Ints[start:start+count]...)
	case types.ElementKindLong:
		out.Longs = append([]int64(nil), data.Longs[start:start+count]...)
	case types.ElementKindFloat:
		out.Floats = append([]float32(nil), data.Floats[start:start+count]...)
	case types.ElementKindDouble:
		out.Doubles = append([]float64(nil), data.Doubles[start:start+count]...)
	case types.ElementKindBoolean:
		out.Bools = append([]bool(nil), data.Bools[start:start+count]...)
	case types.ElementKindBytes:
		out.Bytes = append([]byte(nil), data.Bytes[start:start+count]...)
	case types.ElementKindString:
		out.Strings = append([]string(nil), data.Strings[start:start+count]...)
	default:
		return types.AnyArray{}, fmt.Errorf("dataarray: slice: %w: %s", types.ErrUnsupportedElementKind, data.Kind)
	}
	return out, nil
}

// concatAnyArrays joins parts (in order) into one AnyArray of the given kind.
func concatAnyArrays(kind types.ElementKind, parts []types.AnyArray) (types.AnyArray, error) {
	out := types.AnyArray{Kind: kind}
	switch kind {
	case types.ElementKindInt:
		for _, p := range parts {
			out.Ints = append(out.Ints, p.Ints...)
		}
	case types.ElementKindLong:
		for _, p := range parts {
			out.Longs = append(out.Longs, p.Longs...)
		}
	case types.ElementKindFloat:
		for _, p := range parts {
			out.Floats = append(out.Floats, p.Floats...)
		}
	case types.ElementKindDouble:
		for _, p := range parts {
			out.Doubles = append(out.Doubles, p.Doubles...)
		}
	case types.ElementKindBoolean:
		for _, p := range parts {
			out.Bools = append(out.Bools, p.Bools...)
		}
	case types.ElementKindBytes:
		for _, p := range parts {
			out.Bytes = append(out.Bytes, p.Bytes...)
		}
	case types.ElementKindString:
		for _, p := range parts {
			out.Strings = append(out.Strings, p.Strings...)
		}
	default:
		return types.AnyArray{}, fmt.Errorf("dataarray: concat: %w: %s", types.ErrUnsupportedElementKind, kind)
	}
	return out, nil
}
