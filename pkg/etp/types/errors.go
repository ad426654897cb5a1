package types

import "errors"

// ErrUnsupportedElementKind signals an AnyArray whose Kind has no populated
// field, or a Kind outside the exhaustive ElementKind set.
var ErrUnsupportedElementKind = errors.New("etp: unsupported element kind")
