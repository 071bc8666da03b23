package cullthrottle

import "errors"

// ErrNotAddable indicates the DimensionAdapter could not resolve a kind,
// pose, or bounding box for an object; the object was not registered.
var ErrNotAddable = errors.New("cullthrottle: object not addable")
