package correlator

import "errors"

// ErrTimeout is returned by SendAndWait when no FINAL response arrives
// within the caller's timeout.
var ErrTimeout = errors.New("etp: request timed out waiting for a response")
