package transport

import "errors"

var (
	// ErrNotConnected is returned by Send/SendAndWait when no session is active.
	ErrNotConnected = errors.New("etp: session is not connected")
	// ErrHandshakeTimeout signals the peer did not answer RequestSession with
	// OpenSession within the caller-specified bound.
	ErrHandshakeTimeout = errors.New("etp: handshake timed out")
	// ErrConnectionClosed is delivered to any pending waiter when the
	// underlying WebSocket connection closes, locally or remotely.
	ErrConnectionClosed = errors.New("etp: connection closed")
	// ErrConnectionRefused wraps a dial failure.
	ErrConnectionRefused = errors.New("etp: connection refused")
	// ErrTLSError wraps a TLS handshake failure during dial.
	ErrTLSError = errors.New("etp: tls handshake failed")
)
