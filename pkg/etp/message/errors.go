package message

import "errors"

// Sentinel errors for the codec/framing error taxonomy.
// Callers use errors.Is against these; component-specific
// context is added with fmt.Errorf("...: %w", err) at the call site.
var (
	// ErrFormat signals a schema mismatch or a truncated frame.
	ErrFormat = errors.New("etp: malformed frame")
	// ErrUnknownMessageType signals an unrecognized (protocol,messageType)
	// discriminant. The session is NOT torn down for this error.
	ErrUnknownMessageType = errors.New("etp: unknown message type")
	// ErrMessageTooLarge signals a reassembled message exceeded
	// MaxWebSocketMessagePayloadSize.
	ErrMessageTooLarge = errors.New("etp: message exceeds negotiated payload size")
)
