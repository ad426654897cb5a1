package message

import "fmt"

// Header is the fixed set of fields that precedes every ETP message body.
//
// Protocol selects the
// sub-protocol, MessageType is the discriminant within that protocol,
// MessageID is unique per direction per session and strictly increasing,
// CorrelationID is 0 for requests and equals the originating request's
// MessageID for replies, and MessageFlags carries the FINAL/MULTIPART/
// NO_DATA/COMPRESSED/ACK bits.
type Header struct {
	Protocol      int32
	MessageType   int32
	CorrelationID int64
	MessageID     int64
	MessageFlags  Flags
}

// IsRequest reports whether this header belongs to a request (CorrelationID == 0).
func (h Header) IsRequest() bool {
	return h.CorrelationID == 0
}

// Final reports whether the FINAL bit is set.
func (h Header) Final() bool {
	return h.MessageFlags.Has(FlagFinal)
}

// Multipart reports whether the MULTIPART bit is set.
func (h Header) Multipart() bool {
	return h.MessageFlags.Has(FlagMultipart)
}

func (h Header) String() string {
	return fmt.Sprintf("protocol=%d type=%d id=%d correlation=%d flags=%#x",
		h.Protocol, h.MessageType, h.MessageID, h.CorrelationID, h.MessageFlags)
}

// Discriminant identifies the body schema for a header: the (protocol,
// messageType) pair the codec adapter dispatches on.
type Discriminant struct {
	Protocol    int32
	MessageType int32
}

func (h Header) Discriminant() Discriminant {
	return Discriminant{Protocol: h.Protocol, MessageType: h.MessageType}
}

func (d Discriminant) String() string {
	return fmt.Sprintf("(%d,%d)", d.Protocol, d.MessageType)
}
