package message

// Flags is the bitset carried in every message header's MessageFlags field.
type Flags int32

const (
	// FlagMultipart marks a frame that is not the last part of a logical message.
	FlagMultipart Flags = 0x01
	// FlagFinal marks the last frame of a logical message for a given correlation id.
	FlagFinal Flags = 0x02
	// FlagNoData marks a frame whose body carries no payload.
	FlagNoData Flags = 0x04
	// FlagCompressed marks a frame whose body bytes are compressed.
	FlagCompressed Flags = 0x08
	// FlagAck marks a frame that is a bare acknowledgement.
	FlagAck Flags = 0x10
)

// Has reports whether the given bit is set.
func (f Flags) Has(bit Flags) bool {
	return f&bit != 0
}

// Set returns f with bit set.
func (f Flags) Set(bit Flags) Flags {
	return f | bit
}

// Clear returns f with bit cleared.
func (f Flags) Clear(bit Flags) Flags {
	return f &^ bit
}
