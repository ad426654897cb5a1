// Package transport implements the WebSocket-backed session and framing
// layer of the ETP core: dialing, handshake, message-id allocation,
// fragmentation of oversized bodies, and reassembly of inbound frames into
// complete logical messages.
package transport

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/message"
)

// DefaultMaxFramePayload is used when a peer advertises no
// MaxWebSocketFramePayloadSize (or zero) during the handshake.
const DefaultMaxFramePayload = 900_000

// DefaultMaxMessagePayload bounds a reassembled message's total size when
// the peer advertises no MaxWebSocketMessagePayloadSize (or zero).
const DefaultMaxMessagePayload = 900_000

// Part is one physical frame's header and encoded body, as handed to the
// protocol layer after framing-level reassembly. A logical message may
// decode to one Part (the common case) or to several Parts sharing a
// MessageID, as used by the Store sub-protocol to pair a PutDataObjects
// metadata frame with its trailing Chunk frames.
type Part struct {
	Header message.Header
	Body   []byte
}

// Framer allocates outbound message ids and splits outbound payloads into
// wire frames honoring the peer's advertised frame-size limit.
type Framer struct {
	nextID          int64
	maxFramePayload int
}

// NewFramer builds a Framer. maxFramePayload <= 0 selects DefaultMaxFramePayload.
func NewFramer(maxFramePayload int) *Framer {
	if maxFramePayload <= 0 {
		maxFramePayload = DefaultMaxFramePayload
	}
	return &Framer{maxFramePayload: maxFramePayload}
}

// SetMaxFramePayload updates the frame-size ceiling, e.g. after a handshake
// renegotiates peer capabilities.
func (f *Framer) SetMaxFramePayload(n int) {
	if n <= 0 {
		n = DefaultMaxFramePayload
	}
	f.maxFramePayload = n
}

// NextMessageID returns the next strictly increasing outbound message id.
// Ids start at 1 and are unique for the lifetime of the Framer.
func (f *Framer) NextMessageID() int64 {
	return atomic.AddInt64(&f.nextID, 1)
}

// SplitSingle fragments one encoded body into one or more wire frames
// sharing h's Protocol/MessageType/MessageID/CorrelationID. Every frame but
// the last carries FlagMultipart; the last carries FlagFinal iff final is
// true (it is not final when more logical messages will follow under the
// same correlation id, e.g. mid-stream responses).
func (f *Framer) SplitSingle(h message.Header, body []byte, final bool) []Part {
	if len(body) == 0 {
		h.MessageFlags = h.MessageFlags.Clear(message.FlagMultipart)
		if final {
			h.MessageFlags = h.MessageFlags.Set(message.FlagFinal)
		}
		return []Part{{Header: h, Body: nil}}
	}

	max := f.maxFramePayload
	n := (len(body) + max - 1) / max
	parts := make([]Part, 0, n)
	for i := 0; i < len(body); i += max {
		end := i + max
		if end > len(body) {
			end = len(body)
		}
		ph := h
		ph.MessageFlags = 0
		last := end == len(body)
		if !last {
			ph.MessageFlags = ph.MessageFlags.Set(message.FlagMultipart)
		} else if final {
			ph.MessageFlags = ph.MessageFlags.Set(message.FlagFinal)
		}
		parts = append(parts, Part{Header: ph, Body: body[i:end]})
	}
	return parts
}

// GroupPart is one distinct, independently-decodable body to send as part
// of a shared-MessageID sequence (e.g. a PutDataObjects metadata frame
// followed by its Chunk frames).
type GroupPart struct {
	Discriminant message.Discriminant
	Body         []byte
}

// SendGroup wraps each GroupPart as its own physical frame under a shared
// message id, MULTIPART on every frame but the last, FINAL on the last iff
// final is true. Unlike SplitSingle, frames here are never concatenated on
// receipt - the protocol handler decodes each one individually.
func (f *Framer) SendGroup(h message.Header, parts []GroupPart, final bool) []Part {
	out := make([]Part, 0, len(parts))
	for i, gp := range parts {
		ph := h
		ph.Protocol = gp.Discriminant.Protocol
		ph.MessageType = gp.Discriminant.MessageType
		ph.MessageFlags = 0
		last := i == len(parts)-1
		if !last {
			ph.MessageFlags = ph.MessageFlags.Set(message.FlagMultipart)
		} else if final {
			ph.MessageFlags = ph.MessageFlags.Set(message.FlagFinal)
		}
		out = append(out, Part{Header: ph, Body: gp.Body})
	}
	return out
}

// Reassembler buffers inbound frames by sender MessageID until a frame
// without FlagMultipart arrives, then delivers the complete ordered group
// of Parts for that MessageID. Only the reader goroutine feeds it; the mutex
// also covers the size ceiling, which the handshake updates from the peer's
// advertised MaxWebSocketMessagePayloadSize.
type Reassembler struct {
	mu              sync.Mutex
	pending         map[int64][]Part
	pendingBytes    map[int64]int
	maxMessageBytes int
}

// NewReassembler builds a Reassembler. maxMessageBytes <= 0 selects
// DefaultMaxMessagePayload.
func NewReassembler(maxMessageBytes int) *Reassembler {
	if maxMessageBytes <= 0 {
		maxMessageBytes = DefaultMaxMessagePayload
	}
	return &Reassembler{
		pending:         make(map[int64][]Part),
		pendingBytes:    make(map[int64]int),
		maxMessageBytes: maxMessageBytes,
	}
}

// Feed appends one inbound frame to its message-id's buffer. It returns a
// non-nil, non-empty slice of Parts when the logical message is complete
// (the fed frame lacked FlagMultipart). It returns message.ErrMessageTooLarge
// if the cumulative buffered size for that message id exceeds the
// configured ceiling; the in-progress reassembly for that id is dropped.
func (r *Reassembler) Feed(h message.Header, body []byte) ([]Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := h.MessageID
	r.pendingBytes[id] += len(body)
	if r.pendingBytes[id] > r.maxMessageBytes {
		delete(r.pending, id)
		delete(r.pendingBytes, id)
		log.Warn().Int64("message_id", id).Msg("transport: dropping oversized in-progress reassembly")
		return nil, message.ErrMessageTooLarge
	}

	r.pending[id] = append(r.pending[id], Part{Header: h, Body: body})

	if h.MessageFlags.Has(message.FlagMultipart) {
		return nil, nil
	}

	complete := r.pending[id]
	delete(r.pending, id)
	delete(r.pendingBytes, id)
	return complete, nil
}

// Drop discards any in-progress reassembly for id.
func (r *Reassembler) Drop(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, id)
	delete(r.pendingBytes, id)
}
