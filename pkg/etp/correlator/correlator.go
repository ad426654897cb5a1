// Package correlator matches outbound requests to their (possibly
// multi-message, streamed) responses by correlation id, on top of the
// transport package's per-message frame reassembly.
package correlator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/message"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/transport"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
)

// DefaultTimeout bounds SendAndWait when the caller passes timeout <= 0.
const DefaultTimeout = 5 * time.Second

// DecodedItem is one decoded response body along with the discriminant it
// was decoded under, since a single correlation id can legitimately collect
// bodies of more than one shape (e.g. GetResourcesResponse interleaved with
// GetResourcesEdgesResponse under one GetResources request).
type DecodedItem struct {
	Discriminant message.Discriminant
	Body         any
}

type pendingSlot struct {
	items []DecodedItem
	done  chan struct{}
	err   error
}

// Correlator owns the pending-request table for one Session: it allocates
// request message ids, matches inbound frames back to their request by
// CorrelationID, accumulates streamed multi-message responses until one
// arrives with FlagFinal set, and routes a ProtocolException to the
// matching waiter instead of the normal response shape.
type Correlator struct {
	session *transport.Session
	codec   *message.Codec

	mu      sync.Mutex
	pending map[int64]*pendingSlot
}

// New builds a Correlator and takes over session.OnPart. Call this only
// after Session.Handshake has returned successfully; Handshake uses OnPart
// for its own purposes until then.
func New(session *transport.Session, codec *message.Codec) *Correlator {
	c := &Correlator{
		session: session,
		codec:   codec,
		pending: make(map[int64]*pendingSlot),
	}
	session.OnPart = c.handleParts
	session.Listeners().Add(transport.OnClose, func(transport.Event) { c.closeAll() })
	return c
}

// Send encodes and transmits body as a fire-and-forget request (FlagFinal,
// CorrelationID 0), returning the message id it was sent under without
// waiting for a response.
func (c *Correlator) Send(d message.Discriminant, body any) (int64, error) {
	encoded, err := c.codec.Body.EncodeBody(d, body)
	if err != nil {
		return 0, err
	}
	id := c.session.NextMessageID()
	h := message.Header{
		Protocol:     d.Protocol,
		MessageType:  d.MessageType,
		MessageID:    id,
		MessageFlags: message.FlagFinal,
	}
	if err := c.session.Send(h, encoded); err != nil {
		return 0, err
	}
	return id, nil
}

// SendAndWait sends body and blocks until a response sharing its message id
// as CorrelationID arrives with FlagFinal set, ctx is cancelled, or timeout
// elapses (DefaultTimeout if timeout <= 0). Streamed responses are returned
// as an ordered slice of every item received, up to and including the one
// carried by the final frame.
func (c *Correlator) SendAndWait(ctx context.Context, d message.Discriminant, body any, timeout time.Duration) ([]DecodedItem, error) {
	encoded, err := c.codec.Body.EncodeBody(d, body)
	if err != nil {
		return nil, err
	}

	id := c.session.NextMessageID()
	slot := &pendingSlot{done: make(chan struct{})}
	c.mu.Lock()
	c.pending[id] = slot
	c.mu.Unlock()

	h := message.Header{
		Protocol:     d.Protocol,
		MessageType:  d.MessageType,
		MessageID:    id,
		MessageFlags: message.FlagFinal,
	}
	if err := c.session.Send(h, encoded); err != nil {
		c.cancel(id, err)
		return nil, err
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	select {
	case <-slot.done:
		if slot.err != nil {
			return nil, slot.err
		}
		return slot.items, nil
	case <-ctx.Done():
		c.cancel(id, ctx.Err())
		return nil, ctx.Err()
	case <-time.After(timeout):
		c.cancel(id, ErrTimeout)
		return nil, ErrTimeout
	}
}

// GroupItem is one body to send as part of a SendGroupAndWait sequence.
type GroupItem struct {
	Discriminant message.Discriminant
	Body         any
}

// SendGroupAndWait sends items as an independently-decodable sequence
// sharing one message id (the Store sub-protocol's PutDataObjects+Chunk
// pattern) and waits for a FINAL response correlated to that shared id, the
// same way SendAndWait does for a single-body request.
func (c *Correlator) SendGroupAndWait(ctx context.Context, items []GroupItem, timeout time.Duration) ([]DecodedItem, error) {
	encoded := make([]transport.GroupPart, len(items))
	for i, it := range items {
		b, err := c.codec.Body.EncodeBody(it.Discriminant, it.Body)
		if err != nil {
			return nil, err
		}
		encoded[i] = transport.GroupPart{Discriminant: it.Discriminant, Body: b}
	}

	id := c.session.NextMessageID()
	slot := &pendingSlot{done: make(chan struct{})}
	c.mu.Lock()
	c.pending[id] = slot
	c.mu.Unlock()

	if err := c.session.SendGroup(id, 0, encoded, true); err != nil {
		c.cancel(id, err)
		return nil, err
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	select {
	case <-slot.done:
		if slot.err != nil {
			return nil, slot.err
		}
		return slot.items, nil
	case <-ctx.Done():
		c.cancel(id, ctx.Err())
		return nil, ctx.Err()
	case <-time.After(timeout):
		c.cancel(id, ErrTimeout)
		return nil, ErrTimeout
	}
}

// handleParts is wired as the Session's OnPart callback: every logical,
// frame-level-reassembled message the reader goroutine produces passes
// through here, one Part at a time. A Part is itself already a complete
// decode unit (its own frame-level multipart fragmentation has been
// stitched back together by the transport package).
func (c *Correlator) handleParts(parts []Part) {
	for _, p := range parts {
		c.handleOne(p)
	}
}

// Part is an alias kept local to avoid importing transport's internal
// naming into call sites that only need the Header/Body pair.
type Part = transport.Part

func (c *Correlator) handleOne(p Part) {
	h := p.Header
	corrID := h.CorrelationID
	if corrID == 0 {
		if body, err := c.codec.Body.DecodeBody(h.Discriminant(), p.Body); err == nil {
			if pe, ok := body.(*types.ProtocolException); ok {
				log.Error().Int32("error_code", pe.ErrorCode).Str("message", pe.Message).
					Msg("correlator: uncorrelated ProtocolException, closing session")
				_ = c.session.Close(c.codec, "uncorrelated ProtocolException")
				return
			}
		}
		log.Warn().Int64("message_id", h.MessageID).Int32("protocol", h.Protocol).Int32("message_type", h.MessageType).
			Msg("correlator: dropping frame with no correlation id")
		return
	}

	c.mu.Lock()
	slot, ok := c.pending[corrID]
	c.mu.Unlock()
	if !ok {
		log.Warn().Int64("correlation_id", corrID).Msg("correlator: no pending request for this correlation id, dropping late frame")
		return
	}

	body, err := c.codec.Body.DecodeBody(h.Discriminant(), p.Body)
	if err != nil {
		c.fail(corrID, err)
		return
	}
	if pe, ok := body.(*types.ProtocolException); ok {
		c.fail(corrID, pe)
		return
	}

	c.mu.Lock()
	slot.items = append(slot.items, DecodedItem{Discriminant: h.Discriminant(), Body: body})
	final := h.Final()
	c.mu.Unlock()

	if final {
		c.complete(corrID)
	}
}

func (c *Correlator) fail(id int64, err error) {
	c.mu.Lock()
	slot, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if ok {
		slot.err = err
		close(slot.done)
	}
}

func (c *Correlator) complete(id int64) {
	c.mu.Lock()
	slot, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if ok {
		close(slot.done)
	}
}

func (c *Correlator) cancel(id int64, err error) {
	c.mu.Lock()
	slot, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if ok {
		slot.err = err
		close(slot.done)
	}
}

// closeAll wakes every pending waiter with transport.ErrConnectionClosed,
// invoked when the underlying Session reports ON_CLOSE.
func (c *Correlator) closeAll() {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[int64]*pendingSlot)
	c.mu.Unlock()

	for _, slot := range pending {
		slot.err = transport.ErrConnectionClosed
		close(slot.done)
	}
}
