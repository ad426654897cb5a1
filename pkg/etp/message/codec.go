package message

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// headerWireSize is the fixed byte size of an encoded Header: five int32/int64
// fields, all fixed-width, no variable-length Avro union overhead to model
// since every Header field is mandatory and scalar.
const headerWireSize = 4 + 4 + 8 + 8 + 4

// BodyCodec turns a typed message body into bytes and back, keyed by the
// (protocol,messageType) discriminant. This is the pluggable seam that
// describes as "assumed provided as a schema-generated data-class set": in
// a production ETP deployment this would wrap an Avro-IDL-generated
// encoder/decoder. No Avro library exists anywhere in the reference corpus
// this repo was grown from, so the default implementation (JSONBodyCodec)
// encodes bodies as JSON - see DESIGN.md for why that's the stdlib exception.
type BodyCodec interface {
	EncodeBody(d Discriminant, body any) ([]byte, error)
	// DecodeBody decodes into a new value for the given discriminant, or
	// returns ErrUnknownMessageType if d is not registered.
	DecodeBody(d Discriminant, raw []byte) (any, error)
}

// JSONBodyCodec is a BodyCodec backed by a static registry of Go types,
// one per (protocol,messageType) discriminant, marshaled with encoding/json.
type JSONBodyCodec struct {
	registry map[Discriminant]func() any
}

// NewJSONBodyCodec builds a codec with no registered types; call Register
// for each (protocol,messageType) body shape the caller wants to decode.
func NewJSONBodyCodec() *JSONBodyCodec {
	return &JSONBodyCodec{registry: make(map[Discriminant]func() any)}
}

// Register associates a discriminant with a zero-value factory for its body
// type. newBody must return a pointer, e.g. func() any { return &GetDataspaces{} }.
func (c *JSONBodyCodec) Register(d Discriminant, newBody func() any) {
	c.registry[d] = newBody
}

func (c *JSONBodyCodec) EncodeBody(d Discriminant, body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding body for %s: %v", ErrFormat, d, err)
	}
	return b, nil
}

func (c *JSONBodyCodec) DecodeBody(d Discriminant, raw []byte) (any, error) {
	newBody, ok := c.registry[d]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessageType, d)
	}
	body := newBody()
	if len(raw) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(raw, body); err != nil {
		return nil, fmt.Errorf("%w: decoding body for %s: %v", ErrFormat, d, err)
	}
	return body, nil
}

// Codec encodes and decodes a full ETP frame: the fixed-width header
// followed by the discriminant-selected body.
type Codec struct {
	Body BodyCodec
}

// NewCodec builds a Codec around the given body codec.
func NewCodec(body BodyCodec) *Codec {
	return &Codec{Body: body}
}

// EncodeHeader writes the header's fixed fields in a stable binary layout.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, headerWireSize)
	binary.BigEndian.PutUint32(buf[0:4], uint32(h.Protocol))
	binary.BigEndian.PutUint32(buf[4:8], uint32(h.MessageType))
	binary.BigEndian.PutUint64(buf[8:16], uint64(h.CorrelationID))
	binary.BigEndian.PutUint64(buf[16:24], uint64(h.MessageID))
	binary.BigEndian.PutUint32(buf[24:28], uint32(h.MessageFlags))
	return buf
}

// DecodeHeader reads a header from the front of buf and returns the
// remaining bytes (the body).
func DecodeHeader(buf []byte) (Header, []byte, error) {
	if len(buf) < headerWireSize {
		return Header{}, nil, fmt.Errorf("%w: frame shorter than header (%d bytes)", ErrFormat, len(buf))
	}
	h := Header{
		Protocol:      int32(binary.BigEndian.Uint32(buf[0:4])),
		MessageType:   int32(binary.BigEndian.Uint32(buf[4:8])),
		CorrelationID: int64(binary.BigEndian.Uint64(buf[8:16])),
		MessageID:     int64(binary.BigEndian.Uint64(buf[16:24])),
		MessageFlags:  Flags(binary.BigEndian.Uint32(buf[24:28])),
	}
	return h, buf[headerWireSize:], nil
}

// Frame is a decoded (header, raw body bytes) pair before body
// deserialization - the framing layer operates at this level.
type Frame struct {
	Header Header
	Body   []byte
}

// EncodeFrame encodes a header plus already-serialized body bytes into one
// wire frame.
func EncodeFrame(h Header, body []byte) []byte {
	out := make([]byte, 0, headerWireSize+len(body))
	out = append(out, EncodeHeader(h)...)
	out = append(out, body...)
	return out
}

// DecodeFrame splits one wire frame into its header and raw body bytes.
func DecodeFrame(raw []byte) (Frame, error) {
	h, body, err := DecodeHeader(raw)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Header: h, Body: body}, nil
}

// Encode builds a complete wire frame for one (header, typed body) pair.
func (c *Codec) Encode(h Header, body any) ([]byte, error) {
	raw, err := c.Body.EncodeBody(h.Discriminant(), body)
	if err != nil {
		return nil, err
	}
	return EncodeFrame(h, raw), nil
}

// Decode splits a wire frame and decodes its body into a typed value.
func (c *Codec) Decode(raw []byte) (Header, any, error) {
	frame, err := DecodeFrame(raw)
	if err != nil {
		return Header{}, nil, err
	}
	body, err := c.Body.DecodeBody(frame.Header.Discriminant(), frame.Body)
	if err != nil {
		return frame.Header, nil, err
	}
	return frame.Header, body, nil
}
