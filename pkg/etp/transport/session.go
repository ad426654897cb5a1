package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/auth"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/message"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
)

// State is the Session's connection lifecycle state.
type State int32

const (
	StateConnecting State = iota
	StateHandshaking
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateHandshaking:
		return "HANDSHAKING"
	case StateActive:
		return "ACTIVE"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// SupportedEtpVersion is the ETP version this client negotiates. A peer
// advertising an incompatible major version during the handshake fails
// capability negotiation rather than silently proceeding.
const SupportedEtpVersion = "1.2.0"

// Options configures Dial and the subsequent handshake.
type Options struct {
	ApplicationName     string
	ApplicationVersion  string
	Username            string
	Password            string
	AccessToken         string
	AdditionalHeaders   map[string]string
	RequestedProtocols  []int32
	SupportedDataObjects []string
	InsecureSkipVerify  bool
	HandshakeTimeout    time.Duration // bound for the WebSocket upgrade itself
	SessionTimeout      time.Duration // bound for RequestSession<->OpenSession
}

func (o Options) withDefaults() Options {
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
	if o.SessionTimeout <= 0 {
		o.SessionTimeout = 5 * time.Second
	}
	if o.ApplicationName == "" {
		o.ApplicationName = "etp-go-client"
	}
	return o
}

// Session owns one WebSocket connection and the ETP message-id/framing
// bookkeeping layered on top of it. The reader goroutine is the sole
// reader of the connection; writes are serialized by writeMu since
// multiple callers may send concurrently.
type Session struct {
	conn   *websocket.Conn
	state  atomic.Int32
	url    string
	opts   Options

	framer      *Framer
	reassembler *Reassembler
	listeners   *Listeners

	writeMu sync.Mutex
	closeOnce sync.Once
	closeErr  error

	clientInstanceID string
	sessionID        string
	capabilities     types.Capabilities
	peerEtpVersion   string

	// OnPart is invoked from the reader goroutine once a logical message
	// (one or more Parts sharing a MessageID) is fully reassembled. It must
	// not block for long; the correlator wires itself in here.
	OnPart func([]Part)
}

// NewSession builds a Session around an already-dialed *websocket.Conn.
// Most callers should use Dial instead.
func NewSession(conn *websocket.Conn, url string, opts Options) *Session {
	s := &Session{
		conn:             conn,
		url:              url,
		opts:             opts.withDefaults(),
		framer:           NewFramer(0),
		reassembler:      NewReassembler(0),
		listeners:        NewListeners(),
		clientInstanceID: uuid.NewString(),
	}
	s.state.Store(int32(StateConnecting))
	return s
}

// Dial opens a WebSocket connection to url (http(s):// is rewritten to
// ws(s)://) carrying whatever Authorization header Options implies, then
// returns a Session in StateConnecting. It does not perform the ETP
// handshake; call Handshake next.
func Dial(ctx context.Context, url string, opts Options) (*Session, error) {
	opts = opts.withDefaults()
	wsURL := toWebSocketURL(url)

	header := http.Header{}
	for k, v := range opts.AdditionalHeaders {
		header.Set(k, v)
	}
	if authHeader := auth.HeaderForCredentials(opts.Username, opts.Password, opts.AccessToken); authHeader != "" {
		header.Set("Authorization", authHeader)
	}
	if opts.AccessToken != "" {
		auth.LogTokenExpiry(opts.AccessToken, time.Minute)
	}

	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: opts.HandshakeTimeout,
		Subprotocols:     []string{"etp12.energistics.org"},
	}
	if opts.InsecureSkipVerify {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	conn, resp, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil && resp.StatusCode != 0 {
			return nil, fmt.Errorf("%w: %s (http %d)", ErrConnectionRefused, err, resp.StatusCode)
		}
		if isTLSError(err) {
			return nil, fmt.Errorf("%w: %s", ErrTLSError, err)
		}
		return nil, fmt.Errorf("%w: %s", ErrConnectionRefused, err)
	}

	log.Info().Str("url", wsURL).Msg("transport: websocket connected")
	return NewSession(conn, wsURL, opts), nil
}

func toWebSocketURL(u string) string {
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	default:
		return u
	}
}

func isTLSError(err error) bool {
	_, ok := err.(*tls.CertificateVerificationError)
	if ok {
		return true
	}
	return strings.Contains(err.Error(), "tls:") || strings.Contains(err.Error(), "certificate")
}

// State returns the Session's current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Listeners exposes the Session's lifecycle-event registry so callers can
// Add/Remove subscriptions for ON_OPEN, ON_CLOSE, ON_ERROR, ON_MESSAGE,
// START and STOP.
func (s *Session) Listeners() *Listeners {
	return s.listeners
}

// Capabilities returns the capability set negotiated during the handshake.
func (s *Session) Capabilities() types.Capabilities {
	return s.capabilities
}

// Handshake sends RequestSession and waits up to Options.SessionTimeout for
// OpenSession, negotiating capabilities and checking the peer's advertised
// ETP version against SupportedEtpVersion. The reader goroutine is started
// as soon as RequestSession has been written; on success the Session moves
// to StateActive.
func (s *Session) Handshake(ctx context.Context, codec *message.Codec) (*types.OpenSession, error) {
	s.state.Store(int32(StateHandshaking))
	s.listeners.Notify(Event{Type: Start})

	req := types.RequestSession{
		ApplicationName:      s.opts.ApplicationName,
		ApplicationVersion:   s.opts.ApplicationVersion,
		ClientInstanceId:     s.clientInstanceID,
		RequestedProtocols:   s.opts.RequestedProtocols,
		SupportedDataObjects: s.opts.SupportedDataObjects,
		CurrentDateTime:      time.Now().Unix(),
		EtpVersion:           SupportedEtpVersion,
		EndpointCapabilities: map[string]any{
			"maxWebSocketFramePayloadSize":   DefaultMaxFramePayload,
			"maxWebSocketMessagePayloadSize": DefaultMaxMessagePayload,
		},
	}

	body, err := codec.Body.EncodeBody(message.Discriminant{Protocol: types.ProtocolCore, MessageType: types.MsgRequestSession}, req)
	if err != nil {
		return nil, fmt.Errorf("transport: encoding RequestSession: %w", err)
	}

	h := message.Header{
		Protocol:      types.ProtocolCore,
		MessageType:   types.MsgRequestSession,
		MessageID:     s.framer.NextMessageID(),
		CorrelationID: 0,
		MessageFlags:  message.FlagFinal,
	}

	if err := s.writeFrame(h, body); err != nil {
		return nil, err
	}

	go s.readLoop(codec)

	type result struct {
		resp *types.OpenSession
		err  error
	}
	ch := make(chan result, 1)
	var once sync.Once
	s.OnPart = func(parts []Part) {
		for _, p := range parts {
			if p.Header.Protocol != types.ProtocolCore {
				continue
			}
			switch p.Header.MessageType {
			case types.MsgOpenSession:
				body, err := codec.Body.DecodeBody(message.Discriminant{Protocol: types.ProtocolCore, MessageType: types.MsgOpenSession}, p.Body)
				if err != nil {
					once.Do(func() { ch <- result{err: fmt.Errorf("transport: decoding OpenSession: %w", err)} })
					return
				}
				os, _ := body.(*types.OpenSession)
				once.Do(func() { ch <- result{resp: os} })
			case types.MsgProtocolException:
				body, err := codec.Body.DecodeBody(message.Discriminant{Protocol: types.ProtocolCore, MessageType: types.MsgProtocolException}, p.Body)
				if err == nil {
					if pe, ok := body.(*types.ProtocolException); ok {
						once.Do(func() { ch <- result{err: pe} })
						continue
					}
				}
				once.Do(func() { ch <- result{err: fmt.Errorf("transport: handshake rejected")} })
			}
		}
	}

	select {
	case r := <-ch:
		if r.err != nil {
			s.state.Store(int32(StateClosed))
			return nil, r.err
		}
		if err := s.applyOpenSession(r.resp); err != nil {
			s.state.Store(int32(StateClosed))
			return nil, err
		}
		s.state.Store(int32(StateActive))
		s.listeners.Notify(Event{Type: OnOpen})
		return r.resp, nil
	case <-time.After(s.opts.SessionTimeout):
		s.state.Store(int32(StateClosed))
		return nil, ErrHandshakeTimeout
	case <-ctx.Done():
		s.state.Store(int32(StateClosed))
		return nil, ctx.Err()
	}
}

func (s *Session) applyOpenSession(os *types.OpenSession) error {
	if os.EtpVersion != "" {
		peer, err := semver.NewVersion(os.EtpVersion)
		mine, mineErr := semver.NewVersion(SupportedEtpVersion)
		if err == nil && mineErr == nil && peer.Major() != mine.Major() {
			return fmt.Errorf("transport: incompatible ETP version: peer=%s client=%s", os.EtpVersion, SupportedEtpVersion)
		}
		s.peerEtpVersion = os.EtpVersion
	}
	s.sessionID = os.SessionId
	if v, ok := os.EndpointCapabilities["maxWebSocketFramePayloadSize"].(float64); ok {
		s.capabilities.MaxWebSocketFramePayloadSize = int64(v)
		s.framer.SetMaxFramePayload(int(v))
	}
	if v, ok := os.EndpointCapabilities["maxWebSocketMessagePayloadSize"].(float64); ok {
		s.capabilities.MaxWebSocketMessagePayloadSize = int64(v)
		if v > 0 {
			s.reassembler.mu.Lock()
			s.reassembler.maxMessageBytes = int(v)
			s.reassembler.mu.Unlock()
		}
	}
	if v, ok := os.EndpointCapabilities["maxDataArraySize"].(float64); ok {
		s.capabilities.MaxDataArraySize = int64(v)
	}
	if v, ok := os.EndpointCapabilities["maxDataObjectSize"].(float64); ok {
		s.capabilities.MaxDataObjectSize = int64(v)
	}
	if v, ok := os.EndpointCapabilities["supportsAlterableMetadata"].(bool); ok {
		s.capabilities.SupportsAlterableMetadata = v
	}
	return nil
}

// writeFrame splits body across one or more physical frames per the
// Framer's negotiated size limit and writes them in order, under the
// write lock.
func (s *Session) writeFrame(h message.Header, body []byte) error {
	parts := s.framer.SplitSingle(h, body, true)
	return s.writeParts(parts)
}

func (s *Session) writeParts(parts []Part) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	for _, p := range parts {
		frame := message.EncodeFrame(p.Header, p.Body)
		if err := s.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return fmt.Errorf("transport: writing frame: %w", err)
		}
	}
	return nil
}

// Send writes one logical message, splitting it into as many physical
// frames as the negotiated frame size requires.
func (s *Session) Send(h message.Header, body []byte) error {
	if s.State() != StateActive && s.State() != StateHandshaking {
		return ErrNotConnected
	}
	return s.writeFrame(h, body)
}

// SendParts writes an already-framed sequence of Parts verbatim. Nothing in
// this module calls it; the Store protocol handler sends its PutDataObjects
// metadata and Chunk frames through SendGroup.
func (s *Session) SendParts(parts []Part) error {
	if s.State() != StateActive {
		return ErrNotConnected
	}
	return s.writeParts(parts)
}

// SendGroup writes an independently-decodable sequence of bodies sharing
// one message id (the Store sub-protocol's PutDataObjects+Chunk sequence).
// id is allocated by the caller via NextMessageID so it can be registered
// with a correlator before the bytes go on the wire.
func (s *Session) SendGroup(id, correlationID int64, group []GroupPart, final bool) error {
	if s.State() != StateActive {
		return ErrNotConnected
	}
	h := message.Header{MessageID: id, CorrelationID: correlationID}
	parts := s.framer.SendGroup(h, group, final)
	return s.writeParts(parts)
}

// NextMessageID allocates the next outbound message id.
func (s *Session) NextMessageID() int64 {
	return s.framer.NextMessageID()
}

func (s *Session) readLoop(codec *message.Codec) {
	defer s.teardown()
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			s.closeErr = err
			s.listeners.Notify(Event{Type: OnError, Err: err})
			return
		}
		frame, err := message.DecodeFrame(raw)
		if err != nil {
			log.Warn().Err(err).Msg("transport: dropping malformed frame")
			continue
		}

		parts, err := s.reassembler.Feed(frame.Header, frame.Body)
		if err != nil {
			log.Warn().Err(err).Int64("message_id", frame.Header.MessageID).Msg("transport: reassembly failed")
			continue
		}
		if parts == nil {
			continue
		}

		s.listeners.Notify(Event{Type: OnMessage, Message: frame.Body})
		if s.OnPart != nil {
			s.OnPart(parts)
		}
	}
}

func (s *Session) teardown() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		code, reason := websocket.CloseNormalClosure, ""
		if ce, ok := s.closeErr.(*websocket.CloseError); ok {
			code, reason = ce.Code, ce.Text
		}
		s.listeners.Notify(Event{Type: OnClose, CloseStatusCode: code, CloseReason: reason})
		s.listeners.Notify(Event{Type: Stop})
	})
}

// Close sends a CloseSession frame (best-effort) and closes the underlying
// WebSocket connection.
func (s *Session) Close(codec *message.Codec, reason string) error {
	if s.State() == StateClosed {
		return nil
	}
	body, err := codec.Body.EncodeBody(message.Discriminant{Protocol: types.ProtocolCore, MessageType: types.MsgCloseSession}, types.CloseSession{Reason: reason})
	if err == nil {
		h := message.Header{
			Protocol:     types.ProtocolCore,
			MessageType:  types.MsgCloseSession,
			MessageID:    s.framer.NextMessageID(),
			MessageFlags: message.FlagFinal,
		}
		_ = s.writeFrame(h, body)
	}
	s.closeErr = fmt.Errorf("local close: %s", reason)
	err = s.conn.Close()
	s.teardown()
	return err
}
