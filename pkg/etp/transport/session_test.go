package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/message"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
)

// createTestServer upgrades every incoming request to a WebSocket and hands
// the raw connection to serve, mirroring how cswsh_test.go wires an upgrader
// into an httptest server.
func createTestServer(t *testing.T, serve func(conn *websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		serve(conn)
	})
	return httptest.NewServer(handler)
}

func httpToWS(httpURL string) string {
	return strings.Replace(httpURL, "http://", "ws://", 1)
}

// newTestCodec registers the Core bodies these tests exchange directly:
// importing the protocol package here would form an import cycle, since
// protocol depends on transport through correlator.
func newTestCodec() *message.Codec {
	body := message.NewJSONBodyCodec()
	body.Register(message.Discriminant{Protocol: types.ProtocolCore, MessageType: types.MsgRequestSession}, func() any { return &types.RequestSession{} })
	body.Register(message.Discriminant{Protocol: types.ProtocolCore, MessageType: types.MsgOpenSession}, func() any { return &types.OpenSession{} })
	body.Register(message.Discriminant{Protocol: types.ProtocolCore, MessageType: types.MsgProtocolException}, func() any { return &types.ProtocolException{} })
	return message.NewCodec(body)
}

// serveOpenSession reads one RequestSession frame and answers with
// OpenSession, then blocks until the client disconnects.
func serveOpenSession(t *testing.T, codec *message.Codec, etpVersion string) func(conn *websocket.Conn) {
	return func(conn *websocket.Conn) {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h, _, err := codec.Decode(raw)
		require.NoError(t, err)
		require.Equal(t, types.MsgRequestSession, h.MessageType)

		resp := types.OpenSession{
			ApplicationName:    "test-server",
			ServerInstanceId:   "server-1",
			SupportedProtocols: []int32{types.ProtocolCore, types.ProtocolDataspace},
			CurrentDateTime:    time.Now().Unix(),
			EtpVersion:         etpVersion,
			SessionId:          "session-1",
		}
		frame, err := codec.Encode(message.Header{
			Protocol:     types.ProtocolCore,
			MessageType:  types.MsgOpenSession,
			MessageFlags: message.FlagFinal,
		}, &resp)
		require.NoError(t, err)
		_ = conn.WriteMessage(websocket.BinaryMessage, frame)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

func TestDialAndHandshakeSucceeds(t *testing.T) {
	codec := newTestCodec()
	server := createTestServer(t, serveOpenSession(t, codec, SupportedEtpVersion))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	session, err := Dial(ctx, httpToWS(server.URL), Options{})
	require.NoError(t, err)
	defer session.Close(codec, "test done")

	start := time.Now()
	open, err := session.Handshake(ctx, codec)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	assert.Equal(t, "session-1", open.SessionId)
	assert.Equal(t, StateActive, session.State())
}

func TestHandshakeAppliesAllNegotiatedCapabilities(t *testing.T) {
	codec := newTestCodec()
	server := createTestServer(t, func(conn *websocket.Conn) {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h, _, err := codec.Decode(raw)
		require.NoError(t, err)
		require.Equal(t, types.MsgRequestSession, h.MessageType)

		resp := types.OpenSession{
			ApplicationName:    "test-server",
			ServerInstanceId:   "server-1",
			SupportedProtocols: []int32{types.ProtocolCore, types.ProtocolDataspace},
			CurrentDateTime:    time.Now().Unix(),
			EtpVersion:         SupportedEtpVersion,
			SessionId:          "session-1",
			EndpointCapabilities: map[string]any{
				"maxWebSocketFramePayloadSize":   float64(4096),
				"maxWebSocketMessagePayloadSize": float64(16_000_000),
				"maxDataArraySize":               float64(250_000),
				"maxDataObjectSize":              float64(1_000_000),
				"supportsAlterableMetadata":      true,
			},
		}
		frame, err := codec.Encode(message.Header{
			Protocol:     types.ProtocolCore,
			MessageType:  types.MsgOpenSession,
			MessageFlags: message.FlagFinal,
		}, &resp)
		require.NoError(t, err)
		_ = conn.WriteMessage(websocket.BinaryMessage, frame)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	session, err := Dial(ctx, httpToWS(server.URL), Options{})
	require.NoError(t, err)
	defer session.Close(codec, "test done")

	_, err = session.Handshake(ctx, codec)
	require.NoError(t, err)

	caps := session.Capabilities()
	assert.EqualValues(t, 4096, caps.MaxWebSocketFramePayloadSize)
	assert.EqualValues(t, 16_000_000, caps.MaxWebSocketMessagePayloadSize)
	assert.EqualValues(t, 250_000, caps.MaxDataArraySize)
	assert.EqualValues(t, 1_000_000, caps.MaxDataObjectSize)
	assert.True(t, caps.SupportsAlterableMetadata)
}

func TestHandshakeRejectsIncompatibleVersion(t *testing.T) {
	codec := newTestCodec()
	server := createTestServer(t, serveOpenSession(t, codec, "2.0.0"))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	session, err := Dial(ctx, httpToWS(server.URL), Options{})
	require.NoError(t, err)
	defer session.Close(codec, "test done")

	_, err = session.Handshake(ctx, codec)
	require.Error(t, err)
	assert.Equal(t, StateClosed, session.State())
}

func TestHandshakeTimesOutWhenServerIsSilent(t *testing.T) {
	codec := newTestCodec()
	server := createTestServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	session, err := Dial(ctx, httpToWS(server.URL), Options{SessionTimeout: 100 * time.Millisecond})
	require.NoError(t, err)
	defer session.Close(codec, "test done")

	start := time.Now()
	_, err = session.Handshake(ctx, codec)
	require.ErrorIs(t, err, ErrHandshakeTimeout)
	assert.InDelta(t, 100*time.Millisecond, time.Since(start), float64(100*time.Millisecond))
}

func TestDialAgainstNonWebSocketServerFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Dial(ctx, httpToWS(server.URL), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionRefused)
}

func TestSendOnClosedSessionReturnsErrNotConnected(t *testing.T) {
	codec := newTestCodec()
	server := createTestServer(t, serveOpenSession(t, codec, SupportedEtpVersion))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	session, err := Dial(ctx, httpToWS(server.URL), Options{})
	require.NoError(t, err)
	_, err = session.Handshake(ctx, codec)
	require.NoError(t, err)

	require.NoError(t, session.Close(codec, "closing"))
	err = session.Send(message.Header{Protocol: types.ProtocolCore, MessageType: types.MsgPing}, nil)
	assert.ErrorIs(t, err, ErrNotConnected)
}
