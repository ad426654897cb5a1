package protocol

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/correlator"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/message"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/transport"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
)

func httpToWS(httpURL string) string {
	return strings.Replace(httpURL, "http://", "ws://", 1)
}

func newTestCodec() *message.Codec {
	body := message.NewJSONBodyCodec()
	RegisterAll(body)
	return message.NewCodec(body)
}

// responder builds one or more reply frames for an inbound request frame,
// given the request's header and raw (still-encoded) body.
type responder func(h message.Header, body []byte) []message.Frame

// stubServer dials a Session+Correlator against a server that completes the
// handshake and then looks up an inbound frame's discriminant in handlers,
// writing back whatever frames the matching responder returns.
func stubServer(t *testing.T, handlers map[message.Discriminant]responder) (*correlator.Correlator, func()) {
	t.Helper()
	codec := newTestCodec()

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_, _, err = codec.Decode(raw)
		require.NoError(t, err)
		open := types.OpenSession{ServerInstanceId: "server-1", SessionId: "session-1", EtpVersion: transport.SupportedEtpVersion}
		frame, err := codec.Encode(message.Header{Protocol: types.ProtocolCore, MessageType: types.MsgOpenSession, MessageFlags: message.FlagFinal}, &open)
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, frame))

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			in, err := message.DecodeFrame(raw)
			if err != nil {
				continue
			}
			reply, ok := handlers[in.Header.Discriminant()]
			if !ok {
				continue
			}
			for _, out := range reply(in.Header, in.Body) {
				_ = conn.WriteMessage(websocket.BinaryMessage, message.EncodeFrame(out.Header, out.Body))
			}
		}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	session, err := transport.Dial(ctx, httpToWS(server.URL), transport.Options{})
	require.NoError(t, err)
	_, err = session.Handshake(ctx, codec)
	require.NoError(t, err)

	return correlator.New(session, codec), server.Close
}

// encodeReply builds a single FINAL reply frame for discriminant d,
// correlated to the request message id h.MessageID.
func encodeReply(t *testing.T, codec *message.Codec, h message.Header, d message.Discriminant, body any) message.Frame {
	t.Helper()
	raw, err := codec.Body.EncodeBody(d, body)
	require.NoError(t, err)
	return message.Frame{
		Header: message.Header{
			Protocol:      d.Protocol,
			MessageType:   d.MessageType,
			CorrelationID: h.MessageID,
			MessageFlags:  message.FlagFinal,
		},
		Body: raw,
	}
}
