package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/message"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/protocol"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
)

func httpToWS(httpURL string) string {
	return strings.Replace(httpURL, "http://", "ws://", 1)
}

func newClientTestCodec() *message.Codec {
	body := message.NewJSONBodyCodec()
	protocol.RegisterAll(body)
	return message.NewCodec(body)
}

// connectStub dials a Client against a server that negotiates
// maxDataArraySize and otherwise dispatches inbound frames by discriminant,
// mirroring the shared protocol-package stub server but driven through
// client.Connect so capability negotiation is exercised end to end.
func connectStub(t *testing.T, maxDataArraySize int64, handlers map[message.Discriminant]func(h message.Header, codec *message.Codec, conn *websocket.Conn)) (*Client, func()) {
	t.Helper()
	codec := newClientTestCodec()

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
		h, _, err := codec.Decode(raw)
		require.NoError(t, err)
		require.Equal(t, types.MsgRequestSession, h.MessageType)

		open := types.OpenSession{
			ServerInstanceId:   "server-1",
			SessionId:          "session-1",
			EtpVersion:         "1.2.0",
			SupportedProtocols: []int32{types.ProtocolCore, types.ProtocolDataArray},
			EndpointCapabilities: map[string]any{
				"maxDataArraySize": float64(maxDataArraySize),
			},
		}
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
			if fn, ok := handlers[in.Header.Discriminant()]; ok {
				fn(in.Header, codec, conn)
			}
		}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Connect(ctx, Options{
		URL:                httpToWS(server.URL),
		Username:           "user",
		Password:           "pass",
		ApplicationName:    "test-client",
		ApplicationVersion: "0.0.1",
		RequestedProtocols: []int32{types.ProtocolCore, types.ProtocolDataArray},
	})
	require.NoError(t, err)
	return c, server.Close
}

func writeReply(t *testing.T, codec *message.Codec, conn *websocket.Conn, h message.Header, d message.Discriminant, body any) {
	t.Helper()
	raw, err := codec.Body.EncodeBody(d, body)
	require.NoError(t, err)
	frame := message.EncodeFrame(message.Header{
		Protocol:      d.Protocol,
		MessageType:   d.MessageType,
		CorrelationID: h.MessageID,
		MessageFlags:  message.FlagFinal,
	}, raw)
	_ = conn.WriteMessage(websocket.BinaryMessage, frame)
}

// TestPutDataArraysAutoTilesOversizedArray exercises the [1000,1000]
// double-array scenario with a negotiated maxDataArraySize of 250000:
// the client must split it into exactly 4 row-major tiles on its own,
// without the caller choosing a tile size.
func TestPutDataArraysAutoTilesOversizedArray(t *testing.T) {
	var tileCount int32
	putSubarrays := message.Discriminant{Protocol: types.ProtocolDataArray, MessageType: types.MsgPutDataSubarrays}
	putSubarraysResp := message.Discriminant{Protocol: types.ProtocolDataArray, MessageType: types.MsgPutDataSubarraysResponse}

	handlers := map[message.Discriminant]func(h message.Header, codec *message.Codec, conn *websocket.Conn){
		putSubarrays: func(h message.Header, codec *message.Codec, conn *websocket.Conn) {
			atomic.AddInt32(&tileCount, 1)
			writeReply(t, codec, conn, h, putSubarraysResp, &types.PutDataSubarraysResponse{Success: map[string]bool{"tile": true}})
		},
	}

	c, closeFn := connectStub(t, 250_000, handlers)
	defer closeFn()
	defer c.Close("test done")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	doubles := make([]float64, 1_000_000)
	arr := types.DataArray{
		URI:            "eml:///dataspace('demo')",
		PathInResource: "/data",
		Dimensions:     []int64{1000, 1000},
		Data:           types.AnyArray{Kind: types.ElementKindDouble, Doubles: doubles},
	}

	result, err := c.PutDataArray(ctx, "/data", arr, 10*time.Second)
	require.NoError(t, err)
	assert.EqualValues(t, 4, atomic.LoadInt32(&tileCount))
	assert.True(t, result["/data"])
}

// TestPutDataArraysSendsSmallArrayWhole asserts an array within
// maxDataArraySize is sent through the plural PutDataArrays request
// rather than being split into subarray tiles.
func TestPutDataArraysSendsSmallArrayWhole(t *testing.T) {
	var wholeCount, tileCount int32
	putArrays := message.Discriminant{Protocol: types.ProtocolDataArray, MessageType: types.MsgPutDataArrays}
	putArraysResp := message.Discriminant{Protocol: types.ProtocolDataArray, MessageType: types.MsgPutDataArraysResponse}
	putSubarrays := message.Discriminant{Protocol: types.ProtocolDataArray, MessageType: types.MsgPutDataSubarrays}
	putSubarraysResp := message.Discriminant{Protocol: types.ProtocolDataArray, MessageType: types.MsgPutDataSubarraysResponse}

	handlers := map[message.Discriminant]func(h message.Header, codec *message.Codec, conn *websocket.Conn){
		putArrays: func(h message.Header, codec *message.Codec, conn *websocket.Conn) {
			atomic.AddInt32(&wholeCount, 1)
			writeReply(t, codec, conn, h, putArraysResp, &types.PutDataArraysResponse{Success: map[string]bool{"/data": true}})
		},
		putSubarrays: func(h message.Header, codec *message.Codec, conn *websocket.Conn) {
			atomic.AddInt32(&tileCount, 1)
			writeReply(t, codec, conn, h, putSubarraysResp, &types.PutDataSubarraysResponse{Success: map[string]bool{"tile": true}})
		},
	}

	c, closeFn := connectStub(t, 250_000, handlers)
	defer closeFn()
	defer c.Close("test done")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	arr := types.DataArray{
		URI:            "eml:///dataspace('demo')",
		PathInResource: "/data",
		Dimensions:     []int64{10, 10},
		Data:           types.AnyArray{Kind: types.ElementKindDouble, Doubles: make([]float64, 100)},
	}

	result, err := c.PutDataArray(ctx, "/data", arr, 10*time.Second)
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&wholeCount))
	assert.EqualValues(t, 0, atomic.LoadInt32(&tileCount))
	assert.True(t, result["/data"])
}
