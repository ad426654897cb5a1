package protocol

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/message"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
)

func TestCorePingReturnsPong(t *testing.T) {
	codec := newTestCodec()
	handlers := map[message.Discriminant]responder{
		coreDiscriminant(types.MsgPing): func(h message.Header, _ []byte) []message.Frame {
			return []message.Frame{encodeReply(t, codec, h, coreDiscriminant(types.MsgPong), &types.Pong{CurrentDateTime: 42})}
		},
	}
	c, closeFn := stubServer(t, handlers)
	defer closeFn()

	core := NewCore(c)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	pong, err := core.Ping(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, pong)
	assert.Equal(t, int64(42), pong.CurrentDateTime)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestCoreAuthorizeReturnsResponse(t *testing.T) {
	codec := newTestCodec()
	handlers := map[message.Discriminant]responder{
		coreDiscriminant(types.MsgAuthorize): func(h message.Header, _ []byte) []message.Frame {
			return []message.Frame{encodeReply(t, codec, h, coreDiscriminant(types.MsgAuthorizeResponse), &types.AuthorizeResponse{Success: true, Expires: 100})}
		},
	}
	c, closeFn := stubServer(t, handlers)
	defer closeFn()

	core := NewCore(c)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := core.Authorize(ctx, "fresh-token", time.Second)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(100), resp.Expires)
}

func TestCorePingTimesOut(t *testing.T) {
	c, closeFn := stubServer(t, nil)
	defer closeFn()

	core := NewCore(c)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	_, err := core.Ping(ctx, 100*time.Millisecond)
	require.Error(t, err)
	assert.InDelta(t, 100*time.Millisecond, time.Since(start), float64(100*time.Millisecond))
}
