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

func TestPutDataObjectsInline(t *testing.T) {
	codec := newTestCodec()
	handlers := map[message.Discriminant]responder{
		storeDiscriminant(types.MsgPutDataObjects): func(h message.Header, _ []byte) []message.Frame {
			return []message.Frame{encodeReply(t, codec, h, storeDiscriminant(types.MsgPutDataObjectsResponse),
				&types.PutDataObjectsResponse{Success: map[string]bool{"obj1": true}})}
		},
	}
	c, closeFn := stubServer(t, handlers)
	defer closeFn()

	s := NewStore(c, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := s.PutDataObjects(ctx, map[string]types.DataObject{
		"obj1": {URI: "demo", Data: []byte("small payload")},
	}, time.Second)
	require.NoError(t, err)
	assert.True(t, result["obj1"])
}

func TestPutDataObjectsAboveThresholdSendsChunks(t *testing.T) {
	codec := newTestCodec()
	handlers := map[message.Discriminant]responder{
		storeDiscriminant(types.MsgPutDataObjects): func(h message.Header, _ []byte) []message.Frame {
			return []message.Frame{encodeReply(t, codec, h, storeDiscriminant(types.MsgPutDataObjectsResponse),
				&types.PutDataObjectsResponse{Success: map[string]bool{"obj1": true}})}
		},
	}
	c, closeFn := stubServer(t, handlers)
	defer closeFn()

	s := NewStore(c, 8)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := s.PutDataObjects(ctx, map[string]types.DataObject{
		"obj1": {URI: "demo", Data: []byte("this payload is longer than eight bytes")},
	}, time.Second)
	require.NoError(t, err)
	assert.True(t, result["obj1"])
}

func TestGetDataObjectsStitchesChunkedResponse(t *testing.T) {
	codec := newTestCodec()
	handlers := map[message.Discriminant]responder{
		storeDiscriminant(types.MsgGetDataObjects): func(h message.Header, _ []byte) []message.Frame {
			metadata := encodeReply(t, codec, h, storeDiscriminant(types.MsgGetDataObjectsResponse),
				&types.GetDataObjectsResponse{DataObjects: map[string]types.DataObject{
					"0": {URI: "eml:///dataspace('demo')/obj1", BlobId: "blob-1"},
				}})
			metadata.Header.MessageFlags = message.FlagMultipart

			chunk1 := encodeReply(t, codec, h, storeDiscriminant(types.MsgChunk),
				&types.Chunk{BlobId: "blob-1", Data: []byte("hello "), Final: false})
			chunk1.Header.MessageFlags = message.FlagMultipart

			chunk2 := encodeReply(t, codec, h, storeDiscriminant(types.MsgChunk),
				&types.Chunk{BlobId: "blob-1", Data: []byte("world"), Final: true})

			return []message.Frame{metadata, chunk1, chunk2}
		},
	}
	c, closeFn := stubServer(t, handlers)
	defer closeFn()

	s := NewStore(c, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	objects, err := s.GetDataObjects(ctx, []string{"eml:///dataspace('demo')/obj1"}, "", time.Second)
	require.NoError(t, err)
	require.Contains(t, objects, "0")
	assert.Equal(t, "hello world", string(objects["0"].Data))
	assert.Equal(t, "", objects["0"].BlobId)
}

func TestDeleteDataObjectsReturnsDeletedURIs(t *testing.T) {
	codec := newTestCodec()
	handlers := map[message.Discriminant]responder{
		storeDiscriminant(types.MsgDeleteDataObjects): func(h message.Header, _ []byte) []message.Frame {
			return []message.Frame{encodeReply(t, codec, h, storeDiscriminant(types.MsgDeleteDataObjectsResponse),
				&types.DeleteDataObjectsResponse{DeletedURIs: []string{"eml:///dataspace('demo')/obj1"}})}
		},
	}
	c, closeFn := stubServer(t, handlers)
	defer closeFn()

	s := NewStore(c, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	deleted, err := s.DeleteDataObjects(ctx, []string{"eml:///dataspace('demo')/obj1"}, false, time.Second)
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, "eml:///dataspace('demo')/obj1", deleted[0])
}
