package protocol

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/correlator"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/message"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/uri"
)

// DefaultChunkThreshold is the DataObject body size above which PutDataObjects
// sends the object's metadata and its body as separate, independently
// decodable frames (a metadata frame plus one or more Chunk frames) rather
// than inline in one PutDataObjects body. Callers with a negotiated
// MaxWebSocketFramePayloadSize should pass that instead.
const DefaultChunkThreshold = 900_000

type Store struct {
	c              *correlator.Correlator
	chunkThreshold int
}

func NewStore(c *correlator.Correlator, chunkThreshold int) *Store {
	if chunkThreshold <= 0 {
		chunkThreshold = DefaultChunkThreshold
	}
	return &Store{c: c, chunkThreshold: chunkThreshold}
}

func storeDiscriminant(t int32) message.Discriminant {
	return message.Discriminant{Protocol: types.ProtocolStore, MessageType: t}
}

// GetDataObjects fetches one or more objects by URI, reassembling any that
// arrived split across a metadata frame and trailing Chunk frames by
// BlobId.
func (s *Store) GetDataObjects(ctx context.Context, uris []string, format string, timeout time.Duration) (map[string]types.DataObject, error) {
	req := types.GetDataObjects{URIs: uri.ListAsMap(uris), Format: format}
	items, err := s.c.SendAndWait(ctx, storeDiscriminant(types.MsgGetDataObjects), req, timeout)
	if err != nil {
		return nil, err
	}
	return stitchDataObjects(items), nil
}

func stitchDataObjects(items []correlator.DecodedItem) map[string]types.DataObject {
	objects := make(map[string]types.DataObject)
	chunkData := make(map[string][]byte)
	blobToURI := make(map[string]string)

	for _, item := range items {
		switch body := item.Body.(type) {
		case *types.GetDataObjectsResponse:
			for k, v := range body.DataObjects {
				objects[k] = v
				if v.BlobId != "" {
					blobToURI[v.BlobId] = k
				}
			}
		case *types.Chunk:
			chunkData[body.BlobId] = append(chunkData[body.BlobId], body.Data...)
			if body.Final {
				if u, ok := blobToURI[body.BlobId]; ok {
					obj := objects[u]
					obj.Data = chunkData[body.BlobId]
					obj.BlobId = ""
					objects[u] = obj
				}
			}
		}
	}
	return objects
}

// PutDataObjects writes one or more DataObjects. Any object whose Data
// exceeds the configured chunk threshold is sent as a metadata frame (Data
// cleared, BlobId assigned) followed by Chunk frames sharing one message
// id, each Chunk carrying at most chunkThreshold bytes of the object's Data.
// Objects below the threshold are sent inline in one PutDataObjects body.
func (s *Store) PutDataObjects(ctx context.Context, objects map[string]types.DataObject, timeout time.Duration) (map[string]bool, error) {
	inline := make(map[string]types.DataObject)
	var chunked []string

	for k, obj := range objects {
		obj.URI = uri.Normalize(obj.URI)
		if len(obj.Data) > s.chunkThreshold {
			chunked = append(chunked, k)
		} else {
			inline[k] = obj
		}
	}

	if len(chunked) == 0 {
		items, err := s.c.SendAndWait(ctx, storeDiscriminant(types.MsgPutDataObjects), types.PutDataObjects{DataObjects: inline}, timeout)
		if err != nil {
			return nil, err
		}
		return putDataObjectsSuccess(items), nil
	}

	group := make([]correlator.GroupItem, 0, 1+len(chunked)*2)
	metadata := make(map[string]types.DataObject, len(objects))
	for k, obj := range inline {
		metadata[k] = obj
	}
	for _, k := range chunked {
		obj := objects[k]
		obj.URI = uri.Normalize(obj.URI)
		blobID := uuid.NewString()
		data := obj.Data
		obj.Data = nil
		obj.BlobId = blobID
		metadata[k] = obj

		for i := 0; i < len(data); i += s.chunkThreshold {
			end := i + s.chunkThreshold
			if end > len(data) {
				end = len(data)
			}
			group = append(group, correlator.GroupItem{
				Discriminant: storeDiscriminant(types.MsgChunk),
				Body: types.Chunk{
					BlobId: blobID,
					Data:   data[i:end],
					Final:  end == len(data),
				},
			})
		}
	}

	group = append([]correlator.GroupItem{{
		Discriminant: storeDiscriminant(types.MsgPutDataObjects),
		Body:         types.PutDataObjects{DataObjects: metadata},
	}}, group...)

	items, err := s.c.SendGroupAndWait(ctx, group, timeout)
	if err != nil {
		return nil, err
	}
	return putDataObjectsSuccess(items), nil
}

func putDataObjectsSuccess(items []correlator.DecodedItem) map[string]bool {
	out := make(map[string]bool)
	for _, item := range items {
		if resp, ok := item.Body.(*types.PutDataObjectsResponse); ok {
			for k, v := range resp.Success {
				out[k] = v
			}
		}
	}
	return out
}

func (s *Store) DeleteDataObjects(ctx context.Context, uris []string, pruneContained bool, timeout time.Duration) ([]string, error) {
	req := types.DeleteDataObjects{URIs: uri.ListAsMap(uris), Prune: pruneContained}
	items, err := s.c.SendAndWait(ctx, storeDiscriminant(types.MsgDeleteDataObjects), req, timeout)
	if err != nil {
		return nil, err
	}
	var deleted []string
	for _, item := range items {
		if resp, ok := item.Body.(*types.DeleteDataObjectsResponse); ok {
			deleted = append(deleted, resp.DeletedURIs...)
		}
	}
	return deleted, nil
}
