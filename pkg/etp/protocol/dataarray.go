package protocol

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/correlator"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/message"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/uri"
)

// DefaultMaxRowsPerTile bounds how many rows (slices along dimension 0) one
// PutDataSubarrays/GetDataSubarrays tile covers, used when a caller asks
// for tiled access without specifying its own limit.
const DefaultMaxRowsPerTile = 4096

type DataArray struct {
	c           *correlator.Correlator
	concurrency int
}

func NewDataArray(c *correlator.Correlator, concurrency int) *DataArray {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &DataArray{c: c, concurrency: concurrency}
}

func dataArrayDiscriminant(t int32) message.Discriminant {
	return message.Discriminant{Protocol: types.ProtocolDataArray, MessageType: t}
}

func (d *DataArray) GetDataArray(ctx context.Context, objURI, pathInResource string, timeout time.Duration) (*types.DataArray, error) {
	req := types.GetDataArray{DataArrays: map[string]types.DataArrayIdentifier{
		pathInResource: {URI: uri.Normalize(objURI), PathInResource: pathInResource},
	}}
	items, err := d.c.SendAndWait(ctx, dataArrayDiscriminant(types.MsgGetDataArray), req, timeout)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if resp, ok := item.Body.(*types.GetDataArrayResponse); ok {
			if arr, ok := resp.DataArrays[pathInResource]; ok {
				return &arr, nil
			}
		}
	}
	return nil, nil
}

func (d *DataArray) GetDataArrayMetadata(ctx context.Context, objURI, pathInResource string, timeout time.Duration) (*types.DataArrayMetadata, error) {
	req := types.GetDataArrayMetadata{DataArrays: map[string]types.DataArrayIdentifier{
		pathInResource: {URI: uri.Normalize(objURI), PathInResource: pathInResource},
	}}
	items, err := d.c.SendAndWait(ctx, dataArrayDiscriminant(types.MsgGetDataArrayMetadata), req, timeout)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if resp, ok := item.Body.(*types.GetDataArrayMetadataResponse); ok {
			if m, ok := resp.DataArrays[pathInResource]; ok {
				return &m, nil
			}
		}
	}
	return nil, nil
}

// PutDataArrays writes one or more complete DataArrays in a single request.
// Use PutDataSubarrays instead for an array too large to send whole.
func (d *DataArray) PutDataArrays(ctx context.Context, arrays map[string]types.DataArray, timeout time.Duration) (map[string]bool, error) {
	for k, a := range arrays {
		a.URI = uri.Normalize(a.URI)
		arrays[k] = a
	}
	items, err := d.c.SendAndWait(ctx, dataArrayDiscriminant(types.MsgPutDataArrays), types.PutDataArrays{DataArrays: arrays}, timeout)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool)
	for _, item := range items {
		if resp, ok := item.Body.(*types.PutDataArraysResponse); ok {
			for k, v := range resp.Success {
				out[k] = v
			}
		}
	}
	return out, nil
}

// ElementCount returns the total number of scalar elements a DataArray shaped
// by dims holds, the product of every dimension.
func ElementCount(dims []int64) int64 {
	count := int64(1)
	for _, d := range dims {
		count *= d
	}
	return count
}

// RowsPerTile computes how many rows (slices along dimension 0) fit within
// maxElements scalar values per tile, used to size tiles from a negotiated
// maxDataArraySize capability rather than a caller-chosen constant.
func RowsPerTile(dims []int64, maxElements int64) (int, error) {
	if len(dims) == 0 {
		return 0, fmt.Errorf("dataarray: empty Dimensions")
	}
	rowSize := int64(1)
	for _, d := range dims[1:] {
		rowSize *= d
	}
	if rowSize <= 0 {
		return 0, fmt.Errorf("dataarray: invalid Dimensions %v", dims)
	}
	rows := maxElements / rowSize
	if rows < 1 {
		rows = 1
	}
	return int(rows), nil
}

// tile describes one row-major slice along dimension 0 of a DataArray.
type tile struct {
	key    string
	starts []int64
	counts []int64
	data   types.AnyArray
}

// rowMajorTileShapes splits dims into tiles of at most maxRows along
// dimension 0, each tile spanning every inner dimension in full. Splitting
// only the outermost dimension keeps each tile a contiguous row range of the
// source array - the common case of chunking a large array row by row.
func rowMajorTileShapes(dims []int64, maxRows int) ([]tile, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("dataarray: empty Dimensions")
	}
	totalRows := dims[0]
	if maxRows <= 0 {
		maxRows = DefaultMaxRowsPerTile
	}

	var tiles []tile
	for start := int64(0); start < totalRows; start += int64(maxRows) {
		count := int64(maxRows)
		if start+count > totalRows {
			count = totalRows - start
		}
		starts := make([]int64, len(dims))
		counts := append([]int64(nil), dims...)
		starts[0] = start
		counts[0] = count
		tiles = append(tiles, tile{key: fmt.Sprintf("tile-%d", start), starts: starts, counts: counts})
	}
	return tiles, nil
}

// rowMajorTiles splits both dims and data into row-major tiles, used by
// PutDataSubarrays where the full payload is already in hand.
func rowMajorTiles(dims []int64, data types.AnyArray, maxRows int) ([]tile, error) {
	tiles, err := rowMajorTileShapes(dims, maxRows)
	if err != nil {
		return nil, err
	}
	rowSize := int64(1)
	for _, dim := range dims[1:] {
		rowSize *= dim
	}
	for i, t := range tiles {
		slice, err := sliceAnyArray(data, int(t.starts[0]*rowSize), int(t.counts[0]*rowSize))
		if err != nil {
			return nil, err
		}
		tiles[i].data = slice
	}
	return tiles, nil
}

// PutDataSubarrays splits arr's flattened data into row-major tiles of at
// most maxRowsPerTile rows (DefaultMaxRowsPerTile if <= 0) and writes them
// concurrently, bounded by the DataArray's configured concurrency.
func (d *DataArray) PutDataSubarrays(ctx context.Context, objURI, pathInResource string, arr types.DataArray, maxRowsPerTile int, timeout time.Duration) (map[string]bool, error) {
	tiles, err := rowMajorTiles(arr.Dimensions, arr.Data, maxRowsPerTile)
	if err != nil {
		return nil, err
	}

	normalizedURI := uri.Normalize(objURI)
	p := pool.New().WithMaxGoroutines(d.concurrency).WithContext(ctx)

	var mu sync.Mutex
	results := make(map[string]bool, len(tiles))
	for _, t := range tiles {
		t := t
		p.Go(func(ctx context.Context) error {
			req := types.PutDataSubarrays{Subarrays: map[string]types.Subarray{
				t.key: {
					URI:            normalizedURI,
					PathInResource: pathInResource,
					Starts:         t.starts,
					Counts:         t.counts,
					Data:           t.data,
				},
			}}
			items, err := d.c.SendAndWait(ctx, dataArrayDiscriminant(types.MsgPutDataSubarrays), req, timeout)
			if err != nil {
				return fmt.Errorf("dataarray: tile %s: %w", t.key, err)
			}

			mu.Lock()
			defer mu.Unlock()
			for _, item := range items {
				if resp, ok := item.Body.(*types.PutDataSubarraysResponse); ok {
					for k, v := range resp.Success {
						results[k] = v
					}
				}
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type fetchedTile struct {
	start int64
	data  types.AnyArray
}

// GetDataSubarrays fetches arr in row-major tiles of at most maxRowsPerTile
// rows and reassembles them into one contiguous DataArray, concurrently
// bounded by the DataArray's configured concurrency.
func (d *DataArray) GetDataSubarrays(ctx context.Context, objURI, pathInResource string, dims []int64, kind types.ElementKind, maxRowsPerTile int, timeout time.Duration) (*types.DataArray, error) {
	tiles, err := rowMajorTileShapes(dims, maxRowsPerTile)
	if err != nil {
		return nil, err
	}

	normalizedURI := uri.Normalize(objURI)
	fetched := make([]fetchedTile, len(tiles))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(d.concurrency).WithContext(ctx)
	for i, t := range tiles {
		i, t := i, t
		p.Go(func(ctx context.Context) error {
			req := types.GetDataSubarrays{Subarrays: map[string]types.Subarray{
				t.key: {URI: normalizedURI, PathInResource: pathInResource, Starts: t.starts, Counts: t.counts},
			}}
			items, err := d.c.SendAndWait(ctx, dataArrayDiscriminant(types.MsgGetDataSubarrays), req, timeout)
			if err != nil {
				return fmt.Errorf("dataarray: tile %s: %w", t.key, err)
			}
			for _, item := range items {
				if resp, ok := item.Body.(*types.GetDataSubarraysResponse); ok {
					if sub, ok := resp.Subarrays[t.key]; ok {
						mu.Lock()
						fetched[i] = fetchedTile{start: t.starts[0], data: sub.Data}
						mu.Unlock()
					}
				}
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(fetched, func(i, j int) bool { return fetched[i].start < fetched[j].start })
	parts := make([]types.AnyArray, len(fetched))
	for i, f := range fetched {
		parts[i] = f.data
	}
	merged, err := concatAnyArrays(kind, parts)
	if err != nil {
		return nil, err
	}

	return &types.DataArray{URI: normalizedURI, PathInResource: pathInResource, Dimensions: dims, Data: merged}, nil
}
