package client

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/geosiris-technologies/etp-go-client/internal/config"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/protocol"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/uri"
)

// Ping sends a Core-protocol liveness check.
func (c *Client) Ping(ctx context.Context, timeout time.Duration) (*types.Pong, error) {
	return c.Core.Ping(ctx, withDefault(timeout))
}

// Authorize re-authorizes the session mid-session with a fresh token.
func (c *Client) Authorize(ctx context.Context, token string, timeout time.Duration) (*types.AuthorizeResponse, error) {
	return c.Core.Authorize(ctx, token, withDefault(timeout))
}

// GetDataspaces lists dataspaces, optionally filtered to those written at or
// after storeLastWriteFilter (nil for no filter).
func (c *Client) GetDataspaces(ctx context.Context, storeLastWriteFilter *int64, timeout time.Duration) ([]types.Dataspace, error) {
	return c.Dataspace.GetDataspaces(ctx, storeLastWriteFilter, withDefault(timeout))
}

// PutDataspaces creates or updates dataspaces by name/URI, with an optional
// per-dataspace ACL.
func (c *Client) PutDataspaces(ctx context.Context, names []string, acl map[string]types.DataspaceACL, timeout time.Duration) (map[string]bool, error) {
	return c.Dataspace.PutDataspaces(ctx, names, acl, withDefault(timeout))
}

// PutDataspacesWithACL creates or updates dataspaces by name/URI, applying
// the same ACLOwners/ACLViewers/LegalTags/DataCountries from cfg to every
// named dataspace, the way an operator's connection config sets one default
// legal/access policy for everything it creates.
func (c *Client) PutDataspacesWithACL(ctx context.Context, names []string, cfg *config.Config, timeout time.Duration) (map[string]bool, error) {
	acl := types.DataspaceACL{
		Owners:        cfg.ACLOwners,
		Viewers:       cfg.ACLViewers,
		LegalTags:     cfg.LegalTags,
		DataCountries: cfg.DataCountries,
	}
	perName := make(map[string]types.DataspaceACL, len(names))
	for _, name := range names {
		perName[name] = acl
	}
	return c.PutDataspaces(ctx, names, perName, timeout)
}

// DeleteDataspaces removes dataspaces by name/URI.
func (c *Client) DeleteDataspaces(ctx context.Context, names []string, timeout time.Duration) (map[string]bool, error) {
	return c.Dataspace.DeleteDataspaces(ctx, names, withDefault(timeout))
}

// GetResources traverses the resource graph from req.URI. req.URI is
// normalized to a full eml:/// URI by the Discovery handler, so req.URI may
// be passed as a bare dataspace name.
func (c *Client) GetResources(ctx context.Context, req types.GetResources, timeout time.Duration) ([]types.Resource, []types.Edge, error) {
	if err := c.checkValid(req); err != nil {
		return nil, nil, err
	}
	return c.Discovery.GetResources(ctx, req, withDefault(timeout))
}

// GetDataObject fetches a single object by URI. The response is keyed the
// same way the request's URIs map was (an index, not the URI itself), so
// this returns whichever single entry came back rather than looking the
// object up by key.
func (c *Client) GetDataObject(ctx context.Context, objURI string, timeout time.Duration) (*types.DataObject, error) {
	objects, err := c.Store.GetDataObjects(ctx, []string{objURI}, "", withDefault(timeout))
	if err != nil {
		return nil, err
	}
	for _, obj := range objects {
		return &obj, nil
	}
	return nil, nil
}

// GetDataObjects fetches one or more objects by URI.
func (c *Client) GetDataObjects(ctx context.Context, uris []string, format string, timeout time.Duration) (map[string]types.DataObject, error) {
	return c.Store.GetDataObjects(ctx, uris, format, withBulkDefault(timeout))
}

// PutDataObjects writes one or more objects, each validated before any
// frame is built.
func (c *Client) PutDataObjects(ctx context.Context, objects map[string]types.DataObject, timeout time.Duration) (map[string]bool, error) {
	for k, obj := range objects {
		if err := c.checkValid(obj); err != nil {
			return nil, fmt.Errorf("client: object %q: %w", k, err)
		}
	}
	return c.Store.PutDataObjects(ctx, objects, withBulkDefault(timeout))
}

// PutDataObjectFile reads path from disk and writes it as one DataObject at
// objURI, the way an operator hands the client a XML/JSON export to upload.
func (c *Client) PutDataObjectFile(ctx context.Context, objURI, dataObjectType, format, path string, timeout time.Duration) (map[string]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("client: reading %s: %w", path, err)
	}
	obj := types.DataObject{URI: uri.Normalize(objURI), DataObjectType: dataObjectType, Data: data, Format: format}
	return c.PutDataObjects(ctx, map[string]types.DataObject{obj.URI: obj}, timeout)
}

// DeleteDataObjects removes objects by URI, optionally pruning objects they
// solely contain.
func (c *Client) DeleteDataObjects(ctx context.Context, uris []string, pruneContained bool, timeout time.Duration) ([]string, error) {
	return c.Store.DeleteDataObjects(ctx, uris, pruneContained, withBulkDefault(timeout))
}

// GetDataArray fetches one DataArray, automatically fetching it in
// row-major tiles through GetDataArrayTiled when its metadata reports an
// element count over the negotiated maxDataArraySize capability.
func (c *Client) GetDataArray(ctx context.Context, objURI, pathInResource string, timeout time.Duration) (*types.DataArray, error) {
	maxSize := c.Capabilities().MaxDataArraySize
	if maxSize > 0 {
		meta, err := c.DataArray.GetDataArrayMetadata(ctx, objURI, pathInResource, withDefault(timeout))
		if err == nil && meta != nil && protocol.ElementCount(meta.Dimensions) > maxSize {
			return c.GetDataArrayTiled(ctx, objURI, pathInResource, meta.Dimensions, meta.Kind, 0, timeout)
		}
	}
	return c.DataArray.GetDataArray(ctx, objURI, pathInResource, withBulkDefault(timeout))
}

// GetDataArrayMetadata fetches a DataArray's shape without its payload.
func (c *Client) GetDataArrayMetadata(ctx context.Context, objURI, pathInResource string, timeout time.Duration) (*types.DataArrayMetadata, error) {
	return c.DataArray.GetDataArrayMetadata(ctx, objURI, pathInResource, withDefault(timeout))
}

// PutDataArrays writes one or more DataArrays, sending each whole in a
// single PutDataArrays request unless its element count exceeds the
// negotiated maxDataArraySize capability, in which case it is split into
// row-major tiles and sent through PutDataSubarrays instead. Arrays are
// keyed by pathInResource.
func (c *Client) PutDataArrays(ctx context.Context, arrays map[string]types.DataArray, timeout time.Duration) (map[string]bool, error) {
	for k, a := range arrays {
		if err := c.checkValid(a); err != nil {
			return nil, fmt.Errorf("client: array %q: %w", k, err)
		}
	}

	maxSize := c.Capabilities().MaxDataArraySize
	whole := make(map[string]types.DataArray, len(arrays))
	out := make(map[string]bool, len(arrays))
	for k, a := range arrays {
		if maxSize <= 0 || protocol.ElementCount(a.Dimensions) <= maxSize {
			whole[k] = a
			continue
		}
		rows, err := protocol.RowsPerTile(a.Dimensions, maxSize)
		if err != nil {
			return nil, fmt.Errorf("client: array %q: %w", k, err)
		}
		result, err := c.DataArray.PutDataSubarrays(ctx, a.URI, k, a, rows, withBulkDefault(timeout))
		if err != nil {
			return nil, fmt.Errorf("client: array %q: %w", k, err)
		}
		for _, v := range result {
			out[k] = out[k] || v
		}
	}

	if len(whole) > 0 {
		result, err := c.DataArray.PutDataArrays(ctx, whole, withBulkDefault(timeout))
		if err != nil {
			return nil, err
		}
		for k, v := range result {
			out[k] = v
		}
	}
	return out, nil
}

// PutDataArray writes one DataArray, automatically tiling it through
// PutDataArrays if it exceeds the negotiated maxDataArraySize capability.
func (c *Client) PutDataArray(ctx context.Context, pathInResource string, arr types.DataArray, timeout time.Duration) (map[string]bool, error) {
	result, err := c.PutDataArrays(ctx, map[string]types.DataArray{pathInResource: arr}, timeout)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetDataArrayTiled fetches a DataArray shaped by dims in row-major tiles
// and reassembles it, for arrays too large to fetch as one GetDataArray.
// maxRowsPerTile <= 0 derives a row count from the negotiated
// maxDataArraySize capability, falling back to protocol.DefaultMaxRowsPerTile
// if no capability was negotiated.
func (c *Client) GetDataArrayTiled(ctx context.Context, objURI, pathInResource string, dims []int64, kind types.ElementKind, maxRowsPerTile int, timeout time.Duration) (*types.DataArray, error) {
	if maxRowsPerTile <= 0 {
		if maxSize := c.Capabilities().MaxDataArraySize; maxSize > 0 {
			rows, err := protocol.RowsPerTile(dims, maxSize)
			if err != nil {
				return nil, err
			}
			maxRowsPerTile = rows
		}
	}
	return c.DataArray.GetDataSubarrays(ctx, objURI, pathInResource, dims, kind, maxRowsPerTile, withBulkDefault(timeout))
}

// GetSupportedTypes lists the data object types a dataspace/object supports.
func (c *Client) GetSupportedTypes(ctx context.Context, req types.GetSupportedTypes, timeout time.Duration) ([]types.SupportedType, error) {
	return c.SupportedTypes.GetSupportedTypes(ctx, req, withDefault(timeout))
}

// StartTransaction opens a transaction scoped to the given dataspaces. At
// most one transaction may be active on a Client at a time.
func (c *Client) StartTransaction(ctx context.Context, dataspaceURIs []string, readOnly bool, msg string, timeout time.Duration) (*types.StartTransactionResponse, error) {
	return c.Transaction.Start(ctx, dataspaceURIs, readOnly, msg, withDefault(timeout))
}

// CommitTransaction commits the active transaction.
func (c *Client) CommitTransaction(ctx context.Context, timeout time.Duration) (*types.CommitTransactionResponse, error) {
	return c.Transaction.Commit(ctx, withDefault(timeout))
}

// RollbackTransaction rolls back the active transaction.
func (c *Client) RollbackTransaction(ctx context.Context, timeout time.Duration) (*types.RollbackTransactionResponse, error) {
	return c.Transaction.Rollback(ctx, withDefault(timeout))
}
