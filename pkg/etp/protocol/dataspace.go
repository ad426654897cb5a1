package protocol

import (
	"context"
	"time"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/correlator"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/message"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/uri"
)

type Dataspace struct {
	c *correlator.Correlator
}

func NewDataspace(c *correlator.Correlator) *Dataspace {
	return &Dataspace{c: c}
}

func dataspaceDiscriminant(t int32) message.Discriminant {
	return message.Discriminant{Protocol: types.ProtocolDataspace, MessageType: t}
}

func (d *Dataspace) GetDataspaces(ctx context.Context, storeLastWriteFilter *int64, timeout time.Duration) ([]types.Dataspace, error) {
	req := types.GetDataspaces{StoreLastWriteFilter: storeLastWriteFilter}
	items, err := d.c.SendAndWait(ctx, dataspaceDiscriminant(types.MsgGetDataspaces), req, timeout)
	if err != nil {
		return nil, err
	}
	var out []types.Dataspace
	for _, item := range items {
		if resp, ok := item.Body.(*types.GetDataspacesResponse); ok {
			out = append(out, resp.Dataspaces...)
		}
	}
	return out, nil
}

// PutDataspaces creates or updates dataspaces. names is normalized to full
// eml:/// URIs before being sent; acl is optional and, when non-nil, is
// keyed the same way as names.
func (d *Dataspace) PutDataspaces(ctx context.Context, names []string, acl map[string]types.DataspaceACL, timeout time.Duration) (map[string]bool, error) {
	req := types.PutDataspaces{
		Dataspaces: make(map[string]types.Dataspace, len(names)),
		ACLs:       make(map[string]types.DataspaceACL, len(acl)),
	}
	for name, a := range acl {
		req.ACLs[uri.Normalize(name)] = a
	}
	for _, name := range names {
		normalized := uri.Normalize(name)
		req.Dataspaces[normalized] = types.Dataspace{URI: normalized}
	}

	items, err := d.c.SendAndWait(ctx, dataspaceDiscriminant(types.MsgPutDataspaces), req, timeout)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool)
	for _, item := range items {
		if resp, ok := item.Body.(*types.PutDataspacesResponse); ok {
			for k, v := range resp.Success {
				out[k] = v
			}
		}
	}
	return out, nil
}

func (d *Dataspace) DeleteDataspaces(ctx context.Context, names []string, timeout time.Duration) (map[string]bool, error) {
	req := types.DeleteDataspaces{URIs: uri.ListAsMap(names)}
	items, err := d.c.SendAndWait(ctx, dataspaceDiscriminant(types.MsgDeleteDataspaces), req, timeout)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool)
	for _, item := range items {
		if resp, ok := item.Body.(*types.DeleteDataspacesResponse); ok {
			for k, v := range resp.Success {
				out[k] = v
			}
		}
	}
	return out, nil
}
