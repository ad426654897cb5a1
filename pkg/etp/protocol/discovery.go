package protocol

import (
	"context"
	"time"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/correlator"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/message"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/uri"
)

type Discovery struct {
	c *correlator.Correlator
}

func NewDiscovery(c *correlator.Correlator) *Discovery {
	return &Discovery{c: c}
}

func discoveryDiscriminant(t int32) message.Discriminant {
	return message.Discriminant{Protocol: types.ProtocolDiscovery, MessageType: t}
}

// GetResources traverses the graph from uriRoot and returns the resources
// found, accumulating every streamed GetResourcesResponse frame until the
// server marks its last one FINAL.
func (d *Discovery) GetResources(ctx context.Context, req types.GetResources, timeout time.Duration) ([]types.Resource, []types.Edge, error) {
	req.URI = uri.Normalize(req.URI)
	items, err := d.c.SendAndWait(ctx, discoveryDiscriminant(types.MsgGetResources), req, timeout)
	if err != nil {
		return nil, nil, err
	}

	var resources []types.Resource
	var edges []types.Edge
	for _, item := range items {
		switch body := item.Body.(type) {
		case *types.GetResourcesResponse:
			resources = append(resources, body.Resources...)
		case *types.GetResourcesEdgesResponse:
			edges = append(edges, body.Edges...)
		}
	}
	return resources, edges, nil
}
