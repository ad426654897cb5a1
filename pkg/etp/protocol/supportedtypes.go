package protocol

import (
	"context"
	"time"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/correlator"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/message"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/uri"
)

type SupportedTypes struct {
	c *correlator.Correlator
}

func NewSupportedTypes(c *correlator.Correlator) *SupportedTypes {
	return &SupportedTypes{c: c}
}

func (s *SupportedTypes) GetSupportedTypes(ctx context.Context, req types.GetSupportedTypes, timeout time.Duration) ([]types.SupportedType, error) {
	req.URI = uri.Normalize(req.URI)
	d := message.Discriminant{Protocol: types.ProtocolSupportedTypes, MessageType: types.MsgGetSupportedTypes}
	items, err := s.c.SendAndWait(ctx, d, req, timeout)
	if err != nil {
		return nil, err
	}
	var out []types.SupportedType
	for _, item := range items {
		if resp, ok := item.Body.(*types.GetSupportedTypesResponse); ok {
			out = append(out, resp.SupportedTypes...)
		}
	}
	return out, nil
}
