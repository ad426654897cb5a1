package protocol

import (
	"context"
	"time"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/correlator"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/message"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
)

// Core wraps Core-protocol operations (Ping, Authorize) that are available
// once a session is active. Session establishment itself belongs to
// transport.Session.Handshake, not here.
type Core struct {
	c *correlator.Correlator
}

func NewCore(c *correlator.Correlator) *Core {
	return &Core{c: c}
}

var coreDiscriminant = func(t int32) message.Discriminant {
	return message.Discriminant{Protocol: types.ProtocolCore, MessageType: t}
}

// Ping sends a liveness check and waits for Pong.
func (p *Core) Ping(ctx context.Context, timeout time.Duration) (*types.Pong, error) {
	items, err := p.c.SendAndWait(ctx, coreDiscriminant(types.MsgPing), types.Ping{CurrentDateTime: time.Now().Unix()}, timeout)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if pong, ok := item.Body.(*types.Pong); ok {
			return pong, nil
		}
	}
	return nil, nil
}

// Authorize re-authorizes the session with a fresh token mid-session.
func (p *Core) Authorize(ctx context.Context, token string, timeout time.Duration) (*types.AuthorizeResponse, error) {
	items, err := p.c.SendAndWait(ctx, coreDiscriminant(types.MsgAuthorize), types.Authorize{Authorization: token}, timeout)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if resp, ok := item.Body.(*types.AuthorizeResponse); ok {
			return resp, nil
		}
	}
	return nil, nil
}
