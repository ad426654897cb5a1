// Package client is the Go-native facade over the transport, correlator
// and protocol packages: one Client per WebSocket connection, exposing a
// method per ETP operation with a deadline and a typed result, the way the
// teacher's higher-level packages wrap their lower-level primitives.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/auth"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/correlator"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/message"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/protocol"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/transport"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
)

// DefaultTimeout bounds most operations. Bulk operations (PutDataObjects,
// PutDataArrays/PutDataSubarrays) default to DefaultBulkTimeout instead.
const DefaultTimeout = 5 * time.Second

// DefaultBulkTimeout bounds operations that may fan out multiple frames or
// carry large payloads.
const DefaultBulkTimeout = 60 * time.Second

// Options configures Connect. Username/Password or AccessToken select the
// Authorization scheme; AccessToken wins if both are set.
type Options struct {
	URL                 string
	Username            string
	Password            string
	AccessToken         string
	AdditionalHeaders   map[string]string
	ApplicationName     string
	ApplicationVersion  string
	RequestedProtocols  []int32
	InsecureSkipVerify  bool
	ChunkThreshold      int
	TileConcurrency     int
	HandshakeTimeout    time.Duration
	SessionTimeout      time.Duration
}

func (o Options) validate() error {
	if o.URL == "" {
		return fmt.Errorf("client: Options.URL is required")
	}
	if o.AccessToken == "" && o.Username == "" && o.Password == "" {
		return fmt.Errorf("client: %w", auth.ErrNoCredentials)
	}
	return nil
}

// Client is one ETP session plus its protocol handlers. All blocking
// operations accept a context.Context and apply a default deadline if the
// caller passes timeout <= 0.
type Client struct {
	session    *transport.Session
	codec      *message.Codec
	correlator *correlator.Correlator
	validate   *validator.Validate

	Core           *protocol.Core
	Discovery      *protocol.Discovery
	Store          *protocol.Store
	DataArray      *protocol.DataArray
	Dataspace      *protocol.Dataspace
	SupportedTypes *protocol.SupportedTypes
	Transaction    *protocol.Transaction
}

// Connect dials opts.URL, performs the ETP handshake, and returns a Client
// ready to send requests. Requests all seven sub-protocols by default if
// opts.RequestedProtocols is empty.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(opts.RequestedProtocols) == 0 {
		opts.RequestedProtocols = []int32{
			types.ProtocolCore, types.ProtocolDiscovery, types.ProtocolStore,
			types.ProtocolDataArray, types.ProtocolTransaction, types.ProtocolDataspace,
			types.ProtocolSupportedTypes,
		}
	}

	session, err := transport.Dial(ctx, opts.URL, transport.Options{
		ApplicationName:    opts.ApplicationName,
		ApplicationVersion: opts.ApplicationVersion,
		Username:           opts.Username,
		Password:           opts.Password,
		AccessToken:        opts.AccessToken,
		AdditionalHeaders:  opts.AdditionalHeaders,
		RequestedProtocols: opts.RequestedProtocols,
		InsecureSkipVerify: opts.InsecureSkipVerify,
		HandshakeTimeout:   opts.HandshakeTimeout,
		SessionTimeout:     opts.SessionTimeout,
	})
	if err != nil {
		return nil, err
	}

	bodyCodec := message.NewJSONBodyCodec()
	protocol.RegisterAll(bodyCodec)
	codec := message.NewCodec(bodyCodec)

	if _, err := session.Handshake(ctx, codec); err != nil {
		_ = session.Close(codec, "handshake failed")
		return nil, err
	}

	corr := correlator.New(session, codec)

	c := &Client{
		session:        session,
		codec:          codec,
		correlator:     corr,
		validate:       validator.New(),
		Core:           protocol.NewCore(corr),
		Discovery:      protocol.NewDiscovery(corr),
		Store:          protocol.NewStore(corr, opts.ChunkThreshold),
		DataArray:      protocol.NewDataArray(corr, opts.TileConcurrency),
		Dataspace:      protocol.NewDataspace(corr),
		SupportedTypes: protocol.NewSupportedTypes(corr),
		Transaction:    protocol.NewTransaction(corr),
	}

	session.Listeners().Add(transport.OnClose, func(ev transport.Event) {
		log.Info().Int("code", ev.CloseStatusCode).Str("reason", ev.CloseReason).Msg("client: session closed")
	})

	return c, nil
}

// Listeners exposes the underlying Session's lifecycle-event registry.
func (c *Client) Listeners() *transport.Listeners {
	return c.session.Listeners()
}

// State returns the underlying Session's lifecycle state.
func (c *Client) State() transport.State {
	return c.session.State()
}

// Capabilities returns the capability set negotiated during the handshake.
func (c *Client) Capabilities() types.Capabilities {
	return c.session.Capabilities()
}

// Close sends CloseSession (best-effort) and closes the connection.
func (c *Client) Close(reason string) error {
	return c.session.Close(c.codec, reason)
}

func withDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultTimeout
	}
	return timeout
}

func withBulkDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultBulkTimeout
	}
	return timeout
}

func (c *Client) checkValid(body any) error {
	if err := c.validate.Struct(body); err != nil {
		return fmt.Errorf("client: invalid request: %w", err)
	}
	return nil
}
