package types

// ClientInfo describes an endpoint's identity and negotiated capabilities,
// exchanged during the handshake.
type ClientInfo struct {
	ApplicationName     string            `json:"applicationName"`
	ApplicationVersion  string            `json:"applicationVersion"`
	Login               string            `json:"login,omitempty"`
	EndpointCapabilities map[string]any   `json:"endpointCapabilities,omitempty"`
}

// Capabilities is the strongly-typed view of the endpoint capability set
// negotiated in the handshake.
type Capabilities struct {
	MaxWebSocketFramePayloadSize   int64 `json:"maxWebSocketFramePayloadSize"`
	MaxWebSocketMessagePayloadSize int64 `json:"maxWebSocketMessagePayloadSize"`
	MaxDataArraySize               int64 `json:"maxDataArraySize,omitempty"`
	MaxDataObjectSize              int64 `json:"maxDataObjectSize,omitempty"`
	SupportsAlterableMetadata      bool  `json:"supportsAlterableMetadata,omitempty"`
}

// RequestSession is the Core protocol handshake request.
type RequestSession struct {
	ApplicationName        string         `json:"applicationName" validate:"required"`
	ApplicationVersion      string        `json:"applicationVersion" validate:"required"`
	ClientInstanceId        string        `json:"clientInstanceId"`
	RequestedProtocols      []int32       `json:"requestedProtocols" validate:"required,min=1"`
	SupportedDataObjects    []string      `json:"supportedDataObjects"`
	SupportedCompression    []string      `json:"supportedCompression,omitempty"`
	SupportedFormats        []string      `json:"supportedFormats,omitempty"`
	CurrentDateTime         int64         `json:"currentDateTime"`
	EndpointCapabilities    map[string]any `json:"endpointCapabilities,omitempty"`
	EtpVersion              string        `json:"etpVersion"`
}

// OpenSession is the Core protocol handshake response.
type OpenSession struct {
	ApplicationName      string         `json:"applicationName"`
	ApplicationVersion   string         `json:"applicationVersion"`
	ServerInstanceId     string         `json:"serverInstanceId"`
	SupportedProtocols   []int32        `json:"supportedProtocols"`
	SupportedDataObjects []string       `json:"supportedDataObjects"`
	SupportedCompression string         `json:"supportedCompression,omitempty"`
	SupportedFormats     []string       `json:"supportedFormats,omitempty"`
	CurrentDateTime      int64          `json:"currentDateTime"`
	EndpointCapabilities map[string]any  `json:"endpointCapabilities,omitempty"`
	EtpVersion           string         `json:"etpVersion"`
	SessionId            string         `json:"sessionId"`
}

// CloseSession terminates an active session.
type CloseSession struct {
	Reason string `json:"reason,omitempty"`
}

// Ping/Pong are the Core protocol liveness operations.
type Ping struct {
	CurrentDateTime int64 `json:"currentDateTime"`
}

type Pong struct {
	CurrentDateTime int64 `json:"currentDateTime"`
}

// Authorize requests (re-)authorization mid-session with a fresh token.
type Authorize struct {
	Authorization string `json:"authorization" validate:"required"`
}

type AuthorizeResponse struct {
	Success bool  `json:"success"`
	Expires int64 `json:"expires,omitempty"`
}

// ProtocolException is the Core protocol's structured error body. It
// implements error: one correlated to a request is returned as the error of
// that request's wait, and so as the error of the protocol handler and
// Client method that sent it. One that arrives uncorrelated closes the
// session.
type ProtocolException struct {
	ErrorCode     int32  `json:"errorCode"`
	Message       string `json:"message"`
	CorrelationId *int64 `json:"correlationId,omitempty"`
}

func (e *ProtocolException) Error() string {
	return e.Message
}
