// Package types holds the ETP v1.2 message bodies and domain entities.
// In a production deployment these would be generated from the ETP Avro
// IDL schema by an external code generator; here they're hand-written Go
// structs playing that role, tagged for both JSON (the default
// message.BodyCodec) and go-playground/validator.
package types

// Protocol numbers assigned by the ETP specification.
const (
	ProtocolCore           = 0
	ProtocolDiscovery      = 3
	ProtocolStore          = 4
	ProtocolDataArray      = 9
	ProtocolTransaction    = 18
	ProtocolDataspace      = 24
	ProtocolSupportedTypes = 25
)

// Message type discriminants within each protocol.
const (
	MsgRequestSession = iota + 1
	MsgOpenSession
	MsgCloseSession
	MsgPing
	MsgPong
	MsgAuthorize
	MsgAuthorizeResponse
	MsgProtocolException
)

const (
	MsgGetResources = iota + 1
	MsgGetResourcesResponse
	MsgGetResourcesEdgesResponse
)

const (
	MsgGetDataObjects = iota + 1
	MsgGetDataObjectsResponse
	MsgPutDataObjects
	MsgPutDataObjectsResponse
	MsgDeleteDataObjects
	MsgDeleteDataObjectsResponse
	MsgChunk
)

const (
	MsgGetDataArray = iota + 1
	MsgGetDataArrayResponse
	MsgGetDataArrayMetadata
	MsgGetDataArrayMetadataResponse
	MsgPutDataArrays
	MsgPutDataArraysResponse
	MsgGetDataSubarrays
	MsgGetDataSubarraysResponse
	MsgPutDataSubarrays
	MsgPutDataSubarraysResponse
)

const (
	MsgStartTransaction = iota + 1
	MsgStartTransactionResponse
	MsgCommitTransaction
	MsgCommitTransactionResponse
	MsgRollbackTransaction
	MsgRollbackTransactionResponse
)

const (
	MsgGetDataspaces = iota + 1
	MsgGetDataspacesResponse
	MsgPutDataspaces
	MsgPutDataspacesResponse
	MsgDeleteDataspaces
	MsgDeleteDataspacesResponse
)

const (
	MsgGetSupportedTypes = iota + 1
	MsgGetSupportedTypesResponse
)
