// Package protocol implements the per-sub-protocol request/response
// handlers (Core, Discovery, Store, DataArray, Dataspace, SupportedTypes,
// Transaction) on top of the correlator package.
package protocol

import (
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/message"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
)

// RegisterAll registers every known (protocol,messageType) body shape with
// codec, so DecodeBody can resolve inbound frames. Call this once before
// dialing.
func RegisterAll(codec *message.JSONBodyCodec) {
	reg := func(protocol, msgType int32, factory func() any) {
		codec.Register(message.Discriminant{Protocol: protocol, MessageType: msgType}, factory)
	}

	// Core
	reg(types.ProtocolCore, types.MsgRequestSession, func() any { return &types.RequestSession{} })
	reg(types.ProtocolCore, types.MsgOpenSession, func() any { return &types.OpenSession{} })
	reg(types.ProtocolCore, types.MsgCloseSession, func() any { return &types.CloseSession{} })
	reg(types.ProtocolCore, types.MsgPing, func() any { return &types.Ping{} })
	reg(types.ProtocolCore, types.MsgPong, func() any { return &types.Pong{} })
	reg(types.ProtocolCore, types.MsgAuthorize, func() any { return &types.Authorize{} })
	reg(types.ProtocolCore, types.MsgAuthorizeResponse, func() any { return &types.AuthorizeResponse{} })
	reg(types.ProtocolCore, types.MsgProtocolException, func() any { return &types.ProtocolException{} })

	// Discovery
	reg(types.ProtocolDiscovery, types.MsgGetResources, func() any { return &types.GetResources{} })
	reg(types.ProtocolDiscovery, types.MsgGetResourcesResponse, func() any { return &types.GetResourcesResponse{} })
	reg(types.ProtocolDiscovery, types.MsgGetResourcesEdgesResponse, func() any { return &types.GetResourcesEdgesResponse{} })

	// Store
	reg(types.ProtocolStore, types.MsgGetDataObjects, func() any { return &types.GetDataObjects{} })
	reg(types.ProtocolStore, types.MsgGetDataObjectsResponse, func() any { return &types.GetDataObjectsResponse{} })
	reg(types.ProtocolStore, types.MsgPutDataObjects, func() any { return &types.PutDataObjects{} })
	reg(types.ProtocolStore, types.MsgPutDataObjectsResponse, func() any { return &types.PutDataObjectsResponse{} })
	reg(types.ProtocolStore, types.MsgDeleteDataObjects, func() any { return &types.DeleteDataObjects{} })
	reg(types.ProtocolStore, types.MsgDeleteDataObjectsResponse, func() any { return &types.DeleteDataObjectsResponse{} })
	reg(types.ProtocolStore, types.MsgChunk, func() any { return &types.Chunk{} })

	// DataArray
	reg(types.ProtocolDataArray, types.MsgGetDataArray, func() any { return &types.GetDataArray{} })
	reg(types.ProtocolDataArray, types.MsgGetDataArrayResponse, func() any { return &types.GetDataArrayResponse{} })
	reg(types.ProtocolDataArray, types.MsgGetDataArrayMetadata, func() any { return &types.GetDataArrayMetadata{} })
	reg(types.ProtocolDataArray, types.MsgGetDataArrayMetadataResponse, func() any { return &types.GetDataArrayMetadataResponse{} })
	reg(types.ProtocolDataArray, types.MsgPutDataArrays, func() any { return &types.PutDataArrays{} })
	reg(types.ProtocolDataArray, types.MsgPutDataArraysResponse, func() any { return &types.PutDataArraysResponse{} })
	reg(types.ProtocolDataArray, types.MsgGetDataSubarrays, func() any { return &types.GetDataSubarrays{} })
	reg(types.ProtocolDataArray, types.MsgGetDataSubarraysResponse, func() any { return &types.GetDataSubarraysResponse{} })
	reg(types.ProtocolDataArray, types.MsgPutDataSubarrays, func() any { return &types.PutDataSubarrays{} })
	reg(types.ProtocolDataArray, types.MsgPutDataSubarraysResponse, func() any { return &types.PutDataSubarraysResponse{} })

	// Transaction
	reg(types.ProtocolTransaction, types.MsgStartTransaction, func() any { return &types.StartTransaction{} })
	reg(types.ProtocolTransaction, types.MsgStartTransactionResponse, func() any { return &types.StartTransactionResponse{} })
	reg(types.ProtocolTransaction, types.MsgCommitTransaction, func() any { return &types.CommitTransaction{} })
	reg(types.ProtocolTransaction, types.MsgCommitTransactionResponse, func() any { return &types.CommitTransactionResponse{} })
	reg(types.ProtocolTransaction, types.MsgRollbackTransaction, func() any { return &types.RollbackTransaction{} })
	reg(types.ProtocolTransaction, types.MsgRollbackTransactionResponse, func() any { return &types.RollbackTransactionResponse{} })

	// Dataspace
	reg(types.ProtocolDataspace, types.MsgGetDataspaces, func() any { return &types.GetDataspaces{} })
	reg(types.ProtocolDataspace, types.MsgGetDataspacesResponse, func() any { return &types.GetDataspacesResponse{} })
	reg(types.ProtocolDataspace, types.MsgPutDataspaces, func() any { return &types.PutDataspaces{} })
	reg(types.ProtocolDataspace, types.MsgPutDataspacesResponse, func() any { return &types.PutDataspacesResponse{} })
	reg(types.ProtocolDataspace, types.MsgDeleteDataspaces, func() any { return &types.DeleteDataspaces{} })
	reg(types.ProtocolDataspace, types.MsgDeleteDataspacesResponse, func() any { return &types.DeleteDataspacesResponse{} })

	// SupportedTypes
	reg(types.ProtocolSupportedTypes, types.MsgGetSupportedTypes, func() any { return &types.GetSupportedTypes{} })
	reg(types.ProtocolSupportedTypes, types.MsgGetSupportedTypesResponse, func() any { return &types.GetSupportedTypesResponse{} })
}
