package types

// Scope enumerates the Discovery protocol's traversal scopes.
type Scope string

const (
	ScopeSelf            Scope = "self"
	ScopeSources         Scope = "sources"
	ScopeTargets         Scope = "targets"
	ScopeSourcesOrSelf   Scope = "sourcesOrSelf"
	ScopeTargetsOrSelf   Scope = "targetsOrSelf"
	ScopeTargetsAndSelf  Scope = "targetsAndSelf"
)

// GetResources is the Discovery protocol request.
type GetResources struct {
	URI                   string `json:"uri" validate:"required"`
	Depth                 int32  `json:"depth" validate:"min=1"`
	Scope                 Scope  `json:"scope" validate:"required,oneof=self sources targets sourcesOrSelf targetsOrSelf targetsAndSelf"`
	CountObjects          bool   `json:"countObjects,omitempty"`
	StoreLastWriteFilter  *int64 `json:"storeLastWriteFilter,omitempty"`
	ActiveStatusFilter    string `json:"activeStatusFilter,omitempty"`
	IncludeEdges          bool   `json:"includeEdges,omitempty"`
}

// GetResourcesResponse streams Resource values for one GetResources request.
type GetResourcesResponse struct {
	Resources []Resource `json:"resources"`
}

// GetResourcesEdgesResponse streams Edge values when IncludeEdges is set.
type GetResourcesEdgesResponse struct {
	Edges []Edge `json:"edges"`
}
