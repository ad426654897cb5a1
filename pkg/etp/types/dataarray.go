package types

// DataArrayIdentifier addresses one DataArray attached to a resource.
type DataArrayIdentifier struct {
	URI            string `json:"uri" validate:"required"`
	PathInResource string `json:"pathInResource" validate:"required"`
}

type GetDataArray struct {
	DataArrays map[string]DataArrayIdentifier `json:"dataArrays" validate:"required"`
}

type GetDataArrayResponse struct {
	DataArrays map[string]DataArray `json:"dataArrays"`
}

type GetDataArrayMetadata struct {
	DataArrays map[string]DataArrayIdentifier `json:"dataArrays" validate:"required"`
}

type GetDataArrayMetadataResponse struct {
	DataArrays map[string]DataArrayMetadata `json:"dataArrays"`
}

// PutDataArrays writes one or more whole DataArrays.
type PutDataArrays struct {
	DataArrays map[string]DataArray `json:"dataArrays" validate:"required"`
}

type PutDataArraysResponse struct {
	Success map[string]bool `json:"success"`
}

// GetDataSubarrays requests named tiles of one or more DataArrays, addressed
// by Starts/Counts. Used to page through an array with more elements than
// the negotiated MaxDataArraySize without materializing it whole.
type GetDataSubarrays struct {
	Subarrays map[string]Subarray `json:"subarrays" validate:"required"`
}

type GetDataSubarraysResponse struct {
	Subarrays map[string]Subarray `json:"subarrays"`
}

// PutDataSubarrays writes named tiles of one or more DataArrays. A caller
// writing an array with more elements than the negotiated MaxDataArraySize
// splits it into
// row-major tiles client-side and sends each as its own named Subarray
// entry, rather than relying on frame-level fragmentation of one giant
// array.
type PutDataSubarrays struct {
	Subarrays map[string]Subarray `json:"subarrays" validate:"required"`
}

type PutDataSubarraysResponse struct {
	Success map[string]bool `json:"success"`
}
