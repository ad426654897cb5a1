package types

type GetSupportedTypes struct {
	URI                string `json:"uri" validate:"required"`
	Scope              Scope  `json:"scope,omitempty"`
	ReturnEmptyTypes   bool   `json:"returnEmptyTypes,omitempty"`
	CountObjects       bool   `json:"countObjects,omitempty"`
}

type GetSupportedTypesResponse struct {
	SupportedTypes []SupportedType `json:"supportedTypes"`
}
