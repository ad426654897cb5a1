package types

// StartTransaction opens a transaction scoping subsequent Store writes
// against one or more dataspaces. A session may have at most one active
// transaction; starting a second fails locally without a round trip.
type StartTransaction struct {
	DataspaceURIs []string `json:"dataspaceUris" validate:"required,min=1"`
	ReadOnly      bool     `json:"readOnly,omitempty"`
	Message       string   `json:"message,omitempty"`
}

type StartTransactionResponse struct {
	TransactionUUID string `json:"transactionUuid"`
	Successful      bool   `json:"successful"`
	FailureReason   string `json:"failureReason,omitempty"`
}

type CommitTransaction struct {
	TransactionUUID string `json:"transactionUuid" validate:"required"`
}

type CommitTransactionResponse struct {
	Successful    bool   `json:"successful"`
	FailureReason string `json:"failureReason,omitempty"`
}

type RollbackTransaction struct {
	TransactionUUID string `json:"transactionUuid" validate:"required"`
}

type RollbackTransactionResponse struct {
	Successful    bool   `json:"successful"`
	FailureReason string `json:"failureReason,omitempty"`
}
