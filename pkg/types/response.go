package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// CreateResult is the body returned after a batch media ingestion.
type CreateResult struct {
	Message        string `json:"message"`
	RequestedFiles int    `json:"requestedFiles"`
	InsertedRows   int    `json:"insertedRows"`
}
