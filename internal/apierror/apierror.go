// Package apierror holds the JSON envelopes of every 4xx/5xx response.
// Storage errors and stack traces never reach these bodies.
package apierror

// APIError is the body of every error response. Codigo is the machine
// readable error kind (not_found, validation, conflict, transient) and is
// omitted for transport-level errors such as malformed JSON.
type APIError struct {
	Detail string `json:"detail"`
	Codigo string `json:"codigo,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ConCodigo builds an APIError tagged with a service error kind.
func ConCodigo(codigo, msg string) *APIError {
	return &APIError{Detail: msg, Codigo: codigo}
}

// ValidationError lists the failing validator tag per request field.
type ValidationError struct {
	Detail string            `json:"detail"`
	Codigo string            `json:"codigo"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Codigo: "validation", Fields: fields}
}
