package api

// HealthResponse is the /healthz response body.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the /readyz response body.
type ReadyResponse struct {
	Ready   bool     `json:"ready"`
	Reasons []string `json:"reasons,omitempty"`
}

// ErrorResponse is the generic error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
