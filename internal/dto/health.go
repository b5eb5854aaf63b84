package dto

// HealthResponse represents the health/readiness check payload
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}
