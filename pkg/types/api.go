package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: not found
	Error string `json:"error" example:"not found"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

// ManagerStatus summarizes one registered manager for /status.
type ManagerStatus struct {
	// Manager name (diagnostic label, not a key).
	// example: assets
	Name string `json:"name" example:"assets"`
	// Lifecycle phase of the manager.
	// example: initialized
	Phase string `json:"phase" example:"initialized"`
	// Last observed preload or release progress in [0, 1].
	// example: 0.5
	Progress float64 `json:"progress" example:"0.5"`
	// True when the orchestrator isolated this manager after a fault.
	// example: false
	Failed bool `json:"failed" example:"false"`
	// Fault message, if any.
	Fault string `json:"fault,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Unique id of this run.
	// example: 5f1c2d1e-8a7b-4f7e-9d0c-2b1f3a4c5d6e
	RunID string `json:"run_id" example:"5f1c2d1e-8a7b-4f7e-9d0c-2b1f3a4c5d6e"`
	// Orchestrator stage (idle, preloading, running, releasing, stopped).
	// example: running
	Stage string `json:"stage" example:"running"`
	// Fault policy in effect.
	// example: isolate
	Policy string `json:"policy" example:"isolate"`
	// Last stepped frame number.
	// example: 1200
	Frame int `json:"frame" example:"1200"`
	// Scaled time of the last frame in seconds.
	// example: 20.0
	Time float64 `json:"time" example:"20.0"`
	// Aggregate progress of the current stage in [0, 1].
	// example: 1
	Progress float64 `json:"progress" example:"1"`
	// Seconds since Start.
	// example: 20
	UptimeSeconds float64 `json:"uptime_seconds" example:"20"`
	// Registered managers in registration order.
	Managers []ManagerStatus `json:"managers"`
	// Set when a fault aborted the run.
	Error string `json:"error,omitempty"`
}
