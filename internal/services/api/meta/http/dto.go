package http

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"gscchat-api"`
	Started string `json:"started" example:"2026-10-01T13:00:00Z"`
	Now     string `json:"now"     example:"2026-10-01T13:05:00Z"`
}

// Probe status values
const (
	probeOK      = "ok"
	probeFail    = "fail"
	probeSkipped = "skipped"
	probeUnknown = "unknown"
)

// ReadyCheck is one backend probe
type ReadyCheck struct {
	Name   string `json:"name"            example:"ch"`
	Status string `json:"status"          example:"ok"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:9000: connect: connection refused"`
}

// ReadyResponse is ok when the selected source answers, fail when it does not,
// degraded when only the other backend is down or no source is selected
type ReadyResponse struct {
	Status string       `json:"status"           example:"ok"`
	Source string       `json:"source,omitempty" example:"ch"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"              example:"2026-10-01T13:05:00Z"`
}

// ServiceResponse carries uptime in whole seconds
type ServiceResponse struct {
	Name    string `json:"name"    example:"gscchat-api"`
	Started string `json:"started" example:"2026-10-01T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// SourceResponse names the metrics backend the insights service reads
type SourceResponse struct {
	Kind      string `json:"kind"      example:"clickhouse"`
	Table     string `json:"table"     example:"search_analytics"`
	Connected bool   `json:"connected" example:"true"`
}
