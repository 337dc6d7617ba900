package main

// runReport is the JSON document the run command writes. Consumers key
// on SchemaVersion, so shape changes bump it.
type runReport struct {
	SchemaVersion int               `json:"schema_version"`
	RunID         string            `json:"run_id"`
	StartedAt     string            `json:"started_at"`
	FinishedAt    string            `json:"finished_at"`
	Target        reportTarget      `json:"target"`
	Profile       reportProfile     `json:"profile"`
	Results       []endpointSummary `json:"results"`
	Thresholds    []thresholdCheck  `json:"thresholds"`
	Notes         string            `json:"notes"`
}

type reportTarget struct {
	BaseURL string `json:"base_url"`
}

type reportProfile struct {
	Name            string `json:"name"`
	VUs             int    `json:"vus"`
	DurationSeconds int    `json:"duration_seconds"`
}

type endpointSummary struct {
	Endpoint     string  `json:"endpoint"`
	Count        int     `json:"count"`
	Errors       int     `json:"errors"`
	ErrorRatePct float64 `json:"error_rate_pct"`
	P50MS        int     `json:"p50_ms"`
	P95MS        int     `json:"p95_ms"`
	P99MS        int     `json:"p99_ms"`
}

type thresholdCheck struct {
	Name     string `json:"name"`
	Limit    int    `json:"limit"`
	Observed int    `json:"observed"`
	OK       bool   `json:"ok"`
}
