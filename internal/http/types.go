package http

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// CompressRequest is the request body for POST /api/v1/compress.
type CompressRequest struct {
	Content          string  `json:"content"`
	Granularity      int     `json:"granularity"`
	CompressionLevel int     `json:"compression_level"`
	AuxText          string  `json:"aux_text,omitempty"`
	AuxWeight        float64 `json:"aux_weight,omitempty"`
	IncludeTrace     *bool   `json:"include_trace,omitempty"`
}

// CompressResponse is the response body for POST /api/v1/compress.
type CompressResponse struct {
	Content  string  `json:"content"`
	Trace    string  `json:"trace"`
	Outcome  string  `json:"outcome"`
	Units    int     `json:"units"`
	Embedded int     `json:"embedded"`
	Selected int     `json:"selected"`
	Ratio    float64 `json:"ratio"`
	Error    string  `json:"error,omitempty"`
}

// ExpandRequest is the request body for POST /api/v1/expand.
type ExpandRequest struct {
	Text         string `json:"text"`
	IncludeTrace *bool  `json:"include_trace,omitempty"`
}

// ExpandResponse is the response body for POST /api/v1/expand.
type ExpandResponse struct {
	Text       string            `json:"text"`
	References []ReferenceResult `json:"references"`
	Counts     ExpandCounts      `json:"counts"`
}

// ReferenceResult reports one expanded reference.
type ReferenceResult struct {
	Name     string `json:"name"`
	Resolved bool   `json:"resolved"`
	Outcome  string `json:"outcome,omitempty"`
	Trace    string `json:"trace,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ExpandCounts summarizes an expansion.
type ExpandCounts struct {
	References int `json:"references"`
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`
	Compressed int `json:"compressed"`
	Failed     int `json:"failed"` // compression ran but a dependency failed
}
