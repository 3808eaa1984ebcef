package domain

// Service is one deployable unit as reported by the topology extractor.
// Immutable for the duration of one analysis run.
type Service struct {
	ID            string   `json:"id" yaml:"id"`
	EndpointCount int      `json:"endpoint_count" yaml:"endpoint_count"`
	LinesOfCode   int      `json:"lines_of_code" yaml:"lines_of_code"`
	Capabilities  []string `json:"capabilities" yaml:"capabilities"`
	DatabaseRefs  []string `json:"database_refs" yaml:"database_refs"`
	TeamOwners    []string `json:"team_owners" yaml:"team_owners"`
	// AllEndpointsCRUD is the extractor's classification that every endpoint
	// of this service is plain create/read/update/delete.
	AllEndpointsCRUD bool `json:"all_endpoints_crud" yaml:"all_endpoints_crud"`
}

type Database struct {
	ID   string       `json:"id" yaml:"id"`
	Kind DatabaseKind `json:"kind" yaml:"kind"`
}

// Edge is a directed dependency from caller service to callee service.
// Multiple edges may exist between the same pair with different protocols.
type Edge struct {
	Caller            string   `json:"caller" yaml:"caller"`
	Callee            string   `json:"callee" yaml:"callee"`
	Protocol          Protocol `json:"protocol" yaml:"protocol"`
	CallCountObserved int64    `json:"call_count_observed,omitempty" yaml:"call_count_observed,omitempty"`
	LatencyMsP50      float64  `json:"latency_ms_p50,omitempty" yaml:"latency_ms_p50,omitempty"`
}

// TraceStep is one edge traversal inside an observed request. Steps sharing
// a ParallelGroup were issued concurrently; a group change between adjacent
// steps marks true serialization.
type TraceStep struct {
	Caller        string  `json:"caller" yaml:"caller"`
	Callee        string  `json:"callee" yaml:"callee"`
	StartOffsetMs float64 `json:"start_offset_ms" yaml:"start_offset_ms"`
	DurationMs    float64 `json:"duration_ms" yaml:"duration_ms"`
	ParallelGroup string  `json:"parallel_group" yaml:"parallel_group"`
}

type Trace struct {
	RequestID string      `json:"request_id" yaml:"request_id"`
	Steps     []TraceStep `json:"steps" yaml:"steps"`
}

// FactModel is the validated input of one analysis run: everything the
// engine knows about the system under inspection.
type FactModel struct {
	Services  []Service  `json:"services" yaml:"services"`
	Databases []Database `json:"databases" yaml:"databases"`
	Edges     []Edge     `json:"edges" yaml:"edges"`
	Traces    []Trace    `json:"traces" yaml:"traces"`
	// LacksEndpointVersioning is the extractor's assertion that no service
	// exposes a version-qualified endpoint naming convention. It is a
	// supplied fact, never inferred structurally; when the extractor does
	// not assert it, the corresponding monolith signal stays silent.
	LacksEndpointVersioning bool `json:"lacks_endpoint_versioning" yaml:"lacks_endpoint_versioning"`
}
