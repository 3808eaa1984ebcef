package parser

import (
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/archlens/archlens-backend/internal/analysis/domain"
)

// Document is the wire shape of one analysis request: the fact model
// itself plus optional per-rule threshold overrides.
type Document struct {
	domain.FactModel `yaml:",inline"`

	Config *ThresholdOverrides `json:"config,omitempty" yaml:"config,omitempty"`
}

// ThresholdOverrides mirrors config.Thresholds with every field optional;
// absent fields keep their defaults.
type ThresholdOverrides struct {
	GodServiceEndpointThreshold    *int     `json:"god_service_endpoint_threshold,omitempty" yaml:"god_service_endpoint_threshold,omitempty"`
	GodServiceCapabilityThreshold  *int     `json:"god_service_capability_threshold,omitempty" yaml:"god_service_capability_threshold,omitempty"`
	GodServiceLOCThreshold         *int     `json:"god_service_loc_threshold,omitempty" yaml:"god_service_loc_threshold,omitempty"`
	ChattySequentialDepthThreshold *int     `json:"chatty_sequential_depth_threshold,omitempty" yaml:"chatty_sequential_depth_threshold,omitempty"`
	ChattyTotalLatencyMsThreshold  *float64 `json:"chatty_total_latency_ms_threshold,omitempty" yaml:"chatty_total_latency_ms_threshold,omitempty"`
	SharedDatabaseOwnerThreshold   *int     `json:"shared_database_owner_threshold,omitempty" yaml:"shared_database_owner_threshold,omitempty"`
	DistributedMonolithMinSignals  *int     `json:"distributed_monolith_min_signals,omitempty" yaml:"distributed_monolith_min_signals,omitempty"`
	SyncDensityThreshold           *float64 `json:"sync_density_threshold,omitempty" yaml:"sync_density_threshold,omitempty"`

	InfraMarkerTags   []string          `json:"infra_marker_tags,omitempty" yaml:"infra_marker_tags,omitempty"`
	SeverityOverrides map[string]string `json:"severity_overrides,omitempty" yaml:"severity_overrides,omitempty"`
}

func ParseJSON(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseJSONBytes(b)
}

func ParseJSONBytes(b []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func ParseYAML(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseYAMLBytes(b)
}

func ParseYAMLBytes(b []byte) (*Document, error) {
	var d Document
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
