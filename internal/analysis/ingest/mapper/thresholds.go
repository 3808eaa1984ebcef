package mapper

import (
	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/ingest/parser"
)

// MergeThresholds lays document-supplied overrides over the base
// thresholds. Absent fields keep the base value; the merged result still
// goes through config.Validate before any graph work.
func MergeThresholds(base config.Thresholds, o *parser.ThresholdOverrides) config.Thresholds {
	if o == nil {
		return base
	}
	if o.GodServiceEndpointThreshold != nil {
		base.GodServiceEndpointThreshold = *o.GodServiceEndpointThreshold
	}
	if o.GodServiceCapabilityThreshold != nil {
		base.GodServiceCapabilityThreshold = *o.GodServiceCapabilityThreshold
	}
	if o.GodServiceLOCThreshold != nil {
		base.GodServiceLOCThreshold = *o.GodServiceLOCThreshold
	}
	if o.ChattySequentialDepthThreshold != nil {
		base.ChattySequentialDepthThreshold = *o.ChattySequentialDepthThreshold
	}
	if o.ChattyTotalLatencyMsThreshold != nil {
		base.ChattyTotalLatencyMsThreshold = *o.ChattyTotalLatencyMsThreshold
	}
	if o.SharedDatabaseOwnerThreshold != nil {
		base.SharedDatabaseOwnerThreshold = *o.SharedDatabaseOwnerThreshold
	}
	if o.DistributedMonolithMinSignals != nil {
		base.DistributedMonolithMinSignals = *o.DistributedMonolithMinSignals
	}
	if o.SyncDensityThreshold != nil {
		base.SyncDensityThreshold = *o.SyncDensityThreshold
	}
	if o.InfraMarkerTags != nil {
		base.InfraMarkerTags = append([]string(nil), o.InfraMarkerTags...)
	}
	if len(o.SeverityOverrides) > 0 {
		merged := make(map[domain.PatternType]domain.Severity, len(o.SeverityOverrides))
		for p, s := range base.SeverityOverrides {
			merged[p] = s
		}
		for p, s := range o.SeverityOverrides {
			merged[domain.PatternType(p)] = domain.Severity(s)
		}
		base.SeverityOverrides = merged
	}
	return base
}
