package mapper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/ingest/mapper"
	"github.com/archlens/archlens-backend/internal/analysis/ingest/parser"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func TestMergeThresholdsNilKeepsBase(t *testing.T) {
	base := config.Default()
	got := mapper.MergeThresholds(base, nil)
	assert.Equal(t, base, got)
}

func TestMergeThresholdsAppliesOnlySetFields(t *testing.T) {
	base := config.Default()
	got := mapper.MergeThresholds(base, &parser.ThresholdOverrides{
		GodServiceEndpointThreshold:   intp(30),
		ChattyTotalLatencyMsThreshold: floatp(750),
		SyncDensityThreshold:          floatp(0.8),
	})

	assert.Equal(t, 30, got.GodServiceEndpointThreshold)
	assert.Equal(t, 750.0, got.ChattyTotalLatencyMsThreshold)
	assert.Equal(t, 0.8, got.SyncDensityThreshold)

	// Everything untouched keeps the default.
	assert.Equal(t, base.GodServiceCapabilityThreshold, got.GodServiceCapabilityThreshold)
	assert.Equal(t, base.GodServiceLOCThreshold, got.GodServiceLOCThreshold)
	assert.Equal(t, base.SharedDatabaseOwnerThreshold, got.SharedDatabaseOwnerThreshold)
	assert.Equal(t, base.DistributedMonolithMinSignals, got.DistributedMonolithMinSignals)
	assert.Equal(t, base.InfraMarkerTags, got.InfraMarkerTags)
}

func TestMergeThresholdsReplacesMarkerTags(t *testing.T) {
	tags := []string{"legacy-soap"}
	got := mapper.MergeThresholds(config.Default(), &parser.ThresholdOverrides{
		InfraMarkerTags: tags,
	})
	require.Equal(t, []string{"legacy-soap"}, got.InfraMarkerTags)

	// The merged config owns its copy.
	tags[0] = "tampered"
	assert.Equal(t, "legacy-soap", got.InfraMarkerTags[0])
}

func TestMergeThresholdsSeverityOverrides(t *testing.T) {
	base := config.Default()
	base.SeverityOverrides = map[domain.PatternType]domain.Severity{
		domain.PatternGodService: domain.SeverityCritical,
	}

	got := mapper.MergeThresholds(base, &parser.ThresholdOverrides{
		SeverityOverrides: map[string]string{
			"anemic_service": "LOW",
			"god_service":    "MEDIUM",
		},
	})

	assert.Equal(t, domain.SeverityLow, got.SeverityOverrides[domain.PatternAnemicService])
	assert.Equal(t, domain.SeverityMedium, got.SeverityOverrides[domain.PatternGodService],
		"document overrides win over base overrides")
	require.NoError(t, got.Validate())
}

func TestMergeThresholdsZeroIsASetValue(t *testing.T) {
	got := mapper.MergeThresholds(config.Default(), &parser.ThresholdOverrides{
		ChattySequentialDepthThreshold: intp(0),
	})
	assert.Equal(t, 0, got.ChattySequentialDepthThreshold,
		"an explicit zero override is distinct from an absent field")
}
