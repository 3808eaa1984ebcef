package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/archlens/archlens-backend/internal/analysis/domain"
)

// ErrInvalidConfig marks a threshold configuration rejected before any
// graph work begins.
var ErrInvalidConfig = errors.New("invalid analysis config")

// Thresholds carries every tunable rule parameter. It is passed by value
// into each detector call; detectors never read thresholds from globals or
// the environment.
type Thresholds struct {
	// GodService fires when all three hold:
	// endpointCount > GodServiceEndpointThreshold,
	// distinct capabilities >= GodServiceCapabilityThreshold,
	// linesOfCode > GodServiceLOCThreshold.
	GodServiceEndpointThreshold   int
	GodServiceCapabilityThreshold int
	GodServiceLOCThreshold        int

	// ChattyInterface fires per trace when sequential depth exceeds
	// ChattySequentialDepthThreshold or total latency exceeds
	// ChattyTotalLatencyMsThreshold.
	ChattySequentialDepthThreshold int
	ChattyTotalLatencyMsThreshold  float64

	// SharedDatabase fires when a database has at least this many owners.
	SharedDatabaseOwnerThreshold int

	// DistributedMonolith fires when at least this many of its four
	// signals hold within one run.
	DistributedMonolithMinSignals int

	// Signal (b) of DistributedMonolith: the share of possible directed
	// service pairs connected by a sync edge must exceed this density.
	SyncDensityThreshold float64

	// Capability tags that mark a service as bypassing an abstraction
	// layer (extractor-supplied classification).
	InfraMarkerTags []string

	// SeverityOverrides replaces the built-in severity of a pattern type.
	SeverityOverrides map[domain.PatternType]domain.Severity
}

// Default returns the documented baseline thresholds.
func Default() Thresholds {
	return Thresholds{
		GodServiceEndpointThreshold:    20,
		GodServiceCapabilityThreshold:  3,
		GodServiceLOCThreshold:         10000,
		ChattySequentialDepthThreshold: 10,
		ChattyTotalLatencyMsThreshold:  1000,
		SharedDatabaseOwnerThreshold:   2,
		DistributedMonolithMinSignals:  3,
		SyncDensityThreshold:           0.5,
		InfraMarkerTags:                []string{"direct-http-client", "direct-sql"},
	}
}

// FromEnv returns Default overlaid with any DETECT_* variables set in the
// process environment. Unset or malformed values keep the default. Detectors
// still receive the result by value; the environment is read once here, at
// startup, never per call.
func FromEnv() Thresholds {
	t := Default()
	t.GodServiceEndpointThreshold = envInt("DETECT_GOD_ENDPOINTS", t.GodServiceEndpointThreshold)
	t.GodServiceCapabilityThreshold = envInt("DETECT_GOD_CAPABILITIES", t.GodServiceCapabilityThreshold)
	t.GodServiceLOCThreshold = envInt("DETECT_GOD_LOC", t.GodServiceLOCThreshold)
	t.ChattySequentialDepthThreshold = envInt("DETECT_CHATTY_DEPTH", t.ChattySequentialDepthThreshold)
	t.ChattyTotalLatencyMsThreshold = envFloat("DETECT_CHATTY_LATENCY_MS", t.ChattyTotalLatencyMsThreshold)
	t.SharedDatabaseOwnerThreshold = envInt("DETECT_SHARED_DB_OWNERS", t.SharedDatabaseOwnerThreshold)
	t.DistributedMonolithMinSignals = envInt("DETECT_MONOLITH_MIN_SIGNALS", t.DistributedMonolithMinSignals)
	t.SyncDensityThreshold = envFloat("DETECT_SYNC_DENSITY", t.SyncDensityThreshold)
	return t
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

// Validate rejects senseless thresholds eagerly, before the graph builder
// runs. All failures wrap ErrInvalidConfig.
func (t Thresholds) Validate() error {
	if t.GodServiceEndpointThreshold < 0 {
		return fmt.Errorf("%w: god service endpoint threshold is negative", ErrInvalidConfig)
	}
	if t.GodServiceCapabilityThreshold < 0 {
		return fmt.Errorf("%w: god service capability threshold is negative", ErrInvalidConfig)
	}
	if t.GodServiceLOCThreshold < 0 {
		return fmt.Errorf("%w: god service lines-of-code threshold is negative", ErrInvalidConfig)
	}
	if t.ChattySequentialDepthThreshold < 0 {
		return fmt.Errorf("%w: chatty sequential depth threshold is negative", ErrInvalidConfig)
	}
	if t.ChattyTotalLatencyMsThreshold < 0 {
		return fmt.Errorf("%w: chatty total latency threshold is negative", ErrInvalidConfig)
	}
	if t.SharedDatabaseOwnerThreshold < 1 {
		return fmt.Errorf("%w: shared database owner threshold must be at least 1", ErrInvalidConfig)
	}
	if t.DistributedMonolithMinSignals < 1 {
		return fmt.Errorf("%w: distributed monolith min signals must be at least 1", ErrInvalidConfig)
	}
	if t.SyncDensityThreshold < 0 || t.SyncDensityThreshold > 1 {
		return fmt.Errorf("%w: sync density threshold must be within [0,1]", ErrInvalidConfig)
	}
	for p, s := range t.SeverityOverrides {
		if !p.IsValid() {
			return fmt.Errorf("%w: severity override for unknown pattern %q", ErrInvalidConfig, p)
		}
		if !s.IsValid() {
			return fmt.Errorf("%w: severity override for %q has unknown severity %q", ErrInvalidConfig, p, s)
		}
	}
	return nil
}
