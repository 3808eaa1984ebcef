package scoring

import (
	"sort"

	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
)

// mergeOverlap is the Jaccard similarity at which two candidates of the
// same pattern are considered the same incident.
const mergeOverlap = 0.5

type cluster struct {
	pattern           domain.PatternType
	affected          []string // first-seen order
	affectedSet       map[string]bool
	snapshot          map[string]float64
	signalsPresent    int
	signalsConsidered int
}

func newCluster(c domain.FindingCandidate) *cluster {
	cl := &cluster{
		pattern:           c.PatternType,
		affectedSet:       map[string]bool{},
		snapshot:          map[string]float64{},
		signalsPresent:    c.SignalsPresent,
		signalsConsidered: c.SignalsConsidered,
	}
	cl.union(c)
	return cl
}

func (cl *cluster) union(c domain.FindingCandidate) {
	for _, id := range c.AffectedEntities {
		if !cl.affectedSet[id] {
			cl.affectedSet[id] = true
			cl.affected = append(cl.affected, id)
		}
	}
	for k, v := range c.MetricSnapshot {
		if cur, ok := cl.snapshot[k]; !ok || v > cur {
			cl.snapshot[k] = v
		}
	}
	if c.SignalsPresent > cl.signalsPresent {
		cl.signalsPresent = c.SignalsPresent
	}
	if c.SignalsConsidered > cl.signalsConsidered {
		cl.signalsConsidered = c.SignalsConsidered
	}
}

func (cl *cluster) confidence() float64 {
	if cl.signalsConsidered <= 0 {
		return 1.0
	}
	conf := float64(cl.signalsPresent) / float64(cl.signalsConsidered)
	if conf > 1 {
		conf = 1
	}
	return conf
}

// Aggregate merges overlapping same-pattern candidates into findings,
// assigns severity and confidence, and orders the result Critical to Low
// with ties broken by the first affected entity then the pattern name.
// Two runs over the same candidates produce the identical slice.
func Aggregate(cands []domain.FindingCandidate, cfg config.Thresholds) []domain.Finding {
	var clusters []*cluster
	for _, c := range cands {
		merged := false
		for _, cl := range clusters {
			if cl.pattern != c.PatternType {
				continue
			}
			if jaccard(cl.affectedSet, c.AffectedEntities) < mergeOverlap {
				continue
			}
			cl.union(c)
			merged = true
			break
		}
		if !merged {
			clusters = append(clusters, newCluster(c))
		}
	}

	findings := make([]domain.Finding, 0, len(clusters))
	for _, cl := range clusters {
		findings = append(findings, domain.Finding{
			PatternType:      cl.pattern,
			Severity:         SeverityFor(cl.pattern, cfg),
			Confidence:       cl.confidence(),
			AffectedEntities: cl.affected,
			MetricSnapshot:   cl.snapshot,
		})
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if ri, rj := findings[i].Severity.Rank(), findings[j].Severity.Rank(); ri != rj {
			return ri > rj
		}
		if ai, aj := firstEntity(findings[i]), firstEntity(findings[j]); ai != aj {
			return ai < aj
		}
		return findings[i].PatternType < findings[j].PatternType
	})
	return findings
}

func firstEntity(f domain.Finding) string {
	if len(f.AffectedEntities) == 0 {
		return ""
	}
	return f.AffectedEntities[0]
}

func jaccard(set map[string]bool, other []string) float64 {
	if len(set) == 0 && len(other) == 0 {
		return 1
	}
	inter, union := 0, len(set)
	seen := map[string]bool{}
	for _, id := range other {
		if seen[id] {
			continue
		}
		seen[id] = true
		if set[id] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}
