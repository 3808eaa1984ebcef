package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/archlens/archlens-backend/internal/analysis/domain"
)

var (
	// ErrDuplicateID marks a fact model declaring the same service or
	// database id twice. Fatal to the whole run.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrDanglingReference marks an edge, database ref, or trace step
	// pointing at an id the fact model never declared. Fatal.
	ErrDanglingReference = errors.New("dangling reference")
)

// Topology is the validated, immutable directed multigraph of one analysis
// run. All index slices are sorted so that iterating the same fact model
// twice yields identical orderings.
type Topology struct {
	services  map[string]domain.Service
	databases map[string]domain.Database
	edges     []domain.Edge
	traces    []domain.Trace

	serviceIDs  []string
	databaseIDs []string

	out      map[string][]int // service id -> indexes into edges
	in       map[string][]int
	dbOwners map[string][]string // database id -> sorted owning service ids

	lacksEndpointVersioning bool
}

// Build validates referential integrity and produces the topology.
// Violations fail with ErrDuplicateID or ErrDanglingReference naming the
// offending id; nothing downstream of a failed build runs.
func Build(facts *domain.FactModel) (*Topology, error) {
	if facts == nil {
		return nil, fmt.Errorf("graph: fact model is nil")
	}

	t := &Topology{
		services:                make(map[string]domain.Service, len(facts.Services)),
		databases:               make(map[string]domain.Database, len(facts.Databases)),
		edges:                   make([]domain.Edge, 0, len(facts.Edges)),
		traces:                  facts.Traces,
		out:                     make(map[string][]int),
		in:                      make(map[string][]int),
		dbOwners:                make(map[string][]string),
		lacksEndpointVersioning: facts.LacksEndpointVersioning,
	}

	for _, s := range facts.Services {
		if _, ok := t.services[s.ID]; ok {
			return nil, fmt.Errorf("%w: service %q", ErrDuplicateID, s.ID)
		}
		t.services[s.ID] = s
		t.serviceIDs = append(t.serviceIDs, s.ID)
	}
	for _, d := range facts.Databases {
		if _, ok := t.databases[d.ID]; ok {
			return nil, fmt.Errorf("%w: database %q", ErrDuplicateID, d.ID)
		}
		t.databases[d.ID] = d
		t.databaseIDs = append(t.databaseIDs, d.ID)
	}
	sort.Strings(t.serviceIDs)
	sort.Strings(t.databaseIDs)

	for _, e := range facts.Edges {
		if _, ok := t.services[e.Caller]; !ok {
			return nil, fmt.Errorf("%w: edge caller %q", ErrDanglingReference, e.Caller)
		}
		if _, ok := t.services[e.Callee]; !ok {
			return nil, fmt.Errorf("%w: edge callee %q", ErrDanglingReference, e.Callee)
		}
		idx := len(t.edges)
		t.edges = append(t.edges, e)
		t.out[e.Caller] = append(t.out[e.Caller], idx)
		t.in[e.Callee] = append(t.in[e.Callee], idx)
	}

	// databaseRefs have set semantics; a repeated ref is collapsed, an
	// unknown one is fatal.
	for _, id := range t.serviceIDs {
		seen := map[string]bool{}
		for _, ref := range t.services[id].DatabaseRefs {
			if _, ok := t.databases[ref]; !ok {
				return nil, fmt.Errorf("%w: service %q references database %q", ErrDanglingReference, id, ref)
			}
			if !seen[ref] {
				seen[ref] = true
				t.dbOwners[ref] = append(t.dbOwners[ref], id)
			}
		}
	}
	for _, owners := range t.dbOwners {
		sort.Strings(owners)
	}

	for _, tr := range facts.Traces {
		for _, st := range tr.Steps {
			if _, ok := t.services[st.Caller]; !ok {
				return nil, fmt.Errorf("%w: trace %q step caller %q", ErrDanglingReference, tr.RequestID, st.Caller)
			}
			if _, ok := t.services[st.Callee]; !ok {
				return nil, fmt.Errorf("%w: trace %q step callee %q", ErrDanglingReference, tr.RequestID, st.Callee)
			}
		}
	}

	return t, nil
}

// ServiceIDs returns every service id sorted lexicographically. Callers
// must not mutate the returned slice.
func (t *Topology) ServiceIDs() []string { return t.serviceIDs }

// DatabaseIDs returns every database id sorted lexicographically.
func (t *Topology) DatabaseIDs() []string { return t.databaseIDs }

func (t *Topology) Service(id string) (domain.Service, bool) {
	s, ok := t.services[id]
	return s, ok
}

func (t *Topology) Database(id string) (domain.Database, bool) {
	d, ok := t.databases[id]
	return d, ok
}

// HasEntity reports whether id names a known service or database.
func (t *Topology) HasEntity(id string) bool {
	if _, ok := t.services[id]; ok {
		return true
	}
	_, ok := t.databases[id]
	return ok
}

// Edges returns all edges in ingestion order. Read-only.
func (t *Topology) Edges() []domain.Edge { return t.edges }

func (t *Topology) Edge(i int) domain.Edge { return t.edges[i] }

// OutEdges returns indexes into Edges() for edges leaving id.
func (t *Topology) OutEdges(id string) []int { return t.out[id] }

// InEdges returns indexes into Edges() for edges entering id.
func (t *Topology) InEdges(id string) []int { return t.in[id] }

// DatabaseOwners returns the sorted service ids holding id in their
// database refs.
func (t *Topology) DatabaseOwners(id string) []string { return t.dbOwners[id] }

// Traces returns the observed request traces, already validated.
func (t *Topology) Traces() []domain.Trace { return t.traces }

func (t *Topology) LacksEndpointVersioning() bool { return t.lacksEndpointVersioning }

// ServiceCount returns the number of services in the topology.
func (t *Topology) ServiceCount() int { return len(t.serviceIDs) }
