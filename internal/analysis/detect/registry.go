package detect

import "sort"

var registered = map[string]Detector{}

// Register adds a detector to the registry. Detectors self-register from
// init() in the rules package; registering twice under one name replaces
// the earlier entry.
func Register(d Detector) {
	registered[d.Name()] = d
}

// All returns the registered detectors sorted by name, so every run visits
// them in the same order.
func All() []Detector {
	names := make([]string, 0, len(registered))
	for n := range registered {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]Detector, 0, len(names))
	for _, n := range names {
		out = append(out, registered[n])
	}
	return out
}
