package export

import (
	"fmt"
	"strings"

	"github.com/archlens/archlens-backend/internal/analysis/graph"
)

// ToDOT renders the topology as a Graphviz digraph for external viewers:
// services as rounded boxes, databases as cylinders, call edges labeled
// with their protocol and database ownership drawn dashed. Output is
// deterministic: nodes in sorted id order, call edges in ingestion order.
func ToDOT(t *graph.Topology, title string) string {
	var b strings.Builder
	b.WriteString("digraph topology {\n  rankdir=LR;\n  node [shape=box, style=rounded];\n")
	if title != "" {
		fmt.Fprintf(&b, "  labelloc=\"t\"; label=\"%s\"; fontname=\"Helvetica\";\n", title)
	}

	for _, id := range t.ServiceIDs() {
		fmt.Fprintf(&b, "  \"%s\" [label=\"%s\", shape=box, style=\"rounded,filled\", fillcolor=\"#eef6ff\"];\n", id, id)
	}
	for _, id := range t.DatabaseIDs() {
		db, _ := t.Database(id)
		label := id
		if db.Kind != "" {
			label = fmt.Sprintf(`%s\n(%s)`, id, db.Kind)
		}
		fmt.Fprintf(&b, "  \"%s\" [label=\"%s\", shape=cylinder, style=filled, fillcolor=\"#fff3cd\"];\n", id, label)
	}

	for i, e := range t.Edges() {
		lbl := string(e.Protocol)
		if e.CallCountObserved > 0 {
			lbl = fmt.Sprintf("%s, %d calls", lbl, e.CallCountObserved)
		}
		if e.LatencyMsP50 > 0 {
			lbl = fmt.Sprintf("%s, p50 %.0fms", lbl, e.LatencyMsP50)
		}
		fmt.Fprintf(&b, "  \"%s\" -> \"%s\" [label=\"%s\", tooltip=\"edge#%d\"];\n", e.Caller, e.Callee, lbl, i)
	}

	for _, dbID := range t.DatabaseIDs() {
		for _, owner := range t.DatabaseOwners(dbID) {
			fmt.Fprintf(&b, "  \"%s\" -> \"%s\" [style=dashed, arrowhead=none];\n", owner, dbID)
		}
	}

	b.WriteString("}\n")
	return b.String()
}
