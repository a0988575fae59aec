package depgraph

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ExportDOT generates a Graphviz DOT representation of the graph.
func ExportDOT(g *Graph) string {
	var b strings.Builder
	b.WriteString("digraph declarations {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\" fontsize=10];\n\n")

	// Group nodes by package using subgraphs
	packages, names := groupByPackage(g.Nodes)
	for _, pkg := range names {
		b.WriteString(fmt.Sprintf("  subgraph cluster_%s {\n", sanitizeID(pkg)))
		b.WriteString(fmt.Sprintf("    label=\"%s\";\n", pkg))
		b.WriteString("    style=dashed;\n")
		b.WriteString("    color=\"#58a6ff\";\n")
		for _, n := range packages[pkg] {
			b.WriteString(fmt.Sprintf("    \"%s\" [label=\"%s\" shape=%s style=filled fillcolor=\"%s\"];\n",
				n.ID, n.Name, nodeShape(n.Kind), nodeColor(n.Kind)))
		}
		b.WriteString("  }\n\n")
	}

	for _, e := range g.Edges {
		label := ""
		if l := edgeLabel(e); l != "" {
			label = fmt.Sprintf(" label=\"%s\"", l)
		}
		b.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [style=%s color=\"%s\"%s];\n",
			e.From, e.To, edgeStyle(e.Kind), edgeColor(e.Kind), label))
	}

	b.WriteString("}\n")
	return b.String()
}

// ExportMermaid generates a Mermaid diagram of the graph.
func ExportMermaid(g *Graph) string {
	var b strings.Builder
	b.WriteString("graph LR\n")

	packages, names := groupByPackage(g.Nodes)
	for _, pkg := range names {
		b.WriteString(fmt.Sprintf("  subgraph %s[\"%s\"]\n", sanitizeID("pkg_"+pkg), pkg))
		for _, n := range packages[pkg] {
			b.WriteString(fmt.Sprintf("    %s%s\n", sanitizeID(n.ID), mermaidNodeShape(n)))
		}
		b.WriteString("  end\n")
	}

	for _, e := range g.Edges {
		label := ""
		if l := edgeLabel(e); l != "" {
			label = "|" + l + "|"
		}
		b.WriteString(fmt.Sprintf("  %s %s%s %s\n",
			sanitizeID(e.From), mermaidArrow(e.Kind), label, sanitizeID(e.To)))
	}

	return b.String()
}

// ExportJSON serializes the graph to JSON.
func ExportJSON(g *Graph) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// FormatStats returns a human-readable summary of graph statistics.
func FormatStats(g *Graph) string {
	var b strings.Builder
	b.WriteString("Declaration Graph Statistics\n")
	b.WriteString("============================\n\n")
	b.WriteString(fmt.Sprintf("Nodes:       %d total\n", g.Stats.TotalNodes))
	b.WriteString(fmt.Sprintf("  Interfaces: %d\n", g.Stats.InterfaceCount))
	b.WriteString(fmt.Sprintf("  Enums:      %d\n", g.Stats.EnumCount))
	b.WriteString(fmt.Sprintf("  External:   %d\n", g.Stats.ExternalCount))
	b.WriteString(fmt.Sprintf("Edges:       %d total\n", g.Stats.TotalEdges))
	b.WriteString(fmt.Sprintf("Max Fan-Out: %d\n", g.Stats.MaxFanOut))
	b.WriteString(fmt.Sprintf("Max Fan-In:  %d\n", g.Stats.MaxFanIn))
	if g.Stats.HotspotNode != "" {
		b.WriteString(fmt.Sprintf("Hotspot:     %s\n", g.Stats.HotspotNode))
	}
	b.WriteString(fmt.Sprintf("Components:  %d\n", g.Stats.ConnectedComponents))

	if len(g.Stats.CyclicDeps) > 0 {
		b.WriteString(fmt.Sprintf("\nReference Cycles: %d\n", len(g.Stats.CyclicDeps)))
		for i, cycle := range g.Stats.CyclicDeps {
			b.WriteString(fmt.Sprintf("  %d: %s\n", i+1, strings.Join(cycle, " -> ")))
		}
	}

	if len(g.Stats.PackageFanOut) > 0 {
		pkgs := make([]string, 0, len(g.Stats.PackageFanOut))
		for pkg := range g.Stats.PackageFanOut {
			pkgs = append(pkgs, pkg)
		}
		sort.Strings(pkgs)
		b.WriteString("\nPackage Dependencies:\n")
		for _, pkg := range pkgs {
			b.WriteString(fmt.Sprintf("  %s: %d outgoing\n", pkg, g.Stats.PackageFanOut[pkg]))
		}
	}

	return b.String()
}

// groupByPackage returns nodes per package and the package names in sorted
// order, external last.
func groupByPackage(nodes []Node) (map[string][]Node, []string) {
	packages := make(map[string][]Node)
	for _, n := range nodes {
		packages[n.Package] = append(packages[n.Package], n)
	}
	names := make([]string, 0, len(packages))
	for pkg := range packages {
		if pkg != externalPackage {
			names = append(names, pkg)
		}
	}
	sort.Strings(names)
	if _, ok := packages[externalPackage]; ok {
		names = append(names, externalPackage)
	}
	return packages, names
}

func edgeLabel(e Edge) string {
	if e.Label != "" {
		return e.Label
	}
	if e.Kind == EdgeReferences && e.Weight > 1 {
		return fmt.Sprintf("%d fields", e.Weight)
	}
	return ""
}

func sanitizeID(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, s)
}

func nodeShape(kind NodeKind) string {
	switch kind {
	case NodeInterface:
		return "box"
	case NodeEnum:
		return "ellipse"
	default:
		return "note"
	}
}

func nodeColor(kind NodeKind) string {
	switch kind {
	case NodeInterface:
		return "#238636"
	case NodeEnum:
		return "#8957e5"
	default:
		return "#30363d"
	}
}

func edgeStyle(kind EdgeKind) string {
	if kind == EdgeExtends {
		return "bold"
	}
	return "solid"
}

func edgeColor(kind EdgeKind) string {
	switch kind {
	case EdgeExtends:
		return "#f85149"
	case EdgeReferences:
		return "#3fb950"
	default:
		return "#c9d1d9"
	}
}

func mermaidNodeShape(n Node) string {
	switch n.Kind {
	case NodeInterface:
		return fmt.Sprintf("[\"%s\"]", n.Name)
	case NodeEnum:
		return fmt.Sprintf("([\"%s\"])", n.Name)
	default:
		return fmt.Sprintf("{{\"%s\"}}", n.Name)
	}
}

func mermaidArrow(kind EdgeKind) string {
	if kind == EdgeExtends {
		return "==>"
	}
	return "-->"
}
