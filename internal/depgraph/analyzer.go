package depgraph

import (
	"path"
	"sort"

	"github.com/honghai9112k/tool-java2ts/internal/ir"
	"github.com/honghai9112k/tool-java2ts/internal/plugins/target/typescript"
)

var mapper = typescript.New()

// Analyze builds a dependency graph from resolved declarations. Declarations
// must carry their Location and mapped field types. When two declarations
// share a name the first one wins.
func Analyze(decls []*ir.Declaration) *Graph {
	g := &Graph{}

	declared := make(map[string]*ir.Declaration, len(decls))
	for _, d := range decls {
		if _, dup := declared[d.Name]; !dup {
			declared[d.Name] = d
		}
	}

	nodeMap := make(map[string]bool)
	addNode := func(n Node) {
		if !nodeMap[n.ID] {
			g.Nodes = append(g.Nodes, n)
			nodeMap[n.ID] = true
		}
	}
	ensureTarget := func(name string) string {
		if d, ok := declared[name]; ok {
			return nodeID(d)
		}
		id := "ext:" + name
		addNode(Node{ID: id, Name: name, Kind: NodeExternal, Package: externalPackage})
		return id
	}

	// 1. Declaration nodes
	for _, d := range decls {
		if declared[d.Name] != d {
			continue
		}
		n := Node{ID: nodeID(d), Name: d.Name, Kind: NodeInterface, Package: packageOf(d), Fields: len(d.Fields)}
		if d.Kind == ir.KindEnum {
			n.Kind = NodeEnum
			n.Fields = 0
			n.Metadata = map[string]string{"constants": itoa(len(d.Constants))}
		}
		if d.Location != "" {
			if n.Metadata == nil {
				n.Metadata = map[string]string{}
			}
			n.Metadata["location"] = d.Location
		}
		addNode(n)
	}

	// 2. Extends and references edges
	for _, d := range decls {
		if declared[d.Name] != d {
			continue
		}
		from := nodeID(d)
		if d.Super != "" {
			g.Edges = append(g.Edges, Edge{From: from, To: ensureTarget(d.Super), Kind: EdgeExtends})
		}

		weights := referenceWeights(d)
		for _, name := range d.Dependencies {
			if name == d.Super && weights[name] == 0 {
				continue
			}
			g.Edges = append(g.Edges, Edge{
				From:   from,
				To:     ensureTarget(name),
				Kind:   EdgeReferences,
				Weight: weights[name],
			})
		}
	}

	// 3. Compute stats
	g.computeStats()

	return g
}

func nodeID(d *ir.Declaration) string {
	return "decl:" + d.Name
}

// packageOf is the directory part of the declaration location, "." at the
// root.
func packageOf(d *ir.Declaration) string {
	if d.Location == "" {
		return "."
	}
	return path.Dir(d.Location)
}

// referenceWeights counts the fields whose type names each dependency.
func referenceWeights(d *ir.Declaration) map[string]int {
	weights := make(map[string]int)
	for _, f := range d.Fields {
		typ := f.Type
		if typ == "" {
			typ = f.SourceType
		}
		set := ir.NewDependencySet()
		mapper.CollectDependencies(typ, set)
		for _, name := range set.List() {
			weights[name]++
		}
	}
	return weights
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// computeStats computes graph metrics
func (g *Graph) computeStats() {
	g.Stats.TotalNodes = len(g.Nodes)
	g.Stats.TotalEdges = len(g.Edges)

	fanOut := make(map[string]int)
	fanIn := make(map[string]int)
	g.Stats.PackageFanOut = make(map[string]int)

	pkg := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		pkg[n.ID] = n.Package
		switch n.Kind {
		case NodeInterface:
			g.Stats.InterfaceCount++
		case NodeEnum:
			g.Stats.EnumCount++
		case NodeExternal:
			g.Stats.ExternalCount++
		}
	}

	for _, e := range g.Edges {
		fanOut[e.From]++
		fanIn[e.To]++
		if from, to := pkg[e.From], pkg[e.To]; from != to {
			g.Stats.PackageFanOut[from]++
		}
	}

	for _, n := range g.Nodes {
		if c := fanOut[n.ID]; c > g.Stats.MaxFanOut {
			g.Stats.MaxFanOut = c
		}
		if c := fanIn[n.ID]; c > g.Stats.MaxFanIn {
			g.Stats.MaxFanIn = c
		}
	}

	best := 0
	for _, n := range g.Nodes {
		if c := fanOut[n.ID] + fanIn[n.ID]; c > best {
			best = c
			g.Stats.HotspotNode = n.ID
		}
	}

	g.Stats.ConnectedComponents = g.countComponents()
	g.Stats.CyclicDeps = g.detectCycles()
}

// countComponents counts connected components via union-find
func (g *Graph) countComponents() int {
	parent := make(map[string]string)
	var find func(string) string
	find = func(x string) string {
		if parent[x] == "" {
			parent[x] = x
		}
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b string) {
		fa, fb := find(a), find(b)
		if fa != fb {
			parent[fa] = fb
		}
	}

	for _, n := range g.Nodes {
		find(n.ID)
	}
	for _, e := range g.Edges {
		union(e.From, e.To)
	}

	roots := make(map[string]bool)
	for _, n := range g.Nodes {
		roots[find(n.ID)] = true
	}
	return len(roots)
}

// detectCycles finds reference cycles between declarations using DFS.
// Cycles are reported by declaration name.
func (g *Graph) detectCycles() [][]string {
	names := make(map[string]string)
	for _, n := range g.Nodes {
		if n.Kind != NodeExternal {
			names[n.ID] = n.Name
		}
	}

	adj := make(map[string][]string)
	for _, e := range g.Edges {
		if names[e.From] != "" && names[e.To] != "" && e.From != e.To {
			adj[e.From] = append(adj[e.From], e.To)
		}
	}

	var cycles [][]string
	visited := make(map[string]int) // 0=unvisited, 1=in-progress, 2=done
	var stack []string

	var dfs func(node string)
	dfs = func(node string) {
		if visited[node] == 2 {
			return
		}
		if visited[node] == 1 {
			var cycle []string
			for i := len(stack) - 1; i >= 0; i-- {
				cycle = append(cycle, names[stack[i]])
				if stack[i] == node {
					break
				}
			}
			for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
				cycle[i], cycle[j] = cycle[j], cycle[i]
			}
			cycles = append(cycles, cycle)
			return
		}
		visited[node] = 1
		stack = append(stack, node)
		for _, next := range adj[node] {
			dfs(next)
		}
		stack = stack[:len(stack)-1]
		visited[node] = 2
	}

	ids := make([]string, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if visited[id] == 0 {
			dfs(id)
		}
	}
	return cycles
}
