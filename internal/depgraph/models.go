package depgraph

// Node represents a node in the dependency graph
type Node struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Kind     NodeKind          `json:"kind"`    // interface, enum, external
	Package  string            `json:"package"` // directory of the declaration
	Fields   int               `json:"fields,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NodeKind classifies graph nodes
type NodeKind string

const (
	NodeInterface NodeKind = "interface"
	NodeEnum      NodeKind = "enum"
	NodeExternal  NodeKind = "external" // referenced but not declared in the input
)

// externalPackage groups external nodes.
const externalPackage = "external"

// Edge represents a directed edge between two nodes
type Edge struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Kind   EdgeKind `json:"kind"`
	Weight int      `json:"weight,omitempty"` // number of fields using the type
	Label  string   `json:"label,omitempty"`
}

// EdgeKind classifies relationships
type EdgeKind string

const (
	EdgeExtends    EdgeKind = "extends"    // declaration extends supertype
	EdgeReferences EdgeKind = "references" // a field type names another type
)

// Graph is the full dependency graph
type Graph struct {
	Nodes []Node     `json:"nodes"`
	Edges []Edge     `json:"edges"`
	Stats GraphStats `json:"stats"`
}

// GraphStats holds computed metrics about the graph
type GraphStats struct {
	TotalNodes          int            `json:"total_nodes"`
	TotalEdges          int            `json:"total_edges"`
	InterfaceCount      int            `json:"interface_count"`
	EnumCount           int            `json:"enum_count"`
	ExternalCount       int            `json:"external_count"`
	MaxFanOut           int            `json:"max_fan_out"`  // most outgoing edges
	MaxFanIn            int            `json:"max_fan_in"`   // most incoming edges
	HotspotNode         string         `json:"hotspot_node"` // node with most connections
	ConnectedComponents int            `json:"connected_components"`
	CyclicDeps          [][]string     `json:"cyclic_deps,omitempty"`
	PackageFanOut       map[string]int `json:"package_fan_out"` // cross-package edges per package
}
