// Package treesitter checks Java inputs and generated TypeScript with
// tree-sitter grammars. It needs CGO; without it every entry point returns
// ErrUnavailable.
package treesitter

import "errors"

// Language names a supported grammar.
type Language string

const (
	LangJava       Language = "java"
	LangTypeScript Language = "typescript"
)

// ErrUnavailable is returned when the package is built without CGO.
var ErrUnavailable = errors.New("tree-sitter support requires CGO")

// Declaration is a top level type declaration found in a syntax tree.
type Declaration struct {
	Kind string `json:"kind"` // class, interface or enum
	Name string `json:"name"`
	Line int    `json:"line"` // 1-based
}

// Diagnostic is a syntax problem reported by the parser.
type Diagnostic struct {
	Line   int    `json:"line"` // 1-based
	Column int    `json:"column"`
	Kind   string `json:"kind"` // "error" or "missing"
	Text   string `json:"text,omitempty"`
}

// Report is the outcome of checking one source.
type Report struct {
	Language     Language      `json:"language"`
	Declarations []Declaration `json:"declarations"`
	Diagnostics  []Diagnostic  `json:"diagnostics,omitempty"`
}

// OK reports whether the source parsed without diagnostics.
func (r *Report) OK() bool { return len(r.Diagnostics) == 0 }

// Names returns the declared names in source order.
func (r *Report) Names() []string {
	names := make([]string, len(r.Declarations))
	for i, d := range r.Declarations {
		names[i] = d.Name
	}
	return names
}

// declarationKinds maps grammar node types to declaration kinds.
var declarationKinds = map[Language]map[string]string{
	LangJava: {
		"class_declaration":     "class",
		"interface_declaration": "interface",
		"enum_declaration":      "enum",
		"record_declaration":    "class",
	},
	LangTypeScript: {
		"interface_declaration": "interface",
		"enum_declaration":      "enum",
		"class_declaration":     "class",
	},
}

// maxDiagnosticText bounds the source excerpt kept per diagnostic.
const maxDiagnosticText = 40
