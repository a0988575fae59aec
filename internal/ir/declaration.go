// Package ir holds the descriptors recovered from a source declaration. Source
// plugins produce them and target plugins turn them back into text.
package ir

import "fmt"

// Kind classifies a declaration.
type Kind string

const (
	KindClass Kind = "class"
	KindEnum  Kind = "enum"
)

// Declaration is a single class or enum recovered from source text.
type Declaration struct {
	Kind      Kind        `json:"kind"`
	Name      string      `json:"name"`
	Super     string      `json:"super,omitempty"`
	Fields    []*Field    `json:"fields,omitempty"`
	Constants []*Constant `json:"constants,omitempty"`
	// Dependencies is filled by the converter once field types are mapped.
	Dependencies []string `json:"dependencies,omitempty"`
	// Location is the slash separated logical path of the declaration,
	// e.g. "entity/customize/Product".
	Location string `json:"location,omitempty"`
}

// Field describes one data member of a class.
type Field struct {
	// Name is the external name: a bare identifier or a quoted literal.
	Name string `json:"name"`
	// SourceType is the declared type as written in the source.
	SourceType string `json:"source_type"`
	// Type is the mapped target type. Empty until a target plugin maps it.
	Type         string `json:"type,omitempty"`
	Optional     bool   `json:"optional"`
	OriginalName string `json:"original_name"`
}

// Constant is one enum entry.
type Constant struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Import is a resolved import of a dependency.
type Import struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func (i Import) String() string {
	return fmt.Sprintf("import { %s } from '%s';", i.Name, i.Path)
}

// DedupFields drops fields whose (name, type) pair was already seen. The first
// occurrence wins.
func DedupFields(fields []*Field) []*Field {
	seen := make(map[string]bool, len(fields))
	out := fields[:0:0]
	for _, f := range fields {
		key := f.Name + ":" + f.Type
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}
