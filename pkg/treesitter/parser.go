//go:build cgo

package treesitter

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Available reports whether tree-sitter support is compiled in.
func Available() bool { return true }

func grammar(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangJava:
		return java.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// Check parses source and reports its top level declarations and any error
// or missing nodes.
func Check(ctx context.Context, lang Language, source []byte) (*Report, error) {
	g, err := grammar(lang)
	if err != nil {
		return nil, err
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	defer tree.Close()

	report := &Report{Language: lang, Declarations: []Declaration{}}
	kinds := declarationKinds[lang]

	var walk func(n *sitter.Node, depth int)
	walk = func(n *sitter.Node, depth int) {
		if n == nil || n.IsNull() {
			return
		}
		switch {
		case n.IsMissing():
			report.Diagnostics = append(report.Diagnostics, diagnostic(n, source, "missing"))
		case n.Type() == "ERROR":
			report.Diagnostics = append(report.Diagnostics, diagnostic(n, source, "error"))
		}
		if kind, ok := kinds[n.Type()]; ok && depth <= 2 {
			if name := n.ChildByFieldName("name"); name != nil && !name.IsNull() {
				report.Declarations = append(report.Declarations, Declaration{
					Kind: kind,
					Name: name.Content(source),
					Line: int(n.StartPoint().Row) + 1,
				})
			}
		}
		// Declarations sit at most two levels deep; deeper nodes only
		// matter inside subtrees that hold errors.
		if depth >= 2 && !n.HasError() {
			return
		}
		for i := uint32(0); i < n.ChildCount(); i++ {
			walk(n.Child(int(i)), depth+1)
		}
	}
	walk(tree.RootNode(), 0)
	return report, nil
}

func diagnostic(n *sitter.Node, source []byte, kind string) Diagnostic {
	text := n.Content(source)
	if len(text) > maxDiagnosticText {
		text = text[:maxDiagnosticText]
	}
	p := n.StartPoint()
	return Diagnostic{Line: int(p.Row) + 1, Column: int(p.Column) + 1, Kind: kind, Text: text}
}
