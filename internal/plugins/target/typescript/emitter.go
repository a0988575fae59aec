package typescript

import (
	"strings"

	"github.com/honghai9112k/tool-java2ts/internal/ir"
)

// Emit renders decl as an exported interface or enum, preceded by one import
// line per entry in imports.
func (p *Plugin) Emit(decl *ir.Declaration, imports []ir.Import) string {
	var b strings.Builder
	if len(imports) > 0 {
		lines := make([]string, len(imports))
		for i, imp := range imports {
			lines[i] = imp.String()
		}
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
	}
	if decl.Kind == ir.KindEnum {
		p.emitEnum(&b, decl)
	} else {
		p.emitInterface(&b, decl)
	}
	return b.String()
}

func (p *Plugin) emitInterface(b *strings.Builder, decl *ir.Declaration) {
	b.WriteString("export interface ")
	b.WriteString(decl.Name)
	if decl.Super != "" {
		b.WriteString(" extends ")
		b.WriteString(decl.Super)
	}
	b.WriteString(" {\n")
	for _, f := range decl.Fields {
		typ := f.Type
		if typ == "" {
			typ = p.MapType(f.SourceType)
		}
		b.WriteString("  ")
		b.WriteString(f.Name)
		if f.Optional {
			b.WriteString("?")
		}
		b.WriteString(": ")
		b.WriteString(typ)
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
}

func (p *Plugin) emitEnum(b *strings.Builder, decl *ir.Declaration) {
	b.WriteString("export enum ")
	b.WriteString(decl.Name)
	b.WriteString(" {\n")
	if len(decl.Constants) == 0 {
		b.WriteString("  // No enum values found\n")
	}
	for i, c := range decl.Constants {
		b.WriteString("  ")
		b.WriteString(c.Name)
		b.WriteString(` = "`)
		b.WriteString(c.Value)
		b.WriteString(`"`)
		if i < len(decl.Constants)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
}

// Comment renders a line comment.
func (p *Plugin) Comment(text string) string {
	return "// " + text + "\n"
}
