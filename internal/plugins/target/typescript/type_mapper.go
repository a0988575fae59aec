package typescript

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultTypeMapping returns a copy of the built-in mapping of Java
// primitives, boxed primitives and common value types to TypeScript.
func DefaultTypeMapping() map[string]string {
	return copyMapping(defaultTypeMapping)
}

func copyMapping(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var defaultTypeMapping = map[string]string{
	"String":        "string",
	"char":          "string",
	"Character":     "string",
	"UUID":          "string",
	"int":           "number",
	"Integer":       "number",
	"long":          "number",
	"Long":          "number",
	"double":        "number",
	"Double":        "number",
	"float":         "number",
	"Float":         "number",
	"byte":          "number",
	"Byte":          "number",
	"short":         "number",
	"Short":         "number",
	"BigDecimal":    "number",
	"BigInteger":    "number",
	"boolean":       "boolean",
	"Boolean":       "boolean",
	"Object":        "any",
	"void":          "void",
	"Date":          "Date",
	"LocalDate":     "Date",
	"LocalDateTime": "Date",
}

var genericPattern = regexp.MustCompile(`^([A-Za-z0-9_]+)<(.+)>$`)

// MapType converts a declared Java type into a TypeScript type expression.
// Arrays and simple containers are handled recursively; unknown names are
// returned unchanged. The result is never empty.
func (p *Plugin) MapType(sourceType string) string {
	t := strings.TrimSpace(sourceType)
	if t == "" {
		return "any"
	}
	if strings.HasSuffix(t, "[]") {
		return p.MapType(t[:len(t)-2]) + "[]"
	}
	if strings.Contains(t, "<") {
		if sub := genericPattern.FindStringSubmatch(t); sub != nil {
			container, inner := sub[1], sub[2]
			switch container {
			case "List", "ArrayList", "Set", "Collection":
				return p.MapType(inner) + "[]"
			case "Map", "HashMap":
				if args := SplitGenericArgs(inner); len(args) >= 2 {
					return fmt.Sprintf("{ [key: %s]: %s }", p.MapType(args[0]), p.MapType(args[1]))
				}
			case "Optional":
				return p.MapType(inner) + " | undefined"
			}
			return container + "<" + p.MapType(inner) + ">"
		}
	}
	if mapped, ok := p.mapping[t]; ok {
		return mapped
	}
	return t
}

// SplitGenericArgs splits a generic argument list on top level commas.
// Commas nested inside angle brackets belong to their argument.
func SplitGenericArgs(args string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i, r := range args {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(args[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(args[start:]); last != "" || len(out) > 0 {
		out = append(out, last)
	}
	return out
}
