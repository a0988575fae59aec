package java

import (
	"regexp"
	"strings"

	"github.com/honghai9112k/tool-java2ts/internal/ir"
)

var (
	// annotatedFieldPattern matches an external-name annotation followed, with
	// no other annotation in between, by a private field.
	annotatedFieldPattern = regexp.MustCompile(`@JsonProperty\s*(\([^)]*\))[^@]*?private\s+([A-Za-z0-9_<>\[\],\s]+)\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*(?:=[^;]+)?;`)
	plainFieldPattern     = regexp.MustCompile(`private\s+([A-Za-z0-9_<>\[\],\s]+)\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*(?:=[^;]+)?;`)
	// fastFieldPattern is the single pass used by the bulk path.
	fastFieldPattern = regexp.MustCompile(`(?:@JsonProperty\s*(\([^)]*\))\s*)?private\s+([A-Za-z][a-zA-Z0-9_<>\[\],\s]*)\s+([a-z][a-zA-Z0-9_]*)\s*[;=]`)

	fieldNamePattern  = regexp.MustCompile(`^[a-z][a-zA-Z0-9_]*$`)
	bareNamePattern   = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	constantModifiers = regexp.MustCompile(`^(?:static\s+final|final\s+static)\b`)
	leadingModifiers  = regexp.MustCompile(`^(?:(?:final|transient|volatile)\s+)+`)
)

const versionMarker = "serialVersionUID"

// fieldSet accumulates fields by original name; the first writer wins.
type fieldSet struct {
	used   map[string]bool
	fields []*ir.Field
}

func newFieldSet() *fieldSet {
	return &fieldSet{used: make(map[string]bool)}
}

func (s *fieldSet) add(name, declaredType, external string) {
	if name == versionMarker || s.used[name] || !fieldNamePattern.MatchString(name) {
		return
	}
	declaredType, ok := cleanType(declaredType)
	if !ok {
		return
	}
	s.used[name] = true
	if external == "" {
		external = name
	} else {
		external = quoteName(external)
	}
	s.fields = append(s.fields, &ir.Field{
		Name:         external,
		SourceType:   declaredType,
		Optional:     true,
		OriginalName: name,
	})
}

// extractFields runs the annotated pass first, then the plain private pass.
func extractFields(src string) []*ir.Field {
	set := newFieldSet()
	for _, sub := range annotatedFieldPattern.FindAllStringSubmatch(src, -1) {
		external, ok := externalName(sub[1])
		if !ok {
			continue
		}
		set.add(sub[3], sub[2], external)
	}
	for _, sub := range plainFieldPattern.FindAllStringSubmatch(src, -1) {
		set.add(sub[2], sub[1], "")
	}
	return set.fields
}

// extractFieldsFast walks fields in source order with one pattern; an
// annotation directly in front of a field renames it.
func extractFieldsFast(src string) []*ir.Field {
	set := newFieldSet()
	for _, sub := range fastFieldPattern.FindAllStringSubmatch(src, -1) {
		external := ""
		if sub[1] != "" {
			external, _ = externalName(sub[1])
		}
		set.add(sub[3], sub[2], external)
	}
	return set.fields
}

// cleanType trims the declared type and drops instance modifiers. Static
// members are not data and are rejected.
func cleanType(t string) (string, bool) {
	t = strings.TrimSpace(t)
	if constantModifiers.MatchString(t) || t == "static" || strings.HasPrefix(t, "static ") {
		return "", false
	}
	t = leadingModifiers.ReplaceAllString(t, "")
	if t == "" {
		return "", false
	}
	return t, true
}

// quoteName wraps names that are not bare identifiers in double quotes.
func quoteName(name string) string {
	if strings.ContainsAny(name, "@-.") || !bareNamePattern.MatchString(name) {
		return `"` + name + `"`
	}
	return name
}
