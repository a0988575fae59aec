package java

import (
	"regexp"

	"github.com/honghai9112k/tool-java2ts/internal/ir"
)

var (
	declarationPattern = regexp.MustCompile(`(?:public\s+|private\s+|protected\s+)?(?:abstract\s+)?(?:final\s+)?(class|enum)\s+([A-Z][a-zA-Z0-9_]*)`)
	extendsPattern     = regexp.MustCompile(`class\s+[A-Z][a-zA-Z0-9_]*\s+extends\s+([A-Z][a-zA-Z0-9_]*)`)
	typeNamePattern    = regexp.MustCompile(`^[A-Z][a-zA-Z0-9_]*$`)
)

// DefaultReservedNames are capitalised words that look like declaration names
// but are modifiers or framework roles.
var DefaultReservedNames = []string{
	"Class", "Interface", "Abstract", "Final", "Public", "Private", "Protected", "Static",
	"Controller",
}

type nameGate map[string]bool

func newNameGate(reserved []string) nameGate {
	g := make(nameGate, len(reserved))
	for _, r := range reserved {
		g[r] = true
	}
	return g
}

func (g nameGate) valid(name string) bool {
	return typeNamePattern.MatchString(name) && !g[name]
}

// lastSignature scans every declaration candidate and keeps the last valid
// one. Single-letter names are generic parameters or placeholders here and
// never win. Several declarations in one input are not really supported; the
// last candidate is taken to match the behaviour of the bulk tool this
// replaces.
func (g nameGate) lastSignature(src string) ir.SignatureMatch {
	var m ir.SignatureMatch
	for _, sub := range declarationPattern.FindAllStringSubmatch(src, -1) {
		if len(sub[2]) < 2 || !g.valid(sub[2]) {
			continue
		}
		m = ir.SignatureMatch{
			Status:    ir.Matched,
			Signature: ir.Signature{Kind: ir.Kind(sub[1]), Name: sub[2]},
		}
	}
	if m.Status == ir.Matched && m.Signature.Kind == ir.KindClass {
		m.Signature.Super = extendsOf(src)
	}
	return m
}

// firstSignature looks at the first candidate only and reports it as
// Malformed when its name is not acceptable.
func (g nameGate) firstSignature(src string) ir.SignatureMatch {
	sub := declarationPattern.FindStringSubmatch(src)
	if sub == nil {
		return ir.SignatureMatch{Status: ir.NoMatch}
	}
	sig := ir.Signature{Kind: ir.Kind(sub[1]), Name: sub[2]}
	if !g.valid(sig.Name) {
		return ir.SignatureMatch{Status: ir.Malformed, Signature: sig, Reason: "reserved or invalid name"}
	}
	if sig.Kind == ir.KindClass {
		sig.Super = extendsOf(src)
	}
	return ir.SignatureMatch{Status: ir.Matched, Signature: sig}
}

func extendsOf(src string) string {
	sub := extendsPattern.FindStringSubmatch(src)
	if sub == nil {
		return ""
	}
	return sub[1]
}
