// Package java recovers class and enum declarations from Java source text.
//
// Extraction is pattern based. It reads data-carrying classes (POJOs) and
// fixed-value enums; method bodies, generics bounds and nested types are
// ignored.
package java

import (
	"strings"

	"github.com/honghai9112k/tool-java2ts/internal/ir"
	"github.com/honghai9112k/tool-java2ts/internal/plugins"
)

var _ plugins.SourcePlugin = (*Plugin)(nil)

// skipMarkers flag inputs that are programs, tests or exceptions rather than
// data declarations. Only the fast path honours them.
var skipMarkers = []string{"public static void main", "@Test", "extends Exception"}

// Plugin implements SourcePlugin for Java.
type Plugin struct {
	gate nameGate
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithReservedNames replaces the declaration name blocklist.
func WithReservedNames(names []string) Option {
	return func(p *Plugin) { p.gate = newNameGate(names) }
}

func New(opts ...Option) *Plugin {
	p := &Plugin{gate: newNameGate(DefaultReservedNames)}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Plugin) Language() string { return "java" }

func (p *Plugin) FileExtensions() []string { return []string{".java"} }

func (p *Plugin) Normalize(src string) string { return Normalize(src) }

// Extract takes the last valid declaration signature and runs both field
// passes over the comment-stripped text.
func (p *Plugin) Extract(src string) ir.Extraction {
	norm := Normalize(src)
	m := p.gate.lastSignature(norm)
	if m.Status != ir.Matched {
		return ir.Extraction{Outcome: ir.OutcomeNoDeclaration}
	}
	if m.Signature.Kind == ir.KindEnum {
		return enumExtraction(m.Signature, norm)
	}
	return ir.Extraction{
		Outcome: ir.OutcomeConverted,
		Declaration: &ir.Declaration{
			Kind:   ir.KindClass,
			Name:   m.Signature.Name,
			Super:  m.Signature.Super,
			Fields: extractFields(StripComments(src)),
		},
	}
}

// ExtractFast looks at the first declaration signature only and reports
// skipped inputs and rejected names instead of searching further.
func (p *Plugin) ExtractFast(src string) ir.Extraction {
	for _, marker := range skipMarkers {
		if strings.Contains(src, marker) {
			return ir.Extraction{Outcome: ir.OutcomeSkipped}
		}
	}
	norm := Normalize(src)
	m := p.gate.firstSignature(norm)
	switch m.Status {
	case ir.NoMatch:
		return ir.Extraction{Outcome: ir.OutcomeNoDeclaration}
	case ir.Malformed:
		return ir.Extraction{Outcome: ir.OutcomeInvalidName, Detail: m.Signature}
	}
	if m.Signature.Kind == ir.KindEnum {
		return enumExtraction(m.Signature, norm)
	}
	return ir.Extraction{
		Outcome: ir.OutcomeConverted,
		Declaration: &ir.Declaration{
			Kind:   ir.KindClass,
			Name:   m.Signature.Name,
			Super:  m.Signature.Super,
			Fields: extractFieldsFast(norm),
		},
	}
}

func enumExtraction(sig ir.Signature, src string) ir.Extraction {
	constants, ok := enumConstants(src, sig.Name)
	if !ok {
		return ir.Extraction{Outcome: ir.OutcomeUnparseableBody, Detail: sig}
	}
	return ir.Extraction{
		Outcome: ir.OutcomeConverted,
		Declaration: &ir.Declaration{
			Kind:      ir.KindEnum,
			Name:      sig.Name,
			Constants: constants,
		},
	}
}
