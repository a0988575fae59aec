// Package converter turns Java declarations into TypeScript declarations.
//
// The Engine wires a source plugin, a target plugin and the custom type
// location registry together. It is safe for concurrent use; the only shared
// state is its two result caches.
package converter

import (
	"fmt"
	"strings"

	"github.com/honghai9112k/tool-java2ts/internal/ir"
	"github.com/honghai9112k/tool-java2ts/internal/locations"
	"github.com/honghai9112k/tool-java2ts/internal/plugins"
	"github.com/honghai9112k/tool-java2ts/internal/plugins/source/java"
	"github.com/honghai9112k/tool-java2ts/internal/plugins/target/typescript"
)

// DefaultMinSize is the trimmed input length below which there is nothing to
// convert.
const DefaultMinSize = 20

// minCachedOutput is the trimmed output length an entry needs to be cached.
const minCachedOutput = 20

const (
	sentinelSkipped    = "Skipped: Not suitable for interface conversion"
	sentinelNoDecl     = "No valid class or enum found"
	sentinelEnumBody   = "Could not parse enum body"
	sentinelBadNameFmt = "Invalid %s name: %s"
)

// Result is the outcome of one conversion. Output is empty unless Outcome is
// Converted, except on the fast path which reports other outcomes as a one
// line comment. Declaration is shared with the cache and must not be
// modified.
type Result struct {
	Output      string          `json:"output"`
	Outcome     ir.Outcome      `json:"outcome"`
	Declaration *ir.Declaration `json:"declaration,omitempty"`
	Cached      bool            `json:"cached"`
}

type cachedConversion struct {
	output string
	decl   *ir.Declaration
}

// Engine runs the conversion pipeline.
type Engine struct {
	source    plugins.SourcePlugin
	target    plugins.TargetPlugin
	locations *locations.Registry
	minSize   int

	typeMapping map[string]string
	reserved    []string

	conversions *cache[cachedConversion]
	imports     *cache[[]ir.Import]
}

// Option configures an Engine.
type Option func(*Engine)

// WithTypeMapping replaces the primitive type mapping of the default target.
func WithTypeMapping(mapping map[string]string) Option {
	return func(e *Engine) { e.typeMapping = mapping }
}

// WithLocations sets the custom type location registry.
func WithLocations(r *locations.Registry) Option {
	return func(e *Engine) { e.locations = r }
}

// WithReservedNames replaces the declaration name blocklist of the default
// source.
func WithReservedNames(names []string) Option {
	return func(e *Engine) { e.reserved = names }
}

// WithMinSize sets the minimum trimmed input length.
func WithMinSize(n int) Option {
	return func(e *Engine) { e.minSize = n }
}

// WithPlugins replaces the source and target plugins.
func WithPlugins(source plugins.SourcePlugin, target plugins.TargetPlugin) Option {
	return func(e *Engine) {
		e.source = source
		e.target = target
	}
}

// New creates an Engine with empty caches. Without options it converts Java
// to TypeScript using the default location registry.
func New(opts ...Option) *Engine {
	e := &Engine{
		minSize:     DefaultMinSize,
		conversions: newCache[cachedConversion](),
		imports:     newCache[[]ir.Import](),
	}
	for _, o := range opts {
		o(e)
	}
	if e.source == nil {
		var jopts []java.Option
		if e.reserved != nil {
			jopts = append(jopts, java.WithReservedNames(e.reserved))
		}
		e.source = java.New(jopts...)
	}
	if e.target == nil {
		var topts []typescript.Option
		if e.typeMapping != nil {
			topts = append(topts, typescript.WithTypeMapping(e.typeMapping))
		}
		e.target = typescript.New(topts...)
	}
	if e.locations == nil {
		e.locations = locations.Default()
	}
	return e
}

// Source returns the source plugin.
func (e *Engine) Source() plugins.SourcePlugin { return e.source }

// Target returns the target plugin.
func (e *Engine) Target() plugins.TargetPlugin { return e.target }

// Convert runs the full pipeline: last valid declaration, both field passes
// and resolved imports. Inputs that yield no declaration produce an empty
// Output and the reason in Outcome.
func (e *Engine) Convert(source, location string) Result {
	if len(strings.TrimSpace(source)) < e.minSize {
		return Result{Outcome: ir.OutcomeTooSmall}
	}
	key := cacheKey(source, location)
	if hit, ok := e.conversions.get(key); ok {
		return Result{Output: hit.output, Outcome: ir.OutcomeConverted, Declaration: hit.decl, Cached: true}
	}

	ex := e.source.Extract(source)
	if !ex.Converted() {
		return Result{Outcome: ex.Outcome}
	}
	decl := e.resolve(ex.Declaration, location)
	out := e.target.Emit(decl, e.ResolveImports(decl.Dependencies, location))
	if len(strings.TrimSpace(out)) > minCachedOutput {
		e.conversions.put(key, cachedConversion{output: out, decl: decl})
	}
	return Result{Output: out, Outcome: ir.OutcomeConverted, Declaration: decl}
}

// ConvertFast runs the single pass pipeline used for bulk conversion. Every
// outcome other than TooSmall produces text: unsupported inputs are reported
// as a one line comment. Imports are resolved only when location is set.
// Results are not cached.
func (e *Engine) ConvertFast(source, location string) Result {
	if len(strings.TrimSpace(source)) < e.minSize {
		return Result{Outcome: ir.OutcomeTooSmall}
	}
	ex := e.source.ExtractFast(source)
	switch ex.Outcome {
	case ir.OutcomeConverted:
	case ir.OutcomeSkipped:
		return e.sentinel(ex.Outcome, sentinelSkipped)
	case ir.OutcomeInvalidName:
		return e.sentinel(ex.Outcome, fmt.Sprintf(sentinelBadNameFmt, ex.Detail.Kind, ex.Detail.Name))
	case ir.OutcomeUnparseableBody:
		return e.sentinel(ex.Outcome, sentinelEnumBody)
	default:
		return e.sentinel(ir.OutcomeNoDeclaration, sentinelNoDecl)
	}

	decl := e.resolve(ex.Declaration, location)
	var imports []ir.Import
	if location != "" {
		imports = e.ResolveImports(decl.Dependencies, location)
	}
	return Result{Output: e.target.Emit(decl, imports), Outcome: ir.OutcomeConverted, Declaration: decl}
}

// Describe extracts and resolves the declaration in source without rendering
// it. The full extraction rules apply.
func (e *Engine) Describe(source, location string) (*ir.Declaration, ir.Outcome) {
	if len(strings.TrimSpace(source)) < e.minSize {
		return nil, ir.OutcomeTooSmall
	}
	ex := e.source.Extract(source)
	if !ex.Converted() {
		return nil, ex.Outcome
	}
	return e.resolve(ex.Declaration, location), ir.OutcomeConverted
}

// ResolveImports returns one import per non built-in dependency, in the
// order given. Registered types get a path relative to location; all other
// names, and every name when location is empty, import from "./Name".
func (e *Engine) ResolveImports(deps []string, location string) []ir.Import {
	if len(deps) == 0 {
		return nil
	}
	key := cacheKey(strings.Join(deps, ","), location)
	if hit, ok := e.imports.get(key); ok {
		return append([]ir.Import(nil), hit...)
	}
	var out []ir.Import
	for _, dep := range deps {
		if e.target.IsBuiltIn(dep) {
			continue
		}
		path := "./" + dep
		if loc, ok := e.locations.Lookup(dep); ok && location != "" {
			path = e.target.RelativePath(location, loc)
		}
		out = append(out, ir.Import{Name: dep, Path: path})
	}
	e.imports.put(key, out)
	return append([]ir.Import(nil), out...)
}

// Stats returns cache counters.
func (e *Engine) Stats() CacheStats {
	return CacheStats{
		ConvertHits:    e.conversions.hits.Load(),
		ConvertMisses:  e.conversions.misses.Load(),
		ConvertEntries: e.conversions.len(),
		ImportHits:     e.imports.hits.Load(),
		ImportMisses:   e.imports.misses.Load(),
		ImportEntries:  e.imports.len(),
	}
}

// resolve maps field types, drops duplicate fields and collects the custom
// types the declaration depends on. The declaration never depends on itself.
func (e *Engine) resolve(decl *ir.Declaration, location string) *ir.Declaration {
	decl.Location = location
	if decl.Kind == ir.KindEnum {
		return decl
	}
	deps := ir.NewDependencySet()
	for _, f := range decl.Fields {
		f.Type = e.target.MapType(f.SourceType)
	}
	decl.Fields = ir.DedupFields(decl.Fields)
	for _, f := range decl.Fields {
		e.target.CollectDependencies(f.Type, deps)
		e.target.CollectDependencies(f.SourceType, deps)
	}
	if decl.Super != "" && !e.target.IsBuiltIn(decl.Super) {
		deps.Add(decl.Super)
	}
	for _, name := range deps.List() {
		if name != decl.Name {
			decl.Dependencies = append(decl.Dependencies, name)
		}
	}
	return decl
}

func (e *Engine) sentinel(outcome ir.Outcome, text string) Result {
	return Result{Output: e.target.Comment(text), Outcome: outcome}
}
