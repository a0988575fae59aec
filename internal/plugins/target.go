package plugins

import "github.com/honghai9112k/tool-java2ts/internal/ir"

// TargetPlugin maps declarations into target language text.
type TargetPlugin interface {
	// Language returns the target language identifier (e.g. "typescript").
	Language() string
	// FileExtension is the extension of emitted declaration files, with the dot.
	FileExtension() string
	// MapType converts a declared source type into a target type expression.
	MapType(sourceType string) string
	// IsBuiltIn reports whether a type name needs no import.
	IsBuiltIn(name string) bool
	// CollectDependencies adds every custom type referenced by typeExpr to deps.
	CollectDependencies(typeExpr string, deps *ir.DependencySet)
	// RelativePath computes the import path of target as seen from current.
	RelativePath(current, target string) string
	// Emit renders a declaration with its import prologue.
	Emit(decl *ir.Declaration, imports []ir.Import) string
	// Comment renders a one line comment, newline terminated.
	Comment(text string) string
}
