package plugins

import "github.com/honghai9112k/tool-java2ts/internal/ir"

// SourcePlugin recovers declarations from source language text.
type SourcePlugin interface {
	// Language returns the source language identifier (e.g. "java").
	Language() string
	// FileExtensions lists the input file extensions the plugin reads.
	FileExtensions() []string
	// Normalize strips comments and constant declarations.
	Normalize(src string) string
	// Extract runs the full extraction: last valid signature, two field passes.
	Extract(src string) ir.Extraction
	// ExtractFast runs the single pass extraction used for bulk conversion.
	ExtractFast(src string) ir.Extraction
}
