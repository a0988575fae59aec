package plugins

import (
	"testing"

	"github.com/honghai9112k/tool-java2ts/internal/ir"
)

type mockSource struct{}

func (m *mockSource) Language() string                   { return "mock" }
func (m *mockSource) FileExtensions() []string           { return []string{".mock"} }
func (m *mockSource) Normalize(src string) string        { return src }
func (m *mockSource) Extract(_ string) ir.Extraction     { return ir.Extraction{} }
func (m *mockSource) ExtractFast(_ string) ir.Extraction { return ir.Extraction{} }

type mockTarget struct{}

func (m *mockTarget) Language() string                                   { return "mock" }
func (m *mockTarget) FileExtension() string                              { return ".m" }
func (m *mockTarget) MapType(t string) string                            { return t }
func (m *mockTarget) IsBuiltIn(_ string) bool                            { return false }
func (m *mockTarget) CollectDependencies(_ string, _ *ir.DependencySet)  {}
func (m *mockTarget) RelativePath(_, target string) string               { return target }
func (m *mockTarget) Emit(_ *ir.Declaration, _ []ir.Import) string       { return "" }
func (m *mockTarget) Comment(text string) string                         { return text }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.RegisterSource(&mockSource{})
	r.RegisterTarget(&mockTarget{})

	if _, err := r.Source("mock"); err != nil {
		t.Errorf("expected source, got error: %v", err)
	}
	if _, err := r.Source("unknown"); err == nil {
		t.Error("expected error for unknown source")
	}
	if _, err := r.Target("mock"); err != nil {
		t.Errorf("expected target, got error: %v", err)
	}
	if _, err := r.Target("unknown"); err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestRegistryLanguages(t *testing.T) {
	r := NewRegistry()
	r.RegisterSource(&mockSource{})
	r.RegisterTarget(&mockTarget{})

	sources, targets := r.Languages()
	if len(sources) != 1 || sources[0] != "mock" {
		t.Errorf("unexpected sources: %v", sources)
	}
	if len(targets) != 1 || targets[0] != "mock" {
		t.Errorf("unexpected targets: %v", targets)
	}
}
