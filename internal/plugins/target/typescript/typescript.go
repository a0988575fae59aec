// Package typescript renders declarations as TypeScript interfaces and enums.
package typescript

import "github.com/honghai9112k/tool-java2ts/internal/plugins"

var _ plugins.TargetPlugin = (*Plugin)(nil)

// Plugin implements TargetPlugin for TypeScript.
type Plugin struct {
	mapping  map[string]string
	builtins map[string]bool
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithTypeMapping replaces the built-in type mapping.
func WithTypeMapping(mapping map[string]string) Option {
	return func(p *Plugin) { p.mapping = copyMapping(mapping) }
}

func New(opts ...Option) *Plugin {
	p := &Plugin{mapping: defaultTypeMapping}
	for _, o := range opts {
		o(p)
	}
	p.builtins = make(map[string]bool, len(baseBuiltIns)+len(p.mapping))
	for _, name := range baseBuiltIns {
		p.builtins[name] = true
	}
	for name := range p.mapping {
		p.builtins[name] = true
	}
	return p
}

func (p *Plugin) Language() string { return "typescript" }

func (p *Plugin) FileExtension() string { return ".ts" }
