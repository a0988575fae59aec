package typescript

import (
	"regexp"
	"strings"

	"github.com/honghai9112k/tool-java2ts/internal/ir"
)

var (
	containerPattern = regexp.MustCompile(`^([^<]+)<(.+)>$`)
	customPattern    = regexp.MustCompile(`^[A-Z][a-zA-Z0-9_]*$`)
)

// baseBuiltIns need no import in emitted TypeScript. Every TypeMapping key is
// added on top of these.
var baseBuiltIns = []string{
	"string", "number", "boolean", "Date", "any", "void", "undefined", "null",
	"List", "ArrayList", "Set", "HashSet", "Map", "HashMap", "Collection",
	"Object", "Class", "Optional",
}

func (p *Plugin) IsBuiltIn(name string) bool { return p.builtins[name] }

// CollectDependencies walks typeExpr, which may be a Java or TypeScript type,
// and adds each custom type name it references.
func (p *Plugin) CollectDependencies(typeExpr string, deps *ir.DependencySet) {
	t := strings.TrimSpace(typeExpr)
	if t == "" || p.IsBuiltIn(t) {
		return
	}
	if strings.HasSuffix(t, "[]") {
		p.CollectDependencies(t[:len(t)-2], deps)
		return
	}
	if strings.Contains(t, "<") {
		if sub := containerPattern.FindStringSubmatch(t); sub != nil {
			if container := strings.TrimSpace(sub[1]); !p.IsBuiltIn(container) {
				deps.Add(container)
			}
			for _, arg := range SplitGenericArgs(sub[2]) {
				p.CollectDependencies(arg, deps)
			}
		}
		return
	}
	if strings.Contains(t, ",") {
		for _, part := range strings.Split(t, ",") {
			p.CollectDependencies(part, deps)
		}
		return
	}
	if customPattern.MatchString(t) {
		deps.Add(t)
	}
}
