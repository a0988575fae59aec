package java

import (
	"regexp"
	"strings"

	"github.com/honghai9112k/tool-java2ts/internal/ir"
)

var enumConstantPattern = regexp.MustCompile(`([A-Z_][A-Z0-9_]*)\s*(?:\(\s*"([^"]+)"\s*\))?(?:\s*[,;]|\s*$)`)

// enumConstants extracts the constants from the body of enum name in src.
// Anything between the name and the opening brace, such as an implements
// clause, is skipped. ok is false when no body can be located. A constant
// without a string argument takes its lower-cased name as value. The last
// constant may end the body without a terminator.
func enumConstants(src, name string) (constants []*ir.Constant, ok bool) {
	pattern := regexp.MustCompile(`(?s)\benum\s+` + regexp.QuoteMeta(name) + `\b[^{]*\{([^}]+)\}`)
	body := pattern.FindStringSubmatch(src)
	if body == nil {
		return nil, false
	}
	for _, sub := range enumConstantPattern.FindAllStringSubmatch(body[1], -1) {
		value := sub[2]
		if value == "" {
			value = strings.ToLower(sub[1])
		}
		constants = append(constants, &ir.Constant{Name: sub[1], Value: value})
	}
	return constants, true
}
