package typescript

import "strings"

// RelativePath climbs one level per directory segment of current and then
// descends into target. Locations are slash separated and carry no extension.
func (p *Plugin) RelativePath(current, target string) string {
	return RelativePath(current, target)
}

func RelativePath(current, target string) string {
	dir := ""
	if i := strings.LastIndex(current, "/"); i >= 0 {
		dir = current[:i]
	}
	depth := 0
	if dir != "" {
		depth = len(strings.Split(dir, "/"))
	}
	return strings.Repeat("../", depth) + target
}
