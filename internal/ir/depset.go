package ir

// DependencySet is an insertion ordered set of custom type names.
type DependencySet struct {
	order []string
	seen  map[string]struct{}
}

// NewDependencySet creates an empty set.
func NewDependencySet() *DependencySet {
	return &DependencySet{seen: make(map[string]struct{})}
}

// Add inserts name if it is not already present.
func (s *DependencySet) Add(name string) {
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.order = append(s.order, name)
}

// Has reports whether name is in the set.
func (s *DependencySet) Has(name string) bool {
	_, ok := s.seen[name]
	return ok
}

// Len returns the number of names.
func (s *DependencySet) Len() int { return len(s.order) }

// List returns the names in discovery order.
func (s *DependencySet) List() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
