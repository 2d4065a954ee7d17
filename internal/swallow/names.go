package swallow

import "sort"

// NameSet is a set of executable names.
type NameSet map[string]struct{}

func NewNameSet(names ...string) NameSet {
	set := make(NameSet, len(names))
	set.Add(names...)
	return set
}

func (s NameSet) Add(names ...string) {
	for _, name := range names {
		s[name] = struct{}{}
	}
}

func (s NameSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s NameSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
