package compiler

import "sort"

// ModuleSet is the shared set of modules discovered during one compilation.
// A module is only visible through Get once it is complete; modules whose
// build has started but not finished are tracked separately so that cycles
// can be recognised.
type ModuleSet struct {
	order    []*Module
	byID     map[string]*Module
	building map[string]*Module
	parses   map[string]int
}

// NewModuleSet returns an empty set.
func NewModuleSet() *ModuleSet {
	return &ModuleSet{
		byID:     map[string]*Module{},
		building: map[string]*Module{},
		parses:   map[string]int{},
	}
}

// Get returns the completed module with the given id.
func (s *ModuleSet) Get(id string) (*Module, bool) {
	m, ok := s.byID[id]
	return m, ok
}

// Building reports whether id is currently being built.
func (s *ModuleSet) Building(id string) bool {
	_, ok := s.building[id]
	return ok
}

// Modules returns completed modules in completion order.
func (s *ModuleSet) Modules() []*Module {
	return append([]*Module(nil), s.order...)
}

// IDs returns the ids of completed modules, sorted.
func (s *ModuleSet) IDs() []string {
	ids := make([]string, 0, len(s.order))
	for _, m := range s.order {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of completed modules.
func (s *ModuleSet) Len() int { return len(s.order) }

// ParseCount returns how many times the file behind id was parsed.
func (s *ModuleSet) ParseCount(id string) int { return s.parses[id] }

// Claim adds entry to the owners of the completed module id and of every
// completed module it transitively depends on. Modules still being built are
// skipped; they already belong to the entry whose build is running.
func (s *ModuleSet) Claim(entry, id string) {
	seen := map[string]bool{}
	var visit func(id string)
	visit = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		m, ok := s.byID[id]
		if !ok {
			return
		}
		m.AddEntry(entry)
		for _, dep := range m.Dependencies {
			visit(dep)
		}
	}
	visit(id)
}

func (s *ModuleSet) begin(m *Module) {
	s.building[m.ID] = m
}

func (s *ModuleSet) parsed(id string) {
	s.parses[id]++
}

func (s *ModuleSet) complete(m *Module) {
	delete(s.building, m.ID)
	s.byID[m.ID] = m
	s.order = append(s.order, m)
}
