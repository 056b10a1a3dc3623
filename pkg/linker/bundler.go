package linker

import (
	"sort"

	"github.com/coldog/jsbld/pkg/compiler"
)

// Assemble builds the chunk for entry name from every module it owns.
func Assemble(name string, entry *compiler.Module, modules []*compiler.Module) *Chunk {
	c := &Chunk{Name: name, Entry: entry}
	for _, m := range modules {
		if m.HasEntry(name) {
			c.Modules = append(c.Modules, m)
		}
	}
	sort.Slice(c.Modules, func(i, j int) bool { return c.Modules[i].ID < c.Modules[j].ID })
	return c
}
