package bundler

import (
	"sort"

	"github.com/coldog/jsbld/pkg/compiler"
	"github.com/coldog/jsbld/pkg/linker"
)

// Entry is an entry point resolved to its module.
type Entry struct {
	Name   string
	Path   string
	Module *compiler.Module
}

// Compilation holds the state of one Run.
type Compilation struct {
	Entries []Entry
	Modules *compiler.ModuleSet
	Chunks  []*linker.Chunk
	// Assets maps output file names to generated code.
	Assets map[string]string
	// Files lists the written file names.
	Files []string
}

func newCompilation() *Compilation {
	return &Compilation{
		Modules: compiler.NewModuleSet(),
		Assets:  map[string]string{},
	}
}

// Stats summarizes a finished compilation.
type Stats struct {
	Entries []EntryStats `json:"entries"`
	Modules []string     `json:"modules"`
	Chunks  []ChunkStats `json:"chunks"`
	Files   []string     `json:"files"`
}

// EntryStats describes one entry point.
type EntryStats struct {
	Name   string `json:"name"`
	Module string `json:"module"`
}

// ChunkStats describes one emitted chunk.
type ChunkStats struct {
	Name    string   `json:"name"`
	Entry   string   `json:"entry"`
	Modules []string `json:"modules"`
	File    string   `json:"file"`
	Size    int      `json:"size"`
}

// Stats builds the summary of c.
func (c *Compilation) Stats(filename func(*linker.Chunk) string) *Stats {
	s := &Stats{
		Modules: c.Modules.IDs(),
		Files:   append([]string(nil), c.Files...),
	}
	for _, e := range c.Entries {
		s.Entries = append(s.Entries, EntryStats{Name: e.Name, Module: e.Module.ID})
	}
	for _, chunk := range c.Chunks {
		file := filename(chunk)
		s.Chunks = append(s.Chunks, ChunkStats{
			Name:    chunk.Name,
			Entry:   chunk.Entry.ID,
			Modules: chunk.IDs(),
			File:    file,
			Size:    len(c.Assets[file]),
		})
	}
	sort.Slice(s.Chunks, func(i, j int) bool { return s.Chunks[i].Name < s.Chunks[j].Name })
	return s
}
