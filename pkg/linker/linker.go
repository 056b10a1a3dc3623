// Package linker turns the module graph into bundles.
//
// Architecture:
//   - Partition the compiled modules into one chunk per entry: the entry
//     module and every module the entry reaches.
//   - Emit each chunk as one self-executing program holding a module
//     registry, a caching loader and the entry invocation.
//   - Write the generated programs to the output directory.
package linker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/coldog/jsbld/pkg/compiler"
	"github.com/coldog/jsbld/pkg/graph"
)

// Chunk is the set of modules bundled for one entry.
type Chunk struct {
	Name  string
	Entry *compiler.Module
	// Modules is sorted by id and includes Entry.
	Modules []*compiler.Module
}

// IDs returns the ids of the chunk's modules.
func (c *Chunk) IDs() []string {
	ids := make([]string, len(c.Modules))
	for i, m := range c.Modules {
		ids[i] = m.ID
	}
	return ids
}

// Hash returns a content hash over the chunk's modules.
func (c *Chunk) Hash() string {
	h := sha256.New()
	for _, m := range c.Modules {
		h.Write([]byte(m.ID))
		h.Write([]byte{0})
		h.Write([]byte(m.Hash))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Filename expands pattern for this chunk. "[name]" becomes the chunk name
// and "[hash]" the first eight characters of Hash.
func (c *Chunk) Filename(pattern string) string {
	name := strings.ReplaceAll(pattern, "[name]", c.Name)
	if strings.Contains(name, "[hash]") {
		name = strings.ReplaceAll(name, "[hash]", c.Hash()[:8])
	}
	return name
}

// Graph returns the dependency graph of the chunk's modules.
func (c *Chunk) Graph() *graph.Graph {
	g := graph.New(c.Name)
	for _, m := range c.Modules {
		g.Add(m.ID, m.Dependencies...)
	}
	return g
}

// Verify checks that the chunk contains its entry and every module its
// modules depend on.
func (c *Chunk) Verify() error {
	if c.Entry == nil {
		return fmt.Errorf("linker: chunk %s has no entry module", c.Name)
	}
	found := false
	for _, m := range c.Modules {
		if m == c.Entry {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("linker: chunk %s does not contain its entry %s", c.Name, c.Entry.ID)
	}
	return c.Graph().Verify()
}
