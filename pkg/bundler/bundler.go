// Package bundler drives a compilation: it resolves the entry points, builds
// their module graphs, assembles one chunk per entry, generates the bundles
// and hands them to the output writer, firing the lifecycle hooks along the
// way.
package bundler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/coldog/jsbld/pkg/compiler"
	"github.com/coldog/jsbld/pkg/linker"
	"github.com/coldog/jsbld/pkg/loader"
	"github.com/coldog/jsbld/pkg/resolve"
)

// DefaultFilename is the output pattern used when none is configured.
const DefaultFilename = "[name].js"

// OutputFileSystem persists generated bundles.
type OutputFileSystem interface {
	WriteAssets(dir string, assets map[string]string) ([]string, error)
}

// Options configure a Compiler.
type Options struct {
	// Context is the root directory module ids are relative to. Defaults to
	// the working directory.
	Context string
	// Entry maps entry names to paths, relative to Context unless absolute.
	Entry map[string]string
	// OutputPath is the directory bundles are written to, relative to
	// Context unless absolute.
	OutputPath string
	// Filename is the output name pattern; see linker.Chunk.Filename.
	Filename string
	// Extensions are probed in order when a specifier has none.
	Extensions []string
	// Rules select the source transforms applied before parsing.
	Rules []loader.Rule
	// Output writes the bundles. Defaults to linker.DiskWriter.
	Output OutputFileSystem
}

// Compiler runs compilations.
type Compiler struct {
	Options Options
	Hooks   Hooks

	builder     *compiler.Builder
	compilation *Compilation
}

// New validates opts, fills in defaults and applies plugins.
func New(opts Options, plugins ...Plugin) (*Compiler, error) {
	if len(opts.Entry) == 0 {
		return nil, fmt.Errorf("bundler: no entry configured")
	}
	for name := range opts.Entry {
		if err := ValidateEntryName(name); err != nil {
			return nil, fmt.Errorf("bundler: %w", err)
		}
	}
	if opts.Context == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		opts.Context = wd
	}
	root, err := filepath.Abs(opts.Context)
	if err != nil {
		return nil, err
	}
	opts.Context = root
	if opts.OutputPath == "" {
		opts.OutputPath = "build"
	}
	if !filepath.IsAbs(opts.OutputPath) {
		opts.OutputPath = filepath.Join(root, opts.OutputPath)
	}
	if opts.Filename == "" {
		opts.Filename = DefaultFilename
	}
	if opts.Output == nil {
		opts.Output = linker.DiskWriter{}
	}

	c := &Compiler{
		Options: opts,
		Hooks:   newHooks(),
		builder: &compiler.Builder{
			Root:     root,
			Resolver: resolve.New(opts.Extensions),
			Pipeline: &loader.Pipeline{Rules: opts.Rules},
		},
	}
	for _, p := range plugins {
		p.Apply(c)
	}
	return c, nil
}

// ValidateEntryName rejects names that cannot be used as a file name inside
// the output directory once substituted for [name].
func ValidateEntryName(name string) error {
	switch {
	case name == "":
		return errors.New("entry names must not be empty")
	case strings.ContainsAny(name, `/\`), strings.Contains(name, ".."):
		return fmt.Errorf("entry name %q must not contain path separators or \"..\"", name)
	}
	return nil
}

// Compilation returns the state of the current or last run.
func (c *Compiler) Compilation() *Compilation {
	return c.compilation
}

// Run performs one compilation. Any error aborts the run before bundles are
// written.
func (c *Compiler) Run() (*Stats, error) {
	comp := newCompilation()
	c.compilation = comp

	c.Hooks.Run.Call()

	entries, err := c.entries()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		m, err := c.buildEntry(comp, e.Name, e.Path)
		if err != nil {
			return nil, err
		}
		e.Module = m
		comp.Entries = append(comp.Entries, e)
		comp.Chunks = append(comp.Chunks, linker.Assemble(e.Name, m, comp.Modules.Modules()))
	}

	for _, chunk := range comp.Chunks {
		if err := chunk.Verify(); err != nil {
			return nil, err
		}
		for _, cycle := range chunk.Graph().Cycles() {
			log.Debug().Str("chunk", chunk.Name).Strs("modules", cycle).Msg("circular dependency")
		}
	}

	c.Hooks.Emit.Call()

	for _, chunk := range comp.Chunks {
		name := chunk.Filename(c.Options.Filename)
		if _, ok := comp.Assets[name]; ok {
			return nil, fmt.Errorf("bundler: multiple chunks emit to %s; add [name] to the output filename", name)
		}
		comp.Assets[name] = linker.Emit(chunk)
	}

	files, err := c.Options.Output.WriteAssets(c.Options.OutputPath, comp.Assets)
	if err != nil {
		return nil, err
	}
	comp.Files = files

	c.Hooks.Done.Call()

	return comp.Stats(func(chunk *linker.Chunk) string {
		return chunk.Filename(c.Options.Filename)
	}), nil
}

// entries resolves the configured entries to absolute paths, ordered by
// name.
func (c *Compiler) entries() ([]Entry, error) {
	names := make([]string, 0, len(c.Options.Entry))
	for name := range c.Options.Entry {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		p := c.Options.Entry[name]
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.Options.Context, p)
		}
		abs, err := c.builder.Resolver.Resolve(p, c.Options.Context)
		if err != nil {
			return nil, fmt.Errorf("bundler: entry %s: %w", name, err)
		}
		entries = append(entries, Entry{Name: name, Path: abs})
	}
	return entries, nil
}

// buildEntry builds the graph of one entry, reusing the module when an
// earlier entry already reached it.
func (c *Compiler) buildEntry(comp *Compilation, name, path string) (*compiler.Module, error) {
	id, err := c.builder.ModuleID(path)
	if err != nil {
		return nil, err
	}
	if m, ok := comp.Modules.Get(id); ok {
		comp.Modules.Claim(name, id)
		return m, nil
	}
	log.Debug().Str("entry", name).Str("module", id).Msg("build entry")
	return c.builder.BuildModule(comp.Modules, name, path)
}
