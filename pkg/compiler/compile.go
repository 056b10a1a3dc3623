// Package compiler builds the module graph. Each file is read, passed
// through the loader pipeline, parsed, and has its require calls rewritten to
// canonical module ids served by the bundle runtime. Dependencies are built
// depth first into a shared ModuleSet.
package compiler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/coldog/jsbld/pkg/loader"
	"github.com/coldog/jsbld/pkg/resolve"
)

// LoaderName is the identifier require calls are rewritten to.
const LoaderName = "__jsbld_require__"

// Builder builds modules relative to Root.
type Builder struct {
	Root     string
	Resolver *resolve.Resolver
	Pipeline *loader.Pipeline
}

// ModuleID returns the canonical id of the file at path.
func (b *Builder) ModuleID(path string) (string, error) {
	return ModuleID(b.Root, path)
}

// ModuleID returns path relative to root in POSIX form, prefixed with "./"
// unless it leaves root.
func ModuleID(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("compiler: module id for %s: %w", path, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return rel, nil
	}
	return "./" + rel, nil
}

type pending struct {
	id, path string
}

// BuildModule builds the module at path on behalf of entry, recursing into
// dependencies not yet present in set. The returned module has been added to
// set.
func (b *Builder) BuildModule(set *ModuleSet, entry, path string) (*Module, error) {
	id, err := b.ModuleID(path)
	if err != nil {
		return nil, err
	}
	m := &Module{ID: id, Path: path, Entries: []string{entry}}
	set.begin(m)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compiler: read %s: %w", id, err)
	}
	source, err := b.Pipeline.Apply(path, string(raw))
	if err != nil {
		return nil, err
	}
	source = commentHashbang(source)

	prog, err := parse(path, source)
	if err != nil {
		return nil, err
	}
	set.parsed(id)
	log.Debug().Str("module", id).Str("entry", entry).Msg("compile: parsed")

	sites, err := findRequires(path, source, prog)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	queued := map[string]bool{}
	var deps []pending
	edits := make([]edit, 0, 2*len(sites))
	for _, site := range sites {
		depPath, err := b.Resolver.Resolve(site.specifier, dir)
		if err != nil {
			return nil, fmt.Errorf("compiler: %s: %w", id, err)
		}
		depID, err := b.ModuleID(depPath)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("module", id).Str("specifier", site.specifier).Str("resolved", depID).Msg("compile: resolve")

		edits = append(edits,
			edit{site.callee, LoaderName},
			edit{site.arg, Quote(depID)},
		)
		m.addDependency(depID)

		switch {
		case queued[depID]:
		case set.Building(depID):
			log.Debug().Str("module", id).Str("dependency", depID).Msg("compile: circular dependency")
		default:
			if _, ok := set.Get(depID); ok {
				set.Claim(entry, depID)
				continue
			}
			queued[depID] = true
			deps = append(deps, pending{id: depID, path: depPath})
		}
	}

	m.Source = applyEdits(source, edits)
	m.Hash = hash(m.Source)

	for _, dep := range deps {
		// An earlier sibling may have built it in the meantime.
		if _, ok := set.Get(dep.id); ok {
			set.Claim(entry, dep.id)
			continue
		}
		if set.Building(dep.id) {
			continue
		}
		if _, err := b.BuildModule(set, entry, dep.path); err != nil {
			return nil, err
		}
	}

	set.complete(m)
	return m, nil
}

// Quote renders s as a JavaScript string literal.
func Quote(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		// Marshalling a string cannot fail.
		panic(err)
	}
	return string(data)
}
