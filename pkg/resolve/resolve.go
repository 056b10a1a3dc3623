// Package resolve maps import specifiers to files on disk. It implements a
// small subset of the node resolution algorithm: relative and absolute
// specifiers, node_modules lookup for bare specifiers falling back to the
// importing directory, extension probing and package.json "main" for
// directories.
package resolve

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultExtensions is used when a Resolver has no extensions configured.
var DefaultExtensions = []string{".js"}

// ResolutionError is returned when no candidate file exists for a specifier.
type ResolutionError struct {
	Specifier string
	Dir       string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve: can't resolve %q in %s", e.Specifier, e.Dir)
}

// Resolver resolves specifiers. Extensions are probed in order after the
// specifier itself, so the first listed extension wins a tie.
type Resolver struct {
	Extensions []string
}

// New returns a resolver probing the given extensions.
func New(extensions []string) *Resolver {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &Resolver{Extensions: extensions}
}

// Resolve returns the absolute path of the file specifier names when
// requested from dir.
func (r *Resolver) Resolve(specifier, dir string) (string, error) {
	if isRelative(specifier) || filepath.IsAbs(specifier) {
		name := specifier
		if !filepath.IsAbs(name) {
			name = filepath.Join(dir, specifier)
		}
		if p, ok := r.load(name); ok {
			return abs(p)
		}
		return "", &ResolutionError{Specifier: specifier, Dir: dir}
	}

	// Bare specifiers walk up looking for node_modules.
	for cur := dir; ; {
		name := filepath.Join(cur, "node_modules", filepath.FromSlash(specifier))
		if p, ok := r.load(name); ok {
			log.Debug().Str("specifier", specifier).Str("path", p).Msg("resolve: node_modules")
			return abs(p)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}

	// Otherwise a bare specifier names a file next to the importer.
	if p, ok := r.load(filepath.Join(dir, filepath.FromSlash(specifier))); ok {
		return abs(p)
	}
	return "", &ResolutionError{Specifier: specifier, Dir: dir}
}

// load tries name as a file, then name with each extension, then name as a
// directory.
func (r *Resolver) load(name string) (string, bool) {
	if p, ok := r.loadFile(name); ok {
		return p, true
	}
	st, err := os.Stat(name)
	if err != nil || !st.IsDir() {
		return "", false
	}
	return r.loadDir(name)
}

func (r *Resolver) loadFile(name string) (string, bool) {
	if isFile(name) {
		return name, true
	}
	for _, ext := range r.Extensions {
		if isFile(name + ext) {
			return name + ext, true
		}
	}
	return "", false
}

func (r *Resolver) loadDir(dir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err == nil {
		m := struct {
			Main string `json:"main"`
		}{}
		if err := json.Unmarshal(data, &m); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("resolve: invalid package.json")
		} else if m.Main != "" {
			main := filepath.Join(dir, filepath.FromSlash(m.Main))
			if p, ok := r.loadFile(main); ok {
				return p, true
			}
			if p, ok := r.loadFile(filepath.Join(main, "index")); ok {
				return p, true
			}
		}
	}
	return r.loadFile(filepath.Join(dir, "index"))
}

func isRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

func isFile(name string) bool {
	st, err := os.Stat(name)
	return err == nil && st.Mode().IsRegular()
}

func abs(p string) (string, error) {
	a, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return a, nil
}
