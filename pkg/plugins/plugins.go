// Package plugins contains lifecycle observers that can be enabled by name
// from the configuration.
package plugins

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coldog/jsbld/pkg/bundler"
)

var registry = map[string]func() bundler.Plugin{
	"progress": func() bundler.Plugin { return Progress{} },
	"timing":   func() bundler.Plugin { return &Timing{} },
}

// Lookup returns a new instance of the plugin registered under name.
func Lookup(name string) (bundler.Plugin, error) {
	newPlugin, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("plugins: unknown plugin %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return newPlugin(), nil
}

// Names lists the registered plugin names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Progress logs each lifecycle point.
type Progress struct{}

func (Progress) Apply(c *bundler.Compiler) {
	c.Hooks.Run.Tap("progress", func() {
		log.Info().Int("entries", len(c.Options.Entry)).Msg("compiling")
	})
	c.Hooks.Emit.Tap("progress", func() {
		comp := c.Compilation()
		log.Info().Int("modules", comp.Modules.Len()).Int("chunks", len(comp.Chunks)).Msg("emitting")
	})
	c.Hooks.Done.Tap("progress", func() {
		log.Info().Strs("files", c.Compilation().Files).Str("dir", c.Options.OutputPath).Msg("done")
	})
}

// Timing logs how long a run took.
type Timing struct {
	start   time.Time
	Elapsed time.Duration
}

func (t *Timing) Apply(c *bundler.Compiler) {
	c.Hooks.Run.Tap("timing", func() {
		t.start = time.Now()
	})
	c.Hooks.Done.Tap("timing", func() {
		t.Elapsed = time.Since(t.start)
		log.Info().Dur("elapsed", t.Elapsed).Msg("build finished")
	})
}
