package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldog/jsbld/pkg/bundler"
)

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"progress", "timing"}, Names())

	p, err := Lookup("timing")
	require.NoError(t, err)
	assert.IsType(t, &Timing{}, p)

	p2, err := Lookup("timing")
	require.NoError(t, err)
	assert.NotSame(t, p, p2, "each lookup returns a fresh plugin")

	_, err = Lookup("nope")
	assert.ErrorContains(t, err, `unknown plugin "nope"`)
}

func TestPluginsTapHooks(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.js"), []byte("module.exports = 1;"), 0o644))

	timing := &Timing{}
	c, err := bundler.New(bundler.Options{Context: root, Entry: map[string]string{"main": "a.js"}}, Progress{}, timing)
	require.NoError(t, err)

	assert.Equal(t, []string{"progress", "timing"}, c.Hooks.Run.Taps())
	assert.Equal(t, []string{"progress"}, c.Hooks.Emit.Taps())
	assert.Equal(t, []string{"progress", "timing"}, c.Hooks.Done.Taps())

	_, err = c.Run()
	require.NoError(t, err)
	assert.Positive(t, int64(timing.Elapsed))
}
