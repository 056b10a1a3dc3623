package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/x.js":                         "",
		"src/x.ts":                         "",
		"src/only.ts":                      "",
		"src/exact":                        "",
		"src/exact.js":                     "",
		"src/dir/index.js":                 "",
		"src/sibling.js":                   "",
		"src/node_modules/sibling.js":      "",
		"src/local.js":                     "",
		"src/pkg/package.json":             `{"main": "lib/main"}`,
		"src/pkg/lib/main.js":              "",
		"node_modules/left-pad/index.js":   "",
		"node_modules/lodash/package.json": `{"main": "lodash.js"}`,
		"node_modules/lodash/lodash.js":    "",
		"node_modules/lodash/fp.js":        "",
	})
	src := filepath.Join(root, "src")

	tests := []struct {
		name       string
		specifier  string
		extensions []string
		want       string
	}{
		{"declared order wins", "./x", []string{".js", ".ts"}, "src/x.js"},
		{"declared order wins reversed", "./x", []string{".ts", ".js"}, "src/x.ts"},
		{"later extension", "./only", []string{".js", ".ts"}, "src/only.ts"},
		{"existing file first", "./exact", []string{".js"}, "src/exact"},
		{"explicit extension", "./x.ts", []string{".js"}, "src/x.ts"},
		{"parent directory", "../src/x", []string{".js"}, "src/x.js"},
		{"directory index", "./dir", []string{".js"}, "src/dir/index.js"},
		{"package main", "./pkg", []string{".js"}, "src/pkg/lib/main.js"},
		{"bare index", "left-pad", []string{".js"}, "node_modules/left-pad/index.js"},
		{"bare package main", "lodash", []string{".js"}, "node_modules/lodash/lodash.js"},
		{"bare subpath", "lodash/fp", []string{".js"}, "node_modules/lodash/fp.js"},
		{"bare sibling", "local", []string{".js"}, "src/local.js"},
		{"node_modules before sibling", "sibling", []string{".js"}, "src/node_modules/sibling.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.extensions).Resolve(tt.specifier, src)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.want)), got)
		})
	}
}

func TestResolveAbsolute(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.js": ""})

	got, err := New(nil).Resolve(filepath.Join(root, "a"), "/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a.js"), got)
}

func TestResolveError(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"x.ts": ""})

	_, err := New([]string{".js"}).Resolve("./x", root)
	require.Error(t, err)

	var rerr *ResolutionError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "./x", rerr.Specifier)
	assert.Equal(t, root, rerr.Dir)
	assert.Contains(t, err.Error(), `"./x"`)

	_, err = New(nil).Resolve("missing-package", root)
	require.True(t, errors.As(err, &rerr))
}

func TestResolveIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.js": "", "a.ts": ""})

	r := New([]string{".ts", ".js"})
	first, err := r.Resolve("./a", root)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := r.Resolve("./a", root)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
