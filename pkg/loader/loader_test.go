package loader

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendTransform(suffix string) Transform {
	return TransformFunc(func(path, source string) (string, error) {
		return source + suffix, nil
	})
}

func TestPipelineAppliesInReverse(t *testing.T) {
	p := &Pipeline{Rules: []Rule{
		{Test: regexp.MustCompile(`\.js$`), Use: []Transform{appendTransform("1"), appendTransform("2")}},
		{Test: regexp.MustCompile(`\.ts$`), Use: []Transform{appendTransform("ts")}},
		{Test: regexp.MustCompile(`src/`), Use: []Transform{appendTransform("3")}},
	}}

	out, err := p.Apply("/app/src/a.js", "x")
	require.NoError(t, err)
	assert.Equal(t, "x321", out)

	out, err = p.Apply("/app/lib/a.ts", "x")
	require.NoError(t, err)
	assert.Equal(t, "xts", out)

	out, err = p.Apply("/app/lib/a.css", "x")
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func TestNilPipeline(t *testing.T) {
	var p *Pipeline
	out, err := p.Apply("a.js", "src")
	require.NoError(t, err)
	assert.Equal(t, "src", out)
}

func TestPipelineError(t *testing.T) {
	boom := errors.New("boom")
	called := false
	p := &Pipeline{Rules: []Rule{{
		Test: regexp.MustCompile(`.`),
		Use: []Transform{
			TransformFunc(func(path, source string) (string, error) {
				called = true
				return source, nil
			}),
			TransformFunc(func(path, source string) (string, error) {
				return "", boom
			}),
		},
	}}}

	_, err := p.Apply("a.js", "src")
	require.Error(t, err)
	assert.False(t, called, "transforms after a failure must not run")

	var terr *TransformError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "a.js", terr.Path)
	assert.ErrorIs(t, err, boom)
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"esbuild", "json", "strip-bom"} {
		tr, err := Lookup(name)
		require.NoError(t, err, name)
		assert.NotNil(t, tr)
	}

	_, err := Lookup("babel")
	assert.ErrorContains(t, err, `unknown transform "babel"`)
	assert.Equal(t, []string{"esbuild", "json", "strip-bom"}, Names())
}

func TestEsbuildTypeScript(t *testing.T) {
	out, err := Esbuild("/app/a.ts", "const x: number = 1;\nmodule.exports = x;\n")
	require.NoError(t, err)
	assert.NotContains(t, out, ": number")
	assert.Contains(t, out, "module.exports = x")
}

func TestEsbuildModuleSyntax(t *testing.T) {
	out, err := Esbuild("/app/a.js", "import b from './b';\nexport default b;\n")
	require.NoError(t, err)
	assert.Contains(t, out, `require("./b")`)
	assert.NotContains(t, out, "import b from")
}

func TestEsbuildSyntaxError(t *testing.T) {
	_, err := Esbuild("/app/a.js", "const = ;")
	assert.ErrorContains(t, err, "esbuild:")
}

func TestJSON(t *testing.T) {
	out, err := JSON("a.json", "{\"a\": 1}\n")
	require.NoError(t, err)
	assert.Equal(t, "module.exports = {\"a\": 1};\n", out)

	_, err = JSON("a.json", "{")
	assert.Error(t, err)
}

func TestStripBOM(t *testing.T) {
	out, err := StripBOM("a.js", "\uFEFFvar a;")
	require.NoError(t, err)
	assert.Equal(t, "var a;", out)
}
