package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

var builtins = map[string]Transform{
	"esbuild":   TransformFunc(Esbuild),
	"json":      TransformFunc(JSON),
	"strip-bom": TransformFunc(StripBOM),
}

// Lookup returns the built-in transform registered under name.
func Lookup(name string) (Transform, error) {
	t, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("loader: unknown transform %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return t, nil
}

// Names lists the built-in transform names.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Esbuild compiles TypeScript, JSX and ES module syntax down to CommonJS so
// that imports reach the graph builder as require calls.
func Esbuild(path, source string) (string, error) {
	result := api.Transform(source, api.TransformOptions{
		Loader:     esbuildLoader(path),
		Format:     api.FormatCommonJS,
		Sourcefile: path,
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		var msgs []string
		for _, msg := range result.Errors {
			if msg.Location != nil {
				msgs = append(msgs, fmt.Sprintf("%d:%d: %s", msg.Location.Line, msg.Location.Column, msg.Text))
			} else {
				msgs = append(msgs, msg.Text)
			}
		}
		return "", errors.New("esbuild: " + strings.Join(msgs, "; "))
	}
	return string(result.Code), nil
}

func esbuildLoader(path string) api.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	case ".jsx":
		return api.LoaderJSX
	default:
		return api.LoaderJS
	}
}

// JSON turns a JSON document into a module exporting it.
func JSON(path, source string) (string, error) {
	if !json.Valid([]byte(source)) {
		return "", errors.New("json: invalid document")
	}
	return "module.exports = " + strings.TrimSpace(source) + ";\n", nil
}

// StripBOM drops a leading UTF-8 byte order mark.
func StripBOM(path, source string) (string, error) {
	return strings.TrimPrefix(source, "\uFEFF"), nil
}
