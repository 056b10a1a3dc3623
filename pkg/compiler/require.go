package compiler

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"
)

// RequireName is the callee recognised as an import call.
const RequireName = "require"

// The source is parsed inside a function the same way the bundle runtime
// wraps it, so that top-level return statements are accepted.
const (
	wrapHead = "(function(){"
	wrapTail = "\n})"
)

// goja numbers positions from 1 when no file set is given.
const idxBase = 1

type span struct {
	start, end int
}

// callSite is one require('...') call found in a module.
type callSite struct {
	specifier string
	callee    span
	arg       span
}

type edit struct {
	span
	text string
}

func parse(path, source string) (*ast.Program, error) {
	prog, err := parser.ParseFile(nil, "", wrapHead+source+wrapTail, 0)
	if err != nil {
		return nil, newParseError(path, err)
	}
	return prog, nil
}

// newParseError reports the first syntax error at its position in the
// unwrapped source. Later errors are dropped.
func newParseError(path string, err error) *ParseError {
	var list parser.ErrorList
	if !errors.As(err, &list) || len(list) == 0 {
		return &ParseError{Path: path, Err: err}
	}
	first := *list[0]
	if first.Position.Line == 1 {
		first.Position.Column -= len(wrapHead)
	}
	first.Position.Filename = path
	return &ParseError{
		Path:    path,
		Line:    first.Position.Line,
		Column:  first.Position.Column,
		Message: first.Message,
		Err:     &first,
	}
}

// commentHashbang turns a leading "#!" line into a line comment. The length
// of the source is unchanged so parser offsets stay valid.
func commentHashbang(source string) string {
	if !strings.HasPrefix(source, "#!") {
		return source
	}
	return "//" + source[2:]
}

// offset converts a parser position into a byte offset into the unwrapped
// source.
func offset(idx file.Idx) int {
	return int(idx) - idxBase - len(wrapHead)
}

// findRequires walks prog depth first and returns every require call in
// source order. The tree is only read.
func findRequires(path, source string, prog *ast.Program) ([]callSite, error) {
	var sites []callSite
	err := walk(reflect.ValueOf(prog), map[visitKey]bool{}, func(n ast.Node) error {
		call, ok := n.(*ast.CallExpression)
		if !ok {
			return nil
		}
		callee, ok := call.Callee.(*ast.Identifier)
		if !ok || callee.Name != RequireName {
			return nil
		}

		var lit *ast.StringLiteral
		if len(call.ArgumentList) == 1 {
			lit, _ = call.ArgumentList[0].(*ast.StringLiteral)
		}
		if lit == nil {
			start, end := offset(call.Idx0()), offset(call.Idx1())
			return &UnsupportedImportError{
				Path: path,
				Line: strings.Count(source[:start], "\n") + 1,
				Expr: source[start:end],
			}
		}

		sites = append(sites, callSite{
			specifier: lit.Value.String(),
			callee:    span{offset(callee.Idx0()), offset(callee.Idx1())},
			arg:       span{offset(lit.Idx0()), offset(lit.Idx1())},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].callee.start < sites[j].callee.start })
	return sites, nil
}

type visitKey struct {
	t reflect.Type
	p uintptr
}

var fileType = reflect.TypeOf((*file.File)(nil))

// walk visits every ast.Node reachable from v through exported fields,
// parents before children. Nodes shared between lists (hoisted declarations)
// are visited once.
func walk(v reflect.Value, seen map[visitKey]bool, visit func(ast.Node) error) error {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return walk(v.Elem(), seen, visit)
	case reflect.Pointer:
		if v.IsNil() || v.Type() == fileType {
			return nil
		}
		key := visitKey{v.Type(), v.Pointer()}
		if seen[key] {
			return nil
		}
		seen[key] = true
		if n, ok := v.Interface().(ast.Node); ok {
			if err := visit(n); err != nil {
				return err
			}
		}
		return walk(v.Elem(), seen, visit)
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			if err := walk(v.Field(i), seen, visit); err != nil {
				return err
			}
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			if err := walk(v.Index(i), seen, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyEdits returns source with every edit applied. Edits must not overlap.
func applyEdits(source string, edits []edit) string {
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var b strings.Builder
	b.Grow(len(source))
	last := 0
	for _, e := range edits {
		b.WriteString(source[last:e.start])
		b.WriteString(e.text)
		last = e.end
	}
	b.WriteString(source[last:])
	return b.String()
}
