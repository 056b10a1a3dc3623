// Package loader implements the source transform pipeline that runs over a
// file's raw text before it is parsed. Transforms are matched against the
// file path by rule and applied last to first, the same order webpack applies
// its loaders in.
package loader

import (
	"fmt"
	"regexp"
)

// Transform rewrites the source text of the file at path.
type Transform interface {
	Transform(path, source string) (string, error)
}

// TransformFunc adapts a plain function to a Transform.
type TransformFunc func(path, source string) (string, error)

func (f TransformFunc) Transform(path, source string) (string, error) {
	return f(path, source)
}

// TransformError wraps a failing transform.
type TransformError struct {
	Path string
	Err  error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("loader: %s: %v", e.Path, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// Rule applies Use to every path matching Test.
type Rule struct {
	Test *regexp.Regexp
	Use  []Transform
}

// Pipeline is an ordered list of rules. The zero value passes source through
// unchanged.
type Pipeline struct {
	Rules []Rule
}

// Match returns the transforms of every rule matching path in registration
// order.
func (p *Pipeline) Match(path string) []Transform {
	if p == nil {
		return nil
	}
	var matched []Transform
	for _, rule := range p.Rules {
		if rule.Test != nil && rule.Test.MatchString(path) {
			matched = append(matched, rule.Use...)
		}
	}
	return matched
}

// Apply runs the matching transforms over source, last one first.
func (p *Pipeline) Apply(path, source string) (string, error) {
	matched := p.Match(path)
	for i := len(matched) - 1; i >= 0; i-- {
		out, err := matched[i].Transform(path, source)
		if err != nil {
			return "", &TransformError{Path: path, Err: err}
		}
		source = out
	}
	return source, nil
}
