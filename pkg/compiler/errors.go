package compiler

import "fmt"

// ParseError is returned when a module's source is not valid JavaScript.
// Line and Column are 1-based and zero when the parser gave no position.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("compiler: parse %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("compiler: parse %s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnsupportedImportError is returned for a require call whose argument is
// not a single string literal.
type UnsupportedImportError struct {
	Path string
	Line int
	Expr string
}

func (e *UnsupportedImportError) Error() string {
	return fmt.Sprintf("compiler: %s:%d: unsupported import %s: argument must be a string literal", e.Path, e.Line, e.Expr)
}
