// Package diag implements the compiler's diagnostics list: an append-only,
// ordered collection of lexical, syntax and semantic errors.
package diag

import (
	"fmt"
	"strings"

	"github.com/gopwat/pwatc/internal/source"
)

// Kind classifies a Diagnostic.
type Kind int

const (
	Lexical Kind = iota
	Syntax
	Semantic
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Syntax:
		return "syntax error"
	case Semantic:
		return "semantic error"
	default:
		return "error"
	}
}

// Diagnostic is a single reported problem, modeled on
// original_source/src/error/error.rs's CompilationError.
type Diagnostic struct {
	Kind    Kind
	Path    string
	Pos     source.Position
	Message string
}

// Error implements the error interface so a Diagnostic can be returned and
// wrapped like any other Go error.
func (d Diagnostic) Error() string {
	path := d.Path
	if path == "" {
		path = "<input>"
	}
	return fmt.Sprintf("%s at %s:%s: %s", d.Kind, path, d.Pos, d.Message)
}

// New builds a Diagnostic. path may be "" for an anonymous buffer.
func New(kind Kind, path string, pos source.Position, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Kind: kind, Path: path, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// List is an append-only ordered collection of diagnostics. The zero value
// is an empty, usable list.
type List struct {
	items []Diagnostic
}

// Push appends d to the list.
func (l *List) Push(d Diagnostic) {
	l.items = append(l.items, d)
}

// Count returns the number of diagnostics reported so far.
func (l *List) Count() int {
	return len(l.items)
}

// Empty reports whether no diagnostics have been reported.
func (l *List) Empty() bool {
	return len(l.items) == 0
}

// Items returns the diagnostics in report order. The returned slice must
// not be mutated by the caller.
func (l *List) Items() []Diagnostic {
	return l.items
}

// String renders every diagnostic, one per line.
func (l *List) String() string {
	var b strings.Builder
	for i, d := range l.items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.Error())
	}
	return b.String()
}
