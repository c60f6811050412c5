package types

import "fmt"

// Scope is a symbol table with lexical chaining to an outer Scope. Lookups
// fall through to the outer scope; duplicate-declaration checks only look
// at the innermost scope, so shadowing an outer name is legal.
type Scope struct {
	outer       *Scope
	identifiers map[string]Identifier
}

// DuplicateError reports that a name was already declared in the innermost
// scope.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%q is already present in the scope", e.Name)
}

// NewScope builds a root scope seeded with table and no outer scope.
func NewScope(table map[string]Identifier) *Scope {
	if table == nil {
		table = map[string]Identifier{}
	}
	return &Scope{identifiers: table}
}

// Builtins returns a fresh root scope pre-populated with the language's
// built-in types (char, integer, real, boolean) and intrinsic procedures
// (writeln_int, writeln_real), matching Scope::default() in scope.rs.
func Builtins() *Scope {
	return NewScope(map[string]Identifier{
		"char":         NewNamedType(CharType),
		"integer":      NewNamedType(IntegerType),
		"real":         NewNamedType(RealType),
		"boolean":      NewNamedType(Boolean()),
		"writeln_int":  NewProcedure([]Type{IntegerType}),
		"writeln_real": NewProcedure([]Type{RealType}),
	})
}

// WithOuter builds a new scope nested inside outer, seeded with table.
func WithOuter(outer *Scope, table map[string]Identifier) *Scope {
	if table == nil {
		table = map[string]Identifier{}
	}
	return &Scope{outer: outer, identifiers: table}
}

// EmptyWithOuter builds a new, empty scope nested inside outer.
func EmptyWithOuter(outer *Scope) *Scope {
	return WithOuter(outer, nil)
}

// All returns the identifiers declared directly in this scope (not its
// outer chain). The returned map must not be mutated by the caller.
func (s *Scope) All() map[string]Identifier {
	return s.identifiers
}

// Collapse returns the outer scope, discarding this one. Used when a nested
// block (program body, with-statement) ends.
func (s *Scope) Collapse() *Scope {
	return s.outer
}

// Put declares name in the innermost scope. It fails if name is already
// declared there; shadowing an outer declaration is fine.
func (s *Scope) Put(name string, id Identifier) error {
	if _, ok := s.identifiers[name]; ok {
		return &DuplicateError{Name: name}
	}
	s.identifiers[name] = id
	return nil
}

// Extend declares every name in table, in map iteration order (which is
// unspecified), stopping at the first duplicate.
func (s *Scope) Extend(table map[string]Identifier) error {
	for name, id := range table {
		if err := s.Put(name, id); err != nil {
			return err
		}
	}
	return nil
}

// Get resolves name, searching this scope then each outer scope in turn.
// The second return value is false if name is not declared anywhere in the
// chain.
func (s *Scope) Get(name string) (Identifier, bool) {
	if id, ok := s.identifiers[name]; ok {
		return id, true
	}
	if s.outer != nil {
		return s.outer.Get(name)
	}
	return Identifier{}, false
}
