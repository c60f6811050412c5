// Package parser implements the single-pass recursive-descent
// parser/semantic-analyser/WAT-emitter. There is no AST: each grammar
// production resolves identifiers, checks types and emits WAT as it goes,
// threading an expected type down into expressions so scalar enumerator
// literals can be resolved contextually. Grounded on
// original_source/src/parsing/code.rs.
package parser

import (
	"fmt"
	"io"
	"sort"

	"github.com/gopwat/pwatc/internal/diag"
	"github.com/gopwat/pwatc/internal/emit"
	"github.com/gopwat/pwatc/internal/lexer"
	"github.com/gopwat/pwatc/internal/source"
	"github.com/gopwat/pwatc/internal/token"
	"github.com/gopwat/pwatc/internal/types"
)

const (
	labelContinue = "continue"
	labelEnd      = "end"
	registerZero  = "r0"
)

// Parser is the compiler's single front-to-back-end pass.
type Parser struct {
	lex       *lexer.Lexer
	path      string
	lookahead token.Token
	scope     *types.Scope
	diags     diag.List
	em        *emit.Emitter
}

// New creates a Parser that reads tokens from src and writes WAT to w.
func New(buf *source.Buffer, w io.Writer) *Parser {
	return &Parser{
		lex:   lexer.New(buf),
		path:  buf.File(),
		scope: types.Builtins(),
		em:    emit.New(w),
	}
}

// Compile runs the parser/analyser/emitter over the whole input and returns
// the diagnostics gathered along the way. A non-nil error indicates an
// unrecoverable failure (panic-mode recovery found no synchronizing token
// before EOF, or the lexer itself faulted past recovery); diagnostics
// collected up to that point are still returned.
func (p *Parser) Compile() (*diag.List, error) {
	if err := p.proceed(); err != nil {
		return &p.diags, err
	}
	if err := p.program(); err != nil {
		return &p.diags, err
	}
	p.em.Flush()
	return &p.diags, nil
}

// Check runs the same analysis as Compile but silences WAT emission,
// exercising the front end only.
func (p *Parser) Check() (*diag.List, error) {
	p.em.Silence()
	return p.Compile()
}

// <program> ::= program <identifier> ; <block> .
func (p *Parser) program() error {
	p.em.ModStart()

	if p.lookahead.Kind == token.EOF {
		return nil
	}

	for _, name := range p.procedureNames() {
		id, _ := p.scope.Get(name)
		p.em.FuncImport(name, id.ParamTypes)
	}

	err := func() error {
		if err := p.consume(token.Program); err != nil {
			return err
		}
		if _, err := p.identifier(); err != nil {
			return err
		}
		p.em.FuncStart("program", true)
		p.em.FuncLocal(registerZero, types.IntegerType)
		return p.consume(token.Semicolon)
	}()
	if err != nil {
		// A failure to recover here is swallowed rather than propagated,
		// matching code.rs::program's .unwrap_or_default(): even if
		// neither "type" nor "var" turns up before EOF, parsing presses
		// on into the block with whatever the lookahead already is.
		_ = p.recover(token.Type, token.Var)
	}

	p.scope = types.EmptyWithOuter(p.scope)
	if err := p.block(); err != nil {
		if rerr := p.recover(token.Dot); rerr != nil {
			return rerr
		}
	}

	if err := p.consume(token.Dot); err != nil {
		if rerr := p.recover(token.EOF); rerr != nil {
			return rerr
		}
	}

	p.scope = p.scope.Collapse()

	p.em.FuncEnd()
	p.em.ModEnd()

	return nil
}

// procedureNames returns the names of every builtin procedure in scope, in
// a deterministic (sorted) order — Go map iteration order is randomized, and
// the import list must be stable across runs.
func (p *Parser) procedureNames() []string {
	var names []string
	for name, id := range p.scope.All() {
		if id.Kind == types.IdentProcedure {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// <block> ::= <type definition part> <variable declaration part> <statement part>
func (p *Parser) block() error {
	if err := p.typeDefinitions(); err != nil {
		if rerr := p.recover(token.Var, token.Begin); rerr != nil {
			return rerr
		}
	}

	if p.lookahead.Kind == token.Var {
		if err := p.variableDeclarations(); err != nil {
			if rerr := p.recover(token.Begin, token.Semicolon); rerr != nil {
				return rerr
			}
		}
	}

	return p.statements()
}

// <type definition part> ::= <empty> | type <type definition> {; <type definition>} ;
func (p *Parser) typeDefinitions() error {
	if p.lookahead.Kind != token.Type {
		return nil
	}

	if err := p.consume(token.Type); err != nil {
		return err
	}
	if err := p.typeDefinition(); err != nil {
		return err
	}

	for {
		if err := p.consume(token.Semicolon); err != nil {
			return err
		}
		if p.lookahead.Kind != token.Ident {
			break
		}
		if err := p.typeDefinition(); err != nil {
			return err
		}
	}

	return nil
}

// <type definition> ::= <identifier> = <type>
func (p *Parser) typeDefinition() error {
	name, err := p.identifier()
	if err != nil {
		return err
	}
	if err := p.consume(token.Eq); err != nil {
		return err
	}
	t, err := p.parseType()
	if err != nil {
		return err
	}

	if err := p.scope.Put(name, types.NewNamedType(t)); err != nil {
		p.redefinedIdentifier(name)
	}

	return nil
}

// <variable declaration part> ::= <empty> | var <variable declaration> {; <variable declaration>} ;
func (p *Parser) variableDeclarations() error {
	if p.lookahead.Kind != token.Var {
		return nil
	}

	if err := p.proceed(); err != nil {
		return err
	}
	if err := p.variableDeclaration(); err != nil {
		return err
	}

	for {
		if err := p.consume(token.Semicolon); err != nil {
			return err
		}
		if p.lookahead.Kind != token.Ident {
			break
		}
		if err := p.variableDeclaration(); err != nil {
			return err
		}
	}

	return nil
}

// <variable declaration> ::= <identifier> {, <identifier>} : <type>
func (p *Parser) variableDeclaration() error {
	seen := map[string]bool{}
	var names []string

	for {
		name, err := p.identifier()
		if err != nil {
			return p.recover(token.Colon)
		}
		if seen[name] {
			p.redefinedIdentifier(name)
		} else {
			seen[name] = true
			names = append(names, name)
		}

		if p.lookahead.Kind == token.Comma {
			if err := p.proceed(); err != nil {
				return err
			}
			continue
		}
		if p.lookahead.Kind == token.Colon {
			break
		}
	}

	if err := p.consume(token.Colon); err != nil {
		return err
	}

	t, err := p.parseType()
	if err != nil {
		return err
	}

	for _, name := range names {
		p.em.FuncLocal(name, t)
	}

	for _, name := range names {
		if err := p.scope.Put(name, types.NewVariable(name, t)); err != nil {
			p.redefinedIdentifier(name)
		}
	}

	return nil
}

// <type> ::= <simple type> | <structured type>
func (p *Parser) parseType() (types.Type, error) {
	if p.lookahead.Kind == token.Record {
		return p.recordType()
	}
	return p.simpleType()
}

// <simple type> ::= <scalar type> | <subrange type> | <type identifier>
func (p *Parser) simpleType() (types.Type, error) {
	switch p.lookahead.Kind {
	case token.Lbracket:
		return p.scalarType()
	case token.Number:
		return p.subrangeType()
	case token.Ident:
		return p.typeIdentifier()
	default:
		return types.UnknownType, p.syntaxErrorf("expected left bracket, number, or an identifier, found %s", p.lookahead)
	}
}

// <subrange type> ::= <constant> .. <constant>
//
// Unimplemented, matching original_source's todo!("subrange_type"): reported
// as a semantic error instead of silently mishandled.
func (p *Parser) subrangeType() (types.Type, error) {
	return types.UnknownType, p.semanticError("unimplemented: subrange types")
}

func (p *Parser) typeIdentifier() (types.Type, error) {
	name, err := p.identifier()
	if err != nil {
		return types.UnknownType, err
	}

	id, ok := p.scope.Get(name)
	if !ok {
		p.undeclaredIdentifier(name)
		return types.UnknownType, nil
	}
	if id.Kind != types.IdentNamedType {
		p.invalidIdentifier("type", name)
		return types.UnknownType, nil
	}
	return id.Type, nil
}

// <scalar type> ::= ( <identifier> {, <identifier>} )
func (p *Parser) scalarType() (types.Type, error) {
	if err := p.consume(token.Lbracket); err != nil {
		return types.UnknownType, err
	}

	var enumerators []string
	seen := map[string]bool{}
	for {
		name, err := p.identifier()
		if err != nil {
			return types.UnknownType, err
		}
		if seen[name] {
			p.redefinedIdentifier(name)
		} else {
			seen[name] = true
			enumerators = append(enumerators, name)
		}

		if p.lookahead.Kind == token.Comma {
			if err := p.proceed(); err != nil {
				return types.UnknownType, err
			}
			continue
		}

		if err := p.consume(token.Rbracket); err != nil {
			return types.UnknownType, err
		}
		return types.NewScalar(enumerators), nil
	}
}

// <record type> ::= record <field list> end
func (p *Parser) recordType() (types.Type, error) {
	if err := p.consume(token.Record); err != nil {
		return types.UnknownType, err
	}

	fields, err := p.fieldList()
	if err != nil {
		if rerr := p.recover(token.End); rerr != nil {
			return types.UnknownType, rerr
		}
		fields = types.Fields{}
	}

	if err := p.consume(token.End); err != nil {
		return types.UnknownType, err
	}

	return types.NewRecord(fields), nil
}

// <field list> ::= <fixed part>
func (p *Parser) fieldList() (types.Fields, error) {
	table := types.Fields{}
	if err := p.fixedPart(table); err != nil {
		return nil, err
	}
	return table, nil
}

// <fixed part> ::= <record section> {; <record section>}
func (p *Parser) fixedPart(table types.Fields) error {
	if err := p.recordSection(table); err != nil {
		return err
	}

	for p.lookahead.Kind == token.Semicolon {
		if err := p.proceed(); err != nil {
			return err
		}
		if err := p.recordSection(table); err != nil {
			return err
		}
	}

	return nil
}

// <record section> ::= <field identifier> {, <field identifier>} : <type> | <empty>
func (p *Parser) recordSection(table types.Fields) error {
	if p.lookahead.Kind != token.Ident {
		return nil
	}

	var ids []string
	seen := map[string]bool{}
	for {
		name, err := p.identifier()
		if err != nil {
			if rerr := p.recover(token.Colon); rerr != nil {
				return rerr
			}
			name = ""
		}

		if seen[name] {
			p.redefinedIdentifier(name)
		} else {
			seen[name] = true
			ids = append(ids, name)
		}

		if p.lookahead.Kind == token.Comma {
			if err := p.proceed(); err != nil {
				return err
			}
			continue
		}
		break
	}

	if err := p.consume(token.Colon); err != nil {
		return err
	}

	t, err := p.parseType()
	if err != nil {
		return err
	}

	for _, id := range ids {
		table[id] = t
	}

	return nil
}

// identifier consumes an Ident token and returns its text, matching
// code.rs::identifier's syntax-error-on-mismatch behaviour.
func (p *Parser) identifier() (string, error) {
	if p.lookahead.Kind != token.Ident {
		return "", p.syntaxErrorf("expected identifier, found %s", p.lookahead)
	}
	name := p.lookahead.Text
	if err := p.proceed(); err != nil {
		return "", err
	}
	return name, nil
}

func (p *Parser) consume(kind token.Kind) error {
	if p.lookahead.Kind != kind {
		return p.syntaxErrorf("expected %s, found %s", kind, p.lookahead)
	}
	return p.proceed()
}

func (p *Parser) consumeAny(kinds ...token.Kind) (token.Kind, error) {
	for _, k := range kinds {
		if p.lookahead.Kind == k {
			if err := p.proceed(); err != nil {
				return token.Unknown, err
			}
			return k, nil
		}
	}
	return token.Unknown, p.syntaxErrorf("expected one of %v, found %s", kinds, p.lookahead)
}

func (p *Parser) proceed() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.lookahead = tok
	return nil
}

// recover implements panic-mode error recovery: if one of syncKinds is
// reachable ahead in the stream, discard tokens until it is found;
// otherwise recovery itself fails and compilation aborts.
func (p *Parser) recover(syncKinds ...token.Kind) error {
	ok, err := p.lex.Available(syncKinds...)
	if err != nil {
		return err
	}
	if !ok {
		return diag.New(diag.Syntax, p.path, p.lex.PrevPos(),
			"failed to recover, none of the %v tokens are present in the stream", syncKinds)
	}
	return p.proceedUntil(syncKinds...)
}

func (p *Parser) proceedUntil(syncKinds ...token.Kind) error {
	want := make(map[token.Kind]bool, len(syncKinds))
	for _, k := range syncKinds {
		want[k] = true
	}

	for {
		tok, err := p.lex.Next()
		if err != nil {
			return err
		}
		p.lookahead = tok
		if want[tok.Kind] || tok.Kind == token.EOF {
			return nil
		}
	}
}

// invalidIdentifier reports name being used as the wrong kind of identifier.
// A name bound to the Unknown sentinel was already reported as undeclared and
// is not reported again.
func (p *Parser) invalidIdentifier(expectedKind, name string) {
	if id, ok := p.scope.Get(name); ok && id.Kind == types.IdentUnknown {
		return
	}
	p.semanticError(fmt.Sprintf("invalid usage of %s, expected %s identifier", name, expectedKind))
}

// undeclaredIdentifier records name as Unknown in the current scope so later
// references to it do not each produce their own diagnostic, and returns the
// diagnostic as an error.
func (p *Parser) undeclaredIdentifier(name string) error {
	_ = p.scope.Put(name, types.UnknownIdentifier)
	return p.semanticError(fmt.Sprintf("identifier not found %q", name))
}

func (p *Parser) redefinedIdentifier(name string) {
	p.semanticError(fmt.Sprintf("duplicate identifier %q", name))
}

// reportEmitError turns an unsupported-operator error from the emitter into
// a semantic diagnostic, the Go equivalent of the Rust source's
// todo!()/unimplemented!() panics for operators the WAT backend cannot
// lower. A nil err is a no-op.
func (p *Parser) reportEmitError(err error) error {
	if err == nil {
		return nil
	}
	return p.semanticError(err.Error())
}

func (p *Parser) semanticError(msg string) error {
	return p.reportError(diag.Semantic, msg)
}

func (p *Parser) syntaxErrorf(format string, args ...interface{}) error {
	return p.reportError(diag.Syntax, fmt.Sprintf(format, args...))
}

// reportError records a diagnostic, silences the emitter (emission stays
// silenced for the rest of compilation once anything has gone wrong) and
// returns the diagnostic as an error for the caller to propagate or recover
// from via panic-mode recovery.
func (p *Parser) reportError(kind diag.Kind, msg string) error {
	d := diag.New(kind, p.path, p.lex.PrevPos(), "%s", msg)
	p.em.Silence()
	p.diags.Push(d)
	return d
}
