package parser

import (
	"github.com/gopwat/pwatc/internal/token"
	"github.com/gopwat/pwatc/internal/types"
)

// <statement part> ::= <compound statement>
func (p *Parser) statements() error {
	return p.compoundStatement()
}

// <compound statement> ::= begin <statement> {; <statement>} end
func (p *Parser) compoundStatement() error {
	if err := p.consume(token.Begin); err != nil {
		return err
	}
	if err := p.statement(); err != nil {
		return err
	}

	for p.lookahead.Kind == token.Semicolon {
		if err := p.proceed(); err != nil {
			return err
		}
		if p.lookahead.Kind == token.End {
			break
		}
		if err := p.statement(); err != nil {
			return err
		}
	}

	return p.consume(token.End)
}

// <statement> ::= <simple statement> | <structured statement>
func (p *Parser) statement() error {
	switch {
	case p.lookahead.Kind == token.Semicolon || p.lookahead.Kind == token.End:
		return nil
	case p.lookahead.Kind == token.Ident:
		return p.simpleStatement()
	case isKeyword(p.lookahead.Kind):
		return p.structuredStatement()
	default:
		return p.syntaxErrorf("a statement cannot start with %s", p.lookahead)
	}
}

// <simple statement> ::= <assignment statement> | <empty statement>
func (p *Parser) simpleStatement() error {
	name := p.lookahead.Text
	id, ok := p.scope.Get(name)
	if !ok {
		// The identifier token is deliberately left unconsumed here,
		// matching code.rs::simple_statement: the error propagates up
		// to the nearest panic-mode recovery point, which is what
		// actually advances the stream.
		return p.undeclaredIdentifier(name)
	}

	switch id.Kind {
	case types.IdentVariable, types.IdentUnknown:
		return p.assignmentStatement()
	case types.IdentProcedure:
		return p.procedureStatement(name, id.ParamTypes)
	default:
		return p.semanticError("illegal statement")
	}
}

// <assignment statement> ::= <variable> := <expression>
func (p *Parser) assignmentStatement() error {
	name, variableType, err := p.variable()
	if err != nil {
		return err
	}
	if err := p.consume(token.Assign); err != nil {
		return err
	}
	expressionType, err := p.expression(variableType)
	if err != nil {
		return err
	}

	if variableType.Kind != types.Unknown && expressionType.Kind != types.Unknown {
		if variableType.Equal(expressionType) {
			p.em.LocalSet(name)
		} else {
			p.semanticError("type mismatch in assignment")
		}
	}

	return nil
}

// <procedure statement> ::=
//
//	<procedure identifier>
//	| <procedure identifier> (<actual parameter> {, <actual parameter>})
//
// The caller (simpleStatement) has already peeked the identifier to decide
// which production to invoke here; procedure_statement re-consumes it. This
// mirrors code.rs::procedure_statement exactly — by the time this call reads
// it, self.lookahead is that same identifier token, since simpleStatement
// only read scope.get(name) without advancing the stream.
func (p *Parser) procedureStatement(name string, paramTypes []types.Type) error {
	if _, err := p.identifier(); err != nil {
		return err
	}

	if len(paramTypes) > 0 {
		if err := p.consume(token.Lbracket); err != nil {
			return err
		}

		for _, t := range paramTypes {
			argType, err := p.expression(t)
			if err != nil {
				return err
			}
			if !argType.Equal(t) {
				p.semanticError("type mismatch in procedure arguments")
			}
		}

		p.em.Call(name)

		if err := p.consume(token.Rbracket); err != nil {
			return err
		}
	}

	return nil
}

// <variable> ::= <identifier> | <identifier> . <field designator>
func (p *Parser) variable() (string, types.Type, error) {
	name, err := p.identifier()
	if err != nil {
		return "", types.UnknownType, err
	}

	id, ok := p.scope.Get(name)
	var t types.Type
	switch {
	case !ok:
		p.undeclaredIdentifier(name)
		t = types.UnknownType
	case id.Kind != types.IdentVariable:
		p.invalidIdentifier("variable", name)
		t = types.UnknownType
	default:
		t = id.Type
	}

	if p.lookahead.Kind != token.Dot {
		return name, t, nil
	}

	if err := p.proceed(); err != nil {
		return "", types.UnknownType, err
	}

	if t.Kind == types.Record {
		ft, err := p.fieldDesignator(t.Fields)
		return name, ft, err
	}

	p.semanticError("attempt to access a field of a non-record variable \"" + name + "\"")
	ft, err := p.fieldDesignator(types.Fields{})
	return name, ft, err
}

// <field designator> ::= <field identifier> | <field identifier> . <field designator>
func (p *Parser) fieldDesignator(subscope types.Fields) (types.Type, error) {
	t, err := p.fieldIdentifier(subscope)
	if err != nil {
		return types.UnknownType, err
	}

	if p.lookahead.Kind != token.Dot {
		return t, nil
	}
	if err := p.proceed(); err != nil {
		return types.UnknownType, err
	}

	if t.Kind == types.Record {
		return p.fieldDesignator(t.Fields)
	}
	p.semanticError("attempt to access a field of a non-record field")
	return p.fieldDesignator(types.Fields{})
}

// <field identifier> ::= <identifier>
func (p *Parser) fieldIdentifier(subscope types.Fields) (types.Type, error) {
	name, err := p.identifier()
	if err != nil {
		return types.UnknownType, err
	}
	if len(subscope) == 0 {
		return types.UnknownType, nil
	}
	if t, ok := subscope[name]; ok {
		return t, nil
	}
	p.semanticError("undefined field " + name)
	return types.UnknownType, nil
}

func isKeyword(k token.Kind) bool {
	return k >= token.If && k <= token.Type
}

// <structured statement> ::=
//
//	<compound statement> | <conditional statement> | <loop statement> | <with statement>
func (p *Parser) structuredStatement() error {
	switch p.lookahead.Kind {
	case token.If:
		return p.conditionalStatement()
	case token.For, token.While, token.Repeat:
		return p.loopStatement()
	case token.Begin:
		return p.compoundStatement()
	case token.With:
		return p.withStatement()
	default:
		return p.syntaxErrorf("keyword %s cannot start a statement", p.lookahead)
	}
}

// <conditional statement> ::= <if statement>
func (p *Parser) conditionalStatement() error {
	return p.ifStatement()
}

// <if statement> ::= if <expression> then <statement> [else <statement>]
func (p *Parser) ifStatement() error {
	if err := p.consume(token.If); err != nil {
		return err
	}

	if _, err := p.expression(types.Boolean()); err != nil {
		return err
	}
	p.em.IfStart()

	if err := p.consume(token.Then); err != nil {
		return err
	}

	p.em.ThenStart()
	if err := p.statement(); err != nil {
		return err
	}
	p.em.ThenEnd()

	if p.lookahead.Kind == token.Else {
		if err := p.proceed(); err != nil {
			return err
		}
		p.em.ElseStart()
		if err := p.statement(); err != nil {
			return err
		}
		p.em.ElseEnd()
	}

	p.em.IfEnd()
	return nil
}

// <loop statement> ::= <while statement> | <repeat statement> | <for statement>
func (p *Parser) loopStatement() error {
	switch p.lookahead.Kind {
	case token.While:
		return p.whileStatement()
	case token.Repeat:
		return p.repeatStatement()
	case token.For:
		return p.forStatement()
	default:
		return p.syntaxErrorf("expected a loop keyword, found %s", p.lookahead)
	}
}

// <while statement> ::= while <expression> do <statement>
func (p *Parser) whileStatement() error {
	if err := p.consume(token.While); err != nil {
		return err
	}

	p.em.LoopStart(labelContinue, labelEnd)
	p.em.Constant("1", types.IntegerType)

	t, err := p.expression(types.Boolean())
	if err != nil {
		if rerr := p.recover(token.Do); rerr != nil {
			return rerr
		}
		t = types.UnknownType
	}
	if err := p.em.Op(token.Minus, types.IntegerType); err != nil {
		return p.reportEmitError(err)
	}

	switch {
	case t.Equal(types.Boolean()):
		p.em.BrIf(labelEnd)
	case t.Kind != types.Unknown:
		p.semanticError("the condition in a while statement must have boolean type")
	}

	if err := p.consume(token.Do); err != nil {
		return err
	}
	if err := p.statement(); err != nil {
		return err
	}

	p.em.Br(labelContinue)
	p.em.LoopEnd()
	return nil
}

// <repeat statement> ::= repeat <statement> {; <statement>} until <expression>
//
// Emits br_if(end) followed unconditionally by br(continue): when the until
// condition is true the taken br_if to $end leaves the block, so br continue
// is reached only when the condition is false, and the loop runs again.
// Preserved verbatim from code.rs::repeat_statement.
func (p *Parser) repeatStatement() error {
	if err := p.consume(token.Repeat); err != nil {
		return err
	}
	p.em.LoopStart(labelContinue, labelEnd)

	if err := p.statement(); err != nil {
		return err
	}
	for p.lookahead.Kind == token.Semicolon {
		if err := p.proceed(); err != nil {
			return err
		}
		if err := p.statement(); err != nil {
			return err
		}
	}

	if err := p.consume(token.Until); err != nil {
		return err
	}
	t, err := p.expression(types.Boolean())
	if err != nil {
		return err
	}

	switch {
	case t.Equal(types.Boolean()):
		p.em.BrIf(labelEnd)
		p.em.Br(labelContinue)
	case t.Kind != types.Unknown:
		p.semanticError("until expression must have boolean type")
	}

	p.em.LoopEnd()
	return nil
}

// <for statement> ::= for <control variable> := <for list> do <statement>
func (p *Parser) forStatement() error {
	if err := p.consume(token.For); err != nil {
		return err
	}
	p.em.LocalGet(registerZero)

	name, varType, err := p.controlVariable()
	if err != nil {
		if rerr := p.recover(token.Assign); rerr != nil {
			return rerr
		}
		name, varType = "", types.UnknownType
	}

	if varType.Kind != types.Unknown && varType.Kind != types.Integer {
		p.semanticError("the for-loop control variable must have integer type")
	}

	if err := p.consume(token.Assign); err != nil {
		return err
	}

	direction, err := p.forList(name)
	if err != nil {
		if rerr := p.recover(token.Do); rerr != nil {
			return rerr
		}
		direction = token.Unknown
	}

	p.em.LoopStart(labelContinue, labelEnd)
	p.em.LocalGet(registerZero)
	p.em.LocalGet(name)
	if err := p.em.Relop(token.Eq, types.IntegerType); err != nil {
		return p.reportEmitError(err)
	}
	p.em.BrIf(labelEnd)

	if err := p.consume(token.Do); err != nil {
		return err
	}
	if err := p.statement(); err != nil {
		return err
	}

	step := ""
	switch direction {
	case token.To:
		step = "1"
	case token.Downto:
		step = "-1"
	case token.Unknown:
		step = ""
	}
	p.em.Constant(step, types.IntegerType)
	p.em.LocalGet(name)
	if err := p.em.Op(token.Plus, types.IntegerType); err != nil {
		return p.reportEmitError(err)
	}
	p.em.LocalSet(name)

	p.em.Br(labelContinue)
	p.em.LoopEnd()
	p.em.LocalSet(registerZero)

	return nil
}

// <control variable> ::= <identifier>
func (p *Parser) controlVariable() (string, types.Type, error) {
	name, err := p.identifier()
	if err != nil {
		return "", types.UnknownType, err
	}
	id, ok := p.scope.Get(name)
	switch {
	case !ok:
		p.undeclaredIdentifier(name)
		return "", types.UnknownType, nil
	case id.Kind != types.IdentVariable:
		p.invalidIdentifier("variable", name)
		return "", types.UnknownType, nil
	default:
		return id.Name, id.Type, nil
	}
}

// <for list> ::= <initial value> to <final value> | <initial value> downto <final value>
func (p *Parser) forList(controlVarName string) (token.Kind, error) {
	if err := p.initialValue(); err != nil {
		return token.Unknown, err
	}
	p.em.LocalSet(controlVarName)

	direction, err := p.consumeAny(token.To, token.Downto)
	if err != nil {
		return token.Unknown, err
	}

	if err := p.finalValue(); err != nil {
		return token.Unknown, err
	}
	p.em.LocalSet(registerZero)

	return direction, nil
}

// <initial value> ::= <expression>
func (p *Parser) initialValue() error {
	t, err := p.expression(types.IntegerType)
	if err != nil {
		return err
	}
	if t.Kind != types.Integer {
		p.semanticError("the initial value in a for loop must have integer type")
	}
	return nil
}

// <final value> ::= <expression>
func (p *Parser) finalValue() error {
	t, err := p.expression(types.IntegerType)
	if err != nil {
		return err
	}
	if t.Kind != types.Integer {
		p.semanticError("the final value in a for loop must have integer type")
	}
	return nil
}

// <with statement> ::= with <record variable list> do <statement>
func (p *Parser) withStatement() error {
	if err := p.consume(token.With); err != nil {
		return err
	}
	ids, err := p.recordVariables()
	if err != nil {
		return err
	}
	p.scope = types.WithOuter(p.scope, ids)
	defer func() { p.scope = p.scope.Collapse() }()

	if err := p.consume(token.Do); err != nil {
		return err
	}
	return p.statement()
}

// <record variable list> ::= <record variable> {, <record variable>}
//
// Later record variables' fields overwrite earlier ones' on name collision:
// the merge is last-write-wins, left to right, exactly as
// code.rs::record_variables repeatedly extends one Fields table.
func (p *Parser) recordVariables() (map[string]types.Identifier, error) {
	table := types.Fields{}
	for {
		_, t, err := p.variable()
		if err != nil {
			return nil, err
		}
		if t.Kind == types.Record {
			for name, ft := range t.Fields {
				table[name] = ft
			}
		} else {
			p.semanticError("expected a variable of record type")
		}

		if p.lookahead.Kind != token.Comma {
			break
		}
		if err := p.proceed(); err != nil {
			return nil, err
		}
	}

	ids := make(map[string]types.Identifier, len(table))
	for name, t := range table {
		ids[name] = types.NewVariable(name, t)
	}
	return ids, nil
}
