package parser

import (
	"strconv"
	"strings"

	"github.com/gopwat/pwatc/internal/token"
	"github.com/gopwat/pwatc/internal/types"
)

// <expression> ::= <simple expression> | <simple expression> <relational operator> <simple expression>
func (p *Parser) expression(expectedType types.Type) (types.Type, error) {
	typeA, err := p.simpleExpression(expectedType)
	if err != nil {
		return types.UnknownType, err
	}
	result := typeA

	if isRelation(p.lookahead.Kind) {
		op := p.lookahead.Kind
		if err := p.proceed(); err != nil {
			return types.UnknownType, err
		}
		typeB, err := p.simpleExpression(expectedType)
		if err != nil {
			return types.UnknownType, err
		}

		if typeA.Equal(typeB) {
			if err := p.em.Relop(op, typeA); err != nil {
				return types.UnknownType, p.reportEmitError(err)
			}
			result = types.Boolean()
		} else {
			p.semanticError("values of different types cannot be compared")
			result = types.UnknownType
		}
	}

	return result, nil
}

// <simple expression> ::= <sign> <term> {<adding operator> <term>}
func (p *Parser) simpleExpression(expectedType types.Type) (types.Type, error) {
	negative := false
	if isSign(p.lookahead.Kind) {
		negative = p.lookahead.Kind == token.Minus
		if err := p.proceed(); err != nil {
			return types.UnknownType, err
		}
	}

	if negative {
		p.em.Constant("0", types.UnknownType)
	}

	t, err := p.term(expectedType)
	if err != nil {
		return types.UnknownType, err
	}

	if negative {
		p.em.FillNearestUnknown(t)
		if err := p.em.Op(token.Minus, t); err != nil {
			return types.UnknownType, p.reportEmitError(err)
		}
	}

	for isAdding(p.lookahead.Kind) {
		op := p.lookahead.Kind
		if err := p.proceed(); err != nil {
			return types.UnknownType, err
		}
		next, err := p.term(expectedType)
		if err != nil {
			return types.UnknownType, err
		}
		if !next.Equal(t) {
			t = types.UnknownType
		}
		if err := p.em.Op(op, t); err != nil {
			return types.UnknownType, p.reportEmitError(err)
		}
	}

	return t, nil
}

// <term> ::= <factor> {<multiplying operator> <factor>}
func (p *Parser) term(expectedType types.Type) (types.Type, error) {
	t, err := p.factor(expectedType)
	if err != nil {
		return types.UnknownType, err
	}

	for isMultiplying(p.lookahead.Kind) {
		op := p.lookahead.Kind
		if err := p.proceed(); err != nil {
			return types.UnknownType, err
		}
		next, err := p.factor(expectedType)
		if err != nil {
			return types.UnknownType, err
		}
		if !t.Equal(next) {
			t = types.UnknownType
		}
		if err := p.em.Op(op, t); err != nil {
			return types.UnknownType, p.reportEmitError(err)
		}
	}

	return t, nil
}

// <factor> ::= <variable> | <constant> | ( <expression> ) | not <factor>
func (p *Parser) factor(expectedType types.Type) (types.Type, error) {
	switch p.lookahead.Kind {
	case token.Ident:
		name := p.lookahead.Text
		resultType := types.UnknownType
		if expectedType.Kind == types.Scalar {
			if idx := indexOf(expectedType.Enumerators, name); idx >= 0 {
				resultType = expectedType
				p.em.Constant(strconv.Itoa(idx), types.IntegerType)
				if err := p.proceed(); err != nil {
					return types.UnknownType, err
				}
			}
		}

		if resultType.Kind == types.Unknown {
			varName, t, err := p.variable()
			if err != nil {
				return types.UnknownType, err
			}
			resultType = t
			p.em.LocalGet(varName)
		}

		return resultType, nil

	case token.Number:
		return p.number(p.lookahead.Text)

	case token.Literal:
		return p.literal(p.lookahead.Text)

	case token.Not:
		if err := p.proceed(); err != nil {
			return types.UnknownType, err
		}
		return p.factor(expectedType)

	case token.Lbracket:
		if err := p.proceed(); err != nil {
			return types.UnknownType, err
		}
		t, err := p.expression(expectedType)
		if err != nil {
			return types.UnknownType, err
		}
		if err := p.consume(token.Rbracket); err != nil {
			return types.UnknownType, err
		}
		return t, nil

	default:
		return types.UnknownType, p.syntaxErrorf("illegal expression")
	}
}

func (p *Parser) number(value string) (types.Type, error) {
	if err := p.proceed(); err != nil {
		return types.UnknownType, err
	}
	t := types.IntegerType
	if strings.Contains(value, ".") {
		t = types.RealType
	}
	p.em.Constant(value, t)
	return t, nil
}

func (p *Parser) literal(value string) (types.Type, error) {
	if err := p.proceed(); err != nil {
		return types.UnknownType, err
	}
	if len(value) == 1 {
		return types.CharType, nil
	}
	return types.UnknownType, p.semanticError("unimplemented: character literals longer than 1 symbol")
}

func isRelation(k token.Kind) bool {
	return k >= token.Eq && k <= token.Le
}

func isSign(k token.Kind) bool {
	return k == token.Plus || k == token.Minus
}

func isAdding(k token.Kind) bool {
	return k == token.Plus || k == token.Minus || k == token.Or
}

func isMultiplying(k token.Kind) bool {
	return k == token.Multiply || k == token.Divide || k == token.IntegerDivide || k == token.And
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

