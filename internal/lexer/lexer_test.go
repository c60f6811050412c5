package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gopwat/pwatc/internal/diag"
	"github.com/gopwat/pwatc/internal/lexer"
	"github.com/gopwat/pwatc/internal/source"
	"github.com/gopwat/pwatc/internal/token"
)

func newLexer(input string) *lexer.Lexer {
	return lexer.New(source.New([]byte(input), ""))
}

func tokenSequence(t *testing.T, input string, want []token.Token) {
	t.Helper()
	l := newLexer(input)
	for _, w := range want {
		got, err := l.Next()
		require.NoError(t, err)
		require.Equal(t, w, got)
	}
}

func TestNextNumber(t *testing.T) {
	l := newLexer("5")
	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, token.Token{Kind: token.Number, Text: "5"}, tok)
}

func TestNextLongNumber(t *testing.T) {
	l := newLexer("123")
	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, token.Token{Kind: token.Number, Text: "123"}, tok)
}

func TestNextNumberWithSpaceAfter(t *testing.T) {
	tokenSequence(t, "1 13", []token.Token{
		{Kind: token.Number, Text: "1"},
		{Kind: token.Number, Text: "13"},
	})
}

func TestNextNumberAndRange(t *testing.T) {
	tokenSequence(t, "1..6", []token.Token{
		{Kind: token.Number, Text: "1"},
		{Kind: token.Range},
		{Kind: token.Number, Text: "6"},
	})
}

func TestNextNumbers(t *testing.T) {
	for _, num := range []string{"1.64123", "1.10e+30", "1.13e-12", "1.10e120", "1.13E1"} {
		l := newLexer(num)
		tok, err := l.Next()
		require.NoError(t, err)
		require.Equal(t, token.Number, tok.Kind)
	}
}

func TestNextIdentifiers(t *testing.T) {
	for _, ident := range []string{"hello", "i", "am", "confused_here"} {
		l := newLexer(ident)
		tok, err := l.Next()
		require.NoError(t, err)
		require.Equal(t, token.Token{Kind: token.Ident, Text: ident}, tok)
	}
}

func TestNextKeywords(t *testing.T) {
	cases := map[string]token.Kind{
		"program": token.Program,
		"begin":   token.Begin,
		"end":     token.End,
		"of":      token.Of,
		"var":     token.Var,
	}
	for text, kind := range cases {
		l := newLexer(text)
		tok, err := l.Next()
		require.NoError(t, err)
		require.Equal(t, kind, tok.Kind)
	}
}

func TestNextWhitespace(t *testing.T) {
	tokenSequence(t, "    thing   other_thing   ", []token.Token{
		{Kind: token.Ident, Text: "thing"},
		{Kind: token.Ident, Text: "other_thing"},
	})
}

func TestNextComments(t *testing.T) {
	l := newLexer("{{This is a comment}} some_identifier")
	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, token.Token{Kind: token.Ident, Text: "some_identifier"}, tok)
}

func TestNextLiteral(t *testing.T) {
	l := newLexer("'some string'")
	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, token.Token{Kind: token.Literal, Text: "some string"}, tok)
}

func TestNextPunctuation(t *testing.T) {
	tokenSequence(t, "()[],...", []token.Token{
		{Kind: token.Lbracket}, {Kind: token.Rbracket},
		{Kind: token.Lsqbracket}, {Kind: token.Rsqbracket},
		{Kind: token.Comma}, {Kind: token.Range}, {Kind: token.Dot},
	})
}

func TestNextRelationalOperator(t *testing.T) {
	tokenSequence(t, "if b == 25 then begin", []token.Token{
		{Kind: token.If}, {Kind: token.Ident, Text: "b"}, {Kind: token.Eq}, {Kind: token.Eq},
		{Kind: token.Number, Text: "25"}, {Kind: token.Then}, {Kind: token.Begin},
	})
}

func TestEOFAfterDot(t *testing.T) {
	tokenSequence(t, ".", []token.Token{{Kind: token.Dot}, {Kind: token.EOF}})
}

func TestNextRecordField(t *testing.T) {
	tokenSequence(t, "a.b", []token.Token{
		{Kind: token.Ident, Text: "a"}, {Kind: token.Dot}, {Kind: token.Ident, Text: "b"},
	})
}

func TestNextRelations(t *testing.T) {
	tokenSequence(t, "<<=><>>==", []token.Token{
		{Kind: token.Lt}, {Kind: token.Le}, {Kind: token.Gt}, {Kind: token.Ne}, {Kind: token.Ge}, {Kind: token.Eq},
	})
}

func TestNextIdAfterBegin(t *testing.T) {
	input := " begin\n              c := 'a';\n            "
	tokenSequence(t, input, []token.Token{
		{Kind: token.Begin}, {Kind: token.Ident, Text: "c"}, {Kind: token.Assign},
		{Kind: token.Literal, Text: "a"}, {Kind: token.Semicolon},
	})
}

func TestNextOperators(t *testing.T) {
	tokenSequence(t, "a+ 42 - c/d *e", []token.Token{
		{Kind: token.Ident, Text: "a"}, {Kind: token.Plus}, {Kind: token.Number, Text: "42"},
		{Kind: token.Minus}, {Kind: token.Ident, Text: "c"}, {Kind: token.Divide},
		{Kind: token.Ident, Text: "d"}, {Kind: token.Multiply}, {Kind: token.Ident, Text: "e"},
	})
}

func TestNextErrorPosition(t *testing.T) {
	l := newLexer("2.3e+heh")
	_, err := l.Next()
	require.Error(t, err)

	var d diag.Diagnostic
	require.ErrorAs(t, err, &d)
	require.Equal(t, source.Position{Line: 1, Col: 6}, d.Pos)
}

func TestNextEOF(t *testing.T) {
	l := newLexer("")
	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, token.Token{Kind: token.EOF}, tok)
}

func TestNextDoubleColon(t *testing.T) {
	tokenSequence(t, ": :;", []token.Token{
		{Kind: token.Colon}, {Kind: token.Colon}, {Kind: token.Semicolon},
	})
}

func TestAvailable(t *testing.T) {
	l := newLexer("1 2 3 4 5 6")
	ok, err := l.Available(token.Number)
	require.NoError(t, err)
	require.True(t, ok)

	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, token.Token{Kind: token.Number, Text: "1"}, tok)
}

func TestAvailableEOF(t *testing.T) {
	l := newLexer("1 2 3 4 5 6")
	ok, err := l.Available(token.EOF)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRealSemicolon(t *testing.T) {
	tokenSequence(t, "0.0;", []token.Token{
		{Kind: token.Number, Text: "0.0"}, {Kind: token.Semicolon},
	})
}
