// Package lexer implements the numbered-state lexical scanner described in
// the compiler's design: a single next() loop driven by an explicit integer
// state variable, grounded line-for-line on
// original_source/src/tokenization/token_stream.rs. The state-function
// chaining idiom used by db47h-lex's lexer (a StateFn driving itself forward)
// is replaced here by the spec's own numbered states, since the Pascal
// lexical grammar is exactly what token_stream.rs already encodes; we keep
// db47h-lex's separation of a byte Buffer from the token-producing scanner.
package lexer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gopwat/pwatc/internal/diag"
	"github.com/gopwat/pwatc/internal/source"
	"github.com/gopwat/pwatc/internal/token"
)

var lower = cases.Lower(language.Und)

// Lexer turns a source.Buffer into a stream of token.Token values.
type Lexer struct {
	buf         *source.Buffer
	state       int
	lexemeStart int
}

// New creates a Lexer reading from buf.
func New(buf *source.Buffer) *Lexer {
	return &Lexer{buf: buf, state: 1}
}

// Pos returns the position of the next byte to be read.
func (l *Lexer) Pos() source.Position { return l.buf.Pos() }

// PrevPos returns the position of the most recently consumed byte.
func (l *Lexer) PrevPos() source.Position { return l.buf.PrevPos() }

func isAlpha(c byte) bool {
	return unicode.IsLetter(rune(c))
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlnum(c byte) bool {
	return isAlpha(c) || isDigit(c)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// Next reads and returns the next token, or a lexical diag.Diagnostic if the
// input cannot be tokenized at the current position.
func (l *Lexer) Next() (token.Token, error) {
	for {
		pos := l.buf.Shift()
		c := l.buf.Next()

		switch l.state {
		case 1:
			switch {
			case c == 0:
				return token.Token{Kind: token.EOF}, nil
			case isSpace(c):
				l.skipWhitespace()
			case c == '{':
				l.skipComment()
			case isDigit(c):
				l.lexemeStart = pos
				l.state = 4
			case isAlpha(c):
				l.lexemeStart = pos
				l.state = 2
			default:
				l.lexemeStart = pos
				switch c {
				case '.':
					l.state = 17
				case ':':
					l.state = 20
				case '\'':
					l.lexemeStart = l.buf.Shift()
					l.state = 13
				case '<':
					l.state = 23
				case '>':
					l.state = 24
				case '=':
					return token.Token{Kind: token.Eq}, nil
				case '+':
					return token.Token{Kind: token.Plus}, nil
				case '-':
					return token.Token{Kind: token.Minus}, nil
				case '/':
					return token.Token{Kind: token.Divide}, nil
				case '*':
					return token.Token{Kind: token.Multiply}, nil
				case ',':
					l.state = 1
					return token.Token{Kind: token.Comma}, nil
				case ';':
					l.state = 1
					return token.Token{Kind: token.Semicolon}, nil
				case '(':
					l.state = 1
					return token.Token{Kind: token.Lbracket}, nil
				case ')':
					l.state = 1
					return token.Token{Kind: token.Rbracket}, nil
				case '[':
					l.state = 1
					return token.Token{Kind: token.Lsqbracket}, nil
				case ']':
					l.state = 1
					return token.Token{Kind: token.Rsqbracket}, nil
				default:
					l.state = 1
					return token.Token{}, l.errorf("unexpected character %q", string(rune(c)))
				}
			}
		case 2:
			if !isAlnum(c) && c != '_' {
				l.buf.Back(1)
				l.state = 1
				return l.identifier(), nil
			}
		case 4:
			if c == '.' {
				l.state = 5
			} else if !isDigit(c) {
				l.buf.Back(1)
				l.state = 1
				return l.number(), nil
			}
		case 5:
			if isDigit(c) {
				l.state = 6
			} else if c == '.' {
				l.buf.Back(2)
				l.state = 1
				return l.number(), nil
			}
		case 6:
			if c == 'e' || c == 'E' {
				l.state = 7
			} else if !isDigit(c) {
				l.buf.Back(1)
				l.state = 1
				return l.number(), nil
			}
		case 7:
			if isDigit(c) {
				l.state = 9
			} else if c == '+' || c == '-' {
				l.state = 8
			}
		case 8:
			if isDigit(c) {
				l.state = 9
			} else {
				l.state = 1
				return token.Token{}, l.errorf("sign in scientific notation must be followed by a number")
			}
		case 9:
			if !isDigit(c) {
				l.buf.Back(1)
				l.state = 1
				return l.number(), nil
			}
		case 13:
			if c == '\'' {
				l.state = 1
				return l.literal(), nil
			} else if c == '\n' || c == 0 {
				l.state = 1
				return token.Token{}, l.errorf("string literal cannot span multiple lines")
			}
		case 17:
			l.state = 1
			if c == '.' {
				return token.Token{Kind: token.Range}, nil
			}
			l.buf.Back(1)
			return token.Token{Kind: token.Dot}, nil
		case 20:
			l.state = 1
			if c == '=' {
				return token.Token{Kind: token.Assign}, nil
			}
			l.buf.Back(1)
			return token.Token{Kind: token.Colon}, nil
		case 23:
			l.state = 1
			switch c {
			case '>':
				return token.Token{Kind: token.Ne}, nil
			case '=':
				return token.Token{Kind: token.Le}, nil
			default:
				l.buf.Back(1)
				return token.Token{Kind: token.Lt}, nil
			}
		case 24:
			l.state = 1
			if c == '=' {
				return token.Token{Kind: token.Ge}, nil
			}
			l.buf.Back(1)
			return token.Token{Kind: token.Gt}, nil
		default:
			l.state = 1
			return token.Token{}, l.errorf("internal lexer error: unknown state")
		}
	}
}

// Available reports whether one of the given token kinds occurs somewhere
// ahead in the stream before EOF, without consuming any input. Used by the
// parser's panic-mode recovery to decide whether a synchronizing token is
// reachable.
func (l *Lexer) Available(kinds ...token.Kind) (bool, error) {
	want := make(map[token.Kind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}

	l.buf.SavePos()
	savedState := l.state
	defer func() {
		l.buf.RestorePos()
		l.state = savedState
	}()

	for {
		tok, err := l.Next()
		if err != nil {
			return false, err
		}
		if tok.Kind == token.EOF {
			return want[token.EOF], nil
		}
		if want[tok.Kind] {
			return true, nil
		}
	}
}

func (l *Lexer) skipWhitespace() {
	for {
		c := l.buf.Next()
		if c == 0 || !isSpace(c) {
			l.buf.Back(1)
			return
		}
	}
}

func (l *Lexer) skipComment() {
	for {
		c := l.buf.Next()
		if c == '}' || c == 0 {
			l.buf.Next()
			return
		}
	}
}

func (l *Lexer) lexeme() string {
	raw := l.buf.Range(l.lexemeStart, l.buf.Shift())
	return lower.String(string(raw))
}

func (l *Lexer) number() token.Token {
	return token.Token{Kind: token.Number, Text: l.lexeme()}
}

func (l *Lexer) identifier() token.Token {
	text := l.lexeme()
	if kind, ok := token.Reserved[text]; ok {
		return token.Token{Kind: kind, Text: text}
	}
	return token.Token{Kind: token.Ident, Text: text}
}

func (l *Lexer) literal() token.Token {
	text := l.lexeme()
	text = strings.TrimSuffix(text, "'")
	return token.Token{Kind: token.Literal, Text: text}
}

func (l *Lexer) errorf(format string, args ...interface{}) error {
	d := diag.New(diag.Lexical, l.buf.File(), l.buf.PrevPos(), format, args...)
	return d
}
