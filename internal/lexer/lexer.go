package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/bryanhoulton/giast/internal/token"
)

// LexError is fatal: the first bad character or unterminated literal aborts
// tokenization with the exact source position.
type LexError struct {
	Msg  string
	Line int
	Col  int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("[%3d:%2d] %s", e.Line, e.Col, e.Msg)
}

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means EOF
	line         int  // 1-based line of the current rune
	col          int  // 1-based column of the current rune
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, col: 0}
	l.readChar()
	return l
}

// Tokenize runs the lexer over the whole source and returns the token stream,
// including NEWLINE tokens and a trailing EOF token.
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	var tokens []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()

	line, col := l.line, l.col

	var tok token.Token
	switch l.ch {
	case '\n':
		return l.readNewlines(), nil
	case '=':
		tok = l.handleCompoundToken(token.ASSIGN, '=', token.EQ)
	case '+':
		tok = l.newToken(token.PLUS)
	case '-':
		tok = l.newToken(token.MINUS)
	case '*':
		tok = l.newToken(token.ASTERISK)
	case '/':
		tok = l.newToken(token.SLASH)
	case '!':
		if l.peekChar() != '=' {
			return tok, &LexError{Msg: "unexpected character '!'", Line: line, Col: col}
		}
		tok = l.handleCompoundToken(token.ILLEGAL, '=', token.NOT_EQ)
	case '&':
		if l.peekChar() != '&' {
			return tok, &LexError{Msg: "unexpected character '&'", Line: line, Col: col}
		}
		tok = l.handleCompoundToken(token.ILLEGAL, '&', token.LOGICAL_AND)
	case '|':
		if l.peekChar() != '|' {
			return tok, &LexError{Msg: "unexpected character '|'", Line: line, Col: col}
		}
		tok = l.handleCompoundToken(token.ILLEGAL, '|', token.LOGICAL_OR)
	case ';':
		tok = l.newToken(token.SEMICOLON)
	case ',':
		tok = l.newToken(token.COMMA)
	case ':':
		tok = l.newToken(token.COLON)
	case '(':
		tok = l.newToken(token.LPAREN)
	case ')':
		tok = l.newToken(token.RPAREN)
	case '{':
		tok = l.newToken(token.LBRACE)
	case '}':
		tok = l.newToken(token.RBRACE)
	case '"':
		value, err := l.readString()
		if err != nil {
			return tok, err
		}
		return token.Token{Type: token.STRING, Literal: value, Line: line, Col: col}, nil
	case 0:
		tok = token.Token{Type: token.EOF, Literal: "", Line: line, Col: col}
	default:
		if isLetter(l.ch) {
			literal := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(literal), Literal: literal, Line: line, Col: col}, nil
		}
		if isDigit(l.ch) {
			literal := l.readNumber()
			return token.Token{Type: token.NUMBER, Literal: literal, Line: line, Col: col}, nil
		}
		return tok, &LexError{Msg: fmt.Sprintf("unexpected character %q", l.ch), Line: line, Col: col}
	}

	l.readChar()
	return tok, nil
}

func (l *Lexer) newToken(tokenType token.TokenType) token.Token {
	return token.Token{Type: tokenType, Literal: string(l.ch), Line: l.line, Col: l.col}
}

func (l *Lexer) handleCompoundToken(
	t token.TokenType,
	ch1 rune,
	t1 token.TokenType,
) token.Token {
	line, col := l.line, l.col
	if l.peekChar() == ch1 {
		first := l.ch
		l.readChar()
		literal := string(first) + string(l.ch)
		return token.Token{Type: t1, Literal: literal, Line: line, Col: col}
	}
	return l.newToken(t)
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.ch {
		case ' ', '\t', '\r':
			l.readChar()
		case '/':
			if l.peekChar() == '/' {
				l.skipToLineEnd()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// readNewlines coalesces a run of line breaks into a single NEWLINE token.
func (l *Lexer) readNewlines() token.Token {
	line, col := l.line, l.col
	literal := ""
	for l.ch == '\n' || l.ch == '\r' {
		if l.ch == '\n' {
			literal += "\n"
		}
		l.readChar()
	}
	return token.Token{Type: token.NEWLINE, Literal: literal, Line: line, Col: col}
}

// readChar advances by one UTF-8 rune, updating byte positions and line/column
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	l.col++
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// readIdentifier returns the substring (bytes) covering the identifier runes
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber accepts digits with an optional fraction; the '.' is only part of
// the number when a digit follows it.
func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position]
}

// readString consumes a double-quoted string literal, decoding the supported
// escapes. The current rune must be the opening quote.
func (l *Lexer) readString() (string, error) {
	line, col := l.line, l.col
	l.readChar() // consume the opening "

	var out []rune
	for {
		switch l.ch {
		case '"':
			l.readChar() // consume the closing "
			return string(out), nil
		case 0, '\n':
			return "", &LexError{Msg: "unterminated string literal", Line: line, Col: col}
		case '\\':
			escLine, escCol := l.line, l.col
			l.readChar()
			switch l.ch {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case '\\':
				out = append(out, '\\')
			case '"':
				out = append(out, '"')
			default:
				return "", &LexError{
					Msg:  fmt.Sprintf("invalid escape sequence '\\%c'", l.ch),
					Line: escLine,
					Col:  escCol,
				}
			}
			l.readChar()
		default:
			out = append(out, l.ch)
			l.readChar()
		}
	}
}

// Unicode-aware helpers
func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
