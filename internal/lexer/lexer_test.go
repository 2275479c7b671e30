package lexer

import (
	"errors"
	"testing"

	"github.com/bryanhoulton/giast/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `state {
	count = 0;
	greeting = "hi";
}

logic {
	function inc(by) {
		count = count + by * 2 - 1 / 1;
	}
}

init {
	// warm up
	if count == 0 && true || count != 1 {
		inc(3.5);
	}
}`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.STATE, "state"},
		{token.LBRACE, "{"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "count"},
		{token.ASSIGN, "="},
		{token.NUMBER, "0"},
		{token.SEMICOLON, ";"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "greeting"},
		{token.ASSIGN, "="},
		{token.STRING, "hi"},
		{token.SEMICOLON, ";"},
		{token.NEWLINE, "\n"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n\n"},
		{token.LOGIC, "logic"},
		{token.LBRACE, "{"},
		{token.NEWLINE, "\n"},
		{token.FUNCTION, "function"},
		{token.IDENT, "inc"},
		{token.LPAREN, "("},
		{token.IDENT, "by"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "count"},
		{token.ASSIGN, "="},
		{token.IDENT, "count"},
		{token.PLUS, "+"},
		{token.IDENT, "by"},
		{token.ASTERISK, "*"},
		{token.NUMBER, "2"},
		{token.MINUS, "-"},
		{token.NUMBER, "1"},
		{token.SLASH, "/"},
		{token.NUMBER, "1"},
		{token.SEMICOLON, ";"},
		{token.NEWLINE, "\n"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n\n"},
		{token.INIT, "init"},
		{token.LBRACE, "{"},
		{token.NEWLINE, "\n\n"},
		{token.IF, "if"},
		{token.IDENT, "count"},
		{token.EQ, "=="},
		{token.NUMBER, "0"},
		{token.LOGICAL_AND, "&&"},
		{token.BOOLEAN, "true"},
		{token.LOGICAL_OR, "||"},
		{token.IDENT, "count"},
		{token.NOT_EQ, "!="},
		{token.NUMBER, "1"},
		{token.LBRACE, "{"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "inc"},
		{token.LPAREN, "("},
		{token.NUMBER, "3.5"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.NEWLINE, "\n"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	tokens, err := Tokenize(`greeting = "a\nb\tc\\d\"e";`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tokens[2].Type != token.STRING {
		t.Fatalf("expected STRING, got %q", tokens[2].Type)
	}
	if tokens[2].Literal != "a\nb\tc\\d\"e" {
		t.Errorf("escapes not decoded, got %q", tokens[2].Literal)
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	tokens, err := Tokenize("state {\n\tcount = 0;\n}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		literal string
		line    int
		col     int
	}{
		{"state", 1, 1},
		{"{", 1, 7},
		{"count", 2, 2},
		{"=", 2, 8},
		{"0", 2, 10},
		{";", 2, 11},
		{"}", 3, 1},
	}

	byLiteral := map[string]token.Token{}
	for _, tok := range tokens {
		if tok.Type != token.NEWLINE && tok.Type != token.EOF {
			byLiteral[tok.Literal] = tok
		}
	}

	for _, tt := range tests {
		tok, ok := byLiteral[tt.literal]
		if !ok {
			t.Fatalf("token %q not produced", tt.literal)
		}
		if tok.Line != tt.line || tok.Col != tt.col {
			t.Errorf("token %q at %d:%d, expected %d:%d",
				tt.literal, tok.Line, tok.Col, tt.line, tt.col)
		}
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		input string
		line  int
		col   int
	}{
		{`x = "no closing quote`, 1, 5},
		{"y = \"line\nbreak\"", 1, 5},
		{`z = "bad \q escape";`, 1, 10},
		{"a = 1 ? 2;", 1, 7},
		{"b = 1 & 2;", 1, 7},
		{"c = true | false;", 1, 10},
		{"d = !true;", 1, 5},
		{"e = 3 < 4;", 1, 7}, // relational operators are not part of the surface syntax
	}

	for _, tt := range tests {
		_, err := Tokenize(tt.input)
		if err == nil {
			t.Errorf("input %q: expected lex error, got none", tt.input)
			continue
		}

		var lexErr *LexError
		if !errors.As(err, &lexErr) {
			t.Errorf("input %q: expected *LexError, got %T", tt.input, err)
			continue
		}
		if lexErr.Line != tt.line || lexErr.Col != tt.col {
			t.Errorf("input %q: error at %d:%d, expected %d:%d",
				tt.input, lexErr.Line, lexErr.Col, tt.line, tt.col)
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	tokens, err := Tokenize("x = 1; // trailing comment\n// full line\ny = 2;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var idents []string
	for _, tok := range tokens {
		if tok.Type == token.IDENT {
			idents = append(idents, tok.Literal)
		}
	}
	if len(idents) != 2 || idents[0] != "x" || idents[1] != "y" {
		t.Errorf("unexpected identifiers: %v", idents)
	}
}
