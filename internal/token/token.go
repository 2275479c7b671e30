package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"

	// Identifiers + literals
	IDENT   = "IDENT"   // count, toggle, x, y, ...
	NUMBER  = "NUMBER"  // 42, 3.14
	STRING  = "STRING"  // "hello"
	BOOLEAN = "BOOLEAN" // true, false

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"

	LOGICAL_AND = "&&"
	LOGICAL_OR  = "||"

	EQ     = "=="
	NOT_EQ = "!="

	// Delimiters
	COMMA     = ","
	SEMICOLON = ";"
	COLON     = ":"

	LPAREN = "("
	RPAREN = ")"
	LBRACE = "{"
	RBRACE = "}"

	// Keywords
	STATE    = "STATE"
	LOGIC    = "LOGIC"
	INIT     = "INIT"
	FUNCTION = "FUNCTION"
	IF       = "IF"
	ELSE     = "ELSE"
)

type Token struct {
	Type    TokenType `json:"type"`
	Literal string    `json:"literal"`
	Line    int       `json:"line"`
	Col     int       `json:"col"`
}

var keywords = map[string]TokenType{
	// sections
	"state": STATE,
	"logic": LOGIC,
	"init":  INIT,

	// declarations
	"function": FUNCTION,

	// flow control
	"if":   IF,
	"else": ELSE,

	// constants
	"true":  BOOLEAN,
	"false": BOOLEAN,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
