package parser

import (
	"fmt"
	"strconv"

	"github.com/bryanhoulton/giast/internal/ast"
	"github.com/bryanhoulton/giast/internal/lexer"
	"github.com/bryanhoulton/giast/internal/token"
)

// SyntaxError aborts parsing at the first unexpected token. There is no
// multi-error recovery.
type SyntaxError struct {
	Msg   string
	Token token.Token
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("[%3d:%2d] %s", e.Token.Line, e.Token.Col, e.Msg)
}

type Parser struct {
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token

	stateNames map[string]bool
	funcNames  map[string]bool
}

// New builds a parser over a token stream. NEWLINE tokens carry no grammar
// and are filtered up front; the remaining lookahead is curToken plus
// peekToken, which is enough to split assignment from call statements.
func New(tokens []token.Token) *Parser {
	p := &Parser{
		stateNames: make(map[string]bool),
		funcNames:  make(map[string]bool),
	}
	for _, tok := range tokens {
		if tok.Type != token.NEWLINE {
			p.tokens = append(p.tokens, tok)
		}
	}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Parse consumes a token stream and produces a Program.
func Parse(tokens []token.Token) (*ast.Program, error) {
	return New(tokens).ParseProgram()
}

// ParseSource tokenizes and parses in one step.
func ParseSource(source string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// ParseStatement parses a single standalone statement, as entered at a REPL
// prompt. Assignments and calls keep their trailing semicolon.
func ParseStatement(source string) (ast.Statement, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	p := New(tokens)
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if !p.peekTokenIs(token.EOF) {
		return nil, p.errorf(p.peekToken, "unexpected %s after statement", p.peekToken.Type)
	}
	return stmt, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.peekToken = token.Token{Type: token.EOF, Literal: "", Line: p.curToken.Line, Col: p.curToken.Col}
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Token: tok}
}

func (p *Parser) expectPeek(t token.TokenType) error {
	if !p.peekTokenIs(t) {
		return p.errorf(p.peekToken, "expected next token to be %s, got %s instead", t, p.peekToken.Type)
	}
	p.nextToken()
	return nil
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{}

	for !p.curTokenIs(token.EOF) {
		var err error
		switch p.curToken.Type {
		case token.STATE:
			err = p.parseStateBlock(program)
		case token.LOGIC:
			err = p.parseLogicBlock(program)
		case token.INIT:
			err = p.parseInitBlock(program)
		default:
			err = p.errorf(p.curToken, "expected 'state', 'logic', or 'init' block, got %s", p.curToken.Type)
		}
		if err != nil {
			return nil, err
		}
		p.nextToken()
	}

	return program, nil
}

func (p *Parser) parseStateBlock(program *ast.Program) error {
	if err := p.expectPeek(token.LBRACE); err != nil {
		return err
	}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			return p.errorf(p.curToken, "unexpected end of input in state block")
		}
		if !p.curTokenIs(token.IDENT) {
			return p.errorf(p.curToken, "expected state variable name, got %s", p.curToken.Type)
		}

		name := p.curToken.Literal
		if p.stateNames[name] {
			return p.errorf(p.curToken, "duplicate state variable %q", name)
		}
		p.stateNames[name] = true

		if err := p.expectPeek(token.ASSIGN); err != nil {
			return err
		}
		p.nextToken()

		init, err := p.parseExpression()
		if err != nil {
			return err
		}
		if err := p.expectPeek(token.SEMICOLON); err != nil {
			return err
		}
		p.nextToken()

		program.State = append(program.State, &ast.StateVar{Name: name, Init: init})
	}

	return nil
}

func (p *Parser) parseLogicBlock(program *ast.Program) error {
	if err := p.expectPeek(token.LBRACE); err != nil {
		return err
	}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			return p.errorf(p.curToken, "unexpected end of input in logic block")
		}
		if !p.curTokenIs(token.FUNCTION) {
			return p.errorf(p.curToken, "expected 'function' declaration, got %s", p.curToken.Type)
		}

		fn, err := p.parseFuncDecl()
		if err != nil {
			return err
		}
		program.Logic = append(program.Logic, fn)
		p.nextToken()
	}

	return nil
}

func (p *Parser) parseFuncDecl() (*ast.Func, error) {
	if err := p.expectPeek(token.IDENT); err != nil {
		return nil, err
	}

	fn := &ast.Func{Name: p.curToken.Literal}
	if p.funcNames[fn.Name] {
		return nil, p.errorf(p.curToken, "duplicate function %q", fn.Name)
	}
	p.funcNames[fn.Name] = true

	if err := p.expectPeek(token.LPAREN); err != nil {
		return nil, err
	}

	params, err := p.parseFunctionParameters()
	if err != nil {
		return nil, err
	}
	fn.Params = params

	if err := p.expectPeek(token.LBRACE); err != nil {
		return nil, err
	}

	body, err := p.parseStatementList()
	if err != nil {
		return nil, err
	}
	fn.Body = body

	return fn, nil
}

func (p *Parser) parseFunctionParameters() ([]string, error) {
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return nil, nil
	}

	var params []string
	p.nextToken()

	for {
		if !p.curTokenIs(token.IDENT) {
			return nil, p.errorf(p.curToken, "expected parameter name, got %s", p.curToken.Type)
		}
		params = append(params, p.curToken.Literal)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken() // consume comma
		p.nextToken() // move to the next parameter
	}

	if err := p.expectPeek(token.RPAREN); err != nil {
		return nil, err
	}

	return params, nil
}

func (p *Parser) parseInitBlock(program *ast.Program) error {
	if err := p.expectPeek(token.LBRACE); err != nil {
		return err
	}

	stmts, err := p.parseStatementList()
	if err != nil {
		return err
	}
	program.Init = append(program.Init, stmts...)

	return nil
}

// parseStatementList parses statements between the current LBRACE and its
// closing RBRACE. On return the current token is the RBRACE.
func (p *Parser) parseStatementList() ([]ast.Statement, error) {
	var stmts []ast.Statement
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			return nil, p.errorf(p.curToken, "unexpected end of input, expected }")
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		p.nextToken()
	}

	return stmts, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.curToken.Type {
	case token.IF:
		return p.parseIfStatement()
	case token.IDENT:
		// Two-token window: IDENT '=' starts an assignment, IDENT '(' a call.
		switch p.peekToken.Type {
		case token.ASSIGN:
			return p.parseAssignStatement()
		case token.LPAREN:
			return p.parseCallStatement()
		default:
			return nil, p.errorf(p.peekToken, "expected '=' or '(' after identifier, got %s", p.peekToken.Type)
		}
	default:
		return nil, p.errorf(p.curToken, "expected statement, got %s", p.curToken.Type)
	}
}

func (p *Parser) parseAssignStatement() (ast.Statement, error) {
	stmt := &ast.Assign{Target: p.curToken.Literal}

	p.nextToken() // consume the identifier
	p.nextToken() // consume '='

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt.Expr = expr

	if err := p.expectPeek(token.SEMICOLON); err != nil {
		return nil, err
	}

	return stmt, nil
}

func (p *Parser) parseCallStatement() (ast.Statement, error) {
	stmt := &ast.CallStmt{Func: p.curToken.Literal}

	p.nextToken() // move to '('

	args, err := p.parseExpressionList(token.RPAREN)
	if err != nil {
		return nil, err
	}
	stmt.Args = args

	if err := p.expectPeek(token.SEMICOLON); err != nil {
		return nil, err
	}

	return stmt, nil
}

func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, error) {
	if p.peekTokenIs(end) {
		p.nextToken()
		return nil, nil
	}

	var list []ast.Expression
	p.nextToken()

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	list = append(list, expr)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		list = append(list, expr)
	}

	if err := p.expectPeek(end); err != nil {
		return nil, err
	}

	return list, nil
}

func (p *Parser) parseIfStatement() (ast.Statement, error) {
	stmt := &ast.If{}

	p.nextToken() // consume 'if'

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt.Cond = cond

	if err := p.expectPeek(token.LBRACE); err != nil {
		return nil, err
	}

	then, err := p.parseStatementList()
	if err != nil {
		return nil, err
	}
	stmt.Then = then

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if err := p.expectPeek(token.LBRACE); err != nil {
			return nil, err
		}
		alt, err := p.parseStatementList()
		if err != nil {
			return nil, err
		}
		stmt.Else = alt
	}

	return stmt, nil
}

// Expression grammar, lowest precedence first:
//
//	Expr := Or
//	Or   := And ('||' And)*
//	And  := Eq ('&&' Eq)*
//	Eq   := Add (('=='|'!=') Add)*
//	Add  := Mul (('+'|'-') Mul)*
//	Mul  := Unary (('*'|'/') Unary)*
//	Unary:= NUMBER | STRING | BOOLEAN | IDENT | '(' Expr ')'
func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseAnd, token.LOGICAL_OR)
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseEquality, token.LOGICAL_AND)
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseAdditive, token.EQ, token.NOT_EQ)
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, token.PLUS, token.MINUS)
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseUnary, token.ASTERISK, token.SLASH)
}

// parseBinaryLevel parses a left-associative run of the given operators over
// the next tighter level.
func (p *Parser) parseBinaryLevel(next func() (ast.Expression, error), ops ...token.TokenType) (ast.Expression, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for p.peekIsOneOf(ops...) {
		p.nextToken()
		op := p.curToken.Literal
		p.nextToken()

		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) peekIsOneOf(ops ...token.TokenType) bool {
	for _, op := range ops {
		if p.peekTokenIs(op) {
			return true
		}
	}
	return false
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	switch p.curToken.Type {
	case token.NUMBER:
		value, err := strconv.ParseFloat(p.curToken.Literal, 64)
		if err != nil {
			return nil, p.errorf(p.curToken, "could not parse %q as number", p.curToken.Literal)
		}
		return &ast.Literal{Value: value}, nil

	case token.STRING:
		return &ast.Literal{Value: p.curToken.Literal}, nil

	case token.BOOLEAN:
		return &ast.Literal{Value: p.curToken.Literal == "true"}, nil

	case token.IDENT:
		return &ast.Var{Name: p.curToken.Literal}, nil

	case token.LPAREN:
		p.nextToken()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expectPeek(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.errorf(p.curToken, "unexpected token %s in expression", p.curToken.Type)
	}
}
