package parser

import (
	"github.com/zena-lang/zenac/internal/ast"
	"github.com/zena-lang/zenac/internal/diag"
	"github.com/zena-lang/zenac/internal/lexer"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

type Option func(*options)

type options struct {
	filename string
}

// WithFilename configures the parser to attribute all emitted spans to the provided filename.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

const (
	precedenceLowest = iota
	precedenceAssign
	precedenceOr
	precedenceAnd
	precedenceEquality
	precedenceComparison
	precedenceRange
	precedenceSum
	precedenceProduct
	precedencePrefix
	precedencePostfix
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:    precedenceAssign,
	lexer.OR:        precedenceOr,
	lexer.AND:       precedenceAnd,
	lexer.EQ:        precedenceEquality,
	lexer.NOT_EQ:    precedenceEquality,
	lexer.REFEQ:     precedenceEquality,
	lexer.NOT_REFEQ: precedenceEquality,
	lexer.LT:        precedenceComparison,
	lexer.LE:        precedenceComparison,
	lexer.GT:        precedenceComparison,
	lexer.GE:        precedenceComparison,
	lexer.DOTDOT:    precedenceRange,
	lexer.PLUS:      precedenceSum,
	lexer.MINUS:     precedenceSum,
	lexer.ASTERISK:  precedenceProduct,
	lexer.SLASH:     precedenceProduct,
	lexer.LPAREN:    precedencePostfix,
	lexer.LBRACKET:  precedencePostfix,
	lexer.DOT:       precedencePostfix,
}

// ParseError captures a recoverable parsing error with location context.
type ParseError struct {
	Message  string
	Span     lexer.Span
	Severity diag.Severity
}

// Parser implements a Pratt-style recursive descent parser over the zena
// grammar. curTok/peekTok form the sole lookahead window and are only
// mutated via nextToken; errors is append-only so callers can rely on
// stable diagnostic ordering.
type Parser struct {
	lx       *lexer.Lexer
	curTok   lexer.Token
	peekTok  lexer.Token
	peekTok2 lexer.Token

	errors []ParseError

	filename string

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New returns a parser initialised with the provided source input.
func New(input string, opts ...Option) *Parser {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Parser{
		lx:        lexer.New(input),
		prefixFns: make(map[lexer.TokenType]prefixParseFn),
		infixFns:  make(map[lexer.TokenType]infixParseFn),
		filename:  cfg.filename,
	}

	if cfg.filename != "" {
		p.lx.SetFilename(cfg.filename)
	}

	p.registerPrefix(lexer.IDENT, p.parseIdentifierOrGenericType)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBoolLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBoolLiteral)
	p.registerPrefix(lexer.NIL, p.parseNilLiteral)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpr)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpr)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedOrTupleExpr)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.HASHBRACKET, p.parseFixedArrayLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseRecordOrBlockLiteral)
	p.registerPrefix(lexer.IF, p.parseIfExpr)
	p.registerPrefix(lexer.MATCH, p.parseMatchExpr)
	p.registerPrefix(lexer.NEW, p.parseNewExpr)
	p.registerPrefix(lexer.THIS, p.parseThisExpr)
	p.registerPrefix(lexer.SUPER, p.parseSuperExpr)
	p.registerPrefix(lexer.FN, p.parseFunctionLiteral)

	p.registerInfix(lexer.ASSIGN, p.parseAssignExpr)
	p.registerInfix(lexer.PLUS, p.parseInfixExpr)
	p.registerInfix(lexer.MINUS, p.parseInfixExpr)
	p.registerInfix(lexer.ASTERISK, p.parseInfixExpr)
	p.registerInfix(lexer.SLASH, p.parseInfixExpr)
	p.registerInfix(lexer.AND, p.parseInfixExpr)
	p.registerInfix(lexer.OR, p.parseInfixExpr)
	p.registerInfix(lexer.EQ, p.parseInfixExpr)
	p.registerInfix(lexer.NOT_EQ, p.parseInfixExpr)
	p.registerInfix(lexer.REFEQ, p.parseInfixExpr)
	p.registerInfix(lexer.NOT_REFEQ, p.parseInfixExpr)
	p.registerInfix(lexer.LT, p.parseInfixExpr)
	p.registerInfix(lexer.LE, p.parseInfixExpr)
	p.registerInfix(lexer.GT, p.parseInfixExpr)
	p.registerInfix(lexer.GE, p.parseInfixExpr)
	p.registerInfix(lexer.DOTDOT, p.parseRangeExpr)
	p.registerInfix(lexer.LPAREN, p.parseCallExpr)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpr)
	p.registerInfix(lexer.DOT, p.parseFieldExpr)

	// Seed curTok/peekTok/peekTok2.
	p.nextToken()
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns all recoverable parse errors that were encountered.
func (p *Parser) Errors() []ParseError { return p.errors }

// ParseFile parses a full compilation unit and returns its AST.
func (p *Parser) ParseFile() *ast.File {
	if p.curTok.Type == lexer.EOF {
		p.reportError("expected package declaration", p.curTok.Span)
		return nil
	}

	file := ast.NewFile(p.curTok.Span)

	if p.curTok.Type == lexer.PACKAGE {
		file.Package = p.parsePackageDecl()
		if file.Package != nil {
			file.SetSpan(mergeSpan(file.Span(), file.Package.Span()))
		}
	} else if p.curTok.Type != lexer.EOF {
		p.reportError("expected package declaration", p.curTok.Span)
	}

	for p.curTok.Type == lexer.USE {
		use := p.parseUseDecl()
		if use != nil {
			file.Uses = append(file.Uses, use)
			file.SetSpan(mergeSpan(file.Span(), use.Span()))
		}
	}

	for p.curTok.Type != lexer.EOF {
		prevTok := p.curTok
		decl := p.parseDecl()
		if decl != nil {
			file.Decls = append(file.Decls, decl)
			file.SetSpan(mergeSpan(file.Span(), decl.Span()))
			continue
		}

		if p.curTok.Type == lexer.EOF {
			break
		}

		p.recoverDecl(prevTok)
	}

	file.SetSpan(mergeSpan(file.Span(), p.curTok.Span))

	return file
}

// nextToken advances the parser's token window; the lexer is only queried
// from this hop so lookahead bookkeeping stays centralized.
func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.peekTok2
	p.peekTok2 = p.lx.NextToken()
}

// expect asserts that the peek token matches the provided type, promoting it
// into curTok on success. It never rewinds on failure.
func (p *Parser) expect(tt lexer.TokenType) bool {
	if p.peekTok.Type == tt {
		p.nextToken()
		return true
	}
	p.reportError("expected '"+string(tt)+"'", p.peekTok.Span)
	return false
}

func (p *Parser) emitParseDiagnostic(msg string, span lexer.Span, severity diag.Severity) {
	span = p.spanWithFilename(span)
	p.errors = append(p.errors, ParseError{Message: msg, Span: span, Severity: severity})
}

func (p *Parser) spanWithFilename(span lexer.Span) lexer.Span {
	if span.Filename == "" && p.filename != "" {
		span.Filename = p.filename
	}
	return span
}

func (p *Parser) reportError(msg string, span lexer.Span) {
	p.emitParseDiagnostic(msg, span, diag.SeverityError)
}

func (p *Parser) registerPrefix(tt lexer.TokenType, fn prefixParseFn) { p.prefixFns[tt] = fn }
func (p *Parser) registerInfix(tt lexer.TokenType, fn infixParseFn)   { p.infixFns[tt] = fn }

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekTok.Type]; ok {
		return pr
	}
	return precedenceLowest
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curTok.Type]; ok {
		return pr
	}
	return precedenceLowest
}

func sameTokenPosition(a, b lexer.Token) bool {
	return a.Type == b.Type && a.Span.Start == b.Span.Start && a.Span.End == b.Span.End
}

func isTopLevelDeclStart(tt lexer.TokenType) bool {
	switch tt {
	case lexer.FN, lexer.CLASS, lexer.INTERFACE, lexer.MIXIN, lexer.ENUM, lexer.TYPE, lexer.USE,
		lexer.PUB, lexer.FINAL, lexer.ABSTRACT, lexer.DISTINCT:
		return true
	default:
		return false
	}
}

func (p *Parser) recoverDecl(prev lexer.Token) {
	if p.curTok.Type == lexer.EOF {
		return
	}
	if sameTokenPosition(p.curTok, prev) {
		p.nextToken()
	}
	for p.curTok.Type != lexer.EOF {
		if isTopLevelDeclStart(p.curTok.Type) {
			return
		}
		p.nextToken()
	}
}

// mergeSpan assumes start.End <= end.End and returns a span covering both.
func mergeSpan(start, end lexer.Span) lexer.Span {
	span := start
	if span.Filename == "" {
		span.Filename = end.Filename
	}
	if span.Line == 0 && end.Line != 0 {
		span.Line = end.Line
		span.Column = end.Column
		span.Start = end.Start
	}
	if end.End > span.End {
		span.End = end.End
	}
	return span
}
