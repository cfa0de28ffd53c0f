package parser

import (
	"strconv"

	"github.com/zena-lang/zenac/internal/ast"
	"github.com/zena-lang/zenac/internal/lexer"
)

// parseExpression is the Pratt driver: it parses one prefix term and then
// keeps folding infix/postfix operators into it as long as their precedence
// exceeds the precedence this call was entered with.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix := p.prefixFns[p.curTok.Type]
	if prefix == nil {
		p.reportError("unexpected token '"+string(p.curTok.Type)+"' in expression", p.curTok.Span)
		return nil
	}
	left := prefix()

	for precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peekTok.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

// parseExprList parses a comma-separated expression list up to and including
// the closing token end; curTok is positioned on the opening delimiter on
// entry and ends on end (or the last token reached on error).
func (p *Parser) parseExprList(end lexer.TokenType) []ast.Expr {
	var list []ast.Expr
	if p.peekTok.Type == end {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(precedenceLowest))
	for p.peekTok.Type == lexer.COMMA {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(precedenceLowest))
	}
	p.expect(end)
	return list
}

func (p *Parser) parseIdentifierOrGenericType() ast.Expr {
	return ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
}

func (p *Parser) parseIntegerLiteral() ast.Expr {
	tok := p.curTok
	val, err := strconv.ParseInt(tok.Value, 0, 64)
	if err != nil {
		p.reportError("invalid integer literal '"+tok.Value+"'", tok.Span)
	}
	return ast.NewIntegerLiteral(val, p.spanWithFilename(tok.Span))
}

func (p *Parser) parseFloatLiteral() ast.Expr {
	tok := p.curTok
	val, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		p.reportError("invalid float literal '"+tok.Value+"'", tok.Span)
	}
	return ast.NewFloatLiteral(val, p.spanWithFilename(tok.Span))
}

func (p *Parser) parseStringLiteral() ast.Expr {
	return ast.NewStringLiteral(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
}

func (p *Parser) parseBoolLiteral() ast.Expr {
	return ast.NewBoolLiteral(p.curTok.Type == lexer.TRUE, p.spanWithFilename(p.curTok.Span))
}

func (p *Parser) parseNilLiteral() ast.Expr {
	return ast.NewNilLiteral(p.spanWithFilename(p.curTok.Span))
}

func (p *Parser) parseThisExpr() ast.Expr {
	return ast.NewThisExpr(p.spanWithFilename(p.curTok.Span))
}

func (p *Parser) parseSuperExpr() ast.Expr {
	return ast.NewSuperExpr(p.spanWithFilename(p.curTok.Span))
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	tok := p.curTok
	op := string(tok.Type)
	p.nextToken()
	right := p.parseExpression(precedencePrefix)
	if right == nil {
		return nil
	}
	return ast.NewPrefixExpr(op, right, mergeSpan(p.spanWithFilename(tok.Span), right.Span()))
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	tok := p.curTok
	op := string(tok.Type)
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	if right == nil {
		return left
	}
	return ast.NewInfixExpr(left, op, right, mergeSpan(left.Span(), right.Span()))
}

// parseAssignExpr parses `=` right-associatively: the recursive call uses
// one precedence below its own so a chained `a = b = c` nests correctly.
func (p *Parser) parseAssignExpr(left ast.Expr) ast.Expr {
	p.nextToken()
	right := p.parseExpression(precedenceAssign - 1)
	if right == nil {
		return left
	}
	return ast.NewAssignExpr(left, right, mergeSpan(left.Span(), right.Span()))
}

func (p *Parser) parseRangeExpr(left ast.Expr) ast.Expr {
	p.nextToken()
	right := p.parseExpression(precedenceRange)
	if right == nil {
		return left
	}
	return ast.NewRangeExpr(left, right, mergeSpan(left.Span(), right.Span()))
}

func (p *Parser) parseCallExpr(callee ast.Expr) ast.Expr {
	args := p.parseExprList(lexer.RPAREN)
	return ast.NewCallExpr(callee, nil, args, mergeSpan(callee.Span(), p.spanWithFilename(p.curTok.Span)))
}

func (p *Parser) parseIndexExpr(target ast.Expr) ast.Expr {
	p.nextToken()
	index := p.parseExpression(precedenceLowest)
	if !p.expect(lexer.RBRACKET) {
		return target
	}
	return ast.NewIndexExpr(target, index, mergeSpan(target.Span(), p.spanWithFilename(p.curTok.Span)))
}

func (p *Parser) parseFieldExpr(target ast.Expr) ast.Expr {
	if !p.expect(lexer.IDENT) {
		return target
	}
	name := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	return ast.NewFieldExpr(target, name, mergeSpan(target.Span(), name.Span()))
}

// parseGroupedOrTupleExpr disambiguates `(expr)` grouping, `()` the empty
// tuple, and `(e1, e2, ...)` a tuple literal.
func (p *Parser) parseGroupedOrTupleExpr() ast.Expr {
	startSpan := p.spanWithFilename(p.curTok.Span)
	if p.peekTok.Type == lexer.RPAREN {
		p.nextToken()
		return ast.NewTupleLiteral(nil, mergeSpan(startSpan, p.spanWithFilename(p.curTok.Span)))
	}
	p.nextToken()
	first := p.parseExpression(precedenceLowest)
	if first == nil {
		return nil
	}
	if p.peekTok.Type != lexer.COMMA {
		if !p.expect(lexer.RPAREN) {
			return first
		}
		return first
	}
	elements := []ast.Expr{first}
	for p.peekTok.Type == lexer.COMMA {
		p.nextToken()
		p.nextToken()
		elements = append(elements, p.parseExpression(precedenceLowest))
	}
	if !p.expect(lexer.RPAREN) {
		return ast.NewTupleLiteral(elements, mergeSpan(startSpan, elements[len(elements)-1].Span()))
	}
	return ast.NewTupleLiteral(elements, mergeSpan(startSpan, p.spanWithFilename(p.curTok.Span)))
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	startSpan := p.spanWithFilename(p.curTok.Span)
	elements := p.parseExprList(lexer.RBRACKET)
	return ast.NewArrayLiteral(elements, mergeSpan(startSpan, p.spanWithFilename(p.curTok.Span)))
}

func (p *Parser) parseFixedArrayLiteral() ast.Expr {
	startSpan := p.spanWithFilename(p.curTok.Span)
	elements := p.parseExprList(lexer.RBRACKET)
	return ast.NewFixedArrayLiteral(elements, mergeSpan(startSpan, p.spanWithFilename(p.curTok.Span)))
}

// parseRecordOrBlockLiteral disambiguates a record literal `{ name: value }`
// from a statement block `{ stmt; stmt }` using one extra token of
// lookahead: only `IDENT COLON` at the start of a brace can begin a record,
// since a bare statement never starts that way.
func (p *Parser) parseRecordOrBlockLiteral() ast.Expr {
	startSpan := p.curTok.Span
	if p.peekTok.Type == lexer.IDENT && p.peekTok2.Type == lexer.COLON {
		return p.parseRecordLiteral(startSpan)
	}
	if p.peekTok.Type == lexer.RBRACE {
		p.nextToken()
		return ast.NewBlockExpr(nil, mergeSpan(p.spanWithFilename(startSpan), p.spanWithFilename(p.curTok.Span)))
	}
	return p.parseBlockBody(startSpan)
}

func (p *Parser) parseRecordLiteral(startSpan lexer.Span) ast.Expr {
	var fields []ast.RecordField
	p.nextToken()
	for {
		name := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
		if !p.expect(lexer.COLON) {
			break
		}
		p.nextToken()
		value := p.parseExpression(precedenceLowest)
		fields = append(fields, ast.RecordField{Name: name, Value: value})
		if p.peekTok.Type != lexer.COMMA {
			break
		}
		p.nextToken()
		p.nextToken()
	}
	if !p.expect(lexer.RBRACE) {
		return ast.NewRecordLiteral(fields, mergeSpan(p.spanWithFilename(startSpan), p.curTok.Span))
	}
	return ast.NewRecordLiteral(fields, mergeSpan(p.spanWithFilename(startSpan), p.spanWithFilename(p.curTok.Span)))
}

// parseBlockBody parses statements up to and including the closing brace;
// curTok is positioned on the opening brace on entry.
func (p *Parser) parseBlockBody(startSpan lexer.Span) *ast.BlockExpr {
	var stmts []ast.Stmt
	p.nextToken()
	for p.curTok.Type != lexer.RBRACE && p.curTok.Type != lexer.EOF {
		stmt := p.parseStmt()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.nextToken()
	}
	return ast.NewBlockExpr(stmts, mergeSpan(p.spanWithFilename(startSpan), p.spanWithFilename(p.curTok.Span)))
}

// parseBlock requires curTok to already be on an opening brace, used for
// the block positions that are never ambiguous with a record literal (if/
// while/for bodies, function and method bodies).
func (p *Parser) parseBlock() *ast.BlockExpr {
	if p.curTok.Type != lexer.LBRACE {
		p.reportError("expected '{'", p.curTok.Span)
		return ast.NewBlockExpr(nil, p.spanWithFilename(p.curTok.Span))
	}
	return p.parseBlockBody(p.curTok.Span)
}

func (p *Parser) parseIfExpr() ast.Expr {
	startSpan := p.curTok.Span
	p.nextToken()
	cond := p.parseExpression(precedenceLowest)
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	then := p.parseBlock()
	var elseExpr ast.Expr
	if p.peekTok.Type == lexer.ELSE {
		p.nextToken()
		if p.peekTok.Type == lexer.IF {
			p.nextToken()
			elseExpr = p.parseIfExpr()
		} else if p.peekTok.Type == lexer.LBRACE {
			p.nextToken()
			elseExpr = p.parseBlock()
		} else {
			p.reportError("expected 'if' or '{' after 'else'", p.peekTok.Span)
		}
	}
	endSpan := then.Span()
	if elseExpr != nil {
		endSpan = elseExpr.Span()
	}
	return ast.NewIfExpr(cond, then, elseExpr, mergeSpan(p.spanWithFilename(startSpan), endSpan))
}

func (p *Parser) parseMatchExpr() ast.Expr {
	startSpan := p.curTok.Span
	p.nextToken()
	subject := p.parseExpression(precedenceLowest)
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	p.nextToken()
	var arms []*ast.MatchArm
	for p.curTok.Type != lexer.RBRACE && p.curTok.Type != lexer.EOF {
		arm := p.parseMatchArm()
		if arm != nil {
			arms = append(arms, arm)
		}
		if p.peekTok.Type == lexer.COMMA {
			p.nextToken()
		}
		p.nextToken()
	}
	return ast.NewMatchExpr(subject, arms, mergeSpan(p.spanWithFilename(startSpan), p.spanWithFilename(p.curTok.Span)))
}

func (p *Parser) parseMatchArm() *ast.MatchArm {
	startSpan := p.curTok.Span
	pattern := p.parsePattern()
	if pattern == nil {
		return nil
	}
	var guard ast.Expr
	if p.peekTok.Type == lexer.IF {
		p.nextToken()
		p.nextToken()
		guard = p.parseExpression(precedenceLowest)
	}
	if !p.expect(lexer.FATARROW) {
		return nil
	}
	p.nextToken()
	body := p.parseExpression(precedenceLowest)
	if body == nil {
		return nil
	}
	return ast.NewMatchArm(pattern, guard, body, mergeSpan(p.spanWithFilename(startSpan), body.Span()))
}

func (p *Parser) parseFunctionLiteral() ast.Expr {
	startSpan := p.curTok.Span
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	params := p.parseParams()
	var retType ast.TypeExpr
	if p.peekTok.Type == lexer.ARROW {
		p.nextToken()
		p.nextToken()
		retType = p.parseTypeExpr()
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	return ast.NewFunctionLiteral(params, retType, body, mergeSpan(p.spanWithFilename(startSpan), body.Span()))
}

func (p *Parser) parseNewExpr() ast.Expr {
	startSpan := p.curTok.Span
	p.nextToken()
	typ := p.parseTypeExpr()
	if typ == nil {
		return nil
	}
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	args := p.parseExprList(lexer.RPAREN)
	return ast.NewNewExpr(typ, args, mergeSpan(p.spanWithFilename(startSpan), p.spanWithFilename(p.curTok.Span)))
}

// parseParams parses a parameter list; curTok is the opening '(' on entry
// and ends on the closing ')'.
func (p *Parser) parseParams() []*ast.Param {
	var params []*ast.Param
	if p.peekTok.Type == lexer.RPAREN {
		p.nextToken()
		return params
	}
	p.nextToken()
	params = append(params, p.parseParam())
	for p.peekTok.Type == lexer.COMMA {
		p.nextToken()
		p.nextToken()
		params = append(params, p.parseParam())
	}
	p.expect(lexer.RPAREN)
	return params
}

func (p *Parser) parseParam() *ast.Param {
	startSpan := p.curTok.Span
	name := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	var typ ast.TypeExpr
	if p.peekTok.Type == lexer.COLON {
		p.nextToken()
		p.nextToken()
		typ = p.parseTypeExpr()
	}
	endSpan := p.spanWithFilename(startSpan)
	if typ != nil {
		endSpan = typ.Span()
	}
	return ast.NewParam(name, typ, mergeSpan(p.spanWithFilename(startSpan), endSpan))
}
