package parser

import (
	"github.com/zena-lang/zenac/internal/ast"
	"github.com/zena-lang/zenac/internal/lexer"
)

// parseStmt dispatches on curTok and leaves curTok on the statement's last
// token, matching parseBlockBody's advance-by-nextToken loop.
func (p *Parser) parseStmt() ast.Stmt {
	switch p.curTok.Type {
	case lexer.LET:
		return p.parseLetStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.BREAK:
		return ast.NewBreakStmt(p.spanWithFilename(p.curTok.Span))
	case lexer.CONTINUE:
		return ast.NewContinueStmt(p.spanWithFilename(p.curTok.Span))
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.THROW:
		return p.parseThrowStmt()
	case lexer.TRY:
		return p.parseTryStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseLetStmt() ast.Stmt {
	startSpan := p.curTok.Span
	mut := false
	if p.peekTok.Type == lexer.MUT {
		p.nextToken()
		mut = true
	}
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))

	var typ ast.TypeExpr
	if p.peekTok.Type == lexer.COLON {
		p.nextToken()
		p.nextToken()
		typ = p.parseTypeExpr()
	}

	var value ast.Expr
	if p.peekTok.Type == lexer.ASSIGN {
		p.nextToken()
		p.nextToken()
		value = p.parseExpression(precedenceLowest)
	}

	endSpan := p.spanWithFilename(p.curTok.Span)
	if p.peekTok.Type == lexer.SEMICOLON {
		p.nextToken()
	}
	return ast.NewLetStmt(mut, name, typ, value, mergeSpan(p.spanWithFilename(startSpan), endSpan))
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	startSpan := p.curTok.Span
	if stmtTerminatesHere(p.peekTok.Type) {
		if p.peekTok.Type == lexer.SEMICOLON {
			p.nextToken()
		}
		return ast.NewReturnStmt(nil, p.spanWithFilename(startSpan))
	}
	p.nextToken()
	value := p.parseExpression(precedenceLowest)
	endSpan := p.spanWithFilename(startSpan)
	if value != nil {
		endSpan = value.Span()
	}
	if p.peekTok.Type == lexer.SEMICOLON {
		p.nextToken()
	}
	return ast.NewReturnStmt(value, mergeSpan(p.spanWithFilename(startSpan), endSpan))
}

// stmtTerminatesHere reports whether tt closes the enclosing construct
// without an expression following a bare `return`.
func stmtTerminatesHere(tt lexer.TokenType) bool {
	switch tt {
	case lexer.SEMICOLON, lexer.RBRACE, lexer.EOF:
		return true
	default:
		return false
	}
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	startSpan := p.curTok.Span
	p.nextToken()
	cond := p.parseExpression(precedenceLowest)
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	return ast.NewWhileStmt(cond, body, mergeSpan(p.spanWithFilename(startSpan), body.Span()))
}

func (p *Parser) parseForStmt() ast.Stmt {
	startSpan := p.curTok.Span
	if !p.expect(lexer.IDENT) {
		return nil
	}
	binding := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	if !p.expect(lexer.IN) {
		return nil
	}
	p.nextToken()
	iterable := p.parseExpression(precedenceLowest)
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	return ast.NewForStmt(binding, iterable, body, mergeSpan(p.spanWithFilename(startSpan), body.Span()))
}

func (p *Parser) parseThrowStmt() ast.Stmt {
	startSpan := p.curTok.Span
	p.nextToken()
	value := p.parseExpression(precedenceLowest)
	if value == nil {
		return nil
	}
	return ast.NewThrowStmt(value, mergeSpan(p.spanWithFilename(startSpan), value.Span()))
}

func (p *Parser) parseTryStmt() ast.Stmt {
	startSpan := p.curTok.Span
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	var catch *ast.CatchClause
	if p.peekTok.Type == lexer.CATCH {
		p.nextToken()
		catch = p.parseCatchClause()
	}
	endSpan := body.Span()
	if catch != nil {
		endSpan = catch.Span()
	}
	return ast.NewTryStmt(body, catch, mergeSpan(p.spanWithFilename(startSpan), endSpan))
}

func (p *Parser) parseCatchClause() *ast.CatchClause {
	startSpan := p.curTok.Span
	var name *ast.Ident
	if p.peekTok.Type == lexer.LPAREN {
		p.nextToken()
		if !p.expect(lexer.IDENT) {
			return nil
		}
		name = ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
		if !p.expect(lexer.RPAREN) {
			return nil
		}
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	return ast.NewCatchClause(name, body, mergeSpan(p.spanWithFilename(startSpan), body.Span()))
}

func (p *Parser) parseExprStmt() ast.Stmt {
	startSpan := p.curTok.Span
	expr := p.parseExpression(precedenceLowest)
	if expr == nil {
		return nil
	}
	if p.peekTok.Type == lexer.SEMICOLON {
		p.nextToken()
	}
	return ast.NewExprStmt(expr, mergeSpan(p.spanWithFilename(startSpan), expr.Span()))
}
