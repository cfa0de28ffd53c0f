package parser

import (
	"github.com/zena-lang/zenac/internal/ast"
	"github.com/zena-lang/zenac/internal/lexer"
)

// parseTypeExpr parses a top-level type expression, folding a `|`-separated
// chain of atoms into a UnionTypeExpr. curTok enters on the type's first
// token and ends on its last.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	startSpan := p.curTok.Span
	first := p.parseTypeAtom()
	if first == nil {
		return nil
	}
	if p.peekTok.Type != lexer.PIPE {
		return first
	}
	members := []ast.TypeExpr{first}
	for p.peekTok.Type == lexer.PIPE {
		p.nextToken()
		p.nextToken()
		next := p.parseTypeAtom()
		if next == nil {
			break
		}
		members = append(members, next)
	}
	return ast.NewUnionTypeExpr(members, mergeSpan(p.spanWithFilename(startSpan), members[len(members)-1].Span()))
}

// parseTypeAtom parses one non-union type term.
func (p *Parser) parseTypeAtom() ast.TypeExpr {
	switch p.curTok.Type {
	case lexer.IDENT:
		return p.parseNamedOrGenericType()
	case lexer.LPAREN:
		return p.parseTupleOrFunctionType(false)
	case lexer.HASH:
		p.nextToken()
		if p.curTok.Type != lexer.LPAREN {
			p.reportError("expected '(' after '#'", p.curTok.Span)
			return nil
		}
		return p.parseTupleOrFunctionType(true)
	case lexer.LBRACE:
		return p.parseRecordType()
	case lexer.LBRACKET:
		return p.parseArrayTypeExpr()
	default:
		p.reportError("expected a type", p.curTok.Span)
		return nil
	}
}

func (p *Parser) parseNamedOrGenericType() ast.TypeExpr {
	startSpan := p.curTok.Span
	name := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	base := ast.NewNamedType(name, p.spanWithFilename(startSpan))

	if p.peekTok.Type != lexer.LT {
		return base
	}
	p.nextToken()
	var args []ast.TypeExpr
	p.nextToken()
	args = append(args, p.parseTypeExpr())
	for p.peekTok.Type == lexer.COMMA {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseTypeExpr())
	}
	if !p.expect(lexer.GT) {
		return ast.NewGenericTypeExpr(base, args, mergeSpan(base.Span(), p.spanWithFilename(p.curTok.Span)))
	}
	return ast.NewGenericTypeExpr(base, args, mergeSpan(base.Span(), p.spanWithFilename(p.curTok.Span)))
}

// parseTupleOrFunctionType parses `(T1, T2)` as a tuple type, or
// `(T1, T2) -> T3` as a function type; curTok enters on the opening `(`.
// unboxed is true when this tuple was prefixed with a bare `#`.
func (p *Parser) parseTupleOrFunctionType(unboxed bool) ast.TypeExpr {
	startSpan := p.curTok.Span
	var elements []ast.TypeExpr
	if p.peekTok.Type != lexer.RPAREN {
		p.nextToken()
		elements = append(elements, p.parseTypeExpr())
		for p.peekTok.Type == lexer.COMMA {
			p.nextToken()
			p.nextToken()
			elements = append(elements, p.parseTypeExpr())
		}
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}

	if p.peekTok.Type == lexer.ARROW {
		p.nextToken()
		p.nextToken()
		ret := p.parseTypeExpr()
		return ast.NewFunctionType(elements, ret, mergeSpan(p.spanWithFilename(startSpan), ret.Span()))
	}

	return ast.NewTupleType(elements, unboxed, mergeSpan(p.spanWithFilename(startSpan), p.spanWithFilename(p.curTok.Span)))
}

func (p *Parser) parseRecordType() ast.TypeExpr {
	startSpan := p.curTok.Span
	var fields []ast.RecordFieldType
	if p.peekTok.Type != lexer.RBRACE {
		p.nextToken()
		for {
			name := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
			if !p.expect(lexer.COLON) {
				break
			}
			p.nextToken()
			typ := p.parseTypeExpr()
			fields = append(fields, ast.RecordFieldType{Name: name, Type: typ})
			if p.peekTok.Type != lexer.COMMA {
				break
			}
			p.nextToken()
			p.nextToken()
		}
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	return ast.NewRecordType(fields, mergeSpan(p.spanWithFilename(startSpan), p.spanWithFilename(p.curTok.Span)))
}

func (p *Parser) parseArrayTypeExpr() ast.TypeExpr {
	startSpan := p.curTok.Span
	p.nextToken()
	elem := p.parseTypeExpr()
	if !p.expect(lexer.RBRACKET) {
		return nil
	}
	return ast.NewArrayTypeExpr(elem, mergeSpan(p.spanWithFilename(startSpan), p.spanWithFilename(p.curTok.Span)))
}
