package parser

import (
	"strconv"

	"github.com/zena-lang/zenac/internal/ast"
	"github.com/zena-lang/zenac/internal/lexer"
)

// parsePattern parses a top-level pattern, folding a `|`-separated chain of
// alternatives into a PatternOr. curTok enters on the pattern's first token
// and ends on its last.
func (p *Parser) parsePattern() ast.Pattern {
	startSpan := p.curTok.Span
	first := p.parsePatternAtom()
	if first == nil {
		return nil
	}
	if p.peekTok.Type != lexer.PIPE {
		return first
	}
	alts := []ast.Pattern{first}
	for p.peekTok.Type == lexer.PIPE {
		p.nextToken()
		p.nextToken()
		next := p.parsePatternAtom()
		if next == nil {
			break
		}
		alts = append(alts, next)
	}
	return ast.NewPatternOr(alts, mergeSpan(p.spanWithFilename(startSpan), alts[len(alts)-1].Span()))
}

func (p *Parser) parsePatternAtom() ast.Pattern {
	switch p.curTok.Type {
	case lexer.IDENT:
		if p.curTok.Value == "_" && p.peekTok.Type != lexer.LBRACE {
			return ast.NewPatternWild(p.spanWithFilename(p.curTok.Span))
		}
		if p.peekTok.Type == lexer.LBRACE {
			return p.parseEnumPatternNamed()
		}
		name := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
		return ast.NewPatternIdent(name, name.Span())
	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.TRUE, lexer.FALSE, lexer.NIL, lexer.MINUS:
		return p.parseLiteralOrRangePattern()
	case lexer.LPAREN:
		return p.parseTuplePattern()
	case lexer.LBRACKET:
		return p.parseArrayPattern()
	default:
		p.reportError("expected a pattern", p.curTok.Span)
		return nil
	}
}

// parsePatternLiteralExpr parses one literal value for use inside a
// pattern, handling a leading unary minus on numeric literals.
func (p *Parser) parsePatternLiteralExpr() ast.Expr {
	startSpan := p.curTok.Span
	negate := false
	if p.curTok.Type == lexer.MINUS {
		negate = true
		p.nextToken()
	}

	var lit ast.Expr
	switch p.curTok.Type {
	case lexer.INT:
		val, err := strconv.ParseInt(p.curTok.Value, 0, 64)
		if err != nil {
			p.reportError("invalid integer literal '"+p.curTok.Value+"'", p.curTok.Span)
		}
		if negate {
			val = -val
		}
		lit = ast.NewIntegerLiteral(val, mergeSpan(p.spanWithFilename(startSpan), p.spanWithFilename(p.curTok.Span)))
	case lexer.FLOAT:
		val, err := strconv.ParseFloat(p.curTok.Value, 64)
		if err != nil {
			p.reportError("invalid float literal '"+p.curTok.Value+"'", p.curTok.Span)
		}
		if negate {
			val = -val
		}
		lit = ast.NewFloatLiteral(val, mergeSpan(p.spanWithFilename(startSpan), p.spanWithFilename(p.curTok.Span)))
	case lexer.STRING:
		lit = ast.NewStringLiteral(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	case lexer.TRUE, lexer.FALSE:
		lit = ast.NewBoolLiteral(p.curTok.Type == lexer.TRUE, p.spanWithFilename(p.curTok.Span))
	case lexer.NIL:
		lit = ast.NewNilLiteral(p.spanWithFilename(p.curTok.Span))
	default:
		p.reportError("expected a literal", p.curTok.Span)
	}
	return lit
}

func (p *Parser) parseLiteralOrRangePattern() ast.Pattern {
	startSpan := p.curTok.Span
	first := p.parsePatternLiteralExpr()
	if first == nil {
		return nil
	}
	if p.peekTok.Type != lexer.DOTDOT {
		return ast.NewPatternLiteral(first, first.Span())
	}
	p.nextToken()
	p.nextToken()
	end := p.parsePatternLiteralExpr()
	if end == nil {
		return ast.NewPatternRange(first, first, first.Span())
	}
	return ast.NewPatternRange(first, end, mergeSpan(p.spanWithFilename(startSpan), end.Span()))
}

func (p *Parser) parseTuplePattern() ast.Pattern {
	startSpan := p.curTok.Span
	var elements []ast.Pattern
	if p.peekTok.Type != lexer.RPAREN {
		p.nextToken()
		elements = append(elements, p.parsePattern())
		for p.peekTok.Type == lexer.COMMA {
			p.nextToken()
			p.nextToken()
			elements = append(elements, p.parsePattern())
		}
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	return ast.NewPatternTuple(elements, mergeSpan(p.spanWithFilename(startSpan), p.spanWithFilename(p.curTok.Span)))
}

// parseArrayPattern destructures an array positionally, with an optional
// single `..name` rest binding marking where the remaining elements go.
func (p *Parser) parseArrayPattern() ast.Pattern {
	startSpan := p.curTok.Span
	var elements []ast.Pattern
	var rest *ast.Ident
	restPos := -1

	if p.peekTok.Type != lexer.RBRACKET {
		p.nextToken()
		for {
			if p.curTok.Type == lexer.DOTDOT {
				if !p.expect(lexer.IDENT) {
					break
				}
				rest = ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
				restPos = len(elements)
			} else {
				elements = append(elements, p.parsePattern())
			}
			if p.peekTok.Type != lexer.COMMA {
				break
			}
			p.nextToken()
			p.nextToken()
		}
	}
	if !p.expect(lexer.RBRACKET) {
		return nil
	}
	return ast.NewPatternArray(elements, rest, restPos, mergeSpan(p.spanWithFilename(startSpan), p.spanWithFilename(p.curTok.Span)))
}

// parseEnumPatternNamed parses `Variant { field, field: pattern }` or the
// zero-field form `Variant {}`. Positional enum patterns are not supported:
// every carried field must be named at the match site.
func (p *Parser) parseEnumPatternNamed() ast.Pattern {
	startSpan := p.curTok.Span
	variant := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	p.nextToken() // consume the '{'

	var fields []ast.PatternFieldBinding
	if p.peekTok.Type != lexer.RBRACE {
		p.nextToken()
		for {
			fields = append(fields, p.parsePatternFieldBinding())
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
	return ast.NewPatternEnum(variant, fields, mergeSpan(p.spanWithFilename(startSpan), p.spanWithFilename(p.curTok.Span)))
}

func (p *Parser) parsePatternFieldBinding() ast.PatternFieldBinding {
	name := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	if p.peekTok.Type != lexer.COLON {
		return ast.PatternFieldBinding{Name: name}
	}
	p.nextToken()
	p.nextToken()
	return ast.PatternFieldBinding{Name: name, Pattern: p.parsePattern()}
}
