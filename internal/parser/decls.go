package parser

import (
	"github.com/zena-lang/zenac/internal/ast"
	"github.com/zena-lang/zenac/internal/lexer"
)

// Top-level declaration parse functions, unlike expression-level ones, leave
// curTok positioned one past the construct they parsed: ParseFile's loops
// call nextToken implicitly by relying on this convention. Members of a
// class/interface/mixin/enum body instead end on their own last token, since
// those body loops advance with nextToken after each member, the way
// parseBlockBody's statement loop does.

func (p *Parser) parsePackageDecl() *ast.PackageDecl {
	startSpan := p.curTok.Span
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	decl := ast.NewPackageDecl(name, mergeSpan(p.spanWithFilename(startSpan), p.spanWithFilename(p.curTok.Span)))
	p.nextToken()
	return decl
}

// parseUseDecl parses `use a.b.c` or `use zena:iterator`, where path
// segments may be separated by either `.` or `:`, with an optional `as`
// alias.
func (p *Parser) parseUseDecl() *ast.UseDecl {
	startSpan := p.curTok.Span
	if !p.expect(lexer.IDENT) {
		p.nextToken()
		return nil
	}
	path := []*ast.Ident{ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))}
	for p.peekTok.Type == lexer.DOT || p.peekTok.Type == lexer.COLON {
		p.nextToken()
		if !p.expect(lexer.IDENT) {
			break
		}
		path = append(path, ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span)))
	}

	var alias *ast.Ident
	if p.peekTok.Type == lexer.AS {
		p.nextToken()
		if p.expect(lexer.IDENT) {
			alias = ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
		}
	}

	endSpan := p.spanWithFilename(p.curTok.Span)
	decl := ast.NewUseDecl(path, alias, mergeSpan(p.spanWithFilename(startSpan), endSpan))
	p.nextToken()
	return decl
}

// parseDecl dispatches on an optional `pub` prefix and the declaration
// keyword that follows.
func (p *Parser) parseDecl() ast.Decl {
	pub := false
	if p.curTok.Type == lexer.PUB {
		pub = true
		p.nextToken()
	}

	switch p.curTok.Type {
	case lexer.FN:
		fn := p.parseFnDecl(pub)
		if fn == nil {
			return nil
		}
		if fn.Body != nil {
			p.nextToken()
		}
		return fn
	case lexer.FINAL, lexer.ABSTRACT, lexer.CLASS, lexer.EXTENSION:
		return p.parseClassDecl(pub)
	case lexer.INTERFACE:
		return p.parseInterfaceDecl(pub)
	case lexer.MIXIN:
		return p.parseMixinDecl(pub)
	case lexer.ENUM:
		return p.parseEnumDecl(pub)
	case lexer.DISTINCT:
		p.nextToken()
		if p.curTok.Type != lexer.TYPE {
			p.reportError("expected 'type' after 'distinct'", p.curTok.Span)
			return nil
		}
		return p.parseTypeAliasDecl(pub, true)
	case lexer.TYPE:
		return p.parseTypeAliasDecl(pub, false)
	default:
		p.reportError("expected a declaration", p.curTok.Span)
		return nil
	}
}

// parseGenericParams parses an optional `<T, U: Bound>` clause; curTok ends
// on the closing `>` (or is left unadvanced if no clause is present).
func (p *Parser) parseGenericParams() []ast.GenericParam {
	if p.peekTok.Type != lexer.LT {
		return nil
	}
	p.nextToken()
	var params []ast.GenericParam
	p.nextToken()
	for {
		name := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
		var constraint ast.TypeExpr
		if p.peekTok.Type == lexer.COLON {
			p.nextToken()
			p.nextToken()
			constraint = p.parseTypeExpr()
		}
		params = append(params, ast.GenericParam{Name: name, Constraint: constraint})
		if p.peekTok.Type != lexer.COMMA {
			break
		}
		p.nextToken()
		p.nextToken()
	}
	p.expect(lexer.GT)
	return params
}

func (p *Parser) parseFnDecl(pub bool) *ast.FnDecl {
	startSpan := p.curTok.Span
	if !p.expect(lexer.IDENT) {
		p.nextToken()
		return nil
	}
	name := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	typeParams := p.parseGenericParams()

	if !p.expect(lexer.LPAREN) {
		p.nextToken()
		return nil
	}
	params := p.parseParams()

	var retType ast.TypeExpr
	if p.peekTok.Type == lexer.ARROW {
		p.nextToken()
		p.nextToken()
		retType = p.parseTypeExpr()
	}

	var body *ast.BlockExpr
	if p.peekTok.Type == lexer.LBRACE {
		p.nextToken()
		body = p.parseBlock()
	}

	endSpan := p.spanWithFilename(p.curTok.Span)
	decl := ast.NewFnDecl(pub, name, typeParams, params, retType, body, mergeSpan(p.spanWithFilename(startSpan), endSpan))
	if body == nil {
		p.nextToken()
	}
	return decl
}

// parseMethodModifiers consumes any of static/abstract/override/final/get/set
// in any order preceding `fn`, returning once `fn` is reached.
func (p *Parser) parseMethodModifiers() (isStatic, isAbstract, isOverride, isFinal bool, accessor ast.AccessorKind) {
	for {
		switch p.curTok.Type {
		case lexer.STATIC:
			isStatic = true
		case lexer.ABSTRACT:
			isAbstract = true
		case lexer.OVERRIDE:
			isOverride = true
		case lexer.FINAL:
			isFinal = true
		case lexer.GET:
			accessor = ast.AccessorGet
		case lexer.SET:
			accessor = ast.AccessorSet
		default:
			return
		}
		p.nextToken()
	}
}

// parseMethodDecl parses one method inside a class/interface/mixin body,
// starting at the first modifier token or `fn` and ending on the method's
// last token: the closing `}` of its body, or the token after its signature
// (the `;`) when it has no body.
func (p *Parser) parseMethodDecl(pub bool) *ast.MethodDecl {
	isStatic, isAbstract, isOverride, isFinal, accessor := p.parseMethodModifiers()
	if p.curTok.Type != lexer.FN {
		p.reportError("expected 'fn'", p.curTok.Span)
		return nil
	}
	fn := p.parseFnDecl(pub)
	if fn == nil {
		return nil
	}
	return &ast.MethodDecl{Fn: fn, IsAbstract: isAbstract, IsOverride: isOverride, IsStatic: isStatic, IsFinal: isFinal, Accessor: accessor}
}

func (p *Parser) parseClassField(pub bool) *ast.ClassField {
	startSpan := p.curTok.Span
	mut := false
	if p.curTok.Type == lexer.MUT {
		mut = true
		p.nextToken()
	}
	name := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	var typ ast.TypeExpr
	if p.peekTok.Type == lexer.COLON {
		p.nextToken()
		p.nextToken()
		typ = p.parseTypeExpr()
	}
	endSpan := p.spanWithFilename(p.curTok.Span)
	if typ != nil {
		endSpan = typ.Span()
	}
	field := ast.NewClassField(name, typ, mut, mergeSpan(p.spanWithFilename(startSpan), endSpan))
	_ = pub
	p.nextToken()
	return field
}

// parseTypeExprList parses a comma-separated list of type expressions used
// after `extends`/`implements`/`with` clauses; curTok ends on the last type
// parsed.
func (p *Parser) parseTypeExprList() []ast.TypeExpr {
	var list []ast.TypeExpr
	list = append(list, p.parseTypeExpr())
	for p.peekTok.Type == lexer.COMMA {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseTypeExpr())
	}
	return list
}

func (p *Parser) parseClassDecl(pub bool) *ast.ClassDecl {
	startSpan := p.curTok.Span
	decl := ast.NewClassDecl(p.spanWithFilename(startSpan))
	decl.Pub = pub

	for p.curTok.Type == lexer.FINAL || p.curTok.Type == lexer.ABSTRACT || p.curTok.Type == lexer.EXTENSION {
		switch p.curTok.Type {
		case lexer.FINAL:
			decl.Final = true
		case lexer.ABSTRACT:
			decl.Abstract = true
		case lexer.EXTENSION:
			decl.Extension = true
		}
		p.nextToken()
	}

	if !p.expect(lexer.IDENT) {
		p.nextToken()
		return decl
	}
	decl.Name = ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	decl.TypeParams = p.parseGenericParams()

	if decl.Extension && p.peekTok.Type == lexer.ON {
		p.nextToken()
		p.nextToken()
		decl.On = p.parseTypeExpr()
	}

	if p.peekTok.Type == lexer.EXTENDS {
		p.nextToken()
		p.nextToken()
		decl.Super = p.parseTypeExpr()
	}
	if p.peekTok.Type == lexer.WITH {
		p.nextToken()
		p.nextToken()
		decl.Mixins = p.parseTypeExprList()
	}
	if p.peekTok.Type == lexer.IMPLEMENTS {
		p.nextToken()
		p.nextToken()
		decl.Implements = p.parseTypeExprList()
	}

	if !p.expect(lexer.LBRACE) {
		p.nextToken()
		return decl
	}
	p.nextToken()
	for p.curTok.Type != lexer.RBRACE && p.curTok.Type != lexer.EOF {
		p.parseClassMember(decl)
		p.nextToken()
	}

	decl.SetSpan(mergeSpan(decl.Span(), p.spanWithFilename(p.curTok.Span)))
	p.nextToken()
	return decl
}

// parseClassMember parses one field, constructor, or method and appends it
// to decl; curTok enters on the member's first token and ends on its last.
func (p *Parser) parseClassMember(decl *ast.ClassDecl) {
	memberPub := false
	if p.curTok.Type == lexer.PUB {
		memberPub = true
		p.nextToken()
	}

	switch p.curTok.Type {
	case lexer.IDENT:
		if p.curTok.Value == "new" && p.peekTok.Type == lexer.LPAREN {
			decl.Constructor = p.parseConstructor(memberPub)
			return
		}
		decl.Fields = append(decl.Fields, p.parseClassField(memberPub))
	case lexer.NEW:
		decl.Constructor = p.parseConstructor(memberPub)
	case lexer.MUT:
		decl.Fields = append(decl.Fields, p.parseClassField(memberPub))
	case lexer.STATIC, lexer.ABSTRACT, lexer.OVERRIDE, lexer.FINAL, lexer.GET, lexer.SET, lexer.FN:
		m := p.parseMethodDecl(memberPub)
		if m != nil {
			decl.Methods = append(decl.Methods, m)
		}
	default:
		p.reportError("expected a field, constructor, or method", p.curTok.Span)
	}
}

func (p *Parser) parseConstructor(pub bool) *ast.MethodDecl {
	startSpan := p.curTok.Span
	name := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	params := p.parseParams()
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	fn := ast.NewFnDecl(pub, name, nil, params, nil, body, mergeSpan(p.spanWithFilename(startSpan), body.Span()))
	return &ast.MethodDecl{Fn: fn}
}

func (p *Parser) parseInterfaceDecl(pub bool) *ast.InterfaceDecl {
	startSpan := p.curTok.Span
	decl := ast.NewInterfaceDecl(p.spanWithFilename(startSpan))
	decl.Pub = pub

	if !p.expect(lexer.IDENT) {
		p.nextToken()
		return decl
	}
	decl.Name = ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	decl.TypeParams = p.parseGenericParams()

	if p.peekTok.Type == lexer.EXTENDS {
		p.nextToken()
		p.nextToken()
		decl.Extends = p.parseTypeExprList()
	}

	if !p.expect(lexer.LBRACE) {
		p.nextToken()
		return decl
	}
	p.nextToken()
	for p.curTok.Type != lexer.RBRACE && p.curTok.Type != lexer.EOF {
		memberPub := false
		if p.curTok.Type == lexer.PUB {
			memberPub = true
			p.nextToken()
		}
		switch p.curTok.Type {
		case lexer.IDENT:
			decl.Fields = append(decl.Fields, p.parseClassField(memberPub))
		default:
			m := p.parseMethodDecl(memberPub)
			if m != nil {
				decl.Methods = append(decl.Methods, m)
			}
		}
		p.nextToken()
	}

	decl.SetSpan(mergeSpan(decl.Span(), p.spanWithFilename(p.curTok.Span)))
	p.nextToken()
	return decl
}

// parseMixinDecl parses a mixin body, rejecting any constructor member
// since mixins contribute fields/methods but never instantiation logic.
func (p *Parser) parseMixinDecl(pub bool) *ast.MixinDecl {
	startSpan := p.curTok.Span
	decl := ast.NewMixinDecl(p.spanWithFilename(startSpan))
	decl.Pub = pub

	if !p.expect(lexer.IDENT) {
		p.nextToken()
		return decl
	}
	decl.Name = ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	decl.TypeParams = p.parseGenericParams()

	if !p.expect(lexer.ON) {
		p.nextToken()
		return decl
	}
	p.nextToken()
	decl.On = p.parseTypeExpr()

	if p.peekTok.Type == lexer.IMPLEMENTS {
		p.nextToken()
		p.nextToken()
		decl.Implements = p.parseTypeExprList()
	}

	if !p.expect(lexer.LBRACE) {
		p.nextToken()
		return decl
	}
	p.nextToken()
	for p.curTok.Type != lexer.RBRACE && p.curTok.Type != lexer.EOF {
		memberPub := false
		if p.curTok.Type == lexer.PUB {
			memberPub = true
			p.nextToken()
		}
		switch p.curTok.Type {
		case lexer.IDENT:
			if p.curTok.Value == "new" && p.peekTok.Type == lexer.LPAREN {
				p.reportError("mixins cannot declare a constructor", p.curTok.Span)
				p.parseConstructor(memberPub)
				break
			}
			decl.Fields = append(decl.Fields, p.parseClassField(memberPub))
		case lexer.NEW:
			p.reportError("mixins cannot declare a constructor", p.curTok.Span)
			p.parseConstructor(memberPub)
		case lexer.MUT:
			decl.Fields = append(decl.Fields, p.parseClassField(memberPub))
		default:
			m := p.parseMethodDecl(memberPub)
			if m != nil {
				decl.Methods = append(decl.Methods, m)
			}
		}
		p.nextToken()
	}

	decl.SetSpan(mergeSpan(decl.Span(), p.spanWithFilename(p.curTok.Span)))
	p.nextToken()
	return decl
}

func (p *Parser) parseEnumDecl(pub bool) *ast.EnumDecl {
	startSpan := p.curTok.Span
	decl := ast.NewEnumDecl(p.spanWithFilename(startSpan))
	decl.Pub = pub

	if !p.expect(lexer.IDENT) {
		p.nextToken()
		return decl
	}
	decl.Name = ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	decl.TypeParams = p.parseGenericParams()

	if !p.expect(lexer.LBRACE) {
		p.nextToken()
		return decl
	}
	p.nextToken()
	for p.curTok.Type != lexer.RBRACE && p.curTok.Type != lexer.EOF {
		if p.curTok.Type == lexer.IDENT && (p.peekTok.Type == lexer.COMMA || p.peekTok.Type == lexer.LBRACE || p.peekTok.Type == lexer.RBRACE) {
			variant := p.parseEnumVariant()
			if variant != nil {
				decl.Variants = append(decl.Variants, variant)
			}
		} else {
			m := p.parseMethodDecl(false)
			if m != nil {
				decl.Methods = append(decl.Methods, m)
			}
		}
		p.nextToken()
	}

	decl.SetSpan(mergeSpan(decl.Span(), p.spanWithFilename(p.curTok.Span)))
	p.nextToken()
	return decl
}

func (p *Parser) parseEnumVariant() *ast.EnumVariant {
	startSpan := p.curTok.Span
	name := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))

	var fields []*ast.ClassField
	if p.peekTok.Type == lexer.LBRACE {
		p.nextToken()
		if p.peekTok.Type != lexer.RBRACE {
			p.nextToken()
			for {
				fields = append(fields, p.parseEnumVariantField())
				if p.peekTok.Type != lexer.COMMA {
					break
				}
				p.nextToken()
				p.nextToken()
			}
		}
		p.expect(lexer.RBRACE)
	}

	if p.peekTok.Type == lexer.COMMA {
		p.nextToken()
	}

	return ast.NewEnumVariant(name, fields, mergeSpan(p.spanWithFilename(startSpan), p.spanWithFilename(p.curTok.Span)))
}

func (p *Parser) parseEnumVariantField() *ast.ClassField {
	startSpan := p.curTok.Span
	name := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	var typ ast.TypeExpr
	if p.peekTok.Type == lexer.COLON {
		p.nextToken()
		p.nextToken()
		typ = p.parseTypeExpr()
	}
	endSpan := p.spanWithFilename(p.curTok.Span)
	if typ != nil {
		endSpan = typ.Span()
	}
	return ast.NewClassField(name, typ, false, mergeSpan(p.spanWithFilename(startSpan), endSpan))
}

func (p *Parser) parseTypeAliasDecl(pub, distinct bool) *ast.TypeAliasDecl {
	startSpan := p.curTok.Span
	if !p.expect(lexer.IDENT) {
		p.nextToken()
		return nil
	}
	name := ast.NewIdent(p.curTok.Value, p.spanWithFilename(p.curTok.Span))
	typeParams := p.parseGenericParams()

	if !p.expect(lexer.ASSIGN) {
		p.nextToken()
		return nil
	}
	p.nextToken()
	typ := p.parseTypeExpr()

	endSpan := p.spanWithFilename(p.curTok.Span)
	if typ != nil {
		endSpan = typ.Span()
	}
	decl := ast.NewTypeAliasDecl(pub, distinct, name, typeParams, typ, mergeSpan(p.spanWithFilename(startSpan), endSpan))
	p.nextToken()
	if p.curTok.Type == lexer.SEMICOLON {
		p.nextToken()
	}
	return decl
}
