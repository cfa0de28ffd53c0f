package ast

import "github.com/zena-lang/zenac/internal/lexer"

// Pattern represents a match pattern node.
type Pattern interface {
	Node
	patternNode()
}

// PatternWild represents the `_` wildcard, matching anything without binding.
type PatternWild struct {
	span lexer.Span
}

func NewPatternWild(span lexer.Span) *PatternWild { return &PatternWild{span: span} }

func (p *PatternWild) Span() lexer.Span { return p.span }
func (*PatternWild) patternNode()       {}

// PatternIdent binds the matched value to Name.
type PatternIdent struct {
	Name *Ident
	span lexer.Span
}

func NewPatternIdent(name *Ident, span lexer.Span) *PatternIdent {
	return &PatternIdent{Name: name, span: span}
}

func (p *PatternIdent) Span() lexer.Span { return p.span }
func (*PatternIdent) patternNode()       {}

// PatternLiteral matches an exact literal value.
type PatternLiteral struct {
	Value Expr // one of IntegerLiteral, FloatLiteral, StringLiteral, BoolLiteral, NilLiteral
	span  lexer.Span
}

func NewPatternLiteral(value Expr, span lexer.Span) *PatternLiteral {
	return &PatternLiteral{Value: value, span: span}
}

func (p *PatternLiteral) Span() lexer.Span { return p.span }
func (*PatternLiteral) patternNode()       {}

// PatternRange matches any value within [Start, End].
type PatternRange struct {
	Start Expr
	End   Expr
	span  lexer.Span
}

func NewPatternRange(start, end Expr, span lexer.Span) *PatternRange {
	return &PatternRange{Start: start, End: end, span: span}
}

func (p *PatternRange) Span() lexer.Span { return p.span }
func (*PatternRange) patternNode()       {}

// PatternTuple destructures a tuple positionally.
type PatternTuple struct {
	Elements []Pattern
	span     lexer.Span
}

func NewPatternTuple(elements []Pattern, span lexer.Span) *PatternTuple {
	return &PatternTuple{Elements: elements, span: span}
}

func (p *PatternTuple) Span() lexer.Span { return p.span }
func (*PatternTuple) patternNode()       {}

// PatternFieldBinding is one `name: pattern` entry of a PatternEnum or a
// record-destructuring pattern; Pattern is nil when the field shorthand
// `name` is used to bind the field directly.
type PatternFieldBinding struct {
	Name    *Ident
	Pattern Pattern
}

// PatternEnum matches a specific enum variant, optionally destructuring its
// carried fields.
type PatternEnum struct {
	Variant *Ident
	Fields  []PatternFieldBinding
	span    lexer.Span
}

func NewPatternEnum(variant *Ident, fields []PatternFieldBinding, span lexer.Span) *PatternEnum {
	return &PatternEnum{Variant: variant, Fields: fields, span: span}
}

func (p *PatternEnum) Span() lexer.Span { return p.span }
func (*PatternEnum) patternNode()       {}

// PatternArray destructures an array; Rest, if non-nil, binds the remaining
// elements after the fixed prefix/suffix represented by Elements.
type PatternArray struct {
	Elements []Pattern
	Rest     *Ident
	RestPos  int // index within Elements where Rest is spliced in, -1 if absent
	span     lexer.Span
}

func NewPatternArray(elements []Pattern, rest *Ident, restPos int, span lexer.Span) *PatternArray {
	return &PatternArray{Elements: elements, Rest: rest, RestPos: restPos, span: span}
}

func (p *PatternArray) Span() lexer.Span { return p.span }
func (*PatternArray) patternNode()       {}

// PatternOr matches if any of Alternatives matches, all of which must bind
// the same set of names.
type PatternOr struct {
	Alternatives []Pattern
	span         lexer.Span
}

func NewPatternOr(alternatives []Pattern, span lexer.Span) *PatternOr {
	return &PatternOr{Alternatives: alternatives, span: span}
}

func (p *PatternOr) Span() lexer.Span { return p.span }
func (*PatternOr) patternNode()       {}
