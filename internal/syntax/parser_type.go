package syntax

import (
	"svelab/internal/diag"
	"svelab/internal/source"
)

// parseSigning consumes an optional signed/unsigned keyword.
func (p *parser) parseSigning() Signing {
	switch p.tok().Kind {
	case KwSigned:
		p.advance()
		return SignSigned
	case KwUnsigned:
		p.advance()
		return SignUnsigned
	default:
		return SignNone
	}
}

// parsePackedDimensions consumes zero or more [..:..] dimensions.
func (p *parser) parsePackedDimensions() []*DimensionSyntax {
	var dims []*DimensionSyntax
	for p.at(LBracket) {
		dims = append(dims, p.parseDimension())
	}
	return dims
}

func (p *parser) parseDimension() *DimensionSyntax {
	open := p.expect(LBracket, "[")
	if p.at(RBracket) {
		close := p.advance()
		return NewDimension(open.Span.Cover(close.Span), DimUnsized, nil, nil)
	}
	if p.at(Star) {
		p.advance()
		close := p.expect(RBracket, "]")
		return NewDimension(open.Span.Cover(close.Span), DimStar, nil, nil)
	}
	left := p.parseExpr()
	if p.at(Colon) {
		p.advance()
		right := p.parseExpr()
		close := p.expect(RBracket, "]")
		return NewDimension(open.Span.Cover(close.Span), DimRange, left, right)
	}
	close := p.expect(RBracket, "]")
	return NewDimension(open.Span.Cover(close.Span), DimSize, left, nil)
}

// parseDataType parses a data type. When allowImplicit is set and no type is
// present, an ImplicitTypeSyntax capturing signing and dimensions is
// returned.
func (p *parser) parseDataType(allowImplicit bool) TypeSyntax {
	tok := p.tok()
	start := tok.Span

	switch {
	case tok.IsIntegerTypeKeyword():
		p.advance()
		signing := p.parseSigning()
		dims := p.parsePackedDimensions()
		return &IntegerTypeSyntax{node: node{p.spanFrom(start)},
			Keyword: tok.Kind, Signing: signing, Dims: dims}

	case tok.IsFloatTypeKeyword():
		p.advance()
		return &FloatTypeSyntax{node: node{start}, Keyword: tok.Kind}

	case tok.Kind == KwString:
		p.advance()
		return &StringTypeSyntax{node: node{start}}

	case tok.Kind == KwEvent:
		p.advance()
		return &EventTypeSyntax{node: node{start}}

	case tok.Kind == KwChandle:
		p.advance()
		return &CHandleTypeSyntax{node: node{start}}

	case tok.Kind == KwVoid:
		p.advance()
		return &VoidTypeSyntax{node: node{start}}

	case tok.Kind == KwEnum:
		return p.parseEnumType()

	case tok.Kind == KwStruct, tok.Kind == KwUnion:
		return p.parseStructType()

	case tok.Kind == KwVirtual:
		p.advance()
		p.accept(KwInterface)
		p.expectIdent()
		return &UnsupportedTypeSyntax{node: node{p.spanFrom(start)}, What: "virtual interface type"}

	case tok.Kind == Identifier:
		// A lone identifier in an implicit-allowed context is the declared
		// name, not a type.
		if allowImplicit && p.peek(1).Kind != Identifier && p.peek(1).Kind != ColonColon {
			return &ImplicitTypeSyntax{node: node{source.Span{File: start.File, Start: start.Start, End: start.Start}}}
		}
		p.advance()
		if p.at(ColonColon) {
			p.advance()
			name := p.expectIdent()
			dims := p.parsePackedDimensions()
			return &NamedTypeSyntax{node: node{p.spanFrom(start)},
				Package: tok.Text, Name: name.Text, NameSpan: name.Span, Dims: dims}
		}
		dims := p.parsePackedDimensions()
		return &NamedTypeSyntax{node: node{p.spanFrom(start)},
			Name: tok.Text, NameSpan: tok.Span, Dims: dims}

	default:
		if allowImplicit {
			signing := p.parseSigning()
			dims := p.parsePackedDimensions()
			return &ImplicitTypeSyntax{node: node{p.spanFrom(start)}, Signing: signing, Dims: dims}
		}
		p.report(diag.SynExpectType, tok.Span)
		p.advance()
		return &ImplicitTypeSyntax{node: node{start}}
	}
}

func (p *parser) parseEnumType() TypeSyntax {
	start := p.expect(KwEnum, "enum").Span

	var base TypeSyntax
	if !p.at(LBrace) {
		base = p.parseDataType(false)
	}
	p.expect(LBrace, "{")

	var members []*EnumMemberSyntax
	for {
		name := p.expectIdent()
		if name.Kind == Error {
			p.skipTo(Comma, RBrace, Semicolon)
		}
		member := &EnumMemberSyntax{node: node{name.Span}, Name: name.Text}
		if p.at(LBracket) {
			member.RangeDim = p.parseDimension()
		}
		if _, ok := p.accept(Eq); ok {
			member.Init = p.parseExpr()
		}
		member.node = node{name.Span.Cover(p.last)}
		members = append(members, member)
		if _, ok := p.accept(Comma); !ok {
			break
		}
	}
	p.expect(RBrace, "}")
	dims := p.parsePackedDimensions()
	return &EnumTypeSyntax{node: node{p.spanFrom(start)}, Base: base, Members: members, Dims: dims}
}

func (p *parser) parseStructType() TypeSyntax {
	tok := p.advance() // struct or union
	start := tok.Span
	isUnion := tok.Kind == KwUnion

	packed := false
	if _, ok := p.accept(KwPacked); ok {
		packed = true
	}
	signing := p.parseSigning()
	p.expect(LBrace, "{")

	var members []*StructMemberSyntax
	for !p.at(RBrace) && !p.at(EOF) {
		memberStart := p.tok().Span
		memberType := p.parseDataType(false)
		decls := p.parseDeclarators()
		p.expect(Semicolon, ";")
		members = append(members, &StructMemberSyntax{
			node: node{memberStart.Cover(p.last)}, Type: memberType, Decls: decls})
	}
	p.expect(RBrace, "}")
	dims := p.parsePackedDimensions()
	return &StructTypeSyntax{node: node{p.spanFrom(start)},
		IsUnion: isUnion, Packed: packed, Signing: signing, Members: members, Dims: dims}
}

// parseDeclarators parses name [dims] [= init] {, ...}.
func (p *parser) parseDeclarators() []*DeclaratorSyntax {
	var decls []*DeclaratorSyntax
	for {
		name := p.expectIdent()
		if name.Kind == Error {
			p.skipTo(Comma, Semicolon, RBrace)
			if _, ok := p.accept(Comma); ok {
				continue
			}
			break
		}
		decl := &DeclaratorSyntax{node: node{name.Span}, Name: name.Text}
		for p.at(LBracket) {
			decl.Dims = append(decl.Dims, p.parseDimension())
		}
		if eq, ok := p.accept(Eq); ok {
			decl.EqSpan = eq.Span
			decl.Init = p.parseExpr()
		}
		decl.node = node{name.Span.Cover(p.last)}
		decls = append(decls, decl)
		if _, ok := p.accept(Comma); !ok {
			break
		}
	}
	return decls
}
