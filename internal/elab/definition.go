package elab

import (
	"svelab/internal/symbols"
	"svelab/internal/syntax"
)

// CreateDefinition builds the definition symbol for a module/interface/
// program declaration: its scope holds the parameter declarations, the body
// syntax is kept for instantiation.
func CreateDefinition(comp symbols.Compilation, decl *syntax.ModuleDeclSyntax) *symbols.DefinitionSymbol {
	def := symbols.NewDefinitionSymbol(comp, decl)
	scope := def.AsScope()

	hasParamList := len(decl.ParamPorts) > 0

	for _, pp := range decl.ParamPorts {
		if pp.IsTypeParam {
			tp := symbols.NewTypeParameterSymbol(pp.Decl.Name, pp.Decl.Span(), pp, pp.IsLocal)
			if pp.Decl.Init != nil {
				tp.Declared().SetTypeSyntax(typeFromExprSyntax(pp.Decl.Init))
			}
			scope.AddMember(tp)
			def.TypeParams = append(def.TypeParams, tp)
			continue
		}
		param := symbols.NewParameterSymbol(pp.Decl.Name, pp.Decl.Span(), pp, pp.IsLocal, true)
		dt := param.Declared()
		dt.SetFlags(symbols.DeclRequireConstant | symbols.DeclInferImplicit)
		if pp.Type != nil {
			dt.SetTypeSyntax(pp.Type)
		}
		dt.SetDimensionSyntax(pp.Decl.Dims)
		if pp.Decl.Init != nil {
			dt.SetInitializerSyntax(pp.Decl.Init, pp.Decl.EqSpan)
		}
		scope.AddMember(param)
		def.Parameters = append(def.Parameters, param)
	}

	// body parameters are overridable only when the definition has no
	// parameter port list
	collectBodyParams(def, decl.Items, hasParamList)
	return def
}

// typeFromExprSyntax reinterprets an expression parsed in a type-value
// position (type parameter defaults and overrides) as a data type.
func typeFromExprSyntax(e syntax.ExprSyntax) syntax.TypeSyntax {
	switch s := e.(type) {
	case *syntax.DataTypeExprSyntax:
		return s.Type
	case *syntax.NameExprSyntax:
		return &syntax.NamedTypeSyntax{Name: s.Name, NameSpan: s.Span()}
	case *syntax.ScopedNameExprSyntax:
		return &syntax.NamedTypeSyntax{Package: s.Scope, Name: s.Name, NameSpan: s.Span()}
	default:
		return nil
	}
}

func collectBodyParams(def *symbols.DefinitionSymbol, items []syntax.MemberSyntax, hasParamList bool) {
	for _, item := range items {
		pd, ok := item.(*syntax.ParamDeclSyntax)
		if !ok || pd.IsTypeParam {
			continue
		}
		for _, d := range pd.Decls {
			isLocal := pd.IsLocal || hasParamList
			param := symbols.NewParameterSymbol(d.Name, d.Span(), pd, isLocal, !isLocal)
			dt := param.Declared()
			dt.SetFlags(symbols.DeclRequireConstant | symbols.DeclInferImplicit)
			dt.SetTypeSyntax(pd.Type)
			dt.SetDimensionSyntax(d.Dims)
			if d.Init != nil {
				dt.SetInitializerSyntax(d.Init, d.EqSpan)
			}
			def.AsScope().AddMember(param)
			def.Parameters = append(def.Parameters, param)
		}
	}
}
