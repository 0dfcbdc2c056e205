package elab

import (
	"svelab/internal/diag"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
)

// resolveParameters performs the two pre-instantiation passes over a
// definition's parameters: clone everything into a temp scope parented to
// the definition's parent (so external names resolve), then match user
// overrides against the clones. The returned clones carry the override
// initializer syntax bound at the instantiation scope.
func resolveParameters(comp symbols.Compilation, def *symbols.DefinitionSymbol,
	overrides *syntax.ParamAssignmentsSyntax, instScope *symbols.Scope) []*symbols.ParameterSymbol {

	defParent := def.Parent()

	// first pass: clone into the temp evaluation scope
	clones := make([]*symbols.ParameterSymbol, 0, len(def.Parameters))
	for _, p := range def.Parameters {
		clone := p.Clone()
		if defParent != nil {
			defParent.Adopt(clone)
		}
		clones = append(clones, clone)
	}

	if overrides == nil {
		checkRequiredParams(comp, clones)
		return clones
	}

	if len(overrides.Ordered) > 0 && len(overrides.Named) > 0 {
		comp.Report(diag.New(diag.MixingOrderedAndNamedParams, overrides.Span()))
		checkRequiredParams(comp, clones)
		return clones
	}

	// second pass: match overrides
	if len(overrides.Ordered) > 0 {
		idx := 0
		for _, expr := range overrides.Ordered {
			// ordered assignment skips local parameters
			for idx < len(clones) && clones[idx].IsLocal {
				idx++
			}
			if idx >= len(clones) {
				comp.Report(diag.New(diag.TooManyParamAssignments, overrides.Span(), overridableCount(clones)))
				break
			}
			installOverride(clones[idx], expr, instScope)
			idx++
		}
	}

	assigned := make(map[string]bool)
	for _, named := range overrides.Named {
		target := findParam(clones, named.Name)
		if target == nil {
			comp.Report(diag.New(diag.ParamNameUnknown, named.NameSpan, named.Name))
			continue
		}
		if assigned[named.Name] {
			comp.Report(diag.New(diag.DuplicateParamAssignment, named.NameSpan, named.Name))
			continue
		}
		assigned[named.Name] = true
		if target.IsLocal {
			comp.Report(diag.New(diag.ParamOverrideLocal, named.NameSpan, named.Name))
			continue
		}
		if named.Expr == nil {
			// .name() leaves the default in place
			continue
		}
		installOverride(target, named.Expr, instScope)
	}

	checkRequiredParams(comp, clones)
	return clones
}

func installOverride(p *symbols.ParameterSymbol, expr syntax.ExprSyntax, instScope *symbols.Scope) {
	d := p.Declared()
	d.SetOverrideScope(instScope)
	d.SetInitializerSyntax(expr, expr.Span())
}

func findParam(params []*symbols.ParameterSymbol, name string) *symbols.ParameterSymbol {
	for _, p := range params {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func overridableCount(params []*symbols.ParameterSymbol) int {
	n := 0
	for _, p := range params {
		if !p.IsLocal {
			n++
		}
	}
	return n
}

// checkRequiredParams flags non-local port parameters that end up with
// neither a default nor an override.
func checkRequiredParams(comp symbols.Compilation, params []*symbols.ParameterSymbol) {
	for _, p := range params {
		if p.IsPort && !p.IsLocal && p.Declared().InitializerSyntax() == nil {
			comp.Report(diag.New(diag.ParamHasNoValue, p.Location(), p.Name()))
		}
	}
}
