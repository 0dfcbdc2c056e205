package elab

import (
	"fmt"

	"svelab/internal/diag"
	"svelab/internal/numeric"
	"svelab/internal/sema"
	"svelab/internal/source"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
)

// generateIterationLimit bounds loop generate expansion.
const generateIterationLimit = 65536

// expandIfGenerate evaluates the predicate at compile time and creates the
// taken branch; the untaken branch is still created but marked
// uninstantiated so its members elaborate without producing diagnostics or
// values.
func expandIfGenerate(comp symbols.Compilation, scope *symbols.Scope,
	m *syntax.IfGenerateSyntax, opts memberOpts) []symbols.Symbol {

	ctx := sema.NewContext(comp, scope).WithFlags(sema.FlagConstant)
	if opts.uninstantiated {
		ctx = ctx.WithFlags(sema.FlagUninstantiated)
	}
	cond := ctx.BindExpression(m.Cond)
	v := ctx.EvalConstant(cond)

	takeThen := v.IsTrue()
	haveValue := !v.IsInvalid()

	var out []symbols.Symbol
	appendBranch := func(member syntax.MemberSyntax, taken bool) {
		if member == nil {
			return
		}
		branchOpts := opts
		if !taken || !haveValue {
			branchOpts.uninstantiated = true
		}
		out = append(out, makeGenerateBlock(comp, member, branchOpts)...)
	}
	appendBranch(m.Then, takeThen)
	appendBranch(m.Else, !takeThen)
	return out
}

// makeGenerateBlock wraps a generate branch member into a block symbol.
func makeGenerateBlock(comp symbols.Compilation, member syntax.MemberSyntax, opts memberOpts) []symbols.Symbol {
	switch b := member.(type) {
	case *syntax.GenerateBlockSyntax:
		block := symbols.NewGenerateBlockSymbol(comp, b.Label, b.Span(), b)
		block.Uninstantiated = opts.uninstantiated
		AddMembers(comp, block.AsScope(), b.Items, opts)
		return []symbols.Symbol{block}
	default:
		// a bare item forms an anonymous block
		block := symbols.NewGenerateBlockSymbol(comp, "", member.Span(), member)
		block.Uninstantiated = opts.uninstantiated
		AddMembers(comp, block.AsScope(), []syntax.MemberSyntax{member}, opts)
		return []symbols.Symbol{block}
	}
}

// expandCaseGenerate binds every case expression, evaluates, and picks the
// first matching arm. Duplicate matches warn; no match without a default is
// an error.
func expandCaseGenerate(comp symbols.Compilation, scope *symbols.Scope,
	m *syntax.CaseGenerateSyntax, opts memberOpts) []symbols.Symbol {

	ctx := sema.NewContext(comp, scope).WithFlags(sema.FlagConstant)
	if opts.uninstantiated {
		ctx = ctx.WithFlags(sema.FlagUninstantiated)
	}
	cond := ctx.BindExpression(m.Expr)
	condVal := ctx.EvalConstant(cond)

	var taken syntax.MemberSyntax
	var defaultArm syntax.MemberSyntax
	matched := false

	for _, item := range m.Items {
		if item.Exprs == nil {
			defaultArm = item.Member
			continue
		}
		for _, e := range item.Exprs {
			bound := ctx.BindAssignment(cond.Type(), e, e.Span())
			v := ctx.EvalConstant(bound)
			if condVal.IsInvalid() || v.IsInvalid() {
				continue
			}
			if valuesCaseEqual(condVal, v) {
				if matched {
					if !opts.uninstantiated {
						comp.Report(diag.New(diag.CaseGenerateDup, e.Span(), condVal.String()))
					}
					continue
				}
				matched = true
				taken = item.Member
			}
		}
	}

	if taken == nil {
		taken = defaultArm
	}
	if taken == nil {
		if !condVal.IsInvalid() && !opts.uninstantiated {
			comp.Report(diag.New(diag.CaseGenerateNoBlock, m.Span(), condVal.String()))
		}
		return nil
	}

	var out []symbols.Symbol
	for _, item := range m.Items {
		branchOpts := opts
		if item.Member != taken {
			branchOpts.uninstantiated = true
		}
		out = append(out, makeGenerateBlock(comp, item.Member, branchOpts)...)
	}
	return out
}

func valuesCaseEqual(a, b numeric.Value) bool {
	if a.Kind() == numeric.KindInteger && b.Kind() == numeric.KindInteger {
		return a.Integer().CaseEq(b.Integer()) == numeric.L1
	}
	return a.Equivalent(b)
}

// expandLoopGenerate iterates a for-generate: the genvar starts at the
// initial value, each iteration seeds a child block with an implicit
// localparam holding the current value, and the iteration expression
// advances it. Unknown bits or repeated values halt expansion.
func expandLoopGenerate(comp symbols.Compilation, scope *symbols.Scope,
	m *syntax.LoopGenerateSyntax, opts memberOpts) []symbols.Symbol {

	ctx := sema.NewContext(comp, scope).WithFlags(sema.FlagConstant)
	if opts.uninstantiated {
		ctx = ctx.WithFlags(sema.FlagUninstantiated)
	}

	// the loop genvar must exist unless declared inline
	if !m.DeclaresGenvar {
		result := symbols.Unqualified(scope, m.GenvarName, symbols.LookupMax)
		if result.Symbol == nil {
			if !opts.uninstantiated {
				comp.Report(diag.New(diag.UndeclaredIdentifier, m.GenvarSpan, m.GenvarName))
			}
			return nil
		}
		if result.Symbol.Kind() != symbols.SymbolGenvar {
			if !opts.uninstantiated {
				comp.Report(diag.New(diag.NotAGenvar, m.GenvarSpan, m.GenvarName))
			}
			return nil
		}
	}

	initial := ctx.EvalConstant(ctx.BindExpression(m.Init))
	if initial.IsInvalid() || initial.Kind() != numeric.KindInteger {
		return nil
	}

	label := ""
	var bodyBlock *syntax.GenerateBlockSyntax
	if b, ok := m.Body.(*syntax.GenerateBlockSyntax); ok {
		bodyBlock = b
		label = b.Label
	}

	array := symbols.NewGenerateBlockArraySymbol(comp, label, m.GenvarSpan, m)

	seen := make(map[int64]bool)
	value := initial.Integer()
	var blocks []*symbols.GenerateBlockSymbol

	for iter := 0; ; iter++ {
		if iter > generateIterationLimit {
			if !opts.uninstantiated {
				comp.Report(diag.New(diag.InternalLimit, m.Span(), "generate loop iterations"))
			}
			break
		}
		if value.HasUnknown() {
			if !opts.uninstantiated {
				comp.Report(diag.New(diag.GenvarUnknownBits, m.GenvarSpan))
			}
			break
		}
		iv, ok := value.AsInt64()
		if !ok {
			break
		}

		// evaluate the stop expression with the genvar bound to the current
		// value
		stop, ok := evalWithGenvar(comp, scope, m, iv, m.Stop, opts)
		if !ok || !stop.IsTrue() {
			break
		}

		if seen[iv] {
			if !opts.uninstantiated {
				comp.Report(diag.New(diag.GenvarDuplicateValue, m.GenvarSpan, intValueString(iv)))
			}
			break
		}
		seen[iv] = true

		// one child block per iteration, seeded with the implicit localparam
		block := symbols.NewGenerateBlockSymbol(comp, fmt.Sprintf("%s[%d]", label, iv), m.GenvarSpan, m.Body)
		block.Uninstantiated = opts.uninstantiated
		block.GenvarValue = iv
		array.AsScope().AddMember(block)

		genParam := makeGenvarParam(comp, m.GenvarName, m.GenvarSpan, iv)
		block.AsScope().AddMember(genParam)

		if bodyBlock != nil {
			AddMembers(comp, block.AsScope(), bodyBlock.Items, opts)
		} else if m.Body != nil {
			AddMembers(comp, block.AsScope(), []syntax.MemberSyntax{m.Body}, opts)
		}
		blocks = append(blocks, block)

		// advance via the iteration expression
		next, ok := evalWithGenvar(comp, scope, m, iv, iterRHS(m.Iter), opts)
		if !ok || next.Kind() != numeric.KindInteger {
			break
		}
		value = next.Integer()
	}

	array.Blocks = blocks
	return []symbols.Symbol{array}
}

// iterRHS unwraps `i = i + 1` to its right-hand side; a bare expression is
// used as-is.
func iterRHS(e syntax.ExprSyntax) syntax.ExprSyntax {
	if assign, ok := e.(*syntax.AssignExprSyntax); ok {
		return assign.Right
	}
	return e
}

// evalWithGenvar evaluates an expression in a fabricated loop scope where
// the genvar name resolves to a localparam holding the current value.
func evalWithGenvar(comp symbols.Compilation, scope *symbols.Scope,
	m *syntax.LoopGenerateSyntax, current int64, e syntax.ExprSyntax, opts memberOpts) (numeric.Value, bool) {

	if e == nil {
		return numeric.Invalid, false
	}
	loop := symbols.NewSequentialBlockSymbol(comp, "", m.GenvarSpan, m)
	scope.Adopt(loop)
	loop.AsScope().AddMember(makeGenvarParam(comp, m.GenvarName, m.GenvarSpan, current))

	ctx := sema.NewContext(comp, loop.AsScope()).WithFlags(sema.FlagConstant)
	if opts.uninstantiated {
		ctx = ctx.WithFlags(sema.FlagUninstantiated)
	}
	v := ctx.EvalConstant(ctx.BindExpression(e))
	return v, !v.IsInvalid()
}

// makeGenvarParam builds the implicit localparam carrying a genvar value.
func makeGenvarParam(comp symbols.Compilation, name string, loc source.Span, value int64) *symbols.ParameterSymbol {
	p := symbols.NewParameterSymbol(name, loc, nil, true, false)
	p.Declared().FinishTypeResolution(comp.Types().Int)
	p.Declared().FinishInitResolution(nil, numeric.IntegerValue(numeric.FromInt64(32, true, value)))
	return p
}

func intValueString(v int64) string {
	return numeric.FromInt64(32, true, v).String()
}
