package compiler

import (
	"github.com/latticerun/physics/ast"
	"github.com/latticerun/physics/capability"
)

// macroDef is a registered macro: formal parameter names and a body
// template referencing them as NodeVariable nodes.
type macroDef struct {
	params []string
	body   *ast.Node
}

// expandMacros rewrites every NodeMacroDef out of the tree (registering
// it) and every NodeMacroExpand into a substituted copy of its macro's
// body, gated by the tier's capability baseline (spec.md §4.3 step 1,
// §9 "surface-language macros"). Expansion is strictly finite: a macro
// that expands into a use of itself is rejected unless the tier's
// baseline grants macro-unsafe, matching macro-hygienic (safe, always
// granted in every tier's baseline) vs. macro-unsafe (only Experimental's
// baseline, per capability.Tier.Baseline).
func expandMacros(node *ast.Node, tier capability.Tier) (*ast.Node, error) {
	macros := map[string]macroDef{}
	collectMacroDefs(node, macros)

	allowUnsafe := tier.Baseline().Contains(capability.Of(capability.MacroUnsafe))

	var expand func(n *ast.Node, expanding map[string]bool) (*ast.Node, error)
	expand = func(n *ast.Node, expanding map[string]bool) (*ast.Node, error) {
		if n == nil {
			return nil, nil
		}
		switch n.Kind {
		case ast.NodeMacroDef:
			// Already registered; drop the definition node itself.
			return ast.LitNilNode(), nil
		case ast.NodeMacroExpand:
			def, ok := macros[n.MacroRef]
			if !ok {
				return nil, newErr(ErrInternal, n.MacroRef, "use of undefined macro")
			}
			if expanding[n.MacroRef] && !allowUnsafe {
				return nil, newErr(ErrCapability, n.MacroRef,
					"recursive macro expansion requires macro-unsafe")
			}
			nextExpanding := map[string]bool{}
			for k := range expanding {
				nextExpanding[k] = true
			}
			nextExpanding[n.MacroRef] = true
			substituted := substituteArgs(def.body, def.params, n.Args)
			return expand(substituted, nextExpanding)
		case ast.NodeCall, ast.NodeFFICall, ast.NodeListCons, ast.NodeSequence:
			newArgs := make([]*ast.Node, len(n.Args))
			for i, a := range n.Args {
				ex, err := expand(a, expanding)
				if err != nil {
					return nil, err
				}
				newArgs[i] = ex
			}
			cp := *n
			cp.Args = newArgs
			return &cp, nil
		case ast.NodeLambda:
			body, err := expand(n.Body, expanding)
			if err != nil {
				return nil, err
			}
			cp := *n
			cp.Body = body
			return &cp, nil
		case ast.NodeLet, ast.NodeLetrec:
			newBindings := make([]ast.Binding, len(n.Bindings))
			for i, b := range n.Bindings {
				v, err := expand(b.Value, expanding)
				if err != nil {
					return nil, err
				}
				newBindings[i] = ast.Binding{Name: b.Name, Value: v}
			}
			result, err := expand(n.Result, expanding)
			if err != nil {
				return nil, err
			}
			cp := *n
			cp.Bindings = newBindings
			cp.Result = result
			return &cp, nil
		case ast.NodeDefine:
			v, err := expand(n.DefineValue, expanding)
			if err != nil {
				return nil, err
			}
			cp := *n
			cp.DefineValue = v
			return &cp, nil
		case ast.NodeIf:
			cond, err := expand(n.Cond, expanding)
			if err != nil {
				return nil, err
			}
			then, err := expand(n.Then, expanding)
			if err != nil {
				return nil, err
			}
			els, err := expand(n.Else, expanding)
			if err != nil {
				return nil, err
			}
			cp := *n
			cp.Cond, cp.Then, cp.Else = cond, then, els
			return &cp, nil
		case ast.NodeTrustTier:
			inner, err := expand(n.Annotated, expanding)
			if err != nil {
				return nil, err
			}
			cp := *n
			cp.Annotated = inner
			return &cp, nil
		default:
			return n, nil
		}
	}

	return expand(node, map[string]bool{})
}

func collectMacroDefs(n *ast.Node, out map[string]macroDef) {
	if n == nil {
		return
	}
	if n.Kind == ast.NodeMacroDef {
		out[n.MacroName] = macroDef{params: n.MacroParams, body: n.MacroBody}
	}
	for _, a := range n.Args {
		collectMacroDefs(a, out)
	}
	collectMacroDefs(n.Body, out)
	for _, b := range n.Bindings {
		collectMacroDefs(b.Value, out)
	}
	collectMacroDefs(n.Result, out)
	collectMacroDefs(n.DefineValue, out)
	collectMacroDefs(n.Cond, out)
	collectMacroDefs(n.Then, out)
	collectMacroDefs(n.Else, out)
	collectMacroDefs(n.Annotated, out)
}

// substituteArgs returns a copy of body with each NodeVariable matching
// a formal parameter name replaced by the corresponding actual argument
// node. Unmatched variables are left untouched (they refer to the
// macro's lexical surroundings, not its parameters).
func substituteArgs(body *ast.Node, params []string, args []*ast.Node) *ast.Node {
	if body == nil {
		return nil
	}
	bind := map[string]*ast.Node{}
	for i, p := range params {
		if i < len(args) {
			bind[p] = args[i]
		}
	}
	var sub func(n *ast.Node) *ast.Node
	sub = func(n *ast.Node) *ast.Node {
		if n == nil {
			return nil
		}
		if n.Kind == ast.NodeVariable {
			if repl, ok := bind[n.Name]; ok {
				return repl
			}
			return n
		}
		cp := *n
		if len(n.Args) > 0 {
			cp.Args = make([]*ast.Node, len(n.Args))
			for i, a := range n.Args {
				cp.Args[i] = sub(a)
			}
		}
		cp.Body = sub(n.Body)
		if len(n.Bindings) > 0 {
			cp.Bindings = make([]ast.Binding, len(n.Bindings))
			for i, b := range n.Bindings {
				cp.Bindings[i] = ast.Binding{Name: b.Name, Value: sub(b.Value)}
			}
		}
		cp.Result = sub(n.Result)
		cp.DefineValue = sub(n.DefineValue)
		cp.Cond = sub(n.Cond)
		cp.Then = sub(n.Then)
		cp.Else = sub(n.Else)
		cp.Annotated = sub(n.Annotated)
		return &cp
	}
	return sub(body)
}
