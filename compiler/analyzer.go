package compiler

import (
	"github.com/latticerun/physics/ast"
	"github.com/latticerun/physics/bytecode"
	"github.com/latticerun/physics/capability"
	"github.com/latticerun/physics/internal/wrappers"
)

// collectRequiredCapabilities walks node and its children collecting
// every capability the program statically requires: explicit
// require-capability/has-capability annotations, and FFI/host calls
// whose host function demands one. This runs after macro expansion
// (spec.md §4.3 step 2) so capability requirements reflect the expanded
// program, not the macro shorthand.
func collectRequiredCapabilities(node *ast.Node) capability.Set {
	out := capability.NewSet()
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case ast.NodeRequireCapability, ast.NodeHasCapability:
			out.Add(n.Cap)
		case ast.NodeFFICall:
			if id, ok := bytecode.HostFuncByName(n.Name); ok {
				if info, ok := bytecode.LookupHostFunc(id); ok && info.RequiresCap {
					out.Add(capability.Of(info.RequiredKind))
				}
			}
			for _, arg := range n.Args {
				walk(arg)
			}
		case ast.NodeCall:
			if id, ok := bytecode.HostFuncByName(n.Name); ok {
				if info, ok := bytecode.LookupHostFunc(id); ok && info.RequiresCap {
					out.Add(capability.Of(info.RequiredKind))
				}
			}
			for _, arg := range n.Args {
				walk(arg)
			}
		case ast.NodeLambda:
			walk(n.Body)
		case ast.NodeLet, ast.NodeLetrec:
			for _, b := range n.Bindings {
				walk(b.Value)
			}
			walk(n.Result)
		case ast.NodeDefine:
			walk(n.DefineValue)
		case ast.NodeIf:
			walk(n.Cond)
			walk(n.Then)
			walk(n.Else)
		case ast.NodeTrustTier:
			walk(n.Annotated)
		case ast.NodeListCons, ast.NodeSequence:
			for _, arg := range n.Args {
				walk(arg)
			}
		}
	}
	walk(node)
	return out
}

// checkTierGate verifies spec.md §8's "compiler tier gating" property:
// every required capability must be in the tier's baseline, or
// compilation fails with a CapabilityError. Every ungranted capability is
// collected via wrappers.Errs rather than bailing on the first, so a
// program missing several capabilities at once is reported in one pass.
func checkTierGate(required capability.Set, tier capability.Tier) error {
	baseline := tier.Baseline()
	var errs wrappers.Errs
	for _, c := range required.List() {
		if !baseline.Contains(c) {
			errs.Add(newErr(ErrCapability, c.String(),
				"tier %s does not grant required capability %s", tier, c))
		}
	}
	return errs.Err()
}
