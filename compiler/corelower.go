package compiler

import (
	"github.com/latticerun/physics/ast"
	"github.com/latticerun/physics/bytecode"
	"github.com/latticerun/physics/core"
)

// lowerEnv tracks bound names for the core-lowering path, distinct from
// the bytecode-emission scope chain: core.Expr variables are de Bruijn
// indices into *this* list, innermost binder first.
type lowerEnv struct {
	names []string
}

func (e *lowerEnv) push(name string) *lowerEnv {
	return &lowerEnv{names: append(append([]string{}, e.names...), name)}
}

func (e *lowerEnv) index(name string) (uint32, bool) {
	for i := len(e.names) - 1; i >= 0; i-- {
		if e.names[i] == name {
			return uint32(len(e.names) - 1 - i), true
		}
	}
	return 0, false
}

// lowerToCore lowers the pure-functional fragment of the surface
// language (literal ints, variables, single-parameter lambda,
// application, constant-foldable associative arithmetic, and
// list/pair construction) to a core.Expr, for the Formal/Verified
// compilation path (spec.md §4.3). Conditionals, letrec, capability
// operations and host I/O have no representation in core.Expr's data
// model (§3: Var/Lam/App/Nat/Pair only) and so are rejected here --
// programs needing them belong to the Empirical/Experimental path,
// whose baseline grants no I/O capability at Formal/Verified anyway.
func lowerToCore(node *ast.Node, env *lowerEnv) (*core.Expr, error) {
	switch node.Kind {
	case ast.NodeLiteral:
		if node.LitKind != ast.LitInt {
			return nil, newErr(ErrInternal, "", "Formal/Verified tier only lowers integer literals to core Nat")
		}
		if node.Int < 0 {
			return nil, newErr(ErrInternal, "", "core Nat has no representation for negative literal %d", node.Int)
		}
		return core.Nat(uint64(node.Int)), nil

	case ast.NodeVariable:
		idx, ok := env.index(node.Name)
		if !ok {
			return nil, newErr(ErrVariableNotFound, node.Name, "unbound variable in core lowering")
		}
		return core.Var(idx), nil

	case ast.NodeLambda:
		if len(node.Params) != 1 {
			return nil, newErr(ErrInternal, "", "core lowering only supports single-parameter lambdas; curry multi-arg lambdas in the surface form")
		}
		body, err := lowerToCore(node.Body, env.push(node.Params[0]))
		if err != nil {
			return nil, err
		}
		return core.Lam(body), nil

	case ast.NodeCall:
		if bytecode.AssociativeHostFuncs[node.Name] {
			// A nested associative call over literals folds first, so
			// (+ 1 (+ 2 3)) reaches foldAssociativeInts as (+ 1 5).
			args := make([]*ast.Node, len(node.Args))
			for i, arg := range node.Args {
				args[i] = arg
				if arg.Kind == ast.NodeCall && bytecode.AssociativeHostFuncs[arg.Name] {
					if inner, err := lowerToCore(arg, env); err == nil && inner.Kind == core.KindNat {
						args[i] = ast.LitIntNode(int64(inner.Nat))
					}
				}
			}
			if allLiteralInts(args) {
				return foldAssociativeInts(node.Name, args)
			}
		}
		if len(node.Args) == 1 {
			fn, err := lowerToCore(&ast.Node{Kind: ast.NodeVariable, Name: node.Name}, env)
			if err != nil {
				return nil, err
			}
			arg, err := lowerToCore(node.Args[0], env)
			if err != nil {
				return nil, err
			}
			return core.App(fn, arg), nil
		}
		return nil, newErr(ErrInternal, node.Name, "core lowering only supports unary application outside constant-folded arithmetic")

	case ast.NodeListCons:
		if len(node.Args) != 2 {
			return nil, newErr(ErrInternal, "", "core lowering only supports two-element pairs")
		}
		a, err := lowerToCore(node.Args[0], env)
		if err != nil {
			return nil, err
		}
		b, err := lowerToCore(node.Args[1], env)
		if err != nil {
			return nil, err
		}
		return core.MkPair(a, b), nil

	default:
		return nil, newErr(ErrInternal, "", "node kind %d has no core-calculus representation", node.Kind)
	}
}

func allLiteralInts(nodes []*ast.Node) bool {
	for _, n := range nodes {
		if n.Kind != ast.NodeLiteral || n.LitKind != ast.LitInt {
			return false
		}
	}
	return true
}

// foldAssociativeInts constant-folds a call to an associative arithmetic
// function whose arguments are all integer literals, per §4.3's
// "empty associative call emits the identity element" and the general
// left-fold convention -- since every operand is already known at
// compile time, folding happens in Go rather than by emitting core
// application nodes core.Expr has no primitive to represent.
func foldAssociativeInts(name string, args []*ast.Node) (*core.Expr, error) {
	switch name {
	case "+", "add", "*", "mul":
	default:
		return nil, newErr(ErrInternal, name, "core lowering only constant-folds integer + and *")
	}
	if len(args) == 0 {
		return core.Nat(uint64(bytecode.IdentityElement(name).Int)), nil
	}
	acc := args[0].Int
	for _, a := range args[1:] {
		switch name {
		case "+", "add":
			acc += a.Int
		case "*", "mul":
			acc *= a.Int
		}
	}
	if acc < 0 {
		return nil, newErr(ErrInternal, name, "constant-folded result %d has no core Nat representation", acc)
	}
	return core.Nat(uint64(acc)), nil
}

// coreFrame is one Lam's function frame during emission. Since every
// core Lam binds exactly one parameter, a frame's own local is always
// slot 0; anything else a Var reaches for must be captured from an
// enclosing frame, chained inward exactly like funcCtx's upvalues.
type coreFrame struct {
	parent   *coreFrame
	captures []bytecode.CaptureSource
	memo     map[int]int32
}

// resolveCoreVar returns the upvalue index (within f) to read a
// variable bound varDepth Lam-binders out from f's own body (0 = f's
// own parameter, which is always local slot 0 and reported as -1).
// Resolving through an ancestor frame registers a chained capture on
// every frame in between, exactly mirroring funcCtx.upvalueIndex for
// the AST-driven compilation path.
func resolveCoreVar(f *coreFrame, varDepth int) int32 {
	if varDepth == 0 {
		return -1
	}
	if idx, ok := f.memo[varDepth]; ok {
		return idx
	}
	var src bytecode.CaptureSource
	if parentIdx := resolveCoreVar(f.parent, varDepth-1); parentIdx == -1 {
		src = bytecode.CaptureSource{Kind: bytecode.CaptureLocal, Index: 0}
	} else {
		src = bytecode.CaptureSource{Kind: bytecode.CaptureUpvalue, Index: parentIdx}
	}
	idx := int32(len(f.captures))
	f.captures = append(f.captures, src)
	if f.memo == nil {
		f.memo = make(map[int]int32)
	}
	f.memo[varDepth] = idx
	return idx
}

// emitCore emits bytecode for a fully- or partially-reduced core.Expr
// into code (the instruction buffer of whichever function -- top-level
// program or lambda body -- e belongs to), interning constants/strings/
// nested function bodies into the shared artifact a. frame is the
// function frame e is being emitted into, nil at the program's top
// level.
func emitCore(a *bytecode.CompilationArtifact, code *[]bytecode.Instruction, e *core.Expr, frame *coreFrame) error {
	switch e.Kind {
	case core.KindNat:
		bytecode.EmitInto(code, bytecode.OpConstInt, a.AddConstant(bytecode.Int(int64(e.Nat))))
		return nil

	case core.KindVar:
		if frame == nil {
			return newErr(ErrVariableNotFound, "", "variable reference at top level has no enclosing binder")
		}
		if idx := resolveCoreVar(frame, int(e.Index)); idx == -1 {
			bytecode.EmitInto(code, bytecode.OpGetLocal, 0)
		} else {
			bytecode.EmitInto(code, bytecode.OpGetUpvalue, idx)
		}
		return nil

	case core.KindPair:
		if err := emitCore(a, code, e.First, frame); err != nil {
			return err
		}
		if err := emitCore(a, code, e.Second, frame); err != nil {
			return err
		}
		bytecode.EmitInto(code, bytecode.OpCons)
		return nil

	case core.KindLam:
		var bodyCode []bytecode.Instruction
		bodyFrame := &coreFrame{parent: frame}
		if err := emitCore(a, &bodyCode, e.Body, bodyFrame); err != nil {
			return err
		}
		bytecode.EmitInto(&bodyCode, bytecode.OpRet)
		fnIdx := a.AddFunction(bodyCode)
		capIdx := a.AddCaptureList(bodyFrame.captures)
		bytecode.EmitInto(code, bytecode.OpMakeClosure, fnIdx, capIdx)
		return nil

	case core.KindApp:
		if err := emitCore(a, code, e.Fn, frame); err != nil {
			return err
		}
		if err := emitCore(a, code, e.Arg, frame); err != nil {
			return err
		}
		bytecode.EmitInto(code, bytecode.OpCall, 1)
		return nil

	default:
		return newErr(ErrInternal, "", "core expression kind %d has no bytecode emission", e.Kind)
	}
}
