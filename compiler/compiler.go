package compiler

import (
	"github.com/latticerun/physics/ast"
	"github.com/latticerun/physics/bytecode"
	"github.com/latticerun/physics/capability"
	"github.com/latticerun/physics/core"
	"github.com/latticerun/physics/proof"
)

// Compile lowers program into a bytecode.CompilationArtifact for tier,
// implementing spec.md §4.3's four-tier protocol: macro expansion,
// static capability analysis with tier gating, then a tier-dispatched
// lowering -- Formal/Verified through the core calculus with an
// attached correctness proof, Empirical/Experimental by direct
// bytecode emission with a capability-check preamble (Experimental
// additionally sandbox-wrapped).
func Compile(program *ast.Node, tier capability.Tier) (*bytecode.CompilationArtifact, error) {
	expanded, err := expandMacros(program, tier)
	if err != nil {
		return nil, err
	}

	required := collectRequiredCapabilities(expanded)
	if err := checkTierGate(required, tier); err != nil {
		return nil, err
	}

	a := bytecode.NewArtifact(tier)
	a.RequiredCapabilities = required
	a.GrantedCapabilities = tier.Baseline()
	for _, c := range required.List() {
		a.RequireCapability(c, "determined by static capability analysis")
	}

	if tier.RequiresProof() {
		return compileFormal(a, expanded)
	}
	return compileEmpirical(a, expanded, tier)
}

// compileFormal lowers expanded to the pure-functional core calculus,
// proves its normal form, and emits bytecode for that normal form. Only
// the restricted fragment lowerToCore understands is reachable here --
// anything else surfaces as an InternalError, which is the correct
// outcome: a Formal/Verified-tier program that needs conditionals,
// mutation or host I/O was mis-tiered, not badly compiled.
func compileFormal(a *bytecode.CompilationArtifact, expanded *ast.Node) (*bytecode.CompilationArtifact, error) {
	expr, err := lowerToCore(expanded, &lowerEnv{})
	if err != nil {
		return nil, err
	}

	proofTerm, normal, err := proof.ProveNormalization(expr, core.DefaultFuel)
	if err != nil {
		return nil, newErr(ErrProofGeneration, "", "normalization proof failed: %v", err)
	}
	a.Core = normal
	a.Proof = proofTerm

	if err := emitCore(a, &a.Code, normal, nil); err != nil {
		return nil, err
	}
	a.Emit(bytecode.OpRet)
	return a, nil
}

// compileEmpirical lowers expanded directly to bytecode over the full
// surface language, prefixed with a capability-check preamble for
// every statically-required capability and, at Experimental, wrapped in
// a sandbox prologue/epilogue. Prefixing is safe for the jump offsets
// already emitted into the body: PatchJump computes a delta relative to
// the jump's own position, which a uniform shift of both the jump and
// its target leaves unchanged.
func compileEmpirical(a *bytecode.CompilationArtifact, expanded *ast.Node, tier capability.Tier) (*bytecode.CompilationArtifact, error) {
	sandboxed := tier.RequiresSandbox()
	a.Sandboxed = sandboxed

	root := newFuncCtx(nil)
	if err := compileNode(a, root, expanded, true); err != nil {
		return nil, err
	}
	if sandboxed {
		root.emit(bytecode.OpCleanupSandbox)
	}
	root.emit(bytecode.OpRet)

	var prologue []bytecode.Instruction
	if sandboxed {
		bytecode.EmitInto(&prologue, bytecode.OpInitSandbox)
		bytecode.EmitInto(&prologue, bytecode.OpIsolateCapabilities)
		bytecode.EmitInto(&prologue, bytecode.OpSetErrorHandler)
	}
	preamble := capabilityPreamble(a, sandboxed)

	code := make([]bytecode.Instruction, 0, len(prologue)+len(preamble)+len(root.code))
	code = append(code, prologue...)
	code = append(code, preamble...)
	code = append(code, root.code...)
	a.Code = code
	return a, nil
}

// capabilityPreamble emits, for every statically-required capability, a
// HasCap check that short-circuits to a denial return (ConstSymbol
// "capability-denied:<cap>", Ret) when absent. When sandboxed is true
// the denial path also logs and tears down the sandbox before
// returning, since no other exit point in the assembled program sees
// that denial path.
func capabilityPreamble(a *bytecode.CompilationArtifact, sandboxed bool) []bytecode.Instruction {
	var code []bytecode.Instruction
	for _, c := range a.RequiredCapabilities.List() {
		capConst := a.AddConstant(bytecode.CapabilityRef(uint8(c.Kind), c.N))
		bytecode.EmitInto(&code, bytecode.OpHasCap, capConst)
		jmpToDenial := bytecode.EmitInto(&code, bytecode.OpJmpIfFalse, 0)
		jmpSkipDenial := bytecode.EmitInto(&code, bytecode.OpJmp, 0)
		patchJumpIn(&code, jmpToDenial)

		strIdx := a.AddString("capability-denied:" + c.String())
		bytecode.EmitInto(&code, bytecode.OpConstSymbol, int32(strIdx))
		if sandboxed {
			bytecode.EmitInto(&code, bytecode.OpLogSandboxViolation)
			bytecode.EmitInto(&code, bytecode.OpCleanupSandbox)
		}
		bytecode.EmitInto(&code, bytecode.OpRet)

		patchJumpIn(&code, jmpSkipDenial)
	}
	return code
}

func patchJumpIn(code *[]bytecode.Instruction, idx int) {
	(*code)[idx].A = int32(len(*code) - (idx + 1))
}

// funcCtx is one function's compilation state: its own lexical scope
// tree (slots start at 0, never crossing into an enclosing function's
// scope) and the instruction buffer being built for its body. A name
// not found in f's own scope chain is resolved as a capture from
// parent, chained inward so closures nested arbitrarily deep still
// resolve correctly (see resolveForCapture).
type funcCtx struct {
	parent       *funcCtx
	scope        *scope
	code         []bytecode.Instruction
	captureOrder []bytecode.CaptureSource
	captureIndex map[string]int32
}

func newFuncCtx(parent *funcCtx) *funcCtx {
	return &funcCtx{parent: parent, scope: newScope(nil), captureIndex: map[string]int32{}}
}

func (f *funcCtx) emit(op bytecode.Op, operands ...int32) int {
	return bytecode.EmitInto(&f.code, op, operands...)
}

func (f *funcCtx) patchJump(idx int) {
	patchJumpIn(&f.code, idx)
}

// isBound reports whether name is visible anywhere in f's own scope
// chain or an enclosing function's, without registering a capture --
// used to decide whether a call name refers to a closure value or a
// host function.
func (f *funcCtx) isBound(name string) bool {
	if f.scope.resolve(name).found {
		return true
	}
	if f.parent == nil {
		return false
	}
	return f.parent.isBound(name)
}

// resolveForCapture finds where, in the frame that will execute a
// MakeClosure referencing f as its immediate enclosing function, the
// cell for name can be found: either a slot local to f, or (recursing
// through parent) one of f's own upvalues.
func (f *funcCtx) resolveForCapture(name string) (bytecode.CaptureSource, bool) {
	if res := f.scope.resolve(name); res.found {
		return bytecode.CaptureSource{Kind: bytecode.CaptureLocal, Index: int32(res.slot)}, true
	}
	if f.parent == nil {
		return bytecode.CaptureSource{}, false
	}
	idx, ok := f.upvalueIndex(name)
	if !ok {
		return bytecode.CaptureSource{}, false
	}
	return bytecode.CaptureSource{Kind: bytecode.CaptureUpvalue, Index: idx}, true
}

// upvalueIndex returns name's position in f's own capture list,
// registering it (by asking f.parent where to find it) on first use.
func (f *funcCtx) upvalueIndex(name string) (int32, bool) {
	if idx, ok := f.captureIndex[name]; ok {
		return idx, true
	}
	src, ok := f.parent.resolveForCapture(name)
	if !ok {
		return 0, false
	}
	idx := int32(len(f.captureOrder))
	f.captureOrder = append(f.captureOrder, src)
	f.captureIndex[name] = idx
	return idx, true
}

// resolveVar returns the opcode/operand pair that reads name's current
// value: GetLocal for a slot in f's own scope, GetUpvalue for a capture
// from an enclosing function. A direct read of a letrec name that is
// still in its pre-declaration window is a compile error -- evaluating
// a letrec binding's own value expression may not observe its sibling
// bindings' values directly, only reference them from inside a nested
// lambda invoked later.
func (f *funcCtx) resolveVar(name string) (bytecode.Op, int32, error) {
	if res := f.scope.resolve(name); res.found {
		if res.state == bindUninitialized {
			return 0, 0, newErr(ErrInternal, name, "letrec binding referenced before its value is assigned")
		}
		return bytecode.OpGetLocal, int32(res.slot), nil
	}
	idx, ok := f.upvalueIndex(name)
	if !ok {
		return 0, 0, newErr(ErrVariableNotFound, name, "unbound variable")
	}
	return bytecode.OpGetUpvalue, idx, nil
}

// compileNode emits bytecode for node into f's instruction buffer.
// tail reports whether node is in tail position within its enclosing
// function, so calls can be emitted as TailCall instead of Call.
func compileNode(a *bytecode.CompilationArtifact, f *funcCtx, node *ast.Node, tail bool) error {
	switch node.Kind {
	case ast.NodeLiteral:
		return compileLiteral(a, f, node)

	case ast.NodeVariable:
		op, idx, err := f.resolveVar(node.Name)
		if err != nil {
			return err
		}
		f.emit(op, idx)
		return nil

	case ast.NodeSymbol:
		f.emit(bytecode.OpConstSymbol, int32(a.AddString(node.Name)))
		return nil

	case ast.NodeCall:
		return compileCall(a, f, node, tail)

	case ast.NodeFFICall:
		id, ok := bytecode.HostFuncByName(node.Name)
		if !ok {
			return newErr(ErrFfiFunctionNotFound, node.Name, "no such host function")
		}
		return compileHostCall(a, f, id, node.Args)

	case ast.NodeLambda:
		fnIdx, capIdx, err := compileLambda(a, f, node)
		if err != nil {
			return err
		}
		f.emit(bytecode.OpMakeClosure, fnIdx, capIdx)
		return nil

	case ast.NodeLet:
		return compileLet(a, f, node, tail)

	case ast.NodeLetrec:
		return compileLetrec(a, f, node, tail)

	case ast.NodeDefine:
		slot := f.scope.declareUninitialized(node.DefineName)
		if err := compileNode(a, f, node.DefineValue, false); err != nil {
			return err
		}
		f.emit(bytecode.OpSetLocal, int32(slot))
		f.scope.markRecursive(node.DefineName)
		f.emit(bytecode.OpNil)
		return nil

	case ast.NodeIf:
		return compileIf(a, f, node, tail)

	case ast.NodeTrustTier:
		return compileTrustTier(a, f, node, tail)

	case ast.NodeRequireCapability:
		return compileRequireCapability(a, f, node)

	case ast.NodeHasCapability:
		f.emit(bytecode.OpHasCap, a.AddConstant(bytecode.CapabilityRef(uint8(node.Cap.Kind), node.Cap.N)))
		return nil

	case ast.NodeMacroDef, ast.NodeMacroExpand:
		return newErr(ErrInternal, "", "macro node survived expansion")

	case ast.NodeListCons:
		return compileListCons(a, f, node.Args)

	case ast.NodeSequence:
		return compileSequence(a, f, node.Args, tail)

	default:
		return newErr(ErrInternal, "", "node kind %d has no bytecode emission", node.Kind)
	}
}

func compileLiteral(a *bytecode.CompilationArtifact, f *funcCtx, node *ast.Node) error {
	switch node.LitKind {
	case ast.LitNil:
		f.emit(bytecode.OpNil)
	case ast.LitBool:
		b := int32(0)
		if node.Bool {
			b = 1
		}
		f.emit(bytecode.OpConstBool, b)
	case ast.LitInt:
		f.emit(bytecode.OpConstInt, a.AddConstant(bytecode.Int(node.Int)))
	case ast.LitFloat:
		f.emit(bytecode.OpConstFloat, a.AddConstant(bytecode.Float(node.Float)))
	case ast.LitString:
		f.emit(bytecode.OpLoadString, int32(a.AddString(node.Str)))
	default:
		return newErr(ErrInternal, "", "literal kind %d has no bytecode emission", node.LitKind)
	}
	return nil
}

func compileCall(a *bytecode.CompilationArtifact, f *funcCtx, node *ast.Node, tail bool) error {
	if f.isBound(node.Name) {
		op, idx, err := f.resolveVar(node.Name)
		if err != nil {
			return err
		}
		f.emit(op, idx)
		for _, arg := range node.Args {
			if err := compileNode(a, f, arg, false); err != nil {
				return err
			}
		}
		if tail {
			f.emit(bytecode.OpTailCall, int32(len(node.Args)))
		} else {
			f.emit(bytecode.OpCall, int32(len(node.Args)))
		}
		return nil
	}

	if bytecode.AssociativeHostFuncs[node.Name] {
		return compileAssociativeCall(a, f, node.Name, node.Args)
	}

	if id, ok := bytecode.HostFuncByName(node.Name); ok {
		return compileHostCall(a, f, id, node.Args)
	}

	return newErr(ErrVariableNotFound, node.Name, "call to unbound function")
}

// compileAssociativeCall left-folds a variadic associative host call
// (+ , *, f+, f*) into pairwise HostCall instructions, emitting the
// identity element directly for a zero-argument call (spec.md §4.3,
// §6's host function table "AssociativeOp" flag).
func compileAssociativeCall(a *bytecode.CompilationArtifact, f *funcCtx, name string, args []*ast.Node) error {
	id, _ := bytecode.HostFuncByName(name)
	info, _ := bytecode.LookupHostFunc(id)
	capIdx := hostCapConst(a, info)

	if len(args) == 0 {
		ident := bytecode.IdentityElement(name)
		idx := a.AddConstant(ident)
		if ident.Kind == bytecode.ValFloat {
			f.emit(bytecode.OpConstFloat, idx)
		} else {
			f.emit(bytecode.OpConstInt, idx)
		}
		return nil
	}

	if err := compileNode(a, f, args[0], false); err != nil {
		return err
	}
	for _, arg := range args[1:] {
		if err := compileNode(a, f, arg, false); err != nil {
			return err
		}
		f.emit(bytecode.OpHostCall, capIdx, int32(id), 2)
	}
	return nil
}

func compileHostCall(a *bytecode.CompilationArtifact, f *funcCtx, id bytecode.FuncID, args []*ast.Node) error {
	info, _ := bytecode.LookupHostFunc(id)
	capIdx := hostCapConst(a, info)
	for _, arg := range args {
		if err := compileNode(a, f, arg, false); err != nil {
			return err
		}
	}
	f.emit(bytecode.OpHostCall, capIdx, int32(id), int32(len(args)))
	return nil
}

// hostCapConst returns the HostCall A operand for a host function:
// NoCapability when it requires none, otherwise a constant-pool index
// holding its required Capability value.
func hostCapConst(a *bytecode.CompilationArtifact, info bytecode.HostFuncInfo) int32 {
	if !info.RequiresCap {
		return bytecode.NoCapability
	}
	return a.AddConstant(bytecode.CapabilityRef(uint8(info.RequiredKind), 0))
}

func compileLambda(a *bytecode.CompilationArtifact, parent *funcCtx, node *ast.Node) (int32, int32, error) {
	inner := newFuncCtx(parent)
	for _, p := range node.Params {
		inner.scope.declare(p)
	}
	if err := compileNode(a, inner, node.Body, true); err != nil {
		return 0, 0, err
	}
	inner.emit(bytecode.OpRet)
	fnIdx := a.AddFunction(inner.code)
	capIdx := a.AddCaptureList(inner.captureOrder)
	return fnIdx, capIdx, nil
}

// compileLet evaluates each binding's value in the enclosing scope (no
// self- or forward-reference), then declares it into a fresh child
// scope before compiling the result.
func compileLet(a *bytecode.CompilationArtifact, f *funcCtx, node *ast.Node, tail bool) error {
	outer := f.scope
	inner := newScope(outer)
	for _, b := range node.Bindings {
		if err := compileNode(a, f, b.Value, false); err != nil {
			f.scope = outer
			return err
		}
		slot := inner.declare(b.Name)
		f.emit(bytecode.OpSetLocal, int32(slot))
	}
	f.scope = inner
	err := compileNode(a, f, node.Result, tail)
	f.scope = outer
	return err
}

// compileLetrec pre-declares every binding name (Uninitialized) so
// their value expressions -- typically lambdas -- can reference each
// other, then compiles and assigns each value in turn, flipping its
// binding to Recursive once assigned.
func compileLetrec(a *bytecode.CompilationArtifact, f *funcCtx, node *ast.Node, tail bool) error {
	outer := f.scope
	inner := newScope(outer)
	for _, b := range node.Bindings {
		inner.declareUninitialized(b.Name)
	}
	f.scope = inner
	for _, b := range node.Bindings {
		if err := compileNode(a, f, b.Value, false); err != nil {
			f.scope = outer
			return err
		}
		res := inner.resolve(b.Name)
		f.emit(bytecode.OpSetLocal, int32(res.slot))
		inner.markRecursive(b.Name)
	}
	err := compileNode(a, f, node.Result, tail)
	f.scope = outer
	return err
}

func compileIf(a *bytecode.CompilationArtifact, f *funcCtx, node *ast.Node, tail bool) error {
	if err := compileNode(a, f, node.Cond, false); err != nil {
		return err
	}
	jmpElse := f.emit(bytecode.OpJmpIfFalse, 0)
	if err := compileNode(a, f, node.Then, tail); err != nil {
		return err
	}
	jmpEnd := f.emit(bytecode.OpJmp, 0)
	f.patchJump(jmpElse)
	if err := compileNode(a, f, node.Else, tail); err != nil {
		return err
	}
	f.patchJump(jmpEnd)
	return nil
}

// compileRequireCapability asserts a capability inline, returning the
// same denial symbol the tier preamble would for a statically-required
// one, so a capability requested conditionally deep inside a program
// fails the same observable way as one failing at the preamble.
func compileRequireCapability(a *bytecode.CompilationArtifact, f *funcCtx, node *ast.Node) error {
	capIdx := a.AddConstant(bytecode.CapabilityRef(uint8(node.Cap.Kind), node.Cap.N))
	f.emit(bytecode.OpHasCap, capIdx)
	jmpDenied := f.emit(bytecode.OpJmpIfFalse, 0)
	jmpOk := f.emit(bytecode.OpJmp, 0)
	f.patchJump(jmpDenied)
	strIdx := a.AddString("capability-denied:" + node.Cap.String())
	f.emit(bytecode.OpConstSymbol, int32(strIdx))
	f.emit(bytecode.OpRet)
	f.patchJump(jmpOk)
	f.emit(bytecode.OpConstBool, 1)
	return nil
}

// compileTrustTier compiles an inner trust-tier-annotated expression.
// A Formal/Verified annotation re-enters the core-calculus path inline
// (the annotated expression must be a closed term in the pure-functional
// fragment -- it cannot reference the enclosing Empirical/Experimental
// scope, since core.Expr variables are de Bruijn indices with no notion
// of an ast-scope name); anything else just compiles normally at the
// surrounding tier.
func compileTrustTier(a *bytecode.CompilationArtifact, f *funcCtx, node *ast.Node, tail bool) error {
	if !node.Tier.RequiresProof() {
		return compileNode(a, f, node.Annotated, tail)
	}
	expr, err := lowerToCore(node.Annotated, &lowerEnv{})
	if err != nil {
		return err
	}
	proofTerm, normal, err := proof.ProveNormalization(expr, core.DefaultFuel)
	if err != nil {
		return newErr(ErrProofGeneration, "", "nested trust-tier block failed to prove: %v", err)
	}
	a.Core = normal
	a.Proof = proofTerm
	return emitCore(a, &f.code, normal, nil)
}

// compileListCons compiles a (list-cons ...) node. Exactly two elements
// is a raw pair (Cons a b, no list tail); any other count builds a
// proper nil-terminated list, left to right.
func compileListCons(a *bytecode.CompilationArtifact, f *funcCtx, args []*ast.Node) error {
	if len(args) == 2 {
		if err := compileNode(a, f, args[0], false); err != nil {
			return err
		}
		if err := compileNode(a, f, args[1], false); err != nil {
			return err
		}
		f.emit(bytecode.OpCons)
		return nil
	}
	return compileListTail(a, f, args)
}

func compileListTail(a *bytecode.CompilationArtifact, f *funcCtx, args []*ast.Node) error {
	if len(args) == 0 {
		f.emit(bytecode.OpNil)
		return nil
	}
	if err := compileNode(a, f, args[0], false); err != nil {
		return err
	}
	if err := compileListTail(a, f, args[1:]); err != nil {
		return err
	}
	f.emit(bytecode.OpCons)
	return nil
}

func compileSequence(a *bytecode.CompilationArtifact, f *funcCtx, exprs []*ast.Node, tail bool) error {
	if len(exprs) == 0 {
		f.emit(bytecode.OpNil)
		return nil
	}
	for i, e := range exprs {
		last := i == len(exprs)-1
		if err := compileNode(a, f, e, tail && last); err != nil {
			return err
		}
		if !last {
			f.emit(bytecode.OpPop)
		}
	}
	return nil
}
