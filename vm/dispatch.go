package vm

import (
	"go.uber.org/zap"

	"github.com/latticerun/physics/bytecode"
	"github.com/latticerun/physics/capability"
)

func (m *VM) peek() (bytecode.Value, error) {
	if len(m.stack) == 0 {
		return bytecode.Nil, m.raise(ErrStackUnderflow, "peek on empty data stack")
	}
	return m.stack[len(m.stack)-1], nil
}

func (m *VM) nextFrameID() uint64 {
	m.frameIDCounter++
	return m.frameIDCounter
}

// internString returns s's index in the VM's runtime string table,
// appending s if it is not there yet.
// Indices below len(Artifact.Strings) are the compile-time pool;
// indices at or above it are strings interned at runtime by StrConcat,
// kept private to this VM so two actors sharing one artifact never
// race over its Strings slice.
func (m *VM) internString(s string) uint32 {
	for i, existing := range m.strings {
		if existing == s {
			return uint32(i)
		}
	}
	m.strings = append(m.strings, s)
	return uint32(len(m.strings) - 1)
}

func (m *VM) stringAt(idx uint32) (string, error) {
	if int(idx) >= len(m.strings) {
		return "", m.raise(ErrHeapCorruption, "string index %d out of range", idx)
	}
	return m.strings[idx], nil
}

// doRet pops the function's single return value and either finishes the
// program (callStack empty -- this was the root frame's own Ret) or
// restores the caller's frame and pushes the value back for it.
func (m *VM) doRet() (Result, error) {
	v, err := m.pop()
	if err != nil {
		return Result{}, err
	}
	if len(m.callStack) == 0 {
		return Result{Status: StatusFinished, Value: v}, nil
	}
	frame := m.callStack[len(m.callStack)-1]
	m.callStack = m.callStack[:len(m.callStack)-1]
	m.locals = frame.Locals
	m.upvalues = frame.Upvalues
	m.code = frame.ReturnCode
	m.ip = frame.ReturnIP
	m.push(v)
	return Result{Status: StatusRunning}, nil
}

// dispatch executes one instruction. Control-flow opcodes (jumps, calls,
// return, yield, the capability escalations) set m.ip and/or the result
// status themselves and return directly; every other opcode falls
// through to the trailer, which just advances to the next instruction.
func (m *VM) dispatch(ins bytecode.Instruction) (Result, error) {
	ip := m.ip

	switch ins.Op {
	case bytecode.OpNil:
		m.push(bytecode.Nil)

	case bytecode.OpConstBool:
		m.push(bytecode.Bool(ins.A != 0))

	case bytecode.OpConstInt, bytecode.OpConstFloat:
		if int(ins.A) >= len(m.Artifact.Constants) {
			return Result{}, m.raise(ErrUnknownOpCode, "constant index %d out of range", ins.A)
		}
		m.push(m.Artifact.Constants[ins.A])

	case bytecode.OpConstSymbol:
		m.push(bytecode.SymbolRef(uint32(ins.A)))

	case bytecode.OpLoadString:
		m.push(bytecode.StringRef(uint32(ins.A)))

	case bytecode.OpDup:
		v, err := m.peek()
		if err != nil {
			return Result{}, err
		}
		m.push(v)

	case bytecode.OpPop:
		if _, err := m.pop(); err != nil {
			return Result{}, err
		}

	case bytecode.OpSwap:
		vals, err := m.popN(2)
		if err != nil {
			return Result{}, err
		}
		m.push(vals[1])
		m.push(vals[0])

	case bytecode.OpGetLocal:
		m.ensureLocal(int(ins.A))
		cell := m.locals[ins.A]
		if !cell.Initialized {
			return Result{}, m.raise(ErrStack, "read of local slot %d before assignment", ins.A)
		}
		m.push(cell.Value)

	case bytecode.OpSetLocal:
		v, err := m.pop()
		if err != nil {
			return Result{}, err
		}
		m.ensureLocal(int(ins.A))
		m.locals[ins.A].Value = v
		m.locals[ins.A].Initialized = true

	case bytecode.OpGetUpvalue:
		if int(ins.A) >= len(m.upvalues) {
			return Result{}, m.raise(ErrStack, "upvalue index %d out of range", ins.A)
		}
		m.push(m.upvalues[ins.A].Value)

	case bytecode.OpCons:
		vals, err := m.popN(2)
		if err != nil {
			return Result{}, err
		}
		ptr, err := m.allocPair(vals[0], vals[1])
		if err != nil {
			return Result{}, m.stamp(err.(*RuntimeError))
		}
		m.push(bytecode.PairRef(ptr))

	case bytecode.OpCar, bytecode.OpCdr:
		v, err := m.pop()
		if err != nil {
			return Result{}, err
		}
		if v.Kind != bytecode.ValPair {
			return Result{}, m.raise(ErrTypeMismatch, "%s on non-pair value %s", ins.Op, v)
		}
		car, cdr, err := m.Heap.GetPair(v.Ptr)
		if err != nil {
			return Result{}, m.stamp(err.(*RuntimeError))
		}
		if ins.Op == bytecode.OpCar {
			m.push(car)
		} else {
			m.push(cdr)
		}

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
		if err := m.binaryIntOp(ins.Op); err != nil {
			return Result{}, err
		}

	case bytecode.OpFAdd, bytecode.OpFSub, bytecode.OpFMul, bytecode.OpFDiv:
		if err := m.binaryFloatOp(ins.Op); err != nil {
			return Result{}, err
		}

	case bytecode.OpEq, bytecode.OpNe:
		vals, err := m.popN(2)
		if err != nil {
			return Result{}, err
		}
		eq := vals[0].Equal(vals[1])
		if ins.Op == bytecode.OpNe {
			eq = !eq
		}
		m.push(bytecode.Bool(eq))

	case bytecode.OpLt, bytecode.OpGt, bytecode.OpLte, bytecode.OpGte:
		b, err := m.compareOp(ins.Op)
		if err != nil {
			return Result{}, err
		}
		m.push(bytecode.Bool(b))

	case bytecode.OpStrLen:
		v, err := m.pop()
		if err != nil {
			return Result{}, err
		}
		if v.Kind != bytecode.ValString {
			return Result{}, m.raise(ErrTypeMismatch, "str-len on non-string value %s", v)
		}
		s, err := m.stringAt(v.StrIdx)
		if err != nil {
			return Result{}, err
		}
		m.push(bytecode.Int(int64(len(s))))

	case bytecode.OpStrConcat:
		vals, err := m.popN(2)
		if err != nil {
			return Result{}, err
		}
		if vals[0].Kind != bytecode.ValString || vals[1].Kind != bytecode.ValString {
			return Result{}, m.raise(ErrTypeMismatch, "str-concat on non-string operand")
		}
		a, err := m.stringAt(vals[0].StrIdx)
		if err != nil {
			return Result{}, err
		}
		b, err := m.stringAt(vals[1].StrIdx)
		if err != nil {
			return Result{}, err
		}
		m.push(bytecode.StringRef(m.internString(a + b)))

	case bytecode.OpStrIndex:
		vals, err := m.popN(2)
		if err != nil {
			return Result{}, err
		}
		if vals[0].Kind != bytecode.ValString || vals[1].Kind != bytecode.ValInt {
			return Result{}, m.raise(ErrTypeMismatch, "str-index on non-string/non-int operand")
		}
		s, err := m.stringAt(vals[0].StrIdx)
		if err != nil {
			return Result{}, err
		}
		idx := vals[1].Int
		if idx < 0 || int(idx) >= len(s) {
			m.push(bytecode.ErrorValue("str-index out of bounds"))
		} else {
			m.push(bytecode.Int(int64(s[idx])))
		}

	case bytecode.OpJmp:
		m.ip = ip + 1 + int(ins.A)
		return Result{Status: StatusRunning}, nil

	case bytecode.OpJmpIfFalse:
		cond, err := m.pop()
		if err != nil {
			return Result{}, err
		}
		if cond.Truthy() {
			m.ip = ip + 1
		} else {
			m.ip = ip + 1 + int(ins.A)
		}
		return Result{Status: StatusRunning}, nil

	case bytecode.OpCall:
		if err := m.doCall(int(ins.A), ip+1); err != nil {
			return Result{}, err
		}
		return Result{Status: StatusRunning}, nil

	case bytecode.OpTailCall:
		if err := m.doTailCall(int(ins.A)); err != nil {
			return Result{}, err
		}
		return Result{Status: StatusRunning}, nil

	case bytecode.OpRet:
		return m.doRet()

	case bytecode.OpMakeClosure:
		if err := m.doMakeClosure(ins.A, ins.B); err != nil {
			return Result{}, err
		}

	case bytecode.OpYield:
		m.ip = ip + 1
		return Result{Status: StatusYielded}, nil

	case bytecode.OpSend:
		vals, err := m.popN(2)
		if err != nil {
			return Result{}, err
		}
		if vals[0].Kind != bytecode.ValActorID {
			return Result{}, m.raise(ErrTypeMismatch, "send target is not an actor id: %s", vals[0])
		}
		if m.Outbox != nil {
			if sendErr := m.Outbox.Send(vals[0].ActorID, vals[1]); sendErr != nil {
				return Result{}, m.raise(ErrCpu, "send failed: %v", sendErr)
			}
		}
		m.ip = ip + 1
		return Result{Status: StatusRunning}, nil

	case bytecode.OpHasCap:
		cap, err := m.constCapability(ins.A)
		if err != nil {
			return Result{}, err
		}
		m.push(bytecode.Bool(m.effectiveGranted().Contains(cap)))

	case bytecode.OpRequestCap, bytecode.OpGrantCap, bytecode.OpRevokeCap:
		res, err := m.doCapOp(ins)
		if err != nil {
			return Result{}, err
		}
		return res, nil

	case bytecode.OpHostCall:
		if err := m.doHostCall(ins); err != nil {
			return Result{}, err
		}

	case bytecode.OpInitSandbox:
		m.sandboxIsolated = false
		m.sandboxErrorActive = false

	case bytecode.OpIsolateCapabilities:
		m.sandboxIsolated = true
		m.isolatedSet = m.Granted.Intersection(m.Artifact.RequiredCapabilities)

	case bytecode.OpSetErrorHandler:
		m.sandboxErrorActive = true

	case bytecode.OpLogSandboxViolation:
		v, err := m.peek()
		if err != nil {
			return Result{}, err
		}
		m.Log.Warn("sandbox capability violation", zap.Uint32("actor_id", m.ActorID), zap.String("reason", v.String()))
		if m.Metrics != nil {
			m.Metrics.RecordCapabilityDecision("denied")
		}

	case bytecode.OpCleanupSandbox:
		m.sandboxIsolated = false
		m.sandboxErrorActive = false

	case bytecode.OpCheckStepLimit:
		if m.stepsRemaining <= 0 {
			return Result{}, m.raise(ErrCpu, "step budget exhausted")
		}

	default:
		return Result{}, m.raise(ErrUnknownOpCode, "unrecognized opcode %s", ins.Op)
	}

	m.ip = ip + 1
	return Result{Status: StatusRunning}, nil
}

func (m *VM) constCapability(idx int32) (capability.Capability, error) {
	if int(idx) >= len(m.Artifact.Constants) {
		return capability.Capability{}, m.raise(ErrUnknownOpCode, "capability constant index %d out of range", idx)
	}
	v := m.Artifact.Constants[idx]
	if v.Kind != bytecode.ValCapability {
		return capability.Capability{}, m.raise(ErrTypeMismatch, "constant %d is not a capability", idx)
	}
	return capability.Capability{Kind: capability.Kind(v.CapKind), N: v.CapN}, nil
}

func (m *VM) doMakeClosure(fnIdx, capIdx int32) error {
	if int(fnIdx) >= len(m.Artifact.Functions) {
		return m.raise(ErrUnknownOpCode, "function index %d out of range", fnIdx)
	}
	var sources []bytecode.CaptureSource
	if int(capIdx) < len(m.Artifact.Captures) {
		sources = m.Artifact.Captures[capIdx]
	}
	captures := make([]*Cell, len(sources))
	for i, src := range sources {
		switch src.Kind {
		case bytecode.CaptureLocal:
			m.ensureLocal(int(src.Index))
			captures[i] = m.locals[src.Index]
		case bytecode.CaptureUpvalue:
			if int(src.Index) >= len(m.upvalues) {
				return m.raise(ErrStack, "capture source upvalue %d out of range", src.Index)
			}
			captures[i] = m.upvalues[src.Index]
		}
	}
	ptr, err := m.allocClosure(fnIdx, captures)
	if err != nil {
		return m.stamp(err.(*RuntimeError))
	}
	m.push(bytecode.ClosureRef(ptr))
	return nil
}

// popCallTarget pops argc arguments and the closure value beneath them,
// in the order Call/TailCall's calling convention pushes them: closure
// first, then each argument left to right.
func (m *VM) popCallTarget(argc int) (int32, []*Cell, []bytecode.Value, error) {
	args, err := m.popN(argc)
	if err != nil {
		return 0, nil, nil, err
	}
	closureVal, err := m.pop()
	if err != nil {
		return 0, nil, nil, err
	}
	if closureVal.Kind != bytecode.ValClosure {
		return 0, nil, nil, m.raise(ErrTypeMismatch, "call target is not a closure: %s", closureVal)
	}
	funcIdx, captures, err := m.Heap.GetClosure(closureVal.Ptr)
	if err != nil {
		return 0, nil, nil, m.stamp(err.(*RuntimeError))
	}
	return funcIdx, captures, args, nil
}

func newLocalsFromArgs(args []bytecode.Value) []*Cell {
	locals := make([]*Cell, len(args))
	for i, a := range args {
		locals[i] = NewInitializedCell(a)
	}
	return locals
}

// doCall performs a non-tail call: pushes a Frame recording where to
// resume the caller, so recursion depth -- defined as len(callStack) --
// grows by exactly one (spec.md §4.4).
func (m *VM) doCall(argc, returnIP int) error {
	funcIdx, captures, args, err := m.popCallTarget(argc)
	if err != nil {
		return err
	}
	if len(m.callStack)+1 > m.MaxRecursionDepth {
		return m.raise(ErrRecursion, "recursion depth would exceed limit %d", m.MaxRecursionDepth)
	}
	if int(funcIdx) >= len(m.Artifact.Functions) {
		return m.raise(ErrUnknownOpCode, "function index %d out of range", funcIdx)
	}
	m.callStack = append(m.callStack, Frame{
		ReturnIP:       returnIP,
		ReturnCode:     m.code,
		StackStart:     len(m.stack),
		Locals:         m.locals,
		Upvalues:       m.upvalues,
		RecursionDepth: len(m.callStack) + 1,
		FrameID:        m.nextFrameID(),
	})
	m.locals = newLocalsFromArgs(args)
	m.upvalues = captures
	m.code = &m.Artifact.Functions[funcIdx]
	m.ip = 0
	return nil
}

// doTailCall replaces the current frame's body in place without growing
// callStack, which is the resolution this implementation uses for the
// apparent tension between spec.md §4.4 ("TailCall... recursion depth
// still increments and is still checked") and §8 scenario 5 ("recursion
// depth never exceeds 2" under accumulator-passing tail recursion):
// recursion depth is operationally len(callStack), grown only by Call.
// TailCall still re-validates that depth against the limit -- it just
// can't be the thing that pushes it over, since it never grows it.
func (m *VM) doTailCall(argc int) error {
	funcIdx, captures, args, err := m.popCallTarget(argc)
	if err != nil {
		return err
	}
	if len(m.callStack) > m.MaxRecursionDepth {
		return m.raise(ErrRecursion, "recursion depth exceeds limit %d", m.MaxRecursionDepth)
	}
	if int(funcIdx) >= len(m.Artifact.Functions) {
		return m.raise(ErrUnknownOpCode, "function index %d out of range", funcIdx)
	}
	m.locals = newLocalsFromArgs(args)
	m.upvalues = captures
	m.code = &m.Artifact.Functions[funcIdx]
	m.ip = 0
	return nil
}

// doCapOp handles RequestCap/GrantCap/RevokeCap: these always suspend
// (spec.md §5's closed list of suspension points includes RequestCap),
// leaving a PendingCapOp for an external scheduler to resolve via
// ResumeCapability. m.ip is deliberately left pointing at the
// instruction itself; ResumeCapability advances past it once resolved.
//
// Operand layout follows spec.md §6's opcode table exactly, and differs
// between the two opcode shapes: RequestCap(cap_idx, just_idx) names no
// target (it always concerns the requesting actor itself) and carries a
// string-table index for its justification; GrantCap(target, cap_idx)/
// RevokeCap(target, cap_idx) name an explicit target actor and carry no
// justification.
func (m *VM) doCapOp(ins bytecode.Instruction) (Result, error) {
	var pending *PendingCapOp
	switch ins.Op {
	case bytecode.OpRequestCap:
		cap, err := m.constCapability(ins.A)
		if err != nil {
			return Result{}, err
		}
		justification := ""
		if ins.B != bytecode.NoCapability {
			justification, err = m.stringAt(uint32(ins.B))
			if err != nil {
				return Result{}, err
			}
		}
		pending = &PendingCapOp{Op: CapOpRequest, Cap: cap, Target: m.ActorID, Justification: justification}

	case bytecode.OpGrantCap, bytecode.OpRevokeCap:
		cap, err := m.constCapability(ins.B)
		if err != nil {
			return Result{}, err
		}
		kind := CapOpGrant
		if ins.Op == bytecode.OpRevokeCap {
			kind = CapOpRevoke
		}
		pending = &PendingCapOp{Op: kind, Cap: cap, Target: uint32(ins.A)}
	}

	m.pendingCap = pending
	if m.Metrics != nil {
		m.Metrics.RecordCapabilityDecision("pending")
	}
	return Result{Status: StatusWaitingForCapability, Pending: pending}, nil
}

// ResumeCapability is how an external scheduler hands back the outcome
// of a suspended RequestCap/GrantCap/RevokeCap. grantedNow is the
// boolean a RequestCap instruction leaves on the stack (ignored for
// Grant/Revoke, which have no stack effect); the scheduler is expected
// to have already mutated m.Granted itself for a Grant/Revoke it
// approved.
func (m *VM) ResumeCapability(grantedNow bool) {
	if m.pendingCap == nil {
		return
	}
	if m.pendingCap.Op == CapOpRequest {
		m.push(bytecode.Bool(grantedNow))
	}
	m.pendingCap = nil
	m.ip++
}
