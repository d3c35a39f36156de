// Package vm is the Physics execution substrate: a stack machine that
// executes a bytecode.CompilationArtifact with step/memory accounting,
// closure creation over boxed local cells, tail-call elimination, and a
// capability gate on every HostCall (spec.md §4.4). The VM never looks
// at ast.Node or core.Expr -- CompilationArtifact is its entire input.
package vm

import (
	"github.com/latticerun/physics/bytecode"
	"github.com/latticerun/physics/capability"
	"github.com/latticerun/physics/telemetry/log"
	"github.com/latticerun/physics/telemetry/metrics"
)

// Status is the outcome of running a VM up to its next suspension point
// (spec.md §5's "exactly: Yield, RequestCap, end-of-program, uncaught
// error, cpu-limit exhaustion").
type Status uint8

const (
	StatusRunning Status = iota
	StatusYielded
	StatusFinished
	StatusErrored
	StatusWaitingForCapability
)

func (s Status) String() string {
	switch s {
	case StatusYielded:
		return "Yielded"
	case StatusFinished:
		return "Finished"
	case StatusErrored:
		return "Errored"
	case StatusWaitingForCapability:
		return "WaitingForCapability"
	default:
		return "Running"
	}
}

// CapOpKind discriminates the three capability-system opcodes that
// escalate to the scheduler rather than resolving locally.
type CapOpKind uint8

const (
	CapOpRequest CapOpKind = iota
	CapOpGrant
	CapOpRevoke
)

// PendingCapOp is the escalation payload left on the VM when it suspends
// with StatusWaitingForCapability. The scheduler (which owns the actor
// registry and capability authority) reads this, resolves the decision,
// and either mutates m.Granted and resumes, or resumes with the request
// denied.
type PendingCapOp struct {
	Op            CapOpKind
	Cap           capability.Capability
	Target        uint32
	Justification string
}

// Result is what Step/Run/RunUntilSuspend report back to the caller.
type Result struct {
	Status  Status
	Value   bytecode.Value
	Err     *RuntimeError
	Pending *PendingCapOp
}

const (
	defaultMaxRecursionDepth = 1024
	lastInstructionWindow    = 16
)

// VM is one actor's execution state. Config fields (Host, Outbox, Log,
// Metrics, MaxRecursionDepth, ActorID) may be left zero; New fills in
// sensible defaults (a MockHostEnv, a no-op logger, a recursion cap of
// defaultMaxRecursionDepth).
type VM struct {
	Artifact *bytecode.CompilationArtifact
	Heap     *Heap

	ActorID           uint32
	Granted           capability.Set
	MaxRecursionDepth int

	Host   HostEnv
	Outbox Outbox
	Log    log.Logger
	Metrics *metrics.Runtime

	code      *[]bytecode.Instruction
	ip        int
	stack     []bytecode.Value
	callStack []Frame
	locals    []*Cell
	upvalues  []*Cell

	stepsRemaining int64
	stepCount      int64

	sandboxIsolated    bool
	isolatedSet        capability.Set
	sandboxErrorActive bool

	strings    []string
	pendingCap *PendingCapOp

	lastInstr      []bytecode.Instruction
	frameIDCounter uint64
}

// New returns a VM ready to execute artifact's top-level code, granted
// the capability set the artifact declares (its baseline plus whatever
// the host has additionally provisioned) and seeded with the artifact's
// step/memory limits.
func New(artifact *bytecode.CompilationArtifact, granted capability.Set) *VM {
	stepLimit := artifact.StepLimit
	if stepLimit <= 0 {
		stepLimit = 1_000_000
	}
	m := &VM{
		Artifact:          artifact,
		Heap:              NewHeap(artifact.MemoryLimit),
		Granted:           granted,
		MaxRecursionDepth: defaultMaxRecursionDepth,
		Host:              NewMockHostEnv(),
		Outbox:            nil,
		Log:               log.NewNoOp(),
		stepsRemaining:    stepLimit,
	}
	m.code = &artifact.Code
	m.strings = append(m.strings, artifact.Strings...)
	return m
}

// effectiveGranted returns the capability set a HasCap/HostCall check
// should consult: the full granted set normally, or its intersection
// with the artifact's statically-required set once IsolateCapabilities
// has run (spec.md §4.3's sandbox wrapping masks the actor down to only
// the capabilities it declared at compile time).
func (m *VM) effectiveGranted() capability.Set {
	if m.sandboxIsolated {
		return m.isolatedSet
	}
	return m.Granted
}

func (m *VM) ensureLocal(idx int) {
	for len(m.locals) <= idx {
		m.locals = append(m.locals, NewCell())
	}
}

func (m *VM) push(v bytecode.Value) {
	m.stack = append(m.stack, v)
}

// PushExternal pushes v directly onto the data stack from outside the
// step loop. The scheduler uses this to drain a woken actor's mailbox
// onto its stack before resuming it (spec.md §4.5: "drain its mailbox
// into its data stack").
func (m *VM) PushExternal(v bytecode.Value) {
	m.push(v)
}

// PendingCapability exposes the VM's outstanding capability escalation,
// or nil if none is pending. The scheduler reads this after a tick ends
// in StatusWaitingForCapability.
func (m *VM) PendingCapability() *PendingCapOp {
	return m.pendingCap
}

// StepsExecuted returns the cumulative opcode count this VM has run
// since New, for a scheduler's resource-quota accounting.
func (m *VM) StepsExecuted() int64 {
	return m.stepCount
}

// gcRoots gathers every live bytecode.Value this VM currently holds a
// reference to: the data stack, the active frame's locals/upvalues, and
// every suspended caller still on callStack, whose locals/upvalues must
// survive a collection triggered by a callee's allocation.
func (m *VM) gcRoots() []bytecode.Value {
	roots := make([]bytecode.Value, 0, len(m.stack)+len(m.locals)+len(m.upvalues))
	roots = append(roots, m.stack...)
	for _, c := range m.locals {
		if c != nil {
			roots = append(roots, c.Value)
		}
	}
	for _, c := range m.upvalues {
		if c != nil {
			roots = append(roots, c.Value)
		}
	}
	for _, f := range m.callStack {
		for _, c := range f.Locals {
			if c != nil {
				roots = append(roots, c.Value)
			}
		}
		for _, c := range f.Upvalues {
			if c != nil {
				roots = append(roots, c.Value)
			}
		}
	}
	return roots
}

// collectAndReport runs one heap collection using the VM's current root
// set and reports the outcome to Metrics, if wired.
func (m *VM) collectAndReport() {
	m.Heap.Collect(m.gcRoots())
	if m.Metrics != nil {
		stats := m.Heap.Stats()
		m.Metrics.SetHeapStats(stats.BytesInUse, int64(stats.Objects))
		m.Metrics.RecordCollection()
	}
}

// allocPair allocates a pair, retrying once after a collection if the
// heap is full -- spec.md §4.4's heap budget check should only fail an
// allocation that a sweep genuinely can't make room for.
func (m *VM) allocPair(car, cdr bytecode.Value) (uint32, error) {
	ptr, err := m.Heap.AllocPair(car, cdr)
	if err == nil {
		return ptr, nil
	}
	if rerr, ok := err.(*RuntimeError); !ok || rerr.Kind != ErrHeapExhausted {
		return 0, err
	}
	m.collectAndReport()
	return m.Heap.AllocPair(car, cdr)
}

// allocClosure is allocPair's counterpart for closure objects.
func (m *VM) allocClosure(funcIdx int32, captures []*Cell) (uint32, error) {
	ptr, err := m.Heap.AllocClosure(funcIdx, captures)
	if err == nil {
		return ptr, nil
	}
	if rerr, ok := err.(*RuntimeError); !ok || rerr.Kind != ErrHeapExhausted {
		return 0, err
	}
	m.collectAndReport()
	return m.Heap.AllocClosure(funcIdx, captures)
}

func (m *VM) pop() (bytecode.Value, error) {
	if len(m.stack) == 0 {
		return bytecode.Nil, m.raise(ErrStackUnderflow, "pop on empty data stack")
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

// popN pops the top n values, returning them in push order (index 0 is
// the one pushed earliest of the n).
func (m *VM) popN(n int) ([]bytecode.Value, error) {
	if len(m.stack) < n {
		return nil, m.raise(ErrStackUnderflow, "need %d operands, have %d", n, len(m.stack))
	}
	out := make([]bytecode.Value, n)
	copy(out, m.stack[len(m.stack)-n:])
	m.stack = m.stack[:len(m.stack)-n]
	return out, nil
}

func (m *VM) lastInstructions() []bytecode.Instruction {
	out := make([]bytecode.Instruction, len(m.lastInstr))
	copy(out, m.lastInstr)
	return out
}

func (m *VM) recordInstruction(ins bytecode.Instruction) {
	m.lastInstr = append(m.lastInstr, ins)
	if len(m.lastInstr) > lastInstructionWindow {
		m.lastInstr = m.lastInstr[len(m.lastInstr)-lastInstructionWindow:]
	}
}

// Run executes until the VM finishes, errors, or hits a suspension point
// that this call cannot resolve on its own (Yield/WaitingForCapability).
// A bare single-actor caller (no scheduler) typically only cares about
// Run's terminal outcomes; a scheduler instead calls RunUntilSuspend
// directly so it can act on Yield/WaitingForCapability itself.
func (m *VM) Run() Result {
	return m.RunUntilSuspend()
}

// RunUntilSuspend steps the VM until it reaches one of Yield, Finished,
// Errored or WaitingForCapability (spec.md §4.5's tick contract).
func (m *VM) RunUntilSuspend() Result {
	for {
		res := m.step()
		if res.Status != StatusRunning {
			return res
		}
	}
}

// step executes exactly one instruction (or the implicit end-of-stream
// handling spec.md §4.4 describes), returning StatusRunning to tell the
// caller to keep going.
func (m *VM) step() Result {
	if m.stepsRemaining <= 0 {
		return Result{Status: StatusErrored, Err: m.raise(ErrCpu, "step budget exhausted")}
	}

	if m.ip >= len(*m.code) {
		if len(m.callStack) == 0 {
			v := bytecode.Nil
			if len(m.stack) > 0 {
				v = m.stack[len(m.stack)-1]
			}
			return Result{Status: StatusFinished, Value: v}
		}
		// Implicit return of Nil when a function body runs off its end
		// without an explicit Ret.
		m.push(bytecode.Nil)
		res, err := m.doRet()
		if err != nil {
			re, _ := err.(*RuntimeError)
			return Result{Status: StatusErrored, Err: re}
		}
		return res
	}

	ins := (*m.code)[m.ip]
	m.recordInstruction(ins)
	m.stepsRemaining -= ins.Op.StepCost()
	m.stepCount++
	if m.Metrics != nil {
		m.Metrics.RecordSteps(1)
	}

	res, err := m.dispatch(ins)
	if err != nil {
		var re *RuntimeError
		if e, ok := err.(*RuntimeError); ok {
			re = e
			if re.Context.Timestamp == 0 && re.Context.ActorID == 0 && m.ActorID != 0 {
				re = m.stamp(re)
			}
		} else {
			re = m.raise(ErrStack, "%v", err)
		}
		return Result{Status: StatusErrored, Err: re}
	}
	return res
}
