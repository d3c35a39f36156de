package vm

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/latticerun/physics/bytecode"
)

// ErrorKind enumerates the closed set of runtime failure modes
// (spec.md §4.4/§7).
type ErrorKind uint8

const (
	ErrCpu ErrorKind = iota
	ErrMemory
	ErrStackUnderflow
	ErrInvalidHeapPtr
	ErrUnknownOpCode
	ErrTypeMismatch
	ErrDivisionByZero
	ErrArithmeticOverflow
	ErrCapability
	ErrHeapCorruption
	ErrRecursion
	ErrStack

	// ErrHeapExhausted is this implementation's name for spec.md's
	// "Memory limit applies to total arena bytes; HeapExhausted if
	// exceeded" -- kept distinct from the general ErrMemory kind so a
	// host can tell "ran over budget" apart from a malformed-allocation
	// memory error.
	ErrHeapExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case ErrCpu:
		return "Cpu"
	case ErrMemory:
		return "Memory"
	case ErrStackUnderflow:
		return "StackUnderflow"
	case ErrInvalidHeapPtr:
		return "InvalidHeapPtr"
	case ErrUnknownOpCode:
		return "UnknownOpCode"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrDivisionByZero:
		return "DivisionByZero"
	case ErrArithmeticOverflow:
		return "ArithmeticOverflow"
	case ErrCapability:
		return "Capability"
	case ErrHeapCorruption:
		return "HeapCorruption"
	case ErrRecursion:
		return "Recursion"
	case ErrStack:
		return "Stack"
	case ErrHeapExhausted:
		return "HeapExhausted"
	default:
		return "UnknownRuntimeError"
	}
}

// RecoveryAction suggests what a host might retry with after a
// recoverable runtime error (spec.md §7: "Recoverable runtime errors
// carry a suggested RecoveryAction; the host may reissue the artifact
// with adjusted limits").
type RecoveryAction uint8

const (
	RecoveryNone RecoveryAction = iota
	RecoveryIncreaseCPULimit
	RecoveryIncreaseMemoryLimit
	RecoveryRequestCapability
)

func (r RecoveryAction) String() string {
	switch r {
	case RecoveryIncreaseCPULimit:
		return "IncreaseCpuLimit"
	case RecoveryIncreaseMemoryLimit:
		return "IncreaseMemoryLimit"
	case RecoveryRequestCapability:
		return "RequestCapability"
	default:
		return "None"
	}
}

// Recoverable reports whether a runtime error of kind k is one a host
// may plausibly retry past by adjusting limits or re-requesting a
// capability, versus a terminal defect in the program itself.
func (k ErrorKind) Recoverable() bool {
	switch k {
	case ErrCpu, ErrMemory, ErrHeapExhausted, ErrCapability:
		return true
	default:
		return false
	}
}

// SuggestedRecovery returns the RecoveryAction a host should try for a
// recoverable error kind, or RecoveryNone for a terminal one.
func (k ErrorKind) SuggestedRecovery() RecoveryAction {
	switch k {
	case ErrCpu:
		return RecoveryIncreaseCPULimit
	case ErrMemory, ErrHeapExhausted:
		return RecoveryIncreaseMemoryLimit
	case ErrCapability:
		return RecoveryRequestCapability
	default:
		return RecoveryNone
	}
}

// ErrorContext is the full context snapshot spec.md §4.4 requires every
// runtime error to carry.
type ErrorContext struct {
	IP              int
	Instruction     bytecode.Instruction
	StackDepth      int
	CallDepth       int
	StepsRemaining  int64
	ActorID         uint32
	MemoryUsage     int64
	LastInstructions []bytecode.Instruction
	Timestamp       int64
}

// RuntimeError is a structured VM failure: a closed-enum Kind, a
// human-readable Message, and the ErrorContext snapshot taken at the
// moment it was raised. It wraps github.com/cockroachdb/errors to carry
// a stack trace from the raise site, per SPEC_FULL.md's ambient error
// handling section.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Context ErrorContext
	cause   error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s at ip=%d (actor %d): %s", e.Kind, e.Context.IP, e.Context.ActorID, e.Message)
}

// Unwrap exposes the cockroachdb/errors-wrapped cause so errors.Is/As
// from a caller still reach the underlying stack trace.
func (e *RuntimeError) Unwrap() error { return e.cause }

// raise builds a RuntimeError at the VM's current execution point,
// stamping in the full context snapshot and wrapping it with a stack
// trace via cockroachdb/errors.
func (m *VM) raise(kind ErrorKind, format string, args ...interface{}) *RuntimeError {
	return m.stamp(&RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// stamp fills in e's ErrorContext from the VM's current state and, if e
// doesn't yet carry a cockroachdb/errors cause (true for a *RuntimeError
// built by a helper like Heap that has no VM to consult), attaches one so
// the final error still carries a stack trace from somewhere near its
// origin.
func (m *VM) stamp(e *RuntimeError) *RuntimeError {
	e.Context = ErrorContext{
		IP:               m.ip,
		StackDepth:       len(m.stack),
		CallDepth:        len(m.callStack),
		StepsRemaining:   m.stepsRemaining,
		ActorID:          m.ActorID,
		MemoryUsage:      m.Heap.Stats().BytesInUse,
		LastInstructions: m.lastInstructions(),
		Timestamp:        m.stepCount,
	}
	if m.ip >= 0 && m.code != nil && m.ip < len(*m.code) {
		e.Context.Instruction = (*m.code)[m.ip]
	}
	if e.cause == nil {
		e.cause = errors.Newf("%s: %s", e.Kind, e.Message)
	}
	return e
}
