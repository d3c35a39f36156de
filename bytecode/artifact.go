package bytecode

import (
	"github.com/latticerun/physics/capability"
	"github.com/latticerun/physics/core"
	"github.com/latticerun/physics/proof"
)

// SourceSpan locates a bytecode instruction range back to its originating
// AST node, identified only by a human-readable label (the surface
// language's tokenizer/parser is out of scope, so there is no byte
// offset to carry).
type SourceSpan struct {
	InstrStart int
	InstrEnd   int
	Label      string
}

// EmpiricalValidation records the outcome of running a candidate program
// against the big-step evaluator (eval.Eval) as an oracle before trusting
// its bytecode at Empirical tier, since Empirical programs carry no
// formal proof.
type EmpiricalValidation struct {
	Ran       bool
	Agreed    bool
	Mismatch  string
}

// CapabilityAuditEntry records one compile-time capability decision so a
// CompilationArtifact is self-describing about why it needed what it
// needed, independent of the runtime authority's own audit log.
type CapabilityAuditEntry struct {
	Cap    capability.Capability
	Reason string
}

// CompilationArtifact is the complete output of compiling one program: the
// instruction stream, constant pool, capability bookkeeping, and
// (tier-dependent) a core-calculus lowering with its correctness proof.
// This is the sole data contract between the compiler and the VM -- the
// VM never looks at ast.Node or core.Expr, only at this struct.
type CompilationArtifact struct {
	Code      []Instruction
	Constants []Value
	Strings   []string
	SourceMap []SourceSpan

	// Functions holds the independently-laid-out bytecode sequences for
	// every lambda body compiled in this artifact (spec.md §4.3's
	// closure emission: "lay out its body in an independent bytecode
	// sequence"). MakeClosure's A operand indexes this table.
	Functions [][]Instruction

	// Captures holds one ordered capture-source list per closure
	// creation site; MakeClosure's B operand indexes this table (see
	// CaptureSource).
	Captures [][]CaptureSource

	Tier capability.Tier

	// RequiredCapabilities is the statically-determined set a program
	// needs to run to completion without a capability denial; non-nil
	// only at tiers that run the capability analyzer to completion.
	RequiredCapabilities capability.Set
	GrantedCapabilities  capability.Set
	CapabilityAudit      []CapabilityAuditEntry

	Sandboxed bool

	StepLimit   int64
	MemoryLimit int64

	// Core is the core-calculus lowering of the program, populated only
	// at Formal/Verified tiers (capability.Tier.RequiresProof).
	Core *core.Expr
	// Proof witnesses that Core reduces to its normal form exactly as
	// claimed; required whenever Core is non-nil.
	Proof *proof.Term

	Validation EmpiricalValidation
}

// NewArtifact returns an empty artifact for the given tier with fresh,
// empty capability sets.
func NewArtifact(tier capability.Tier) *CompilationArtifact {
	return &CompilationArtifact{
		Tier:                 tier,
		RequiredCapabilities: capability.NewSet(),
		GrantedCapabilities:  capability.NewSet(),
	}
}

// Emit appends an instruction and returns its index.
func (a *CompilationArtifact) Emit(op Op, operands ...int32) int {
	return EmitInto(&a.Code, op, operands...)
}

// EmitInto appends an instruction to an arbitrary instruction slice and
// returns its index. The compiler's per-function code buffers (one per
// lambda body, before they're sealed into a's Functions table) use this
// directly; Artifact.Emit is the common case of emitting into the
// top-level program's own instruction stream.
func EmitInto(code *[]Instruction, op Op, operands ...int32) int {
	ins := Instruction{Op: op}
	if len(operands) > 0 {
		ins.A = operands[0]
	}
	if len(operands) > 1 {
		ins.B = operands[1]
	}
	if len(operands) > 2 {
		ins.C = operands[2]
	}
	*code = append(*code, ins)
	return len(*code) - 1
}

// PatchJump rewrites the relative-offset (A) operand of the Jmp/
// JmpIfFalse instruction at idx so that it lands on the current end of
// the code stream. Per spec.md §4.4, a jump's effective target is
// ip = idx + 1 + Δ, so Δ = len(Code) - (idx + 1) -- the standard
// back-patch pattern for forward jumps emitted before their target is
// known.
func (a *CompilationArtifact) PatchJump(idx int) {
	a.Code[idx].A = int32(len(a.Code) - (idx + 1))
}

// AddConstant appends v to the constant pool and returns its index,
// deduplicating against structurally-equal existing entries.
func (a *CompilationArtifact) AddConstant(v Value) int32 {
	for i, existing := range a.Constants {
		if existing.Equal(v) {
			return int32(i)
		}
	}
	a.Constants = append(a.Constants, v)
	return int32(len(a.Constants) - 1)
}

// AddFunction appends an independently-compiled closure body and
// returns its index into Functions.
func (a *CompilationArtifact) AddFunction(code []Instruction) int32 {
	a.Functions = append(a.Functions, code)
	return int32(len(a.Functions) - 1)
}

// AddString interns s and returns its index, deduplicating identical
// strings.
func (a *CompilationArtifact) AddString(s string) uint32 {
	for i, existing := range a.Strings {
		if existing == s {
			return uint32(i)
		}
	}
	a.Strings = append(a.Strings, s)
	return uint32(len(a.Strings) - 1)
}

// RequireCapability records that the program's static analysis
// determined it needs cap, with reason as a short diagnostic note.
func (a *CompilationArtifact) RequireCapability(cap capability.Capability, reason string) {
	a.RequiredCapabilities.Add(cap)
	a.CapabilityAudit = append(a.CapabilityAudit, CapabilityAuditEntry{Cap: cap, Reason: reason})
}
