package bytecode

import "fmt"

// Op is a single VM opcode, matching spec.md §6's opcode table. The
// numeric values are not a stable wire format by themselves --
// Artifact.Encode/Decode carries a version tag (see codec.go) precisely
// so the table can grow between releases.
type Op uint8

const (
	OpNil Op = iota
	OpConstBool
	OpConstInt
	OpConstFloat
	OpConstSymbol
	OpLoadString

	OpDup
	OpPop
	OpSwap

	OpGetLocal
	OpSetLocal
	OpGetUpvalue

	OpCons
	OpCar
	OpCdr

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv

	OpEq
	OpNe
	OpLt
	OpGt
	OpLte
	OpGte

	OpStrLen
	OpStrConcat
	OpStrIndex

	OpJmp
	OpJmpIfFalse

	OpCall
	OpTailCall
	OpRet

	OpMakeClosure

	OpYield
	OpSend

	OpHasCap
	OpRequestCap
	OpGrantCap
	OpRevokeCap

	// OpHostCall's operands are (A=cap_idx, B=func_id, C=arg count); a
	// cap_idx of -1 means "no capability required" (the arithmetic
	// subset, func_ids 9-25).
	OpHostCall

	OpInitSandbox
	OpIsolateCapabilities
	OpSetErrorHandler
	OpLogSandboxViolation
	OpCleanupSandbox

	OpCheckStepLimit
)

var opNames = [...]string{
	OpNil:                 "Nil",
	OpConstBool:           "ConstBool",
	OpConstInt:            "ConstInt",
	OpConstFloat:          "ConstFloat",
	OpConstSymbol:         "ConstSymbol",
	OpLoadString:          "LoadString",
	OpDup:                 "Dup",
	OpPop:                 "Pop",
	OpSwap:                "Swap",
	OpGetLocal:            "GetLocal",
	OpSetLocal:            "SetLocal",
	OpGetUpvalue:          "GetUpvalue",
	OpCons:                "Cons",
	OpCar:                 "Car",
	OpCdr:                 "Cdr",
	OpAdd:                 "Add",
	OpSub:                 "Sub",
	OpMul:                 "Mul",
	OpDiv:                 "Div",
	OpMod:                 "Mod",
	OpFAdd:                "FAdd",
	OpFSub:                "FSub",
	OpFMul:                "FMul",
	OpFDiv:                "FDiv",
	OpEq:                  "Eq",
	OpNe:                  "Ne",
	OpLt:                  "Lt",
	OpGt:                  "Gt",
	OpLte:                 "Lte",
	OpGte:                 "Gte",
	OpStrLen:              "StrLen",
	OpStrConcat:           "StrConcat",
	OpStrIndex:            "StrIndex",
	OpJmp:                 "Jmp",
	OpJmpIfFalse:          "JmpIfFalse",
	OpCall:                "Call",
	OpTailCall:            "TailCall",
	OpRet:                 "Ret",
	OpMakeClosure:         "MakeClosure",
	OpYield:               "Yield",
	OpSend:                "Send",
	OpHasCap:              "HasCap",
	OpRequestCap:          "RequestCap",
	OpGrantCap:            "GrantCap",
	OpRevokeCap:           "RevokeCap",
	OpHostCall:            "HostCall",
	OpInitSandbox:         "InitSandbox",
	OpIsolateCapabilities: "IsolateCapabilities",
	OpSetErrorHandler:     "SetErrorHandler",
	OpLogSandboxViolation: "LogSandboxViolation",
	OpCleanupSandbox:      "CleanupSandbox",
	OpCheckStepLimit:      "CheckStepLimit",
}

func (o Op) String() string {
	if int(o) < len(opNames) && opNames[o] != "" {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// Instruction is one bytecode instruction. Operand interpretation is
// per-Op: most opcodes use only A (a constant-pool index, slot index, or
// signed jump delta); MakeClosure uses A/B (Functions index, Captures
// index); HostCall uses all three (capability index, host function id,
// argument count).
type Instruction struct {
	Op Op
	A  int32
	B  int32
	C  int32
}

// NoCapability is the sentinel HostCall.A value for the capability-free
// arithmetic host function subset (func_ids 9-25).
const NoCapability int32 = -1

// StepCost is the per-opcode unit charged against a VM's remaining step
// budget. spec.md §4.4 states the cost flatly: every opcode costs one
// step, with no exceptions for control-flow or capability-system ops.
func (o Op) StepCost() int64 {
	return 1
}
