package bytecode

import "github.com/latticerun/physics/capability"

// FuncID is a stable host-function identifier, per spec.md §6's host
// function table. Stability matters: an artifact's HostCall instructions
// reference these ids directly, so the numbering must never change
// between releases.
type FuncID int32

const (
	FuncReadSensor FuncID = iota
	FuncWriteActuator
	FuncGetWallClockNs
	FuncSpawnActor
	FuncTerminateActor
	FuncNetworkSend
	FuncNetworkReceive
	FuncPersistWrite
	FuncPersistRead

	FuncIntAdd
	FuncIntSub
	FuncIntMul
	FuncIntDiv
	FuncIntMod

	FuncFloatAdd
	FuncFloatSub
	FuncFloatMul
	FuncFloatDiv

	FuncIntToFloat
	FuncFloatToInt

	FuncIntLt
	FuncIntEq
	FuncIntGt

	FuncFloatLt
	FuncFloatEq
	FuncFloatGt
)

// HostFuncInfo describes one entry of the host function table: its name
// and the capability (if any) required to invoke it.
type HostFuncInfo struct {
	Name           string
	RequiresCap    bool
	RequiredKind   capability.Kind
	AssociativeOp  bool
}

var hostTable = map[FuncID]HostFuncInfo{
	FuncReadSensor:     {Name: "read-sensor", RequiresCap: true, RequiredKind: capability.IOReadSensor},
	FuncWriteActuator:  {Name: "write-actuator", RequiresCap: true, RequiredKind: capability.IOWriteActuator},
	FuncGetWallClockNs: {Name: "get-wall-clock-ns", RequiresCap: true, RequiredKind: capability.SysClock},
	FuncSpawnActor:     {Name: "spawn-actor", RequiresCap: true, RequiredKind: capability.SysCreateActor},
	FuncTerminateActor: {Name: "terminate-actor", RequiresCap: true, RequiredKind: capability.SysTerminateActor},
	FuncNetworkSend:    {Name: "network-send", RequiresCap: true, RequiredKind: capability.IONetwork},
	FuncNetworkReceive: {Name: "network-receive", RequiresCap: true, RequiredKind: capability.IONetwork},
	FuncPersistWrite:   {Name: "persist-write", RequiresCap: true, RequiredKind: capability.IOPersist},
	FuncPersistRead:    {Name: "persist-read", RequiresCap: true, RequiredKind: capability.IOPersist},

	FuncIntAdd: {Name: "add", AssociativeOp: true},
	FuncIntSub: {Name: "sub"},
	FuncIntMul: {Name: "mul", AssociativeOp: true},
	FuncIntDiv: {Name: "div"},
	FuncIntMod: {Name: "mod"},

	FuncFloatAdd: {Name: "fadd", AssociativeOp: true},
	FuncFloatSub: {Name: "fsub"},
	FuncFloatMul: {Name: "fmul", AssociativeOp: true},
	FuncFloatDiv: {Name: "fdiv"},

	FuncIntToFloat: {Name: "int->float"},
	FuncFloatToInt: {Name: "float->int"},

	FuncIntLt: {Name: "int-lt"},
	FuncIntEq: {Name: "int-eq"},
	FuncIntGt: {Name: "int-gt"},

	FuncFloatLt: {Name: "float-lt"},
	FuncFloatEq: {Name: "float-eq"},
	FuncFloatGt: {Name: "float-gt"},
}

// LookupHostFunc returns the table entry for id, or false if id is not a
// known host function.
func LookupHostFunc(id FuncID) (HostFuncInfo, bool) {
	info, ok := hostTable[id]
	return info, ok
}

// HostFuncByName resolves a surface-language call name (e.g. "read-sensor",
// "+") to its FuncID, as the capability analyzer and compiler need when
// lowering an ast.Node call/ffi-call into a HostCall instruction.
func HostFuncByName(name string) (FuncID, bool) {
	switch name {
	case "read-sensor":
		return FuncReadSensor, true
	case "write-actuator":
		return FuncWriteActuator, true
	case "get-wall-clock-ns":
		return FuncGetWallClockNs, true
	case "spawn-actor":
		return FuncSpawnActor, true
	case "terminate-actor":
		return FuncTerminateActor, true
	case "network-send":
		return FuncNetworkSend, true
	case "network-receive":
		return FuncNetworkReceive, true
	case "persist-write":
		return FuncPersistWrite, true
	case "persist-read":
		return FuncPersistRead, true
	case "+", "add":
		return FuncIntAdd, true
	case "-", "sub":
		return FuncIntSub, true
	case "*", "mul":
		return FuncIntMul, true
	case "/", "div":
		return FuncIntDiv, true
	case "mod":
		return FuncIntMod, true
	case "f+", "fadd":
		return FuncFloatAdd, true
	case "f-", "fsub":
		return FuncFloatSub, true
	case "f*", "fmul":
		return FuncFloatMul, true
	case "f/", "fdiv":
		return FuncFloatDiv, true
	case "int->float":
		return FuncIntToFloat, true
	case "float->int":
		return FuncFloatToInt, true
	case "int-lt":
		return FuncIntLt, true
	case "int-eq":
		return FuncIntEq, true
	case "int-gt":
		return FuncIntGt, true
	case "float-lt":
		return FuncFloatLt, true
	case "float-eq":
		return FuncFloatEq, true
	case "float-gt":
		return FuncFloatGt, true
	default:
		return 0, false
	}
}

// AssociativeHostFuncs is the set of call names that §4.3's n-ary
// associative folding applies to.
var AssociativeHostFuncs = map[string]bool{
	"+": true, "add": true,
	"*": true, "mul": true,
	"f+": true, "fadd": true,
	"f*": true, "fmul": true,
}

// IdentityElement returns the left-fold identity value for an
// associative host function name, used when a call supplies zero
// arguments.
func IdentityElement(name string) Value {
	switch name {
	case "+", "add":
		return Int(0)
	case "*", "mul":
		return Int(1)
	case "f+", "fadd":
		return Float(0)
	case "f*", "fmul":
		return Float(1)
	default:
		return Nil
	}
}
