// Package bytecode defines the instruction set, constant pool, value
// representation and compilation artifact that the compiler produces and
// the VM consumes. CompilationArtifact is the pure data contract between
// the two (spec.md §2, "Control flow").
package bytecode

import "fmt"

// ValueKind discriminates the tagged union of runtime values.
type ValueKind uint8

const (
	ValNil ValueKind = iota
	ValBool
	ValInt
	ValFloat
	ValString
	ValSymbol
	ValPair
	ValClosure
	ValActorID
	ValCapability
	ValGcPtr
	ValError
)

func (k ValueKind) String() string {
	switch k {
	case ValNil:
		return "Nil"
	case ValBool:
		return "Bool"
	case ValInt:
		return "Int"
	case ValFloat:
		return "Float"
	case ValString:
		return "String"
	case ValSymbol:
		return "Symbol"
	case ValPair:
		return "Pair"
	case ValClosure:
		return "Closure"
	case ValActorID:
		return "ActorId"
	case ValCapability:
		return "Capability"
	case ValGcPtr:
		return "GcPtr"
	case ValError:
		return "Error"
	default:
		return fmt.Sprintf("ValueKind(%d)", k)
	}
}

// Value is the tagged-union runtime value. Interned string/symbol payloads
// are stored as indices into a string table (CompilationArtifact.Strings,
// which each VM copies into its own runtime table); heap-resident
// kinds (Pair, Closure) carry an opaque Ptr into the VM's arena.
type Value struct {
	Kind ValueKind

	Bool  bool
	Int   int64
	Float float64

	// ValString / ValSymbol
	StrIdx uint32

	// ValPair / ValClosure / ValGcPtr
	Ptr uint32

	// ValActorID
	ActorID uint32

	// ValCapability -- CapKind/CapN mirror capability.Capability's two
	// fields without importing that package, keeping bytecode free of a
	// dependency cycle (capability package does not need to know about
	// values).
	CapKind uint8
	CapN    uint64

	// ValError
	Cause string
}

// Nil is the canonical nil value.
var Nil = Value{Kind: ValNil}

func Bool(b bool) Value   { return Value{Kind: ValBool, Bool: b} }
func Int(i int64) Value   { return Value{Kind: ValInt, Int: i} }
func Float(f float64) Value { return Value{Kind: ValFloat, Float: f} }
func StringRef(idx uint32) Value { return Value{Kind: ValString, StrIdx: idx} }
func SymbolRef(idx uint32) Value { return Value{Kind: ValSymbol, StrIdx: idx} }
func PairRef(ptr uint32) Value   { return Value{Kind: ValPair, Ptr: ptr} }
func ClosureRef(ptr uint32) Value { return Value{Kind: ValClosure, Ptr: ptr} }
func ActorRef(id uint32) Value    { return Value{Kind: ValActorID, ActorID: id} }
func CapabilityRef(kind uint8, n uint64) Value {
	return Value{Kind: ValCapability, CapKind: kind, CapN: n}
}
func GcPtr(ptr uint32) Value  { return Value{Kind: ValGcPtr, Ptr: ptr} }
func ErrorValue(cause string) Value { return Value{Kind: ValError, Cause: cause} }

// Truthy implements spec.md's truthiness rule: "not Nil and not Bool(false)".
func (v Value) Truthy() bool {
	if v.Kind == ValNil {
		return false
	}
	if v.Kind == ValBool {
		return v.Bool
	}
	return true
}

// Equal is structural equality over values.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValNil:
		return true
	case ValBool:
		return v.Bool == o.Bool
	case ValInt:
		return v.Int == o.Int
	case ValFloat:
		return v.Float == o.Float
	case ValString, ValSymbol:
		return v.StrIdx == o.StrIdx
	case ValPair, ValClosure, ValGcPtr:
		return v.Ptr == o.Ptr
	case ValActorID:
		return v.ActorID == o.ActorID
	case ValCapability:
		return v.CapKind == o.CapKind && v.CapN == o.CapN
	case ValError:
		return v.Cause == o.Cause
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case ValNil:
		return "nil"
	case ValBool:
		return fmt.Sprintf("%t", v.Bool)
	case ValInt:
		return fmt.Sprintf("%d", v.Int)
	case ValFloat:
		return fmt.Sprintf("%g", v.Float)
	case ValString:
		return fmt.Sprintf("str#%d", v.StrIdx)
	case ValSymbol:
		return fmt.Sprintf("sym#%d", v.StrIdx)
	case ValPair:
		return fmt.Sprintf("pair@%d", v.Ptr)
	case ValClosure:
		return fmt.Sprintf("closure@%d", v.Ptr)
	case ValActorID:
		return fmt.Sprintf("actor#%d", v.ActorID)
	case ValCapability:
		return fmt.Sprintf("cap(%d,%d)", v.CapKind, v.CapN)
	case ValGcPtr:
		return fmt.Sprintf("ptr@%d", v.Ptr)
	case ValError:
		return fmt.Sprintf("error(%s)", v.Cause)
	default:
		return "?"
	}
}
