package vm

import (
	"math"

	"github.com/latticerun/physics/bytecode"
)

// binaryIntOp implements the bare Add/Sub/Mul/Div/Mod opcodes. Integer
// arithmetic is checked: overflow, and division or modulo by zero,
// produce a bytecode.ErrorValue on the stack rather than aborting the
// VM -- only an operand of the wrong ValueKind is a terminal
// TypeMismatch (spec.md §9's resolution of "what happens on overflow").
func (m *VM) binaryIntOp(op bytecode.Op) error {
	vals, err := m.popN(2)
	if err != nil {
		return err
	}
	a, b := vals[0], vals[1]
	if a.Kind != bytecode.ValInt || b.Kind != bytecode.ValInt {
		return m.raise(ErrTypeMismatch, "%s requires two ints, got %s and %s", op, a, b)
	}
	m.push(checkedIntOp(op, a.Int, b.Int))
	return nil
}

func checkedIntOp(op bytecode.Op, x, y int64) bytecode.Value {
	switch op {
	case bytecode.OpAdd:
		sum := x + y
		if (y > 0 && sum < x) || (y < 0 && sum > x) {
			return bytecode.ErrorValue("integer overflow in add")
		}
		return bytecode.Int(sum)
	case bytecode.OpSub:
		diff := x - y
		if (y < 0 && diff < x) || (y > 0 && diff > x) {
			return bytecode.ErrorValue("integer overflow in sub")
		}
		return bytecode.Int(diff)
	case bytecode.OpMul:
		if x == 0 || y == 0 {
			return bytecode.Int(0)
		}
		prod := x * y
		if prod/y != x {
			return bytecode.ErrorValue("integer overflow in mul")
		}
		return bytecode.Int(prod)
	case bytecode.OpDiv:
		if y == 0 {
			return bytecode.ErrorValue("division by zero")
		}
		if x == math.MinInt64 && y == -1 {
			return bytecode.ErrorValue("integer overflow in div")
		}
		return bytecode.Int(x / y)
	case bytecode.OpMod:
		if y == 0 {
			return bytecode.ErrorValue("modulo by zero")
		}
		return bytecode.Int(x % y)
	default:
		return bytecode.ErrorValue("unsupported integer op")
	}
}

// binaryFloatOp implements the bare FAdd/FSub/FMul/FDiv opcodes. Float
// arithmetic follows IEEE 754 and is not overflow-checked -- Inf and NaN
// are valid Float payloads, per spec.md §9.
func (m *VM) binaryFloatOp(op bytecode.Op) error {
	vals, err := m.popN(2)
	if err != nil {
		return err
	}
	a, b := vals[0], vals[1]
	if a.Kind != bytecode.ValFloat || b.Kind != bytecode.ValFloat {
		return m.raise(ErrTypeMismatch, "%s requires two floats, got %s and %s", op, a, b)
	}
	var r float64
	switch op {
	case bytecode.OpFAdd:
		r = a.Float + b.Float
	case bytecode.OpFSub:
		r = a.Float - b.Float
	case bytecode.OpFMul:
		r = a.Float * b.Float
	case bytecode.OpFDiv:
		r = a.Float / b.Float
	}
	m.push(bytecode.Float(r))
	return nil
}

// compareOp implements the bare Lt/Gt/Lte/Gte opcodes, which push a
// Bool -- distinct from the int-lt/int-eq/... host functions (func_ids
// 20-25), which return Int(0/1) by the compiler's existing convention.
// Both operands must be the same numeric kind.
func (m *VM) compareOp(op bytecode.Op) (bool, error) {
	vals, err := m.popN(2)
	if err != nil {
		return false, err
	}
	a, b := vals[0], vals[1]
	switch {
	case a.Kind == bytecode.ValInt && b.Kind == bytecode.ValInt:
		return intCompare(op, a.Int, b.Int), nil
	case a.Kind == bytecode.ValFloat && b.Kind == bytecode.ValFloat:
		return floatCompare(op, a.Float, b.Float), nil
	default:
		return false, m.raise(ErrTypeMismatch, "%s requires two ints or two floats, got %s and %s", op, a, b)
	}
}

func intCompare(op bytecode.Op, x, y int64) bool {
	switch op {
	case bytecode.OpLt:
		return x < y
	case bytecode.OpGt:
		return x > y
	case bytecode.OpLte:
		return x <= y
	case bytecode.OpGte:
		return x >= y
	default:
		return false
	}
}

func floatCompare(op bytecode.Op, x, y float64) bool {
	switch op {
	case bytecode.OpLt:
		return x < y
	case bytecode.OpGt:
		return x > y
	case bytecode.OpLte:
		return x <= y
	case bytecode.OpGte:
		return x >= y
	default:
		return false
	}
}

// hostArithmetic implements the capability-free arithmetic/comparison
// host function subset (func_ids 9-25), reusing the same checked-integer
// and IEEE-754-float semantics as the bare opcodes above. The three
// int-* and three float-* comparison functions return Int(0/1), per the
// compiler's existing calling convention for host-function comparisons
// (compileAssociativeCall folds + and * through exactly these ids).
func hostArithmetic(id bytecode.FuncID, args []bytecode.Value) (bytecode.Value, error) {
	intPair := func() (int64, int64, bool) {
		if len(args) != 2 || args[0].Kind != bytecode.ValInt || args[1].Kind != bytecode.ValInt {
			return 0, 0, false
		}
		return args[0].Int, args[1].Int, true
	}
	floatPair := func() (float64, float64, bool) {
		if len(args) != 2 || args[0].Kind != bytecode.ValFloat || args[1].Kind != bytecode.ValFloat {
			return 0, 0, false
		}
		return args[0].Float, args[1].Float, true
	}

	switch id {
	case bytecode.FuncIntAdd, bytecode.FuncIntSub, bytecode.FuncIntMul, bytecode.FuncIntDiv, bytecode.FuncIntMod:
		x, y, ok := intPair()
		if !ok {
			return bytecode.Nil, typeMismatchf(id, args)
		}
		return checkedIntOp(intOpFor(id), x, y), nil

	case bytecode.FuncFloatAdd, bytecode.FuncFloatSub, bytecode.FuncFloatMul, bytecode.FuncFloatDiv:
		x, y, ok := floatPair()
		if !ok {
			return bytecode.Nil, typeMismatchf(id, args)
		}
		var r float64
		switch id {
		case bytecode.FuncFloatAdd:
			r = x + y
		case bytecode.FuncFloatSub:
			r = x - y
		case bytecode.FuncFloatMul:
			r = x * y
		case bytecode.FuncFloatDiv:
			r = x / y
		}
		return bytecode.Float(r), nil

	case bytecode.FuncIntToFloat:
		if len(args) != 1 || args[0].Kind != bytecode.ValInt {
			return bytecode.Nil, typeMismatchf(id, args)
		}
		return bytecode.Float(float64(args[0].Int)), nil

	case bytecode.FuncFloatToInt:
		if len(args) != 1 || args[0].Kind != bytecode.ValFloat {
			return bytecode.Nil, typeMismatchf(id, args)
		}
		return bytecode.Int(int64(args[0].Float)), nil

	case bytecode.FuncIntLt, bytecode.FuncIntEq, bytecode.FuncIntGt:
		x, y, ok := intPair()
		if !ok {
			return bytecode.Nil, typeMismatchf(id, args)
		}
		return bytecode.Int(boolToInt(intComparisonFor(id, x, y))), nil

	case bytecode.FuncFloatLt, bytecode.FuncFloatEq, bytecode.FuncFloatGt:
		x, y, ok := floatPair()
		if !ok {
			return bytecode.Nil, typeMismatchf(id, args)
		}
		return bytecode.Int(boolToInt(floatComparisonFor(id, x, y))), nil

	default:
		return bytecode.Nil, nil
	}
}

func intOpFor(id bytecode.FuncID) bytecode.Op {
	switch id {
	case bytecode.FuncIntAdd:
		return bytecode.OpAdd
	case bytecode.FuncIntSub:
		return bytecode.OpSub
	case bytecode.FuncIntMul:
		return bytecode.OpMul
	case bytecode.FuncIntDiv:
		return bytecode.OpDiv
	default:
		return bytecode.OpMod
	}
}

func intComparisonFor(id bytecode.FuncID, x, y int64) bool {
	switch id {
	case bytecode.FuncIntLt:
		return x < y
	case bytecode.FuncIntGt:
		return x > y
	default:
		return x == y
	}
}

func floatComparisonFor(id bytecode.FuncID, x, y float64) bool {
	switch id {
	case bytecode.FuncFloatLt:
		return x < y
	case bytecode.FuncFloatGt:
		return x > y
	default:
		return x == y
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func typeMismatchf(id bytecode.FuncID, args []bytecode.Value) error {
	info, _ := bytecode.LookupHostFunc(id)
	return &RuntimeError{Kind: ErrTypeMismatch, Message: "host function " + info.Name + " called with wrong argument types"}
}
