package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticerun/physics/ast"
	"github.com/latticerun/physics/bytecode"
	"github.com/latticerun/physics/capability"
)

func TestCompileFormalArithmeticAddition(t *testing.T) {
	require := require.New(t)

	program := ast.Call("+", ast.LitIntNode(1), ast.LitIntNode(2))
	a, err := Compile(program, capability.Formal)
	require.NoError(err)
	require.NotNil(a.Core)
	require.NotNil(a.Proof)
	require.Equal(uint64(3), a.Core.Nat)

	var sawRet bool
	for _, ins := range a.Code {
		if ins.Op == bytecode.OpRet {
			sawRet = true
		}
	}
	require.True(sawRet)
}

func TestCompileFormalRejectsConditional(t *testing.T) {
	require := require.New(t)

	program := ast.If(ast.LitBoolNode(true), ast.LitIntNode(1), ast.LitIntNode(2))
	_, err := Compile(program, capability.Formal)
	require.Error(err)
	var ce *CompileError
	require.ErrorAs(err, &ce)
	require.Equal(ErrInternal, ce.Kind)
}

func TestCompileEmpiricalSimpleLambdaCall(t *testing.T) {
	require := require.New(t)

	program := ast.Let(
		[]ast.Binding{{Name: "id", Value: ast.Lambda([]string{"x"}, ast.Var("x"))}},
		ast.Call("id", ast.LitIntNode(42)),
	)
	a, err := Compile(program, capability.Empirical)
	require.NoError(err)
	require.Len(a.Functions, 1)

	var sawMakeClosure, sawCall bool
	for _, ins := range a.Code {
		if ins.Op == bytecode.OpMakeClosure {
			sawMakeClosure = true
		}
		if ins.Op == bytecode.OpCall || ins.Op == bytecode.OpTailCall {
			sawCall = true
		}
	}
	require.True(sawMakeClosure)
	require.True(sawCall)
}

func TestCompileLetrecFactorial(t *testing.T) {
	require := require.New(t)

	// (letrec ((fact (lambda (n) (if (int-eq n 0) 1 (* n (fact (- n 1)))))))
	//   (fact 5))
	factBody := ast.If(
		ast.FFICall("int-eq", ast.Var("n"), ast.LitIntNode(0)),
		ast.LitIntNode(1),
		ast.Call("*", ast.Var("n"), ast.Call("fact", ast.Call("-", ast.Var("n"), ast.LitIntNode(1)))),
	)
	program := ast.Letrec(
		[]ast.Binding{{Name: "fact", Value: ast.Lambda([]string{"n"}, factBody)}},
		ast.Call("fact", ast.LitIntNode(5)),
	)

	a, err := Compile(program, capability.Empirical)
	require.NoError(err)
	require.Len(a.Functions, 1)
	require.Len(a.Captures, 1)
	require.Equal(bytecode.CaptureLocal, a.Captures[0][0].Kind)
}

func TestCompileTailCallInTailPosition(t *testing.T) {
	require := require.New(t)

	loopBody := ast.Call("loop", ast.Var("n"))
	program := ast.Letrec(
		[]ast.Binding{{Name: "loop", Value: ast.Lambda([]string{"n"}, loopBody)}},
		ast.Call("loop", ast.LitIntNode(0)),
	)
	a, err := Compile(program, capability.Empirical)
	require.NoError(err)
	require.Len(a.Functions, 1)

	var sawTailCall bool
	for _, ins := range a.Functions[0] {
		if ins.Op == bytecode.OpTailCall {
			sawTailCall = true
		}
	}
	require.True(sawTailCall, "self-call in tail position should emit TailCall")
}

func TestCompileAssociativeEmptyCallEmitsIdentity(t *testing.T) {
	require := require.New(t)

	program := ast.Call("+")
	a, err := Compile(program, capability.Empirical)
	require.NoError(err)

	require.Equal(bytecode.OpConstInt, a.Code[0].Op)
	require.True(a.Constants[a.Code[0].A].Equal(bytecode.Int(0)))
}

func TestCompileCapabilityPreambleInsertedAtEmpirical(t *testing.T) {
	require := require.New(t)

	program := ast.FFICall("read-sensor")
	a, err := Compile(program, capability.Empirical)
	require.NoError(err)
	require.True(a.RequiredCapabilities.Contains(capability.Of(capability.IOReadSensor)))

	var sawHasCap bool
	for _, ins := range a.Code {
		if ins.Op == bytecode.OpHasCap {
			sawHasCap = true
			break
		}
	}
	require.True(sawHasCap)
}

func TestCompileTierGateRejectsUngrantedCapability(t *testing.T) {
	require := require.New(t)

	program := ast.FFICall("spawn-actor")
	_, err := Compile(program, capability.Empirical)
	require.Error(err)
	var ce *CompileError
	require.ErrorAs(err, &ce)
	require.Equal(ErrCapability, ce.Kind)
}

func TestCompileExperimentalWrapsSandbox(t *testing.T) {
	require := require.New(t)

	program := ast.LitIntNode(1)
	a, err := Compile(program, capability.Experimental)
	require.NoError(err)
	require.True(a.Sandboxed)
	require.Equal(bytecode.OpInitSandbox, a.Code[0].Op)

	var sawCleanup bool
	for _, ins := range a.Code {
		if ins.Op == bytecode.OpCleanupSandbox {
			sawCleanup = true
		}
	}
	require.True(sawCleanup)
}

func TestCompileFfiFunctionNotFound(t *testing.T) {
	require := require.New(t)

	program := ast.FFICall("does-not-exist")
	_, err := Compile(program, capability.Empirical)
	require.Error(err)
	var ce *CompileError
	require.ErrorAs(err, &ce)
	require.Equal(ErrFfiFunctionNotFound, ce.Kind)
}

func TestCompileSequenceDiscardsNonLastValues(t *testing.T) {
	require := require.New(t)

	program := ast.Sequence(ast.LitIntNode(1), ast.LitIntNode(2), ast.LitIntNode(3))
	a, err := Compile(program, capability.Empirical)
	require.NoError(err)

	var pops int
	for _, ins := range a.Code {
		if ins.Op == bytecode.OpPop {
			pops++
		}
	}
	require.Equal(2, pops)
}
