package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticerun/physics/capability"
)

func TestArtifactEmitAndPatchJump(t *testing.T) {
	require := require.New(t)

	a := NewArtifact(capability.Empirical)
	a.Emit(OpConstInt, 0)
	jmp := a.Emit(OpJmpIfFalse, 0)
	a.Emit(OpConstInt, 1)
	a.PatchJump(jmp)

	require.Equal(3, len(a.Code))
	require.Equal(int32(1), a.Code[jmp].A)
}

func TestArtifactConstantDeduplication(t *testing.T) {
	require := require.New(t)

	a := NewArtifact(capability.Formal)
	i1 := a.AddConstant(Int(42))
	i2 := a.AddConstant(Int(42))
	i3 := a.AddConstant(Int(7))

	require.Equal(i1, i2)
	require.NotEqual(i1, i3)
	require.Equal(2, len(a.Constants))
}

func TestValueTruthiness(t *testing.T) {
	require := require.New(t)

	require.False(Nil.Truthy())
	require.False(Bool(false).Truthy())
	require.True(Bool(true).Truthy())
	require.True(Int(0).Truthy())
	require.True(StringRef(0).Truthy())
}

func TestValueEquality(t *testing.T) {
	require := require.New(t)

	require.True(Int(5).Equal(Int(5)))
	require.False(Int(5).Equal(Int(6)))
	require.False(Int(5).Equal(Float(5)))
	require.True(CapabilityRef(3, 1024).Equal(CapabilityRef(3, 1024)))
	require.False(CapabilityRef(3, 1024).Equal(CapabilityRef(3, 2048)))
}

func TestArtifactRoundTripEncodeDecode(t *testing.T) {
	require := require.New(t)

	a := NewArtifact(capability.Empirical)
	a.Sandboxed = false
	a.StepLimit = 1000
	a.MemoryLimit = 4096
	sIdx := a.AddString("hello")
	a.Emit(OpLoadString, int32(sIdx))
	a.Emit(OpConstInt, int32(a.AddConstant(Int(99))))
	a.Emit(OpConstFloat, int32(a.AddConstant(Float(3.5))))
	a.Emit(OpRet)
	a.RequireCapability(capability.Of(capability.IONetwork), "uses network socket")
	a.GrantedCapabilities.Add(capability.Of(capability.IONetwork))
	fnIdx := a.AddFunction([]Instruction{{Op: OpGetLocal, A: 0}, {Op: OpRet}})
	a.Emit(OpMakeClosure, fnIdx, 0)

	data, err := a.Encode()
	require.NoError(err)

	back, err := Decode(data)
	require.NoError(err)

	require.Equal(a.Tier, back.Tier)
	require.Equal(a.Sandboxed, back.Sandboxed)
	require.Equal(a.StepLimit, back.StepLimit)
	require.Equal(a.MemoryLimit, back.MemoryLimit)
	require.Equal(a.Strings, back.Strings)
	require.Equal(len(a.Code), len(back.Code))
	for i := range a.Code {
		require.Equal(a.Code[i], back.Code[i])
	}
	require.Equal(len(a.Constants), len(back.Constants))
	for i := range a.Constants {
		require.True(a.Constants[i].Equal(back.Constants[i]), "constant %d mismatch", i)
	}
	require.True(back.RequiredCapabilities.Contains(capability.Of(capability.IONetwork)))
	require.True(back.GrantedCapabilities.Contains(capability.Of(capability.IONetwork)))
	require.Equal(a.Functions, back.Functions)
}

func TestDecodeRejectsUnknownWireVersion(t *testing.T) {
	require := require.New(t)

	_, err := Decode([]byte{0, 0, 0, 99})
	require.Error(err)
}

func TestOpStepCost(t *testing.T) {
	require := require.New(t)

	require.Equal(int64(1), OpAdd.StepCost())
	require.Equal(int64(1), OpHostCall.StepCost())
	require.Equal(int64(1), OpCall.StepCost())
}
