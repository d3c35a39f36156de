package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticerun/physics/capability"
)

func TestHostFuncByNameAndLookup(t *testing.T) {
	require := require.New(t)

	id, ok := HostFuncByName("read-sensor")
	require.True(ok)
	require.Equal(FuncReadSensor, id)

	info, ok := LookupHostFunc(id)
	require.True(ok)
	require.True(info.RequiresCap)
	require.Equal(capability.IOReadSensor, info.RequiredKind)
}

func TestArithmeticHostFuncsRequireNoCapability(t *testing.T) {
	require := require.New(t)

	id, ok := HostFuncByName("+")
	require.True(ok)
	info, _ := LookupHostFunc(id)
	require.False(info.RequiresCap)
	require.True(info.AssociativeOp)
}

func TestIdentityElements(t *testing.T) {
	require := require.New(t)

	require.True(IdentityElement("+").Equal(Int(0)))
	require.True(IdentityElement("*").Equal(Int(1)))
	require.True(IdentityElement("fadd").Equal(Float(0)))
}

func TestComparisonHostFuncsResolveByName(t *testing.T) {
	require := require.New(t)

	id, ok := HostFuncByName("int-eq")
	require.True(ok)
	require.Equal(FuncIntEq, id)

	id, ok = HostFuncByName("float-lt")
	require.True(ok)
	require.Equal(FuncFloatLt, id)
}

func TestUnknownHostFunc(t *testing.T) {
	require := require.New(t)

	_, ok := HostFuncByName("does-not-exist")
	require.False(ok)
}
