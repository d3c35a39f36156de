package capability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetAddContainsRemove(t *testing.T) {
	require := require.New(t)

	s := NewSet()
	require.Equal(0, s.Len())

	s.Add(Of(IONetwork), Of(SysClock))
	require.Equal(2, s.Len())
	require.True(s.Contains(Of(IONetwork)))
	require.True(s.Contains(Of(SysClock)))
	require.False(s.Contains(Of(IOPersist)))

	s.Remove(Of(IONetwork))
	require.Equal(1, s.Len())
	require.False(s.Contains(Of(IONetwork)))
}

func TestSetParametrizedResourceCapabilitiesAreDistinct(t *testing.T) {
	require := require.New(t)

	s := NewSet(ExtraMemory(1024), ExtraMemory(2048))
	require.Equal(2, s.Len())
	require.True(s.Contains(ExtraMemory(1024)))
	require.True(s.Contains(ExtraMemory(2048)))
	require.False(s.Contains(ExtraMemory(4096)))
}

func TestSetUnionIntersection(t *testing.T) {
	require := require.New(t)

	a := NewSet(Of(IONetwork), Of(SysClock))
	b := NewSet(Of(SysClock), Of(IOPersist))

	union := a.Union(b)
	require.Equal(3, union.Len())
	require.True(union.Contains(Of(IONetwork)))
	require.True(union.Contains(Of(IOPersist)))

	inter := a.Intersection(b)
	require.Equal(1, inter.Len())
	require.True(inter.Contains(Of(SysClock)))
}

func TestSetSubsetRelation(t *testing.T) {
	require := require.New(t)

	small := NewSet(Of(MacroHygienic))
	big := NewSet(Of(MacroHygienic), Of(ComptimeEval))

	require.True(small.IsSubsetOf(big))
	require.True(small.IsStrictSubsetOf(big))
	require.False(big.IsStrictSubsetOf(small))
	require.True(big.IsSubsetOf(big))
	require.False(big.IsStrictSubsetOf(big))
}

func TestTierBaselineMonotonicity(t *testing.T) {
	require := require.New(t)

	formal := Formal.Baseline()
	verified := Verified.Baseline()
	empirical := Empirical.Baseline()
	experimental := Experimental.Baseline()

	require.True(formal.IsStrictSubsetOf(verified))
	require.True(verified.IsStrictSubsetOf(empirical))
	require.True(empirical.IsStrictSubsetOf(experimental))
}

func TestTierRequiresProofAndSandbox(t *testing.T) {
	require := require.New(t)

	require.True(Formal.RequiresProof())
	require.True(Verified.RequiresProof())
	require.False(Empirical.RequiresProof())
	require.False(Experimental.RequiresProof())

	require.False(Formal.RequiresSandbox())
	require.False(Empirical.RequiresSandbox())
	require.True(Experimental.RequiresSandbox())
}

func TestCapabilityStringer(t *testing.T) {
	require := require.New(t)
	require.Equal("io-network", Of(IONetwork).String())
	require.Equal("resource-extra-memory(1024)", ExtraMemory(1024).String())
}
