package eval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticerun/physics/core"
)

func TestEvalIdentityBetaReduction(t *testing.T) {
	require := require.New(t)

	// (λ.0) 1 -- spec.md scenario 1.
	expr := core.App(core.Lam(core.Var(0)), core.Nat(1))
	result, err := Eval(nil, expr)
	require.NoError(err)
	require.Equal(KindValue, result.Kind)
	require.True(result.Value.Equal(core.Nat(1)))
}

func TestEvalConstFunction(t *testing.T) {
	require := require.New(t)

	constFn := core.Lam(core.Lam(core.Var(1)))
	expr := core.App(core.App(constFn, core.Nat(7)), core.Nat(9))

	result, err := Eval(nil, expr)
	require.NoError(err)
	require.Equal(KindValue, result.Kind)
	require.True(result.Value.Equal(core.Nat(7)))
}

func TestEvalApplicationOfNonFunctionErrors(t *testing.T) {
	require := require.New(t)
	expr := core.App(core.Nat(1), core.Nat(2))
	_, err := Eval(nil, expr)
	require.Error(err)
}

func TestEvalUnboundVariableErrors(t *testing.T) {
	require := require.New(t)
	_, err := Eval(nil, core.Var(0))
	require.Error(err)
}

func TestEvalPairEvaluatesBothComponents(t *testing.T) {
	require := require.New(t)

	expr := core.MkPair(
		core.App(core.Lam(core.Var(0)), core.Nat(1)),
		core.App(core.Lam(core.Var(0)), core.Nat(2)),
	)
	result, err := Eval(nil, expr)
	require.NoError(err)
	require.True(result.Value.Equal(core.MkPair(core.Nat(1), core.Nat(2))))
}

func TestEvalAgreesWithNormalize(t *testing.T) {
	require := require.New(t)

	expr := core.App(core.App(core.Lam(core.Lam(core.Var(1))), core.Nat(3)), core.Nat(4))

	normalized, _, exhausted := core.Normalize(expr, 0)
	require.False(exhausted)

	result, err := Eval(nil, expr)
	require.NoError(err)
	require.Equal(KindValue, result.Kind)
	require.True(core.AlphaEquiv(normalized, result.Value))
}
