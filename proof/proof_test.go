package proof

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticerun/physics/core"
)

func TestVerifyReflAcceptsSelf(t *testing.T) {
	require := require.New(t)
	e := core.Nat(3)
	left, right, err := Verify(Refl(e))
	require.NoError(err)
	require.True(left.Equal(e))
	require.True(right.Equal(e))
}

func TestVerifyBetaStepIdentity(t *testing.T) {
	require := require.New(t)

	// (λ.0) 1 -> 1, per spec.md scenario 1.
	redex := core.App(core.Lam(core.Var(0)), core.Nat(1))
	p, err := ProveBetaReduction(redex)
	require.NoError(err)

	left, right, err := Verify(p)
	require.NoError(err)
	require.True(left.Equal(redex))
	require.True(right.Equal(core.Nat(1)))

	normalized, _, exhausted := core.Normalize(left, 0)
	require.False(exhausted)
	require.True(core.AlphaEquiv(normalized, right))
}

func TestVerifyBetaStepRejectsNonRedex(t *testing.T) {
	require := require.New(t)
	notRedex := core.App(core.Nat(1), core.Nat(2))
	_, err := ProveBetaReduction(notRedex)
	require.Error(err)
}

func TestVerifyBetaStepRejectsMismatchedContractum(t *testing.T) {
	require := require.New(t)
	redex := core.App(core.Lam(core.Var(0)), core.Nat(1))
	bad := BetaStep(redex, core.Nat(99))
	_, _, err := Verify(bad)
	require.Error(err)
}

func TestVerifyTransChains(t *testing.T) {
	require := require.New(t)

	step1 := BetaStep(
		core.App(core.Lam(core.Var(0)), core.Nat(5)),
		core.Nat(5),
	)
	step2 := Refl(core.Nat(5))
	combined := Trans(step1, step2)

	left, right, err := Verify(combined)
	require.NoError(err)
	require.True(left.Equal(core.App(core.Lam(core.Var(0)), core.Nat(5))))
	require.True(right.Equal(core.Nat(5)))
}

func TestVerifyTransRejectsMismatchedMiddle(t *testing.T) {
	require := require.New(t)
	p1 := Refl(core.Nat(1))
	p2 := Refl(core.Nat(2))
	_, _, err := Verify(Trans(p1, p2))
	require.Error(err)
}

func TestVerifyCongLamAndCongApp(t *testing.T) {
	require := require.New(t)

	inner := BetaStep(
		core.App(core.Lam(core.Var(0)), core.Nat(1)),
		core.Nat(1),
	)
	lifted := CongLam(inner)
	left, right, err := Verify(lifted)
	require.NoError(err)
	require.True(left.Equal(core.Lam(core.App(core.Lam(core.Var(0)), core.Nat(1)))))
	require.True(right.Equal(core.Lam(core.Nat(1))))

	appLifted := CongApp(lifted, Refl(core.Nat(7)))
	left2, right2, err := Verify(appLifted)
	require.NoError(err)
	require.True(left2.Equal(core.App(left, core.Nat(7))))
	require.True(right2.Equal(core.App(right, core.Nat(7))))
}

func TestProveConsistency(t *testing.T) {
	require := require.New(t)
	_, _, err := Verify(ProveConsistency())
	require.NoError(err)
}

func TestProveNormalizationSoundness(t *testing.T) {
	require := require.New(t)

	expr := core.App(core.App(core.Lam(core.Lam(core.Var(1))), core.Nat(3)), core.Nat(4))
	p, normalForm, err := ProveNormalization(expr, 0)
	require.NoError(err)

	left, right, err := Verify(p)
	require.NoError(err)
	require.True(left.Equal(expr))
	require.True(right.Equal(normalForm))

	reNormalizedLeft, _, _ := core.Normalize(left, 0)
	reNormalizedRight, _, _ := core.Normalize(right, 0)
	require.True(core.AlphaEquiv(reNormalizedLeft, reNormalizedRight))
}

func TestProveNormalizationFuelExhaustion(t *testing.T) {
	require := require.New(t)
	selfApp := core.Lam(core.App(core.Var(0), core.Var(0)))
	omega := core.App(selfApp, selfApp)
	_, _, err := ProveNormalization(omega, 10)
	require.Error(err)
}

func TestVerifyNilProof(t *testing.T) {
	require := require.New(t)
	_, _, err := Verify(nil)
	require.Error(err)
}
