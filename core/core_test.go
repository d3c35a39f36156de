package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlphaEquivReflexiveSymmetricTransitive(t *testing.T) {
	require := require.New(t)

	a := Lam(App(Var(0), Nat(1)))
	b := Lam(App(Var(0), Nat(1)))
	c := Lam(App(Var(0), Nat(1)))

	require.True(AlphaEquiv(a, a), "reflexive")
	require.True(AlphaEquiv(a, b), "a alpha-equiv b")
	require.True(AlphaEquiv(b, a), "symmetric")
	require.True(AlphaEquiv(b, c))
	require.True(AlphaEquiv(a, c), "transitive")

	d := Lam(App(Var(0), Nat(2)))
	require.False(AlphaEquiv(a, d))
}

func TestBetaReduceStepIdentityApplication(t *testing.T) {
	require := require.New(t)

	// (λ.0) 1 -> 1
	expr := App(Lam(Var(0)), Nat(1))
	result, ok := BetaReduceStep(expr)
	require.True(ok)
	require.True(result.Equal(Nat(1)))
}

func TestBetaReduceStepConstFunction(t *testing.T) {
	require := require.New(t)

	// (λ.λ.1) a b -- substituting `a` for variable 1 inside two binders.
	constFn := Lam(Lam(Var(1)))
	expr := App(App(constFn, Nat(7)), Nat(9))

	result, steps, exhausted := Normalize(expr, 0)
	require.False(exhausted)
	require.Equal(2, steps)
	require.True(result.Equal(Nat(7)))
}

func TestEtaReduceRemovesRedundantWrapper(t *testing.T) {
	require := require.New(t)

	// λ.(f 0) where f does not mention 0 -> f
	f := Nat(42)
	wrapped := Lam(App(Shift(f, 1), Var(0)))

	require.True(IsEtaRedex(wrapped))
	result, ok := EtaReduce(wrapped)
	require.True(ok)
	require.True(result.Equal(f))
}

func TestEtaReduceRejectsCapturingWrapper(t *testing.T) {
	require := require.New(t)
	// λ.(0 0) -- 0 is free in the function position, not an eta-redex.
	notEta := Lam(App(Var(0), Var(0)))
	require.False(IsEtaRedex(notEta))
}

func TestNormalizationIdempotent(t *testing.T) {
	require := require.New(t)

	expr := App(App(Lam(Lam(Var(1))), Nat(3)), Nat(4))
	once, _, exhausted1 := Normalize(expr, 0)
	require.False(exhausted1)

	twice, _, exhausted2 := Normalize(once, 0)
	require.False(exhausted2)

	require.True(AlphaEquiv(once, twice))
}

func TestNormalFormClosureUnderFullFuel(t *testing.T) {
	require := require.New(t)

	expr := App(Lam(Var(0)), App(Lam(Var(0)), Nat(5)))
	result, _, exhausted := Normalize(expr, 0)
	require.False(exhausted)
	require.True(IsNormalForm(result))
}

func TestNormalizeExhaustsFuelOnNonTerminatingTerm(t *testing.T) {
	require := require.New(t)

	// omega = (λ.(0 0)) (λ.(0 0)) never reaches a normal form.
	selfApp := Lam(App(Var(0), Var(0)))
	omega := App(selfApp, selfApp)

	_, steps, exhausted := Normalize(omega, 50)
	require.True(exhausted)
	require.Equal(50, steps)
}

func TestShiftLeavesBoundVariablesAlone(t *testing.T) {
	require := require.New(t)

	// λ.0 shifted by 5 should stay λ.0: the bound variable is below cutoff.
	identity := Lam(Var(0))
	shifted := Shift(identity, 5)
	require.True(shifted.Equal(identity))
}

func TestSubstituteCaptureAvoiding(t *testing.T) {
	require := require.New(t)

	// (λ.λ.1) (0) -- substituting the outer-scope variable 0 for the
	// inner reference to variable 1 must shift it past the new binder.
	body := Lam(Var(1))
	arg := Var(0)
	result := Substitute(body, arg)
	require.True(result.Equal(Lam(Var(1))))
}
