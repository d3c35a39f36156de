// Package proof implements the fixed inference-rule proof checker that
// rides alongside compiled artifacts: a proof term witnesses that two core
// expressions are provably equal (alpha-equivalent after zero or more
// beta/eta steps), and Verify checks that witness locally, without
// re-reducing the endpoints from scratch.
package proof

import (
	"github.com/latticerun/physics/core"
)

// RuleKind discriminates the closed set of inference rules a Term may use.
type RuleKind uint8

const (
	RuleRefl RuleKind = iota
	RuleBetaStep
	RuleEtaStep
	RuleTrans
	RuleCongLam
	RuleCongApp
)

func (k RuleKind) String() string {
	switch k {
	case RuleRefl:
		return "Refl"
	case RuleBetaStep:
		return "BetaStep"
	case RuleEtaStep:
		return "EtaStep"
	case RuleTrans:
		return "Trans"
	case RuleCongLam:
		return "CongLam"
	case RuleCongApp:
		return "CongApp"
	default:
		return "Unknown"
	}
}

// Term is a proof tree built from {Refl, BetaStep, EtaStep, Trans,
// CongLam, CongApp}. Only the fields relevant to Rule are populated.
type Term struct {
	Rule RuleKind

	// Refl
	Expr *core.Expr

	// BetaStep / EtaStep
	Redex      *core.Expr
	Contractum *core.Expr

	// Trans
	P1, P2 *Term

	// CongLam
	ProofBody *Term

	// CongApp
	ProofFn, ProofArg *Term
}

// Refl builds a proof that e proves equal to itself.
func Refl(e *core.Expr) *Term { return &Term{Rule: RuleRefl, Expr: e} }

// BetaStep builds a proof that redex proves equal to contractum, where
// redex is a beta-redex and contractum is its one-step reduct.
func BetaStep(redex, contractum *core.Expr) *Term {
	return &Term{Rule: RuleBetaStep, Redex: redex, Contractum: contractum}
}

// EtaStep builds a proof of eta-equivalence between original and contractum.
func EtaStep(original, contractum *core.Expr) *Term {
	return &Term{Rule: RuleEtaStep, Redex: original, Contractum: contractum}
}

// Trans builds a proof of a ≡ c from p1 : a ≡ b and p2 : b ≡ c.
func Trans(p1, p2 *Term) *Term { return &Term{Rule: RuleTrans, P1: p1, P2: p2} }

// CongLam lifts a proof of b ≡ b' to a proof of λ.b ≡ λ.b'.
func CongLam(body *Term) *Term { return &Term{Rule: RuleCongLam, ProofBody: body} }

// CongApp lifts proofs of f ≡ f' and a ≡ a' to a proof of (f a) ≡ (f' a').
func CongApp(fn, arg *Term) *Term { return &Term{Rule: RuleCongApp, ProofFn: fn, ProofArg: arg} }

// Error names the offending sub-proof of a failed verification.
type Error struct {
	Rule    RuleKind
	Message string
}

func (e *Error) Error() string {
	return e.Rule.String() + ": " + e.Message
}

// Verify checks a proof term's local structure and returns the two
// expressions it proves equal. Verification is purely structural: each
// rule's check consults only its own sub-proofs' already-verified
// endpoints (and, for Trans, structural equality of the middle term) --
// no endpoint is re-reduced from the kernel.
func Verify(p *Term) (left, right *core.Expr, err error) {
	if p == nil {
		return nil, nil, &Error{Message: "nil proof term"}
	}
	switch p.Rule {
	case RuleRefl:
		if p.Expr == nil {
			return nil, nil, &Error{Rule: p.Rule, Message: "Refl requires a non-nil expression"}
		}
		return p.Expr, p.Expr, nil

	case RuleBetaStep:
		if p.Redex == nil || p.Contractum == nil {
			return nil, nil, &Error{Rule: p.Rule, Message: "BetaStep requires redex and contractum"}
		}
		if !core.IsBetaRedex(p.Redex) {
			return nil, nil, &Error{Rule: p.Rule, Message: "left-hand side is not a beta-redex"}
		}
		want := core.Substitute(p.Redex.Fn.Body, p.Redex.Arg)
		if !want.Equal(p.Contractum) {
			return nil, nil, &Error{Rule: p.Rule, Message: "contractum does not match one-step reduct of redex"}
		}
		return p.Redex, p.Contractum, nil

	case RuleEtaStep:
		if p.Redex == nil || p.Contractum == nil {
			return nil, nil, &Error{Rule: p.Rule, Message: "EtaStep requires original and contractum"}
		}
		if !core.IsEtaRedex(p.Redex) {
			return nil, nil, &Error{Rule: p.Rule, Message: "left-hand side is not an eta-redex"}
		}
		want := core.Shift(p.Redex.Body.Fn, -1)
		if !want.Equal(p.Contractum) {
			return nil, nil, &Error{Rule: p.Rule, Message: "contractum does not match eta-reduct of original"}
		}
		return p.Redex, p.Contractum, nil

	case RuleTrans:
		if p.P1 == nil || p.P2 == nil {
			return nil, nil, &Error{Rule: p.Rule, Message: "Trans requires two sub-proofs"}
		}
		a, b1, err := Verify(p.P1)
		if err != nil {
			return nil, nil, err
		}
		b2, c, err := Verify(p.P2)
		if err != nil {
			return nil, nil, err
		}
		if !b1.Equal(b2) {
			return nil, nil, &Error{Rule: p.Rule, Message: "middle terms of Trans sub-proofs are not structurally equal"}
		}
		return a, c, nil

	case RuleCongLam:
		if p.ProofBody == nil {
			return nil, nil, &Error{Rule: p.Rule, Message: "CongLam requires a body sub-proof"}
		}
		b, bPrime, err := Verify(p.ProofBody)
		if err != nil {
			return nil, nil, err
		}
		return core.Lam(b), core.Lam(bPrime), nil

	case RuleCongApp:
		if p.ProofFn == nil || p.ProofArg == nil {
			return nil, nil, &Error{Rule: p.Rule, Message: "CongApp requires function and argument sub-proofs"}
		}
		f, fPrime, err := Verify(p.ProofFn)
		if err != nil {
			return nil, nil, err
		}
		a, aPrime, err := Verify(p.ProofArg)
		if err != nil {
			return nil, nil, err
		}
		return core.App(f, a), core.App(fPrime, aPrime), nil

	default:
		return nil, nil, &Error{Rule: p.Rule, Message: "unknown inference rule"}
	}
}

// ProveConsistency is a degenerate proof -- Refl on a canonical term --
// that exists purely so implementations can confirm the checker is wired
// up correctly: it always verifies.
func ProveConsistency() *Term {
	return Refl(core.Nat(0))
}

// ProveBetaReduction builds the canonical single-step BetaStep proof for
// an application whose function position is a lambda, failing if e is not
// itself a beta-redex.
func ProveBetaReduction(e *core.Expr) (*Term, error) {
	if !core.IsBetaRedex(e) {
		return nil, &Error{Rule: RuleBetaStep, Message: "expression is not a beta-redex"}
	}
	contractum := core.Substitute(e.Fn.Body, e.Arg)
	return BetaStep(e, contractum), nil
}

// stepWithProof performs a single leftmost-outermost beta (then eta) step
// on e, the same traversal order BetaReduceStep/EtaReduce use, but
// additionally builds the CongLam/CongApp-lifted proof term witnessing
// that one step. This is necessary because BetaStep/EtaStep only prove
// equality of the redex itself; reducing a sub-term nested inside a
// lambda or an application requires lifting that local proof to the
// whole term via congruence.
func stepWithProof(e *core.Expr) (result *core.Expr, pf *Term, ok bool) {
	if e == nil {
		return nil, nil, false
	}
	if core.IsBetaRedex(e) {
		contractum := core.Substitute(e.Fn.Body, e.Arg)
		return contractum, BetaStep(e, contractum), true
	}
	if core.IsEtaRedex(e) {
		contractum := core.Shift(e.Body.Fn, -1)
		return contractum, EtaStep(e, contractum), true
	}
	switch e.Kind {
	case core.KindLam:
		if r, p, ok := stepWithProof(e.Body); ok {
			return core.Lam(r), CongLam(p), true
		}
		return e, nil, false
	case core.KindApp:
		if r, p, ok := stepWithProof(e.Fn); ok {
			return core.App(r, e.Arg), CongApp(p, Refl(e.Arg)), true
		}
		if r, p, ok := stepWithProof(e.Arg); ok {
			return core.App(e.Fn, r), CongApp(Refl(e.Fn), p), true
		}
		return e, nil, false
	default:
		return e, nil, false
	}
}

// ProveNormalization reduces e to normal form with the given fuel and
// assembles a Trans-chain of per-step proofs (each individually lifted
// through CongLam/CongApp where the redex is nested) witnessing e ≡
// normalize(e). It fails if fuel is exhausted before a normal form is
// reached, since the resulting proof would only witness e ≡ (partial
// reduct), not e ≡ normal-form.
func ProveNormalization(e *core.Expr, fuel int) (*Term, *core.Expr, error) {
	cur := e
	chain := Refl(e)
	if fuel <= 0 {
		fuel = core.DefaultFuel
	}
	for i := 0; i < fuel; i++ {
		r, p, ok := stepWithProof(cur)
		if !ok {
			return chain, cur, nil
		}
		chain = Trans(chain, p)
		cur = r
	}
	return nil, nil, &Error{Message: "normalization fuel exhausted before reaching a proof-complete normal form"}
}
