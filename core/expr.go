// Package core implements the de Bruijn-indexed lambda calculus kernel:
// expressions, alpha-equivalence, beta/eta reduction, and normalization.
// This is the ground truth that the evaluator and compiler are measured
// against; it has no dependency on the VM or compiler packages.
package core

import "fmt"

// Kind discriminates the algebraic cases of an Expr.
type Kind uint8

const (
	KindVar Kind = iota
	KindLam
	KindApp
	KindNat
	KindPair
)

func (k Kind) String() string {
	switch k {
	case KindVar:
		return "Var"
	case KindLam:
		return "Lam"
	case KindApp:
		return "App"
	case KindNat:
		return "Nat"
	case KindPair:
		return "Pair"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Expr is a core lambda-calculus term. Exactly one of the fields relevant
// to Kind is populated; Expr is intentionally a flat struct rather than an
// interface hierarchy so that structural equality and de Bruijn shifting
// can be written as direct recursion without type switches on pointers.
type Expr struct {
	Kind Kind

	// KindVar
	Index uint32

	// KindLam
	Body *Expr

	// KindApp
	Fn  *Expr
	Arg *Expr

	// KindNat
	Nat uint64

	// KindPair
	First  *Expr
	Second *Expr
}

// Var constructs a de Bruijn variable reference.
func Var(index uint32) *Expr { return &Expr{Kind: KindVar, Index: index} }

// Lam constructs a lambda abstraction with the given body.
func Lam(body *Expr) *Expr { return &Expr{Kind: KindLam, Body: body} }

// App constructs a function application.
func App(fn, arg *Expr) *Expr { return &Expr{Kind: KindApp, Fn: fn, Arg: arg} }

// Nat constructs a natural-number literal.
func Nat(n uint64) *Expr { return &Expr{Kind: KindNat, Nat: n} }

// MkPair constructs a pair of two sub-terms.
func MkPair(first, second *Expr) *Expr { return &Expr{Kind: KindPair, First: first, Second: second} }

// Equal is structural equality: it does not account for alpha-equivalence
// beyond what is already implied by de Bruijn indices (two expressions
// that differ only by bound-variable naming have identical de Bruijn form
// and so are already structurally Equal; AlphaEquiv is therefore the same
// check as Equal).
func (e *Expr) Equal(o *Expr) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil {
		return false
	}
	if e.Kind != o.Kind {
		return false
	}
	switch e.Kind {
	case KindVar:
		return e.Index == o.Index
	case KindLam:
		return e.Body.Equal(o.Body)
	case KindApp:
		return e.Fn.Equal(o.Fn) && e.Arg.Equal(o.Arg)
	case KindNat:
		return e.Nat == o.Nat
	case KindPair:
		return e.First.Equal(o.First) && e.Second.Equal(o.Second)
	default:
		return false
	}
}

// String renders a compact, unambiguous textual form used in error
// messages and proof diagnostics.
func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case KindVar:
		return fmt.Sprintf("%d", e.Index)
	case KindLam:
		return fmt.Sprintf("(λ.%s)", e.Body.String())
	case KindApp:
		return fmt.Sprintf("(%s %s)", e.Fn.String(), e.Arg.String())
	case KindNat:
		return fmt.Sprintf("%d", e.Nat)
	case KindPair:
		return fmt.Sprintf("<%s, %s>", e.First.String(), e.Second.String())
	default:
		return "?"
	}
}

// shift adds delta to every free variable in e, treating indices >= cutoff
// as free. delta may be negative (used by eta-reduction); callers must
// ensure the result never underflows a well-formed closed term.
func shift(e *Expr, delta int, cutoff uint32) *Expr {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case KindVar:
		if e.Index < cutoff {
			return e
		}
		return Var(uint32(int64(e.Index) + int64(delta)))
	case KindLam:
		return Lam(shift(e.Body, delta, cutoff+1))
	case KindApp:
		return App(shift(e.Fn, delta, cutoff), shift(e.Arg, delta, cutoff))
	case KindNat:
		return e
	case KindPair:
		return MkPair(shift(e.First, delta, cutoff), shift(e.Second, delta, cutoff))
	default:
		return e
	}
}

// Shift is the public, zero-cutoff form of shift, used when splicing a
// closed term into a new binder context (e.g. substituting an argument
// that itself captures free variables from the call site).
func Shift(e *Expr, delta int) *Expr { return shift(e, delta, 0) }

// substitute replaces the variable at de Bruijn index `depth` (0 = the
// innermost binder at the point of substitution) with `arg`, shifting
// arg's free variables up by `depth` each time a binder is crossed, and
// shifting the result down by one wherever a variable above `depth` is
// renumbered to account for the binder substitute removes.
func substitute(e *Expr, depth uint32, arg *Expr) *Expr {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case KindVar:
		switch {
		case e.Index == depth:
			return Shift(arg, int(depth))
		case e.Index > depth:
			return Var(e.Index - 1)
		default:
			return e
		}
	case KindLam:
		return Lam(substitute(e.Body, depth+1, arg))
	case KindApp:
		return App(substitute(e.Fn, depth, arg), substitute(e.Arg, depth, arg))
	case KindNat:
		return e
	case KindPair:
		return MkPair(substitute(e.First, depth, arg), substitute(e.Second, depth, arg))
	default:
		return e
	}
}

// Substitute performs the capture-avoiding beta substitution body[0 := arg]
// used by a single beta-reduction step: every free occurrence of variable
// 0 in body is replaced by arg (with arg's own free variables shifted to
// account for body's binder), and all other free variables in body shift
// down by one to close the gap left by the consumed binder.
func Substitute(body, arg *Expr) *Expr {
	return substitute(body, 0, arg)
}
