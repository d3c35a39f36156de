// Package eval implements the deterministic big-step reference evaluator
// over core expressions. It has no dependency on the VM; compiled+executed
// programs are tested for agreement against it on terminating, normal-form
// programs (spec.md §8, "Evaluator agreement").
package eval

import (
	"github.com/cockroachdb/errors"

	"github.com/latticerun/physics/core"
)

// ResultKind discriminates the two shapes an evaluation can terminate in.
type ResultKind uint8

const (
	KindValue ResultKind = iota
	KindClosure
)

// Result is the outcome of evaluating a core expression: either a
// (further-irreducible) core expression, or a closure pairing a lambda
// body with the environment captured at the point the lambda was
// evaluated.
type Result struct {
	Kind    ResultKind
	Value   *core.Expr
	Body    *core.Expr
	Env     Env
}

// Env maps de Bruijn indices to already-evaluated results. Index 0 is the
// most-recently-bound variable; Extend prepends, matching how a new
// binder shadows everything bound outside it.
type Env []Result

// Extend returns a new environment with r bound at index 0 and every
// existing binding's index increased by one.
func (e Env) Extend(r Result) Env {
	out := make(Env, 0, len(e)+1)
	out = append(out, r)
	return append(out, e...)
}

// Lookup returns the result bound to de Bruijn index idx.
func (e Env) Lookup(idx uint32) (Result, error) {
	if int(idx) >= len(e) {
		return Result{}, errors.Newf("eval: unbound de Bruijn index %d in environment of size %d", idx, len(e))
	}
	return e[idx], nil
}

// resultToExpr converts an evaluation Result back to a core expression,
// needed when a closure is embedded as a sub-term of the final value
// returned from Eval (e.g. the result of evaluating a Pair whose first
// component evaluated to a closure).
func resultToExpr(r Result) *core.Expr {
	if r.Kind == KindValue {
		return r.Value
	}
	// A closure with a non-empty environment has no direct core.Expr
	// representation (core.Expr has no notion of captured bindings); we
	// approximate it by the literal lambda body under its own binder.
	// Eval itself uses it to embed a closure inside a Pair and to render
	// a non-function value in an application error.
	return core.Lam(r.Body)
}

// Eval performs deterministic big-step evaluation of expr under env.
//
//   - A variable looks itself up in env.
//   - A lambda evaluates to a Closure capturing the current env.
//   - An application evaluates the function position; if it is a
//     Closure, the argument is evaluated and the closure's env is
//     extended with it, then the body is evaluated in the extended env.
//   - A literal or pair evaluates its components and reconstructs itself
//     (Pair components may themselves produce closures, which are folded
//     back into core.Expr form via resultToExpr so a Pair's Result is
//     always KindValue).
func Eval(env Env, expr *core.Expr) (Result, error) {
	if expr == nil {
		return Result{}, errors.New("eval: nil expression")
	}
	switch expr.Kind {
	case core.KindVar:
		return env.Lookup(expr.Index)

	case core.KindLam:
		return Result{Kind: KindClosure, Body: expr.Body, Env: env}, nil

	case core.KindNat:
		return Result{Kind: KindValue, Value: expr}, nil

	case core.KindPair:
		first, err := Eval(env, expr.First)
		if err != nil {
			return Result{}, err
		}
		second, err := Eval(env, expr.Second)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: KindValue, Value: core.MkPair(resultToExpr(first), resultToExpr(second))}, nil

	case core.KindApp:
		fn, err := Eval(env, expr.Fn)
		if err != nil {
			return Result{}, err
		}
		if fn.Kind != KindClosure {
			return Result{}, errors.Newf("eval: application of non-function value %s", resultToExpr(fn).String())
		}
		arg, err := Eval(env, expr.Arg)
		if err != nil {
			return Result{}, err
		}
		return Eval(fn.Env.Extend(arg), fn.Body)

	default:
		return Result{}, errors.Newf("eval: unknown expression kind %v", expr.Kind)
	}
}
