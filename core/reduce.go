package core

// IsBetaRedex reports whether e is a beta-redex: an application whose
// function position is a lambda.
func IsBetaRedex(e *Expr) bool {
	return e != nil && e.Kind == KindApp && e.Fn != nil && e.Fn.Kind == KindLam
}

// BetaReduceStep performs a single call-by-name, leftmost-outermost beta
// reduction step. If e itself is a redex, its contractum is returned
// directly. Otherwise the leftmost-outermost redex inside e is reduced
// and the surrounding structure is returned unchanged; ok is false if e
// contains no redex at all (e is already in normal form with respect to
// beta).
func BetaReduceStep(e *Expr) (result *Expr, ok bool) {
	if e == nil {
		return nil, false
	}
	if IsBetaRedex(e) {
		return Substitute(e.Fn.Body, e.Arg), true
	}
	switch e.Kind {
	case KindApp:
		if r, ok := BetaReduceStep(e.Fn); ok {
			return App(r, e.Arg), true
		}
		if r, ok := BetaReduceStep(e.Arg); ok {
			return App(e.Fn, r), true
		}
		return e, false
	case KindLam:
		if r, ok := BetaReduceStep(e.Body); ok {
			return Lam(r), true
		}
		return e, false
	case KindPair:
		if r, ok := BetaReduceStep(e.First); ok {
			return MkPair(r, e.Second), true
		}
		if r, ok := BetaReduceStep(e.Second); ok {
			return MkPair(e.First, r), true
		}
		return e, false
	default:
		return e, false
	}
}

// IsEtaRedex reports whether e has the shape λ.(f 0) with 0 not free in f.
func IsEtaRedex(e *Expr) bool {
	if e == nil || e.Kind != KindLam || e.Body == nil || e.Body.Kind != KindApp {
		return false
	}
	arg := e.Body.Arg
	if arg == nil || arg.Kind != KindVar || arg.Index != 0 {
		return false
	}
	return !isFree(e.Body.Fn, 0)
}

// EtaReduce performs a single top-level eta reduction: λ.(e 0) reduces to
// e with indices shifted down by one (undoing the shift that crossing the
// now-removed binder had introduced). If e is not an eta-redex at the top
// level, EtaReduce searches the same leftmost-outermost positions
// BetaReduceStep does.
func EtaReduce(e *Expr) (result *Expr, ok bool) {
	if e == nil {
		return nil, false
	}
	if IsEtaRedex(e) {
		return Shift(e.Body.Fn, -1), true
	}
	switch e.Kind {
	case KindLam:
		if r, ok := EtaReduce(e.Body); ok {
			return Lam(r), true
		}
		return e, false
	case KindApp:
		if r, ok := EtaReduce(e.Fn); ok {
			return App(r, e.Arg), true
		}
		if r, ok := EtaReduce(e.Arg); ok {
			return App(e.Fn, r), true
		}
		return e, false
	case KindPair:
		if r, ok := EtaReduce(e.First); ok {
			return MkPair(r, e.Second), true
		}
		if r, ok := EtaReduce(e.Second); ok {
			return MkPair(e.First, r), true
		}
		return e, false
	default:
		return e, false
	}
}

// DefaultFuel bounds the number of reduction steps Normalize will take
// before giving up and returning the partially-reduced term.
const DefaultFuel = 100_000

// Normalize applies beta (then eta, once no beta-redex remains at a given
// step) reduction in normal order up to fuel steps, returning the result
// and the number of steps actually taken. If fuel is exhausted the
// partially-reduced term is returned with exhausted=true.
func Normalize(e *Expr, fuel int) (result *Expr, steps int, exhausted bool) {
	if fuel <= 0 {
		fuel = DefaultFuel
	}
	cur := e
	for steps = 0; steps < fuel; steps++ {
		if r, ok := BetaReduceStep(cur); ok {
			cur = r
			continue
		}
		if r, ok := EtaReduce(cur); ok {
			cur = r
			continue
		}
		return cur, steps, false
	}
	return cur, steps, true
}

// IsNormalForm reports whether e admits no further beta or eta reduction.
func IsNormalForm(e *Expr) bool {
	if _, ok := BetaReduceStep(e); ok {
		return false
	}
	_, ok := EtaReduce(e)
	return !ok
}
