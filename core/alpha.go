package core

// AlphaEquiv reports whether a and b are alpha-equivalent. On de Bruijn
// terms this coincides with structural equality: two variables are
// alpha-equal iff their indices coincide under the (already-implicit)
// zipped binder context, lambdas are alpha-equal iff their bodies are,
// and applications are alpha-equal pointwise. AlphaEquiv is kept as its
// own entry point (rather than an alias for Equal) because it is the
// vocabulary spec.md's testable properties are phrased in, and because a
// future de Bruijn-free front representation could make the two diverge.
func AlphaEquiv(a, b *Expr) bool {
	return a.Equal(b)
}

// isFree reports whether the variable at de Bruijn index `idx` occurs
// free in e.
func isFree(e *Expr, idx uint32) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindVar:
		return e.Index == idx
	case KindLam:
		return isFree(e.Body, idx+1)
	case KindApp:
		return isFree(e.Fn, idx) || isFree(e.Arg, idx)
	case KindNat:
		return false
	case KindPair:
		return isFree(e.First, idx) || isFree(e.Second, idx)
	default:
		return false
	}
}
