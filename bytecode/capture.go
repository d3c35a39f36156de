package bytecode

// CaptureKind tells MakeClosure where to find one captured variable's
// cell at the moment it executes: either a slot in the currently
// executing frame's own locals, or one of that frame's own upvalue
// cells (a capture the enclosing function already captured from
// further out, chained inward so nesting depth is unbounded).
type CaptureKind uint8

const (
	CaptureLocal CaptureKind = iota
	CaptureUpvalue
)

// CaptureSource is one entry of a closure's capture list: where, in the
// frame executing the MakeClosure instruction, to find the cell to
// hand to the new closure.
type CaptureSource struct {
	Kind  CaptureKind
	Index int32
}

// AddCaptureList appends a closure's ordered capture-source list and
// returns its index into Captures. MakeClosure's B operand is this
// index (a's Functions/Captures tables are parallel only by
// convention -- the compiler is free to reuse a capture list across
// functions with identical free-variable shape, though it currently
// does not).
func (a *CompilationArtifact) AddCaptureList(sources []CaptureSource) int32 {
	a.Captures = append(a.Captures, sources)
	return int32(len(a.Captures) - 1)
}
