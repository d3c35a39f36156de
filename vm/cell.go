package vm

import "github.com/latticerun/physics/bytecode"

// Cell is a boxed local-variable slot. Locals are always held behind a
// *Cell, never a bare Value, so that a closure capturing a local captures
// the box itself -- reads through the capture observe later writes to
// the same cell. This is how letrec's three-state binding (Uninitialized
// -> Recursive -> Normal, spec.md §4.4) is realized at runtime: a cell
// starts !Initialized, and a lambda body closing over a sibling letrec
// binding only ever reads the cell after the letrec has assigned it,
// since the closure isn't invoked until later.
type Cell struct {
	Value       bytecode.Value
	Initialized bool
}

// NewCell returns an uninitialized cell.
func NewCell() *Cell {
	return &Cell{}
}

// NewInitializedCell returns a cell already holding v (used for lambda
// parameters, which are always bound at call time).
func NewInitializedCell(v bytecode.Value) *Cell {
	return &Cell{Value: v, Initialized: true}
}
