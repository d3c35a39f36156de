package vm

import "github.com/latticerun/physics/bytecode"

// Frame is one call activation: spec.md §4.4's "Return-ip, stack-start,
// saved instruction stream, recursion depth, local slots, closed-over
// map, tail-call flag, frame-id", generalized so "local slots" and
// "closed-over map" are both slices of boxed Cells (see Cell) rather
// than bare values, which is what lets a MakeClosure capture survive
// past the frame that created it.
type Frame struct {
	ReturnIP       int
	ReturnCode     *[]bytecode.Instruction
	StackStart     int
	Locals         []*Cell
	Upvalues       []*Cell
	RecursionDepth int
	TailCall       bool
	FrameID        uint64
}
