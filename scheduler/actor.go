package scheduler

import (
	"github.com/latticerun/physics/bytecode"
	"github.com/latticerun/physics/vm"
)

// Actor is one scheduled execution context: spec.md §3's "identifier, VM
// state, mailbox (ordered queue of values), wait-flag, granted
// capability set, pending-request queue, parent id (optional), base
// priority, optional priority boost."
type Actor struct {
	ID uint32
	VM *vm.VM

	Mailbox  []bytecode.Value
	external []bytecode.Value

	ParentID  uint32
	HasParent bool

	BasePriority  uint8
	PriorityBoost uint8

	finished            bool
	errored             bool
	terminated          bool
	waitingForConsensus bool
}

// EffectivePriority is base priority plus any boost (spec.md §4.5's
// priority selection mode: "highest effective priority (base + boost)").
func (a *Actor) EffectivePriority() int {
	return int(a.BasePriority) + int(a.PriorityBoost)
}

// Runnable reports whether a is eligible for scheduler selection this
// tick.
func (a *Actor) Runnable() bool {
	return !a.finished && !a.terminated && !a.errored && !a.waitingForConsensus
}

// Done reports whether a has permanently left the actor set (finished,
// errored, or terminated) and should be pruned.
func (a *Actor) Done() bool {
	return a.finished || a.errored || a.terminated
}

func (a *Actor) enqueueExternal(msg bytecode.Value) {
	a.external = append(a.external, msg)
}

// drainExternal moves every queued external message into the mailbox, in
// arrival order (spec.md §5(b)/(d): messages delivered in send order,
// mailbox draining preserves arrival order).
func (a *Actor) drainExternal() {
	if len(a.external) == 0 {
		return
	}
	a.Mailbox = append(a.Mailbox, a.external...)
	a.external = nil
}

// drainMailbox pushes every mailbox message onto the actor's VM data
// stack, in arrival order, and empties the mailbox (spec.md §4.5: "drain
// its mailbox into its data stack").
func (a *Actor) drainMailbox() {
	for _, msg := range a.Mailbox {
		a.VM.PushExternal(msg)
	}
	a.Mailbox = nil
}
