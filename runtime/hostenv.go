package runtime

import (
	"github.com/latticerun/physics/bytecode"
	"github.com/latticerun/physics/vm"
)

// SchedulingHostEnv is the live HostEnv an actor VM runs against once
// deployed through a Runtime: sensor/clock/network/persistence behave
// exactly like vm.MockHostEnv's deterministic stand-ins, but spawn-actor
// and terminate-actor are wired to the real scheduler rather than
// no-opping.
//
// spawn-actor has no way to receive an arbitrary child program through a
// HostCall's plain Value arguments, so it spawns from a template
// registered ahead of time with RegisterTemplate, selected by the
// integer the caller passes as its first argument -- the runtime
// equivalent of a fixed actor-class table rather than fully dynamic code
// loading, which is out of scope for a host function interface built
// around bytecode.Value arguments.
type SchedulingHostEnv struct {
	*vm.MockHostEnv

	rt       *Runtime
	selfID   uint32
	template func(idx int64) (*vm.VM, uint8, bool)
}

// NewSchedulingHostEnv returns a HostEnv for actorID backed by rt's
// scheduler, using lookupTemplate to resolve a spawn-actor call's
// template index into a fresh child VM, its base priority, and whether
// it should be scheduled as the spawning actor's child.
func NewSchedulingHostEnv(rt *Runtime, actorID uint32, lookupTemplate func(idx int64) (*vm.VM, uint8, bool)) *SchedulingHostEnv {
	return &SchedulingHostEnv{
		MockHostEnv: vm.NewMockHostEnv(),
		rt:          rt,
		selfID:      actorID,
		template:    lookupTemplate,
	}
}

// SpawnActor implements vm.HostEnv: args[0] is the template index (as an
// Int). The template's third result decides whether the new actor is
// scheduled as a child of the spawning actor, which is what the
// delegation/termination rules (spec.md §4.5: several capability
// operations are restricted to "self or children") consult. Returns the
// new actor's id as an ActorRef.
func (h *SchedulingHostEnv) SpawnActor(args []bytecode.Value) (bytecode.Value, error) {
	if len(args) == 0 || args[0].Kind != bytecode.ValInt {
		return bytecode.Nil, nil
	}
	childVM, basePriority, hasParent := h.template(args[0].Int)
	if childVM == nil {
		return bytecode.Nil, nil
	}
	actor := h.rt.Sched.Spawn(childVM, basePriority, h.selfID, hasParent)
	return bytecode.ActorRef(actor.ID), nil
}

// TerminateActor implements vm.HostEnv: args[0] names the target actor
// id. Only the actor itself or one of its children may be terminated
// this way (spec.md §4.5); any other target is silently refused rather
// than erroring the caller, matching how denied host calls already
// surface through HasCap rather than a hard VM error.
func (h *SchedulingHostEnv) TerminateActor(args []bytecode.Value) (bytecode.Value, error) {
	if len(args) == 0 || args[0].Kind != bytecode.ValActorID {
		return bytecode.Nil, nil
	}
	target := args[0].ActorID
	if target != h.selfID {
		a, ok := h.rt.Sched.Actor(target)
		if !ok {
			return bytecode.Nil, nil
		}
		if !(a.HasParent && a.ParentID == h.selfID) {
			return bytecode.Nil, nil
		}
	}
	h.rt.Sched.Terminate(target)
	return bytecode.Nil, nil
}
