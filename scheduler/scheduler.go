// Package scheduler implements spec.md §4.5's tick loop and cooperative
// multi-actor runtime: one actor runs to its next suspension point per
// tick, external message queues feed actor mailboxes which feed VM data
// stacks, and a capability escalation (RequestCap/GrantCap/RevokeCap)
// suspends the issuing VM until the wired authority.Authority resolves
// it. The scheduler is the sole implementor of vm.Outbox and
// authority.ActorDirectory -- both packages depend on it only through
// those narrow interfaces, the same way the teacher's engine wires
// independent packages together rather than letting them import each
// other.
package scheduler

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/latticerun/physics/authority"
	"github.com/latticerun/physics/bytecode"
	"github.com/latticerun/physics/capability"
	"github.com/latticerun/physics/telemetry/log"
	"github.com/latticerun/physics/telemetry/metrics"
	"github.com/latticerun/physics/vm"
)

// ErrNoRunnableActors is returned by Tick when the actor set is empty or
// every actor is blocked (spec.md §4.5: "If the actor set is empty, tick
// errors").
var ErrNoRunnableActors = errors.New("scheduler: no runnable actors")

const snapshotInterval = 50

// TickOutcome classifies why Tick returned.
type TickOutcome uint8

const (
	TickYielded TickOutcome = iota
	TickFinished
	TickActorErrored
	TickWaitingForConsensus
	TickCapabilityResolved
)

func (o TickOutcome) String() string {
	switch o {
	case TickFinished:
		return "Finished"
	case TickActorErrored:
		return "ActorErrored"
	case TickWaitingForConsensus:
		return "WaitingForConsensus"
	case TickCapabilityResolved:
		return "CapabilityResolved"
	default:
		return "Yielded"
	}
}

// TickResult reports which actor ran and what happened.
type TickResult struct {
	ActorID uint32
	Outcome TickOutcome
	Value   bytecode.Value
	Err     *vm.RuntimeError
}

// Scheduler owns the actor registry, selection policy, capability
// authority and resource quotas for one cooperatively-scheduled actor
// system (spec.md §3's "Scheduler state").
type Scheduler struct {
	actors  []*Actor
	byID    map[uint32]*Actor
	current int

	Mode                Mode
	StarvationThreshold int
	starvationCounter   int

	Authority *authority.Authority
	Quotas    *authority.QuotaTable

	nextActorID uint32
	tickCount   int64
	lastSteps   map[uint32]int64
	lastMemory  map[uint32]int64

	Log     log.Logger
	Metrics *metrics.Runtime
}

// New returns an empty Scheduler in the given selection mode, enforcing
// the given global resource ceilings (zero means unbounded). logger and
// met may be nil.
func New(mode Mode, globalMemoryLimit, globalCPULimit int64, logger log.Logger, met *metrics.Runtime) *Scheduler {
	if logger == nil {
		logger = log.NewNoOp()
	}
	s := &Scheduler{
		byID:                map[uint32]*Actor{},
		current:             -1,
		Mode:                mode,
		StarvationThreshold: defaultStarvationThreshold,
		Quotas:              authority.NewQuotaTable(globalMemoryLimit, globalCPULimit),
		lastSteps:           map[uint32]int64{},
		lastMemory:          map[uint32]int64{},
		Log:                 logger,
		Metrics:             met,
	}
	s.Authority = authority.New(s, logger, met)
	return s
}

// Spawn registers actorVM as a new actor, wiring the scheduler in as its
// Outbox and assigning it the next actor id. It implements the actor
// half of spec.md §4.4's host func_id 3 (sys-create-actor) for whatever
// caller (the VM's HostEnv, or a test) drives actor creation.
func (s *Scheduler) Spawn(actorVM *vm.VM, basePriority uint8, parentID uint32, hasParent bool) *Actor {
	s.nextActorID++
	id := s.nextActorID
	actorVM.ActorID = id
	actorVM.Outbox = s

	a := &Actor{ID: id, VM: actorVM, BasePriority: basePriority, ParentID: parentID, HasParent: hasParent}
	s.actors = append(s.actors, a)
	s.byID[id] = a
	s.Quotas.SetQuota(id, authority.Quota{MemoryBytes: actorVM.Artifact.MemoryLimit, CPUSteps: actorVM.Artifact.StepLimit})

	if s.Metrics != nil {
		s.Metrics.RecordActorSpawned()
	}
	s.Log.Info("actor spawned", zap.Uint32("actor_id", id))
	return a
}

// Terminate implements spec.md §3's actor lifecycle end: removes actorID
// from scheduling, releases its resource quota, and orphans (rather than
// cascade-terminates) its children -- SPEC_FULL.md's resolution of the
// original's ambiguous supervision behavior.
func (s *Scheduler) Terminate(actorID uint32) {
	a, ok := s.byID[actorID]
	if !ok {
		return
	}
	a.terminated = true
	s.Quotas.Release(actorID)
	for _, child := range s.actors {
		if child.HasParent && child.ParentID == actorID {
			child.HasParent = false
		}
	}
	if s.Metrics != nil {
		s.Metrics.RecordActorTerminated()
	}
	s.Log.Info("actor terminated", zap.Uint32("actor_id", actorID))
}

// Actor returns the actor registered under id, if any.
func (s *Scheduler) Actor(id uint32) (*Actor, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Tick implements spec.md §4.5: drain every actor's external queue into
// its mailbox, select one runnable actor, drain its mailbox onto its VM
// stack, and run it to its next suspension point.
func (s *Scheduler) Tick() (TickResult, error) {
	for _, a := range s.actors {
		a.drainExternal()
	}

	var idx int
	switch s.Mode {
	case Priority:
		idx = s.selectPriority()
	default:
		idx = s.selectRoundRobin()
	}
	if idx == -1 {
		return TickResult{}, ErrNoRunnableActors
	}

	actor := s.actors[idx]
	s.current = idx
	actor.drainMailbox()

	res := actor.VM.RunUntilSuspend()
	s.tickCount++
	if s.Metrics != nil {
		s.Metrics.RecordTick()
	}
	s.accountResourceUsage(actor)

	return s.handleResult(actor, res)
}

// accountResourceUsage feeds both halves of spec.md §4.5's "Resource
// quotas" into the same actor/global check the CPU side already used:
// a cpu-steps delta from the VM's cumulative step count, and a memory
// delta from its heap's live byte count, mirroring each other exactly.
func (s *Scheduler) accountResourceUsage(actor *Actor) {
	total := actor.VM.StepsExecuted()
	delta := total - s.lastSteps[actor.ID]
	s.lastSteps[actor.ID] = total
	s.Quotas.CheckAndConsumeSteps(actor.ID, delta)

	bytesInUse := actor.VM.Heap.Stats().BytesInUse
	memDelta := bytesInUse - s.lastMemory[actor.ID]
	s.lastMemory[actor.ID] = bytesInUse
	s.Quotas.CheckAndConsumeMemory(actor.ID, memDelta)

	if s.tickCount%snapshotInterval == 0 {
		s.Quotas.Snapshot(s.tickCount, actor.ID)
	}
}

func (s *Scheduler) handleResult(actor *Actor, res vm.Result) (TickResult, error) {
	switch res.Status {
	case vm.StatusYielded:
		return TickResult{ActorID: actor.ID, Outcome: TickYielded}, nil

	case vm.StatusFinished:
		actor.finished = true
		return TickResult{ActorID: actor.ID, Outcome: TickFinished, Value: res.Value}, nil

	case vm.StatusErrored:
		actor.errored = true
		s.Log.Error("actor errored", zap.Uint32("actor_id", actor.ID), zap.String("kind", res.Err.Kind.String()))
		return TickResult{ActorID: actor.ID, Outcome: TickActorErrored, Err: res.Err}, nil

	case vm.StatusWaitingForCapability:
		return s.resolveCapability(actor, res.Pending)

	default:
		return TickResult{ActorID: actor.ID, Outcome: TickYielded}, nil
	}
}

// resolveCapability applies the capability authority to a suspended
// RequestCap/GrantCap/RevokeCap. A plain policy decision (anything but
// meta-grant) resolves synchronously within this tick; a meta-grant
// request instead parks the actor until Vote resolves the round.
func (s *Scheduler) resolveCapability(actor *Actor, pending *vm.PendingCapOp) (TickResult, error) {
	switch pending.Op {
	case vm.CapOpRequest:
		decision := s.Authority.HandleCapabilityRequest(actor.ID, pending.Cap, pending.Justification)
		if decision == authority.DecisionPending {
			actor.waitingForConsensus = true
			return TickResult{ActorID: actor.ID, Outcome: TickWaitingForConsensus}, nil
		}
		actor.VM.ResumeCapability(decision == authority.DecisionGranted)
		return TickResult{ActorID: actor.ID, Outcome: TickCapabilityResolved}, nil

	case vm.CapOpGrant:
		s.Authority.GrantCapability(actor.ID, pending.Target, pending.Cap)
		actor.VM.ResumeCapability(false)
		return TickResult{ActorID: actor.ID, Outcome: TickCapabilityResolved}, nil

	case vm.CapOpRevoke:
		s.Authority.RevokeCapability(actor.ID, pending.Target, pending.Cap)
		actor.VM.ResumeCapability(false)
		return TickResult{ActorID: actor.ID, Outcome: TickCapabilityResolved}, nil

	default:
		return TickResult{}, errors.Newf("scheduler: unknown capability op %d", pending.Op)
	}
}

// Vote casts voter's ballot in requester's pending meta-grant consensus
// round. If the round resolves, the waiting actor's VM is resumed with
// the outcome.
func (s *Scheduler) Vote(requester, voter uint32, approve bool) authority.Decision {
	decision := s.Authority.Vote(requester, voter, approve)
	if decision == authority.DecisionPending {
		return decision
	}
	a, ok := s.byID[requester]
	if !ok {
		return decision
	}
	a.waitingForConsensus = false
	a.VM.ResumeCapability(decision == authority.DecisionGranted)
	return decision
}

// Send implements vm.Outbox: enqueue msg on target's external queue.
// Send never suspends the caller (spec.md §5).
func (s *Scheduler) Send(target uint32, msg bytecode.Value) error {
	a, ok := s.byID[target]
	if !ok {
		return errors.Newf("scheduler: send to unknown actor %d", target)
	}
	a.enqueueExternal(msg)
	return nil
}

// Granted implements authority.ActorDirectory.
func (s *Scheduler) Granted(actorID uint32) (capability.Set, bool) {
	a, ok := s.byID[actorID]
	if !ok {
		return capability.Set{}, false
	}
	return a.VM.Granted, true
}

// SetGranted implements authority.ActorDirectory.
func (s *Scheduler) SetGranted(actorID uint32, set capability.Set) {
	if a, ok := s.byID[actorID]; ok {
		a.VM.Granted = set
	}
}

// Parent implements authority.ActorDirectory.
func (s *Scheduler) Parent(actorID uint32) (uint32, bool) {
	a, ok := s.byID[actorID]
	if !ok || !a.HasParent {
		return 0, false
	}
	return a.ParentID, true
}

// Priority implements authority.ActorDirectory.
func (s *Scheduler) Priority(actorID uint32) uint8 {
	a, ok := s.byID[actorID]
	if !ok {
		return 0
	}
	return a.BasePriority
}

// Exists implements authority.ActorDirectory.
func (s *Scheduler) Exists(actorID uint32) bool {
	_, ok := s.byID[actorID]
	return ok
}

// ActorIDs implements authority.ActorDirectory.
func (s *Scheduler) ActorIDs() []uint32 {
	out := make([]uint32, 0, len(s.byID))
	for id := range s.byID {
		out = append(out, id)
	}
	return out
}
