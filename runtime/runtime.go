// Package runtime is the orchestration facade tying the compiler, VM,
// scheduler and capability authority into one deployable system: Deploy
// compiles a surface program and registers it as a new actor, Run drives
// the tick loop, and the returned Scheduler gives callers full access to
// actor state, the audit log and resource quotas for spec.md §8's
// end-to-end scenarios.
package runtime

import (
	"github.com/cockroachdb/errors"

	"github.com/latticerun/physics/ast"
	"github.com/latticerun/physics/capability"
	"github.com/latticerun/physics/compiler"
	"github.com/latticerun/physics/scheduler"
	"github.com/latticerun/physics/telemetry/log"
	"github.com/latticerun/physics/telemetry/metrics"
	"github.com/latticerun/physics/vm"
)

// Runtime owns one scheduler instance and the compiled artifacts behind
// its actors.
type Runtime struct {
	Sched *scheduler.Scheduler

	artifacts map[uint32]*bytecodeArtifactRef
}

type bytecodeArtifactRef struct {
	tier capability.Tier
}

// Config bundles Runtime's construction parameters; any zero value is a
// sane default (unbounded global resource quota, round-robin selection,
// a no-op logger).
type Config struct {
	Mode              scheduler.Mode
	GlobalMemoryLimit int64
	GlobalCPULimit    int64
	Log               log.Logger
	Metrics           *metrics.Runtime
}

// New returns an empty Runtime ready to accept deployments.
func New(cfg Config) *Runtime {
	return &Runtime{
		Sched:     scheduler.New(cfg.Mode, cfg.GlobalMemoryLimit, cfg.GlobalCPULimit, cfg.Log, cfg.Metrics),
		artifacts: map[uint32]*bytecodeArtifactRef{},
	}
}

// Deploy compiles program at the given trust tier and spawns it as a new
// actor, granted its tier's baseline capability set plus whatever the
// artifact's static analysis additionally required and was allowed. A
// hasParent actor is scheduled as a child of parentID for delegation and
// orphan-on-terminate purposes (spec.md §4.5). The actor runs against
// vm.MockHostEnv's default I/O stand-ins; use DeployWithHost to wire a
// SchedulingHostEnv instead (needed for spawn-actor/terminate-actor to
// reach this Runtime's scheduler).
func (r *Runtime) Deploy(program *ast.Node, tier capability.Tier, basePriority uint8, parentID uint32, hasParent bool) (*scheduler.Actor, error) {
	return r.DeployWithHost(program, tier, basePriority, parentID, hasParent, nil)
}

// DeployWithHost is Deploy with an explicit HostEnv for the new actor's
// VM (nil keeps vm.MockHostEnv). The actor id is not available ahead of
// Spawn, so callers that need SchedulingHostEnv wire it in afterward via
// actor.VM.Host -- see WireSchedulingHostEnv.
func (r *Runtime) DeployWithHost(program *ast.Node, tier capability.Tier, basePriority uint8, parentID uint32, hasParent bool, host vm.HostEnv) (*scheduler.Actor, error) {
	artifact, err := compiler.Compile(program, tier)
	if err != nil {
		return nil, errors.Wrap(err, "runtime: compile")
	}

	granted := artifact.GrantedCapabilities.Clone()
	granted.Add(artifact.RequiredCapabilities.List()...)

	actorVM := vm.New(artifact, granted)
	actorVM.Log = r.Sched.Log
	actorVM.Metrics = r.Sched.Metrics
	if host != nil {
		actorVM.Host = host
	}

	actor := r.Sched.Spawn(actorVM, basePriority, parentID, hasParent)
	r.artifacts[actor.ID] = &bytecodeArtifactRef{tier: tier}
	return actor, nil
}

// WireSchedulingHostEnv replaces actor's VM host environment with a
// SchedulingHostEnv bound to this Runtime and actor's id, so its
// spawn-actor/terminate-actor host calls reach the real scheduler.
// lookupTemplate resolves a spawn-actor call's template index into a
// fresh child VM (see SchedulingHostEnv.SpawnActor).
func (r *Runtime) WireSchedulingHostEnv(actor *scheduler.Actor, lookupTemplate func(idx int64) (*vm.VM, uint8, bool)) {
	actor.VM.Host = NewSchedulingHostEnv(r, actor.ID, lookupTemplate)
}

// RunResult summarizes one call to Run.
type RunResult struct {
	Ticks   int
	Results []scheduler.TickResult
}

// Run drives the scheduler for up to maxTicks ticks, stopping early once
// every actor has permanently left the runnable set (ErrNoRunnableActors
// is treated as a clean stop, not a failure, so a caller can Run a
// system that finishes before its tick budget is spent).
func (r *Runtime) Run(maxTicks int) (RunResult, error) {
	out := RunResult{}
	for i := 0; i < maxTicks; i++ {
		res, err := r.Sched.Tick()
		if err != nil {
			if errors.Is(err, scheduler.ErrNoRunnableActors) {
				return out, nil
			}
			return out, err
		}
		out.Ticks++
		out.Results = append(out.Results, res)
	}
	return out, nil
}
