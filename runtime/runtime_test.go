package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticerun/physics/ast"
	"github.com/latticerun/physics/bytecode"
	"github.com/latticerun/physics/capability"
	"github.com/latticerun/physics/scheduler"
	"github.com/latticerun/physics/vm"
)

// TestDeployFormalArithmeticRunsToCompletion realizes spec.md §8
// scenario 1: a Formal-tier program carries a normalization proof and
// its VM finishes with the proved value.
func TestDeployFormalArithmeticRunsToCompletion(t *testing.T) {
	rt := New(Config{})
	program := ast.Call("+", ast.LitIntNode(1), ast.Call("+", ast.LitIntNode(2), ast.LitIntNode(3)))
	actor, err := rt.Deploy(program, capability.Formal, 0, 0, false)
	require.NoError(t, err)

	res, err := rt.Sched.Tick()
	require.NoError(t, err)
	require.Equal(t, scheduler.TickFinished, res.Outcome)
	require.Equal(t, actor.ID, res.ActorID)
	require.Equal(t, bytecode.Int(6), res.Value)
}

// TestDeployEmpiricalCapabilityDenialSurfacesAsError realizes spec.md §8's
// capability-denial scenario: an Empirical-tier program that calls
// spawn-actor (requiring sys-create-actor, which Empirical does not
// baseline-grant) fails to compile with a capability error rather than
// ever reaching the VM, since the analyzer proves statically that the
// call could never succeed.
func TestDeployEmpiricalCapabilityDenialSurfacesAsError(t *testing.T) {
	rt := New(Config{})
	program := ast.FFICall("spawn-actor")
	_, err := rt.Deploy(program, capability.Empirical, 0, 0, false)
	require.Error(t, err)
}

// TestDeployExperimentalSpawnActorReachesScheduler realizes the
// spawn-actor/terminate-actor host-call path end to end: an
// Experimental-tier actor (which baseline-grants sys-create-actor) calls
// spawn-actor, and a real child actor is registered on the scheduler.
func TestDeployExperimentalSpawnActorReachesScheduler(t *testing.T) {
	rt := New(Config{})
	program := ast.FFICall("spawn-actor", ast.LitIntNode(0))
	actor, err := rt.Deploy(program, capability.Experimental, 0, 0, false)
	require.NoError(t, err)

	childTemplate := func(idx int64) (*vm.VM, uint8, bool) {
		if idx != 0 {
			return nil, 0, false
		}
		artifact := bytecode.NewArtifact(capability.Empirical)
		artifact.Constants = []bytecode.Value{bytecode.Int(7)}
		artifact.Emit(bytecode.OpConstInt, 0)
		return vm.New(artifact, capability.Empirical.Baseline()), 0, true
	}
	rt.WireSchedulingHostEnv(actor, childTemplate)

	beforeChildren := len(rt.Sched.ActorIDs())
	res, err := rt.Sched.Tick()
	require.NoError(t, err)
	require.Equal(t, scheduler.TickFinished, res.Outcome)
	require.Greater(t, len(rt.Sched.ActorIDs()), beforeChildren)

	childRes, err := rt.Sched.Tick()
	require.NoError(t, err)
	require.Equal(t, scheduler.TickFinished, childRes.Outcome)
	require.Equal(t, bytecode.Int(7), childRes.Value)

	child, ok := rt.Sched.Actor(childRes.ActorID)
	require.True(t, ok)
	require.True(t, child.HasParent)
	require.Equal(t, actor.ID, child.ParentID)
}

// TestRunDrivesMultiActorSystemToQuiescence exercises Run's loop-until-
// drained behavior across several independent actors.
func TestRunDrivesMultiActorSystemToQuiescence(t *testing.T) {
	rt := New(Config{})
	for i := 0; i < 3; i++ {
		_, err := rt.Deploy(ast.LitIntNode(int64(i)), capability.Empirical, 0, 0, false)
		require.NoError(t, err)
	}

	result, err := rt.Run(50)
	require.NoError(t, err)
	require.Equal(t, 3, result.Ticks)
	for _, r := range result.Results {
		require.Equal(t, scheduler.TickFinished, r.Outcome)
	}
}
