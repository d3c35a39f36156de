package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticerun/physics/bytecode"
	"github.com/latticerun/physics/capability"
	"github.com/latticerun/physics/vm"
)

// newActorVM returns a VM running a tiny artifact: push an Int constant,
// Yield, push another Int constant, then run off the end of the code
// stream (the VM's implicit Finished on exhausted instructions). Enough
// to observe two ticks per actor without needing the compiler.
func newActorVM(granted capability.Set) *vm.VM {
	artifact := bytecode.NewArtifact(capability.Empirical)
	artifact.Constants = []bytecode.Value{bytecode.Int(1), bytecode.Int(2)}
	artifact.Emit(bytecode.OpConstInt, 0)
	artifact.Emit(bytecode.OpYield)
	artifact.Emit(bytecode.OpConstInt, 1)
	return vm.New(artifact, granted)
}

func TestRoundRobinFairnessOverTwoPasses(t *testing.T) {
	s := New(RoundRobin, 0, 0, nil, nil)
	ids := []uint32{
		s.Spawn(newActorVM(capability.NewSet()), 0, 0, false).ID,
		s.Spawn(newActorVM(capability.NewSet()), 0, 0, false).ID,
		s.Spawn(newActorVM(capability.NewSet()), 0, 0, false).ID,
	}

	var order []uint32
	for i := 0; i < 2*len(ids); i++ {
		res, err := s.Tick()
		require.NoError(t, err)
		order = append(order, res.ActorID)
	}

	require.Equal(t, []uint32{ids[0], ids[1], ids[2], ids[0], ids[1], ids[2]}, order)
}

func TestPriorityAntiStarvation(t *testing.T) {
	s := New(Priority, 0, 0, nil, nil)
	s.StarvationThreshold = 2
	low := s.Spawn(newActorVM(capability.NewSet()), 1, 0, false)
	// The high-priority actor yields three times, so it is still runnable
	// at the third tick and only the starvation override can pick low.
	highArtifact := bytecode.NewArtifact(capability.Empirical)
	highArtifact.Constants = []bytecode.Value{bytecode.Int(1)}
	for i := 0; i < 3; i++ {
		highArtifact.Emit(bytecode.OpConstInt, 0)
		highArtifact.Emit(bytecode.OpYield)
	}
	high := s.Spawn(vm.New(highArtifact, capability.NewSet()), 200, 0, false)
	_ = low
	_ = high

	// Runnable stays true across Yield, so the high-priority actor wins
	// every selection until, with StarvationThreshold 2, the third tick
	// forces a pick of the low-priority one.
	first, err := s.Tick()
	require.NoError(t, err)
	require.Equal(t, high.ID, first.ActorID)

	second, err := s.Tick()
	require.NoError(t, err)
	require.Equal(t, high.ID, second.ActorID)

	third, err := s.Tick()
	require.NoError(t, err)
	require.Equal(t, low.ID, third.ActorID)
}

func TestTickErrorsWithNoRunnableActors(t *testing.T) {
	s := New(RoundRobin, 0, 0, nil, nil)
	_, err := s.Tick()
	require.ErrorIs(t, err, ErrNoRunnableActors)
}

func TestTerminateOrphansChildrenRatherThanCascading(t *testing.T) {
	s := New(RoundRobin, 0, 0, nil, nil)
	parent := s.Spawn(newActorVM(capability.NewSet()), 0, 0, false)
	child := s.Spawn(newActorVM(capability.NewSet()), 0, parent.ID, true)

	s.Terminate(parent.ID)

	require.True(t, parent.terminated)
	require.False(t, child.terminated)
	require.False(t, child.HasParent)
}

func TestSendDeliversThroughExternalQueueAndMailbox(t *testing.T) {
	s := New(RoundRobin, 0, 0, nil, nil)
	target := s.Spawn(newActorVM(capability.NewSet()), 0, 0, false)

	require.NoError(t, s.Send(target.ID, bytecode.Int(42)))
	require.Len(t, target.external, 1)
	require.Empty(t, target.Mailbox)

	target.drainExternal()
	require.Empty(t, target.external)
	require.Equal(t, []bytecode.Value{bytecode.Int(42)}, target.Mailbox)
}

func TestCapabilityRequestRoundTripThroughAuthority(t *testing.T) {
	s := New(RoundRobin, 0, 0, nil, nil)

	artifact := bytecode.NewArtifact(capability.Empirical)
	artifact.Constants = []bytecode.Value{bytecode.CapabilityRef(uint8(capability.IOReadSensor), 0)}
	artifact.Strings = []string{"need sensor access"}
	artifact.Emit(bytecode.OpRequestCap, 0, 0)
	actorVM := vm.New(artifact, capability.NewSet())

	actor := s.Spawn(actorVM, 0, 0, false)

	res, err := s.Tick()
	require.NoError(t, err)
	require.Equal(t, TickCapabilityResolved, res.Outcome)
	require.Equal(t, actor.ID, res.ActorID)

	granted, ok := s.Granted(actor.ID)
	require.True(t, ok)
	require.True(t, granted.Contains(capability.Of(capability.IOReadSensor)))
}

func TestVoteResolvesWaitingActor(t *testing.T) {
	s := New(RoundRobin, 0, 0, nil, nil)

	// The requester is spawned first so the first round-robin tick runs it.
	artifact := bytecode.NewArtifact(capability.Empirical)
	artifact.Constants = []bytecode.Value{bytecode.CapabilityRef(uint8(capability.MetaGrant), 0)}
	artifact.Strings = []string{"requesting elevation"}
	artifact.Emit(bytecode.OpRequestCap, 0, 0)
	requesterVM := vm.New(artifact, capability.NewSet())
	requester := s.Spawn(requesterVM, 0, 0, false)

	voters := make([]uint32, 0, 4)
	for i := 0; i < 4; i++ {
		a := s.Spawn(newActorVM(capability.NewSet(capability.Of(capability.MetaGrant))), 0, 0, false)
		voters = append(voters, a.ID)
	}

	res, err := s.Tick()
	require.NoError(t, err)
	require.Equal(t, TickWaitingForConsensus, res.Outcome)
	require.False(t, requester.Runnable())

	for i, voter := range voters {
		decision := s.Vote(requester.ID, voter, true)
		if i < len(voters)-1 {
			require.Equal(t, "PendingConsensus", decision.String())
		} else {
			require.Equal(t, "Granted", decision.String())
		}
	}

	require.True(t, requester.Runnable())
	granted, ok := s.Granted(requester.ID)
	require.True(t, ok)
	require.True(t, granted.Contains(capability.Of(capability.MetaGrant)))
}
