package vm

import "github.com/latticerun/physics/bytecode"

// HostEnv is the seam between a HostCall instruction and whatever
// actually performs I/O, actor lifecycle management, or persistence --
// the VM itself never touches a sensor, a socket or a disk (spec.md §1's
// "opaque host functions"). One method per capability-gated func_id
// (0-8); the capability-free arithmetic/comparison subset (func_ids
// 9-25) is handled directly inside the VM and never reaches HostEnv.
type HostEnv interface {
	ReadSensor(args []bytecode.Value) (bytecode.Value, error)
	WriteActuator(args []bytecode.Value) (bytecode.Value, error)
	GetWallClockNs(args []bytecode.Value) (bytecode.Value, error)
	SpawnActor(args []bytecode.Value) (bytecode.Value, error)
	TerminateActor(args []bytecode.Value) (bytecode.Value, error)
	NetworkSend(args []bytecode.Value) (bytecode.Value, error)
	NetworkReceive(args []bytecode.Value) (bytecode.Value, error)
	PersistWrite(args []bytecode.Value) (bytecode.Value, error)
	PersistRead(args []bytecode.Value) (bytecode.Value, error)
}

// Outbox delivers a Send instruction's message to its target actor's
// external queue. Send does not suspend the VM (spec.md §5); it's a
// synchronous enqueue against whatever owns cross-actor mailboxes (the
// scheduler).
type Outbox interface {
	Send(target uint32, msg bytecode.Value) error
}

// MockHostEnv is a deterministic stand-in for real host I/O, used by
// direct single-actor VM runs and tests. Scenario 3 of spec.md §8 fixes
// read-sensor's mock value at Int(42); the rest of this implementation
// follows the same "observable, deterministic placeholder" convention.
type MockHostEnv struct {
	Clock int64

	persisted map[string]bytecode.Value
	inbox     []bytecode.Value
}

// NewMockHostEnv returns a MockHostEnv ready to use.
func NewMockHostEnv() *MockHostEnv {
	return &MockHostEnv{persisted: map[string]bytecode.Value{}}
}

func (m *MockHostEnv) ReadSensor([]bytecode.Value) (bytecode.Value, error) {
	return bytecode.Int(42), nil
}

func (m *MockHostEnv) WriteActuator([]bytecode.Value) (bytecode.Value, error) {
	return bytecode.Nil, nil
}

func (m *MockHostEnv) GetWallClockNs([]bytecode.Value) (bytecode.Value, error) {
	m.Clock++
	return bytecode.Int(m.Clock), nil
}

func (m *MockHostEnv) SpawnActor([]bytecode.Value) (bytecode.Value, error) {
	return bytecode.Nil, nil
}

func (m *MockHostEnv) TerminateActor([]bytecode.Value) (bytecode.Value, error) {
	return bytecode.Nil, nil
}

func (m *MockHostEnv) NetworkSend([]bytecode.Value) (bytecode.Value, error) {
	return bytecode.Nil, nil
}

func (m *MockHostEnv) NetworkReceive([]bytecode.Value) (bytecode.Value, error) {
	if len(m.inbox) == 0 {
		return bytecode.Nil, nil
	}
	v := m.inbox[0]
	m.inbox = m.inbox[1:]
	return v, nil
}

func (m *MockHostEnv) PersistWrite(args []bytecode.Value) (bytecode.Value, error) {
	if len(args) == 2 && args[0].Kind == bytecode.ValString {
		m.persisted[args[0].String()] = args[1]
	}
	return bytecode.Nil, nil
}

func (m *MockHostEnv) PersistRead(args []bytecode.Value) (bytecode.Value, error) {
	if len(args) == 1 {
		if v, ok := m.persisted[args[0].String()]; ok {
			return v, nil
		}
	}
	return bytecode.Nil, nil
}
