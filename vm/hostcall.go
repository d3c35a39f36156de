package vm

import "github.com/latticerun/physics/bytecode"

// doHostCall implements OpHostCall: a capability check against the
// effective granted set (when the instruction names one), then dispatch
// to either the injected HostEnv (func_ids 0-8, real I/O) or the
// capability-free arithmetic/comparison subset handled directly here
// (func_ids 9-25). An error returned by a HostEnv method is reported to
// the program as a pushed bytecode.ErrorValue rather than aborting the
// VM, mirroring the checked-arithmetic convention; a wrong-typed
// argument to the arithmetic subset is a terminal TypeMismatch, as for
// the bare opcodes, and an unrecognized func_id is a terminal
// UnknownOpCode error.
func (m *VM) doHostCall(ins bytecode.Instruction) error {
	if ins.A != bytecode.NoCapability {
		cap, err := m.constCapability(ins.A)
		if err != nil {
			return err
		}
		if !m.effectiveGranted().Contains(cap) {
			if m.Metrics != nil {
				m.Metrics.RecordCapabilityDecision("denied")
			}
			return m.raise(ErrCapability, "capability %s not granted for host call", cap)
		}
		if m.Metrics != nil {
			m.Metrics.RecordCapabilityDecision("granted")
		}
	}

	id := bytecode.FuncID(ins.B)
	info, known := bytecode.LookupHostFunc(id)
	if !known {
		return m.raise(ErrUnknownOpCode, "unknown host function id %d", id)
	}
	args, err := m.popN(int(ins.C))
	if err != nil {
		return err
	}

	if info.RequiresCap {
		v, hostErr := m.dispatchHostEnv(id, args)
		if hostErr != nil {
			m.push(bytecode.ErrorValue(hostErr.Error()))
			return nil
		}
		m.push(v)
		return nil
	}

	v, err := hostArithmetic(id, args)
	if err != nil {
		re, _ := err.(*RuntimeError)
		return m.stamp(re)
	}
	m.push(v)
	return nil
}

func (m *VM) dispatchHostEnv(id bytecode.FuncID, args []bytecode.Value) (bytecode.Value, error) {
	switch id {
	case bytecode.FuncReadSensor:
		return m.Host.ReadSensor(args)
	case bytecode.FuncWriteActuator:
		return m.Host.WriteActuator(args)
	case bytecode.FuncGetWallClockNs:
		return m.Host.GetWallClockNs(args)
	case bytecode.FuncSpawnActor:
		return m.Host.SpawnActor(args)
	case bytecode.FuncTerminateActor:
		return m.Host.TerminateActor(args)
	case bytecode.FuncNetworkSend:
		return m.Host.NetworkSend(args)
	case bytecode.FuncNetworkReceive:
		return m.Host.NetworkReceive(args)
	case bytecode.FuncPersistWrite:
		return m.Host.PersistWrite(args)
	case bytecode.FuncPersistRead:
		return m.Host.PersistRead(args)
	default:
		return bytecode.Nil, nil
	}
}
