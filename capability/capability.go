// Package capability implements the closed enum of host capabilities, the
// ordered trust-tier ladder and its baseline grant sets, and a capability
// set type used throughout the compiler, VM and capability authority.
package capability

import "fmt"

// Kind enumerates the closed set of capability kinds. The two resource
// variants (ExtraMemory, ExtraTime) are parametrized by N; Capability
// values with different N are distinct capabilities even though they
// share a Kind.
type Kind uint8

const (
	MetaSelfModify Kind = iota
	MetaGrant
	MacroHygienic
	MacroUnsafe
	ComptimeEval
	IOReadSensor
	IOWriteActuator
	IONetwork
	IOPersist
	SysCreateActor
	SysTerminateActor
	SysClock
	ResourceExtraMemory
	ResourceExtraTime

	numKinds
)

var kindNames = [numKinds]string{
	MetaSelfModify:      "meta-self-modify",
	MetaGrant:           "meta-grant",
	MacroHygienic:       "macro-hygienic",
	MacroUnsafe:         "macro-unsafe",
	ComptimeEval:        "comptime-eval",
	IOReadSensor:        "io-read-sensor",
	IOWriteActuator:     "io-write-actuator",
	IONetwork:           "io-network",
	IOPersist:           "io-persist",
	SysCreateActor:      "sys-create-actor",
	SysTerminateActor:   "sys-terminate-actor",
	SysClock:            "sys-clock",
	ResourceExtraMemory: "resource-extra-memory",
	ResourceExtraTime:   "resource-extra-time",
}

func (k Kind) String() string {
	if k >= numKinds {
		return fmt.Sprintf("Kind(%d)", k)
	}
	return kindNames[k]
}

// IsParametrized reports whether a capability of this kind carries a
// meaningful N (the two resource-* kinds).
func (k Kind) IsParametrized() bool {
	return k == ResourceExtraMemory || k == ResourceExtraTime
}

// Capability is a single, hashable host permission token. N is only
// meaningful when Kind.IsParametrized(); it is ignored (and should be
// left zero) otherwise.
type Capability struct {
	Kind Kind
	N    uint64
}

// Of constructs a non-parametrized capability.
func Of(k Kind) Capability { return Capability{Kind: k} }

// ExtraMemory constructs a resource-extra-memory(n) capability.
func ExtraMemory(n uint64) Capability { return Capability{Kind: ResourceExtraMemory, N: n} }

// ExtraTime constructs a resource-extra-time(n) capability.
func ExtraTime(n uint64) Capability { return Capability{Kind: ResourceExtraTime, N: n} }

func (c Capability) String() string {
	if c.Kind.IsParametrized() {
		return fmt.Sprintf("%s(%d)", c.Kind, c.N)
	}
	return c.Kind.String()
}
