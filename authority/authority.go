// Package authority implements the capability policy engine spec.md §4.5
// names "Scheduler & Capability Authority": the decision table a runtime
// applies to a RequestCap opcode, consensus voting for meta-grant,
// delegation/revocation validation, and the monotonically-ordered audit
// log all three feed. It never touches a VM or an Actor directly -- it
// reads and mutates actor capability state through the small
// ActorDirectory seam, the same way the teacher's Runtime takes a
// validators.State interface instead of owning the validator set itself.
package authority

import (
	"github.com/latticerun/physics/capability"
	"github.com/latticerun/physics/telemetry/log"
	"github.com/latticerun/physics/telemetry/metrics"
)

// Decision is the outcome of a capability request, delegation or
// revocation (spec.md §4.5's {Granted, Denied, PendingConsensus}).
type Decision uint8

const (
	DecisionGranted Decision = iota
	DecisionDenied
	DecisionPending
)

func (d Decision) String() string {
	switch d {
	case DecisionGranted:
		return "Granted"
	case DecisionDenied:
		return "Denied"
	default:
		return "PendingConsensus"
	}
}

// Operation is the kind of event an audit entry records. Request,
// Delegate and Revoke are spec.md §3's capability-audit-entry operations;
// Vote is this implementation's addition to make the six-scenario
// consensus walkthrough's "1 request + 5 votes = 6 audit entries"
// (spec.md §8 scenario 6) literally true -- each cast ballot is itself an
// auditable capability event, not folded silently into the final Request
// entry.
type Operation uint8

const (
	OpRequest Operation = iota
	OpDelegate
	OpRevoke
	OpVote
)

func (o Operation) String() string {
	switch o {
	case OpRequest:
		return "Request"
	case OpDelegate:
		return "Delegate"
	case OpRevoke:
		return "Revoke"
	default:
		return "Vote"
	}
}

// AuditResult is the result field of a CapabilityAuditEntry (spec.md §3):
// {Granted, Denied, Pending, ConsensusRequired, Error(msg)}.
type AuditResult uint8

const (
	ResultGranted AuditResult = iota
	ResultDenied
	ResultPending
	ResultConsensusRequired
	ResultError
)

func (r AuditResult) String() string {
	switch r {
	case ResultGranted:
		return "Granted"
	case ResultDenied:
		return "Denied"
	case ResultPending:
		return "Pending"
	case ResultConsensusRequired:
		return "ConsensusRequired"
	default:
		return "Error"
	}
}

// AuditEntry is one capability-audit-log row: spec.md §3's "(monotonic
// timestamp, actor-id, operation, capability, result)".
type AuditEntry struct {
	Timestamp int64
	ActorID   uint32
	Operation Operation
	Cap       capability.Capability
	Result    AuditResult
	Message   string
}

// ActorDirectory is the read/write seam onto actor state the authority
// needs: current grants, parent links and priority. The scheduler's
// actor registry implements this; the authority package never imports
// scheduler, keeping the dependency one-directional.
type ActorDirectory interface {
	Granted(actorID uint32) (capability.Set, bool)
	SetGranted(actorID uint32, set capability.Set)
	Parent(actorID uint32) (parentID uint32, ok bool)
	Priority(actorID uint32) uint8
	Exists(actorID uint32) bool
	ActorIDs() []uint32
}

// Authority is the capability policy engine. One Authority serves an
// entire scheduler; it owns the audit log and in-flight consensus votes,
// and mutates actor capability sets via dir.
type Authority struct {
	dir ActorDirectory
	log log.Logger
	met *metrics.Runtime

	nextTimestamp_ int64
	audit          []AuditEntry

	pending map[uint32]*voteRecord
}

// New returns an Authority backed by dir. met may be nil.
func New(dir ActorDirectory, logger log.Logger, met *metrics.Runtime) *Authority {
	if logger == nil {
		logger = log.NewNoOp()
	}
	return &Authority{dir: dir, log: logger, met: met, pending: map[uint32]*voteRecord{}}
}

func (a *Authority) nextTimestamp() int64 {
	a.nextTimestamp_++
	return a.nextTimestamp_
}

func (a *Authority) appendAudit(actorID uint32, op Operation, cap capability.Capability, result AuditResult, msg string) AuditEntry {
	e := AuditEntry{
		Timestamp: a.nextTimestamp(),
		ActorID:   actorID,
		Operation: op,
		Cap:       cap,
		Result:    result,
		Message:   msg,
	}
	a.audit = append(a.audit, e)
	if a.met != nil {
		a.met.RecordCapabilityDecision(result.String())
	}
	return e
}

// Audit returns the full ordered audit log.
func (a *Authority) Audit() []AuditEntry {
	out := make([]AuditEntry, len(a.audit))
	copy(out, a.audit)
	return out
}

// HandleCapabilityRequest applies spec.md §4.5's decision table to a
// RequestCap(actor, cap, justification), mutates the actor's granted set
// on a Granted decision, and appends exactly one audit entry. For
// meta-grant that entry is ConsensusRequired and a consensus round is
// opened -- see Vote.
func (a *Authority) HandleCapabilityRequest(actorID uint32, cap capability.Capability, justification string) Decision {
	decision := a.decide(actorID, cap, justification)
	switch decision {
	case DecisionGranted:
		a.mutateGrant(actorID, cap, true)
		a.appendAudit(actorID, OpRequest, cap, ResultGranted, "")
		a.log.Info("capability granted", zapActor(actorID), zapCap(cap))
	case DecisionDenied:
		a.appendAudit(actorID, OpRequest, cap, ResultDenied, "")
		a.log.Warn("capability denied", zapActor(actorID), zapCap(cap))
	case DecisionPending:
		a.appendAudit(actorID, OpRequest, cap, ResultConsensusRequired, "")
		a.openConsensus(actorID, justification)
		a.log.Info("capability pending consensus", zapActor(actorID), zapCap(cap))
	}
	return decision
}

// decide applies the static rule table; it does not mutate state or log.
func (a *Authority) decide(actorID uint32, cap capability.Capability, justification string) Decision {
	switch cap.Kind {
	case capability.MetaGrant:
		return DecisionPending
	case capability.IONetwork:
		if justification == "" {
			return DecisionDenied
		}
		return DecisionGranted
	case capability.SysTerminateActor:
		// Granted unconditionally; the self-or-children restriction is
		// enforced where the capability is used (sys-terminate-actor's
		// host call), not at grant time.
		return DecisionGranted
	case capability.MacroUnsafe:
		granted, _ := a.dir.Granted(actorID)
		if granted.Contains(capability.Of(capability.MetaGrant)) {
			return DecisionGranted
		}
		return DecisionDenied
	case capability.MetaSelfModify:
		if _, hasParent := a.dir.Parent(actorID); hasParent {
			return DecisionGranted
		}
		return DecisionDenied
	default:
		// macro-hygienic, comptime-eval, io-read-sensor, io-write-actuator,
		// io-persist, sys-clock, sys-create-actor, resource-*.
		return DecisionGranted
	}
}

func (a *Authority) mutateGrant(actorID uint32, cap capability.Capability, grant bool) {
	set, ok := a.dir.Granted(actorID)
	if !ok {
		set = capability.NewSet()
	}
	if grant {
		set.Add(cap)
	} else {
		set.Remove(cap)
	}
	a.dir.SetGranted(actorID, set)
}
