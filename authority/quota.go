package authority

// Quota is the per-actor resource ceiling spec.md §4.5's "Resource
// quotas" names: a cpu-steps budget and a memory budget, checked both
// against the actor's own usage and against the scheduler-wide totals.
type Quota struct {
	MemoryBytes int64
	CPUSteps    int64
}

// Usage is one actor's running resource consumption.
type Usage struct {
	MemoryBytes int64
	CPUSteps    int64
}

// UsageSnapshot is a point-in-time capture of one actor's usage, kept in
// a bounded ring per actor (spec.md §4.5: "Snapshots of global usage are
// captured periodically"; see SPEC_FULL.md's "step/memory snapshot
// history" supplemented feature grounded on
// original_source/core_world_comprehensive_tests.rs).
type UsageSnapshot struct {
	Timestamp   int64
	ActorID     uint32
	MemoryBytes int64
	CPUSteps    int64
}

const defaultSnapshotRingSize = 64

// QuotaResult is the outcome of a quota check.
type QuotaResult uint8

const (
	QuotaOK QuotaResult = iota
	QuotaExceededActor
	QuotaExceededGlobal
)

func (r QuotaResult) String() string {
	switch r {
	case QuotaExceededActor:
		return "QuotaExceededActor"
	case QuotaExceededGlobal:
		return "QuotaExceededGlobal"
	default:
		return "OK"
	}
}

// QuotaTable tracks per-actor quotas/usage plus a global ceiling, and a
// bounded history of UsageSnapshot per actor for diagnostics.
type QuotaTable struct {
	GlobalMemoryLimit int64
	GlobalCPULimit    int64

	ringSize int

	quotas    map[uint32]Quota
	usage     map[uint32]*Usage
	snapshots map[uint32][]UsageSnapshot

	globalMemoryUsed int64
	globalStepsUsed  int64
}

// NewQuotaTable returns a table enforcing the given global ceilings. A
// zero limit means unbounded for that resource.
func NewQuotaTable(globalMemoryLimit, globalCPULimit int64) *QuotaTable {
	return &QuotaTable{
		GlobalMemoryLimit: globalMemoryLimit,
		GlobalCPULimit:    globalCPULimit,
		ringSize:          defaultSnapshotRingSize,
		quotas:            map[uint32]Quota{},
		usage:             map[uint32]*Usage{},
		snapshots:         map[uint32][]UsageSnapshot{},
	}
}

// SetQuota sets actorID's per-actor resource ceiling.
func (q *QuotaTable) SetQuota(actorID uint32, quota Quota) {
	q.quotas[actorID] = quota
}

func (q *QuotaTable) usageFor(actorID uint32) *Usage {
	u, ok := q.usage[actorID]
	if !ok {
		u = &Usage{}
		q.usage[actorID] = u
	}
	return u
}

// CheckAndConsumeMemory attempts to charge deltaBytes of allocation
// against actorID, failing without mutating state if either the actor's
// own quota or the global ceiling would be exceeded.
func (q *QuotaTable) CheckAndConsumeMemory(actorID uint32, deltaBytes int64) QuotaResult {
	quota := q.quotas[actorID]
	u := q.usageFor(actorID)
	if quota.MemoryBytes > 0 && u.MemoryBytes+deltaBytes > quota.MemoryBytes {
		return QuotaExceededActor
	}
	if q.GlobalMemoryLimit > 0 && q.globalMemoryUsed+deltaBytes > q.GlobalMemoryLimit {
		return QuotaExceededGlobal
	}
	u.MemoryBytes += deltaBytes
	q.globalMemoryUsed += deltaBytes
	return QuotaOK
}

// CheckAndConsumeSteps attempts to charge deltaSteps of CPU consumption
// against actorID under the same actor/global double-check.
func (q *QuotaTable) CheckAndConsumeSteps(actorID uint32, deltaSteps int64) QuotaResult {
	quota := q.quotas[actorID]
	u := q.usageFor(actorID)
	if quota.CPUSteps > 0 && u.CPUSteps+deltaSteps > quota.CPUSteps {
		return QuotaExceededActor
	}
	if q.GlobalCPULimit > 0 && q.globalStepsUsed+deltaSteps > q.GlobalCPULimit {
		return QuotaExceededGlobal
	}
	u.CPUSteps += deltaSteps
	q.globalStepsUsed += deltaSteps
	return QuotaOK
}

// Release returns actorID's consumed resources to the global pool and
// clears its usage record -- called on actor termination (spec.md §3:
// "resource quota released on termination").
func (q *QuotaTable) Release(actorID uint32) {
	u, ok := q.usage[actorID]
	if !ok {
		return
	}
	q.globalMemoryUsed -= u.MemoryBytes
	q.globalStepsUsed -= u.CPUSteps
	delete(q.usage, actorID)
	delete(q.quotas, actorID)
}

// Snapshot captures actorID's current usage into its bounded ring,
// evicting the oldest entry once the ring is full.
func (q *QuotaTable) Snapshot(timestamp int64, actorID uint32) UsageSnapshot {
	u := q.usageFor(actorID)
	snap := UsageSnapshot{Timestamp: timestamp, ActorID: actorID, MemoryBytes: u.MemoryBytes, CPUSteps: u.CPUSteps}
	ring := append(q.snapshots[actorID], snap)
	if len(ring) > q.ringSize {
		ring = ring[len(ring)-q.ringSize:]
	}
	q.snapshots[actorID] = ring
	return snap
}

// Snapshots returns actorID's retained usage history, oldest first.
func (q *QuotaTable) Snapshots(actorID uint32) []UsageSnapshot {
	out := make([]UsageSnapshot, len(q.snapshots[actorID]))
	copy(out, q.snapshots[actorID])
	return out
}

// GlobalUsage returns the aggregate memory and CPU-step consumption
// across every tracked actor.
func (q *QuotaTable) GlobalUsage() (memoryBytes, cpuSteps int64) {
	return q.globalMemoryUsed, q.globalStepsUsed
}
