// Package metrics wires resource-accounting counters into Prometheus:
// per-actor step/memory usage and scheduler-wide tick/capability-decision
// totals, registered against a caller-supplied prometheus.Registerer.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Runtime holds every counter/gauge the VM, scheduler and capability
// authority report into, grouped the way the teacher's Metrics struct
// groups a consensus engine's registry handle.
type Runtime struct {
	StepsExecuted   prometheus.Counter
	HeapBytesInUse  prometheus.Gauge
	HeapObjects     prometheus.Gauge
	HeapCollections prometheus.Counter

	ActorsSpawned       prometheus.Counter
	ActorsTerminated    prometheus.Counter
	TicksRun            prometheus.Counter
	CapabilityDecisions *prometheus.CounterVec
}

// NewRuntime registers every metric against reg and returns the handle.
// Registration failure is non-fatal: spec.md's Non-goals exclude the
// CLI/host wiring that would surface it, so a duplicate-registration
// error (the only realistic failure, e.g. a reused registry in tests)
// is swallowed; the field keeps its metric, which still records but is
// not exported through reg. The record* helpers below nil-check the
// receiver and every field.
func NewRuntime(reg prometheus.Registerer) *Runtime {
	r := &Runtime{
		StepsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "physics_vm_steps_executed_total",
			Help: "Total opcode steps executed across all actors.",
		}),
		HeapBytesInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "physics_vm_heap_bytes_in_use",
			Help: "Bytes currently live in the arena heap.",
		}),
		HeapObjects: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "physics_vm_heap_objects",
			Help: "Live object count in the arena heap.",
		}),
		HeapCollections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "physics_vm_heap_collections_total",
			Help: "Mark-sweep passes run over the arena heap.",
		}),
		ActorsSpawned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "physics_scheduler_actors_spawned_total",
			Help: "Actors created via sys-create-actor.",
		}),
		ActorsTerminated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "physics_scheduler_actors_terminated_total",
			Help: "Actors terminated via sys-terminate-actor.",
		}),
		TicksRun: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "physics_scheduler_ticks_total",
			Help: "Scheduler ticks run.",
		}),
		CapabilityDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "physics_authority_capability_decisions_total",
			Help: "Capability request decisions by result.",
		}, []string{"result"}),
	}
	for _, c := range []prometheus.Collector{
		r.StepsExecuted, r.HeapBytesInUse, r.HeapObjects, r.HeapCollections,
		r.ActorsSpawned, r.ActorsTerminated, r.TicksRun, r.CapabilityDecisions,
	} {
		_ = reg.Register(c)
	}
	return r
}

func (r *Runtime) RecordSteps(n int64) {
	if r != nil && r.StepsExecuted != nil {
		r.StepsExecuted.Add(float64(n))
	}
}

func (r *Runtime) SetHeapStats(bytesInUse int64, objects int64) {
	if r == nil {
		return
	}
	if r.HeapBytesInUse != nil {
		r.HeapBytesInUse.Set(float64(bytesInUse))
	}
	if r.HeapObjects != nil {
		r.HeapObjects.Set(float64(objects))
	}
}

func (r *Runtime) RecordCollection() {
	if r != nil && r.HeapCollections != nil {
		r.HeapCollections.Inc()
	}
}

func (r *Runtime) RecordActorSpawned() {
	if r != nil && r.ActorsSpawned != nil {
		r.ActorsSpawned.Inc()
	}
}

func (r *Runtime) RecordActorTerminated() {
	if r != nil && r.ActorsTerminated != nil {
		r.ActorsTerminated.Inc()
	}
}

func (r *Runtime) RecordTick() {
	if r != nil && r.TicksRun != nil {
		r.TicksRun.Inc()
	}
}

func (r *Runtime) RecordCapabilityDecision(result string) {
	if r != nil && r.CapabilityDecisions != nil {
		r.CapabilityDecisions.WithLabelValues(result).Inc()
	}
}
