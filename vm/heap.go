package vm

import "github.com/latticerun/physics/bytecode"

// objTag discriminates the two heap-resident kinds this VM allocates.
// Strings/symbols don't live here -- they're interned indices into the
// artifact's Strings table (spec.md §3's "Value" tagged union).
type objTag uint8

const (
	objPair objTag = iota
	objClosure
)

// pairBytes/closureBaseBytes are the nominal sizes charged against the
// memory limit for each object kind, standing in for spec.md §3's
// "header + payload" byte accounting without committing to an exact
// struct layout the way the original byte-serialized design did.
const (
	pairBytes        = 16 // two Values, caller's accounting unit
	closureBaseBytes = 8  // body index + capture-count header
	captureCellBytes = 8  // one captured-cell pointer slot
)

type heapObject struct {
	tag    objTag
	marked bool
	live   bool
	size   int64

	// objPair
	car, cdr bytecode.Value

	// objClosure
	funcIdx  int32
	captures []*Cell
}

// HeapStats is a point-in-time snapshot of arena usage, consumed by
// telemetry/metrics and exercised by the heap-statistics tests
// supplemented from original_source/'s physics-layer test suite.
type HeapStats struct {
	Objects     int
	BytesInUse  int64
	Capacity    int64
	Collections int
}

// Heap is a bump-pointer arena of pair and closure objects, addressed by
// a stable uint32 index (spec.md §9: "no compaction moves live objects").
// Reclamation is mark-sweep: Collect marks everything reachable from a
// caller-supplied root set and frees the rest onto an internal free list
// for reuse by the next allocation.
type Heap struct {
	objects     []heapObject
	freeList    []uint32
	bytesInUse  int64
	capacity    int64
	collections int
}

// NewHeap returns an empty heap with capacity bytes of budget. A
// capacity of 0 means unlimited (spec.md's MemoryLimit of 0 is treated
// as "no limit" by convention, matching StepLimit's equivalent
// treatment in the VM's step loop).
func NewHeap(capacity int64) *Heap {
	return &Heap{capacity: capacity}
}

func (h *Heap) checkBudget(size int64) error {
	if h.capacity > 0 && h.bytesInUse+size > h.capacity {
		return &RuntimeError{Kind: ErrHeapExhausted, Message: "allocation would exceed memory limit"}
	}
	return nil
}

func (h *Heap) alloc(obj heapObject) (uint32, error) {
	if err := h.checkBudget(obj.size); err != nil {
		return 0, err
	}
	obj.live = true
	h.bytesInUse += obj.size
	if len(h.freeList) > 0 {
		idx := h.freeList[len(h.freeList)-1]
		h.freeList = h.freeList[:len(h.freeList)-1]
		h.objects[idx] = obj
		return idx, nil
	}
	h.objects = append(h.objects, obj)
	return uint32(len(h.objects) - 1), nil
}

// AllocPair allocates a pair object and returns its heap pointer.
func (h *Heap) AllocPair(car, cdr bytecode.Value) (uint32, error) {
	return h.alloc(heapObject{tag: objPair, car: car, cdr: cdr, size: pairBytes})
}

// AllocClosure allocates a closure wrapper referencing funcIdx's body and
// the given captured cells (held by reference, not copied -- this is the
// generalization of spec.md §3's "closure-wrapper stores captures"
// payload from captured values to captured cells that realizes §9's
// "captures a reference to the frame rather than a copy").
func (h *Heap) AllocClosure(funcIdx int32, captures []*Cell) (uint32, error) {
	size := closureBaseBytes + int64(len(captures))*captureCellBytes
	return h.alloc(heapObject{tag: objClosure, funcIdx: funcIdx, captures: captures, size: size})
}

func (h *Heap) get(ptr uint32) (*heapObject, error) {
	if int(ptr) >= len(h.objects) || !h.objects[ptr].live {
		return nil, &RuntimeError{Kind: ErrInvalidHeapPtr, Message: "dereference of freed or out-of-range heap pointer"}
	}
	return &h.objects[ptr], nil
}

// GetPair returns the car/cdr of the pair at ptr.
func (h *Heap) GetPair(ptr uint32) (bytecode.Value, bytecode.Value, error) {
	obj, err := h.get(ptr)
	if err != nil {
		return bytecode.Nil, bytecode.Nil, err
	}
	if obj.tag != objPair {
		return bytecode.Nil, bytecode.Nil, &RuntimeError{Kind: ErrHeapCorruption, Message: "pointer does not reference a pair"}
	}
	return obj.car, obj.cdr, nil
}

// GetClosure returns the body function index and captured cells of the
// closure at ptr.
func (h *Heap) GetClosure(ptr uint32) (int32, []*Cell, error) {
	obj, err := h.get(ptr)
	if err != nil {
		return 0, nil, err
	}
	if obj.tag != objClosure {
		return 0, nil, &RuntimeError{Kind: ErrHeapCorruption, Message: "pointer does not reference a closure"}
	}
	return obj.funcIdx, obj.captures, nil
}

// Collect runs one mark-sweep pass: mark every object transitively
// reachable from roots, then free everything unmarked. roots should
// include the data stack, every call frame's locals and upvalues, and
// (when invoked by a scheduler) the actor's external message queues --
// spec.md §4.4's "Heap" reclamation roots.
func (h *Heap) Collect(roots []bytecode.Value) {
	for i := range h.objects {
		h.objects[i].marked = false
	}
	var mark func(v bytecode.Value)
	mark = func(v bytecode.Value) {
		var ptr uint32
		switch v.Kind {
		case bytecode.ValPair, bytecode.ValClosure:
			ptr = v.Ptr
		default:
			return
		}
		if int(ptr) >= len(h.objects) {
			return
		}
		obj := &h.objects[ptr]
		if !obj.live || obj.marked {
			return
		}
		obj.marked = true
		switch obj.tag {
		case objPair:
			mark(obj.car)
			mark(obj.cdr)
		case objClosure:
			for _, c := range obj.captures {
				if c != nil {
					mark(c.Value)
				}
			}
		}
	}
	for _, v := range roots {
		mark(v)
	}
	for i := range h.objects {
		obj := &h.objects[i]
		if obj.live && !obj.marked {
			h.bytesInUse -= obj.size
			*obj = heapObject{}
			h.freeList = append(h.freeList, uint32(i))
		}
	}
	h.collections++
}

// Stats returns a point-in-time usage snapshot.
func (h *Heap) Stats() HeapStats {
	objects := 0
	for _, obj := range h.objects {
		if obj.live {
			objects++
		}
	}
	return HeapStats{
		Objects:     objects,
		BytesInUse:  h.bytesInUse,
		Capacity:    h.capacity,
		Collections: h.collections,
	}
}
