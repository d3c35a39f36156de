package compiler

// bindingState mirrors the VM's three-state letrec binding (spec.md §9)
// at compile time, so the compiler can tell a forward reference to a
// not-yet-compiled letrec name from a genuinely unbound variable.
type bindingState uint8

const (
	bindNormal bindingState = iota
	bindUninitialized
	bindRecursive
)

// binding is one name's compile-time record within a scope: its local
// slot index and (for letrec names) its current pre-declaration state.
type binding struct {
	name  string
	slot  int
	state bindingState
}

// scope is one lexical level (function body, let/letrec block) within a
// single function. Scopes form a singly-linked chain via parent, never
// crossing a lambda boundary -- each compiled function has its own
// scope tree rooted at a scope with parent == nil (see funcCtx), and a
// name that isn't found anywhere in the current function's own scope
// chain is resolved as a capture by funcCtx.resolveVar instead.
type scope struct {
	parent   *scope
	bindings []binding
	nextSlot int
}

func newScope(parent *scope) *scope {
	start := 0
	if parent != nil {
		start = parent.nextSlot
	}
	return &scope{parent: parent, nextSlot: start}
}

// declare reserves the next local slot for name and returns it.
func (s *scope) declare(name string) int {
	slot := s.nextSlot
	s.nextSlot++
	s.bindings = append(s.bindings, binding{name: name, slot: slot, state: bindNormal})
	return slot
}

// declareUninitialized pre-declares name (letrec's first pass) without
// yet knowing its value.
func (s *scope) declareUninitialized(name string) int {
	slot := s.declare(name)
	s.bindings[len(s.bindings)-1].state = bindUninitialized
	return slot
}

// markRecursive flips a previously-uninitialized binding to Recursive
// once its value (a lambda referencing itself or a sibling) has been
// compiled.
func (s *scope) markRecursive(name string) {
	for i := range s.bindings {
		if s.bindings[i].name == name {
			s.bindings[i].state = bindRecursive
			return
		}
	}
}

// resolution is the result of a same-function name lookup.
type resolution struct {
	found bool
	slot  int
	state bindingState
}

// resolve walks outward from s, within the current function only,
// looking for name.
func (s *scope) resolve(name string) resolution {
	for cur := s; cur != nil; cur = cur.parent {
		for i := len(cur.bindings) - 1; i >= 0; i-- {
			if cur.bindings[i].name == name {
				return resolution{found: true, slot: cur.bindings[i].slot, state: cur.bindings[i].state}
			}
		}
	}
	return resolution{found: false}
}
