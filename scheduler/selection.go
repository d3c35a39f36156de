package scheduler

// Mode is the scheduler's actor-selection policy (spec.md §4.5).
type Mode uint8

const (
	// RoundRobin selects (current + 1) mod N among runnable actors. This
	// is the default.
	RoundRobin Mode = iota
	// Priority selects the runnable actor with the highest effective
	// priority, with an anti-starvation override.
	Priority
)

const defaultStarvationThreshold = 1000

// selectRoundRobin returns the index into s.actors of the next runnable
// actor at or after (s.current+1), wrapping around, or -1 if none are
// runnable.
func (s *Scheduler) selectRoundRobin() int {
	n := len(s.actors)
	if n == 0 {
		return -1
	}
	for i := 1; i <= n; i++ {
		idx := (s.current + i) % n
		if s.actors[idx].Runnable() {
			return idx
		}
	}
	return -1
}

// selectPriority returns the index of the runnable actor with the
// highest effective priority, forcing the lowest-priority runnable actor
// once the starvation counter reaches its threshold (spec.md §4.5's
// anti-starvation rule) and resetting the counter then. The counter grows
// by one each time the highest-priority actor is picked while a
// lower-priority actor is runnable; otherwise it is left unchanged.
func (s *Scheduler) selectPriority() int {
	n := len(s.actors)
	if n == 0 {
		return -1
	}

	highest, lowest := -1, -1
	for i, a := range s.actors {
		if !a.Runnable() {
			continue
		}
		if highest == -1 || a.EffectivePriority() > s.actors[highest].EffectivePriority() {
			highest = i
		}
		if lowest == -1 || a.EffectivePriority() < s.actors[lowest].EffectivePriority() {
			lowest = i
		}
	}
	if highest == -1 {
		return -1
	}

	if s.starvationCounter >= s.StarvationThreshold && lowest != highest {
		s.starvationCounter = 0
		return lowest
	}

	if lowest != highest {
		s.starvationCounter++
	}
	return highest
}
