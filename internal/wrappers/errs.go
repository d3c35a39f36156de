// Package wrappers provides small accumulation and byte-packing helpers
// shared by the compiler and bytecode codec, adapted from the teacher's
// utils/wrappers package.
package wrappers

import (
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// Errs accumulates errors from a multi-step process (e.g. compiling a
// program with several independently-failing passes) so callers can
// report every failure found rather than bailing at the first.
type Errs struct {
	mu   sync.RWMutex
	errs []error
}

// Add adds err to the collection. A nil err is a no-op.
func (e *Errs) Add(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs = append(e.errs, err)
}

// Errored reports whether any error has been added.
func (e *Errs) Errored() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.errs) > 0
}

// Err collapses the collection into a single error, or nil if empty.
func (e *Errs) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	switch len(e.errs) {
	case 0:
		return nil
	case 1:
		return e.errs[0]
	default:
		return errors.Newf("%s", e.string())
	}
}

func (e *Errs) string() string {
	var sb strings.Builder
	for i, err := range e.errs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("\t* ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Len returns the number of errors accumulated.
func (e *Errs) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.errs)
}
