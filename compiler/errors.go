// Package compiler lowers ast.Node surface trees into bytecode.CompilationArtifact
// values, per spec.md §4.3's four-tier compilation protocol.
package compiler

import "fmt"

// ErrorKind enumerates the closed set of compilation failure modes
// (spec.md §7).
type ErrorKind uint8

const (
	ErrParse ErrorKind = iota
	ErrFfi
	ErrCapability
	ErrProofGeneration
	ErrInternal
	ErrVariableNotFound
	ErrFfiFunctionNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case ErrParse:
		return "ParseError"
	case ErrFfi:
		return "FfiError"
	case ErrCapability:
		return "CapabilityError"
	case ErrProofGeneration:
		return "ProofGenerationFailed"
	case ErrInternal:
		return "InternalError"
	case ErrVariableNotFound:
		return "VariableNotFound"
	case ErrFfiFunctionNotFound:
		return "FfiFunctionNotFound"
	default:
		return "UnknownCompileError"
	}
}

// CompileError is a structured compilation failure: a kind, a message,
// and a location label (the out-of-scope tokenizer would normally
// supply a byte offset/line; since this package never sees source text,
// Location is whatever human-readable label the caller's AST carries,
// e.g. a node's variable or call name).
type CompileError struct {
	Kind     ErrorKind
	Message  string
	Location string
}

func (e *CompileError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Location, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newErr(kind ErrorKind, location, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Location: location, Message: fmt.Sprintf(format, args...)}
}
