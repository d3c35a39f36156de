// Package ast defines the surface-language AST the compiler consumes.
// Tokenizing and parsing an s-expression source into this tree is an
// out-of-scope front-end collaborator (spec.md §1); this package only
// fixes the data contract the compiler compiles against.
package ast

import "github.com/latticerun/physics/capability"

// NodeKind discriminates the surface-language constructs the compiler
// understands.
type NodeKind uint8

const (
	NodeLiteral NodeKind = iota
	NodeVariable
	NodeSymbol
	NodeCall
	NodeLambda
	NodeLet
	NodeLetrec
	NodeDefine
	NodeIf
	NodeTrustTier
	NodeRequireCapability
	NodeHasCapability
	NodeFFICall
	NodeMacroDef
	NodeMacroExpand
	NodeListCons
	NodeSequence
)

// LiteralKind discriminates the shape of a NodeLiteral's payload.
type LiteralKind uint8

const (
	LitNil LiteralKind = iota
	LitBool
	LitInt
	LitFloat
	LitString
)

// Binding is a single name/value pair used by let and letrec.
type Binding struct {
	Name  string
	Value *Node
}

// Node is a surface AST node. As with core.Expr, only the fields relevant
// to Kind are populated; this keeps the compiler's structural recursion a
// single type switch rather than a tree of interface implementations.
type Node struct {
	Kind NodeKind

	// NodeLiteral
	LitKind LiteralKind
	Bool    bool
	Int     int64
	Float   float64
	Str     string

	// NodeVariable / NodeSymbol / NodeFFICall (function name)
	Name string

	// NodeCall / NodeFFICall / NodeListCons (elements) / NodeSequence
	Args []*Node

	// NodeLambda
	Params []string
	Body   *Node

	// NodeLet / NodeLetrec
	Bindings []Binding
	Result   *Node

	// NodeDefine
	DefineName  string
	DefineValue *Node

	// NodeIf
	Cond, Then, Else *Node

	// NodeTrustTier
	Tier       capability.Tier
	Annotated  *Node

	// NodeRequireCapability / NodeHasCapability
	Cap capability.Capability

	// NodeMacroDef
	MacroName   string
	MacroParams []string
	MacroBody   *Node

	// NodeMacroExpand
	MacroRef string
}

// Lit builds a literal node.
func Lit(kind LiteralKind) *Node { return &Node{Kind: NodeLiteral, LitKind: kind} }

func LitNilNode() *Node { return Lit(LitNil) }

func LitBoolNode(b bool) *Node { return &Node{Kind: NodeLiteral, LitKind: LitBool, Bool: b} }

func LitIntNode(i int64) *Node { return &Node{Kind: NodeLiteral, LitKind: LitInt, Int: i} }

func LitFloatNode(f float64) *Node { return &Node{Kind: NodeLiteral, LitKind: LitFloat, Float: f} }

func LitStringNode(s string) *Node { return &Node{Kind: NodeLiteral, LitKind: LitString, Str: s} }

// Var builds a variable-reference node.
func Var(name string) *Node { return &Node{Kind: NodeVariable, Name: name} }

// Sym builds a symbol-literal node.
func Sym(name string) *Node { return &Node{Kind: NodeSymbol, Name: name} }

// Call builds a function-call node.
func Call(fn string, args ...*Node) *Node { return &Node{Kind: NodeCall, Name: fn, Args: args} }

// Lambda builds a lambda node with the given parameter names and body.
func Lambda(params []string, body *Node) *Node {
	return &Node{Kind: NodeLambda, Params: params, Body: body}
}

// Let builds a (non-recursive) let node.
func Let(bindings []Binding, result *Node) *Node {
	return &Node{Kind: NodeLet, Bindings: bindings, Result: result}
}

// Letrec builds a letrec node; every binding may reference every name in
// Bindings, including its own.
func Letrec(bindings []Binding, result *Node) *Node {
	return &Node{Kind: NodeLetrec, Bindings: bindings, Result: result}
}

// Define builds a top-level define node.
func Define(name string, value *Node) *Node {
	return &Node{Kind: NodeDefine, DefineName: name, DefineValue: value}
}

// If builds a conditional node.
func If(cond, then, els *Node) *Node {
	return &Node{Kind: NodeIf, Cond: cond, Then: then, Else: els}
}

// TrustTierNode annotates inner with a trust tier.
func TrustTierNode(tier capability.Tier, inner *Node) *Node {
	return &Node{Kind: NodeTrustTier, Tier: tier, Annotated: inner}
}

// RequireCapability builds a (require-capability cap) node.
func RequireCapability(c capability.Capability) *Node {
	return &Node{Kind: NodeRequireCapability, Cap: c}
}

// HasCapability builds a (has-capability cap) node.
func HasCapability(c capability.Capability) *Node {
	return &Node{Kind: NodeHasCapability, Cap: c}
}

// FFICall builds a host function call node.
func FFICall(fn string, args ...*Node) *Node {
	return &Node{Kind: NodeFFICall, Name: fn, Args: args}
}

// ListCons builds a (list ...)/(cons a b) style node; Args holds the
// elements left-to-right.
func ListCons(args ...*Node) *Node { return &Node{Kind: NodeListCons, Args: args} }

// Sequence builds a sequence of expressions evaluated for effect, whose
// value is the last element's value.
func Sequence(exprs ...*Node) *Node { return &Node{Kind: NodeSequence, Args: exprs} }
