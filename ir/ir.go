// Package ir lowers a tree.Tree into a linear, register-and-address
// oriented instruction list, synthesizing temporaries for nested
// sub-expressions. Lower is the package's entry point.
package ir

import (
	"fmt"

	"github.com/pengowen123/blocks/lexer"
)

// AddressKind discriminates Address's two cases.
type AddressKind int

const (
	StaticKind AddressKind = iota
	VariableKind
)

// Address is either a resolved absolute value (Static) or an unresolved
// symbolic reference (Variable) patched in later by the emitter's layout
// pass. Static(-1) is the internal "no address yet" sentinel.
type Address struct {
	Kind  AddressKind
	Value int64
	Name  string
}

func Static(n int64) Address    { return Address{Kind: StaticKind, Value: n} }
func Variable(name string) Address { return Address{Kind: VariableKind, Name: name} }

// Temp names the synthetic slot for temp-id id: __temp_N__. See getTempID's
// doc comment for the -1/-2 convention that resolves id before it reaches here.
func Temp(id int) Address { return Variable(fmt.Sprintf("__temp_%d__", id)) }

// NoAddress is the sentinel meaning "nothing assigned this yet".
var NoAddress = Static(-1)

func (a Address) String() string {
	if a.Kind == StaticKind {
		return fmt.Sprintf("%d", a.Value)
	}
	return a.Name
}

// Op identifies an Ir instruction's opcode. Word counts and opcode numbers
// live in the emit package, not here - ir is purely about instruction
// shape, emit is about wire format.
type Op int

const (
	Write Op = iota
	Copy
	IndirWrite
	IndirCopy
	IndirCopy3
	RegWrite
	RegCopy
	RegMem

	Add
	Sub
	Mul
	Div
	Equals
	Less
	Greater
	LessEqual
	GreaterEqual
	Or
	And
	Not
	Xor

	Branch
	CondBranch
	IndirBranch
	Call

	TagOp
	Return
	RawOp
)

// Ir is a single flat instruction. Which fields are meaningful depends
// entirely on Op; see the constructor functions below for the valid
// combinations.
type Ir struct {
	Op Op

	A, B Address     // operand addresses; meaning depends on Op
	Reg  lexer.Reg   // RegWrite/RegCopy/RegMem
	Key  string       // TagOp
	Val  string       // TagOp
	Raw  []int64      // RawOp
}

func WriteIr(addr, data Address) Ir       { return Ir{Op: Write, A: addr, B: data} }
func CopyIr(a, b Address) Ir              { return Ir{Op: Copy, A: a, B: b} }
func IndirWriteIr(addr, data Address) Ir  { return Ir{Op: IndirWrite, A: addr, B: data} }
func IndirCopyIr(a, b Address) Ir         { return Ir{Op: IndirCopy, A: a, B: b} }
func IndirCopy3Ir(a, b Address) Ir        { return Ir{Op: IndirCopy3, A: a, B: b} }
func RegWriteIr(r lexer.Reg, d Address) Ir { return Ir{Op: RegWrite, Reg: r, B: d} }
func RegCopyIr(r lexer.Reg, a Address) Ir  { return Ir{Op: RegCopy, Reg: r, A: a} }
func RegMemIr(r lexer.Reg, a Address) Ir   { return Ir{Op: RegMem, Reg: r, A: a} }
func BranchIr(a Address) Ir               { return Ir{Op: Branch, A: a} }
func CondBranchIr(a Address) Ir           { return Ir{Op: CondBranch, A: a} }
func IndirBranchIr(a Address) Ir          { return Ir{Op: IndirBranch, A: a} }
func CallIr(a Address) Ir                 { return Ir{Op: Call, A: a} }
func TagIr(key, val string) Ir            { return Ir{Op: TagOp, Key: key, Val: val} }
func RawIr(words []int64) Ir              { return Ir{Op: RawOp, Raw: words} }

var simpleOp = map[Op]Op{
	Add: Add, Sub: Sub, Mul: Mul, Div: Div, Equals: Equals,
	Less: Less, Greater: Greater, LessEqual: LessEqual, GreaterEqual: GreaterEqual,
	Or: Or, And: And, Not: Not, Xor: Xor,
}

// ArithIr builds a bare, operand-less arithmetic/logic/compare instruction
// (Add, Sub, ..., Not): these implicitly operate on Int1/Int2 (or just
// Int1 for Not) and leave their result in Accum.
func ArithIr(op Op) Ir {
	if _, ok := simpleOp[op]; !ok {
		panic(fmt.Sprintf("ir: %d is not an arithmetic/logic op", op))
	}
	return Ir{Op: op}
}

// Blocks is an insertion-ordered symbol name -> IR list mapping. The
// emitter must visit symbols in a deterministic order so repeated
// compilation of the same input is byte-identical; a plain Go map would
// randomize iteration order.
type Blocks struct {
	order []string
	body  map[string][]Ir
}

func NewBlocks() *Blocks {
	return &Blocks{body: make(map[string][]Ir)}
}

// Set records or overwrites a symbol's body, preserving its first-seen
// position if it was already present.
func (b *Blocks) Set(name string, body []Ir) {
	if _, ok := b.body[name]; !ok {
		b.order = append(b.order, name)
	}
	b.body[name] = body
}

// Merge folds other into b, preserving other's relative order for any
// names not already present in b.
func (b *Blocks) Merge(other *Blocks) {
	if other == nil {
		return
	}
	for _, name := range other.order {
		b.Set(name, other.body[name])
	}
}

func (b *Blocks) Get(name string) ([]Ir, bool) {
	body, ok := b.body[name]
	return body, ok
}

// Order returns symbol names in first-seen (insertion) order.
func (b *Blocks) Order() []string {
	return b.order
}

func (b *Blocks) Len() int { return len(b.order) }

// Optimize is the seam for a dead-code/peephole pass. It is a stub: it
// returns instrs unchanged.
func Optimize(instrs []Ir) []Ir { return instrs }

// Result bundles everything Lower produces for a single tree node: the
// instructions it emitted, the symbol bodies it discovered, and the
// annotations (address, var_addr, register, deref, math) an enclosing
// node needs to decide how to consume it.
type Result struct {
	IR      []Ir
	Blocks  *Blocks
	Address Address
	VarAddr Address
	Register *lexer.Reg
	Deref   bool
	Math    bool
}

func newResult() *Result {
	return &Result{Blocks: NewBlocks(), Address: NoAddress, VarAddr: NoAddress}
}
